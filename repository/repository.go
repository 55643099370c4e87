package repository

import (
	"context"
	"errors"

	"mathking/models"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// StudentRepository is the class roster.
type StudentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	ListByClass(ctx context.Context, className string) ([]models.Student, error)
	Classes(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id uint) (*models.Student, error)
	FindByName(ctx context.Context, className, name string) (*models.Student, error)
	Create(ctx context.Context, s *models.Student) error
	CreateBatch(ctx context.Context, students []models.Student) error
	Update(ctx context.Context, s *models.Student) error
	Delete(ctx context.Context, id uint) error
}

// QuestionRepository is the question bank.
type QuestionRepository interface {
	List(ctx context.Context) ([]models.Question, error)
	Get(ctx context.Context, id uint) (*models.Question, error)
	Create(ctx context.Context, q *models.Question) error
	CreateBatch(ctx context.Context, questions []models.Question) error
	Update(ctx context.Context, q *models.Question) error
	Delete(ctx context.Context, id uint) error
}

// UserRepository holds progress records.
type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	FindByName(ctx context.Context, className, name string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	Save(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id string) error
	RankByClass(ctx context.Context, className string) ([]models.User, error)
	RankTotal(ctx context.Context, limit int) ([]models.User, error)
}

// BroadcastRepository is the capped reward feed, newest first.
type BroadcastRepository interface {
	Push(ctx context.Context, b *models.Broadcast) error
	Recent(ctx context.Context, limit int) ([]models.Broadcast, error)
	Trim(ctx context.Context, keep int) error
}

// Repositories bundles the stores that share one connection or transaction.
type Repositories struct {
	Students   StudentRepository
	Questions  QuestionRepository
	Users      UserRepository
	Broadcasts BroadcastRepository
}

// Store owns the database handle and hands out Repositories bound to it or to
// a transaction.
type Store struct {
	Repositories
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{Repositories: bind(db), db: db}
}

func bind(db *gorm.DB) Repositories {
	return Repositories{
		Students:   &studentRepo{db: db},
		Questions:  &questionRepo{db: db},
		Users:      &userRepo{db: db},
		Broadcasts: &broadcastRepo{db: db},
	}
}

// Transaction runs fn with repositories bound to a single transaction. A
// returned error rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(r Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(bind(tx))
	})
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

func affected(res *gorm.DB) error {
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
