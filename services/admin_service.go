// services/admin_service.go - Roster, question bank and progress administration
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mathking/game"
	"mathking/models"
	"mathking/repository"

	"go.uber.org/zap"
)

var (
	ErrStudentExists     = errors.New("student already exists")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	ErrEmptyBatch        = errors.New("no records to import")
)

// BatchError points at the first invalid entry of a batch import.
type BatchError struct {
	Index  int // zero based
	Reason string
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("entry %d: %s", e.Index+1, e.Reason)
}

// Snapshot is the full export of every store.
type Snapshot struct {
	Students   []models.Student   `json:"students"`
	Questions  []models.Question  `json:"questions"`
	Users      []models.User      `json:"users"`
	Broadcasts []models.Broadcast `json:"broadcasts"`
	Timestamp  time.Time          `json:"timestamp"`
}

// AdminService shares GameService's mutation lock so admin edits and player
// actions on the same record do not interleave.
type AdminService struct {
	store *repository.Store
	game  *GameService
}

func NewAdminService(store *repository.Store, gs *GameService) *AdminService {
	return &AdminService{store: store, game: gs}
}

// ================== STUDENTS ==================

func (s *AdminService) Students(ctx context.Context) ([]models.Student, error) {
	return s.store.Students.List(ctx)
}

func (s *AdminService) AddStudent(ctx context.Context, st *models.Student) error {
	st.ID = 0
	return s.store.Transaction(ctx, func(r repository.Repositories) error {
		_, err := r.Students.FindByName(ctx, st.ClassName, st.Name)
		if err == nil {
			return ErrStudentExists
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return studentErr(r.Students.Create(ctx, st))
	})
}

func (s *AdminService) UpdateStudent(ctx context.Context, st *models.Student) error {
	return studentErr(s.store.Students.Update(ctx, st))
}

func (s *AdminService) DeleteStudent(ctx context.Context, id uint) error {
	return studentErr(s.store.Students.Delete(ctx, id))
}

// ImportStudents validates every entry before inserting any of them.
func (s *AdminService) ImportStudents(ctx context.Context, students []models.Student) (int, error) {
	if len(students) == 0 {
		return 0, ErrEmptyBatch
	}
	for i, st := range students {
		if strings.TrimSpace(st.ClassName) == "" || strings.TrimSpace(st.Name) == "" || strings.TrimSpace(st.Account) == "" {
			return 0, &BatchError{Index: i, Reason: "className, name and account are required"}
		}
		students[i].ID = 0
	}

	err := s.store.Transaction(ctx, func(r repository.Repositories) error {
		return studentErr(r.Students.CreateBatch(ctx, students))
	})
	if err != nil {
		return 0, err
	}
	zap.L().Info("imported students", zap.Int("count", len(students)))
	return len(students), nil
}

func studentErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return ErrStudentExists
	case errors.Is(err, repository.ErrNotFound):
		return ErrStudentNotFound
	}
	return err
}

// ================== QUESTIONS ==================

func (s *AdminService) Questions(ctx context.Context) ([]models.Question, error) {
	return s.store.Questions.List(ctx)
}

func (s *AdminService) AddQuestion(ctx context.Context, q *models.Question) error {
	if err := normalizeQuestion(q); err != nil {
		return err
	}
	return s.store.Questions.Create(ctx, q)
}

func (s *AdminService) UpdateQuestion(ctx context.Context, q *models.Question) error {
	if err := normalizeQuestion(q); err != nil {
		return err
	}
	return questionErr(s.store.Questions.Update(ctx, q))
}

func (s *AdminService) DeleteQuestion(ctx context.Context, id uint) error {
	return questionErr(s.store.Questions.Delete(ctx, id))
}

// ImportQuestions appends questions; the store assigns increasing IDs.
func (s *AdminService) ImportQuestions(ctx context.Context, questions []models.Question) (int, error) {
	if len(questions) == 0 {
		return 0, ErrEmptyBatch
	}
	for i := range questions {
		if err := normalizeQuestion(&questions[i]); err != nil {
			return 0, &BatchError{Index: i, Reason: err.Error()}
		}
	}

	err := s.store.Transaction(ctx, func(r repository.Repositories) error {
		return r.Questions.CreateBatch(ctx, questions)
	})
	if err != nil {
		return 0, err
	}
	zap.L().Info("imported questions", zap.Int("count", len(questions)))
	return len(questions), nil
}

func normalizeQuestion(q *models.Question) error {
	d, ok := models.ParseDifficulty(string(q.Difficulty))
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidDifficulty, q.Difficulty)
	}
	q.Difficulty = d
	return nil
}

func questionErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrQuestionNotFound
	}
	return err
}

// ================== USERS ==================

func (s *AdminService) Users(ctx context.Context) ([]models.User, error) {
	return s.store.Users.List(ctx)
}

// UserEdit carries the admin-editable fields of a progress record. Nil fields
// are left unchanged.
type UserEdit struct {
	Level    *int                   `json:"level"`
	Elements map[models.Element]int `json:"elements"`
}

// UpdateUser applies an admin edit. Levels below 1 and negative element
// counts are clamped.
func (s *AdminService) UpdateUser(ctx context.Context, id string, edit UserEdit) (*models.User, error) {
	for el := range edit.Elements {
		if _, ok := models.ParseElement(string(el)); !ok {
			return nil, fmt.Errorf("%w: %q", game.ErrUnknownElement, el)
		}
	}

	user, err := s.game.mutateUser(ctx, id, func(u *models.User) error {
		if edit.Level != nil {
			u.Level = max(*edit.Level, 1)
		}
		for el, n := range edit.Elements {
			u.Elements.Set(el, max(n, 0))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.game.invalidateRanks(ctx, user.ClassName)
	return user, nil
}

// DeleteUser removes a progress record. The roster entry stays.
func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	s.game.mu.Lock()
	defer s.game.mu.Unlock()

	u, err := s.store.Users.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	if err := s.store.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.game.invalidateRanks(ctx, u.ClassName)
	return nil
}

// ================== BACKUP & EXPORT ==================

// Export reads every store.
func (s *AdminService) Export(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{Timestamp: time.Now().UTC()}
	var err error
	if snap.Students, err = s.store.Students.List(ctx); err != nil {
		return nil, fmt.Errorf("export students: %w", err)
	}
	if snap.Questions, err = s.store.Questions.List(ctx); err != nil {
		return nil, fmt.Errorf("export questions: %w", err)
	}
	if snap.Users, err = s.store.Users.List(ctx); err != nil {
		return nil, fmt.Errorf("export users: %w", err)
	}
	if snap.Broadcasts, err = s.store.Broadcasts.Recent(ctx, repository.MaxBroadcasts); err != nil {
		return nil, fmt.Errorf("export broadcasts: %w", err)
	}
	return snap, nil
}

// GameData is the users+broadcasts document served by download-data.
type GameData struct {
	Users      []models.User      `json:"users"`
	Broadcasts []models.Broadcast `json:"broadcasts"`
}

func (s *AdminService) GameData(ctx context.Context) (*GameData, error) {
	snap, err := s.Export(ctx)
	if err != nil {
		return nil, err
	}
	return &GameData{Users: snap.Users, Broadcasts: snap.Broadcasts}, nil
}

// Backup writes a full snapshot into dir and returns the file name.
func (s *AdminService) Backup(ctx context.Context, dir string) (string, error) {
	snap, err := s.Export(ctx)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	name := "backup_" + strings.NewReplacer(":", "-", ".", "-").Replace(snap.Timestamp.Format("2006-01-02T15:04:05.000Z")) + ".json"
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}

	zap.L().Info("backup written", zap.String("file", name), zap.Int("users", len(snap.Users)))
	return name, nil
}

// TrimBroadcasts drops feed entries beyond the retained window.
func (s *AdminService) TrimBroadcasts(ctx context.Context) error {
	return s.store.Broadcasts.Trim(ctx, repository.MaxBroadcasts)
}
