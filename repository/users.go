package repository

import (
	"context"

	"mathking/models"

	"gorm.io/gorm"
)

type userRepo struct {
	db *gorm.DB
}

func (r *userRepo) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Order("class_name, name").Find(&users).Error
	return users, err
}

func (r *userRepo) Get(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepo) FindByName(ctx context.Context, className, name string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).
		Where("class_name = ? AND name = ?", className, name).
		First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

// Save writes every column of u.
func (r *userRepo) Save(ctx context.Context, u *models.User) error {
	return translate(r.db.WithContext(ctx).Save(u).Error)
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	return affected(r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{}))
}

func (r *userRepo) RankByClass(ctx context.Context, className string) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("class_name = ?", className).
		Order("level DESC, created_at ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepo) RankTotal(ctx context.Context, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Order("level DESC, created_at ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}
