package repository

import (
	"context"

	"mathking/models"

	"gorm.io/gorm"
)

type studentRepo struct {
	db *gorm.DB
}

func (r *studentRepo) List(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	err := r.db.WithContext(ctx).Order("class_name, id").Find(&students).Error
	return students, err
}

func (r *studentRepo) ListByClass(ctx context.Context, className string) ([]models.Student, error) {
	var students []models.Student
	err := r.db.WithContext(ctx).Where("class_name = ?", className).Order("id").Find(&students).Error
	return students, err
}

func (r *studentRepo) Classes(ctx context.Context) ([]string, error) {
	var classes []string
	err := r.db.WithContext(ctx).Model(&models.Student{}).
		Distinct("class_name").
		Order("class_name").
		Pluck("class_name", &classes).Error
	return classes, err
}

func (r *studentRepo) Get(ctx context.Context, id uint) (*models.Student, error) {
	var s models.Student
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *studentRepo) FindByName(ctx context.Context, className, name string) (*models.Student, error) {
	var s models.Student
	err := r.db.WithContext(ctx).
		Where("class_name = ? AND name = ?", className, name).
		First(&s).Error
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *studentRepo) Create(ctx context.Context, s *models.Student) error {
	return translate(r.db.WithContext(ctx).Create(s).Error)
}

func (r *studentRepo) CreateBatch(ctx context.Context, students []models.Student) error {
	if len(students) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).CreateInBatches(students, 200).Error)
}

func (r *studentRepo) Update(ctx context.Context, s *models.Student) error {
	res := r.db.WithContext(ctx).Model(&models.Student{}).
		Where("id = ?", s.ID).
		Updates(map[string]any{
			"class_name": s.ClassName,
			"name":       s.Name,
			"account":    s.Account,
		})
	return affected(res)
}

func (r *studentRepo) Delete(ctx context.Context, id uint) error {
	return affected(r.db.WithContext(ctx).Delete(&models.Student{}, id))
}
