package repository

import (
	"context"

	"mathking/models"

	"gorm.io/gorm"
)

type questionRepo struct {
	db *gorm.DB
}

func (r *questionRepo) List(ctx context.Context) ([]models.Question, error) {
	var questions []models.Question
	err := r.db.WithContext(ctx).Order("id").Find(&questions).Error
	return questions, err
}

func (r *questionRepo) Get(ctx context.Context, id uint) (*models.Question, error) {
	var q models.Question
	if err := r.db.WithContext(ctx).First(&q, id).Error; err != nil {
		return nil, translate(err)
	}
	return &q, nil
}

// Create lets the database assign the next ID, so IDs only grow.
func (r *questionRepo) Create(ctx context.Context, q *models.Question) error {
	q.ID = 0
	return translate(r.db.WithContext(ctx).Create(q).Error)
}

func (r *questionRepo) CreateBatch(ctx context.Context, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	for i := range questions {
		questions[i].ID = 0
	}
	return translate(r.db.WithContext(ctx).CreateInBatches(questions, 200).Error)
}

func (r *questionRepo) Update(ctx context.Context, q *models.Question) error {
	res := r.db.WithContext(ctx).Model(&models.Question{}).
		Where("id = ?", q.ID).
		Updates(map[string]any{
			"question":    q.Question,
			"answer":      q.Answer,
			"explanation": q.Explanation,
			"difficulty":  q.Difficulty,
		})
	return affected(res)
}

func (r *questionRepo) Delete(ctx context.Context, id uint) error {
	return affected(r.db.WithContext(ctx).Delete(&models.Question{}, id))
}
