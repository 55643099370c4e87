package repository

import (
	"context"

	"mathking/models"

	"gorm.io/gorm"
)

// MaxBroadcasts is how many reward events the feed retains.
const MaxBroadcasts = 20

type broadcastRepo struct {
	db *gorm.DB
}

// Push stores b and drops everything older than the newest MaxBroadcasts.
func (r *broadcastRepo) Push(ctx context.Context, b *models.Broadcast) error {
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		return err
	}
	return r.Trim(ctx, MaxBroadcasts)
}

func (r *broadcastRepo) Recent(ctx context.Context, limit int) ([]models.Broadcast, error) {
	var out []models.Broadcast
	err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&out).Error
	return out, err
}

// Trim keeps only the newest keep entries.
func (r *broadcastRepo) Trim(ctx context.Context, keep int) error {
	var cutoff []uint
	err := r.db.WithContext(ctx).Model(&models.Broadcast{}).
		Order("id DESC").
		Offset(keep - 1).
		Limit(1).
		Pluck("id", &cutoff).Error
	if err != nil || len(cutoff) == 0 {
		return err
	}
	return r.db.WithContext(ctx).Where("id < ?", cutoff[0]).Delete(&models.Broadcast{}).Error
}
