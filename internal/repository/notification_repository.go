package repository

import (
	"context"
	"designhub_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	DB *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return r.DB.WithContext(ctx).Create(n).Error
}

// ListActive returns the user's notifications that are neither dismissed nor expired,
// newest first.
func (r *NotificationRepository) ListActive(ctx context.Context, userID string, now time.Time, limit int) ([]model.Notification, error) {
	var list []model.Notification
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND dismissed_at IS NULL AND expires_at > ?", userID, now).
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// Dismiss marks one notification of the user as dismissed. It reports false when the
// notification does not exist or belongs to someone else.
func (r *NotificationRepository) Dismiss(ctx context.Context, userID, id string, at time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND user_id = ? AND dismissed_at IS NULL", id, userID).
		Update("dismissed_at", at)
	return res.RowsAffected > 0, res.Error
}

func (r *NotificationRepository) DismissAll(ctx context.Context, userID string, at time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND dismissed_at IS NULL", userID).
		Update("dismissed_at", at)
	return res.RowsAffected, res.Error
}

// PurgeExpired hard-deletes notifications that expired before the cutoff.
func (r *NotificationRepository) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Unscoped().
		Where("expires_at < ?", cutoff).
		Delete(&model.Notification{})
	return res.RowsAffected, res.Error
}
