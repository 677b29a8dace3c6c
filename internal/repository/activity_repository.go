package repository

import (
	"context"
	"designhub_backend/internal/model"

	"gorm.io/gorm"
)

type ActivityRepository struct {
	DB *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{DB: db}
}

func (r *ActivityRepository) Create(ctx context.Context, a *model.LearningActivity) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

// ListByUser pages through a learner's activity, newest first. An empty courseID
// means every course.
func (r *ActivityRepository) ListByUser(ctx context.Context, userID, courseID string, page, limit int) ([]model.LearningActivity, int64, error) {
	query := r.DB.WithContext(ctx).Model(&model.LearningActivity{}).Where("user_id = ?", userID)
	if courseID != "" {
		query = query.Where("course_id = ?", courseID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []model.LearningActivity
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&list).Error
	return list, total, err
}

// CountByType summarises a learner's activity in one course.
func (r *ActivityRepository) CountByType(ctx context.Context, userID, courseID string) (map[model.ActivityType]int64, error) {
	var rows []struct {
		Type  model.ActivityType
		Count int64
	}
	err := r.DB.WithContext(ctx).Model(&model.LearningActivity{}).
		Select("type, COUNT(*) AS count").
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[model.ActivityType]int64, len(rows))
	for _, row := range rows {
		out[row.Type] = row.Count
	}
	return out, nil
}

// TotalWatchedSeconds sums the watched durations reported with lesson completions.
func (r *ActivityRepository) TotalWatchedSeconds(ctx context.Context, userID, courseID string) (int64, error) {
	var total int64
	err := r.DB.WithContext(ctx).Model(&model.LearningActivity{}).
		Select("COALESCE(SUM(watched_seconds), 0)").
		Where("user_id = ? AND course_id = ? AND type = ?", userID, courseID, model.ActivityLessonCompleted).
		Scan(&total).Error
	return total, err
}
