package repository

import (
	"context"
	"designhub_backend/internal/model"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

const courseCacheKeyPrefix = "course_structure:"

// ErrCacheMiss is returned when the course is not cached.
var ErrCacheMiss = errors.New("course cache miss")

// CourseCacheRepository keeps read-only course structures in Redis.
type CourseCacheRepository struct {
	Redis *redis.Client
}

func NewCourseCacheRepository(rdb *redis.Client) *CourseCacheRepository {
	return &CourseCacheRepository{Redis: rdb}
}

func (r *CourseCacheRepository) Get(ctx context.Context, courseID string) (*model.Course, error) {
	val, err := r.Redis.Get(ctx, courseCacheKeyPrefix+courseID).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var course model.Course
	if err := json.Unmarshal(val, &course); err != nil {
		// a corrupt entry is dropped and treated as a miss
		r.Redis.Del(ctx, courseCacheKeyPrefix+courseID)
		return nil, ErrCacheMiss
	}
	return &course, nil
}

func (r *CourseCacheRepository) Set(ctx context.Context, course *model.Course, ttl time.Duration) error {
	data, err := json.Marshal(course)
	if err != nil {
		return err
	}
	return r.Redis.Set(ctx, courseCacheKeyPrefix+course.ID, data, ttl).Err()
}

func (r *CourseCacheRepository) Invalidate(ctx context.Context, courseID string) error {
	return r.Redis.Del(ctx, courseCacheKeyPrefix+courseID).Err()
}

func (r *CourseCacheRepository) Ping(ctx context.Context) error {
	return r.Redis.Ping(ctx).Err()
}
