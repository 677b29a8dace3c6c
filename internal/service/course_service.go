package service

import (
	"context"
	"designhub_backend/internal/clients/marketplace"
	"designhub_backend/internal/model"
	"designhub_backend/internal/repository"
	"designhub_backend/internal/util"
	"designhub_backend/pkg/monitoring"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type CourseAPI interface {
	GetCourse(ctx context.Context, token, courseID string) (*model.Course, error)
	ListCourses(ctx context.Context, token string, params marketplace.ListParams) (*model.Page[model.Course], error)
	Enroll(ctx context.Context, token, courseID string) (*model.Enrollment, error)
	ListMyEnrollments(ctx context.Context, token string, params marketplace.ListParams) (*model.Page[model.Enrollment], error)
}

type CourseCache interface {
	Get(ctx context.Context, courseID string) (*model.Course, error)
	Set(ctx context.Context, course *model.Course, ttl time.Duration) error
	Invalidate(ctx context.Context, courseID string) error
}

// CourseService serves course structures read-through the Redis cache. Structures
// are identical for every learner, so one cached copy serves all of them.
type CourseService struct {
	api      CourseAPI
	cache    CourseCache
	notifier Notifier
	log      *zap.Logger
	ttl      atomic.Int64
	loads    singleflight.Group
}

func NewCourseService(api CourseAPI, cache CourseCache, notifier Notifier, ttl time.Duration, log *zap.Logger) *CourseService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &CourseService{api: api, cache: cache, notifier: notifier, log: log.Named("course")}
	s.SetTTL(ttl)
	return s
}

// SetTTL changes the lifetime of entries written from now on.
func (s *CourseService) SetTTL(ttl time.Duration) {
	s.ttl.Store(int64(ttl))
}

func (s *CourseService) TTL() time.Duration {
	return time.Duration(s.ttl.Load())
}

// Course implements progress.CourseSource.
func (s *CourseService) Course(ctx context.Context, token, courseID string) (*model.Course, error) {
	if s.cache != nil {
		course, err := s.cache.Get(ctx, courseID)
		switch {
		case err == nil:
			monitoring.CourseCacheLookups.WithLabelValues("hit").Inc()
			return course, nil
		case errors.Is(err, repository.ErrCacheMiss):
			monitoring.CourseCacheLookups.WithLabelValues("miss").Inc()
		default:
			monitoring.CourseCacheLookups.WithLabelValues("error").Inc()
			s.log.Warn("course cache read failed", zap.String("course", courseID), zap.Error(err))
		}
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := s.loads.DoChan(courseID, func() (interface{}, error) {
		course, err := s.api.GetCourse(loadCtx, token, courseID)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(loadCtx, course, s.TTL()); err != nil {
				s.log.Warn("course cache write failed", zap.String("course", courseID), zap.Error(err))
			}
		}
		return course, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.Course), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *CourseService) Invalidate(ctx context.Context, courseID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, courseID)
}

func (s *CourseService) List(ctx context.Context, sess *util.Session, params marketplace.ListParams) (*model.Page[model.Course], error) {
	return s.api.ListCourses(ctx, token(sess), params)
}

func (s *CourseService) Enroll(ctx context.Context, sess *util.Session, courseID string) (*model.Enrollment, error) {
	if sess == nil {
		return nil, util.ErrNoSession
	}
	e, err := s.api.Enroll(ctx, sess.Token, courseID)
	if err != nil {
		s.notifier.Failed(ctx, sess.UserID, "enroll", err)
		return nil, err
	}
	s.notifier.Succeeded(ctx, sess.UserID, "enroll", "Enrolled successfully")
	return e, nil
}

func (s *CourseService) MyEnrollments(ctx context.Context, sess *util.Session, params marketplace.ListParams) (*model.Page[model.Enrollment], error) {
	if sess == nil {
		return nil, util.ErrNoSession
	}
	return s.api.ListMyEnrollments(ctx, sess.Token, params)
}
