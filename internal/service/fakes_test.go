package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"designhub_backend/internal/clients/marketplace"
	"designhub_backend/internal/model"
	"designhub_backend/internal/repository"
	"designhub_backend/internal/util"
)

var learner = &util.Session{UserID: "user-1", Role: model.Learner, Token: "token-1"}

// fakeMarketplace serves one course and one enrollment from memory.
type fakeMarketplace struct {
	mu         sync.Mutex
	course     *model.Course
	enrollment *model.Enrollment
	calls      map[string]int
	fail       map[string]error
	nextNote   int

	// hold parks GetCourse until closed or the call's context ends.
	hold    chan struct{}
	started chan struct{}
}

func newFakeMarketplace(sizes ...int) *fakeMarketplace {
	c := &model.Course{ID: "course-1", Title: "Brand Identity Basics"}
	for m, n := range sizes {
		mod := model.Module{Title: fmt.Sprintf("Module %d", m+1)}
		for l := 0; l < n; l++ {
			mod.Lessons = append(mod.Lessons, model.Lesson{
				Title:    fmt.Sprintf("Lesson %d.%d", m+1, l+1),
				Duration: 120,
				VideoURL: fmt.Sprintf("videos/%d-%d.mp4", m, l),
			})
		}
		c.Modules = append(c.Modules, mod)
	}
	return &fakeMarketplace{
		course: c,
		enrollment: &model.Enrollment{
			ID:       "enr-1",
			UserID:   "user-1",
			CourseID: c.ID,
			Status:   model.EnrollmentActive,
			Progress: &model.Progress{CompletedLessons: model.CompletedLessons{}},
		},
		calls: map[string]int{},
		fail:  map[string]error{},
	}
}

func (f *fakeMarketplace) enter(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	return f.fail[op]
}

func (f *fakeMarketplace) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeMarketplace) copyEnrollment() *model.Enrollment {
	e := *f.enrollment
	p := *f.enrollment.Progress
	p.CompletedLessons = model.NewCompletedLessons(f.enrollment.Progress.CompletedLessons.Keys()...)
	e.Progress = &p
	e.Notes = append([]model.Note(nil), f.enrollment.Notes...)
	return &e
}

func (f *fakeMarketplace) GetCourse(ctx context.Context, token, courseID string) (*model.Course, error) {
	if err := f.enter("get_course"); err != nil {
		return nil, err
	}
	if f.hold != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
		select {
		case <-f.hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if courseID != f.course.ID {
		return nil, &marketplace.APIError{Op: "get_course", Status: 404, Message: "Course not found"}
	}
	return f.course, nil
}

func (f *fakeMarketplace) ListCourses(ctx context.Context, token string, params marketplace.ListParams) (*model.Page[model.Course], error) {
	if err := f.enter("list_courses"); err != nil {
		return nil, err
	}
	return &model.Page[model.Course]{Items: []model.Course{*f.course}, Total: 1, Page: 1, Limit: 12}, nil
}

func (f *fakeMarketplace) Enroll(ctx context.Context, token, courseID string) (*model.Enrollment, error) {
	if err := f.enter("enroll"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.copyEnrollment(), nil
}

func (f *fakeMarketplace) ListMyEnrollments(ctx context.Context, token string, params marketplace.ListParams) (*model.Page[model.Enrollment], error) {
	if err := f.enter("list_enrollments"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return &model.Page[model.Enrollment]{Items: []model.Enrollment{*f.copyEnrollment()}, Total: 1, Page: 1, Limit: 12}, nil
}

func (f *fakeMarketplace) GetEnrollment(ctx context.Context, token, courseID string) (*model.Enrollment, error) {
	if err := f.enter("get_enrollment"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.copyEnrollment(), nil
}

func (f *fakeMarketplace) RecordProgress(ctx context.Context, token, enrollmentID string, u marketplace.ProgressUpdate) (*model.Enrollment, error) {
	if err := f.enter("record_progress"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.enrollment.Progress
	p.CompletedLessons[model.LessonKey{Module: u.ModuleIndex, Lesson: u.LessonIndex}] = struct{}{}
	p.OverallProgress = float64(p.CompletedLessons.Len()) * 100 / float64(f.course.TotalLessons())
	return f.copyEnrollment(), nil
}

func (f *fakeMarketplace) AddNote(ctx context.Context, token, enrollmentID string, n marketplace.NoteInput) (*model.Enrollment, error) {
	if err := f.enter("add_note"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextNote++
	f.enrollment.Notes = append(f.enrollment.Notes, model.Note{
		ID:          fmt.Sprintf("note-%d", f.nextNote),
		ModuleIndex: n.ModuleIndex,
		LessonIndex: n.LessonIndex,
		Timestamp:   n.Timestamp,
		Content:     n.Content,
	})
	return f.copyEnrollment(), nil
}

func (f *fakeMarketplace) UpdateNote(ctx context.Context, token, enrollmentID, noteID, content string) (*model.Enrollment, error) {
	if err := f.enter("update_note"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.enrollment.Notes {
		if f.enrollment.Notes[i].ID == noteID {
			f.enrollment.Notes[i].Content = content
			return f.copyEnrollment(), nil
		}
	}
	return nil, &marketplace.APIError{Op: "update_note", Status: 404, Message: "Note not found"}
}

func (f *fakeMarketplace) DeleteNote(ctx context.Context, token, enrollmentID, noteID string) (*model.Enrollment, error) {
	if err := f.enter("delete_note"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.enrollment.Notes {
		if f.enrollment.Notes[i].ID == noteID {
			f.enrollment.Notes = append(f.enrollment.Notes[:i], f.enrollment.Notes[i+1:]...)
			return f.copyEnrollment(), nil
		}
	}
	return nil, &marketplace.APIError{Op: "delete_note", Status: 404, Message: "Note not found"}
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*model.Course
	ttls    map[string]time.Duration
	err     error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]*model.Course{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCache) Get(ctx context.Context, courseID string) (*model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.entries[courseID]
	if !ok {
		return nil, repository.ErrCacheMiss
	}
	return c, nil
}

func (m *memoryCache) Set(ctx context.Context, course *model.Course, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[course.ID] = course
	m.ttls[course.ID] = ttl
	return nil
}

func (m *memoryCache) Invalidate(ctx context.Context, courseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, courseID)
	return nil
}

type memoryNotifications struct {
	mu    sync.Mutex
	items []model.Notification
	err   error
}

func (m *memoryNotifications) Create(ctx context.Context, n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	n.ID = fmt.Sprintf("n-%d", len(m.items)+1)
	m.items = append(m.items, *n)
	return nil
}

func (m *memoryNotifications) ListActive(ctx context.Context, userID string, now time.Time, limit int) ([]model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Notification
	for _, n := range m.items {
		if n.UserID == userID && n.DismissedAt == nil && n.ExpiresAt.After(now) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memoryNotifications) Dismiss(ctx context.Context, userID, id string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id && m.items[i].UserID == userID && m.items[i].DismissedAt == nil {
			m.items[i].DismissedAt = &at
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryNotifications) DismissAll(ctx context.Context, userID string, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.items {
		if m.items[i].UserID == userID && m.items[i].DismissedAt == nil {
			m.items[i].DismissedAt = &at
			n++
		}
	}
	return n, nil
}

func (m *memoryNotifications) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.items[:0]
	var n int64
	for _, item := range m.items {
		if item.ExpiresAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, item)
	}
	m.items = kept
	return n, nil
}

type memoryActivity struct {
	mu    sync.Mutex
	items []model.LearningActivity
}

func (m *memoryActivity) Create(ctx context.Context, a *model.LearningActivity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, *a)
	return nil
}

func (m *memoryActivity) ListByUser(ctx context.Context, userID, courseID string, page, limit int) ([]model.LearningActivity, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.LearningActivity
	for _, a := range m.items {
		if a.UserID == userID && (courseID == "" || a.CourseID == courseID) {
			out = append(out, a)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memoryActivity) CountByType(ctx context.Context, userID, courseID string) (map[model.ActivityType]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[model.ActivityType]int64{}
	for _, a := range m.items {
		if a.UserID == userID && a.CourseID == courseID {
			out[a.Type]++
		}
	}
	return out, nil
}

func (m *memoryActivity) TotalWatchedSeconds(ctx context.Context, userID, courseID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for _, a := range m.items {
		if a.UserID == userID && a.CourseID == courseID && a.Type == model.ActivityLessonCompleted {
			total += int64(a.WatchedSeconds)
		}
	}
	return total, nil
}

type staticVideos struct{ err error }

func (s staticVideos) VideoURL(ctx context.Context, ref string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "https://cdn.example.test/" + ref + "?sig=abc", nil
}
