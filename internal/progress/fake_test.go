package progress

import (
	"context"
	"fmt"
	"sync"
	"time"

	"designhub_backend/internal/clients/marketplace"
	"designhub_backend/internal/model"
)

// fakeBackend is an in-memory enrollment service with the backend's set semantics.
type fakeBackend struct {
	mu         sync.Mutex
	course     *model.Course
	enrollment model.Enrollment
	nextNote   int
	calls      map[string]int
	fail       map[string]error
	failGet    bool

	// hold parks RecordProgress until closed or the call's context ends.
	hold    chan struct{}
	started chan struct{}
}

func newFakeBackend(course *model.Course) *fakeBackend {
	return &fakeBackend{
		course: course,
		enrollment: model.Enrollment{
			ID:       "enr-1",
			UserID:   "user-1",
			CourseID: course.ID,
			Status:   model.EnrollmentActive,
			Progress: &model.Progress{CompletedLessons: model.CompletedLessons{}},
			Notes:    []model.Note{},
		},
		calls: map[string]int{},
		fail:  map[string]error{},
	}
}

func (f *fakeBackend) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// snapshot deep-copies the enrollment so callers never share maps with the fake.
func (f *fakeBackend) snapshot() *model.Enrollment {
	e := f.enrollment
	p := *f.enrollment.Progress
	p.CompletedLessons = model.NewCompletedLessons(f.enrollment.Progress.CompletedLessons.Keys()...)
	e.Progress = &p
	e.Notes = append([]model.Note(nil), f.enrollment.Notes...)
	return &e
}

func (f *fakeBackend) enter(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	return f.fail[op]
}

func (f *fakeBackend) Course(ctx context.Context, token, courseID string) (*model.Course, error) {
	if err := f.enter("get_course"); err != nil {
		return nil, err
	}
	return f.course, nil
}

func (f *fakeBackend) GetEnrollment(ctx context.Context, token, courseID string) (*model.Enrollment, error) {
	if err := f.enter("get_enrollment"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet {
		return nil, &marketplace.APIError{Op: "get_enrollment", Status: 503}
	}
	return f.snapshot(), nil
}

func (f *fakeBackend) RecordProgress(ctx context.Context, token, enrollmentID string, u marketplace.ProgressUpdate) (*model.Enrollment, error) {
	if err := f.enter("record_progress"); err != nil {
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
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.enrollment.Progress
	p.CompletedLessons[model.LessonKey{Module: u.ModuleIndex, Lesson: u.LessonIndex}] = struct{}{}
	p.CurrentModule, p.CurrentLesson = u.ModuleIndex, u.LessonIndex
	p.OverallProgress = float64(p.CompletedLessons.Len()) * 100 / float64(f.course.TotalLessons())
	if p.CompletedLessons.Len() == f.course.TotalLessons() {
		f.enrollment.Status = model.EnrollmentCompleted
		f.enrollment.CertificateIssued = true
	}
	return f.snapshot(), nil
}

func (f *fakeBackend) AddNote(ctx context.Context, token, enrollmentID string, n marketplace.NoteInput) (*model.Enrollment, error) {
	if err := f.enter("add_note"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextNote++
	now := time.Now()
	f.enrollment.Notes = append(f.enrollment.Notes, model.Note{
		ID:          fmt.Sprintf("note-%d", f.nextNote),
		ModuleIndex: n.ModuleIndex,
		LessonIndex: n.LessonIndex,
		Timestamp:   n.Timestamp,
		Content:     n.Content,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	return f.snapshot(), nil
}

func (f *fakeBackend) UpdateNote(ctx context.Context, token, enrollmentID, noteID, content string) (*model.Enrollment, error) {
	if err := f.enter("update_note"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.enrollment.Notes {
		if f.enrollment.Notes[i].ID == noteID {
			f.enrollment.Notes[i].Content = content
			f.enrollment.Notes[i].UpdatedAt = time.Now()
			return f.snapshot(), nil
		}
	}
	return nil, &marketplace.APIError{Op: "update_note", Status: 404, Message: "Note not found"}
}

func (f *fakeBackend) DeleteNote(ctx context.Context, token, enrollmentID, noteID string) (*model.Enrollment, error) {
	if err := f.enter("delete_note"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.enrollment.Notes {
		if f.enrollment.Notes[i].ID == noteID {
			f.enrollment.Notes = append(f.enrollment.Notes[:i], f.enrollment.Notes[i+1:]...)
			return f.snapshot(), nil
		}
	}
	return nil, &marketplace.APIError{Op: "delete_note", Status: 404, Message: "Note not found"}
}

// courseOf builds a course whose module i has sizes[i] lessons.
func courseOf(sizes ...int) *model.Course {
	c := &model.Course{ID: "course-1", Title: "Gradient Masterclass"}
	for m, n := range sizes {
		mod := model.Module{Title: fmt.Sprintf("Module %d", m+1)}
		for l := 0; l < n; l++ {
			mod.Lessons = append(mod.Lessons, model.Lesson{
				Title:    fmt.Sprintf("Lesson %d.%d", m+1, l+1),
				Duration: 300,
				VideoURL: fmt.Sprintf("courses/course-1/%d-%d.mp4", m, l),
			})
		}
		c.Modules = append(c.Modules, mod)
	}
	return c
}
