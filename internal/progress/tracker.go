package progress

import (
	"context"
	"fmt"
	"math"
	"strings"

	"designhub_backend/internal/clients/marketplace"
	"designhub_backend/internal/model"
	"designhub_backend/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// EnrollmentAPI is the part of the marketplace backend the tracker mutates through.
type EnrollmentAPI interface {
	GetEnrollment(ctx context.Context, token, courseID string) (*model.Enrollment, error)
	RecordProgress(ctx context.Context, token, enrollmentID string, update marketplace.ProgressUpdate) (*model.Enrollment, error)
	AddNote(ctx context.Context, token, enrollmentID string, note marketplace.NoteInput) (*model.Enrollment, error)
	UpdateNote(ctx context.Context, token, enrollmentID, noteID, content string) (*model.Enrollment, error)
	DeleteNote(ctx context.Context, token, enrollmentID, noteID string) (*model.Enrollment, error)
}

// CourseSource resolves read-only course structures.
type CourseSource interface {
	Course(ctx context.Context, token, courseID string) (*model.Course, error)
}

// View is what a learner sees of one course at a point in time. Views are never
// mutated in place; every operation returns a new one.
type View struct {
	Enrollment      *model.Enrollment `json:"enrollment"`
	Course          *model.Course     `json:"course"`
	Position        model.LessonKey   `json:"position"`
	DisplayProgress float64           `json:"displayProgress"`
	Stage           Stage             `json:"stage"`
}

// CurrentLessonNotes is NotesForLesson at the view's position.
func (v *View) CurrentLessonNotes() []model.Note {
	return NotesForLesson(v.Enrollment, v.Position.Module, v.Position.Lesson)
}

type Tracker struct {
	api      EnrollmentAPI
	courses  CourseSource
	log      *zap.Logger
	inflight singleflight.Group
}

func NewTracker(api EnrollmentAPI, courses CourseSource, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{api: api, courses: courses, log: log.Named("progress")}
}

func (t *Tracker) newView(e *model.Enrollment, course *model.Course, pos model.LessonKey) *View {
	v := &View{
		Enrollment:      e,
		Course:          course,
		Position:        pos,
		DisplayProgress: Percent(e.Completed(), course),
		Stage:           StageOf(e),
	}
	t.reconcile(v)
	return v
}

// reconcile compares the backend percentage with the one derived from the completion
// set. The backend value wins; a mismatch is only reported.
func (t *Tracker) reconcile(v *View) {
	if v.Enrollment == nil || v.Enrollment.Progress == nil || v.Course.TotalLessons() == 0 {
		return
	}
	remote := v.Enrollment.Progress.OverallProgress
	if math.Abs(remote-v.DisplayProgress) > 0.5 {
		t.log.Warn("overall progress diverges from completed lessons",
			zap.String("enrollment", v.Enrollment.ID),
			zap.Float64("backend", remote),
			zap.Float64("derived", v.DisplayProgress),
			zap.Int("completed", v.Enrollment.Completed().Len()),
			zap.Int("total", v.Course.TotalLessons()),
		)
	}
}

// Load fetches the course and the learner's enrollment concurrently and positions the
// learner where the backend last saw them.
func (t *Tracker) Load(ctx context.Context, sess *util.Session, courseID string) (*View, error) {
	if sess == nil {
		return nil, util.ErrNoSession
	}

	var (
		course     *model.Course
		enrollment *model.Enrollment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := t.courses.Course(gctx, sess.Token, courseID)
		if err != nil {
			return fmt.Errorf("load course: %w", err)
		}
		course = c
		return nil
	})
	g.Go(func() error {
		e, err := t.api.GetEnrollment(gctx, sess.Token, courseID)
		if err != nil {
			return fmt.Errorf("load enrollment: %w", err)
		}
		enrollment = e
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pos := ClampPosition(course, ResolveCurrentPosition(enrollment))
	return t.newView(enrollment, course, pos), nil
}

// MarkComplete records the lesson as completed and moves the learner to the next
// lesson. On failure the returned error is the only effect; v is left as it was.
// Identical concurrent calls from the same learner share one backend round trip,
// which runs to completion even if the caller that started it goes away.
func (t *Tracker) MarkComplete(ctx context.Context, sess *util.Session, v *View, key model.LessonKey, watchedSeconds int) (*View, error) {
	if err := ready(sess, v); err != nil {
		return nil, err
	}
	if !v.Course.HasLesson(key) {
		return nil, util.ErrLessonOutOfRange
	}
	if watchedSeconds < 0 {
		return nil, util.ErrInvalidWatchTime
	}

	flightKey := sess.UserID + "|" + v.Enrollment.ID + "|" + key.String()
	flightCtx := context.WithoutCancel(ctx)
	ch := t.inflight.DoChan(flightKey, func() (interface{}, error) {
		updated, err := t.api.RecordProgress(flightCtx, sess.Token, v.Enrollment.ID, marketplace.ProgressUpdate{
			ModuleIndex:     key.Module,
			LessonIndex:     key.Lesson,
			Completed:       true,
			WatchedDuration: watchedSeconds,
		})
		if err != nil {
			return nil, err
		}
		return t.refetch(flightCtx, sess, v.Course.ID, updated), nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, fmt.Errorf("mark lesson %s complete: %w", key, ctx.Err())
	}
	if res.Err != nil {
		t.log.Info("mark complete failed", zap.String("user", sess.UserID), zap.String("lesson", key.String()), zap.Error(res.Err))
		return nil, fmt.Errorf("mark lesson %s complete: %w", key, res.Err)
	}
	if res.Shared {
		t.log.Debug("collapsed duplicate completion", zap.String("user", sess.UserID), zap.String("lesson", key.String()))
	}

	return t.newView(res.Val.(*model.Enrollment), v.Course, NextPosition(v.Course, key)), nil
}

// AddNote attaches a note to a lesson. Blank content never reaches the backend.
func (t *Tracker) AddNote(ctx context.Context, sess *util.Session, v *View, key model.LessonKey, timestamp float64, content string) (*View, error) {
	if err := ready(sess, v); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, util.ErrEmptyNote
	}
	if timestamp < 0 || math.IsNaN(timestamp) || math.IsInf(timestamp, 0) {
		return nil, util.ErrInvalidTimestamp
	}
	if !v.Course.HasLesson(key) {
		return nil, util.ErrLessonOutOfRange
	}

	updated, err := t.api.AddNote(ctx, sess.Token, v.Enrollment.ID, marketplace.NoteInput{
		ModuleIndex: key.Module,
		LessonIndex: key.Lesson,
		Timestamp:   timestamp,
		Content:     content,
	})
	if err != nil {
		return nil, fmt.Errorf("add note: %w", err)
	}
	return t.newView(t.refetch(ctx, sess, v.Course.ID, updated), v.Course, v.Position), nil
}

func (t *Tracker) UpdateNote(ctx context.Context, sess *util.Session, v *View, noteID, content string) (*View, error) {
	if err := ready(sess, v); err != nil {
		return nil, err
	}
	if noteID == "" {
		return nil, util.ErrNoteIDRequired
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, util.ErrEmptyNote
	}

	updated, err := t.api.UpdateNote(ctx, sess.Token, v.Enrollment.ID, noteID, content)
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	return t.newView(t.refetch(ctx, sess, v.Course.ID, updated), v.Course, v.Position), nil
}

// DeleteNote removes a note. Deleting an id the backend does not know is a failure
// like any other.
func (t *Tracker) DeleteNote(ctx context.Context, sess *util.Session, v *View, noteID string) (*View, error) {
	if err := ready(sess, v); err != nil {
		return nil, err
	}
	if noteID == "" {
		return nil, util.ErrNoteIDRequired
	}

	updated, err := t.api.DeleteNote(ctx, sess.Token, v.Enrollment.ID, noteID)
	if err != nil {
		return nil, fmt.Errorf("delete note: %w", err)
	}
	return t.newView(t.refetch(ctx, sess, v.Course.ID, updated), v.Course, v.Position), nil
}

// refetch reads the authoritative enrollment after a mutation. When the read fails the
// record returned by the mutation itself is used.
func (t *Tracker) refetch(ctx context.Context, sess *util.Session, courseID string, fallback *model.Enrollment) *model.Enrollment {
	fresh, err := t.api.GetEnrollment(ctx, sess.Token, courseID)
	if err != nil {
		t.log.Warn("refetch after mutation failed, using mutation response", zap.String("course", courseID), zap.Error(err))
		return fallback
	}
	return fresh
}

func ready(sess *util.Session, v *View) error {
	if sess == nil {
		return util.ErrNoSession
	}
	if v == nil || v.Enrollment == nil {
		return util.ErrEnrollmentNotLoaded
	}
	if v.Course == nil {
		return util.ErrCourseNotLoaded
	}
	return nil
}
