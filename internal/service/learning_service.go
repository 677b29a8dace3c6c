package service

import (
	"context"
	"designhub_backend/internal/model"
	"designhub_backend/internal/progress"
	"designhub_backend/internal/util"
	"time"

	"go.uber.org/zap"
)

type ActivityStore interface {
	Create(ctx context.Context, a *model.LearningActivity) error
	ListByUser(ctx context.Context, userID, courseID string, page, limit int) ([]model.LearningActivity, int64, error)
	CountByType(ctx context.Context, userID, courseID string) (map[model.ActivityType]int64, error)
	TotalWatchedSeconds(ctx context.Context, userID, courseID string) (int64, error)
}

type VideoResolver interface {
	VideoURL(ctx context.Context, ref string) (string, error)
}

// Notifier records the outcome of learner mutations.
type Notifier interface {
	Failed(ctx context.Context, userID, operation string, err error)
	Succeeded(ctx context.Context, userID, operation, message string)
}

// LessonDetail is one lesson as the player screen needs it.
type LessonDetail struct {
	Key       model.LessonKey `json:"key"`
	Lesson    model.Lesson    `json:"lesson"`
	VideoURL  string          `json:"videoUrl"`
	Completed bool            `json:"completed"`
	Notes     []model.Note    `json:"notes"`
	Next      model.LessonKey `json:"next"`
	IsLast    bool            `json:"isLast"`
	Progress  float64         `json:"progress"`
	Stage     progress.Stage  `json:"stage"`
}

type ActivitySummary struct {
	CourseID       string                       `json:"courseId"`
	Counts         map[model.ActivityType]int64 `json:"counts"`
	WatchedSeconds int64                        `json:"watchedSeconds"`
}

// LearningService runs the progress tracker for one request at a time. Each call
// loads a fresh view, since the backend record is the only state that survives.
type LearningService struct {
	tracker  *progress.Tracker
	videos   VideoResolver
	activity ActivityStore
	notifier Notifier
	log      *zap.Logger
}

func NewLearningService(tracker *progress.Tracker, videos VideoResolver, activity ActivityStore, notifier Notifier, log *zap.Logger) *LearningService {
	if log == nil {
		log = zap.NewNop()
	}
	return &LearningService{
		tracker:  tracker,
		videos:   videos,
		activity: activity,
		notifier: notifier,
		log:      log.Named("learning"),
	}
}

func (s *LearningService) Overview(ctx context.Context, sess *util.Session, courseID string) (*progress.View, error) {
	return s.tracker.Load(ctx, sess, courseID)
}

func (s *LearningService) Lesson(ctx context.Context, sess *util.Session, courseID string, key model.LessonKey) (*LessonDetail, error) {
	v, err := s.tracker.Load(ctx, sess, courseID)
	if err != nil {
		return nil, err
	}
	lesson, ok := v.Course.Lesson(key)
	if !ok {
		return nil, util.ErrLessonOutOfRange
	}

	videoURL, err := s.videos.VideoURL(ctx, lesson.VideoURL)
	if err != nil {
		// the lesson is still usable without its video
		s.log.Warn("failed to sign lesson video", zap.String("course", courseID), zap.String("lesson", key.String()), zap.Error(err))
	}

	last, _ := progress.LastLesson(v.Course)
	return &LessonDetail{
		Key:       key,
		Lesson:    lesson,
		VideoURL:  videoURL,
		Completed: progress.IsComplete(v.Enrollment, key.Module, key.Lesson),
		Notes:     progress.NotesForLesson(v.Enrollment, key.Module, key.Lesson),
		Next:      progress.NextPosition(v.Course, key),
		IsLast:    key == last,
		Progress:  v.DisplayProgress,
		Stage:     v.Stage,
	}, nil
}

func (s *LearningService) CompleteLesson(ctx context.Context, sess *util.Session, courseID string, key model.LessonKey, watchedSeconds int) (*progress.View, error) {
	v, err := s.load(ctx, sess, courseID, "complete_lesson")
	if err != nil {
		return nil, err
	}
	next, err := s.tracker.MarkComplete(ctx, sess, v, key, watchedSeconds)
	if err != nil {
		s.notifier.Failed(ctx, sess.UserID, "complete_lesson", err)
		return nil, err
	}
	s.record(ctx, sess, next, model.LearningActivity{
		Type:           model.ActivityLessonCompleted,
		ModuleIndex:    key.Module,
		LessonIndex:    key.Lesson,
		WatchedSeconds: watchedSeconds,
	})
	return next, nil
}

func (s *LearningService) AddNote(ctx context.Context, sess *util.Session, courseID string, key model.LessonKey, timestamp float64, content string) (*progress.View, error) {
	v, err := s.load(ctx, sess, courseID, "add_note")
	if err != nil {
		return nil, err
	}
	next, err := s.tracker.AddNote(ctx, sess, v, key, timestamp, content)
	if err != nil {
		s.notifier.Failed(ctx, sess.UserID, "add_note", err)
		return nil, err
	}
	s.record(ctx, sess, next, model.LearningActivity{
		Type:        model.ActivityNoteAdded,
		ModuleIndex: key.Module,
		LessonIndex: key.Lesson,
		NoteID:      addedNoteID(v.Enrollment.Notes, next.Enrollment.Notes),
	})
	return next, nil
}

func (s *LearningService) UpdateNote(ctx context.Context, sess *util.Session, courseID, noteID, content string) (*progress.View, error) {
	v, err := s.load(ctx, sess, courseID, "update_note")
	if err != nil {
		return nil, err
	}
	next, err := s.tracker.UpdateNote(ctx, sess, v, noteID, content)
	if err != nil {
		s.notifier.Failed(ctx, sess.UserID, "update_note", err)
		return nil, err
	}
	a := model.LearningActivity{Type: model.ActivityNoteUpdated, NoteID: noteID}
	if n, ok := findNote(next.Enrollment.Notes, noteID); ok {
		a.ModuleIndex, a.LessonIndex = n.ModuleIndex, n.LessonIndex
	}
	s.record(ctx, sess, next, a)
	return next, nil
}

func (s *LearningService) DeleteNote(ctx context.Context, sess *util.Session, courseID, noteID string) (*progress.View, error) {
	v, err := s.load(ctx, sess, courseID, "delete_note")
	if err != nil {
		return nil, err
	}
	next, err := s.tracker.DeleteNote(ctx, sess, v, noteID)
	if err != nil {
		s.notifier.Failed(ctx, sess.UserID, "delete_note", err)
		return nil, err
	}
	a := model.LearningActivity{Type: model.ActivityNoteDeleted, NoteID: noteID}
	if n, ok := findNote(v.Enrollment.Notes, noteID); ok {
		a.ModuleIndex, a.LessonIndex = n.ModuleIndex, n.LessonIndex
	}
	s.record(ctx, sess, next, a)
	return next, nil
}

func (s *LearningService) Activity(ctx context.Context, sess *util.Session, courseID string, page, limit int) ([]model.LearningActivity, int64, error) {
	if sess == nil {
		return nil, 0, util.ErrNoSession
	}
	return s.activity.ListByUser(ctx, sess.UserID, courseID, page, limit)
}

func (s *LearningService) Summary(ctx context.Context, sess *util.Session, courseID string) (*ActivitySummary, error) {
	if sess == nil {
		return nil, util.ErrNoSession
	}
	counts, err := s.activity.CountByType(ctx, sess.UserID, courseID)
	if err != nil {
		return nil, err
	}
	watched, err := s.activity.TotalWatchedSeconds(ctx, sess.UserID, courseID)
	if err != nil {
		return nil, err
	}
	return &ActivitySummary{CourseID: courseID, Counts: counts, WatchedSeconds: watched}, nil
}

// load is Load for a mutation: a failure to load is reported like a failed mutation.
func (s *LearningService) load(ctx context.Context, sess *util.Session, courseID, op string) (*progress.View, error) {
	v, err := s.tracker.Load(ctx, sess, courseID)
	if err != nil {
		if sess != nil {
			s.notifier.Failed(ctx, sess.UserID, op, err)
		}
		return nil, err
	}
	return v, nil
}

func (s *LearningService) record(ctx context.Context, sess *util.Session, v *progress.View, a model.LearningActivity) {
	a.UserID = sess.UserID
	a.CourseID = v.Course.ID
	a.EnrollmentID = v.Enrollment.ID
	a.Progress = v.DisplayProgress
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	if err := s.activity.Create(ctx, &a); err != nil {
		s.log.Error("failed to record learning activity", zap.String("user", sess.UserID), zap.String("type", string(a.Type)), zap.Error(err))
	}
}

func addedNoteID(before, after []model.Note) string {
	seen := make(map[string]struct{}, len(before))
	for _, n := range before {
		seen[n.ID] = struct{}{}
	}
	for i := len(after) - 1; i >= 0; i-- {
		if _, ok := seen[after[i].ID]; !ok {
			return after[i].ID
		}
	}
	return ""
}

func findNote(notes []model.Note, id string) (model.Note, bool) {
	for _, n := range notes {
		if n.ID == id {
			return n, true
		}
	}
	return model.Note{}, false
}
