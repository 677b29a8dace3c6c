package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"designhub_backend/internal/clients/marketplace"
	"designhub_backend/internal/config"
	"designhub_backend/internal/model"
	"designhub_backend/internal/progress"
	"designhub_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type learningFixture struct {
	backend       *fakeMarketplace
	notifications *memoryNotifications
	activity      *memoryActivity
	svc           *LearningService
}

func newLearningFixture(t *testing.T, sizes ...int) *learningFixture {
	t.Helper()
	backend := newFakeMarketplace(sizes...)
	notifications := &memoryNotifications{}
	activity := &memoryActivity{}
	notifier := NewNotificationService(notifications, 5*time.Minute, config.DefaultFallbackMessage, nil)
	courses := NewCourseService(backend, newMemoryCache(), notifier, time.Minute, nil)
	tracker := progress.NewTracker(backend, courses, nil)
	return &learningFixture{
		backend:       backend,
		notifications: notifications,
		activity:      activity,
		svc:           NewLearningService(tracker, staticVideos{}, activity, notifier, nil),
	}
}

func TestLearningServiceCompleteLessonRecordsActivity(t *testing.T) {
	f := newLearningFixture(t, 2, 2)
	ctx := context.Background()

	v, err := f.svc.CompleteLesson(ctx, learner, "course-1", model.LessonKey{Module: 0, Lesson: 1}, 95)
	require.NoError(t, err)
	assert.Equal(t, model.LessonKey{Module: 1, Lesson: 0}, v.Position)
	assert.Equal(t, 25.0, v.DisplayProgress)

	require.Len(t, f.activity.items, 1)
	a := f.activity.items[0]
	assert.Equal(t, model.ActivityLessonCompleted, a.Type)
	assert.Equal(t, "user-1", a.UserID)
	assert.Equal(t, "course-1", a.CourseID)
	assert.Equal(t, "enr-1", a.EnrollmentID)
	assert.Equal(t, 95, a.WatchedSeconds)
	assert.Equal(t, 25.0, a.Progress)
	assert.Empty(t, f.notifications.items)
}

func TestLearningServiceFailureBecomesNotification(t *testing.T) {
	f := newLearningFixture(t, 2)
	f.backend.fail["record_progress"] = &marketplace.APIError{Op: "record_progress", Status: 409, Message: "Enrollment is not active"}

	_, err := f.svc.CompleteLesson(context.Background(), learner, "course-1", model.LessonKey{}, 10)
	require.Error(t, err)

	require.Len(t, f.notifications.items, 1)
	n := f.notifications.items[0]
	assert.Equal(t, model.NotificationError, n.Level)
	assert.Equal(t, "complete_lesson", n.Operation)
	assert.Equal(t, "Enrollment is not active", n.Message)
	assert.Empty(t, f.activity.items)
}

func TestLearningServiceTransportFailureUsesFallback(t *testing.T) {
	f := newLearningFixture(t, 2)
	f.backend.fail["add_note"] = errors.New("dial tcp: connection refused")

	_, err := f.svc.AddNote(context.Background(), learner, "course-1", model.LessonKey{}, 4, "kerning")
	require.Error(t, err)
	require.Len(t, f.notifications.items, 1)
	assert.Equal(t, config.DefaultFallbackMessage, f.notifications.items[0].Message)
}

func TestLearningServiceValidationNotification(t *testing.T) {
	f := newLearningFixture(t, 1)

	_, err := f.svc.AddNote(context.Background(), learner, "course-1", model.LessonKey{}, 4, "   ")
	assert.ErrorIs(t, err, util.ErrEmptyNote)
	assert.Zero(t, f.backend.count("add_note"))
	require.Len(t, f.notifications.items, 1)
	assert.Equal(t, util.ErrEmptyNote.Error(), f.notifications.items[0].Message)
}

func TestLearningServiceNoteLifecycle(t *testing.T) {
	f := newLearningFixture(t, 1, 1)
	ctx := context.Background()
	key := model.LessonKey{Module: 1, Lesson: 0}

	v, err := f.svc.AddNote(ctx, learner, "course-1", key, 31.5, "use a 12 column grid")
	require.NoError(t, err)
	require.Len(t, v.Enrollment.Notes, 1)
	noteID := v.Enrollment.Notes[0].ID

	_, err = f.svc.UpdateNote(ctx, learner, "course-1", noteID, "use an 8 column grid")
	require.NoError(t, err)

	v, err = f.svc.DeleteNote(ctx, learner, "course-1", noteID)
	require.NoError(t, err)
	assert.Empty(t, v.Enrollment.Notes)

	require.Len(t, f.activity.items, 3)
	assert.Equal(t, model.ActivityNoteAdded, f.activity.items[0].Type)
	assert.Equal(t, noteID, f.activity.items[0].NoteID)
	assert.Equal(t, 1, f.activity.items[0].ModuleIndex)
	assert.Equal(t, model.ActivityNoteUpdated, f.activity.items[1].Type)
	assert.Equal(t, 1, f.activity.items[1].ModuleIndex)
	assert.Equal(t, model.ActivityNoteDeleted, f.activity.items[2].Type)
	assert.Equal(t, 1, f.activity.items[2].ModuleIndex)
}

func TestLearningServiceLesson(t *testing.T) {
	f := newLearningFixture(t, 2, 1)
	ctx := context.Background()

	_, err := f.svc.CompleteLesson(ctx, learner, "course-1", model.LessonKey{}, 30)
	require.NoError(t, err)
	_, err = f.svc.AddNote(ctx, learner, "course-1", model.LessonKey{}, 2, "contrast")
	require.NoError(t, err)

	d, err := f.svc.Lesson(ctx, learner, "course-1", model.LessonKey{})
	require.NoError(t, err)
	assert.True(t, d.Completed)
	assert.Len(t, d.Notes, 1)
	assert.Equal(t, "https://cdn.example.test/videos/0-0.mp4?sig=abc", d.VideoURL)
	assert.Equal(t, model.LessonKey{Module: 0, Lesson: 1}, d.Next)
	assert.False(t, d.IsLast)

	last, err := f.svc.Lesson(ctx, learner, "course-1", model.LessonKey{Module: 1, Lesson: 0})
	require.NoError(t, err)
	assert.True(t, last.IsLast)
	assert.Equal(t, last.Key, last.Next)
	assert.Empty(t, last.Notes)
	assert.NotNil(t, last.Notes)

	_, err = f.svc.Lesson(ctx, learner, "course-1", model.LessonKey{Module: 3, Lesson: 0})
	assert.ErrorIs(t, err, util.ErrLessonOutOfRange)
}

func TestLearningServiceLessonWithoutVideo(t *testing.T) {
	f := newLearningFixture(t, 1)
	f.svc.videos = staticVideos{err: errors.New("bucket offline")}

	d, err := f.svc.Lesson(context.Background(), learner, "course-1", model.LessonKey{})
	require.NoError(t, err)
	assert.Empty(t, d.VideoURL)
}

func TestLearningServiceSummary(t *testing.T) {
	f := newLearningFixture(t, 3)
	ctx := context.Background()

	for l, watched := range []int{60, 90} {
		_, err := f.svc.CompleteLesson(ctx, learner, "course-1", model.LessonKey{Lesson: l}, watched)
		require.NoError(t, err)
	}

	sum, err := f.svc.Summary(ctx, learner, "course-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.Counts[model.ActivityLessonCompleted])
	assert.Equal(t, int64(150), sum.WatchedSeconds)

	_, err = f.svc.Summary(ctx, nil, "course-1")
	assert.ErrorIs(t, err, util.ErrNoSession)
}
