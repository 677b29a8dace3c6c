package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"designhub_backend/internal/clients/marketplace"
	"designhub_backend/internal/model"
	"designhub_backend/internal/progress"
	"designhub_backend/internal/service"
	"designhub_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var learner = &util.Session{UserID: "user-1", Role: model.Learner, Token: "tok"}

func withSession(sess *util.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sess != nil {
			util.SetSession(c, sess)
		}
		c.Next()
	}
}

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

type fakeLearning struct {
	err       error
	completed []model.LessonKey
	watched   []int
	notes     []string
}

func (f *fakeLearning) view() *progress.View {
	return &progress.View{
		Enrollment: &model.Enrollment{ID: "enr-1"},
		Course:     &model.Course{ID: "course-1"},
		Position:   model.LessonKey{Module: 0, Lesson: 1},
		Stage:      progress.StageInProgress,
	}
}

func (f *fakeLearning) Overview(ctx context.Context, sess *util.Session, courseID string) (*progress.View, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.view(), nil
}

func (f *fakeLearning) Lesson(ctx context.Context, sess *util.Session, courseID string, key model.LessonKey) (*service.LessonDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.LessonDetail{Key: key, VideoURL: "/uploads/x.mp4", Notes: []model.Note{}}, nil
}

func (f *fakeLearning) CompleteLesson(ctx context.Context, sess *util.Session, courseID string, key model.LessonKey, watchedSeconds int) (*progress.View, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.completed = append(f.completed, key)
	f.watched = append(f.watched, watchedSeconds)
	return f.view(), nil
}

func (f *fakeLearning) AddNote(ctx context.Context, sess *util.Session, courseID string, key model.LessonKey, timestamp float64, content string) (*progress.View, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.notes = append(f.notes, content)
	return f.view(), nil
}

func (f *fakeLearning) UpdateNote(ctx context.Context, sess *util.Session, courseID, noteID, content string) (*progress.View, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.view(), nil
}

func (f *fakeLearning) DeleteNote(ctx context.Context, sess *util.Session, courseID, noteID string) (*progress.View, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.view(), nil
}

func (f *fakeLearning) Activity(ctx context.Context, sess *util.Session, courseID string, page, limit int) ([]model.LearningActivity, int64, error) {
	return []model.LearningActivity{{Type: model.ActivityNoteAdded}}, 1, nil
}

func (f *fakeLearning) Summary(ctx context.Context, sess *util.Session, courseID string) (*service.ActivitySummary, error) {
	return &service.ActivitySummary{CourseID: courseID}, nil
}

func learningRouter(svc LearningService, sess *util.Session) *gin.Engine {
	c := NewLearningController(svc)
	r := gin.New()
	g := r.Group("/api/learning", withSession(sess))
	g.GET("/courses/:courseId", c.GetCourseProgress)
	g.GET("/courses/:courseId/summary", c.GetSummary)
	g.GET("/courses/:courseId/lessons/:module/:lesson", c.GetLesson)
	g.POST("/courses/:courseId/lessons/:module/:lesson/complete", c.CompleteLesson)
	g.POST("/courses/:courseId/notes", c.AddNote)
	g.PATCH("/courses/:courseId/notes/:noteId", c.UpdateNote)
	g.DELETE("/courses/:courseId/notes/:noteId", c.DeleteNote)
	g.GET("/activity", c.ListActivity)
	return r
}

func TestLearningControllerRequiresSession(t *testing.T) {
	r := learningRouter(&fakeLearning{}, nil)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/learning/courses/course-1"},
		{http.MethodPost, "/api/learning/courses/course-1/lessons/0/0/complete"},
		{http.MethodDelete, "/api/learning/courses/course-1/notes/n1"},
		{http.MethodGet, "/api/learning/activity"},
	} {
		w, _ := do(t, r, tc.method, tc.path, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
	}
}

func TestLearningControllerCompleteLesson(t *testing.T) {
	svc := &fakeLearning{}
	r := learningRouter(svc, learner)

	w, env := do(t, r, http.MethodPost, "/api/learning/courses/course-1/lessons/1/2/complete", `{"watchedSeconds":240}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"position":{"moduleIndex":0,"lessonIndex":1}`)
	assert.Equal(t, []model.LessonKey{{Module: 1, Lesson: 2}}, svc.completed)
	assert.Equal(t, []int{240}, svc.watched)

	w, _ = do(t, r, http.MethodPost, "/api/learning/courses/course-1/lessons/0/0/complete", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/learning/courses/course-1/lessons/x/0/complete", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = do(t, r, http.MethodPost, "/api/learning/courses/course-1/lessons/0/-1/complete", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = do(t, r, http.MethodPost, "/api/learning/courses/course-1/lessons/0/0/complete", `{"watchedSeconds":-5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, svc.completed, 2)
}

func TestLearningControllerAddNote(t *testing.T) {
	svc := &fakeLearning{}
	r := learningRouter(svc, learner)

	w, _ := do(t, r, http.MethodPost, "/api/learning/courses/course-1/notes", `{"moduleIndex":0,"lessonIndex":1,"timestamp":12.5,"content":"golden ratio"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []string{"golden ratio"}, svc.notes)

	w, _ = do(t, r, http.MethodPost, "/api/learning/courses/course-1/notes", `{"moduleIndex":"zero"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLearningControllerErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", fmt.Errorf("add note: %w", util.ErrEmptyNote), http.StatusBadRequest, util.ErrEmptyNote.Error()},
		{"not enrolled", &marketplace.APIError{Status: 404, Message: "Enrollment not found"}, http.StatusNotFound, "Enrollment not found"},
		{"forbidden", &marketplace.APIError{Status: 403, Message: "Not your enrollment"}, http.StatusForbidden, "Not your enrollment"},
		{"upstream 500", &marketplace.APIError{Status: 500}, http.StatusBadGateway, "Something went wrong. Please try again."},
		{"upstream 500 with message", &marketplace.APIError{Status: 500, Message: "db down"}, http.StatusBadGateway, "db down"},
		{"unavailable", fmt.Errorf("get_course: %w", marketplace.ErrUnavailable), http.StatusBadGateway, "Something went wrong. Please try again."},
		{"bad payload", fmt.Errorf("get_course: %w", marketplace.ErrInvalidPayload), http.StatusBadGateway, "Something went wrong. Please try again."},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Something went wrong. Please try again."},
		{"session", util.ErrNoSession, http.StatusUnauthorized, "Unauthorized"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := learningRouter(&fakeLearning{err: tt.err}, learner)
			w, env := do(t, r, http.MethodGet, "/api/learning/courses/course-1", "")
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.message, env.Message)
		})
	}
}

func TestFallbackMessageIsConfigurable(t *testing.T) {
	SetFallbackMessage("Try again later")
	defer SetFallbackMessage("")

	r := learningRouter(&fakeLearning{err: errors.New("boom")}, learner)
	_, env := do(t, r, http.MethodGet, "/api/learning/courses/course-1", "")
	assert.Equal(t, "Try again later", env.Message)
}

func TestLearningControllerLessonAndActivity(t *testing.T) {
	r := learningRouter(&fakeLearning{}, learner)

	w, env := do(t, r, http.MethodGet, "/api/learning/courses/course-1/lessons/2/3", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"key":{"moduleIndex":2,"lessonIndex":3}`)

	w, env = do(t, r, http.MethodGet, "/api/learning/activity?page=2&limit=500", "")
	assert.Equal(t, http.StatusOK, w.Code)
	var page util.PageResponse
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, util.MaxLimit, page.Limit)
	assert.Equal(t, int64(1), page.Total)

	w, _ = do(t, r, http.MethodPatch, "/api/learning/courses/course-1/notes/n1", `{"content":"x"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, r, http.MethodDelete, "/api/learning/courses/course-1/notes/n1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, r, http.MethodGet, "/api/learning/courses/course-1/summary", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

type fakeNotifications struct {
	dismissed []string
}

func (f *fakeNotifications) List(ctx context.Context, sess *util.Session) ([]model.Notification, error) {
	return nil, nil
}

func (f *fakeNotifications) Dismiss(ctx context.Context, sess *util.Session, id string) error {
	if id != "n1" {
		return util.ErrNotificationMissing
	}
	f.dismissed = append(f.dismissed, id)
	return nil
}

func (f *fakeNotifications) DismissAll(ctx context.Context, sess *util.Session) (int64, error) {
	return 3, nil
}

type fakeStreamer struct {
	users []string
}

func (f *fakeStreamer) Serve(w http.ResponseWriter, r *http.Request, userID string) error {
	f.users = append(f.users, userID)
	w.WriteHeader(http.StatusOK)
	return nil
}

func TestNotificationController(t *testing.T) {
	svc := &fakeNotifications{}
	c := NewNotificationController(svc, nil)
	r := gin.New()
	g := r.Group("/api", withSession(learner))
	g.GET("/notifications", c.List)
	g.DELETE("/notifications", c.DismissAll)
	g.DELETE("/notifications/:id", c.Dismiss)

	w, env := do(t, r, http.MethodGet, "/api/notifications", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))

	w, _ = do(t, r, http.MethodDelete, "/api/notifications/n1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, r, http.MethodDelete, "/api/notifications/n2", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = do(t, r, http.MethodDelete, "/api/notifications", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"dismissed":3}`, string(env.Data))
}

func TestNotificationStream(t *testing.T) {
	streamer := &fakeStreamer{}
	r := gin.New()
	r.GET("/anon/stream", withSession(nil), NewNotificationController(&fakeNotifications{}, streamer).Stream)
	r.GET("/stream", withSession(learner), NewNotificationController(&fakeNotifications{}, streamer).Stream)
	r.GET("/disabled", withSession(learner), NewNotificationController(&fakeNotifications{}, nil).Stream)

	w, _ := do(t, r, http.MethodGet, "/anon/stream", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, streamer.users)

	w, _ = do(t, r, http.MethodGet, "/disabled", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stream", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"user-1"}, streamer.users)
}

type fakeCatalogService struct {
	params marketplace.ListParams
	sess   *util.Session
}

func (f *fakeCatalogService) Designs(ctx context.Context, sess *util.Session, params marketplace.ListParams) (*model.Page[model.Design], error) {
	f.params, f.sess = params, sess
	return &model.Page[model.Design]{Items: []model.Design{{ID: "d1"}}, Total: 30, Page: params.Page, Limit: params.Limit}, nil
}

func (f *fakeCatalogService) Design(ctx context.Context, sess *util.Session, designID string) (*model.Design, error) {
	return nil, &marketplace.APIError{Status: 404, Message: "Design not found"}
}

func (f *fakeCatalogService) ToggleLike(ctx context.Context, sess *util.Session, designID string) (*model.Like, error) {
	return &model.Like{Liked: true, LikesCount: 1}, nil
}

func (f *fakeCatalogService) Reviews(ctx context.Context, sess *util.Session, designID string, params marketplace.ListParams) (*model.Page[model.Review], error) {
	return &model.Page[model.Review]{Items: []model.Review{}}, nil
}

func (f *fakeCatalogService) CreateReview(ctx context.Context, sess *util.Session, designID string, in marketplace.ReviewInput) (*model.Review, error) {
	if in.Rating > 5 {
		return nil, util.ErrInvalidRating
	}
	return &model.Review{ID: "r1", Rating: in.Rating}, nil
}

func (f *fakeCatalogService) Categories(ctx context.Context, sess *util.Session) ([]model.Category, error) {
	return []model.Category{{ID: "c1", Name: "Icons"}}, nil
}

func (f *fakeCatalogService) PricingPlans(ctx context.Context, sess *util.Session) ([]model.PricingPlan, error) {
	return []model.PricingPlan{}, nil
}

func (f *fakeCatalogService) MyPurchases(ctx context.Context, sess *util.Session, params marketplace.ListParams) (*model.Page[model.Purchase], error) {
	return &model.Page[model.Purchase]{}, nil
}

func TestCatalogController(t *testing.T) {
	svc := &fakeCatalogService{}
	c := NewCatalogController(svc)
	r := gin.New()
	r.GET("/api/designs", c.ListDesigns)
	r.GET("/api/designs/:id", c.GetDesign)
	r.GET("/api/categories", c.ListCategories)
	authed := r.Group("/api", withSession(learner))
	authed.POST("/designs/:id/reviews", c.CreateReview)
	authed.POST("/designs/:id/like", c.ToggleLike)
	r.GET("/api/purchases/my", c.ListMyPurchases)

	w, env := do(t, r, http.MethodGet, "/api/designs?page=3&limit=1000&category=icons&sortBy=price&sortOrder=DESC", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, svc.sess)
	assert.Equal(t, 3, svc.params.Page)
	assert.Equal(t, 100, svc.params.Limit)
	assert.Equal(t, "icons", svc.params.Category)
	assert.Equal(t, "desc", svc.params.SortOrder)
	assert.Contains(t, string(env.Data), `"total":30`)

	w, env = do(t, r, http.MethodGet, "/api/designs/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Design not found", env.Message)

	w, _ = do(t, r, http.MethodGet, "/api/categories", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/designs/d1/reviews", `{"rating":4,"comment":"clean"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	w, _ = do(t, r, http.MethodPost, "/api/designs/d1/reviews", `{"rating":9}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = do(t, r, http.MethodPost, "/api/designs/d1/reviews", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/designs/d1/like", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/purchases/my", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserControllerMe(t *testing.T) {
	c := NewUserController()
	r := gin.New()
	r.GET("/api/me", withSession(&util.Session{UserID: "u9", Email: "u9@example.test", Role: model.Instructor}), c.Me)

	w, env := do(t, r, http.MethodGet, "/api/me", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"_id":"u9","name":"","email":"u9@example.test","role":"instructor"}`, string(env.Data))
}

type pinger struct{ err error }

func (p pinger) Ping(ctx context.Context) error { return p.err }

func TestHealthCheck(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	c := NewHealthController(db, map[string]Pinger{"redis": pinger{}, "storage": pinger{err: errors.New("bucket missing")}})
	r := gin.New()
	r.GET("/api/health", c.HealthCheck)

	w, env := do(t, r, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"degraded","components":{"database":"up","redis":"up","storage":"down"}}`, string(env.Data))
}
