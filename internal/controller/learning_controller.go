package controller

import (
	"context"
	"designhub_backend/internal/model"
	"designhub_backend/internal/progress"
	"designhub_backend/internal/service"
	"designhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// LearningService is what the learning endpoints need from the service layer.
type LearningService interface {
	Overview(ctx context.Context, sess *util.Session, courseID string) (*progress.View, error)
	Lesson(ctx context.Context, sess *util.Session, courseID string, key model.LessonKey) (*service.LessonDetail, error)
	CompleteLesson(ctx context.Context, sess *util.Session, courseID string, key model.LessonKey, watchedSeconds int) (*progress.View, error)
	AddNote(ctx context.Context, sess *util.Session, courseID string, key model.LessonKey, timestamp float64, content string) (*progress.View, error)
	UpdateNote(ctx context.Context, sess *util.Session, courseID, noteID, content string) (*progress.View, error)
	DeleteNote(ctx context.Context, sess *util.Session, courseID, noteID string) (*progress.View, error)
	Activity(ctx context.Context, sess *util.Session, courseID string, page, limit int) ([]model.LearningActivity, int64, error)
	Summary(ctx context.Context, sess *util.Session, courseID string) (*service.ActivitySummary, error)
}

type LearningController struct {
	LearningService LearningService
}

func NewLearningController(learningService LearningService) *LearningController {
	return &LearningController{LearningService: learningService}
}

type CompleteLessonRequest struct {
	WatchedSeconds int `json:"watchedSeconds" binding:"gte=0"`
}

type AddNoteRequest struct {
	ModuleIndex int     `json:"moduleIndex" binding:"gte=0"`
	LessonIndex int     `json:"lessonIndex" binding:"gte=0"`
	Timestamp   float64 `json:"timestamp"`
	Content     string  `json:"content"`
}

type UpdateNoteRequest struct {
	Content string `json:"content"`
}

func lessonKey(ctx *gin.Context) (model.LessonKey, bool) {
	m, ok := util.ParseIndex(ctx.Param("module"))
	if !ok {
		util.BadRequest(ctx, "Invalid module index")
		return model.LessonKey{}, false
	}
	l, ok := util.ParseIndex(ctx.Param("lesson"))
	if !ok {
		util.BadRequest(ctx, "Invalid lesson index")
		return model.LessonKey{}, false
	}
	return model.LessonKey{Module: m, Lesson: l}, true
}

// @Summary Course progress
// @Description Course structure, enrollment, current position and display progress
// @Tags Learning
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Success 200 {object} util.Response{data=progress.View}
// @Failure 401 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 502 {object} util.Response
// @Router /learning/courses/{courseId} [get]
func (c *LearningController) GetCourseProgress(ctx *gin.Context) {
	sess, ok := session(ctx)
	if !ok {
		return
	}

	view, err := c.LearningService.Overview(ctx.Request.Context(), sess, ctx.Param("courseId"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

// @Summary Lesson detail
// @Description Lesson content, playable video URL, completion flag and notes
// @Tags Learning
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Param module path int true "Module index"
// @Param lesson path int true "Lesson index"
// @Success 200 {object} util.Response{data=service.LessonDetail}
// @Failure 400 {object} util.Response
// @Router /learning/courses/{courseId}/lessons/{module}/{lesson} [get]
func (c *LearningController) GetLesson(ctx *gin.Context) {
	sess, ok := session(ctx)
	if !ok {
		return
	}
	key, ok := lessonKey(ctx)
	if !ok {
		return
	}

	detail, err := c.LearningService.Lesson(ctx.Request.Context(), sess, ctx.Param("courseId"), key)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, detail)
}

// @Summary Mark lesson complete
// @Tags Learning
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Param module path int true "Module index"
// @Param lesson path int true "Lesson index"
// @Param request body CompleteLessonRequest false "Watched duration"
// @Success 200 {object} util.Response{data=progress.View}
// @Failure 400 {object} util.Response
// @Failure 502 {object} util.Response
// @Router /learning/courses/{courseId}/lessons/{module}/{lesson}/complete [post]
func (c *LearningController) CompleteLesson(ctx *gin.Context) {
	sess, ok := session(ctx)
	if !ok {
		return
	}
	key, ok := lessonKey(ctx)
	if !ok {
		return
	}

	var req CompleteLessonRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	view, err := c.LearningService.CompleteLesson(ctx.Request.Context(), sess, ctx.Param("courseId"), key, req.WatchedSeconds)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

// @Summary Add note
// @Tags Learning
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Param request body AddNoteRequest true "Note"
// @Success 201 {object} util.Response{data=progress.View}
// @Failure 400 {object} util.Response
// @Router /learning/courses/{courseId}/notes [post]
func (c *LearningController) AddNote(ctx *gin.Context) {
	sess, ok := session(ctx)
	if !ok {
		return
	}

	var req AddNoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	key := model.LessonKey{Module: req.ModuleIndex, Lesson: req.LessonIndex}
	view, err := c.LearningService.AddNote(ctx.Request.Context(), sess, ctx.Param("courseId"), key, req.Timestamp, req.Content)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Created(ctx, view)
}

// @Summary Edit note
// @Tags Learning
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Param noteId path string true "Note ID"
// @Param request body UpdateNoteRequest true "New content"
// @Success 200 {object} util.Response{data=progress.View}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /learning/courses/{courseId}/notes/{noteId} [patch]
func (c *LearningController) UpdateNote(ctx *gin.Context) {
	sess, ok := session(ctx)
	if !ok {
		return
	}

	var req UpdateNoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.LearningService.UpdateNote(ctx.Request.Context(), sess, ctx.Param("courseId"), ctx.Param("noteId"), req.Content)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

// @Summary Delete note
// @Tags Learning
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Param noteId path string true "Note ID"
// @Success 200 {object} util.Response{data=progress.View}
// @Failure 404 {object} util.Response
// @Router /learning/courses/{courseId}/notes/{noteId} [delete]
func (c *LearningController) DeleteNote(ctx *gin.Context) {
	sess, ok := session(ctx)
	if !ok {
		return
	}

	view, err := c.LearningService.DeleteNote(ctx.Request.Context(), sess, ctx.Param("courseId"), ctx.Param("noteId"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

// @Summary Learning activity
// @Description The learner's recorded completions and note edits, newest first
// @Tags Learning
// @Produce json
// @Security ApiKeyAuth
// @Param courseId query string false "Only this course"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(12)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /learning/activity [get]
func (c *LearningController) ListActivity(ctx *gin.Context) {
	sess, ok := session(ctx)
	if !ok {
		return
	}

	page := util.ParsePositiveInt(ctx.Query("page"), util.DefaultPage)
	limit := util.ParsePositiveInt(ctx.Query("limit"), util.DefaultLimit)
	if limit > util.MaxLimit {
		limit = util.MaxLimit
	}

	list, total, err := c.LearningService.Activity(ctx.Request.Context(), sess, ctx.Query("courseId"), page, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Page(ctx, list, total, page, limit)
}

// @Summary Course activity summary
// @Tags Learning
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Success 200 {object} util.Response{data=service.ActivitySummary}
// @Router /learning/courses/{courseId}/summary [get]
func (c *LearningController) GetSummary(ctx *gin.Context) {
	sess, ok := session(ctx)
	if !ok {
		return
	}

	summary, err := c.LearningService.Summary(ctx.Request.Context(), sess, ctx.Param("courseId"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, summary)
}
