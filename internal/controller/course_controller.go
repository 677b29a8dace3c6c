package controller

import (
	"context"
	"designhub_backend/internal/clients/marketplace"
	"designhub_backend/internal/model"
	"designhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseService interface {
	List(ctx context.Context, sess *util.Session, params marketplace.ListParams) (*model.Page[model.Course], error)
	Enroll(ctx context.Context, sess *util.Session, courseID string) (*model.Enrollment, error)
	MyEnrollments(ctx context.Context, sess *util.Session, params marketplace.ListParams) (*model.Page[model.Enrollment], error)
	Invalidate(ctx context.Context, courseID string) error
}

type CourseController struct {
	CourseService CourseService
}

func NewCourseController(courseService CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// @Summary List courses
// @Tags Courses
// @Produce json
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(12)
// @Param category query string false "Category ID"
// @Param search query string false "Search text"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	page, err := c.CourseService.List(ctx.Request.Context(), util.GetSession(ctx), listParams(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Page(ctx, page.Items, page.Total, page.Page, page.Limit)
}

// @Summary Enroll in a course
// @Tags Courses
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Success 201 {object} util.Response{data=model.Enrollment}
// @Router /courses/{courseId}/enroll [post]
func (c *CourseController) Enroll(ctx *gin.Context) {
	sess, ok := session(ctx)
	if !ok {
		return
	}
	enrollment, err := c.CourseService.Enroll(ctx.Request.Context(), sess, ctx.Param("courseId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, enrollment)
}

// @Summary My enrollments
// @Tags Courses
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(12)
// @Param status query string false "active or completed"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /enrollments/my [get]
func (c *CourseController) ListMyEnrollments(ctx *gin.Context) {
	sess, ok := session(ctx)
	if !ok {
		return
	}
	page, err := c.CourseService.MyEnrollments(ctx.Request.Context(), sess, listParams(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Page(ctx, page.Items, page.Total, page.Page, page.Limit)
}

// @Summary Drop a cached course structure
// @Description Instructors call this after editing a course so learners see the new structure
// @Tags Courses
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /courses/{courseId}/cache [delete]
func (c *CourseController) InvalidateCache(ctx *gin.Context) {
	if _, ok := session(ctx); !ok {
		return
	}
	if err := c.CourseService.Invalidate(ctx.Request.Context(), ctx.Param("courseId")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
