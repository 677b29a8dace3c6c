package marketplace

import (
	"context"
	"net/http"

	"designhub_backend/internal/model"
)

// ProgressUpdate is the completion event sent for one lesson.
type ProgressUpdate struct {
	ModuleIndex     int  `json:"moduleIndex"`
	LessonIndex     int  `json:"lessonIndex"`
	Completed       bool `json:"completed"`
	WatchedDuration int  `json:"watchedDuration"`
}

type NoteInput struct {
	ModuleIndex int     `json:"moduleIndex"`
	LessonIndex int     `json:"lessonIndex"`
	Timestamp   float64 `json:"timestamp"`
	Content     string  `json:"content"`
}

type noteUpdate struct {
	Content string `json:"content"`
}

func (c *Client) GetEnrollment(ctx context.Context, token, courseID string) (*model.Enrollment, error) {
	var out model.Enrollment
	err := c.do(ctx, token, call{
		op:     "get_enrollment",
		method: http.MethodGet,
		path:   "/enrollments/course/{courseId}",
		params: map[string]string{"courseId": courseID},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RecordProgress(ctx context.Context, token, enrollmentID string, update ProgressUpdate) (*model.Enrollment, error) {
	var out model.Enrollment
	err := c.do(ctx, token, call{
		op:     "record_progress",
		method: http.MethodPost,
		path:   "/enrollments/{enrollmentId}/progress",
		params: map[string]string{"enrollmentId": enrollmentID},
		body:   update,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddNote(ctx context.Context, token, enrollmentID string, note NoteInput) (*model.Enrollment, error) {
	var out model.Enrollment
	err := c.do(ctx, token, call{
		op:     "add_note",
		method: http.MethodPost,
		path:   "/enrollments/{enrollmentId}/notes",
		params: map[string]string{"enrollmentId": enrollmentID},
		body:   note,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateNote(ctx context.Context, token, enrollmentID, noteID, content string) (*model.Enrollment, error) {
	var out model.Enrollment
	err := c.do(ctx, token, call{
		op:     "update_note",
		method: http.MethodPatch,
		path:   "/enrollments/{enrollmentId}/notes/{noteId}",
		params: map[string]string{"enrollmentId": enrollmentID, "noteId": noteID},
		body:   noteUpdate{Content: content},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteNote(ctx context.Context, token, enrollmentID, noteID string) (*model.Enrollment, error) {
	var out model.Enrollment
	err := c.do(ctx, token, call{
		op:     "delete_note",
		method: http.MethodDelete,
		path:   "/enrollments/{enrollmentId}/notes/{noteId}",
		params: map[string]string{"enrollmentId": enrollmentID, "noteId": noteID},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Enroll creates the enrollment of the session's learner in a course.
func (c *Client) Enroll(ctx context.Context, token, courseID string) (*model.Enrollment, error) {
	var out model.Enrollment
	err := c.do(ctx, token, call{
		op:     "enroll",
		method: http.MethodPost,
		path:   "/courses/{courseId}/enroll",
		params: map[string]string{"courseId": courseID},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListMyEnrollments(ctx context.Context, token string, params ListParams) (*model.Page[model.Enrollment], error) {
	params = params.Normalize()
	return getPage[model.Enrollment](ctx, c, token, call{
		op:     "list_enrollments",
		method: http.MethodGet,
		path:   "/enrollments/my",
		query:  params.Values(),
	}, params)
}
