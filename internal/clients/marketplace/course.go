package marketplace

import (
	"context"
	"net/http"

	"designhub_backend/internal/model"
)

func (c *Client) GetCourse(ctx context.Context, token, courseID string) (*model.Course, error) {
	var out model.Course
	err := c.do(ctx, token, call{
		op:     "get_course",
		method: http.MethodGet,
		path:   "/courses/{courseId}",
		params: map[string]string{"courseId": courseID},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListCourses(ctx context.Context, token string, params ListParams) (*model.Page[model.Course], error) {
	params = params.Normalize()
	return getPage[model.Course](ctx, c, token, call{
		op:     "list_courses",
		method: http.MethodGet,
		path:   "/courses",
		query:  params.Values(),
	}, params)
}
