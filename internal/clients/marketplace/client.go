// Package marketplace is the typed REST client for the external marketplace backend
// that owns designs, courses, enrollments, purchases and reviews.
package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"

	"designhub_backend/internal/config"
	"designhub_backend/internal/model"
	"designhub_backend/pkg/monitoring"
	"designhub_backend/pkg/tracing"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var (
	// ErrUnavailable wraps transport failures: the backend gave no response at all.
	ErrUnavailable = errors.New("marketplace unavailable")
	// ErrInvalidPayload wraps responses that failed to decode or validate.
	ErrInvalidPayload = errors.New("invalid marketplace payload")
)

// APIError is a non-success answer from the backend.
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: marketplace returned status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: marketplace returned status %d: %s", e.Op, e.Status, e.Message)
}

func (e *APIError) NotFound() bool {
	return e.Status == 404
}

type Client struct {
	http     *resty.Client
	validate *validator.Validate
	log      *zap.Logger
}

func New(cfg config.MarketplaceConfig, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	h := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)

	return &Client{
		http:     h,
		validate: validator.New(),
		log:      log.Named("marketplace"),
	}
}

type call struct {
	op     string
	method string
	path   string
	params map[string]string
	query  url.Values
	body   interface{}
}

// envelope is the optional {success, message, data} wrapper used by the backend.
type envelope struct {
	Success    *bool           `json:"success"`
	Message    string          `json:"message"`
	Error      string          `json:"error"`
	Data       json.RawMessage `json:"data"`
	Pagination *pagination     `json:"pagination"`
}

type pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

func (e *envelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// send executes the call and returns the unwrapped envelope of a 2xx answer.
func (c *Client) send(ctx context.Context, token string, cl call) (*envelope, []byte, error) {
	ctx, span := tracing.Tracer.Start(ctx, "marketplace."+cl.op)
	defer span.End()
	span.SetAttributes(attribute.String("http.method", cl.method), attribute.String("http.route", cl.path))

	req := c.http.R().SetContext(ctx)
	if token != "" {
		req.SetAuthToken(token)
	}
	if cl.params != nil {
		req.SetPathParams(cl.params)
	}
	if cl.query != nil {
		req.SetQueryParamsFromValues(cl.query)
	}
	if cl.body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(cl.body)
	}

	start := time.Now()
	resp, err := req.Execute(cl.method, cl.path)
	if err != nil {
		monitoring.ObserveUpstream(cl.op, 0, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		c.log.Warn("marketplace call failed", zap.String("op", cl.op), zap.Error(err))
		return nil, nil, fmt.Errorf("%s: %w: %v", cl.op, ErrUnavailable, err)
	}
	monitoring.ObserveUpstream(cl.op, resp.StatusCode(), time.Since(start))
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode()))

	body := resp.Body()
	var env envelope
	// non-JSON bodies are tolerated here; decoding the payload rejects them later
	_ = json.Unmarshal(body, &env)

	if resp.IsError() {
		span.SetStatus(codes.Error, resp.Status())
		apiErr := &APIError{Op: cl.op, Status: resp.StatusCode(), Message: env.message()}
		c.log.Debug("marketplace rejected call", zap.String("op", cl.op), zap.Int("status", apiErr.Status), zap.String("message", apiErr.Message))
		return nil, nil, apiErr
	}
	if env.Success != nil && !*env.Success {
		return nil, nil, &APIError{Op: cl.op, Status: resp.StatusCode(), Message: env.message()}
	}
	return &env, body, nil
}

// do sends the call and decodes the payload into out, rejecting anything that
// does not validate.
func (c *Client) do(ctx context.Context, token string, cl call, out interface{}) error {
	env, body, err := c.send(ctx, token, cl)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	payload := body
	if len(env.Data) > 0 && string(env.Data) != "null" {
		payload = env.Data
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%s: %w: %v", cl.op, ErrInvalidPayload, err)
	}
	if err := c.check(out); err != nil {
		return fmt.Errorf("%s: %w: %v", cl.op, ErrInvalidPayload, err)
	}
	return nil
}

func (c *Client) check(v interface{}) error {
	rv := reflect.Indirect(reflect.ValueOf(v))
	switch rv.Kind() {
	case reflect.Slice:
		for i := 0; i < rv.Len(); i++ {
			if err := c.check(rv.Index(i).Addr().Interface()); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
		return nil
	case reflect.Struct:
		return c.validate.Struct(v)
	default:
		return nil
	}
}

// getPage decodes a listing that either nests {items,total,...} under data or sends
// the items in data with a sibling pagination object.
func getPage[T any](ctx context.Context, c *Client, token string, cl call, params ListParams) (*model.Page[T], error) {
	env, body, err := c.send(ctx, token, cl)
	if err != nil {
		return nil, err
	}

	page := &model.Page[T]{Page: params.Page, Limit: params.Limit}
	payload := env.Data
	if len(payload) == 0 || string(payload) == "null" {
		payload = body
	}

	trimmed := strings.TrimSpace(string(payload))
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(payload, &page.Items); err != nil {
			return nil, fmt.Errorf("%s: %w: %v", cl.op, ErrInvalidPayload, err)
		}
		page.Total = int64(len(page.Items))
		if env.Pagination != nil {
			page.Total = env.Pagination.Total
			if env.Pagination.Page > 0 {
				page.Page = env.Pagination.Page
			}
			if env.Pagination.Limit > 0 {
				page.Limit = env.Pagination.Limit
			}
		}
	} else if err := json.Unmarshal(payload, page); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", cl.op, ErrInvalidPayload, err)
	}

	if page.Items == nil {
		page.Items = []T{}
	}
	if err := c.check(&page.Items); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", cl.op, ErrInvalidPayload, err)
	}
	return page, nil
}
