package controller

import (
	"designhub_backend/internal/clients/marketplace"
	"designhub_backend/internal/config"
	"designhub_backend/internal/util"
	"designhub_backend/pkg/logger"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var fallbackMessage atomic.Value

func init() {
	fallbackMessage.Store(config.DefaultFallbackMessage)
}

// SetFallbackMessage sets the text shown for failures that carry no message of
// their own.
func SetFallbackMessage(msg string) {
	if msg == "" {
		msg = config.DefaultFallbackMessage
	}
	fallbackMessage.Store(msg)
}

func fallback() string {
	return fallbackMessage.Load().(string)
}

// respondError maps an error to the response envelope. Local validation is a 400,
// upstream 401/403/404 keep their status, every other upstream failure is a 502.
func respondError(ctx *gin.Context, err error) {
	var apiErr *marketplace.APIError
	switch {
	case errors.Is(err, util.ErrNoSession):
		util.Unauthorized(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case util.IsValidation(err):
		util.BadRequest(ctx, leafMessage(err))
	case errors.Is(err, util.ErrNotificationMissing):
		util.NotFound(ctx)
	case errors.As(err, &apiErr):
		status := http.StatusBadGateway
		switch apiErr.Status {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusConflict:
			status = apiErr.Status
		}
		msg := apiErr.Message
		if msg == "" {
			msg = fallback()
		}
		util.Error(ctx, status, msg)
	case errors.Is(err, marketplace.ErrUnavailable), errors.Is(err, marketplace.ErrInvalidPayload):
		logger.Log.Warn("upstream failure", zap.Error(err), zap.String("path", ctx.FullPath()))
		util.Error(ctx, http.StatusBadGateway, fallback())
	default:
		logger.Log.Error("request failed", zap.Error(err), zap.String("path", ctx.FullPath()))
		util.Error(ctx, http.StatusInternalServerError, fallback())
	}
}

func leafMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

// session fetches the session set by the auth middleware and answers 401 when there
// is none.
func session(ctx *gin.Context) (*util.Session, bool) {
	sess := util.GetSession(ctx)
	if sess == nil {
		util.Unauthorized(ctx)
		return nil, false
	}
	return sess, true
}

func listParams(ctx *gin.Context) marketplace.ListParams {
	return marketplace.ListParams{
		Page:      util.ParsePositiveInt(ctx.Query("page"), util.DefaultPage),
		Limit:     util.ParsePositiveInt(ctx.Query("limit"), util.DefaultLimit),
		Status:    ctx.Query("status"),
		Category:  ctx.Query("category"),
		Search:    ctx.Query("search"),
		SortBy:    ctx.Query("sortBy"),
		SortOrder: ctx.Query("sortOrder"),
	}.Normalize()
}
