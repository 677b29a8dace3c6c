package controller

import (
	"context"
	"designhub_backend/internal/model"
	"designhub_backend/internal/util"
	"designhub_backend/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NotificationService interface {
	List(ctx context.Context, sess *util.Session) ([]model.Notification, error)
	Dismiss(ctx context.Context, sess *util.Session, id string) error
	DismissAll(ctx context.Context, sess *util.Session) (int64, error)
}

// NotificationStreamer attaches a websocket stream to a learner.
type NotificationStreamer interface {
	Serve(w http.ResponseWriter, r *http.Request, userID string) error
}

type NotificationController struct {
	NotificationService NotificationService
	Streamer            NotificationStreamer
}

func NewNotificationController(notificationService NotificationService, streamer NotificationStreamer) *NotificationController {
	return &NotificationController{NotificationService: notificationService, Streamer: streamer}
}

// @Summary Active notifications
// @Description Unexpired, undismissed notifications of the current learner
// @Tags Notifications
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Notification}
// @Router /notifications [get]
func (c *NotificationController) List(ctx *gin.Context) {
	sess, ok := session(ctx)
	if !ok {
		return
	}
	list, err := c.NotificationService.List(ctx.Request.Context(), sess)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if list == nil {
		list = []model.Notification{}
	}
	util.Success(ctx, list)
}

// @Summary Dismiss a notification
// @Tags Notifications
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /notifications/{id} [delete]
func (c *NotificationController) Dismiss(ctx *gin.Context) {
	sess, ok := session(ctx)
	if !ok {
		return
	}
	if err := c.NotificationService.Dismiss(ctx.Request.Context(), sess, ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Dismiss all notifications
// @Tags Notifications
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /notifications [delete]
func (c *NotificationController) DismissAll(ctx *gin.Context) {
	sess, ok := session(ctx)
	if !ok {
		return
	}
	n, err := c.NotificationService.DismissAll(ctx.Request.Context(), sess)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"dismissed": n})
}

// @Summary Live notification stream
// @Description Websocket stream of NOTIFICATION, DISMISSED and DISMISSED_ALL events for the current learner.
// @Description Browsers may pass the bearer token as the token query parameter.
// @Tags Notifications
// @Security ApiKeyAuth
// @Param token query string false "Bearer token for clients that cannot set headers"
// @Success 101
// @Failure 401 {object} util.Response
// @Router /notifications/stream [get]
func (c *NotificationController) Stream(ctx *gin.Context) {
	sess, ok := session(ctx)
	if !ok {
		return
	}
	if c.Streamer == nil {
		util.NotFound(ctx)
		return
	}
	if err := c.Streamer.Serve(ctx.Writer, ctx.Request, sess.UserID); err != nil {
		logger.Log.Debug("notification stream upgrade failed", zap.String("user", sess.UserID), zap.Error(err))
	}
}
