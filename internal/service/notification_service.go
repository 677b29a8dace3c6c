package service

import (
	"context"
	"designhub_backend/internal/clients/marketplace"
	"designhub_backend/internal/config"
	"designhub_backend/internal/model"
	"designhub_backend/internal/util"
	"designhub_backend/pkg/monitoring"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	ListActive(ctx context.Context, userID string, now time.Time, limit int) ([]model.Notification, error)
	Dismiss(ctx context.Context, userID, id string, at time.Time) (bool, error)
	DismissAll(ctx context.Context, userID string, at time.Time) (int64, error)
	PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// NotificationPublisher pushes events to a learner's open streams.
type NotificationPublisher interface {
	Publish(ctx context.Context, userID string, msg StreamMessage)
}

const maxActiveNotifications = 50

// NotificationService turns failures into short-lived messages a learner can read
// and dismiss.
type NotificationService struct {
	store     NotificationStore
	publisher NotificationPublisher
	log       *zap.Logger
	ttl       atomic.Int64
	fallback  atomic.Value
	now       func() time.Time
}

func NewNotificationService(store NotificationStore, ttl time.Duration, fallback string, log *zap.Logger) *NotificationService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &NotificationService{store: store, log: log.Named("notification"), now: time.Now}
	s.SetTTL(ttl)
	s.SetFallbackMessage(fallback)
	return s
}

// SetPublisher attaches the live stream fan-out. Without one notifications are
// only stored.
func (s *NotificationService) SetPublisher(p NotificationPublisher) {
	s.publisher = p
}

func (s *NotificationService) publish(ctx context.Context, userID string, msg StreamMessage) {
	if s.publisher != nil {
		s.publisher.Publish(ctx, userID, msg)
	}
}

func (s *NotificationService) SetTTL(ttl time.Duration) {
	s.ttl.Store(int64(ttl))
}

// SetFallbackMessage changes the text stored for failures without a message of
// their own. An empty msg restores the default.
func (s *NotificationService) SetFallbackMessage(msg string) {
	if msg == "" {
		msg = config.DefaultFallbackMessage
	}
	s.fallback.Store(msg)
}

// MessageFor picks what a learner is shown for err: local validation messages and
// backend messages pass through, anything else becomes the configured fallback.
func (s *NotificationService) MessageFor(err error) string {
	var apiErr *marketplace.APIError
	switch {
	case util.IsValidation(err):
		return validationMessage(err)
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	default:
		return s.fallback.Load().(string)
	}
}

func validationMessage(err error) string {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if util.IsValidation(e) && errors.Unwrap(e) == nil {
			return e.Error()
		}
	}
	return err.Error()
}

// Failed records err as an error notification for the user. Storage failures are
// logged and swallowed.
func (s *NotificationService) Failed(ctx context.Context, userID, operation string, err error) {
	s.push(ctx, userID, operation, model.NotificationError, s.MessageFor(err))
}

func (s *NotificationService) Succeeded(ctx context.Context, userID, operation, message string) {
	s.push(ctx, userID, operation, model.NotificationSuccess, message)
}

func (s *NotificationService) push(ctx context.Context, userID, operation string, level model.NotificationLevel, message string) {
	if userID == "" {
		return
	}
	n := &model.Notification{
		UserID:    userID,
		Level:     level,
		Operation: operation,
		Message:   message,
		ExpiresAt: s.now().Add(time.Duration(s.ttl.Load())),
	}
	if err := s.store.Create(ctx, n); err != nil {
		s.log.Error("failed to store notification", zap.String("user", userID), zap.String("operation", operation), zap.Error(err))
		return
	}
	monitoring.Notifications.WithLabelValues(string(level)).Inc()
	s.publish(ctx, userID, StreamMessage{Type: EventNotification, Data: n})
}

func (s *NotificationService) List(ctx context.Context, sess *util.Session) ([]model.Notification, error) {
	if sess == nil {
		return nil, util.ErrNoSession
	}
	return s.store.ListActive(ctx, sess.UserID, s.now(), maxActiveNotifications)
}

func (s *NotificationService) Dismiss(ctx context.Context, sess *util.Session, id string) error {
	if sess == nil {
		return util.ErrNoSession
	}
	ok, err := s.store.Dismiss(ctx, sess.UserID, id, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrNotificationMissing
	}
	s.publish(ctx, sess.UserID, StreamMessage{Type: EventDismissed, Data: map[string]string{"id": id}})
	return nil
}

func (s *NotificationService) DismissAll(ctx context.Context, sess *util.Session) (int64, error) {
	if sess == nil {
		return 0, util.ErrNoSession
	}
	n, err := s.store.DismissAll(ctx, sess.UserID, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.publish(ctx, sess.UserID, StreamMessage{Type: EventDismissedAll})
	}
	return n, nil
}

// Purge removes notifications that expired more than an hour ago.
func (s *NotificationService) Purge(ctx context.Context) {
	n, err := s.store.PurgeExpired(ctx, s.now().Add(-time.Hour))
	if err != nil {
		s.log.Error("failed to purge notifications", zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Debug("purged expired notifications", zap.Int64("count", n))
	}
}
