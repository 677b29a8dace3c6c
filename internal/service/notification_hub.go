package service

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"designhub_backend/pkg/monitoring"
	"designhub_backend/pkg/security"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = (streamPongWait * 9) / 10
	streamReadLimit  = 512
	streamBuffer     = 32

	notificationChannel = "learner_notifications"
)

const (
	EventNotification = "NOTIFICATION"
	EventDismissed    = "DISMISSED"
	EventDismissedAll = "DISMISSED_ALL"
)

// StreamMessage is one frame sent to a learner's notification stream.
type StreamMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type streamEnvelope struct {
	UserID  string          `json:"userId"`
	Payload json.RawMessage `json:"payload"`
}

type streamClient struct {
	hub    *NotificationHub
	conn   *websocket.Conn
	send   chan []byte
	userID string
}

// NotificationHub fans notification events out to open websocket streams. With a
// redis client every instance relays through one pub/sub channel, so a learner
// connected anywhere receives events raised on any instance.
type NotificationHub struct {
	mu       sync.RWMutex
	clients  map[string]map[*streamClient]struct{}
	redis    *redis.Client
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewNotificationHub(rdb *redis.Client, allowedOrigins []string, log *zap.Logger) *NotificationHub {
	if log == nil {
		log = zap.NewNop()
	}
	origins := security.ParseOrigins(allowedOrigins)

	return &NotificationHub{
		clients: make(map[string]map[*streamClient]struct{}),
		redis:   rdb,
		log:     log.Named("notification_hub"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins.Allows(origin)
			},
		},
	}
}

// Publish sends msg to every stream the user has open.
func (h *NotificationHub) Publish(ctx context.Context, userID string, msg StreamMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("failed to encode stream message", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	if h.redis == nil {
		h.deliver(userID, payload)
		return
	}

	env, _ := json.Marshal(streamEnvelope{UserID: userID, Payload: payload})
	if err := h.redis.Publish(ctx, notificationChannel, env).Err(); err != nil {
		h.log.Warn("redis publish failed, delivering locally", zap.String("user", userID), zap.Error(err))
		h.deliver(userID, payload)
	}
}

// Run relays events published by any instance until ctx is done. Without redis
// there is nothing to relay.
func (h *NotificationHub) Run(ctx context.Context) {
	if h.redis == nil {
		return
	}
	sub := h.redis.Subscribe(ctx, notificationChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env streamEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				h.log.Warn("dropping malformed stream envelope", zap.Error(err))
				continue
			}
			h.deliver(env.UserID, env.Payload)
		}
	}
}

// deliver drops the frame for clients whose buffer is full.
func (h *NotificationHub) deliver(userID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		select {
		case c.send <- payload:
		default:
			h.log.Debug("stream buffer full, frame dropped", zap.String("user", userID))
		}
	}
}

// Online is the number of streams the user has open on this instance.
func (h *NotificationHub) Online(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *NotificationHub) register(c *streamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*streamClient]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	monitoring.NotificationStreams.Inc()
}

func (h *NotificationHub) unregister(c *streamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[c.userID]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	close(c.send)
	monitoring.NotificationStreams.Dec()
}

// Serve upgrades the request and attaches the stream to userID. A failed upgrade
// has already been answered by the upgrader.
func (h *NotificationHub) Serve(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &streamClient{hub: h, conn: conn, send: make(chan []byte, streamBuffer), userID: userID}
	h.register(c)

	go c.writePump()
	go c.readPump()
	return nil
}

// Close ends every open stream.
func (h *NotificationHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for userID, set := range h.clients {
		for c := range set {
			close(c.send)
			n++
		}
		delete(h.clients, userID)
	}
	monitoring.NotificationStreams.Sub(float64(n))
	h.log.Info("notification streams closed", zap.Int("count", n))
}

// readPump only services control frames; learners never send data on the stream.
func (c *streamClient) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(streamReadLimit)
	c.conn.SetReadDeadline(time.Now().Add(streamPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug("stream closed unexpectedly", zap.String("user", c.userID), zap.Error(err))
			}
			return
		}
	}
}

func (c *streamClient) writePump() {
	ticker := time.NewTicker(streamPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
