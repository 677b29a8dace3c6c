// Package security holds the edge middlewares applied before any route.
package security

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"designhub_backend/internal/config"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	allowHeaders = "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With, X-Request-ID"
	allowMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
)

// Origins is a normalised origin allow-list shared by CORS and the websocket
// handshake. Entries are trimmed and lose any trailing "/".
type Origins struct {
	listed   map[string]struct{}
	Wildcard bool
}

func ParseOrigins(allowed []string) Origins {
	o := Origins{listed: make(map[string]struct{}, len(allowed))}
	for _, entry := range allowed {
		entry = strings.TrimRight(strings.TrimSpace(entry), "/")
		switch entry {
		case "":
		case "*":
			o.Wildcard = true
		default:
			o.listed[entry] = struct{}{}
		}
	}
	return o
}

// Listed reports whether origin is named explicitly.
func (o Origins) Listed(origin string) bool {
	_, ok := o.listed[origin]
	return ok
}

// Allows admits listed origins, or any origin under a wildcard.
func (o Origins) Allows(origin string) bool {
	return o.Wildcard || o.Listed(origin)
}

// CORS echoes allow-listed origins with credentials. A "*" entry admits every
// origin but never with credentials.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	origins := ParseOrigins(allowedOrigins)

	return func(c *gin.Context) {
		h := c.Writer.Header()
		if origin := c.GetHeader("Origin"); origin != "" {
			if origins.Listed(origin) {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Add("Vary", "Origin")
			} else if origins.Wildcard {
				h.Set("Access-Control-Allow-Origin", "*")
			}
		}
		h.Set("Access-Control-Allow-Headers", allowHeaders)
		h.Set("Access-Control-Allow-Methods", allowMethods)
		h.Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func Secure() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per client address. Buckets idle for three
// windows (at least a minute) are swept.
type Limiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	every    rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
}

func NewLimiter(cfg config.RateLimitConfig) *Limiter {
	burst := cfg.MaxRequests
	if burst <= 0 {
		burst = 100
	}
	window := time.Duration(cfg.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	idle := 3 * window
	if idle < time.Minute {
		idle = time.Minute
	}
	return &Limiter{
		visitors: make(map[string]*visitor),
		every:    rate.Every(window / time.Duration(burst)),
		burst:    burst,
		idle:     idle,
		now:      time.Now,
	}
}

func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.every, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = l.now()
	l.mu.Unlock()
	return v.limiter.Allow()
}

// Sweep drops idle buckets and returns how many were removed.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-l.idle)
	removed := 0
	for key, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, key)
			removed++
		}
	}
	return removed
}

// Run sweeps once a minute until ctx is done.
func (l *Limiter) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "too many requests",
			})
			return
		}
		c.Next()
	}
}
