package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	UpstreamCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_requests_total",
			Help: "Total number of calls made to the marketplace backend",
		},
		[]string{"operation", "status"},
	)

	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketplace_request_duration_seconds",
			Help:    "Duration of calls made to the marketplace backend",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	CourseCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "course_cache_lookups_total",
			Help: "Course structure cache lookups by result",
		},
		[]string{"result"},
	)

	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learner_notifications_total",
			Help: "Notifications raised for learners by level",
		},
		[]string{"level"},
	)

	NotificationStreams = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "notification_streams_open",
			Help: "Open learner notification websocket streams on this instance",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(UpstreamCounter)
	prometheus.MustRegister(UpstreamDuration)
	prometheus.MustRegister(CourseCacheLookups)
	prometheus.MustRegister(Notifications)
	prometheus.MustRegister(NotificationStreams)
}

// ObserveUpstream records one marketplace call. status 0 means the call never got a response.
func ObserveUpstream(operation string, status int, elapsed time.Duration) {
	UpstreamCounter.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	UpstreamDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
