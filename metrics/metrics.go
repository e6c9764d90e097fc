package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func init() {
	prometheus.MustRegister(incomingRequestsCounter)
	prometheus.MustRegister(pendingRequestsGauge)
	prometheus.MustRegister(requestDuration)
	prometheus.MustRegister(otpDispatchCounter)
}

var incomingRequestsCounter = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"method", "path", "status"},
)

var pendingRequestsGauge = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "http_requests_pending",
		Help: "Total number of HTTP requests being processed",
	},
	[]string{"method", "path"},
)

var requestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"method", "path"},
)

var otpDispatchCounter = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "otp_dispatch_total",
		Help: "One-time code emails by purpose and outcome",
	},
	[]string{"purpose", "outcome"},
)

// Middleware records every request under its route template, not the raw path.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		pendingRequestsGauge.WithLabelValues(method, path).Inc()
		start := time.Now()

		c.Next()

		pendingRequestsGauge.WithLabelValues(method, path).Dec()
		requestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		incomingRequestsCounter.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// RecordDispatch counts an OTP email attempt.
func RecordDispatch(purpose string, err error) {
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	otpDispatchCounter.WithLabelValues(purpose, outcome).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
