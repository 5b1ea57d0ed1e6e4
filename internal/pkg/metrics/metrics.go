package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studentbank_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "studentbank_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	transactionsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studentbank_transactions_total",
		Help: "Ledger transactions applied, by type.",
	}, []string{"type"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studentbank_login_attempts_total",
		Help: "Login attempts by kind and result.",
	}, []string{"kind", "result"})
)

// Handler returns the Prometheus scrape endpoint as a gin handler
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// Middleware records request counts and latency per route
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		httpRequests.WithLabelValues(
			c.Request.Method, route, strconv.Itoa(c.Writer.Status()),
		).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).
			Observe(time.Since(start).Seconds())
	}
}

// CountTransaction records an applied ledger transaction
func CountTransaction(transactionType string) {
	transactionsApplied.WithLabelValues(transactionType).Inc()
}

// CountLogin records a login attempt outcome
func CountLogin(kind string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	loginAttempts.WithLabelValues(kind, result).Inc()
}
