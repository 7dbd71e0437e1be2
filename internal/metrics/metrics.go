// Package metrics provides Prometheus instrumentation for the order and
// traffic pipeline.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, route, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stitchfab",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, route pattern, and status code.",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration observes request latency by method and route.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stitchfab",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// OrdersCreated counts created orders by channel (user or guest).
	OrdersCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stitchfab",
			Name:      "orders_created_total",
			Help:      "Total orders created by channel.",
		},
		[]string{"channel"},
	)

	// StatusTransitions counts applied order status transitions by target.
	StatusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stitchfab",
			Name:      "order_status_transitions_total",
			Help:      "Total applied order status transitions by target status.",
		},
		[]string{"status"},
	)

	// StockDeductionFailures counts transitions rejected for lack of stock.
	StockDeductionFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stitchfab",
			Name:      "stock_deduction_failures_total",
			Help:      "Total status transitions rejected because stock ran out.",
		},
	)

	// RiskScores observes the fraud score attached to created orders.
	RiskScores = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "stitchfab",
			Name:      "order_risk_score",
			Help:      "Distribution of fraud scores attached to created orders.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	// SessionsStarted counts newly created analytics sessions.
	SessionsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stitchfab",
			Name:      "sessions_started_total",
			Help:      "Total analytics sessions created.",
		},
	)

	// TrafficFlags counts suspicious-traffic flags by severity.
	TrafficFlags = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stitchfab",
			Name:      "traffic_flags_total",
			Help:      "Total traffic flags raised by severity.",
		},
		[]string{"severity"},
	)
)

var registry = prometheus.NewRegistry()

func init() {
	registry.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		OrdersCreated,
		StatusTransitions,
		StockDeductionFailures,
		RiskScores,
		SessionsStarted,
		TrafficFlags,
	)
}

// Handler serves the metrics endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Middleware instruments every request with counters and latency histograms.
// The route pattern keeps cardinality bounded regardless of path parameters.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
