// Package metrics defines and registers all custom Prometheus metrics for the
// storefront API. It is the single source of truth for metric names, labels,
// and help strings. Metrics register with the default registry on import.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// ── HTTP ──────────────────────────────────────────────────────────────────────

// HTTPRequestsTotal counts handled requests.
// Labels: method, route (registered path, not raw URL), code.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by method, route and status code.",
	},
	[]string{"method", "route", "code"},
)

// HTTPRequestDuration measures handler latency per route.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// ── Identity ──────────────────────────────────────────────────────────────────

// AuthResolutionsTotal counts identity resolution outcomes.
// Labels:
//   - method: "bearer", "api_key" or "none"
//   - result: "ok" or the error kind (e.g. "invalid_token", "stale_token")
var AuthResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_resolutions_total",
		Help:      "Total number of identity resolutions, by credential method and result.",
	},
	[]string{"method", "result"},
)

// PermissionDeniedTotal counts requests rejected by the permission gate.
// Labels: capability, reason ("no_role", "denied", "unauthenticated").
var PermissionDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "permission_denied_total",
		Help:      "Total number of requests rejected by the permission gate.",
	},
	[]string{"capability", "reason"},
)

// LoginAttemptsTotal counts login outcomes.
// Label result: "success", "invalid_credentials", "rate_limited", "forbidden", "error".
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Products & orders ────────────────────────────────────────────────────────

// ProductsCreatedTotal counts created products.
// Label mode: "shopify" or "mock".
var ProductsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "products_created_total",
		Help:      "Total number of products created, by platform mode.",
	},
	[]string{"mode"},
)

// WebhooksReceivedTotal counts order webhook deliveries.
// Label result: "accepted", "missing_signature", "invalid_signature",
// "bad_request", "queue_full".
var WebhooksReceivedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhooks_received_total",
		Help:      "Total number of order webhooks received, by result.",
	},
	[]string{"result"},
)

// OrdersProcessedTotal counts orders handled by the dispatcher workers.
// Label result: "ok" or "error".
var OrdersProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_processed_total",
		Help:      "Total number of webhook orders processed by workers.",
	},
	[]string{"result"},
)

// OrdersQueueDepth tracks pending orders per worker channel.
var OrdersQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "orders_queue_depth",
		Help:      "Current number of orders pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// QueueObserver feeds dispatcher telemetry into the order metrics.
type QueueObserver struct{}

func (QueueObserver) QueueDepth(worker, depth int) {
	OrdersQueueDepth.WithLabelValues(strconv.Itoa(worker)).Set(float64(depth))
}

func (QueueObserver) OrderProcessed(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	OrdersProcessedTotal.WithLabelValues(result).Inc()
}

// Middleware records HTTPRequestsTotal and HTTPRequestDuration. Errors are
// rendered here through c.Error so the recorded status is the final one.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Response().Status)).Inc()
			return nil
		}
	}
}

// Handler serves the default registry in the Prometheus text format.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
