// Package telemetry records HTTP request metrics and logs slow
// requests. Metrics are exported through the Prometheus registry the
// store metrics already feed.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"burrow/pkg/logger"
)

var (
	requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "burrow_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "status"})

	latency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "burrow_http_request_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	inflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "burrow_http_inflight_requests",
		Help: "Requests currently being served.",
	})
)

var slowThreshold = 200 * time.Millisecond

// SetSlowThreshold sets the duration above which requests get a
// dedicated log line. d <= 0 disables slow logging.
func SetSlowThreshold(d time.Duration) { slowThreshold = d }

// RouteNamer maps a request to its metric label. Using the route
// pattern instead of the raw path keeps label cardinality bounded.
type RouteNamer func(r *http.Request) string

// Middleware instruments the handler with request count, latency and
// in-flight gauges, plus slow-request logging.
func Middleware(name RouteNamer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.LogRequest(r)
			start := time.Now()
			inflight.Inc()
			srw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(srw, r)
			inflight.Dec()

			route := name(r)
			dur := time.Since(start)
			requests.WithLabelValues(route, httpStatusLabel(srw.status)).Inc()
			latency.WithLabelValues(route).Observe(dur.Seconds())

			if slowThreshold > 0 && dur > slowThreshold {
				logger.Log.Warn("slow_request",
					zap.String("route", route),
					zap.String("method", r.Method),
					zap.Int("status", srw.status),
					zap.Duration("duration", dur))
			}
		})
	}
}

func httpStatusLabel(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// statusRecorder captures the response status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
