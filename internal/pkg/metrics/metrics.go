package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "matjip",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "matjip",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"method", "path"})

	// Provider metrics: every external call is counted per provider so
	// throttling and outages are visible without log diving.
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "matjip",
		Subsystem: "provider",
		Name:      "requests_total",
		Help:      "Total calls issued to external providers",
	}, []string{"provider"})

	ProviderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "matjip",
		Subsystem: "provider",
		Name:      "errors_total",
		Help:      "Total failed calls to external providers (degraded, not fatal)",
	}, []string{"provider"})

	ProviderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "matjip",
		Subsystem: "provider",
		Name:      "request_duration_seconds",
		Help:      "External provider call latency in seconds",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"provider"})

	// Pipeline metrics
	RecommendationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "matjip",
		Subsystem: "pipeline",
		Name:      "recommendations_total",
		Help:      "Total completed recommendation runs",
	}, []string{"mode"}) // "address" | "routed"

	PipelineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "matjip",
		Subsystem: "pipeline",
		Name:      "duration_seconds",
		Help:      "End-to-end enrichment pipeline duration",
		Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
	})

	KeywordFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "matjip",
		Subsystem: "pipeline",
		Name:      "keyword_fallbacks_total",
		Help:      "Times the static keyword list was used instead of AI output",
	})

	// Cache metrics
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "matjip",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "matjip",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "matjip",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})
)

// Provider label values.
const (
	ProviderNaverSearch     = "naver_search"
	ProviderNaverDirections = "naver_directions"
	ProviderGemini          = "gemini"
	ProviderScraper         = "scraper"
)

// ObserveProvider records one provider call.
func ObserveProvider(provider string, start time.Time, err error) {
	ProviderRequests.WithLabelValues(provider).Inc()
	ProviderDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		ProviderErrors.WithLabelValues(provider).Inc()
	}
}

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
