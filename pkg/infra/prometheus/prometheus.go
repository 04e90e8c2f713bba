package prometheus

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(prometheus.Labels{"service": "contentguard"}, registry)

var (
	moderationLabels = []string{"content_type", "backend"}

	// Latency buckets in milliseconds; remote inference usually lands in 100ms-2.5s.
	latencyBuckets = []float64{
		5, 10, 25,
		50, 100, 250,
		500, 1000, 2500,
		5000, 10000, 30000,
	}

	ModerationChecksTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentguard_moderation_checks_total",
			Help: "Moderation requests by outcome (clean, flagged, error)",
		},
		append(moderationLabels, "outcome"),
	)

	ModerationFlagsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentguard_moderation_flags_total",
			Help: "Flagged moderation verdicts by severity",
		},
		append(moderationLabels, "severity"),
	)

	CategoryFlagsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentguard_category_flags_total",
			Help: "Flagged categories across all verdicts",
		},
		[]string{"category"},
	)

	ClassificationLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contentguard_classification_latency_ms",
			Help:    "Classifier call latency in milliseconds",
			Buckets: latencyBuckets,
		},
		moderationLabels,
	)

	HTTPRequestsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentguard_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contentguard_http_latency_ms",
			Help:    "HTTP request latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"route"},
	)
)

type MetricsConfig struct {
	EnableLatency       bool // classifier and HTTP latency histograms
	EnableCategoryFlags bool // per-category counter (cardinality follows the model's label set)
}

func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		EnableLatency:       true,
		EnableCategoryFlags: true,
	}
}

var (
	Config   = DefaultMetricsConfig()
	initOnce sync.Once
)

func Initialize(cfg MetricsConfig) {
	Config = cfg
	initOnce.Do(func() {
		registry.MustRegister(
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewGoCollector(),
		)
	})
}

func Registry() *prometheus.Registry {
	return registry
}
