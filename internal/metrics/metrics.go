package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	VisualizationsNormalized = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "advisor_visualizations_normalized_total",
		Help: "Total number of visualization descriptors produced, by kind.",
	}, []string{"kind"})

	VisualizationsExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "advisor_visualizations_extracted_total",
		Help: "Total number of visualization entries passed through the extractor.",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "advisor_http_requests_total",
		Help: "Total number of API requests, by route and status code.",
	}, []string{"route", "code"})

	AskDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "advisor_ask_duration_seconds",
		Help:    "Duration of advisor ask invocations, including cache hits.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "advisor_cache_lookups_total",
		Help: "Reply cache lookups, by result (hit, miss, error).",
	}, []string{"result"})

	LLMCostUSD = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "advisor_llm_cost_usd_total",
		Help: "Accumulated model usage cost in USD.",
	}, []string{"model"})
)
