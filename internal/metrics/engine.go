package metrics

import "github.com/prometheus/client_golang/prometheus"

// Engine Prometheus metrics.
var (
	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jurex",
			Name:      "queries_total",
			Help:      "Total number of answered queries by outcome",
		},
		[]string{"outcome"}, // "answered" / "no_context" / "validation_failed" / "synthesis_failed"
	)

	PlanRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jurex",
			Name:      "plan_requests_total",
			Help:      "Total number of query plans by planning mode",
		},
		[]string{"mode"}, // "llm" / "heuristic" / "fallback"
	)

	RetrievalFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jurex",
			Name:      "retrieval_failures_total",
			Help:      "Total number of per-corpus retrieval failures",
		},
		[]string{"corpus"},
	)

	RetrievedPassagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jurex",
			Name:      "retrieved_passages_total",
			Help:      "Total number of passages returned by retrieval",
		},
		[]string{"corpus"},
	)

	ContextSizeChars = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "jurex",
			Name:      "context_size_chars",
			Help:      "Assembled context size in characters",
			Buckets:   []float64{0, 500, 1000, 2000, 4000, 8000, 16000, 32000},
		},
	)

	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jurex",
			Name:      "generation_requests_total",
			Help:      "Total number of generation requests",
		},
		[]string{"provider", "model", "status"},
	)

	GenerationRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jurex",
			Name:      "generation_request_duration_seconds",
			Help:      "Generation request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider", "model"},
	)

	GenerationTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jurex",
			Name:      "generation_tokens_total",
			Help:      "Total generation tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jurex",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"provider", "model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jurex",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jurex",
			Name:      "embedding_tokens_total",
			Help:      "Total embedding tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)
)

var engineMetricsRegistered bool

// RegisterEngineMetrics registers Prometheus engine metrics. Must be called once from main.
func RegisterEngineMetrics() {
	if engineMetricsRegistered {
		return
	}
	prometheus.MustRegister(QueriesTotal)
	prometheus.MustRegister(PlanRequestsTotal)
	prometheus.MustRegister(RetrievalFailuresTotal)
	prometheus.MustRegister(RetrievedPassagesTotal)
	prometheus.MustRegister(ContextSizeChars)
	prometheus.MustRegister(GenerationRequestsTotal)
	prometheus.MustRegister(GenerationRequestDuration)
	prometheus.MustRegister(GenerationTokensTotal)
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(EmbeddingTokensTotal)
	engineMetricsRegistered = true
}
