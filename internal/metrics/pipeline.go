package metrics

import "github.com/prometheus/client_golang/prometheus"

// Namespace prefixes every pagex metric.
const Namespace = "pagex"

// Pipeline Prometheus metrics.
var (
	InferenceRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "inference_requests_total",
			Help:      "Total number of page inference requests",
		},
		[]string{"provider", "model", "status"},
	)

	InferenceRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "inference_request_duration_seconds",
			Help:      "Page inference request duration in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
		[]string{"provider", "model"},
	)

	InferenceTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "inference_tokens_total",
			Help:      "Total inference tokens consumed",
		},
		[]string{"provider", "model", "type"}, // "prompt" / "completion"
	)

	InferenceErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "inference_errors_total",
			Help:      "Total inference errors",
		},
		[]string{"provider", "model", "error_type"},
	)

	PagesProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "pages_processed_total",
			Help:      "Pages extracted, by parsed result variant",
		},
		[]string{"result"}, // "structured" / "raw"
	)

	DocumentsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "documents_processed_total",
			Help:      "Documents processed by the batch driver",
		},
		[]string{"status"},
	)

	RenderDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "render_duration_seconds",
			Help:      "Time to rasterise one document",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers Prometheus pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(InferenceRequestsTotal)
	prometheus.MustRegister(InferenceRequestDuration)
	prometheus.MustRegister(InferenceTokensTotal)
	prometheus.MustRegister(InferenceErrorsTotal)
	prometheus.MustRegister(PagesProcessedTotal)
	prometheus.MustRegister(DocumentsProcessedTotal)
	prometheus.MustRegister(RenderDuration)
	pipelineMetricsRegistered = true
}
