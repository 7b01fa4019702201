package metrics

import "github.com/prometheus/client_golang/prometheus"

// Advice pipeline Prometheus metrics.
var (
	StreamsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "advice",
			Name:      "streams_total",
			Help:      "Total number of advice streams by outcome",
		},
		[]string{"provider", "status"},
	)

	StreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "advice",
			Name:      "stream_duration_seconds",
			Help:      "Advice stream duration in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"provider"},
	)

	FragmentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "advice",
			Name:      "fragments_total",
			Help:      "Total number of decoded text fragments appended",
		},
	)

	CheckpointsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "advice",
			Name:      "checkpoints_total",
			Help:      "Total number of durable response persists",
		},
	)

	QuotaRejectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "advice",
			Name:      "quota_rejections_total",
			Help:      "Total number of requests rejected by the daily quota",
		},
	)
)

// Register registers all pipeline metrics with a registry.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(
		StreamsTotal,
		StreamDuration,
		FragmentsTotal,
		CheckpointsTotal,
		QuotaRejectionsTotal,
	)
}
