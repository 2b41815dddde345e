package revision

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	revisionsCreated    *prometheus.CounterVec
	deltaBytes          prometheus.Histogram
	materializeDuration prometheus.Histogram
}

func NewMetrics() *Metrics {
	return &Metrics{
		revisionsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "articlestore",
				Name:      "revisions_created_total",
				Help:      "Number of revisions created, by content kind",
			},
			[]string{"kind"},
		),
		deltaBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "articlestore",
				Name:      "delta_bytes",
				Help:      "Size of stored diff payloads in bytes",
				Buckets:   prometheus.ExponentialBuckets(32, 4, 8),
			},
		),
		materializeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "articlestore",
				Name:      "materialize_duration_seconds",
				Help:      "Time spent reconstructing revision text",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
}

// Collectors returns the collectors to register with a prometheus registry.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.revisionsCreated, m.deltaBytes, m.materializeDuration}
}
