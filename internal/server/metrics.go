package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/KaramelBytes/markboard-cli/internal/pipeline"
)

// Metrics counts pipeline events served over HTTP.
type Metrics struct {
	uploads      *prometheus.CounterVec
	aggregations prometheus.Counter
	records      prometheus.Histogram
	sessions     prometheus.Gauge
}

// NewMetrics registers the markboard collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "markboard",
			Name:      "uploads_total",
			Help:      "Uploads processed, by outcome.",
		}, []string{"status"}),
		aggregations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "markboard",
			Name:      "aggregations_total",
			Help:      "Subject aggregates computed.",
		}),
		records: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "markboard",
			Name:      "upload_records",
			Help:      "Course records kept per successful upload.",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 6),
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "markboard",
			Name:      "sessions_active",
			Help:      "Live dashboard sessions.",
		}),
	}
	reg.MustRegister(m.uploads, m.aggregations, m.records, m.sessions)
	return m
}

func (m *Metrics) observeUpload(st pipeline.Status, records int) {
	kind := string(st.Kind)
	if kind == "" {
		kind = "none"
	}
	m.uploads.WithLabelValues(kind).Inc()
	if st.OK() {
		m.records.Observe(float64(records))
	}
}
