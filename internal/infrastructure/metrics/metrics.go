// Package metrics provides Prometheus metrics for catalogchat.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  prometheus.Histogram
	ResolutionsTotal *prometheus.CounterVec
	IndexedChunks    prometheus.Gauge
}

// New creates the collectors and registers them with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalogchat_requests_total",
				Help: "Total number of chat API requests",
			},
			[]string{"status"},
		),
		RequestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "catalogchat_request_duration_seconds",
				Help:    "Duration of chat API requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		ResolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalogchat_resolutions_total",
				Help: "Resolution outcomes by terminal stage",
			},
			[]string{"outcome"},
		),
		IndexedChunks: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "catalogchat_indexed_chunks",
				Help: "Number of chunks in the vector index",
			},
		),
	}

	reg.MustRegister(m.RequestsTotal, m.RequestDuration, m.ResolutionsTotal, m.IndexedChunks)
	return m
}
