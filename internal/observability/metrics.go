package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Bootstrap metrics
	BootstrapRuns     prometheus.Counter
	BootstrapDuration prometheus.Histogram

	// Collaborator metrics
	CollaboratorsResolved        *prometheus.CounterVec
	CollaboratorResolutionErrors *prometheus.CounterVec

	// Search path metrics
	SearchPathEntries prometheus.Gauge
}

var (
	metricsInstance *Metrics
	metricsOnce     sync.Once
)

// GetMetrics returns the singleton metrics instance
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = &Metrics{
			BootstrapRuns: promauto.NewCounter(prometheus.CounterOpts{
				Name: "trainpipe_bootstrap_runs_total",
				Help: "Total number of bootstrap sequences started",
			}),
			BootstrapDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "trainpipe_bootstrap_duration_seconds",
				Help:    "Duration of the bootstrap sequence in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8), // 100µs to ~1.6s
			}),

			CollaboratorsResolved: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "trainpipe_collaborators_resolved_total",
					Help: "Total number of collaborators resolved by name",
				},
				[]string{"collaborator"},
			),
			CollaboratorResolutionErrors: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "trainpipe_collaborator_resolution_failures_total",
					Help: "Total number of collaborators that could not be resolved",
				},
				[]string{"collaborator"},
			),

			SearchPathEntries: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "trainpipe_search_path_entries",
				Help: "Current number of entries on the collaborator search path",
			}),
		}
	})
	return metricsInstance
}
