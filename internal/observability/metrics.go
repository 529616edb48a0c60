package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the index service.
type Metrics struct {
	RunsTotal    prometheus.Counter
	RunErrors    prometheus.Counter
	RunDuration  prometheus.Histogram
	LoadDuration prometheus.Histogram
	PipelineUp   prometheus.Gauge

	// Output sink metrics.
	PublishErrors   *prometheus.CounterVec // labels: sink={kafka,parquet,xlsx,chart}
	PublishDuration *prometheus.HistogramVec

	// On-demand computation cache.
	CacheLookups *prometheus.CounterVec // labels: result={hit,miss}

	// Latest report.
	LastAHAMeanKm2   prometheus.Gauge
	LastExtremeYears prometheus.Gauge
	LastRunTimestamp prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RunsTotal,
		m.RunErrors,
		m.RunDuration,
		m.LoadDuration,
		m.PipelineUp,
		m.PublishErrors,
		m.PublishDuration,
		m.CacheLookups,
		m.LastAHAMeanKm2,
		m.LastExtremeYears,
		m.LastRunTimestamp,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aha",
			Name:      "runs_total",
			Help:      "Total index computations, scheduled and on-demand.",
		}),
		RunErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aha",
			Name:      "run_errors_total",
			Help:      "Index computations that returned an error.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "aha",
			Name:      "run_duration_seconds",
			Help:      "Duration of one AHA and extreme-count computation.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "aha",
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of reading and preparing the SLP dataset.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}),
		PipelineUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aha",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		PublishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aha",
			Name:      "publish_errors_total",
			Help:      "Failed publish attempts by sink.",
		}, []string{"sink"}),
		PublishDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aha",
			Name:      "publish_duration_seconds",
			Help:      "Duration of a successful publish by sink.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"sink"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aha",
			Name:      "cache_lookups_total",
			Help:      "On-demand report cache lookups by result.",
		}, []string{"result"}),
		LastAHAMeanKm2: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aha",
			Name:      "last_mean_area_km2",
			Help:      "Mean AHA of the latest scheduled report.",
		}),
		LastExtremeYears: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aha",
			Name:      "last_max_rolling_extremes",
			Help:      "Largest rolling extreme count in the latest scheduled report.",
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aha",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the latest scheduled report.",
		}),
	}
}
