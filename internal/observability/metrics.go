package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// forecast and session-store paths.
type Metrics struct {
	// Forecast path.
	ForecastFetches  *prometheus.CounterVec // labels: outcome={success,error}
	ChartsNormalized prometheus.Counter
	RowsSkipped      prometheus.Counter
	SparseRows       prometheus.Counter

	// Region location.
	RegionProbes        *prometheus.CounterVec // labels: outcome={hit,miss,error}
	RegionLocateSeconds prometheus.Histogram

	// Remote document store client.
	RemoteRequestSeconds *prometheus.HistogramVec // labels: endpoint={metadata,forecasts,directory}
	DirectoryCache       *prometheus.CounterVec   // labels: result={hit,miss}

	// Session store.
	StoreOps       *prometheus.CounterVec   // labels: op, outcome={success,error}
	StoreOpSeconds *prometheus.HistogramVec // labels: op
}

// NewMetrics creates and registers all metrics with the default registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ForecastFetches,
		m.ChartsNormalized,
		m.RowsSkipped,
		m.SparseRows,
		m.RegionProbes,
		m.RegionLocateSeconds,
		m.RemoteRequestSeconds,
		m.DirectoryCache,
		m.StoreOps,
		m.StoreOpSeconds,
	)
	return m
}

// NewMetricsForTesting creates Metrics with unregistered collectors to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ForecastFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "surfcast",
			Name:      "forecast_fetches_total",
			Help:      "Forecast fetch operations by outcome.",
		}, []string{"outcome"}),
		ChartsNormalized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "surfcast",
			Name:      "charts_normalized_total",
			Help:      "Charts produced by normalization.",
		}),
		RowsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "surfcast",
			Name:      "forecast_rows_skipped_total",
			Help:      "Raw rows dropped during normalization (markers, missing timestamps, before cutoff).",
		}),
		SparseRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "surfcast",
			Name:      "forecast_rows_sparse_total",
			Help:      "Rows normalized with no numeric sensor payload.",
		}),
		RegionProbes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "surfcast",
			Name:      "region_probes_total",
			Help:      "Region metadata probes by outcome.",
		}, []string{"outcome"}),
		RegionLocateSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "surfcast",
			Name:      "region_locate_duration_seconds",
			Help:      "Duration of a full fan-out region location.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		RemoteRequestSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "surfcast",
			Name:      "remote_request_duration_seconds",
			Help:      "Remote document store request duration by endpoint.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"endpoint"}),
		DirectoryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "surfcast",
			Name:      "directory_cache_total",
			Help:      "Beach directory cache lookups by result.",
		}, []string{"result"}),
		StoreOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "surfcast",
			Name:      "store_ops_total",
			Help:      "Session store operations by op and outcome.",
		}, []string{"op", "outcome"}),
		StoreOpSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "surfcast",
			Name:      "store_op_duration_seconds",
			Help:      "Session store operation duration by op.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"op"}),
	}
}
