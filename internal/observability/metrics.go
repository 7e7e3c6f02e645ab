package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "climstats"

// Metrics holds the Prometheus counters, histograms, and gauges for a run.
type Metrics struct {
	FilesRead    prometheus.Counter
	ReadErrors   prometheus.Counter
	ReadDuration prometheus.Histogram
	SeriesCache  *prometheus.CounterVec // labels: result={hit,miss}

	CitiesProcessed  prometheus.Counter
	CityYearDuration prometheus.Histogram
	RecordsWritten   *prometheus.CounterVec // labels: sink={csv,kafka}
	RunInProgress    prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		FilesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_read_total",
			Help:      "Dataset files opened and read.",
		}),
		ReadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "read_errors_total",
			Help:      "Dataset reads that failed.",
		}),
		ReadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "read_duration_seconds",
			Help:      "Time to read one city series from one file.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		SeriesCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "series_cache_total",
			Help:      "Series cache lookups by result.",
		}, []string{"result"}),
		CitiesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cities_processed_total",
			Help:      "Cities whose table rows were fully computed.",
		}),
		CityYearDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "city_year_duration_seconds",
			Help:      "Time to compute one city/year row including its climatology.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		RecordsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_written_total",
			Help:      "Table rows handed to each sink.",
		}, []string{"sink"}),
		RunInProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_in_progress",
			Help:      "1 while a run is executing, 0 otherwise.",
		}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FilesRead,
		m.ReadErrors,
		m.ReadDuration,
		m.SeriesCache,
		m.CitiesProcessed,
		m.CityYearDuration,
		m.RecordsWritten,
		m.RunInProgress,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
