package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"PriceBox/internal/pipeline"
)

// Outcome labels for pipeline runs and archive exports.
const (
	OutcomeOK      = "ok"
	OutcomeWarning = "warning"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Metrics holds all Prometheus metrics for the viewer.
type Metrics struct {
	Registry *prometheus.Registry

	PipelineRuns     *prometheus.CounterVec // labels: surface, outcome
	PipelineDuration prometheus.Histogram
	SeriesPerRun     prometheus.Histogram
	DatasetRecords   prometheus.Gauge
	DatasetDates     prometheus.Gauge
	WSSessions       prometheus.Gauge
	ArchiveExports   *prometheus.CounterVec // labels: outcome
}

// NewMetrics registers all metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		PipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricebox_pipeline_runs_total",
			Help: "Pipeline runs by surface (http, png, ws, telegram, archive, cli) and outcome",
		}, []string{"surface", "outcome"}),
		PipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pricebox_pipeline_duration_seconds",
			Help:    "Filter, group and series build latency per run",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		SeriesPerRun: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pricebox_pipeline_series",
			Help:    "Number of time buckets produced per successful run",
			Buckets: []float64{1, 6, 12, 24, 48, 96, 144, 288},
		}),
		DatasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pricebox_dataset_records",
			Help: "Records held in the loaded dataset",
		}),
		DatasetDates: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pricebox_dataset_dates",
			Help: "Distinct dates in the loaded dataset",
		}),
		WSSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pricebox_ws_sessions",
			Help: "Open websocket selection sessions",
		}),
		ArchiveExports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricebox_archive_exports_total",
			Help: "Archived dates by outcome",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.PipelineRuns,
		m.PipelineDuration,
		m.SeriesPerRun,
		m.DatasetRecords,
		m.DatasetDates,
		m.WSSessions,
		m.ArchiveExports,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// OutcomeOf classifies a pipeline error.
func OutcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case pipeline.IsWarning(err):
		return OutcomeWarning
	case pipeline.IsInputError(err):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

// ObserveRun records one pipeline run.
func (m *Metrics) ObserveRun(surface string, elapsed time.Duration, res *pipeline.Result, err error) {
	m.PipelineRuns.WithLabelValues(surface, OutcomeOf(err)).Inc()
	m.PipelineDuration.Observe(elapsed.Seconds())
	if res != nil {
		m.SeriesPerRun.Observe(float64(len(res.Series)))
	}
}
