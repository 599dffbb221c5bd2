// Package metrics provides Prometheus metrics for a health-check run.
//
// A run is a one-shot process, so nothing is served; the registry can be
// dumped once at the end in node-exporter textfile format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hamed0406/channelchecker/internal/domain"
)

// Metrics is nil-safe: every method on a nil *Metrics is a no-op.
type Metrics struct {
	Registry *prometheus.Registry

	// StageResults counts stage outcomes by stage and status.
	StageResults *prometheus.CounterVec
	// StageDuration observes how long each stage took.
	StageDuration *prometheus.HistogramVec
	// Inflight tracks evaluations currently running.
	Inflight prometheus.Gauge
	// Channels holds the last run's healthy/unhealthy counts.
	Channels *prometheus.GaugeVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		StageResults: f.NewCounterVec(prometheus.CounterOpts{
			Name: "channelcheck_stage_results_total",
			Help: "Total number of stage outcomes, by stage and status.",
		}, []string{"stage", "status"}),
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "channelcheck_stage_duration_seconds",
			Help:    "Wall time spent per stage, by stage.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20, 30, 60},
		}, []string{"stage"}),
		Inflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "channelcheck_inflight_evaluations",
			Help: "Current number of channel evaluations in progress.",
		}),
		Channels: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "channelcheck_channels",
			Help: "Channels in the last run, by health (healthy/unhealthy).",
		}, []string{"health"}),
	}
}

// ObserveStage records one stage outcome.
func (m *Metrics) ObserveStage(stage domain.Stage, r domain.Result) {
	if m == nil {
		return
	}
	m.StageResults.WithLabelValues(string(stage), r.Status.String()).Inc()
	// skipped stages did not run
	if r.Status != domain.StatusSkipped {
		m.StageDuration.WithLabelValues(string(stage)).Observe(r.Duration.Seconds())
	}
}

func (m *Metrics) EvaluationStarted() {
	if m == nil {
		return
	}
	m.Inflight.Inc()
}

func (m *Metrics) EvaluationDone() {
	if m == nil {
		return
	}
	m.Inflight.Dec()
}

// RecordReport sets the channel gauges from a finished report.
func (m *Metrics) RecordReport(rep domain.Report) {
	if m == nil {
		return
	}
	m.Channels.WithLabelValues("healthy").Set(float64(rep.Healthy))
	m.Channels.WithLabelValues("unhealthy").Set(float64(rep.Total - rep.Healthy))
}

// WriteTextfile dumps the registry for the node-exporter textfile collector.
// The write is atomic.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
