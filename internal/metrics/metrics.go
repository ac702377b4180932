// Package metrics records pipeline diagnostics as Prometheus collectors and
// writes them in the text exposition format, for node_exporter's textfile
// collector or for inspection.
package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/KaramelBytes/tabloom-cli/internal/importance"
	"github.com/KaramelBytes/tabloom-cli/internal/prep"
)

// Recorder owns a private registry so concurrent CLI runs and tests do not
// share state.
type Recorder struct {
	registry      *prometheus.Registry
	runs          *prometheus.CounterVec
	rows          *prometheus.CounterVec
	rowsRemoved   *prometheus.CounterVec
	columns       *prometheus.GaugeVec
	stageDuration *prometheus.HistogramVec
	featureScore  *prometheus.GaugeVec
	rowsDropped   prometheus.Counter
	mu            sync.Mutex
}

// NewRecorder creates and registers the tabloom collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tabloom_runs_total",
			Help: "Command runs by command and status",
		}, []string{"command", "status"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tabloom_rows_total",
			Help: "Rows entering and leaving the preprocessing pipeline",
		}, []string{"direction"}),
		rowsRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tabloom_rows_removed_total",
			Help: "Rows removed per cleaning method",
		}, []string{"method"}),
		columns: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tabloom_columns",
			Help: "Columns per class after the last preprocess run",
		}, []string{"class"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tabloom_stage_duration_seconds",
			Help:    "Wall time per pipeline stage",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30},
		}, []string{"stage"}),
		featureScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tabloom_feature_importance",
			Help: "Gini importance per feature from the last importance run",
		}, []string{"target", "feature"}),
		rowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tabloom_importance_rows_dropped_total",
			Help: "Rows left out of importance estimation because of missing values",
		}),
	}
	r.registry.MustRegister(r.runs, r.rows, r.rowsRemoved, r.columns, r.stageDuration, r.featureScore, r.rowsDropped)
	return r
}

// ObservePreprocess records the diagnostics of one preprocess run.
func (r *Recorder) ObservePreprocess(d prep.Diagnostics, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows.WithLabelValues("in").Add(float64(d.RowsIn))
	r.rows.WithLabelValues("out").Add(float64(d.RowsOut))
	for _, s := range d.Cleaning.Steps {
		r.rowsRemoved.WithLabelValues(s.Method.String()).Add(float64(s.Removed()))
	}
	r.columns.WithLabelValues("numeric").Set(float64(len(d.Numeric)))
	r.columns.WithLabelValues("categorical").Set(float64(len(d.Categorical)))
	r.columns.WithLabelValues("encoded").Set(float64(len(d.Encoding.Columns)))
	r.stageDuration.WithLabelValues(prep.StagePreprocess).Observe(elapsed.Seconds())
}

// ObserveImportance records one importance run.
func (r *Recorder) ObserveImportance(res *importance.Result, elapsed time.Duration) {
	if r == nil || res == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range res.Features {
		r.featureScore.WithLabelValues(res.Target, f.Feature).Set(f.Score)
	}
	r.rowsDropped.Add(float64(res.RowsDropped))
	r.stageDuration.WithLabelValues(prep.StageImportance).Observe(elapsed.Seconds())
}

// RunFinished counts a command run as ok or error.
func (r *Recorder) RunFinished(command string, err error) {
	if r == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.runs.WithLabelValues(command, status).Inc()
}

// WriteTextfile writes all collectors to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
