// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// A conversion run is a short-lived batch job, so metrics are pushed to a
// Pushgateway on Flush rather than exposed for scraping. The job name is the
// Pushgateway grouping key; run_id, when set, is added as a second key.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"tosql/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string
	jobName    string
	runID      string
	reg        *prometheus.Registry

	stepCounter  *prometheus.CounterVec   // tosql_step_total{step,status}
	stepDuration *prometheus.HistogramVec // tosql_step_duration_seconds{step,status}
	rowCounter   *prometheus.CounterVec   // tosql_rows_total{table,kind}
	batchCounter *prometheus.CounterVec   // tosql_batches_total{table}
}

// NewBackend constructs a Pushgateway backend. gatewayURL is required;
// jobName defaults to "tosql".
func NewBackend(jobName, gatewayURL, runID string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "tosql"
	}

	b := &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		runID:      runID,
		reg:        prometheus.NewRegistry(),
		stepCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.StepTotal,
			Help: "Pipeline step executions by step and status.",
		}, []string{"step", "status"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metrics.StepDuration,
			Help:    "Pipeline step duration in seconds by step and status.",
			Buckets: prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"step", "status"}),
		rowCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.RowsTotal,
			Help: "Rows by table and kind (read, inserted, rejected).",
		}, []string{"table", "kind"}),
		batchCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.BatchesTotal,
			Help: "Insert batches flushed per table.",
		}, []string{"table"}),
	}

	for name, c := range map[string]prometheus.Collector{
		"step counter":  b.stepCounter,
		"step duration": b.stepDuration,
		"row counter":   b.rowCounter,
		"batch counter": b.batchCounter,
	} {
		if err := b.reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}
	return b, nil
}

// IncCounter routes known metric names to their collectors; unknown names
// are ignored.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StepTotal:
		if b.stepCounter != nil {
			b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)
		}
	case metrics.RowsTotal:
		if b.rowCounter != nil {
			b.rowCounter.WithLabelValues(labels["table"], labels["kind"]).Add(delta)
		}
	case metrics.BatchesTotal:
		if b.batchCounter != nil {
			b.batchCounter.WithLabelValues(labels["table"]).Add(delta)
		}
	}
}

// ObserveHistogram records step durations.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDuration || b.stepDuration == nil {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the registry to the Pushgateway, replacing the group.
func (b *Backend) Flush() error {
	p := push.New(b.gatewayURL, b.jobName).Gatherer(b.reg)
	if b.runID != "" {
		p = p.Grouping("run_id", b.runID)
	}
	if err := p.Push(); err != nil {
		return fmt.Errorf("prompush: push: %w", err)
	}
	return nil
}
