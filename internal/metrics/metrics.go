// Package metrics records operational metrics for a conversion run behind a
// pluggable Backend.
//
// The default backend is a no-op, so instrumentation is always safe to call.
// Concrete systems live in subpackages (prompush, datadog) and are installed
// with SetBackend by the wiring layer.
package metrics

import (
	"sync"
	"time"
)

// Metric names emitted by the Record helpers.
const (
	StepTotal    = "tosql_step_total"
	StepDuration = "tosql_step_duration_seconds"
	RowsTotal    = "tosql_rows_total"
	BatchesTotal = "tosql_batches_total"
)

// Row kinds for RecordRows.
const (
	RowsRead     = "read"
	RowsInserted = "inserted"
	RowsRejected = "rejected"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a duration-style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs a concrete backend. Passing nil restores the no-op.
func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if b == nil {
		b = nopBackend{}
	}
	backend = b
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStep counts one execution of a pipeline step and its duration,
// labelled by outcome.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "step": step, "status": status}

	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// Step starts timing a step; call the returned func with the step's result.
//
//	done := metrics.Step(job, "read")
//	err := read()
//	done(err)
func Step(job, step string) func(error) {
	start := time.Now()
	return func(err error) { RecordStep(job, step, err, time.Since(start)) }
}

// RecordRows adds delta rows of the given kind for table. Non-positive
// deltas are ignored.
func RecordRows(job, table, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(delta), Labels{"job": job, "table": table, "kind": kind})
}

// RecordBatches adds delta flushed batches for table.
func RecordBatches(job, table string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(BatchesTotal, float64(delta), Labels{"job": job, "table": table})
}
