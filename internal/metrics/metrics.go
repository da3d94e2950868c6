// Package metrics is the thin instrumentation seam the rest of the code
// records through. The core depends only on the Backend interface; concrete
// exporters (Datadog) live in subpackages and are selected at startup.
//
// The default backend drops everything, so library code can record
// unconditionally without configuration checks.
package metrics

import (
	"strconv"
	"sync"
	"time"
)

// Labels are low-cardinality metric dimensions.
type Labels map[string]string

// Backend receives raw metric events.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
}

// Flusher is implemented by backends that buffer submissions.
type Flusher interface {
	Flush() error
}

// Metric names shared between recorders and backends.
const (
	MetricStageTotal      = "normalizer_stage_total"
	MetricStageDuration   = "normalizer_stage_duration_seconds"
	MetricRowsTotal       = "normalizer_rows_total"
	MetricHTTPRequests    = "normalizer_http_requests_total"
	MetricHTTPReqDuration = "normalizer_http_request_duration_seconds"
)

type nop struct{}

func (nop) IncCounter(string, float64, Labels)       {}
func (nop) ObserveHistogram(string, float64, Labels) {}

// Nop returns a backend that discards every event.
func Nop() Backend { return nop{} }

var (
	mu      sync.RWMutex
	current Backend = nop{}
)

// SetBackend installs the process-wide backend. Passing nil restores the
// discarding default.
func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if b == nil {
		b = nop{}
	}
	current = b
}

func backend() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Flush flushes the current backend if it buffers; otherwise it is a no-op.
func Flush() error {
	if f, ok := backend().(Flusher); ok {
		return f.Flush()
	}
	return nil
}

// RecordStage records one pipeline stage run (detect, plan, transform,
// load) with its outcome and duration.
func RecordStage(stage string, err error, d time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	l := Labels{"stage": stage, "status": status}
	b := backend()
	b.IncCounter(MetricStageTotal, 1, l)
	b.ObserveHistogram(MetricStageDuration, d.Seconds(), l)
}

// RecordRows counts rows flowing through the pipeline, bucketed by kind
// (e.g. "input", "projected", "loaded").
func RecordRows(kind string, n int) {
	if n <= 0 {
		return
	}
	backend().IncCounter(MetricRowsTotal, float64(n), Labels{"kind": kind})
}

// RecordRequest records one API request.
func RecordRequest(route string, status int, d time.Duration) {
	l := Labels{"route": route, "status": strconv.Itoa(status)}
	b := backend()
	b.IncCounter(MetricHTTPRequests, 1, l)
	b.ObserveHistogram(MetricHTTPReqDuration, d.Seconds(), l)
}
