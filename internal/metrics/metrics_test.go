package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// captureBackend buffers events for assertions.
type captureBackend struct {
	mu       sync.Mutex
	counts   map[string]float64
	observed map[string][]float64
	labels   map[string]Labels
	flushed  int
}

func newCapture() *captureBackend {
	return &captureBackend{
		counts:   map[string]float64{},
		observed: map[string][]float64{},
		labels:   map[string]Labels{},
	}
}

func (c *captureBackend) IncCounter(name string, delta float64, labels Labels) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[name] += delta
	c.labels[name] = labels
}

func (c *captureBackend) ObserveHistogram(name string, value float64, labels Labels) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observed[name] = append(c.observed[name], value)
	c.labels[name] = labels
}

func (c *captureBackend) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushed++
	return nil
}

func TestRecorders(t *testing.T) {
	c := newCapture()
	SetBackend(c)
	defer SetBackend(nil)

	RecordStage("detect", nil, 250*time.Millisecond)
	RecordStage("load", errors.New("boom"), time.Second)
	RecordRows("loaded", 42)
	RecordRows("loaded", 0) // ignored
	RecordRequest("/api/plan", 200, 10*time.Millisecond)

	if got := c.counts[MetricStageTotal]; got != 2 {
		t.Errorf("stage count = %v, want 2", got)
	}
	if got := c.labels[MetricStageTotal]["status"]; got != "error" {
		t.Errorf("last stage status = %q, want error", got)
	}
	if got := c.counts[MetricRowsTotal]; got != 42 {
		t.Errorf("rows = %v, want 42", got)
	}
	if got := c.labels[MetricHTTPRequests]["status"]; got != "200" {
		t.Errorf("request status label = %q, want 200", got)
	}
	if got := len(c.observed[MetricStageDuration]); got != 2 {
		t.Errorf("duration samples = %d, want 2", got)
	}
}

func TestFlushDelegates(t *testing.T) {
	c := newCapture()
	SetBackend(c)
	defer SetBackend(nil)

	if err := Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if c.flushed != 1 {
		t.Errorf("flushed = %d, want 1", c.flushed)
	}

	// The nop default has no Flusher; Flush must still succeed.
	SetBackend(nil)
	if err := Flush(); err != nil {
		t.Fatalf("Flush with nop backend: %v", err)
	}
}
