package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/frudas24/touchrelay/internal/coord"
)

// FakeTextSink records text written back by drags.
type FakeTextSink struct {
	mu    sync.Mutex
	Texts []string
}

// SendText records text.
func (f *FakeTextSink) SendText(text string) {
	f.mu.Lock()
	f.Texts = append(f.Texts, text)
	f.mu.Unlock()
}

// All returns a copy of the recorded texts.
func (f *FakeTextSink) All() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Texts...)
}

// SampleRecorder collects delivered samples.
type SampleRecorder struct {
	mu      sync.Mutex
	samples []coord.Sample
}

// Deliver records s.
func (r *SampleRecorder) Deliver(s coord.Sample) {
	r.mu.Lock()
	r.samples = append(r.samples, s)
	r.mu.Unlock()
}

// Samples returns a copy of the recorded samples.
func (r *SampleRecorder) Samples() []coord.Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]coord.Sample(nil), r.samples...)
}

// Len returns the number of recorded samples.
func (r *SampleRecorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

// Eventually polls cond until it holds or timeout elapses.
func Eventually(t testing.TB, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !cond() {
		t.Fatalf("timed out: %s", msg)
	}
}
