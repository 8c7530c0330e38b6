package writeback

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/frudas24/touchrelay/internal/testutil"
)

// textServer records PATCH bodies.
type textServer struct {
	mu     sync.Mutex
	texts  []string
	times  []time.Time
	method string
	ctype  string
}

// ServeHTTP records the request.
func (s *textServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	s.mu.Lock()
	s.texts = append(s.texts, body.Text)
	s.times = append(s.times, time.Now())
	s.method = r.Method
	s.ctype = r.Header.Get("Content-Type")
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// snapshot returns recorded texts and the last method and content type.
func (s *textServer) snapshot() ([]string, string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.texts...), s.method, s.ctype
}

// TestSendText_Patches verifies text is PATCHed as JSON.
func TestSendText_Patches(t *testing.T) {
	rec := &textServer{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	c := New(srv.URL, 0, nil)
	defer c.Close()
	c.SendText("Hello world")

	testutil.Eventually(t, 2*time.Second, func() bool {
		texts, _, _ := rec.snapshot()
		return len(texts) == 1
	}, "patch request")
	texts, method, ctype := rec.snapshot()
	if texts[0] != "Hello world" || method != http.MethodPatch || ctype != "application/json" {
		t.Fatalf("unexpected request: %q %s %s", texts[0], method, ctype)
	}
}

// TestSendText_EmptyText verifies empty selections are still written.
func TestSendText_EmptyText(t *testing.T) {
	rec := &textServer{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	c := New(srv.URL, 0, nil)
	defer c.Close()
	c.SendText("")
	testutil.Eventually(t, 2*time.Second, func() bool {
		texts, _, _ := rec.snapshot()
		return len(texts) == 1 && texts[0] == ""
	}, "empty patch")
}

// arrivals returns the times requests were received.
func (s *textServer) arrivals() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Time(nil), s.times...)
}

// TestSendText_Paced verifies the limiter spaces consecutive writes.
func TestSendText_Paced(t *testing.T) {
	rec := &textServer{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	c := New(srv.URL, 10, nil)
	defer c.Close()
	for i, text := range []string{"a", "b"} {
		c.SendText(text)
		want := i + 1
		testutil.Eventually(t, 2*time.Second, func() bool {
			texts, _, _ := rec.snapshot()
			return len(texts) == want
		}, "write "+text)
	}
	times := rec.arrivals()
	if gap := times[1].Sub(times[0]); gap < 80*time.Millisecond {
		t.Fatalf("expected pacing at 10/s, writes were %v apart", gap)
	}
}

// TestSendText_BurstKeepsLatest verifies a burst collapses to the newest text.
func TestSendText_BurstKeepsLatest(t *testing.T) {
	rec := &textServer{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	c := New(srv.URL, 10, nil)
	defer c.Close()
	for i := 0; i < 50; i++ {
		c.SendText(fmt.Sprintf("t%d", i))
	}
	testutil.Eventually(t, 2*time.Second, func() bool {
		texts, _, _ := rec.snapshot()
		return len(texts) > 0 && texts[len(texts)-1] == "t49"
	}, "latest text written")
	time.Sleep(300 * time.Millisecond)
	texts, _, _ := rec.snapshot()
	if len(texts) > 3 || texts[len(texts)-1] != "t49" {
		t.Fatalf("expected at most 3 writes ending in t49, got %v", texts)
	}
}

// TestSend_StatusError verifies non-2xx responses become errors.
func TestSend_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, 0, nil)
	defer c.Close()
	err := c.send(c.ctx, "x")
	var werr *Error
	if !errors.As(err, &werr) || werr.URL != srv.URL {
		t.Fatalf("expected writeback error, got %v", err)
	}
}

// TestSendText_UnreachableSwallowed verifies failures never surface to the caller.
func TestSendText_UnreachableSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, 0, nil)
	c.SendText("lost")
	c.Close()
}
