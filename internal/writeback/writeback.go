// Package writeback sends text selected in the page back to the coordinate source.
package writeback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/frudas24/touchrelay/internal/logging"
	"golang.org/x/time/rate"
)

const defaultTimeout = 3 * time.Second

// Error describes a failed write. It is logged, never returned to the simulator.
type Error struct {
	URL string
	Err error
}

// Error implements error.
func (e *Error) Error() string {
	return fmt.Sprintf("writeback %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Client PATCHes {"text": ...} to the source's data endpoint.
type Client struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
	log     *log.Logger

	mu         sync.Mutex
	pending    string
	hasPending bool
	wake       chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New returns a client allowing perSecond writes with a burst of one.
// A non-positive rate disables pacing.
func New(url string, perSecond float64, logger *log.Logger) *Client {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		url:     url,
		client:  &http.Client{Timeout: defaultTimeout},
		limiter: rate.NewLimiter(limit, 1),
		log:     logging.Component(logger, "writeback"),
		wake:    make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go c.run()
	return c
}

// SendText schedules text for writing and returns immediately. Only the
// latest unsent text is kept; older pending texts are replaced.
func (c *Client) SendText(text string) {
	c.mu.Lock()
	if c.hasPending {
		c.log.Debug("replacing pending text")
	}
	c.pending = text
	c.hasPending = true
	c.mu.Unlock()
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Close cancels the pending write and waits for the worker to exit.
func (c *Client) Close() {
	c.cancel()
	<-c.done
}

// run writes pending texts one at a time, paced by the limiter.
func (c *Client) run() {
	defer close(c.done)
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.wake:
		}
		if err := c.limiter.Wait(c.ctx); err != nil {
			c.log.Debug("write abandoned", "err", err)
			return
		}
		text, ok := c.take()
		if !ok {
			continue
		}
		if err := c.send(c.ctx, text); err != nil {
			c.log.Debug("write failed", "err", err)
		}
	}
}

// take removes and returns the pending text.
func (c *Client) take() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasPending {
		return "", false
	}
	text := c.pending
	c.pending, c.hasPending = "", false
	return text, true
}

// send performs one PATCH.
func (c *Client) send(ctx context.Context, text string) error {
	body, err := json.Marshal(struct {
		Text string `json:"text"`
	}{Text: text})
	if err != nil {
		return &Error{URL: c.url, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.url, bytes.NewReader(body))
	if err != nil {
		return &Error{URL: c.url, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return &Error{URL: c.url, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{URL: c.url, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	return nil
}
