package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/frudas24/touchrelay/internal/coord"
)

const maxPullBody = 64 << 10

// startPullLocked launches the polling ticker; m.mu must be held.
func (m *Manager) startPullLocked() {
	ctx, cancel := context.WithCancel(m.ctx)
	m.pullCancel = cancel
	m.wg.Add(1)
	go m.runPull(ctx, m.ctx)
}

// stopPullLocked cancels the polling ticker; m.mu must be held.
func (m *Manager) stopPullLocked() {
	if m.pullCancel != nil {
		m.pullCancel()
		m.pullCancel = nil
	}
}

// runPull issues one request per tick until ctx is cancelled. Requests are
// bound to root rather than ctx, so a response in flight during a mode switch
// is still delivered.
func (m *Manager) runPull(ctx, root context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.opts.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.wg.Add(1)
			go func() {
				defer m.wg.Done()
				m.pollOnce(root)
			}()
		}
	}
}

// pollOnce fetches the latest sample and forwards it when non-empty.
// Errors and empty bodies are expected and only logged at debug level.
func (m *Manager) pollOnce(ctx context.Context) {
	s, ok, err := m.fetch(ctx)
	if err != nil {
		m.log.Debug("pull", "err", err)
		return
	}
	if ok {
		m.sink.Deliver(s)
	}
}

// fetch performs a single pull request.
func (m *Manager) fetch(ctx context.Context) (coord.Sample, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.opts.PullURL, nil)
	if err != nil {
		return coord.Sample{}, false, &Error{Op: "pull", URL: m.opts.PullURL, Err: err}
	}
	resp, err := m.opts.Client.Do(req)
	if err != nil {
		return coord.Sample{}, false, &Error{Op: "pull", URL: m.opts.PullURL, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return coord.Sample{}, false, &Error{Op: "pull", URL: m.opts.PullURL, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPullBody))
	if err != nil {
		return coord.Sample{}, false, &Error{Op: "pull", URL: m.opts.PullURL, Err: err}
	}
	s, ok, err := coord.Decode(body)
	if err != nil {
		return coord.Sample{}, false, &Error{Op: "decode", URL: m.opts.PullURL, Err: err}
	}
	return s, ok, nil
}
