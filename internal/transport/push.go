package transport

import (
	"context"

	"github.com/frudas24/touchrelay/internal/coord"
	"github.com/gorilla/websocket"
)

// dialLocked starts a push attempt under the current epoch; m.mu must be held.
func (m *Manager) dialLocked() {
	ctx, cancel := context.WithCancel(m.ctx)
	m.pushCancel = cancel
	m.wg.Add(1)
	go m.runPush(ctx, m.epoch)
}

// closePushLocked abandons the current push attempt; m.mu must be held.
// Bumping the epoch makes late events from the old socket no-ops.
func (m *Manager) closePushLocked() {
	m.epoch++
	if m.pushCancel != nil {
		m.pushCancel()
		m.pushCancel = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
}

// runPush dials the push endpoint and reads frames until the socket fails.
func (m *Manager) runPush(ctx context.Context, epoch uint64) {
	defer m.wg.Done()
	conn, resp, err := m.opts.Dialer.DialContext(ctx, m.opts.PushURL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		m.log.Warn("push unavailable, falling back to pull", "err", &Error{Op: "dial", URL: m.opts.PushURL, Err: err})
		m.fire(EventPushFailed, epoch)
		return
	}
	if !m.adopt(conn, epoch) {
		_ = conn.Close()
		return
	}
	m.readLoop(conn, epoch)
}

// adopt installs conn as the active socket if the attempt is still current.
func (m *Manager) adopt(conn *websocket.Conn, epoch uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctx == nil || m.ctx.Err() != nil || epoch != m.epoch || m.state != StatePushConnecting {
		return false
	}
	m.conn = conn
	m.transitionLocked(EventHandshakeOK)
	return true
}

// readLoop forwards every decodable frame. Bad frames are dropped and the
// socket stays open; read errors end the loop and fall back to pull.
func (m *Manager) readLoop(conn *websocket.Conn, epoch uint64) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if m.isCurrent(epoch) {
				m.log.Warn("push closed, falling back to pull", "err", &Error{Op: "read", URL: m.opts.PushURL, Err: err})
			}
			m.fire(EventPushFailed, epoch)
			return
		}
		s, ok, err := coord.Decode(data)
		if err != nil {
			m.log.Warn("dropping push frame", "err", err)
			continue
		}
		if ok {
			m.sink.Deliver(s)
		}
	}
}

// isCurrent reports whether epoch still identifies the active push attempt.
func (m *Manager) isCurrent(epoch uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return epoch == m.epoch
}
