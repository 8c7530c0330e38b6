package transport

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/frudas24/touchrelay/internal/coord"
	"github.com/frudas24/touchrelay/internal/logging"
	"github.com/gorilla/websocket"
)

const (
	defaultPollInterval   = 100 * time.Millisecond
	defaultRequestTimeout = 2 * time.Second
	defaultHandshake      = 3 * time.Second
)

// Sink receives every sample the active transport produces.
type Sink interface {
	Deliver(s coord.Sample)
}

// Options configures endpoints and timing.
type Options struct {
	PushURL      string
	PullURL      string
	PollInterval time.Duration
	Client       *http.Client
	Dialer       *websocket.Dialer
}

// Status is a read-only snapshot of the manager.
type Status struct {
	State     State `json:"-"`
	Mode      Mode  `json:"mode"`
	Polling   bool  `json:"polling"`
	Connected bool  `json:"connected"`
}

// Manager owns the single active delivery path.
type Manager struct {
	opts Options
	sink Sink
	log  *log.Logger

	mu         sync.Mutex
	state      State
	ctx        context.Context
	cancel     context.CancelFunc
	pullCancel context.CancelFunc
	pushCancel context.CancelFunc
	conn       *websocket.Conn
	epoch      uint64
	wg         sync.WaitGroup
}

// New creates a manager in pull mode. Nothing runs until Start.
func New(opts Options, sink Sink, logger *log.Logger) *Manager {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: defaultRequestTimeout}
	}
	if opts.Dialer == nil {
		opts.Dialer = &websocket.Dialer{HandshakeTimeout: defaultHandshake}
	}
	return &Manager{
		opts:  opts,
		sink:  sink,
		log:   logging.Component(logger, "transport"),
		state: StatePullActive,
	}
}

// Start activates the current state's delivery path.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctx != nil {
		return
	}
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.log.Info("starting", "state", m.state)
	m.enterLocked(m.state)
}

// Stop cancels every delivery path and waits for goroutines to exit.
// In-flight pull requests are cancelled too.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
	}
	m.stopPullLocked()
	m.closePushLocked()
	m.mu.Unlock()
	m.wg.Wait()
}

// Toggle flips between push and pull and returns the resulting status.
func (m *Manager) Toggle() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitionLocked(EventToggle)
	return m.statusLocked()
}

// Status reports the current mode and liveness of each path.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusLocked()
}

// statusLocked builds a Status; m.mu must be held.
func (m *Manager) statusLocked() Status {
	return Status{
		State:     m.state,
		Mode:      m.state.Mode(),
		Polling:   m.pullCancel != nil,
		Connected: m.state == StatePushActive && m.conn != nil,
	}
}

// fire applies a push-side event unless it belongs to a superseded attempt.
func (m *Manager) fire(ev Event, epoch uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctx == nil || m.ctx.Err() != nil || epoch != m.epoch {
		return
	}
	m.transitionLocked(ev)
}

// transitionLocked moves along the transition table; m.mu must be held.
func (m *Manager) transitionLocked(ev Event) {
	next, ok := Next(m.state, ev)
	if !ok {
		m.log.Debug("event ignored", "state", m.state, "event", ev)
		return
	}
	prev := m.state
	m.state = next
	m.log.Info("state change", "from", prev, "to", next, "event", ev)
	if m.ctx != nil && m.ctx.Err() == nil {
		m.enterLocked(next)
	}
}

// enterLocked makes the delivery paths match state s; m.mu must be held.
func (m *Manager) enterLocked(s State) {
	switch s {
	case StatePullActive:
		m.closePushLocked()
		m.stopPullLocked()
		m.startPullLocked()
	case StatePushConnecting:
		m.stopPullLocked()
		m.closePushLocked()
		m.dialLocked()
	case StatePushActive:
		m.stopPullLocked()
	}
}
