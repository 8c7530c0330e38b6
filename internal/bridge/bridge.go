// Package bridge carries coordinate samples and control requests between the
// transport side and the simulator side.
package bridge

import (
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/frudas24/touchrelay/internal/coord"
	"github.com/frudas24/touchrelay/internal/logging"
	"github.com/frudas24/touchrelay/internal/transport"
)

// Message types.
const (
	TypeCoordinateData   = "coordinate_data"
	TypeToggleConnection = "toggle_connection"
	TypeGetStatus        = "get_status"
)

var (
	// ErrNoReceiver means no simulator side is attached.
	ErrNoReceiver = errors.New("no receiver attached")
	// ErrNoController means no transport side answers control requests.
	ErrNoController = errors.New("no controller registered")
	// ErrUnknownType means the request type is not a control message.
	ErrUnknownType = errors.New("unknown message type")
)

// Message is a bridge payload.
type Message struct {
	Type string        `json:"type"`
	Data *coord.Sample `json:"data,omitempty"`
}

// Response answers a control request.
type Response struct {
	Status    string         `json:"status,omitempty"`
	Mode      transport.Mode `json:"mode"`
	Polling   *bool          `json:"polling,omitempty"`
	Connected *bool          `json:"connected,omitempty"`
}

// Controller is the transport side's control surface.
type Controller interface {
	Toggle() transport.Status
	Status() transport.Status
}

// Bridge is an in-process, fire-and-forget relay.
type Bridge struct {
	mu         sync.Mutex
	buffer     int
	out        chan Message
	controller Controller
	log        *log.Logger
}

// Ensure Bridge can be the transport's sink.
var _ transport.Sink = (*Bridge)(nil)

// New creates a bridge whose receiver queue holds up to buffer messages.
func New(buffer int, logger *log.Logger) *Bridge {
	if buffer <= 0 {
		buffer = 1
	}
	return &Bridge{buffer: buffer, log: logging.Component(logger, "bridge")}
}

// Attach registers the receiver side and returns its message stream.
// A second Attach replaces the first receiver.
func (b *Bridge) Attach() <-chan Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.out != nil {
		close(b.out)
	}
	b.out = make(chan Message, b.buffer)
	return b.out
}

// Detach drops the receiver side and closes its stream.
func (b *Bridge) Detach() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.out != nil {
		close(b.out)
		b.out = nil
	}
}

// Deliver forwards a sample to the receiver side. It never blocks; when the
// receiver is absent or behind, the sample is dropped.
func (b *Bridge) Deliver(s coord.Sample) {
	if err := b.Send(Message{Type: TypeCoordinateData, Data: &s}); err != nil {
		b.log.Debug("sample dropped", "err", err)
	}
}

// Send enqueues msg for the receiver without blocking.
func (b *Bridge) Send(msg Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.out == nil {
		return ErrNoReceiver
	}
	select {
	case b.out <- msg:
		return nil
	default:
		return errors.New("receiver queue full")
	}
}

// Serve registers the transport side's control surface.
func (b *Bridge) Serve(c Controller) {
	b.mu.Lock()
	b.controller = c
	b.mu.Unlock()
}

// Request runs a control message against the registered controller.
func (b *Bridge) Request(msg Message) (Response, error) {
	b.mu.Lock()
	c := b.controller
	b.mu.Unlock()
	if c == nil {
		return Response{}, ErrNoController
	}

	switch msg.Type {
	case TypeToggleConnection:
		st := c.Toggle()
		return Response{Status: "toggled", Mode: st.Mode}, nil
	case TypeGetStatus:
		st := c.Status()
		polling, connected := st.Polling, st.Connected
		return Response{Mode: st.Mode, Polling: &polling, Connected: &connected}, nil
	default:
		return Response{}, ErrUnknownType
	}
}
