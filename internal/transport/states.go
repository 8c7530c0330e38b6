// Package transport keeps exactly one coordinate delivery path alive and
// falls back from push to pull whenever the push side fails.
package transport

// Mode is the active delivery mode.
type Mode string

const (
	// ModePull polls the source endpoint on a fixed interval.
	ModePull Mode = "pull"
	// ModePush receives samples over a WebSocket.
	ModePush Mode = "push"
)

// State is a node in the failover state machine.
type State int

const (
	// StatePullActive polls the source. This is the initial state.
	StatePullActive State = iota
	// StatePushConnecting is dialing the push endpoint.
	StatePushConnecting
	// StatePushActive is receiving frames over an open socket.
	StatePushActive
)

// String returns the state name used in logs.
func (s State) String() string {
	switch s {
	case StatePullActive:
		return "PULL_ACTIVE"
	case StatePushConnecting:
		return "PUSH_CONNECTING"
	case StatePushActive:
		return "PUSH_ACTIVE"
	default:
		return "UNKNOWN"
	}
}

// Mode returns the delivery mode the state belongs to.
func (s State) Mode() Mode {
	if s == StatePullActive {
		return ModePull
	}
	return ModePush
}

// Event drives a state transition.
type Event int

const (
	// EventToggle is an explicit operator request to flip modes.
	EventToggle Event = iota
	// EventHandshakeOK reports a completed push handshake.
	EventHandshakeOK
	// EventPushFailed reports a dial failure, socket error or remote close.
	EventPushFailed
)

// String returns the event name used in logs.
func (e Event) String() string {
	switch e {
	case EventToggle:
		return "toggle"
	case EventHandshakeOK:
		return "handshake_ok"
	case EventPushFailed:
		return "push_failed"
	default:
		return "unknown"
	}
}

// transitions is the complete failover policy. Pull never moves to push on
// its own; push is only entered on request and is not retried after failure.
var transitions = map[State]map[Event]State{
	StatePullActive: {
		EventToggle: StatePushConnecting,
	},
	StatePushConnecting: {
		EventHandshakeOK: StatePushActive,
		EventPushFailed:  StatePullActive,
		EventToggle:      StatePullActive,
	},
	StatePushActive: {
		EventPushFailed: StatePullActive,
		EventToggle:     StatePullActive,
	},
}

// Next returns the state reached from s on e. ok is false when e has no
// effect in s.
func Next(s State, e Event) (State, bool) {
	next, ok := transitions[s][e]
	return next, ok
}
