// Package gesture classifies coordinate samples and suppresses duplicates.
package gesture

import (
	"sync"

	"github.com/frudas24/touchrelay/internal/coord"
)

// Kind identifies the action a sample maps to.
type Kind int

const (
	// KindNone is a sample that maps to no action.
	KindNone Kind = iota
	// KindMoveOrClick moves the cursor and may click under it.
	KindMoveOrClick
	// KindDrag moves the cursor and selects the swept text.
	KindDrag
	// KindScroll scrolls the document.
	KindScroll
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindMoveOrClick:
		return "move_or_click"
	case KindDrag:
		return "drag"
	case KindScroll:
		return "scroll"
	default:
		return "none"
	}
}

// Gesture is an accepted, actionable sample.
type Gesture struct {
	Kind  Kind
	DX    float64
	DY    float64
	Click bool
	// Delta is the scroll amount for KindScroll.
	Delta float64
}

// Classify maps a sample to its gesture kind. One finger selects pointer
// handling; any other finger count is a scroll.
func Classify(s coord.Sample) Kind {
	if s.Fingers != 1 {
		return KindScroll
	}
	switch s.Type {
	case coord.TypeTouch, coord.TypeScroll:
		return KindMoveOrClick
	case coord.TypeDrag:
		return KindDrag
	default:
		return KindNone
	}
}

type pointerKey struct {
	x, y  float64
	click bool
}

// Normalizer drops samples that carry no new information.
type Normalizer struct {
	mu         sync.Mutex
	last       pointerKey
	hasLast    bool
	lastScroll float64
	hasScroll  bool
}

// NewNormalizer returns a normalizer with empty dedup state.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Accept classifies s and reports whether it should be acted on. Move and
// drag samples share one (x, y, click) key; scroll samples are compared on
// their scroll value alone. The dedup state is updated before returning.
func (n *Normalizer) Accept(s coord.Sample) (Gesture, bool) {
	kind := Classify(s)
	n.mu.Lock()
	defer n.mu.Unlock()

	switch kind {
	case KindMoveOrClick, KindDrag:
		key := pointerKey{x: s.X, y: s.Y, click: s.Click}
		if n.hasLast && key == n.last {
			return Gesture{}, false
		}
		n.last = key
		n.hasLast = true
		return Gesture{Kind: kind, DX: s.X, DY: s.Y, Click: s.Click}, true
	case KindScroll:
		delta := s.ScrollDelta()
		if n.hasScroll && delta == n.lastScroll {
			return Gesture{}, false
		}
		n.lastScroll = delta
		n.hasScroll = true
		return Gesture{Kind: KindScroll, Delta: delta}, true
	default:
		return Gesture{}, false
	}
}
