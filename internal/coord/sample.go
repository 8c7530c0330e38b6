// Package coord defines the coordinate sample reported by the mobile touchpad.
package coord

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// GestureType identifies how the touchpad produced a sample.
type GestureType string

const (
	// TypeTouch is a plain one-finger move, optionally with a tap.
	TypeTouch GestureType = "touch"
	// TypeScroll is reported by the touchpad while scrolling.
	TypeScroll GestureType = "scroll"
	// TypeDrag is a press-and-drag used to select text.
	TypeDrag GestureType = "drag"
)

// ErrNoCoordinates is returned when a payload carries neither x nor y.
var ErrNoCoordinates = errors.New("sample has no coordinates")

// Sample is one pointer reading from the remote device.
type Sample struct {
	X       float64     `json:"x"`
	Y       float64     `json:"y"`
	Fingers int         `json:"fingers"`
	Type    GestureType `json:"type"`
	Click   bool        `json:"click"`
	// HasY records that the payload carried a y field, even a zero one.
	HasY bool `json:"-"`
}

// ScrollDelta returns the scroll amount carried by a multi-finger sample.
// The touchpad reports it on y, so a present y wins even when it is zero.
// Only senders that omit y entirely fall back to x.
func (s Sample) ScrollDelta() float64 {
	if s.HasY || s.Y != 0 {
		return s.Y
	}
	return s.X
}

// Flag decodes booleans sent either as JSON booleans or as 0/1 numbers.
type Flag bool

// UnmarshalJSON accepts true/false, numbers, and null.
func (f *Flag) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true":
		*f = true
	case "false", "null", "":
		*f = false
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("click: %w", err)
		}
		*f = n != 0
	}
	return nil
}

type wireSample struct {
	X       *float64    `json:"x"`
	Y       *float64    `json:"y"`
	Fingers *int        `json:"fingers"`
	Type    GestureType `json:"type"`
	Click   Flag        `json:"click"`
}

// Decode parses a sample payload. ok is false when the payload is the
// "no new data" signal: an empty body, null, or an empty object.
func Decode(data []byte) (Sample, bool, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Sample{}, false, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return Sample{}, false, fmt.Errorf("decode sample: %w", err)
	}
	if len(raw) == 0 {
		return Sample{}, false, nil
	}

	var w wireSample
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return Sample{}, false, fmt.Errorf("decode sample: %w", err)
	}
	if w.X == nil && w.Y == nil {
		return Sample{}, false, ErrNoCoordinates
	}

	s := Sample{Fingers: 1, Type: w.Type, Click: bool(w.Click)}
	if w.X != nil {
		s.X = *w.X
	}
	if w.Y != nil {
		s.Y = *w.Y
		s.HasY = true
	}
	if w.Fingers != nil {
		s.Fingers = *w.Fingers
	}
	return s, true, nil
}
