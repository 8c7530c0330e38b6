package coord

import (
	"errors"
	"testing"
)

// TestDecode_FullSample verifies a complete touch sample decodes.
func TestDecode_FullSample(t *testing.T) {
	s, ok, err := Decode([]byte(`{"x":5,"y":3,"fingers":1,"type":"touch","click":false}`))
	if err != nil || !ok {
		t.Fatalf("expected sample, got ok=%v err=%v", ok, err)
	}
	want := Sample{X: 5, Y: 3, Fingers: 1, Type: TypeTouch, HasY: true}
	if s != want {
		t.Fatalf("expected %+v, got %+v", want, s)
	}
}

// TestDecode_EmptySignals verifies empty payloads mean "no new data".
func TestDecode_EmptySignals(t *testing.T) {
	for _, body := range []string{"", "  ", "null", "{}", " {} \n"} {
		_, ok, err := Decode([]byte(body))
		if err != nil || ok {
			t.Fatalf("body %q: expected ok=false err=nil, got ok=%v err=%v", body, ok, err)
		}
	}
}

// TestDecode_NumericClick verifies 0/1 click flags from the mobile page decode.
func TestDecode_NumericClick(t *testing.T) {
	s, ok, err := Decode([]byte(`{"x":1,"y":2,"fingers":1,"type":"touch","click":1}`))
	if err != nil || !ok || !s.Click {
		t.Fatalf("expected click=true, got %+v ok=%v err=%v", s, ok, err)
	}
	s, _, _ = Decode([]byte(`{"x":1,"y":2,"fingers":1,"type":"touch","click":0}`))
	if s.Click {
		t.Fatalf("expected click=false, got %+v", s)
	}
}

// TestDecode_MissingAxisDefaults verifies a single-axis scroll sample decodes.
func TestDecode_MissingAxisDefaults(t *testing.T) {
	s, ok, err := Decode([]byte(`{"x":50,"fingers":2}`))
	if err != nil || !ok {
		t.Fatalf("expected sample, got ok=%v err=%v", ok, err)
	}
	if s.X != 50 || s.Y != 0 || s.Fingers != 2 || s.HasY {
		t.Fatalf("unexpected sample: %+v", s)
	}
	if s.ScrollDelta() != 50 {
		t.Fatalf("expected scroll delta 50, got %v", s.ScrollDelta())
	}
}

// TestDecode_DefaultFingers verifies a sample without fingers is a one-finger gesture.
func TestDecode_DefaultFingers(t *testing.T) {
	s, _, err := Decode([]byte(`{"x":1,"y":1,"type":"drag"}`))
	if err != nil || s.Fingers != 1 {
		t.Fatalf("expected fingers=1, got %+v err=%v", s, err)
	}
}

// TestDecode_Errors verifies malformed and coordinate-less payloads are rejected.
func TestDecode_Errors(t *testing.T) {
	if _, _, err := Decode([]byte(`{"x":`)); err == nil {
		t.Fatalf("expected error for truncated json")
	}
	if _, _, err := Decode([]byte(`[1,2]`)); err == nil {
		t.Fatalf("expected error for array payload")
	}
	if _, _, err := Decode([]byte(`{"type":"touch"}`)); !errors.Is(err, ErrNoCoordinates) {
		t.Fatalf("expected ErrNoCoordinates, got %v", err)
	}
}

// TestScrollDelta_PrefersY verifies y carries the scroll amount when present.
func TestScrollDelta_PrefersY(t *testing.T) {
	s := Sample{X: 7, Y: 30, Fingers: 2}
	if s.ScrollDelta() != 30 {
		t.Fatalf("expected 30, got %v", s.ScrollDelta())
	}
}

// TestScrollDelta_ZeroYIsHorizontal verifies a present zero y does not fall back to x.
func TestScrollDelta_ZeroYIsHorizontal(t *testing.T) {
	s, ok, err := Decode([]byte(`{"x":0.4,"y":0,"fingers":2,"type":"scroll"}`))
	if err != nil || !ok {
		t.Fatalf("expected sample, got ok=%v err=%v", ok, err)
	}
	if !s.HasY || s.ScrollDelta() != 0 {
		t.Fatalf("expected zero scroll for sideways swipe, got %v (%+v)", s.ScrollDelta(), s)
	}
}
