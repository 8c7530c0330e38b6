package geom

import "testing"

// TestNormalizeRect_Positive verifies Normalize keeps positive sizes intact.
func TestNormalizeRect_Positive(t *testing.T) {
	in := Rect{X: 1, Y: 2, W: 3, H: 4}
	out := Normalize(in)
	if out != in {
		t.Fatalf("expected %+v, got %+v", in, out)
	}
}

// TestNormalizeRect_NegativeDims verifies Normalize flips negative sizes.
func TestNormalizeRect_NegativeDims(t *testing.T) {
	in := Rect{X: 10, Y: 20, W: -5, H: -6}
	out := Normalize(in)
	want := Rect{X: 5, Y: 14, W: 5, H: 6}
	if out != want {
		t.Fatalf("expected %+v, got %+v", want, out)
	}
}

// TestSpan_EitherCornerOrder verifies Span yields the same rect regardless of corner order.
func TestSpan_EitherCornerOrder(t *testing.T) {
	a := Span(Point{X: 0, Y: 0}, Point{X: 100, Y: 50})
	b := Span(Point{X: 100, Y: 50}, Point{X: 0, Y: 0})
	want := Rect{X: 0, Y: 0, W: 100, H: 50}
	if a != want || b != want {
		t.Fatalf("expected %+v for both, got %+v and %+v", want, a, b)
	}
}

// TestContains_Edges verifies edges are treated as inside the rect.
func TestContains_Edges(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 5, H: 4}
	if !Contains(r, Point{X: 10, Y: 20}) || !Contains(r, Point{X: 15, Y: 24}) {
		t.Fatalf("expected edges to be inside rect")
	}
	if Contains(r, Point{X: 9, Y: 20}) || Contains(r, Point{X: 16, Y: 25}) {
		t.Fatalf("expected point to be outside rect")
	}
}

// TestIntersects verifies overlap, edge touching, and disjoint rectangles.
func TestIntersects(t *testing.T) {
	base := Rect{X: 0, Y: 0, W: 100, H: 100}
	cases := []struct {
		name string
		r    Rect
		want bool
	}{
		{"overlap", Rect{X: 50, Y: 50, W: 100, H: 100}, true},
		{"inside", Rect{X: 10, Y: 10, W: 5, H: 5}, true},
		{"touching edge", Rect{X: 100, Y: 0, W: 10, H: 10}, true},
		{"right of", Rect{X: 101, Y: 0, W: 10, H: 10}, false},
		{"below", Rect{X: 0, Y: 120, W: 10, H: 10}, false},
	}
	for _, tc := range cases {
		if got := Intersects(base, tc.r); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

// TestClamp_Idempotent verifies clamping an in-range value is a no-op.
func TestClamp_Idempotent(t *testing.T) {
	for _, v := range []float64{0, 12.5, 790} {
		once := Clamp(v, 0, 790)
		if once != v || Clamp(once, 0, 790) != once {
			t.Fatalf("expected %v unchanged, got %v", v, once)
		}
	}
}

// TestClamp_OutOfRange verifies values are pulled to the nearest bound.
func TestClamp_OutOfRange(t *testing.T) {
	if got := Clamp(-5000, 0, 790); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := Clamp(5000, 0, 790); got != 790 {
		t.Fatalf("expected 790, got %v", got)
	}
	if got := Clamp(5, 0, -10); got != 0 {
		t.Fatalf("expected lower bound to win, got %v", got)
	}
}
