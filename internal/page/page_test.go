package page

import (
	"context"
	"strings"
	"testing"

	"github.com/frudas24/touchrelay/internal/geom"
	"github.com/frudas24/touchrelay/internal/pointer"
)

// TestCursorScript_EmbedsPosition verifies the cursor script carries position and size.
func TestCursorScript_EmbedsPosition(t *testing.T) {
	s := cursorScript(geom.Point{X: 12.5, Y: 40}, 10)
	for _, want := range []string{`"touchrelay-cursor"`, "width:10px", `"12.5px"`, `"40px"`, "pointer-events:none", "border-radius:50%;"} {
		if !strings.Contains(s, want) {
			t.Fatalf("expected %q in script:\n%s", want, s)
		}
	}
}

// TestElementAtScript_UsesPoint verifies elementFromPoint receives the cursor point.
func TestElementAtScript_UsesPoint(t *testing.T) {
	s := elementAtScript(geom.Point{X: 3, Y: 7})
	if !strings.Contains(s, "elementFromPoint(3, 7)") {
		t.Fatalf("unexpected script:\n%s", s)
	}
	for _, key := range []string{"tag:", "hasOnclick:", "cursor:", "rect:"} {
		if !strings.Contains(s, key) {
			t.Fatalf("expected %q in script", key)
		}
	}
}

// TestHighlightScripts_QuoteID verifies overlay ids are emitted as string literals.
func TestHighlightScripts_QuoteID(t *testing.T) {
	id := `odd"id`
	show := showHighlightScript(id, geom.Rect{X: 1, Y: 2, W: 30, H: 40})
	if !strings.Contains(show, `"odd\"id"`) || !strings.Contains(show, "width:30px") {
		t.Fatalf("unexpected show script:\n%s", show)
	}
	hide := hideHighlightScript(id)
	if !strings.Contains(hide, `getElementById("odd\"id")`) {
		t.Fatalf("unexpected hide script:\n%s", hide)
	}
}

// TestScrollScript_Smooth verifies scrolling is absolute and smooth.
func TestScrollScript_Smooth(t *testing.T) {
	s := scrollScript(130)
	if s != `window.scrollTo({top: 130, behavior: "smooth"})` {
		t.Fatalf("unexpected script: %s", s)
	}
}

// TestDetached_DrivesSimulator verifies a detached page supports moves and scrolls without a browser.
func TestDetached_DrivesSimulator(t *testing.T) {
	d := NewDetached(200, 100)
	sim := pointer.New(d, nil, pointer.Options{CursorSize: 10}, nil)
	ctx := context.Background()

	if err := d.WaitReady(ctx); err != nil {
		t.Fatalf("wait ready: %v", err)
	}
	if err := sim.MoveOrClick(ctx, -500, -30, true); err != nil {
		t.Fatalf("move: %v", err)
	}
	if err := sim.Scroll(ctx, 25); err != nil {
		t.Fatalf("scroll: %v", err)
	}
	text, err := sim.Drag(ctx, 0, 0)
	if err != nil || text != "" {
		t.Fatalf("expected empty drag, got %q err=%v", text, err)
	}
	p, top := d.Position()
	if p != (geom.Point{X: 190, Y: 30}) || top != 25 {
		t.Fatalf("unexpected position %+v top %v", p, top)
	}
}

// TestDetached_WaitReadyCancelled verifies WaitReady honours cancellation.
func TestDetached_WaitReadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewDetached(1, 1).WaitReady(ctx); err == nil {
		t.Fatalf("expected cancelled context error")
	}
}
