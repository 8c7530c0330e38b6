// Package testutil provides fakes shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/frudas24/touchrelay/internal/geom"
	"github.com/frudas24/touchrelay/internal/pointer"
)

// Call records a single page operation.
type Call struct {
	Name string
	X    float64
	Y    float64
	Rect geom.Rect
	ID   string
}

// FakePage implements pointer.Page over a static element/text layout and records calls.
type FakePage struct {
	mu sync.Mutex

	Size geom.Size
	// Elements are hit-tested last to first, so later entries sit on top.
	Elements []pointer.Element
	Nodes    []pointer.TextNode
	Err      error

	Calls      []Call
	Highlights map[string]geom.Rect
	nextID     int
}

// Ensure FakePage implements the interface.
var _ pointer.Page = (*FakePage)(nil)

// NewFakePage returns a page with the given viewport size.
func NewFakePage(w, h float64) *FakePage {
	return &FakePage{Size: geom.Size{W: w, H: h}, Highlights: make(map[string]geom.Rect)}
}

// record appends a call.
func (f *FakePage) record(c Call) {
	f.mu.Lock()
	f.Calls = append(f.Calls, c)
	f.mu.Unlock()
}

// CallsNamed returns the recorded calls with the given name.
func (f *FakePage) CallsNamed(name string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.Calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// ActiveHighlights returns the number of overlays currently shown.
func (f *FakePage) ActiveHighlights() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Highlights)
}

// WaitReady records readiness checks.
func (f *FakePage) WaitReady(context.Context) error {
	f.record(Call{Name: "WaitReady"})
	return f.Err
}

// Viewport returns the configured size.
func (f *FakePage) Viewport(context.Context) (geom.Size, error) {
	return f.Size, f.Err
}

// PlaceCursor records a cursor placement.
func (f *FakePage) PlaceCursor(_ context.Context, p geom.Point) error {
	f.record(Call{Name: "PlaceCursor", X: p.X, Y: p.Y})
	return f.Err
}

// ElementAt returns the topmost configured element containing p.
func (f *FakePage) ElementAt(_ context.Context, p geom.Point) (pointer.Element, bool, error) {
	f.record(Call{Name: "ElementAt", X: p.X, Y: p.Y})
	for i := len(f.Elements) - 1; i >= 0; i-- {
		if geom.Contains(f.Elements[i].Rect, p) {
			return f.Elements[i], true, f.Err
		}
	}
	return pointer.Element{}, false, f.Err
}

// Click records the mousedown/mouseup/click sequence at p.
func (f *FakePage) Click(_ context.Context, p geom.Point) error {
	for _, name := range []string{"mousedown", "mouseup", "click"} {
		f.record(Call{Name: name, X: p.X, Y: p.Y})
	}
	return f.Err
}

// TextNodes returns the configured nodes.
func (f *FakePage) TextNodes(context.Context) ([]pointer.TextNode, error) {
	return f.Nodes, f.Err
}

// ShowHighlight records an overlay.
func (f *FakePage) ShowHighlight(_ context.Context, r geom.Rect) (string, error) {
	f.mu.Lock()
	f.nextID++
	id := fmt.Sprintf("hl-%d", f.nextID)
	f.Highlights[id] = r
	f.Calls = append(f.Calls, Call{Name: "ShowHighlight", Rect: r, ID: id})
	f.mu.Unlock()
	return id, f.Err
}

// HideHighlight removes an overlay.
func (f *FakePage) HideHighlight(_ context.Context, id string) error {
	f.mu.Lock()
	delete(f.Highlights, id)
	f.Calls = append(f.Calls, Call{Name: "HideHighlight", ID: id})
	f.mu.Unlock()
	return nil
}

// ScrollTo records a scroll request.
func (f *FakePage) ScrollTo(_ context.Context, top float64) error {
	f.record(Call{Name: "ScrollTo", Y: top})
	return f.Err
}
