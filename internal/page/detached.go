package page

import (
	"context"
	"sync"

	"github.com/frudas24/touchrelay/internal/geom"
	"github.com/frudas24/touchrelay/internal/pointer"
)

var _ pointer.Page = (*Detached)(nil)

// Detached is an empty document of a fixed size. It lets the relay run
// without a browser: gestures move the cursor and the scroll accumulator,
// but nothing is ever found to click or select.
type Detached struct {
	size geom.Size

	mu     sync.Mutex
	cursor geom.Point
	top    float64
}

// NewDetached returns a detached page with the given viewport.
func NewDetached(w, h float64) *Detached {
	return &Detached{size: geom.Size{W: w, H: h}}
}

// WaitReady returns immediately.
func (d *Detached) WaitReady(ctx context.Context) error {
	return ctx.Err()
}

// Viewport returns the fixed size.
func (d *Detached) Viewport(context.Context) (geom.Size, error) {
	return d.size, nil
}

// PlaceCursor records p.
func (d *Detached) PlaceCursor(_ context.Context, p geom.Point) error {
	d.mu.Lock()
	d.cursor = p
	d.mu.Unlock()
	return nil
}

// ElementAt never finds an element.
func (d *Detached) ElementAt(context.Context, geom.Point) (pointer.Element, bool, error) {
	return pointer.Element{}, false, nil
}

// Click does nothing.
func (d *Detached) Click(context.Context, geom.Point) error {
	return nil
}

// TextNodes returns no nodes.
func (d *Detached) TextNodes(context.Context) ([]pointer.TextNode, error) {
	return nil, nil
}

// ShowHighlight returns an empty handle.
func (d *Detached) ShowHighlight(context.Context, geom.Rect) (string, error) {
	return "", nil
}

// HideHighlight does nothing.
func (d *Detached) HideHighlight(context.Context, string) error {
	return nil
}

// ScrollTo records top.
func (d *Detached) ScrollTo(_ context.Context, top float64) error {
	d.mu.Lock()
	d.top = top
	d.mu.Unlock()
	return nil
}

// Position returns the last cursor position and scroll offset.
func (d *Detached) Position() (geom.Point, float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cursor, d.top
}
