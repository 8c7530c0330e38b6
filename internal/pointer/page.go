// Package pointer realizes gestures as cursor, click, selection and scroll effects on a page.
package pointer

import (
	"context"
	"strings"

	"github.com/frudas24/touchrelay/internal/geom"
)

// Page is the live document the simulator acts on.
type Page interface {
	// WaitReady blocks until the document has a head and a body.
	WaitReady(ctx context.Context) error
	// Viewport returns the inner window size.
	Viewport(ctx context.Context) (geom.Size, error)
	// PlaceCursor renders the simulated cursor at p.
	PlaceCursor(ctx context.Context, p geom.Point) error
	// ElementAt resolves the topmost element at p. ok is false when there is none.
	ElementAt(ctx context.Context, p geom.Point) (el Element, ok bool, err error)
	// Click dispatches mousedown, mouseup and click at p.
	Click(ctx context.Context, p geom.Point) error
	// TextNodes lists non-empty text nodes in document order with their client rects.
	TextNodes(ctx context.Context) ([]TextNode, error)
	// ShowHighlight draws a selection overlay and returns a handle for HideHighlight.
	ShowHighlight(ctx context.Context, r geom.Rect) (string, error)
	// HideHighlight removes an overlay drawn by ShowHighlight.
	HideHighlight(ctx context.Context, id string) error
	// ScrollTo asks the document to scroll so its top offset equals top.
	ScrollTo(ctx context.Context, top float64) error
}

// TextSink receives text selected by a drag. Delivery is fire-and-forget.
type TextSink interface {
	SendText(text string)
}

// Element describes the element found under the cursor.
type Element struct {
	Tag        string    `json:"tag"`
	HasOnclick bool      `json:"hasOnclick"`
	Cursor     string    `json:"cursor"`
	Rect       geom.Rect `json:"rect"`
}

// TextNode is a DOM text node and the rectangles it occupies.
type TextNode struct {
	Text  string      `json:"text"`
	Rects []geom.Rect `json:"rects"`
}

var clickableTags = map[string]bool{
	"button": true,
	"a":      true,
	"input":  true,
	"select": true,
}

// Clickable reports whether a synthetic click should be sent to e.
func (e Element) Clickable() bool {
	return clickableTags[strings.ToLower(e.Tag)] || e.HasOnclick || e.Cursor == "pointer"
}

// ClickPoint returns where a click on e should land: its center, or fallback
// when the element has no box.
func (e Element) ClickPoint(fallback geom.Point) geom.Point {
	r := geom.Normalize(e.Rect)
	if r.W <= 0 || r.H <= 0 {
		return fallback
	}
	return r.Center()
}
