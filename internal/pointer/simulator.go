package pointer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/frudas24/touchrelay/internal/geom"
	"github.com/frudas24/touchrelay/internal/gesture"
	"github.com/frudas24/touchrelay/internal/logging"
)

const (
	defaultCursorSize   = 10
	defaultHighlightFor = 2 * time.Second
	hideTimeout         = 2 * time.Second
)

// Options configures the simulator.
type Options struct {
	// CursorSize is the rendered cursor's width and height, used for clamping.
	CursorSize float64
	// HighlightFor is how long a drag overlay stays visible.
	HighlightFor time.Duration
	// Normalized treats sample offsets as fractions of the viewport.
	Normalized bool
}

// Simulator owns the simulated cursor and the scroll accumulator.
type Simulator struct {
	page Page
	sink TextSink
	opts Options
	log  *log.Logger

	mu        sync.Mutex
	cursor    geom.Point
	scrollTop float64
	timers    map[*time.Timer]struct{}
}

// New returns a simulator with the cursor at the top-left corner.
func New(page Page, sink TextSink, opts Options, logger *log.Logger) *Simulator {
	if opts.CursorSize <= 0 {
		opts.CursorSize = defaultCursorSize
	}
	if opts.HighlightFor <= 0 {
		opts.HighlightFor = defaultHighlightFor
	}
	return &Simulator{
		page:   page,
		sink:   sink,
		opts:   opts,
		log:    logging.Component(logger, "pointer"),
		timers: make(map[*time.Timer]struct{}),
	}
}

// Cursor returns the current cursor position.
func (s *Simulator) Cursor() geom.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// ScrollTop returns the scroll accumulator.
func (s *Simulator) ScrollTop() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scrollTop
}

// Apply dispatches an accepted gesture.
func (s *Simulator) Apply(ctx context.Context, g gesture.Gesture) error {
	switch g.Kind {
	case gesture.KindMoveOrClick:
		return s.MoveOrClick(ctx, g.DX, g.DY, g.Click)
	case gesture.KindDrag:
		_, err := s.Drag(ctx, g.DX, g.DY)
		return err
	case gesture.KindScroll:
		return s.Scroll(ctx, g.Delta)
	default:
		return nil
	}
}

// MoveOrClick moves the cursor against the touchpad axes and clicks the
// element underneath when click is set and the element is clickable.
func (s *Simulator) MoveOrClick(ctx context.Context, dx, dy float64, click bool) error {
	_, to, err := s.moveBy(ctx, -dx, -dy)
	if err != nil {
		return err
	}
	if !click {
		return nil
	}
	el, ok, err := s.page.ElementAt(ctx, to)
	if err != nil {
		return fmt.Errorf("element at %v: %w", to, err)
	}
	if !ok || !el.Clickable() {
		s.log.Debug("click skipped", "tag", el.Tag, "found", ok)
		return nil
	}
	at := el.ClickPoint(to)
	s.log.Debug("click", "tag", el.Tag, "x", at.X, "y", at.Y)
	if err := s.page.Click(ctx, at); err != nil {
		return fmt.Errorf("click: %w", err)
	}
	return nil
}

// Drag moves the cursor, collects the text under the swept rectangle,
// flashes a highlight over it and sends the text to the sink.
func (s *Simulator) Drag(ctx context.Context, dx, dy float64) (string, error) {
	from, to, err := s.moveBy(ctx, dx, dy)
	if err != nil {
		return "", err
	}
	rect := geom.Span(from, to)
	nodes, err := s.page.TextNodes(ctx)
	if err != nil {
		return "", fmt.Errorf("text nodes: %w", err)
	}
	text := CollectText(nodes, rect)
	s.flash(ctx, rect)
	if s.sink != nil {
		s.sink.SendText(text)
	}
	s.log.Debug("drag", "rect", rect, "chars", len(text))
	return text, nil
}

// Scroll adds delta to the accumulator and scrolls the document to it.
func (s *Simulator) Scroll(ctx context.Context, delta float64) error {
	if s.opts.Normalized {
		vp, err := s.page.Viewport(ctx)
		if err != nil {
			return fmt.Errorf("viewport: %w", err)
		}
		delta *= vp.H
	}
	s.mu.Lock()
	s.scrollTop += delta
	top := s.scrollTop
	s.mu.Unlock()
	s.log.Debug("scroll", "top", top)
	if err := s.page.ScrollTo(ctx, top); err != nil {
		return fmt.Errorf("scroll to %v: %w", top, err)
	}
	return nil
}

// Close cancels pending highlight removals.
func (s *Simulator) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for t := range s.timers {
		t.Stop()
		delete(s.timers, t)
	}
}

// moveBy shifts the cursor through the clamp and renders it.
func (s *Simulator) moveBy(ctx context.Context, dx, dy float64) (geom.Point, geom.Point, error) {
	vp, err := s.page.Viewport(ctx)
	if err != nil {
		return geom.Point{}, geom.Point{}, fmt.Errorf("viewport: %w", err)
	}
	if s.opts.Normalized {
		dx *= vp.W
		dy *= vp.H
	}
	cursor := geom.Size{W: s.opts.CursorSize, H: s.opts.CursorSize}

	s.mu.Lock()
	from := s.cursor
	to := ClampToViewport(geom.Point{X: from.X + dx, Y: from.Y + dy}, vp, cursor)
	s.cursor = to
	s.mu.Unlock()

	if err := s.page.PlaceCursor(ctx, to); err != nil {
		return from, to, fmt.Errorf("place cursor: %w", err)
	}
	return from, to, nil
}

// flash shows a highlight over r and schedules its removal. Failures are
// only logged; the overlay is feedback, not state.
func (s *Simulator) flash(ctx context.Context, r geom.Rect) {
	id, err := s.page.ShowHighlight(ctx, r)
	if err != nil {
		s.log.Debug("highlight", "err", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var timer *time.Timer
	timer = time.AfterFunc(s.opts.HighlightFor, func() {
		s.mu.Lock()
		delete(s.timers, timer)
		s.mu.Unlock()
		hideCtx, cancel := context.WithTimeout(context.Background(), hideTimeout)
		defer cancel()
		if err := s.page.HideHighlight(hideCtx, id); err != nil {
			s.log.Debug("hide highlight", "err", err)
		}
	})
	s.timers[timer] = struct{}{}
}

// ClampToViewport keeps a cursor of the given size fully inside the viewport.
func ClampToViewport(p geom.Point, vp, cursor geom.Size) geom.Point {
	return geom.Point{
		X: geom.Clamp(p.X, 0, vp.W-cursor.W),
		Y: geom.Clamp(p.Y, 0, vp.H-cursor.H),
	}
}

// CollectText joins the trimmed text of every node with a rect touching r.
// Order follows nodes; each distinct text appears once.
func CollectText(nodes []TextNode, r geom.Rect) string {
	seen := make(map[string]struct{})
	var parts []string
	for _, n := range nodes {
		text := strings.TrimSpace(n.Text)
		if text == "" {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		for _, nr := range n.Rects {
			if geom.Intersects(nr, r) {
				seen[text] = struct{}{}
				parts = append(parts, text)
				break
			}
		}
	}
	return strings.Join(parts, " ")
}
