// Package page drives the document the pointer simulator acts on.
package page

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"github.com/frudas24/touchrelay/internal/geom"
	"github.com/frudas24/touchrelay/internal/logging"
	"github.com/frudas24/touchrelay/internal/pointer"
)

// ErrNotReady indicates the document never exposed a head and a body.
var ErrNotReady = errors.New("page: document not ready")

var _ pointer.Page = (*Chrome)(nil)

// Options selects the browser and the document to open.
type Options struct {
	// RemoteURL attaches to a running browser's DevTools WebSocket when set.
	RemoteURL string
	// Headless launches a headless browser when RemoteURL is empty.
	Headless bool
	// StartURL is navigated to on launch.
	StartURL string
	// CursorSize is the rendered cursor's width and height.
	CursorSize float64
}

// Chrome is a browser tab reached over the DevTools protocol.
type Chrome struct {
	ctx    context.Context
	cancel func()
	opts   Options
	log    *log.Logger
	nextID atomic.Uint64
}

// Launch opens a tab, navigates to StartURL and returns it.
func Launch(ctx context.Context, opts Options, logger *log.Logger) (*Chrome, error) {
	l := logging.Component(logger, "page")
	if opts.StartURL == "" {
		opts.StartURL = "about:blank"
	}
	if opts.CursorSize <= 0 {
		opts.CursorSize = 10
	}

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if opts.RemoteURL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(ctx, opts.RemoteURL)
	} else {
		flags := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Flag("headless", opts.Headless))
		allocCtx, allocCancel = chromedp.NewExecAllocator(ctx, flags...)
	}
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(l.Debugf), chromedp.WithErrorf(l.Warnf))

	c := &Chrome{
		ctx: tabCtx,
		cancel: func() {
			tabCancel()
			allocCancel()
		},
		opts: opts,
		log:  l,
	}
	if err := chromedp.Run(tabCtx, chromedp.Navigate(opts.StartURL)); err != nil {
		c.Close()
		return nil, fmt.Errorf("navigate %s: %w", opts.StartURL, err)
	}
	l.Info("tab ready", "url", opts.StartURL, "remote", opts.RemoteURL != "")
	return c, nil
}

// Close closes the tab and, for launched browsers, the browser process.
func (c *Chrome) Close() {
	c.cancel()
}

// run executes actions on the tab, aborting when either ctx or the tab ends.
func (c *Chrome) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(c.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

// WaitReady blocks until the document has a head and a body.
func (c *Chrome) WaitReady(ctx context.Context) error {
	var ready bool
	err := c.run(ctx,
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(readyScript, &ready),
	)
	if err != nil {
		return fmt.Errorf("wait ready: %w", err)
	}
	if !ready {
		return ErrNotReady
	}
	return nil
}

// Viewport returns the window's inner size.
func (c *Chrome) Viewport(ctx context.Context) (geom.Size, error) {
	var vp geom.Size
	if err := c.run(ctx, chromedp.Evaluate(viewportScript, &vp)); err != nil {
		return geom.Size{}, err
	}
	return vp, nil
}

// PlaceCursor moves the cursor dot and the browser's mouse to p.
func (c *Chrome) PlaceCursor(ctx context.Context, p geom.Point) error {
	return c.run(ctx,
		chromedp.Evaluate(cursorScript(p, c.opts.CursorSize), nil),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return input.DispatchMouseEvent(input.MouseMoved, p.X, p.Y).Do(ctx)
		}),
	)
}

// ElementAt describes the topmost element at p.
func (c *Chrome) ElementAt(ctx context.Context, p geom.Point) (pointer.Element, bool, error) {
	var el *pointer.Element
	if err := c.run(ctx, chromedp.Evaluate(elementAtScript(p), &el)); err != nil {
		return pointer.Element{}, false, err
	}
	if el == nil {
		return pointer.Element{}, false, nil
	}
	return *el, true, nil
}

// Click presses and releases the left button at p, which the browser turns
// into mousedown, mouseup and click.
func (c *Chrome) Click(ctx context.Context, p geom.Point) error {
	return c.run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return input.DispatchMouseEvent(input.MousePressed, p.X, p.Y).
				WithButton(input.Left).
				WithClickCount(1).
				Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return input.DispatchMouseEvent(input.MouseReleased, p.X, p.Y).
				WithButton(input.Left).
				WithClickCount(1).
				Do(ctx)
		}),
	)
}

// TextNodes lists the document's non-empty text nodes with their client rects.
func (c *Chrome) TextNodes(ctx context.Context) ([]pointer.TextNode, error) {
	var nodes []pointer.TextNode
	if err := c.run(ctx, chromedp.Evaluate(textNodesScript, &nodes)); err != nil {
		return nil, err
	}
	return nodes, nil
}

// ShowHighlight draws a translucent overlay over r.
func (c *Chrome) ShowHighlight(ctx context.Context, r geom.Rect) (string, error) {
	id := highlightClass + "-" + strconv.FormatUint(c.nextID.Add(1), 10)
	if err := c.run(ctx, chromedp.Evaluate(showHighlightScript(id, geom.Normalize(r)), nil)); err != nil {
		return "", err
	}
	return id, nil
}

// HideHighlight removes the overlay id.
func (c *Chrome) HideHighlight(ctx context.Context, id string) error {
	return c.run(ctx, chromedp.Evaluate(hideHighlightScript(id), nil))
}

// ScrollTo smooth-scrolls the window so its top offset is top.
func (c *Chrome) ScrollTo(ctx context.Context, top float64) error {
	return c.run(ctx, chromedp.Evaluate(scrollScript(top), nil))
}
