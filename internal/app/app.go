// Package app wires the transport, the bridge and the pointer simulator together.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/frudas24/touchrelay/internal/bridge"
	"github.com/frudas24/touchrelay/internal/gesture"
	"github.com/frudas24/touchrelay/internal/logging"
	"github.com/frudas24/touchrelay/internal/pointer"
)

const gestureTimeout = 5 * time.Second

// Transport is the delivery side the app starts, stops and controls.
type Transport interface {
	bridge.Controller
	Start(ctx context.Context)
	Stop()
}

// App owns the consume loop: bridge messages in, page effects out.
type App struct {
	transport Transport
	bridge    *bridge.Bridge
	page      pointer.Page
	sim       *pointer.Simulator
	norm      *gesture.Normalizer
	log       *log.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an application with its dependencies wired.
func New(tr Transport, br *bridge.Bridge, page pointer.Page, sim *pointer.Simulator, logger *log.Logger) (*App, error) {
	if tr == nil {
		return nil, errors.New("transport is required")
	}
	if br == nil {
		return nil, errors.New("bridge is required")
	}
	if page == nil {
		return nil, errors.New("page is required")
	}
	if sim == nil {
		return nil, errors.New("simulator is required")
	}
	return &App{
		transport: tr,
		bridge:    br,
		page:      page,
		sim:       sim,
		norm:      gesture.NewNormalizer(),
		log:       logging.Component(logger, "app"),
	}, nil
}

// Start waits for the page, then starts the transport and the consume loop.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return errors.New("already started")
	}
	if err := a.page.WaitReady(ctx); err != nil {
		return fmt.Errorf("page: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	msgs := a.bridge.Attach()
	a.bridge.Serve(a.transport)
	a.transport.Start(runCtx)

	a.cancel = cancel
	a.done = make(chan struct{})
	go a.consume(runCtx, msgs, a.done)
	a.log.Info("relay started", "mode", a.transport.Status().Mode)
	return nil
}

// Stop stops the transport, detaches from the bridge and waits for the
// consume loop to drain.
func (a *App) Stop() error {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	a.transport.Stop()
	a.bridge.Detach()
	<-done
	a.sim.Close()
	a.log.Info("relay stopped")
	return nil
}

// Bridge returns the bridge used for control requests.
func (a *App) Bridge() *bridge.Bridge {
	return a.bridge
}

// Simulator returns the pointer simulator.
func (a *App) Simulator() *pointer.Simulator {
	return a.sim
}

// consume applies messages in arrival order until msgs closes.
func (a *App) consume(ctx context.Context, msgs <-chan bridge.Message, done chan struct{}) {
	defer close(done)
	for msg := range msgs {
		if ctx.Err() != nil {
			continue
		}
		a.handle(ctx, msg)
	}
}

// handle normalizes one message and applies the resulting gesture.
func (a *App) handle(ctx context.Context, msg bridge.Message) {
	if msg.Type != bridge.TypeCoordinateData || msg.Data == nil {
		a.log.Debug("ignoring message", "type", msg.Type)
		return
	}
	g, ok := a.norm.Accept(*msg.Data)
	if !ok {
		return
	}
	opCtx, cancel := context.WithTimeout(ctx, gestureTimeout)
	defer cancel()
	if err := a.sim.Apply(opCtx, g); err != nil {
		a.log.Warn("gesture failed", "kind", g.Kind, "err", err)
	}
}
