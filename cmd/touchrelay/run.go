// Package main starts the touchrelay pointer relay.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/frudas24/touchrelay/internal/app"
	"github.com/frudas24/touchrelay/internal/bridge"
	"github.com/frudas24/touchrelay/internal/config"
	"github.com/frudas24/touchrelay/internal/hub"
	"github.com/frudas24/touchrelay/internal/logging"
	"github.com/frudas24/touchrelay/internal/page"
	"github.com/frudas24/touchrelay/internal/pointer"
	"github.com/frudas24/touchrelay/internal/transport"
	"github.com/frudas24/touchrelay/internal/writeback"
)

const (
	shutdownTimeout = 5 * time.Second
	detachedWidth   = 1280
	detachedHeight  = 720
)

// runOptions holds command-line flags.
type runOptions struct {
	debug    bool
	hub      bool
	detached bool
}

// run wires the relay and blocks until shutdown.
func run(opts runOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.debug {
		cfg.LogLevel = "debug"
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}
	logStartup(logger, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var servers []*http.Server
	errCh := make(chan error, 2)

	if opts.hub {
		h := hub.New(logger)
		defer h.Close()
		servers = append(servers, serve(cfg.HubAddr, h.Handler(), errCh))
		logger.Info("embedded hub", "addr", cfg.HubAddr)
	}

	var tab pointer.Page
	if opts.detached {
		tab = page.NewDetached(detachedWidth, detachedHeight)
		logger.Warn("running detached: no browser, nothing is clicked or selected")
	} else {
		chrome, err := page.Launch(ctx, page.Options{
			RemoteURL:  cfg.BrowserWSURL,
			Headless:   cfg.Headless,
			StartURL:   cfg.StartURL,
			CursorSize: float64(cfg.CursorSize),
		}, logger)
		if err != nil {
			return fmt.Errorf("browser: %w", err)
		}
		defer chrome.Close()
		tab = chrome
	}

	wb := writeback.New(cfg.WriteBackURL, float64(cfg.WriteBackRate), logger)
	defer wb.Close()

	br := bridge.New(cfg.BridgeBuffer, logger)
	manager := transport.New(transport.Options{
		PushURL:      cfg.PushURL,
		PullURL:      cfg.PullURL,
		PollInterval: cfg.PollInterval(),
	}, br, logger)
	sim := pointer.New(tab, wb, pointer.Options{
		CursorSize:   float64(cfg.CursorSize),
		HighlightFor: cfg.HighlightFor(),
		Normalized:   cfg.NormalizedCoords,
	}, logger)

	appInstance, err := app.New(manager, br, tab, sim, logger)
	if err != nil {
		return err
	}
	if err := appInstance.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := appInstance.Stop(); err != nil {
			logger.Error("shutdown", "err", err)
		}
	}()

	mux := http.NewServeMux()
	appInstance.RegisterRoutes(mux)
	servers = append(servers, serve(cfg.ListenAddr, mux, errCh))
	logListenStatus(logger, cfg.ListenAddr)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	var firstErr error
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// serve starts an HTTP server in the background and reports its failure on errCh.
func serve(addr string, handler http.Handler, errCh chan<- error) *http.Server {
	srv := &http.Server{Addr: addr, Handler: handler}
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()
	return srv
}

// logFatal prints and exits for startup failures.
func logFatal(err error) {
	log.Error("fatal", "err", err)
	os.Exit(1)
}

// logStartup prints startup checks and endpoints.
func logStartup(logger *log.Logger, cfg config.Config) {
	logger.Info("touchrelay starting")
	logEnvStatus(logger, cfg)
	logger.Info("endpoints", "push", cfg.PushURL, "pull", cfg.PullURL, "writeback", cfg.WriteBackURL)
	logger.Info("timing", "poll", cfg.PollInterval(), "highlight", cfg.HighlightFor())
}

// logEnvStatus reports which configuration files were found.
func logEnvStatus(logger *log.Logger, cfg config.Config) {
	envPath := filepath.Join(cfg.DataDir, ".env")
	logger.Info("env check", "path", envPath, "found", fileExists(envPath))
	logger.Info("config file", "path", cfg.ConfigFile, "found", fileExists(cfg.ConfigFile))
}

// logListenStatus reports the listen address and a local URL helper.
func logListenStatus(logger *log.Logger, addr string) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		logger.Info("listening", "addr", addr)
		return
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	logger.Info("listening", "addr", addr, "status", "http://"+net.JoinHostPort(host, port)+"/api/status")
}

// fileExists reports whether a path exists and is a file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
