// Package main starts a standalone coordinate hub.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"github.com/frudas24/touchrelay/internal/config"
	"github.com/frudas24/touchrelay/internal/hub"
	"github.com/frudas24/touchrelay/internal/logging"
)

// main is the entrypoint for the hub.
func main() {
	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	flag.Parse()

	if err := run(*debug); err != nil {
		log.Error("fatal", "err", err)
		os.Exit(1)
	}
}

// run serves the hub until interrupted.
func run(debug bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if debug {
		cfg.LogLevel = "debug"
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}

	h := hub.New(logger)
	server := &http.Server{Addr: cfg.HubAddr, Handler: h.Handler()}
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()
	logger.Info("hub listening", "ws", "ws://"+cfg.HubAddr+"/ws", "data", "http://"+cfg.HubAddr+"/data")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	h.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
