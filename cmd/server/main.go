package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DoyleJ11/gridclaim/internal/config"
	"github.com/DoyleJ11/gridclaim/internal/httpapi"
	"github.com/DoyleJ11/gridclaim/internal/hub"
	"github.com/DoyleJ11/gridclaim/internal/logging"
	"github.com/DoyleJ11/gridclaim/internal/results"
	"github.com/DoyleJ11/gridclaim/internal/ws"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() (err error) {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hubCfg := hub.Config{Rules: cfg.Rules, Timing: cfg.Timing, Logger: log}
	deps := httpapi.Deps{
		Logger: log,
		WS:     ws.Options{DefaultCode: cfg.DefaultSession, MsgRate: cfg.MsgRate, MsgBurst: cfg.MsgBurst},
	}
	if cfg.ResultsDSN != "" {
		store, openErr := results.Open(cfg.ResultsDSN)
		if openErr != nil {
			return openErr
		}
		defer func() { err = multierr.Append(err, store.Close()) }()
		hubCfg.Recorder = store
		deps.Results = store
		log.Info("results archive enabled")
	}

	// Sessions outlive the signal context so ShutdownHub can stop them in order.
	hubCtx, cancelHub := context.WithCancel(context.Background())
	defer cancelHub()
	h := hub.NewHub(hubCtx, hubCfg)
	deps.Hub = h

	if _, err := h.Ensure(ctx, cfg.DefaultSession); err != nil {
		return fmt.Errorf("create default session: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.SetupRoutes(deps),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Addr), zap.String("default_session", cfg.DefaultSession))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		done := make(chan struct{})
		h.Inbox() <- hub.ShutdownHub{Done: done}
		var errs error
		select {
		case <-done:
		case <-shutdownCtx.Done():
			errs = multierr.Append(errs, errors.New("sessions did not stop in time"))
		}
		return multierr.Append(errs, srv.Shutdown(shutdownCtx))
	})
	return g.Wait()
}
