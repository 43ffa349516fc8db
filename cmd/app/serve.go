package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"qwintry-bot/internal/infra/logging"
	"qwintry-bot/internal/infra/metrics"
)

func runServe(parent context.Context, flags *rootFlags) error {
	cfg, err := load(flags)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}
	metrics.MustRegister()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	if a.pool != nil {
		// acknowledged updates must still be answered after a shutdown signal
		a.pool.Start(context.WithoutCancel(ctx))
		defer a.pool.Stop()
	}
	if a.sweeper != nil {
		go func() { _ = a.sweeper.Run(ctx) }()
	}

	errc := make(chan error, 1)
	go func() { errc <- a.server.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info().Msg("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	err = a.server.Shutdown(shutdownCtx)
	if err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	// no new updates arrive past this point; finish the queued ones
	if a.pool != nil {
		a.pool.Stop()
	}
	return err
}
