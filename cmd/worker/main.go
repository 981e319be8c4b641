package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/peksity/police-chief-bot-sub002/internal/app"
	"github.com/peksity/police-chief-bot-sub002/internal/shared/infrastructure/eventbus"
	"github.com/peksity/police-chief-bot-sub002/pkg/config"
	"github.com/peksity/police-chief-bot-sub002/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv("chief-worker")
	logger.Info("starting chief worker")

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting outbox processor",
			"poll_interval", cfg.OutboxPollInterval,
			"batch_size", cfg.OutboxBatchSize,
			"max_retries", cfg.OutboxMaxRetries,
		)
		return container.OutboxProcessor.Run(gctx)
	})

	g.Go(func() error {
		return container.NotifySweeper.Run(gctx)
	})

	if container.LocalBus == nil {
		consumer, err := eventbus.NewRabbitMQConsumer(cfg.RabbitMQURL, "", logger)
		if err != nil {
			logger.Error("failed to create RabbitMQ consumer", "error", err)
			os.Exit(1)
		}
		defer consumer.Close()
		consumer.RegisterConsumer(container.CacheInvalidator)

		g.Go(func() error {
			return consumer.Start(gctx)
		})
	}

	g.Go(func() error {
		runCleanup(gctx, container, cfg)
		return nil
	})

	if cfg.WorkerHTTPAddr != "" {
		srv := &http.Server{
			Addr:              cfg.WorkerHTTPAddr,
			Handler:           newHealthMux(container),
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Go(func() error {
			logger.Info("health server starting", "addr", cfg.WorkerHTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := app.ShutdownContext()
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("health server shutdown error", "error", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped with error", "error", err)
		container.Close()
		os.Exit(1)
	}

	stats := container.OutboxProcessor.Stats()
	logger.Info("worker stopped",
		"published", stats.PublishedCount,
		"failed", stats.FailedCount,
		"dead", stats.DeadCount,
	)
}

func runCleanup(ctx context.Context, container *app.Container, cfg *config.Config) {
	interval := cfg.OutboxCleanupInterval
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	retention := time.Duration(cfg.OutboxRetentionDays) * 24 * time.Hour

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := container.OutboxProcessor.Cleanup(ctx, retention)
			if err != nil {
				container.Logger.Error("outbox cleanup failed", "error", err)
				continue
			}
			if deleted > 0 {
				container.Logger.Info("outbox cleanup completed", "deleted", deleted, "retention_days", cfg.OutboxRetentionDays)
			}
		}
	}
}
