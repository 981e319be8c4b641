package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/peksity/police-chief-bot-sub002/internal/app"
	mcpinternal "github.com/peksity/police-chief-bot-sub002/internal/mcp"
	"github.com/peksity/police-chief-bot-sub002/pkg/config"
	"github.com/peksity/police-chief-bot-sub002/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv("chief-mcp")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
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

	cliApp := mcpinternal.NewCLIApp(container)

	if err := mcpinternal.Serve(ctx, cfg, cliApp, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mcp server error", "error", err)
		container.Close()
		os.Exit(1)
	}
}
