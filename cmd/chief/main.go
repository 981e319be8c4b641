package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/peksity/police-chief-bot-sub002/adapter/cli"
	"github.com/peksity/police-chief-bot-sub002/adapter/cli/catalog"
	"github.com/peksity/police-chief-bot-sub002/adapter/cli/mcp"
	"github.com/peksity/police-chief-bot-sub002/adapter/cli/pattern"
	"github.com/peksity/police-chief-bot-sub002/internal/app"
	mcpinternal "github.com/peksity/police-chief-bot-sub002/internal/mcp"
	"github.com/peksity/police-chief-bot-sub002/pkg/config"
	"github.com/peksity/police-chief-bot-sub002/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv("chief")
	cli.SetLogger(logger)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
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
		// Commands report ErrNotConfigured; version and help still work.
		logger.Warn("failed to initialize container, running in limited mode", "error", err)
	} else {
		defer container.Close()
		cli.SetApp(mcpinternal.NewCLIApp(container))
	}

	cli.AddCommand(catalog.Cmd)
	cli.AddCommand(pattern.Cmd)
	cli.AddCommand(mcp.Cmd)

	root := cli.RootCommand()
	root.SetContext(ctx)
	if err := root.ExecuteContext(ctx); err != nil {
		if container != nil {
			container.Close()
		}
		os.Exit(1)
	}
}
