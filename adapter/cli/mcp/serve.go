package mcp

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/peksity/police-chief-bot-sub002/adapter/cli"
	mcpinternal "github.com/peksity/police-chief-bot-sub002/internal/mcp"
	"github.com/peksity/police-chief-bot-sub002/pkg/config"
	"github.com/peksity/police-chief-bot-sub002/pkg/observability"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start an HTTP MCP server exposing session planning and engagement
patterns as tools. Set MCP_AUTH_TOKEN to require a bearer token.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		app := cli.GetApp()
		if app == nil {
			return cli.ErrNotConfigured
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if listenAddr != "" {
			cfg.MCPAddr = listenAddr
		}

		logger := observability.LoggerFromEnv("chief-mcp")
		err = mcpinternal.Serve(ctx, cfg, app, logger)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "listen address (default MCP_ADDR)")
}
