package mcp

import (
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/peksity/police-chief-bot-sub002/adapter/cli"
)

// ToolDependencies provides handlers and context for MCP tools.
type ToolDependencies struct {
	App *cli.App
}

// RegisterCLITools registers MCP tools that mirror CLI functionality.
func RegisterCLITools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}

	if err := registerCoreTools(srv, deps); err != nil {
		return err
	}
	if err := registerPlanTools(srv, deps); err != nil {
		return err
	}
	if err := registerPatternTools(srv, deps); err != nil {
		return err
	}

	return nil
}
