package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterResources registers MCP resources that expose catalog data.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	app := deps.App

	srv.Resource("chief://catalogs").
		Name("Catalogs").
		Description("Every activity catalog with durations and rewards").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			catalogs, err := listCatalogs(ctx, app, catalogListInput{})
			if err != nil {
				return nil, err
			}

			data, err := json.MarshalIndent(catalogs, "", "  ")
			if err != nil {
				return nil, err
			}

			return &mcp.ResourceContent{
				URI:      uri,
				MimeType: "application/json",
				Text:     string(data),
			}, nil
		})

	return nil
}
