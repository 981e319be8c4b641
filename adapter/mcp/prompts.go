package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for common workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("session_planning").
		Description("Plan a play session for a group and pick a good time to announce it.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return &mcp.PromptResult{
				Description: "Session Planning",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: `Help me plan tonight's session. Please:

1. Read the chief://catalogs resource to see what activities exist
2. Ask how many minutes we have, then call session.plan with that budget
3. Call pattern.peaks for our scope to see when the group is usually online
4. For anyone I mention, call pattern.predict to see their best hour

Then suggest:
- The session plan, with the total reward
- The best hour to announce it
- Who is likely to show up at that hour`,
						},
					},
				},
			}, nil
		})

	return nil
}
