package mcp

import (
	"io"
	"log/slog"
	"testing"

	"github.com/felixgeelhaar/mcp-go/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peksity/police-chief-bot-sub002/adapter/cli"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewServer(t *testing.T) {
	srv, err := NewServer(&cli.App{}, discardLogger())
	require.NoError(t, err)

	tc := testutil.NewTestClient(t, srv)
	defer tc.Close()

	tools, err := tc.ListTools()
	require.NoError(t, err)
	assert.NotEmpty(t, tools)
}

func TestNewServer_RequiresApp(t *testing.T) {
	_, err := NewServer(nil, discardLogger())
	assert.Error(t, err)
}

func TestMiddlewareStack_AddsAuthWithToken(t *testing.T) {
	open := middlewareStack("", discardLogger())
	secured := middlewareStack("secret", discardLogger())
	assert.Len(t, secured, len(open)+1)
}
