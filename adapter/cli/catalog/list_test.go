package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peksity/police-chief-bot-sub002/adapter/cli"
	"github.com/peksity/police-chief-bot-sub002/internal/planning/application/queries"
	"github.com/peksity/police-chief-bot-sub002/internal/planning/infrastructure/catalogfile"
)

func setupApp(t *testing.T) {
	t.Helper()
	catalogs, err := catalogfile.Default()
	require.NoError(t, err)

	cli.SetApp(cli.NewApp(nil, queries.NewListCatalogsHandler(catalogs), nil, nil, nil, nil, nil))
	t.Cleanup(func() {
		cli.SetApp(nil)
		cli.SetJSONOutput(false)
	})
}

func runList(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	listCmd.SetOut(&out)
	listCmd.SetContext(context.Background())
	require.NoError(t, listCmd.RunE(listCmd, args))
	return out.String()
}

func TestListCmd_All(t *testing.T) {
	setupApp(t)

	out := runList(t)
	assert.Contains(t, out, "gta (6 activities)")
	assert.Contains(t, out, "rdo (4 activities)")
	assert.Contains(t, out, "Cayo Perico Heist")
}

func TestListCmd_ByNameJSON(t *testing.T) {
	setupApp(t)
	cli.SetJSONOutput(true)

	var catalogs []queries.CatalogDTO
	require.NoError(t, json.Unmarshal([]byte(runList(t, "rdo")), &catalogs))
	require.Len(t, catalogs, 1)
	assert.Equal(t, "rdo", catalogs[0].Name)
	assert.Len(t, catalogs[0].Activities, 4)
}

func TestListCmd_UnknownCatalog(t *testing.T) {
	setupApp(t)

	listCmd.SetContext(context.Background())
	assert.Error(t, listCmd.RunE(listCmd, []string{"nope"}))
}
