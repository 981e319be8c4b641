package queries

import (
	"context"
	"testing"

	planningDomain "github.com/peksity/police-chief-bot-sub002/internal/planning/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCatalogsHandler_Handle(t *testing.T) {
	handler := NewListCatalogsHandler(testCatalogs(t))

	catalogs, err := handler.Handle(context.Background(), ListCatalogsQuery{})
	require.NoError(t, err)
	require.Len(t, catalogs, 2)

	assert.Equal(t, "heists", catalogs[0].Name)
	assert.Equal(t, "Crew jobs", catalogs[0].Description)
	require.Len(t, catalogs[0].Activities, 3)
	assert.Equal(t, "A", catalogs[0].Activities[0].Key)
	assert.InDelta(t, 1_866_666.67, catalogs[0].Activities[0].RewardPerHour, 0.01)

	assert.Equal(t, "races", catalogs[1].Name)
	assert.Empty(t, catalogs[1].Activities)
}

func TestListCatalogsHandler_Handle_ByName(t *testing.T) {
	handler := NewListCatalogsHandler(testCatalogs(t))

	catalogs, err := handler.Handle(context.Background(), ListCatalogsQuery{Name: "races"})
	require.NoError(t, err)
	require.Len(t, catalogs, 1)
	assert.Equal(t, "races", catalogs[0].Name)

	_, err = handler.Handle(context.Background(), ListCatalogsQuery{Name: "nope"})
	assert.ErrorIs(t, err, planningDomain.ErrCatalogNotFound)
}
