package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustActivity(t *testing.T, name string, duration int, reward int64) Activity {
	t.Helper()
	a, err := NewActivity(ActivityParams{Name: name, DurationMinutes: duration, Reward: reward, Difficulty: DifficultyMedium})
	require.NoError(t, err)
	return a
}

func TestNewCatalog_PreservesOrderAndLookup(t *testing.T) {
	c, err := NewCatalog("heists", "Crew jobs", []CatalogEntry{
		{Key: "bank", Activity: mustActivity(t, "Bank Job", 45, 1_400_000)},
		{Key: "island", Activity: mustActivity(t, "Island Raid", 60, 2_500_000)},
		{Key: "delivery", Activity: mustActivity(t, "Delivery", 8, 85_000)},
	})
	require.NoError(t, err)

	assert.Equal(t, "heists", c.Name())
	assert.Equal(t, "Crew jobs", c.Description())
	assert.Equal(t, 3, c.Len())

	var keys []string
	for _, e := range c.Entries() {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{"bank", "island", "delivery"}, keys)

	a, ok := c.Lookup("island")
	require.True(t, ok)
	assert.Equal(t, "Island Raid", a.Name())

	_, ok = c.Lookup("missing")
	assert.False(t, ok)
}

func TestCatalog_EntriesIsACopy(t *testing.T) {
	c, err := NewCatalog("heists", "", []CatalogEntry{{Key: "bank", Activity: mustActivity(t, "Bank Job", 45, 10)}})
	require.NoError(t, err)

	entries := c.Entries()
	entries[0].Key = "changed"

	assert.Equal(t, "bank", c.Entries()[0].Key)
}

func TestNewCatalog_Validation(t *testing.T) {
	a := mustActivity(t, "Bank Job", 45, 10)

	_, err := NewCatalog(" ", "", nil)
	assert.ErrorIs(t, err, ErrCatalogEmptyName)

	_, err = NewCatalog("heists", "", []CatalogEntry{{Key: "", Activity: a}})
	assert.ErrorIs(t, err, ErrCatalogEmptyKey)

	_, err = NewCatalog("heists", "", []CatalogEntry{{Key: "bank", Activity: a}, {Key: "bank", Activity: a}})
	assert.ErrorIs(t, err, ErrCatalogDuplicateKey)

	empty, err := NewCatalog("empty", "", nil)
	require.NoError(t, err)
	assert.Zero(t, empty.Len())
}

func TestCatalogSet(t *testing.T) {
	heists, err := NewCatalog("heists", "", nil)
	require.NoError(t, err)
	contracts, err := NewCatalog("contracts", "", nil)
	require.NoError(t, err)

	set, err := NewCatalogSet(heists, contracts)
	require.NoError(t, err)

	got, err := set.Get("contracts")
	require.NoError(t, err)
	assert.Same(t, contracts, got)

	_, err = set.Get("races")
	assert.ErrorIs(t, err, ErrCatalogNotFound)

	assert.Equal(t, []string{"contracts", "heists"}, set.Names())
	assert.Equal(t, []*Catalog{heists, contracts}, set.Catalogs())

	_, err = NewCatalogSet(heists, heists)
	assert.ErrorIs(t, err, ErrDuplicateCatalog)
}

func TestSchedule_Add(t *testing.T) {
	s := &Schedule{BudgetMinutes: 60}
	assert.True(t, s.IsEmpty())

	s.Add(NewScheduleEntry("bank", mustActivity(t, "Bank Job", 45, 1_400_000)))

	assert.False(t, s.IsEmpty())
	assert.Equal(t, 45, s.TotalTimeMinutes)
	assert.Equal(t, int64(1_400_000), s.TotalReward)
	assert.Equal(t, 15, s.RemainingMinutes())
	assert.Equal(t, "Bank Job", s.Entries[0].Name)
}
