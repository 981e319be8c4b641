package catalogfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	planningDomain "github.com/peksity/police-chief-bot-sub002/internal/planning/domain"
	sharedDomain "github.com/peksity/police-chief-bot-sub002/internal/shared/domain"
	"github.com/peksity/police-chief-bot-sub002/internal/shared/infrastructure/security"
)

func TestDefault(t *testing.T) {
	set, err := Default()
	require.NoError(t, err)

	assert.Equal(t, []string{"gta", "rdo"}, set.Names())

	gta, err := set.Get("gta")
	require.NoError(t, err)
	assert.Equal(t, 6, gta.Len())

	cayo, ok := gta.Lookup("cayo")
	require.True(t, ok)
	assert.Equal(t, 60, cayo.DurationMinutes())
	assert.Equal(t, int64(2_500_000), cayo.Reward())
	assert.Equal(t, planningDomain.DifficultyHard, cayo.Difficulty())
	assert.Equal(t, "1-4", cayo.PlayerRange())
}

func TestParse(t *testing.T) {
	doc := `
catalogs:
  - name: contracts
    description: Quick jobs
    activities:
      - key: short
        name: Short Job
        duration_minutes: 12
        reward: 50000
        difficulty: Easy
      - key: long
        name: Long Job
        duration_minutes: 40
        reward: 220000
        cooldown_minutes: 30
        difficulty: hard
        players: "2-4"
`
	set, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)

	c, err := set.Get("contracts")
	require.NoError(t, err)
	assert.Equal(t, "Quick jobs", c.Description())

	var keys []string
	for _, e := range c.Entries() {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{"short", "long"}, keys)

	short, _ := c.Lookup("short")
	assert.Equal(t, planningDomain.DifficultyEasy, short.Difficulty())
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"zero duration", `
catalogs:
  - name: c
    activities:
      - {key: a, name: A, duration_minutes: 0, reward: 1, difficulty: easy}
`},
		{"negative reward", `
catalogs:
  - name: c
    activities:
      - {key: a, name: A, duration_minutes: 5, reward: -1, difficulty: easy}
`},
		{"bad difficulty", `
catalogs:
  - name: c
    activities:
      - {key: a, name: A, duration_minutes: 5, reward: 1, difficulty: insane}
`},
		{"duplicate key", `
catalogs:
  - name: c
    activities:
      - {key: a, name: A, duration_minutes: 5, reward: 1, difficulty: easy}
      - {key: a, name: B, duration_minutes: 5, reward: 1, difficulty: easy}
`},
		{"duplicate catalog", `
catalogs:
  - name: c
  - name: c
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, sharedDomain.ErrInvalidArgument)
		})
	}
}

func TestParse_UnknownField(t *testing.T) {
	doc := `
catalogs:
  - name: c
    activities:
      - {key: a, name: A, duration: 5, reward: 1, difficulty: easy}
`
	_, err := Parse(strings.NewReader(doc))
	assert.Error(t, err)
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoCatalogs)

	_, err = Parse(strings.NewReader("catalogs: []\n"))
	assert.ErrorIs(t, err, ErrNoCatalogs)
}

func TestLoadFile(t *testing.T) {
	dir, err := os.MkdirTemp("", "chief-catalog-*")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "catalogs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
catalogs:
  - name: solo
    activities:
      - {key: a, name: A, duration_minutes: 5, reward: 1, difficulty: easy}
`), 0o600))

	set, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"solo"}, set.Names())

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadFile(path + ";rm")
	assert.ErrorIs(t, err, security.ErrForbiddenPath)

	set, err = LoadFile("")
	require.NoError(t, err)
	assert.Contains(t, set.Names(), "gta")
}
