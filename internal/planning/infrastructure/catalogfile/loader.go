// Package catalogfile loads activity catalogs from YAML.
package catalogfile

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	planningDomain "github.com/peksity/police-chief-bot-sub002/internal/planning/domain"
	"github.com/peksity/police-chief-bot-sub002/internal/shared/infrastructure/security"
)

//go:embed default.yaml
var defaultCatalogs []byte

// ErrNoCatalogs is returned when a document defines no catalogs.
var ErrNoCatalogs = errors.New("catalog file defines no catalogs")

type fileDocument struct {
	Catalogs []fileCatalog `yaml:"catalogs"`
}

type fileCatalog struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Activities  []fileActivity `yaml:"activities"`
}

type fileActivity struct {
	Key             string `yaml:"key"`
	Name            string `yaml:"name"`
	DurationMinutes int    `yaml:"duration_minutes"`
	Reward          int64  `yaml:"reward"`
	CooldownMinutes int    `yaml:"cooldown_minutes"`
	Difficulty      string `yaml:"difficulty"`
	Players         string `yaml:"players"`
}

// Default returns the embedded catalogs.
func Default() (*planningDomain.CatalogSet, error) {
	return Parse(bytes.NewReader(defaultCatalogs))
}

// LoadFile reads catalogs from path. An empty path returns the embedded
// catalogs.
func LoadFile(path string) (*planningDomain.CatalogSet, error) {
	if path == "" {
		return Default()
	}

	f, err := security.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()

	set, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Parse decodes a catalog document. Unknown fields and invalid activities
// are rejected.
func Parse(r io.Reader) (*planningDomain.CatalogSet, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc fileDocument
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoCatalogs
		}
		return nil, fmt.Errorf("decode catalogs: %w", err)
	}
	if len(doc.Catalogs) == 0 {
		return nil, ErrNoCatalogs
	}

	catalogs := make([]*planningDomain.Catalog, 0, len(doc.Catalogs))
	for _, fc := range doc.Catalogs {
		c, err := fc.toDomain()
		if err != nil {
			return nil, err
		}
		catalogs = append(catalogs, c)
	}

	return planningDomain.NewCatalogSet(catalogs...)
}

func (fc fileCatalog) toDomain() (*planningDomain.Catalog, error) {
	entries := make([]planningDomain.CatalogEntry, 0, len(fc.Activities))
	for i, fa := range fc.Activities {
		difficulty, err := planningDomain.ParseDifficulty(fa.Difficulty)
		if err != nil {
			return nil, fmt.Errorf("catalog %s activity %d: %w", fc.Name, i, err)
		}

		activity, err := planningDomain.NewActivity(planningDomain.ActivityParams{
			Name:            fa.Name,
			DurationMinutes: fa.DurationMinutes,
			Reward:          fa.Reward,
			CooldownMinutes: fa.CooldownMinutes,
			Difficulty:      difficulty,
			PlayerRange:     fa.Players,
		})
		if err != nil {
			return nil, fmt.Errorf("catalog %s activity %d: %w", fc.Name, i, err)
		}

		entries = append(entries, planningDomain.CatalogEntry{Key: fa.Key, Activity: activity})
	}

	return planningDomain.NewCatalog(fc.Name, fc.Description, entries)
}
