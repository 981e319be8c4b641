package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	sharedDomain "github.com/peksity/police-chief-bot-sub002/internal/shared/domain"
)

var (
	ErrCatalogEmptyName    = fmt.Errorf("%w: catalog name cannot be empty", sharedDomain.ErrInvalidArgument)
	ErrCatalogEmptyKey     = fmt.Errorf("%w: activity key cannot be empty", sharedDomain.ErrInvalidArgument)
	ErrCatalogDuplicateKey = fmt.Errorf("%w: duplicate activity key", sharedDomain.ErrInvalidArgument)
	ErrDuplicateCatalog    = fmt.Errorf("%w: duplicate catalog name", sharedDomain.ErrInvalidArgument)
	ErrCatalogNotFound     = errors.New("catalog not found")
)

// CatalogEntry pairs an activity with its key inside a catalog.
type CatalogEntry struct {
	Key      string
	Activity Activity
}

// Catalog is an ordered, immutable set of activities for one game or
// context. Iteration order is the order entries were supplied in.
type Catalog struct {
	name        string
	description string
	entries     []CatalogEntry
	index       map[string]int
}

// NewCatalog builds a catalog. Keys must be non-empty and unique.
func NewCatalog(name, description string, entries []CatalogEntry) (*Catalog, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrCatalogEmptyName
	}

	c := &Catalog{
		name:        name,
		description: strings.TrimSpace(description),
		entries:     make([]CatalogEntry, 0, len(entries)),
		index:       make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		key := strings.TrimSpace(e.Key)
		if key == "" {
			return nil, fmt.Errorf("%w in catalog %s", ErrCatalogEmptyKey, name)
		}
		if _, dup := c.index[key]; dup {
			return nil, fmt.Errorf("%w %q in catalog %s", ErrCatalogDuplicateKey, key, name)
		}
		c.index[key] = len(c.entries)
		c.entries = append(c.entries, CatalogEntry{Key: key, Activity: e.Activity})
	}
	return c, nil
}

func (c *Catalog) Name() string        { return c.name }
func (c *Catalog) Description() string { return c.description }
func (c *Catalog) Len() int            { return len(c.entries) }

// Lookup returns the activity stored under key.
func (c *Catalog) Lookup(key string) (Activity, bool) {
	i, ok := c.index[key]
	if !ok {
		return Activity{}, false
	}
	return c.entries[i].Activity, true
}

// Entries returns a copy of the entries in catalog order.
func (c *Catalog) Entries() []CatalogEntry {
	out := make([]CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// CatalogSet is the process-wide registry of catalogs, selected by name.
// Catalogs are never merged.
type CatalogSet struct {
	catalogs map[string]*Catalog
	order    []string
}

// NewCatalogSet registers catalogs. Names must be unique.
func NewCatalogSet(catalogs ...*Catalog) (*CatalogSet, error) {
	s := &CatalogSet{catalogs: make(map[string]*Catalog, len(catalogs))}
	for _, c := range catalogs {
		if _, dup := s.catalogs[c.Name()]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCatalog, c.Name())
		}
		s.catalogs[c.Name()] = c
		s.order = append(s.order, c.Name())
	}
	return s, nil
}

// Get returns the catalog called name.
func (s *CatalogSet) Get(name string) (*Catalog, error) {
	c, ok := s.catalogs[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCatalogNotFound, name)
	}
	return c, nil
}

// Names returns catalog names sorted alphabetically.
func (s *CatalogSet) Names() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	sort.Strings(names)
	return names
}

// Catalogs returns every catalog in registration order.
func (s *CatalogSet) Catalogs() []*Catalog {
	out := make([]*Catalog, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.catalogs[name])
	}
	return out
}
