package cache

import (
	"context"
	"sync"
	"time"

	patternsDomain "github.com/peksity/police-chief-bot-sub002/internal/patterns/domain"
)

type memoryEntry struct {
	prediction patternsDomain.Prediction
	expiresAt  time.Time
}

// InMemoryPredictionCache is the process-local fallback used when Redis is
// not configured.
type InMemoryPredictionCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	gens    map[string]uint64
	ttl     time.Duration
	now     func() time.Time
}

var _ patternsDomain.PredictionCache = (*InMemoryPredictionCache)(nil)

// NewInMemoryPredictionCache creates a cache whose entries expire after ttl.
func NewInMemoryPredictionCache(ttl time.Duration) *InMemoryPredictionCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &InMemoryPredictionCache{
		entries: make(map[string]memoryEntry),
		gens:    make(map[string]uint64),
		ttl:     ttl,
		now:     time.Now,
	}
}

func memoryKey(userID, scopeID string) string {
	return scopeID + "\x00" + userID
}

func (c *InMemoryPredictionCache) Get(_ context.Context, userID, scopeID string) (*patternsDomain.Prediction, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[memoryKey(userID, scopeID)]
	c.mu.RUnlock()

	if !ok || !c.now().Before(entry.expiresAt) {
		return nil, false, nil
	}
	p := entry.prediction
	return &p, true, nil
}

func (c *InMemoryPredictionCache) Generation(_ context.Context, userID, scopeID string) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gens[memoryKey(userID, scopeID)], nil
}

func (c *InMemoryPredictionCache) SetIfCurrent(_ context.Context, prediction *patternsDomain.Prediction, generation uint64) (bool, error) {
	if prediction == nil {
		return false, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	key := memoryKey(prediction.UserID, prediction.ScopeID)
	if c.gens[key] != generation {
		return false, nil
	}
	c.entries[key] = memoryEntry{
		prediction: *prediction,
		expiresAt:  c.now().Add(c.ttl),
	}
	return true, nil
}

func (c *InMemoryPredictionCache) Invalidate(_ context.Context, userID, scopeID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := memoryKey(userID, scopeID)
	delete(c.entries, key)
	c.gens[key]++
	return nil
}
