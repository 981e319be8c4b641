package outbox

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository persists outbox messages.
type Repository interface {
	// SaveBatch stores msgs, joining the transaction in ctx when present.
	SaveBatch(ctx context.Context, msgs []*Message) error

	// Pending returns undelivered, non-dead messages whose retry time has
	// passed, oldest first.
	Pending(ctx context.Context, now time.Time, limit int) ([]*Message, error)

	MarkPublished(ctx context.Context, id int64, at time.Time) error
	MarkFailed(ctx context.Context, id int64, reason string, nextRetryAt time.Time) error
	MarkDead(ctx context.Context, id int64, reason string, at time.Time) error

	// DeletePublishedBefore removes delivered messages older than cutoff.
	DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// InMemoryRepository keeps messages in memory. Used by tests and by the
// CLI when events only need to reach in-process consumers.
type InMemoryRepository struct {
	mu       sync.Mutex
	nextID   int64
	messages map[int64]*Message
}

var _ Repository = (*InMemoryRepository)(nil)

// NewInMemoryRepository creates an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{messages: make(map[int64]*Message)}
}

func (r *InMemoryRepository) SaveBatch(_ context.Context, msgs []*Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, msg := range msgs {
		r.nextID++
		msg.ID = r.nextID
		stored := *msg
		r.messages[msg.ID] = &stored
	}
	return nil
}

func (r *InMemoryRepository) Pending(_ context.Context, now time.Time, limit int) ([]*Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Message
	for _, msg := range r.messages {
		if msg.PublishedAt != nil || msg.DeadLetteredAt != nil {
			continue
		}
		if msg.NextRetryAt != nil && msg.NextRetryAt.After(now) {
			continue
		}
		cp := *msg
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *InMemoryRepository) MarkPublished(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if msg, ok := r.messages[id]; ok {
		msg.PublishedAt = &at
	}
	return nil
}

func (r *InMemoryRepository) MarkFailed(_ context.Context, id int64, reason string, nextRetryAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if msg, ok := r.messages[id]; ok {
		msg.RetryCount++
		msg.LastError = reason
		msg.NextRetryAt = &nextRetryAt
	}
	return nil
}

func (r *InMemoryRepository) MarkDead(_ context.Context, id int64, reason string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if msg, ok := r.messages[id]; ok {
		msg.LastError = reason
		msg.DeadLetteredAt = &at
	}
	return nil
}

func (r *InMemoryRepository) DeletePublishedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, msg := range r.messages {
		if msg.PublishedAt != nil && msg.PublishedAt.Before(cutoff) {
			delete(r.messages, id)
			n++
		}
	}
	return n, nil
}

// Get returns a copy of the stored message.
func (r *InMemoryRepository) Get(id int64) (*Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg, ok := r.messages[id]
	if !ok {
		return nil, false
	}
	cp := *msg
	return &cp, true
}
