package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/peksity/police-chief-bot-sub002/internal/shared/infrastructure/database"
)

// SQLRepository stores messages in the outbox table on PostgreSQL or
// SQLite. Timestamps are unix milliseconds.
type SQLRepository struct {
	conn database.Connection
}

var _ Repository = (*SQLRepository)(nil)

// NewSQLRepository creates a repository over conn.
func NewSQLRepository(conn database.Connection) *SQLRepository {
	return &SQLRepository{conn: conn}
}

func (r *SQLRepository) q(query string) string {
	return database.Rebind(r.conn.Driver(), query)
}

const insertMessage = `
	INSERT INTO outbox (
		event_id, aggregate_type, aggregate_id, routing_key,
		payload, metadata, created_at, retry_count, last_error
	) VALUES (?, ?, ?, ?, ?, ?, ?, 0, '')
	RETURNING id`

func (r *SQLRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}

	exec := database.ExecutorFromContext(ctx, r.conn)
	for _, msg := range msgs {
		metadata, err := msg.metadataJSON()
		if err != nil {
			return fmt.Errorf("marshal outbox metadata: %w", err)
		}
		err = exec.QueryRow(ctx, r.q(insertMessage),
			msg.EventID.String(),
			msg.AggregateType,
			msg.AggregateID.String(),
			msg.RoutingKey,
			string(msg.Payload),
			metadata,
			msg.CreatedAt.UnixMilli(),
		).Scan(&msg.ID)
		if err != nil {
			return fmt.Errorf("insert outbox message %s: %w", msg.EventID, err)
		}
	}
	return nil
}

func (r *SQLRepository) Pending(ctx context.Context, now time.Time, limit int) ([]*Message, error) {
	rows, err := r.conn.Query(ctx, r.q(`
		SELECT id, event_id, aggregate_type, aggregate_id, routing_key, payload, metadata,
		       created_at, published_at, next_retry_at, retry_count, last_error, dead_lettered_at
		FROM outbox
		WHERE published_at IS NULL
		  AND dead_lettered_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY id
		LIMIT ?`), now.UnixMilli(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (r *SQLRepository) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	_, err := r.conn.Exec(ctx, r.q(`UPDATE outbox SET published_at = ? WHERE id = ?`), at.UnixMilli(), id)
	return err
}

func (r *SQLRepository) MarkFailed(ctx context.Context, id int64, reason string, nextRetryAt time.Time) error {
	_, err := r.conn.Exec(ctx, r.q(`
		UPDATE outbox
		SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ?
		WHERE id = ?`), reason, nextRetryAt.UnixMilli(), id)
	return err
}

func (r *SQLRepository) MarkDead(ctx context.Context, id int64, reason string, at time.Time) error {
	_, err := r.conn.Exec(ctx, r.q(`
		UPDATE outbox SET last_error = ?, dead_lettered_at = ? WHERE id = ?`), reason, at.UnixMilli(), id)
	return err
}

func (r *SQLRepository) DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.conn.Exec(ctx, r.q(`
		DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < ?`), cutoff.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanMessage(row database.Row) (*Message, error) {
	var (
		msg                            Message
		eventID, aggregateID           string
		payload, metadata              string
		createdAt                      int64
		publishedAt, nextRetry, deadAt sql.NullInt64
	)
	err := row.Scan(
		&msg.ID, &eventID, &msg.AggregateType, &aggregateID, &msg.RoutingKey,
		&payload, &metadata, &createdAt, &publishedAt, &nextRetry,
		&msg.RetryCount, &msg.LastError, &deadAt,
	)
	if err != nil {
		return nil, err
	}

	if msg.EventID, err = uuid.Parse(eventID); err != nil {
		return nil, fmt.Errorf("outbox %d: bad event id: %w", msg.ID, err)
	}
	if msg.AggregateID, err = uuid.Parse(aggregateID); err != nil {
		return nil, fmt.Errorf("outbox %d: bad aggregate id: %w", msg.ID, err)
	}
	if metadata != "" {
		if err := json.Unmarshal([]byte(metadata), &msg.Metadata); err != nil {
			return nil, fmt.Errorf("outbox %d: bad metadata: %w", msg.ID, err)
		}
	}

	msg.Payload = []byte(payload)
	msg.CreatedAt = time.UnixMilli(createdAt).UTC()
	msg.PublishedAt = millisPtr(publishedAt)
	msg.NextRetryAt = millisPtr(nextRetry)
	msg.DeadLetteredAt = millisPtr(deadAt)
	return &msg, nil
}

func millisPtr(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64).UTC()
	return &t
}
