package persistence

import (
	"context"
	"fmt"
	"time"

	patternsDomain "github.com/peksity/police-chief-bot-sub002/internal/patterns/domain"
	sharedDomain "github.com/peksity/police-chief-bot-sub002/internal/shared/domain"
	"github.com/peksity/police-chief-bot-sub002/internal/shared/infrastructure/database"
)

// SQLPatternRepository stores pattern counters on PostgreSQL or SQLite.
type SQLPatternRepository struct {
	conn database.Connection
}

var _ patternsDomain.Repository = (*SQLPatternRepository)(nil)

// NewSQLPatternRepository creates a repository over conn.
func NewSQLPatternRepository(conn database.Connection) *SQLPatternRepository {
	return &SQLPatternRepository{conn: conn}
}

func (r *SQLPatternRepository) q(query string) string {
	return database.Rebind(r.conn.Driver(), query)
}

func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", sharedDomain.ErrStorageUnavailable, op, err)
}

const incrementCounter = `
	INSERT INTO pattern_counters (
		user_id, scope_id, day_of_week, hour_of_day,
		activity_count, engagement_count, success_count, updated_at
	) VALUES (?, ?, ?, ?, 1, ?, ?, ?)
	ON CONFLICT (user_id, scope_id, day_of_week, hour_of_day) DO UPDATE SET
		activity_count   = pattern_counters.activity_count + 1,
		engagement_count = pattern_counters.engagement_count + excluded.engagement_count,
		success_count    = pattern_counters.success_count + excluded.success_count,
		updated_at       = excluded.updated_at`

// Increment upserts the counter row in one statement, so concurrent callers
// never lose an update.
func (r *SQLPatternRepository) Increment(ctx context.Context, key patternsDomain.PatternKey, engaged, successful bool, at time.Time) error {
	if !key.Bucket.IsValid() {
		return patternsDomain.ErrInvalidBucket
	}
	if err := patternsDomain.ValidateIdentity(key.UserID, key.ScopeID); err != nil {
		return err
	}

	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, r.q(incrementCounter),
		key.UserID,
		key.ScopeID,
		int(key.Day),
		key.Hour,
		boolToInt(engaged),
		boolToInt(successful),
		at.UnixMilli(),
	)
	if err != nil {
		return storageError("increment pattern counter", err)
	}
	return nil
}

func (r *SQLPatternRepository) TopPatterns(ctx context.Context, userID, scopeID string, limit int) ([]patternsDomain.PatternRecord, error) {
	if err := patternsDomain.ValidateIdentity(userID, scopeID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, patternsDomain.ErrInvalidLimit
	}

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, r.q(`
		SELECT day_of_week, hour_of_day, activity_count, engagement_count, success_count, updated_at
		FROM pattern_counters
		WHERE user_id = ? AND scope_id = ?
		ORDER BY engagement_count DESC, activity_count DESC, day_of_week ASC, hour_of_day ASC
		LIMIT ?`), userID, scopeID, limit)
	if err != nil {
		return nil, storageError("query top patterns", err)
	}
	defer rows.Close()

	records := make([]patternsDomain.PatternRecord, 0, limit)
	for rows.Next() {
		var (
			day, hour int
			updatedAt int64
			counter   patternsDomain.PatternCounter
		)
		if err := rows.Scan(&day, &hour, &counter.ActivityCount, &counter.EngagementCount, &counter.SuccessCount, &updatedAt); err != nil {
			return nil, storageError("scan top patterns", err)
		}
		records = append(records, patternsDomain.PatternRecord{
			Key: patternsDomain.PatternKey{
				UserID:  userID,
				ScopeID: scopeID,
				Bucket:  patternsDomain.Bucket{Day: time.Weekday(day), Hour: hour},
			},
			Counter:   counter,
			UpdatedAt: time.UnixMilli(updatedAt).UTC(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterate top patterns", err)
	}
	return records, nil
}

func (r *SQLPatternRepository) ScopePeakTimes(ctx context.Context, scopeID string, limit int) ([]patternsDomain.PeakTime, error) {
	if err := patternsDomain.ValidateScope(scopeID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, patternsDomain.ErrInvalidLimit
	}

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, r.q(`
		SELECT day_of_week, hour_of_day,
		       CAST(SUM(engagement_count) AS BIGINT) AS engagements,
		       CAST(SUM(activity_count) AS BIGINT) AS activity
		FROM pattern_counters
		WHERE scope_id = ?
		GROUP BY day_of_week, hour_of_day
		ORDER BY engagements DESC, activity DESC, day_of_week ASC, hour_of_day ASC
		LIMIT ?`), scopeID, limit)
	if err != nil {
		return nil, storageError("query scope peak times", err)
	}
	defer rows.Close()

	peaks := make([]patternsDomain.PeakTime, 0, limit)
	for rows.Next() {
		var (
			day, hour int
			peak      patternsDomain.PeakTime
		)
		if err := rows.Scan(&day, &hour, &peak.EngagementCount, &peak.ActivityCount); err != nil {
			return nil, storageError("scan scope peak times", err)
		}
		peak.Bucket = patternsDomain.Bucket{Day: time.Weekday(day), Hour: hour}
		peaks = append(peaks, peak)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterate scope peak times", err)
	}
	return peaks, nil
}

func (r *SQLPatternRepository) TrackedUsers(ctx context.Context, scopeID string) ([]string, error) {
	if err := patternsDomain.ValidateScope(scopeID); err != nil {
		return nil, err
	}
	return r.strings(ctx, "list tracked users", `
		SELECT DISTINCT user_id FROM pattern_counters WHERE scope_id = ? ORDER BY user_id`, scopeID)
}

func (r *SQLPatternRepository) Scopes(ctx context.Context) ([]string, error) {
	return r.strings(ctx, "list scopes", `
		SELECT DISTINCT scope_id FROM pattern_counters ORDER BY scope_id`)
}

func (r *SQLPatternRepository) strings(ctx context.Context, op, query string, args ...any) ([]string, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, r.q(query), args...)
	if err != nil {
		return nil, storageError(op, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, storageError(op, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError(op, err)
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
