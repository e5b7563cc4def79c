package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aveekpatra/Domain-AI/internal/ratelimit"
)

// BucketStore implements ratelimit.Store on the ai_buckets table.
type BucketStore struct {
	store *Store
	clock func() time.Time
}

var _ ratelimit.Store = (*BucketStore)(nil)

// NewBucketStore returns a bucket store backed by s. Migrate must have run.
func NewBucketStore(s *Store) *BucketStore {
	return &BucketStore{store: s, clock: time.Now}
}

func (b *BucketStore) db() (*sql.DB, error) {
	if b == nil || b.store == nil || b.store.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	return b.store.DB, nil
}

// Get returns the bucket for key, or nil when none is stored.
func (b *BucketStore) Get(ctx context.Context, key string) (*ratelimit.Bucket, error) {
	db, err := b.db()
	if err != nil {
		return nil, err
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("bucket key is required")
	}

	row := db.QueryRowContext(ctx, `
		SELECT minute_count, minute_reset, hour_count, hour_reset, day_count, day_reset,
			violations, last_violation, total_cost
		FROM ai_buckets
		WHERE bucket_key = ?
	`, key)

	bucket, err := scanBucket(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch bucket: %w", err)
	}
	return bucket, nil
}

// Set upserts the bucket for key.
func (b *BucketStore) Set(ctx context.Context, key string, bucket *ratelimit.Bucket) error {
	db, err := b.db()
	if err != nil {
		return err
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("bucket key is required")
	}
	if bucket == nil {
		return errors.New("bucket is required")
	}

	var lastViolation sql.NullInt64
	if !bucket.LastViolation.IsZero() {
		lastViolation = sql.NullInt64{Int64: bucket.LastViolation.UnixMilli(), Valid: true}
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO ai_buckets (bucket_key, minute_count, minute_reset, hour_count, hour_reset,
			day_count, day_reset, violations, last_violation, total_cost, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(bucket_key) DO UPDATE SET
			minute_count = excluded.minute_count,
			minute_reset = excluded.minute_reset,
			hour_count = excluded.hour_count,
			hour_reset = excluded.hour_reset,
			day_count = excluded.day_count,
			day_reset = excluded.day_reset,
			violations = excluded.violations,
			last_violation = excluded.last_violation,
			total_cost = excluded.total_cost,
			updated_at = excluded.updated_at
	`, key,
		bucket.MinuteCount, bucket.MinuteReset.UnixMilli(),
		bucket.HourCount, bucket.HourReset.UnixMilli(),
		bucket.DayCount, bucket.DayReset.UnixMilli(),
		bucket.Violations, lastViolation, bucket.TotalCost,
		b.clock().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("store bucket: %w", err)
	}
	return nil
}

// Delete removes the bucket for key. Missing keys are not an error.
func (b *BucketStore) Delete(ctx context.Context, key string) error {
	db, err := b.db()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM ai_buckets WHERE bucket_key = ?`, key); err != nil {
		return fmt.Errorf("delete bucket: %w", err)
	}
	return nil
}

// Keys lists every stored bucket key.
func (b *BucketStore) Keys(ctx context.Context) ([]string, error) {
	db, err := b.db()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT bucket_key FROM ai_buckets ORDER BY bucket_key`)
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan buckets: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	return keys, nil
}

// BucketEntry pairs a stored key with its bucket.
type BucketEntry struct {
	Key    string           `json:"key"`
	Bucket ratelimit.Bucket `json:"bucket"`
}

// BucketQuery selects buckets for the admin commands.
type BucketQuery struct {
	All    bool
	Key    string
	Prefix string
}

func (q BucketQuery) Validate() error {
	if q.All || strings.TrimSpace(q.Key) != "" || strings.TrimSpace(q.Prefix) != "" {
		return nil
	}
	return errors.New("must specify --all, --key, or --prefix")
}

func (q BucketQuery) whereClause() (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}
	if q.All {
		return "", nil, nil
	}
	if key := strings.TrimSpace(q.Key); key != "" {
		return "WHERE bucket_key = ?", []any{key}, nil
	}
	return "WHERE bucket_key LIKE ?", []any{strings.TrimSpace(q.Prefix) + "%"}, nil
}

// List returns the buckets matching q ordered by key.
func (b *BucketStore) List(ctx context.Context, q BucketQuery) ([]BucketEntry, error) {
	db, err := b.db()
	if err != nil {
		return nil, err
	}

	where, args, err := q.whereClause()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
		SELECT bucket_key, minute_count, minute_reset, hour_count, hour_reset, day_count, day_reset,
			violations, last_violation, total_cost
		FROM ai_buckets
		%s
		ORDER BY bucket_key
	`, where), args...)
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup

	entries := []BucketEntry{}
	for rows.Next() {
		var key string
		bucket, err := scanBucket(rows, &key)
		if err != nil {
			return nil, fmt.Errorf("scan buckets: %w", err)
		}
		entries = append(entries, BucketEntry{Key: key, Bucket: *bucket})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	return entries, nil
}

// Reset deletes the buckets matching q and reports how many were removed.
func (b *BucketStore) Reset(ctx context.Context, q BucketQuery) (int64, error) {
	db, err := b.db()
	if err != nil {
		return 0, err
	}

	where, args, err := q.whereClause()
	if err != nil {
		return 0, err
	}

	result, err := db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM ai_buckets %s`, where), args...)
	if err != nil {
		return 0, fmt.Errorf("reset buckets: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset buckets: %w", err)
	}
	return affected, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBucket(row rowScanner, prefix ...any) (*ratelimit.Bucket, error) {
	var (
		minuteCount, hourCount, dayCount int
		minuteReset, hourReset, dayReset int64
		violations, totalCost            int
		lastViolation                    sql.NullInt64
	)

	dest := append(prefix, &minuteCount, &minuteReset, &hourCount, &hourReset,
		&dayCount, &dayReset, &violations, &lastViolation, &totalCost)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	bucket := &ratelimit.Bucket{
		MinuteCount: minuteCount,
		MinuteReset: time.UnixMilli(minuteReset).UTC(),
		HourCount:   hourCount,
		HourReset:   time.UnixMilli(hourReset).UTC(),
		DayCount:    dayCount,
		DayReset:    time.UnixMilli(dayReset).UTC(),
		Violations:  violations,
		TotalCost:   totalCost,
	}
	if lastViolation.Valid {
		bucket.LastViolation = time.UnixMilli(lastViolation.Int64).UTC()
	}
	return bucket, nil
}
