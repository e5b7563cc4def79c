package store

import (
	"context"
	"errors"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS ai_buckets (
		bucket_key TEXT PRIMARY KEY,
		minute_count INTEGER NOT NULL DEFAULT 0,
		minute_reset INTEGER NOT NULL,
		hour_count INTEGER NOT NULL DEFAULT 0,
		hour_reset INTEGER NOT NULL,
		day_count INTEGER NOT NULL DEFAULT 0,
		day_reset INTEGER NOT NULL,
		violations INTEGER NOT NULL DEFAULT 0,
		last_violation INTEGER,
		total_cost INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_ai_buckets_day_reset ON ai_buckets(day_reset);`,
}

// Migrate ensures the required database tables exist.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	for _, stmt := range schemaStatements {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store migration failed: %w", err)
		}
	}

	return nil
}
