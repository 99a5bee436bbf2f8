package ingest

import (
	"context"
	"fmt"
)

// EnsureSchema creates the data tables and the ingest run log if they
// do not exist. Schema migration is out of scope; the statements are
// idempotent and safe to run on every start.
func EnsureSchema(ctx context.Context, db DBTX) error {
	for _, kind := range AllKinds() {
		ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			date TEXT NOT NULL,
			"time" TEXT NOT NULL,
			%s NUMERIC`, kind.Table(), kind.ValueColumn)
		if kind.HasRevision {
			ddl += `,
			revision TEXT`
		}
		ddl += `,
			PRIMARY KEY (date, "time")
		)`

		if _, err := db.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("creating table %s: %w", kind.Table(), err)
		}
	}

	_, err := db.Exec(ctx, `CREATE TABLE IF NOT EXISTS ingest_runs (
		id UUID PRIMARY KEY,
		file_name TEXT NOT NULL,
		start_line INTEGER NOT NULL,
		chunk_size INTEGER NOT NULL,
		processed INTEGER NOT NULL,
		valid INTEGER NOT NULL,
		invalid INTEGER NOT NULL,
		duplicates INTEGER NOT NULL,
		inserted INTEGER NOT NULL,
		has_more BOOLEAN NOT NULL,
		duration_ms BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		return fmt.Errorf("creating table ingest_runs: %w", err)
	}
	return nil
}
