package ingest

import (
	"context"
	"fmt"
	"log/slog"
)

// maxBatchErrors bounds how many per-record error details a BatchResult
// carries; beyond that only the count grows.
const maxBatchErrors = 10

// RecordError describes a single record whose upsert failed.
type RecordError struct {
	Date   string `json:"date"`
	Time   string `json:"time"`
	Reason string `json:"reason"`
}

// BatchResult summarizes one storage batch. Per-record failures are
// tallied here rather than aborting the batch.
type BatchResult struct {
	Inserted int           `json:"inserted"`
	Skipped  int           `json:"skipped"` // rows missing their value field
	Failed   int           `json:"failed"`
	Errors   []RecordError `json:"errors,omitempty"` // first maxBatchErrors failures
}

// StoreRecords upserts rows into the table for the given kind and
// returns a per-batch summary. Inserted counts every successful upsert
// attempt, whether or not the stored value changed.
//
// The rows need not be pre-deduplicated; they are folded per key before
// writing so repeated keys cannot race each other inside one batch.
// Upserts are issued strictly sequentially: a failure is attributed to
// its record, logged, counted and skipped, and the batch continues.
// Re-running a batch over the same rows is safe because the upsert is
// keyed by (date, time).
func (s *Service) StoreRecords(ctx context.Context, kind Kind, rows []Row) (BatchResult, error) {
	var result BatchResult

	sql := upsertSQL(kind)

	for _, row := range Deduplicate(kind, rows) {
		value := row.Value(kind)
		if value == "" {
			result.Skipped++
			slog.Debug("skipping record without value",
				"table", kind.Table(), "date", row.Date, "time", row.Time)
			continue
		}

		args := []interface{}{row.Date, row.Time, value}
		if kind.HasRevision {
			args = append(args, row.Revision)
		}

		if _, err := s.db.Exec(ctx, sql, args...); err != nil {
			result.Failed++
			if len(result.Errors) < maxBatchErrors {
				result.Errors = append(result.Errors, RecordError{
					Date:   row.Date,
					Time:   row.Time,
					Reason: err.Error(),
				})
			}
			slog.Warn("upsert failed",
				"table", kind.Table(), "date", row.Date, "time", row.Time, "error", err)
			continue
		}
		result.Inserted++
	}

	return result, nil
}

// upsertSQL returns the idempotent insert-or-overwrite statement for a
// kind, keyed by (date, time).
func upsertSQL(kind Kind) string {
	if kind.HasRevision {
		return fmt.Sprintf(
			`INSERT INTO %s (date, "time", %s, revision) VALUES ($1, $2, $3, $4)
			ON CONFLICT (date, "time") DO UPDATE SET %s = EXCLUDED.%s, revision = EXCLUDED.revision`,
			kind.Table(), kind.ValueColumn, kind.ValueColumn, kind.ValueColumn)
	}
	return fmt.Sprintf(
		`INSERT INTO %s (date, "time", %s) VALUES ($1, $2, $3)
		ON CONFLICT (date, "time") DO UPDATE SET %s = EXCLUDED.%s`,
		kind.Table(), kind.ValueColumn, kind.ValueColumn, kind.ValueColumn)
}
