package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// IngestRun is one recorded ProcessChunk invocation.
type IngestRun struct {
	ID         string    `json:"id"`
	FileName   string    `json:"fileName"`
	StartLine  int       `json:"startLine"`
	ChunkSize  int       `json:"chunkSize"`
	Processed  int       `json:"processed"`
	Valid      int       `json:"valid"`
	Invalid    int       `json:"invalid"`
	Duplicates int       `json:"duplicates"`
	Inserted   int       `json:"inserted"`
	HasMore    bool      `json:"hasMore"`
	DurationMS int64     `json:"durationMs"`
	CreatedAt  time.Time `json:"createdAt"`
}

// recordRun logs a chunk invocation to the ingest_runs table.
// Best effort: a history write failure never fails the chunk call.
func (s *Service) recordRun(ctx context.Context, res ChunkResult, took time.Duration) {
	_, err := s.db.Exec(ctx,
		`INSERT INTO ingest_runs
			(id, file_name, start_line, chunk_size, processed, valid, invalid, duplicates, inserted, has_more, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		uuid.New().String(), res.FileName, res.StartLine, res.ChunkSize,
		res.ProcessedLines, res.ValidRecords, res.InvalidRecords,
		res.DuplicateRecords, res.InsertedCount, res.HasMore,
		took.Milliseconds(),
	)
	if err != nil {
		slog.Warn("failed to record ingest run", "file", res.FileName, "error", err)
	}
}

// RecentRuns returns the most recent ingest runs, newest first.
func (s *Service) RecentRuns(ctx context.Context, limit int) ([]IngestRun, error) {
	if limit < 1 {
		limit = 50
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, file_name, start_line, chunk_size, processed, valid, invalid, duplicates, inserted, has_more, duration_ms, created_at
		FROM ingest_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying ingest runs: %w", err)
	}
	defer rows.Close()

	runs := make([]IngestRun, 0, limit)
	for rows.Next() {
		var run IngestRun
		if err := rows.Scan(&run.ID, &run.FileName, &run.StartLine, &run.ChunkSize,
			&run.Processed, &run.Valid, &run.Invalid, &run.Duplicates,
			&run.Inserted, &run.HasMore, &run.DurationMS, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning ingest run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
