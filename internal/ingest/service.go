package ingest

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/krogsys/loadfeed/internal/blob"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// DefaultChunkSize is used when a chunk request does not specify one.
const DefaultChunkSize = 500

// Service owns the ingestion operations: chunked file processing,
// direct record storage, range queries and table resets.
type Service struct {
	db    DBTX
	blobs blob.Store
}

// NewService creates a Service backed by the given database and blob store.
func NewService(db DBTX, blobs blob.Store) *Service {
	return &Service{db: db, blobs: blobs}
}

// fetch loads a file from blob storage, translating a missing key into
// the ingest-level not-found condition.
func (s *Service) fetch(ctx context.Context, key string) ([]byte, error) {
	data, err := s.blobs.Get(ctx, key)
	if err != nil {
		if blob.IsNotFound(err) {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("fetching %s: %w", key, err)
	}
	return data, nil
}

// ClearAll deletes every row from all known tables and the ingest run
// log. There is no selective clearing.
func (s *Service) ClearAll(ctx context.Context) error {
	for _, kind := range AllKinds() {
		if _, err := s.db.Exec(ctx, "DELETE FROM "+kind.Table()); err != nil {
			return fmt.Errorf("clearing %s: %w", kind.Table(), err)
		}
	}
	if _, err := s.db.Exec(ctx, "DELETE FROM ingest_runs"); err != nil {
		return fmt.Errorf("clearing ingest_runs: %w", err)
	}
	return nil
}
