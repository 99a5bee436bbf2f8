// Package blob provides the fetch-bytes-by-key capability backing
// ingestion. Implementations exist for S3, a local directory, and an
// in-memory map for tests.
package blob

import (
	"context"
	"errors"
)

// ErrNotFound indicates the requested key does not exist in the store.
var ErrNotFound = errors.New("blob not found")

// Store fetches raw file bytes by key.
type Store interface {
	// Get returns the contents stored under key, or an error wrapping
	// ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
}

// IsNotFound reports whether err indicates a missing key.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
