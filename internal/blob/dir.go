package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirStore serves blobs from a local directory. Intended for
// development and single-host deployments.
type DirStore struct {
	root string
}

// NewDirStore creates a DirStore rooted at the given directory.
func NewDirStore(root string) *DirStore {
	return &DirStore{root: root}
}

// Get reads the file stored under key relative to the root directory.
func (d *DirStore) Get(_ context.Context, key string) ([]byte, error) {
	// Keys come from callers; never let them escape the root.
	clean := filepath.Clean(filepath.Join(d.root, filepath.FromSlash(key)))
	if !strings.HasPrefix(clean, filepath.Clean(d.root)+string(filepath.Separator)) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, nil
}
