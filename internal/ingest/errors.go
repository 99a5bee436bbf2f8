package ingest

import (
	"errors"
	"fmt"
	"strings"
)

// Structural failures abort the whole operation and surface to the caller.
// Row-level problems never become errors; they are tallied in the result.
var (
	// ErrNotFound indicates the referenced file is absent from blob storage.
	ErrNotFound = errors.New("file not found")

	// ErrEmptyInput indicates the file has no data rows after the header.
	ErrEmptyInput = errors.New("file has no data rows")

	// ErrUnknownKind indicates a file name that maps to no known table.
	ErrUnknownKind = errors.New("unknown record kind")
)

// SchemaError reports a header that lacks required columns.
type SchemaError struct {
	Kind    string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("header for %s missing required columns: %s",
		e.Kind, strings.Join(e.Missing, ", "))
}
