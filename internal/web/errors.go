package web

// errors.go provides unified error response handling for the web layer.
//
// All errors are logged with full technical detail server-side and
// returned to clients as JSON with a short machine-readable code.

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"log/slog"

	"github.com/krogsys/loadfeed/internal/ingest"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// respondError maps an ingest error to an HTTP status and writes the
// JSON error response. Structural ingestion failures map to 404/422;
// everything else is a 500.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL"

	var schemaErr *ingest.SchemaError
	switch {
	case errors.Is(err, ingest.ErrNotFound):
		status, code = http.StatusNotFound, "FILE_NOT_FOUND"
	case errors.Is(err, ingest.ErrEmptyInput):
		status, code = http.StatusUnprocessableEntity, "EMPTY_FILE"
	case errors.Is(err, ingest.ErrUnknownKind):
		status, code = http.StatusUnprocessableEntity, "UNKNOWN_KIND"
	case errors.As(err, &schemaErr):
		status, code = http.StatusUnprocessableEntity, "SCHEMA_MISMATCH"
	}

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", code,
		"error", err.Error(),
		"request_id", chimw.GetReqID(r.Context()),
	)

	writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}

// respondErrorMessage writes a JSON error without an underlying error value.
func respondErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: statusCode(status)})
}

// statusCode renders an HTTP status in the short machine-readable code
// convention the API uses, e.g. 400 becomes "BAD_REQUEST".
func statusCode(status int) string {
	return strings.ReplaceAll(strings.ToUpper(http.StatusText(status)), " ", "_")
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
