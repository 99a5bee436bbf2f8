package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/krogsys/loadfeed/internal/ingest"
)

// chunkRequest is the caller-held cursor driving resumable ingestion.
type chunkRequest struct {
	FileName  string `json:"fileName"`
	StartLine int    `json:"startLine"`
	ChunkSize int    `json:"chunkSize"`
}

// handleProcessChunk processes one window of a file.
// POST /api/chunks
func (s *Server) handleProcessChunk(w http.ResponseWriter, r *http.Request) {
	var req chunkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.FileName == "" {
		respondErrorMessage(w, http.StatusBadRequest, "fileName is required")
		return
	}
	if req.ChunkSize == 0 {
		req.ChunkSize = s.cfg.Ingest.ChunkSize
	}

	result, err := s.service.ProcessChunk(r.Context(), req.FileName, req.StartLine, req.ChunkSize)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleStoreRecords upserts records directly into a kind's table.
// POST /api/records/{kind}
func (s *Server) handleStoreRecords(w http.ResponseWriter, r *http.Request) {
	kind, ok := ingest.KindByKey(chi.URLParam(r, "kind"))
	if !ok {
		s.respondError(w, r, fmt.Errorf("%q: %w", chi.URLParam(r, "kind"), ingest.ErrUnknownKind))
		return
	}

	var rows []ingest.Row
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := s.service.StoreRecords(r.Context(), kind, rows)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleQueryRange returns the deduplicated rows of a kind's file whose
// date lies within [start, end], sorted by (date, time).
// GET /api/range/{kind}?start=YYYY-MM-DD&end=YYYY-MM-DD
func (s *Server) handleQueryRange(w http.ResponseWriter, r *http.Request) {
	kind, ok := ingest.KindByKey(chi.URLParam(r, "kind"))
	if !ok {
		s.respondError(w, r, fmt.Errorf("%q: %w", chi.URLParam(r, "kind"), ingest.ErrUnknownKind))
		return
	}

	rows, err := s.service.QueryRange(r.Context(),
		kind, r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rows)
}

// handleRecentRuns lists recent ingest runs, newest first.
// GET /api/runs?limit=50
func (s *Server) handleRecentRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	runs, err := s.service.RecentRuns(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, runs)
}

// handleReset deletes all rows from every known table.
// POST /api/reset
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ClearAll(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleHealth reports liveness.
// GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
