package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/krogsys/loadfeed/internal/blob"
)

func newChunkService(db DBTX, files map[string]string) *Service {
	blobs := blob.NewMemoryStore(nil)
	for name, content := range files {
		blobs.Put(name, []byte(content))
	}
	return NewService(db, blobs)
}

// ============================================================================
// ProcessChunk Tests
// ============================================================================

func TestProcessChunkResolvesRevisions(t *testing.T) {
	// Two publications for the same timestamp must dedup to one stored
	// row carrying the later revision's value.
	db := &fakeDB{}
	svc := newChunkService(db, map[string]string{
		"d_load_fcst_archive.csv": "date,time,load_fcst,revision\n" +
			"2024-01-01,00:00,100,2024-01-01T00:00:00Z\n" +
			"2024-01-01,00:00,105,2024-01-02T00:00:00Z\n",
	})

	result, err := svc.ProcessChunk(context.Background(), "d_load_fcst_archive.csv", 1, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ProcessedLines != 2 {
		t.Errorf("expected 2 processed lines, got %d", result.ProcessedLines)
	}
	if result.ValidRecords != 2 {
		t.Errorf("expected 2 valid records, got %d", result.ValidRecords)
	}
	if result.DuplicateRecords != 1 {
		t.Errorf("expected 1 duplicate, got %d", result.DuplicateRecords)
	}
	if result.InsertedCount != 1 {
		t.Errorf("expected 1 inserted, got %d", result.InsertedCount)
	}
	if result.HasMore {
		t.Error("expected HasMore to be false")
	}

	calls := db.upserts("load_fcst_d")
	if len(calls) != 1 {
		t.Fatalf("expected 1 upsert, got %d", len(calls))
	}
	if calls[0].args[2] != "105" {
		t.Errorf("expected stored value 105, got %v", calls[0].args[2])
	}
}

func TestProcessChunkSingleLineChunks(t *testing.T) {
	// Same file, chunk size 1: the two publications land in separate
	// chunks, so dedup cannot see them together, but the upsert makes
	// the later revision's write overwrite the earlier one.
	db := &fakeDB{}
	svc := newChunkService(db, map[string]string{
		"d_load_fcst_archive.csv": "date,time,load_fcst,revision\n" +
			"2024-01-01,00:00,100,2024-01-01T00:00:00Z\n" +
			"2024-01-01,00:00,105,2024-01-02T00:00:00Z\n",
	})

	first, err := svc.ProcessChunk(context.Background(), "d_load_fcst_archive.csv", 1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.HasMore {
		t.Fatal("expected HasMore after the first chunk")
	}

	second, err := svc.ProcessChunk(context.Background(), "d_load_fcst_archive.csv", 2, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.HasMore {
		t.Error("expected HasMore to be false after the final chunk")
	}

	calls := db.upserts("load_fcst_d")
	if len(calls) != 2 {
		t.Fatalf("expected 2 upserts, got %d", len(calls))
	}
	if last := calls[len(calls)-1]; last.args[2] != "105" {
		t.Errorf("expected final write to carry 105, got %v", last.args[2])
	}
}

func TestProcessChunkCountsInvalidRows(t *testing.T) {
	db := &fakeDB{}
	svc := newChunkService(db, map[string]string{
		"load_act.csv": "date,time,load_act\n" +
			"2024-01-01,00:00,42\n" +
			",00:00,43\n" + // no date
			"2024-01-01,,44\n" + // no time
			"2024-01-01,02:00,\n", // no value
	})

	result, err := svc.ProcessChunk(context.Background(), "load_act.csv", 1, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ProcessedLines != 4 {
		t.Errorf("expected 4 processed lines, got %d", result.ProcessedLines)
	}
	if result.ValidRecords != 1 {
		t.Errorf("expected 1 valid record, got %d", result.ValidRecords)
	}
	if result.InvalidRecords != 3 {
		t.Errorf("expected 3 invalid records, got %d", result.InvalidRecords)
	}
	if result.InsertedCount != 1 {
		t.Errorf("expected 1 inserted, got %d", result.InsertedCount)
	}
}

func TestProcessChunkBoundaryExhaustiveness(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("date,time,load_act\n")
	for i := 0; i < 5; i++ {
		fmt.Fprintf(&sb, "2024-01-0%d,00:00,%d\n", i+1, i)
	}

	db := &fakeDB{}
	svc := newChunkService(db, map[string]string{"load_act.csv": sb.String()})

	const chunkSize = 2
	var totalValid int
	var calls int

	// Drive the cursor the way an external caller would.
	for startLine := 1; ; startLine += chunkSize {
		result, err := svc.ProcessChunk(context.Background(), "load_act.csv", startLine, chunkSize)
		if err != nil {
			t.Fatalf("chunk at line %d: %v", startLine, err)
		}

		totalValid += result.ValidRecords
		calls++

		if !result.HasMore {
			break
		}
	}

	if calls != 3 {
		t.Errorf("expected 3 chunk calls, got %d", calls)
	}
	if totalValid != 5 {
		t.Errorf("expected every data line processed exactly once, got %d", totalValid)
	}
	if got := len(db.upserts("load_act")); got != 5 {
		t.Errorf("expected 5 upserts, got %d", got)
	}
}

func TestProcessChunkHasMore(t *testing.T) {
	content := "date,time,load_act\n" +
		"2024-01-01,00:00,1\n" +
		"2024-01-02,00:00,2\n" +
		"2024-01-03,00:00,3\n"

	tests := []struct {
		name      string
		startLine int
		chunkSize int
		wantMore  bool
	}{
		{name: "first of two chunks", startLine: 1, chunkSize: 2, wantMore: true},
		{name: "final chunk", startLine: 3, chunkSize: 2, wantMore: false},
		{name: "single covering chunk", startLine: 1, chunkSize: 3, wantMore: false},
		{name: "oversized chunk", startLine: 1, chunkSize: 50, wantMore: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newChunkService(&fakeDB{}, map[string]string{"load_act.csv": content})

			result, err := svc.ProcessChunk(context.Background(), "load_act.csv", tt.startLine, tt.chunkSize)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.HasMore != tt.wantMore {
				t.Errorf("expected HasMore %v, got %v", tt.wantMore, result.HasMore)
			}
		})
	}
}

func TestProcessChunkIdempotentReRun(t *testing.T) {
	content := "date,time,load_fcst,revision\n" +
		"2024-01-01,00:00,100,r1\n" +
		"2024-01-01,01:00,110,r1\n"

	db := &fakeDB{}
	svc := newChunkService(db, map[string]string{"d_load_fcst.csv": content})

	first, err := svc.ProcessChunk(context.Background(), "d_load_fcst.csv", 1, 10)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := svc.ProcessChunk(context.Background(), "d_load_fcst.csv", 1, 10)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	// Upsert counting is unconditional, so both runs report the same
	// count, and the stored key set is unchanged.
	if first.InsertedCount != second.InsertedCount {
		t.Errorf("expected equal inserted counts, got %d and %d",
			first.InsertedCount, second.InsertedCount)
	}
	if got := len(db.upserts("load_fcst_d")); got != 4 {
		t.Errorf("expected 4 upserts across both runs, got %d", got)
	}
}

func TestProcessChunkFileNotFound(t *testing.T) {
	svc := newChunkService(&fakeDB{}, nil)

	_, err := svc.ProcessChunk(context.Background(), "d_load_fcst.csv", 1, 10)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestProcessChunkUnknownKind(t *testing.T) {
	svc := newChunkService(&fakeDB{}, nil)

	_, err := svc.ProcessChunk(context.Background(), "mystery_file.csv", 1, 10)
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}

func TestProcessChunkSchemaMismatch(t *testing.T) {
	svc := newChunkService(&fakeDB{}, map[string]string{
		"d_load_fcst.csv": "date,time,load_fcst\n2024-01-01,00:00,100\n",
	})

	_, err := svc.ProcessChunk(context.Background(), "d_load_fcst.csv", 1, 10)

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if len(schemaErr.Missing) != 1 || schemaErr.Missing[0] != "revision" {
		t.Errorf("expected missing [revision], got %v", schemaErr.Missing)
	}
}

func TestProcessChunkDefaults(t *testing.T) {
	content := "date,time,load_act\n2024-01-01,00:00,1\n"
	svc := newChunkService(&fakeDB{}, map[string]string{"load_act.csv": content})

	// Out-of-range cursor values fall back to sane defaults instead of failing.
	result, err := svc.ProcessChunk(context.Background(), "load_act.csv", -3, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.StartLine != 1 {
		t.Errorf("expected startLine 1, got %d", result.StartLine)
	}
	if result.ChunkSize != DefaultChunkSize {
		t.Errorf("expected default chunk size %d, got %d", DefaultChunkSize, result.ChunkSize)
	}
	if result.ValidRecords != 1 {
		t.Errorf("expected 1 valid record, got %d", result.ValidRecords)
	}
}

func TestProcessChunkShapeWarnings(t *testing.T) {
	svc := newChunkService(&fakeDB{}, map[string]string{
		"load_act.csv": "date,time,load_act\n" +
			"2024-01-01,00:00,1,extra\n" +
			"2024-01-02,00:00,2\n",
	})

	result, err := svc.ProcessChunk(context.Background(), "load_act.csv", 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ShapeWarnings != 1 {
		t.Errorf("expected 1 shape warning, got %d", result.ShapeWarnings)
	}
	// Ragged rows still parse best-effort.
	if result.ValidRecords != 2 {
		t.Errorf("expected 2 valid records, got %d", result.ValidRecords)
	}
}
