package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/krogsys/loadfeed/internal/blob"
)

func newReaderService(files map[string]string) *Service {
	blobs := blob.NewMemoryStore(nil)
	for name, content := range files {
		blobs.Put(name, []byte(content))
	}
	return NewService(&fakeDB{}, blobs)
}

// ============================================================================
// QueryRange Tests
// ============================================================================

func TestQueryRangeFiltersAndSorts(t *testing.T) {
	svc := newReaderService(map[string]string{
		"load_act.csv": "date,time,load_act\n" +
			"2024-01-03,01:00,31\n" +
			"2024-01-01,00:00,10\n" +
			"2024-01-03,00:00,30\n" +
			"2024-01-02,00:00,20\n" +
			"2024-01-05,00:00,50\n",
	})

	rows, err := svc.QueryRange(context.Background(), mustKind(t, "load_act"), "2024-01-02", "2024-01-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	want := []struct{ date, tm string }{
		{"2024-01-02", "00:00"},
		{"2024-01-03", "00:00"},
		{"2024-01-03", "01:00"},
	}
	for i, w := range want {
		if rows[i].Date != w.date || rows[i].Time != w.tm {
			t.Errorf("row %d: expected (%s, %s), got (%s, %s)",
				i, w.date, w.tm, rows[i].Date, rows[i].Time)
		}
	}
}

func TestQueryRangeBoundsAreInclusive(t *testing.T) {
	svc := newReaderService(map[string]string{
		"load_act.csv": "date,time,load_act\n" +
			"2024-01-01,00:00,1\n" +
			"2024-01-02,00:00,2\n",
	})

	rows, err := svc.QueryRange(context.Background(), mustKind(t, "load_act"), "2024-01-01", "2024-01-02")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected both boundary rows, got %d", len(rows))
	}
}

func TestQueryRangeEmptyBoundsAreUnbounded(t *testing.T) {
	svc := newReaderService(map[string]string{
		"load_act.csv": "date,time,load_act\n" +
			"2024-01-01,00:00,1\n" +
			"2024-02-01,00:00,2\n",
	})

	rows, err := svc.QueryRange(context.Background(), mustKind(t, "load_act"), "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected all rows, got %d", len(rows))
	}
}

func TestQueryRangeDeduplicatesGlobally(t *testing.T) {
	svc := newReaderService(map[string]string{
		"d_load_fcst.csv": "date,time,load_fcst,revision\n" +
			"2024-01-01,00:00,100,2024-01-01T00:00:00Z\n" +
			"2024-01-01,00:00,105,2024-01-02T00:00:00Z\n",
	})

	rows, err := svc.QueryRange(context.Background(), mustKind(t, "load_fcst_d"), "2024-01-01", "2024-01-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("expected 1 row after dedup, got %d", len(rows))
	}
	if rows[0].LoadFcst != "105" {
		t.Errorf("expected the later revision's value 105, got %s", rows[0].LoadFcst)
	}
}

func TestQueryRangeFileNotFound(t *testing.T) {
	svc := newReaderService(nil)

	_, err := svc.QueryRange(context.Background(), mustKind(t, "load_act"), "2024-01-01", "2024-01-02")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestQueryRangeEmptyResultIsNotError(t *testing.T) {
	svc := newReaderService(map[string]string{
		"load_act.csv": "date,time,load_act\n2024-01-01,00:00,1\n",
	})

	rows, err := svc.QueryRange(context.Background(), mustKind(t, "load_act"), "2030-01-01", "2030-12-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}
