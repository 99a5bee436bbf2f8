package ingest

import (
	"strings"
	"time"
)

// revisionLayouts are tried in order when comparing revisions as
// timestamps. Revisions are nominally publication timestamps but the
// format is not enforced at the source.
var revisionLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04",
	"2006-01-02",
	"20060102150405",
}

// Deduplicate folds rows sharing a (date, time) key into one row each,
// in a single pass, preserving the input order of first appearance.
//
// For revisioned kinds the row with the highest revision wins; an
// incoming row without a revision never displaces one that has one, and
// ties keep the earlier row. For revision-less kinds the last-seen row
// wins. The same rule applies on every path that deduplicates, so the
// chunk write path and the range read path cannot diverge.
func Deduplicate(kind Kind, rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	index := make(map[RecordKey]int, len(rows))

	for _, row := range rows {
		key := row.Key()
		at, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, row)
			continue
		}
		if supersedes(kind, row, out[at]) {
			out[at] = row
		}
	}

	return out
}

// supersedes reports whether the incoming row should replace the
// existing row for the same key. This is the single comparator shared
// by deduplication everywhere.
func supersedes(kind Kind, incoming, existing Row) bool {
	if !kind.HasRevision {
		return true // last-seen wins when no revision orders the rows
	}
	if incoming.Revision == "" {
		return false
	}
	if existing.Revision == "" {
		return true
	}
	return CompareRevisions(incoming.Revision, existing.Revision) > 0
}

// CompareRevisions orders two revision tokens, returning -1, 0 or 1.
// Both are parsed as timestamps when possible; if either fails to
// parse, the comparison falls back to lexical order.
func CompareRevisions(a, b string) int {
	ta, okA := parseRevision(a)
	tb, okB := parseRevision(b)
	if okA && okB {
		return ta.Compare(tb)
	}
	return strings.Compare(a, b)
}

func parseRevision(s string) (time.Time, bool) {
	for _, layout := range revisionLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
