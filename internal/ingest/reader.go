package ingest

import (
	"context"
	"sort"
)

// QueryRange loads the kind's canonical file, deduplicates it globally
// and returns the rows whose date falls within [startDate, endDate],
// sorted ascending by (date, time).
//
// Dates are compared lexically, so callers must supply zero-padded ISO
// dates for correct ordering. An empty bound is treated as unbounded on
// that side.
func (s *Service) QueryRange(ctx context.Context, kind Kind, startDate, endDate string) ([]Row, error) {
	data, err := s.fetch(ctx, kind.FileKey)
	if err != nil {
		return nil, err
	}

	parsed, err := Parse(data, kind, Window{})
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0)
	for _, row := range Deduplicate(kind, parsed.Rows) {
		if startDate != "" && row.Date < startDate {
			continue
		}
		if endDate != "" && row.Date > endDate {
			continue
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		return rows[i].Time < rows[j].Time
	})

	return rows, nil
}
