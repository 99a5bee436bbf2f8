package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"
)

// HeaderIndex maps column names (lowercase) to their position in a CSV row.
type HeaderIndex map[string]int

// Window selects a 1-based range of data lines to parse. The zero Window
// selects every data line.
type Window struct {
	Start int // First data line, 1-based. Line 0 is the header.
	Count int
}

// All reports whether the window selects the whole file.
func (w Window) All() bool {
	return w.Start == 0 && w.Count == 0
}

// ParseResult holds the rows parsed from one file (or one window of it).
type ParseResult struct {
	Rows []Row // One per selected data line, input order preserved.

	// ShapeWarnings counts lines whose field count differed from the
	// header. Those rows are still parsed by best-effort positional
	// assignment; the count is reported, never propagated as an error.
	ShapeWarnings int

	// TotalLines is the line count of the whole file, header included,
	// regardless of the window. Drives chunk cursor advancement.
	TotalLines int
}

// Parse turns raw CSV text into typed rows for the given kind.
//
// Line 0 must be a header carrying all of the kind's required columns;
// extra columns are ignored. Structural problems (missing columns, no
// data rows) fail the whole parse. Per-line problems never do: a line
// with the wrong field count is parsed positionally and counted in
// ShapeWarnings, and a schema column with no corresponding value
// becomes an empty field on the Row.
//
// Parse is pure: no I/O, no hidden state.
func Parse(data []byte, kind Kind, win Window) (ParseResult, error) {
	records, err := readAll(sanitizeUTF8(data))
	if err != nil {
		return ParseResult{}, fmt.Errorf("reading csv: %w", err)
	}

	if len(records) < 2 {
		return ParseResult{}, ErrEmptyInput
	}

	header := MakeHeaderIndex(records[0])
	if missing := missingColumns(header, kind.RequiredColumns()); len(missing) > 0 {
		return ParseResult{}, &SchemaError{Kind: kind.Key, Missing: missing}
	}

	result := ParseResult{TotalLines: len(records)}

	lines := records[1:]
	if !win.All() {
		lines = sliceWindow(lines, win)
	}

	headerLen := len(records[0])
	for _, line := range lines {
		if len(line) != headerLen {
			result.ShapeWarnings++
		}
		result.Rows = append(result.Rows, buildRow(line, header))
	}

	return result, nil
}

// readAll parses the raw bytes with a tolerant reader: ragged rows are
// allowed (field counts are checked against the header instead) and
// lazy quotes accommodate hand-edited files.
func readAll(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

// sliceWindow clamps a 1-based window onto the data lines.
func sliceWindow(lines [][]string, win Window) [][]string {
	start := win.Start - 1
	if start < 0 {
		start = 0
	}
	if start >= len(lines) {
		return nil
	}
	end := start + win.Count
	if end > len(lines) {
		end = len(lines)
	}
	return lines[start:end]
}

// buildRow assigns fields positionally against the header. Columns not
// in the schema are ignored; schema columns past the end of a short
// line stay empty.
func buildRow(line []string, header HeaderIndex) Row {
	return Row{
		Date:     cellAt(line, header, "date"),
		Time:     cellAt(line, header, "time"),
		LoadFcst: cellAt(line, header, "load_fcst"),
		LoadAct:  cellAt(line, header, "load_act"),
		Revision: cellAt(line, header, "revision"),
	}
}

func cellAt(line []string, header HeaderIndex, col string) string {
	pos, ok := header[col]
	if !ok || pos >= len(line) {
		return ""
	}
	return CleanCell(line[pos])
}

// MakeHeaderIndex creates a HeaderIndex from a CSV header row.
// Call once per file, then reuse for all rows.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		idx[strings.ToLower(CleanCell(h))] = i
	}
	return idx
}

func missingColumns(header HeaderIndex, required []string) []string {
	var missing []string
	for _, col := range required {
		if _, ok := header[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// CleanCell normalizes a raw CSV cell: trims whitespace, strips a UTF-8
// BOM, and unwraps the ="..." formula prefix Excel adds on export.
func CleanCell(s string) string {
	s = strings.TrimPrefix(s, "\uFEFF")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}
	return s
}

// sanitizeUTF8 replaces invalid byte sequences with the replacement
// character so downstream string handling stays well-defined.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
