package ingest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeDB records executed statements and can inject per-record failures.
type fakeDB struct {
	mu    sync.Mutex
	execs []execCall

	// failOn, when set, is consulted before each Exec; a non-nil return
	// is surfaced as the statement's error.
	failOn func(sql string, args []interface{}) error
}

type execCall struct {
	sql  string
	args []interface{}
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	if f.failOn != nil {
		if err := f.failOn(sql, args); err != nil {
			return pgconn.CommandTag{}, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakeDB) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, errors.New("fakeDB: Query not supported")
}

func (f *fakeDB) QueryRow(context.Context, string, ...interface{}) pgx.Row {
	panic("fakeDB: QueryRow not supported")
}

// upserts returns the recorded statements targeting the given table.
func (f *fakeDB) upserts(table string) []execCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []execCall
	for _, call := range f.execs {
		if strings.HasPrefix(call.sql, "INSERT INTO "+table+" ") {
			out = append(out, call)
		}
	}
	return out
}

// deletes returns the recorded DELETE statements.
func (f *fakeDB) deletes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []string
	for _, call := range f.execs {
		if strings.HasPrefix(call.sql, "DELETE FROM ") {
			out = append(out, call.sql)
		}
	}
	return out
}
