package testing

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/metdbload/pkg/metdbload"
)

// FakeQuerier implements metdbload.Querier with overridable funcs and records
// every statement it receives. Unset funcs succeed with zero results.
type FakeQuerier struct {
	ExecFunc           func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRowFunc       func(ctx context.Context, sql string, args ...any) metdbload.Row
	CopyFromFunc       func(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
	CopyFromReaderFunc func(ctx context.Context, r io.Reader, copySQL string) (int64, error)

	mu    sync.Mutex
	calls []Call
}

// Call is one recorded statement.
type Call struct {
	Method string
	SQL    string
	Args   []any
	Rows   [][]any
	Body   string
}

func (f *FakeQuerier) record(c Call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

// Calls returns a copy of the recorded calls in order.
func (f *FakeQuerier) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo returns recorded calls of one method.
func (f *FakeQuerier) CallsTo(method string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (f *FakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.record(Call{Method: "Exec", SQL: sql, Args: args})
	if f.ExecFunc != nil {
		return f.ExecFunc(ctx, sql, args...)
	}
	return pgconn.NewCommandTag("OK"), nil
}

func (f *FakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) metdbload.Row {
	f.record(Call{Method: "QueryRow", SQL: sql, Args: args})
	if f.QueryRowFunc != nil {
		return f.QueryRowFunc(ctx, sql, args...)
	}
	return NoRow()
}

func (f *FakeQuerier) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	f.record(Call{Method: "CopyFrom", SQL: table, Args: stringsToAny(columns), Rows: rows})
	if f.CopyFromFunc != nil {
		return f.CopyFromFunc(ctx, table, columns, rows)
	}
	return int64(len(rows)), nil
}

func (f *FakeQuerier) CopyFromReader(ctx context.Context, r io.Reader, copySQL string) (int64, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	f.record(Call{Method: "CopyFromReader", SQL: copySQL, Body: string(body)})
	if f.CopyFromReaderFunc != nil {
		return f.CopyFromReaderFunc(ctx, strings.NewReader(string(body)), copySQL)
	}
	return int64(strings.Count(string(body), "\n")), nil
}

func stringsToAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

// FakeRow implements metdbload.Row.
type FakeRow struct {
	ScanFunc func(dest ...any) error
}

func (r FakeRow) Scan(dest ...any) error {
	return r.ScanFunc(dest...)
}

// NoRow returns a row that reports pgx.ErrNoRows.
func NoRow() metdbload.Row {
	return FakeRow{ScanFunc: func(...any) error { return pgx.ErrNoRows }}
}

// ErrRow returns a row whose Scan fails with err.
func ErrRow(err error) metdbload.Row {
	return FakeRow{ScanFunc: func(...any) error { return err }}
}

// RowOf returns a row that scans values into *int64, **int64, *string and *any destinations.
// A nil value scanned into **int64 leaves it nil, as a SQL NULL would.
func RowOf(values ...any) metdbload.Row {
	return FakeRow{ScanFunc: func(dest ...any) error {
		for i := range dest {
			if i >= len(values) {
				break
			}
			switch d := dest[i].(type) {
			case *int64:
				*d = values[i].(int64)
			case **int64:
				if values[i] == nil {
					*d = nil
				} else {
					v := values[i].(int64)
					*d = &v
				}
			case *string:
				*d = values[i].(string)
			case **string:
				if values[i] == nil {
					*d = nil
				} else {
					v := values[i].(string)
					*d = &v
				}
			case *any:
				*d = values[i]
			}
		}
		return nil
	}}
}
