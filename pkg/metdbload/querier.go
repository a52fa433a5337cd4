package metdbload

import (
	"context"
	"io"

	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the statement surface a load job runs against.
// All calls of one job share a single transaction.
type Querier interface {
	// Exec executes a statement without returning any rows.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)

	// QueryRow executes a query that is expected to return at most one row.
	// Errors, including no rows, are deferred until Row's Scan method is called.
	QueryRow(ctx context.Context, sql string, args ...any) Row

	// CopyFrom bulk loads typed rows into table using the binary COPY protocol.
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	// CopyFromReader streams a staged delimited file through a COPY ... FROM STDIN statement.
	CopyFromReader(ctx context.Context, r io.Reader, copySQL string) (int64, error)
}

// Row represents a single row returned by QueryRow.
type Row interface {
	// Scan reads the values from the row into dest values.
	// Returns pgx.ErrNoRows if no row was found.
	Scan(dest ...any) error
}
