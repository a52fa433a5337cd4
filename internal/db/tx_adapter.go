package db

import (
	"context"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/metdbload/pkg/metdbload"
)

// TxAdapter adapts pgx.Tx to metdbload.Querier so every statement of a load
// job runs in the same transaction.
type TxAdapter struct {
	tx pgx.Tx
}

// NewTxAdapter wraps tx.
func NewTxAdapter(tx pgx.Tx) *TxAdapter {
	if tx == nil {
		panic("tx cannot be nil")
	}
	return &TxAdapter{tx: tx}
}

// Exec runs sql inside the transaction.
func (a *TxAdapter) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return a.tx.Exec(ctx, sql, args...)
}

// QueryRow runs sql inside the transaction and returns at most one row.
func (a *TxAdapter) QueryRow(ctx context.Context, sql string, args ...any) metdbload.Row {
	return a.tx.QueryRow(ctx, sql, args...)
}

// CopyFrom sends rows with the binary COPY protocol.
func (a *TxAdapter) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	return a.tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
}

// CopyFromReader streams r through copySQL on the transaction's connection.
func (a *TxAdapter) CopyFromReader(ctx context.Context, r io.Reader, copySQL string) (int64, error) {
	tag, err := a.tx.Conn().PgConn().CopyFrom(ctx, r, copySQL)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
