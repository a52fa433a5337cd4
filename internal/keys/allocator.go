package keys

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/metdbload/pkg/metdbload"
)

// NextID returns the first free key of table.column: MAX+1, or floor when the
// table is empty. The result is never below floor.
func NextID(ctx context.Context, q metdbload.Querier, table, column string, floor int64) (int64, error) {
	sql := fmt.Sprintf("SELECT MAX(%s) FROM %s",
		pgx.Identifier{column}.Sanitize(), pgx.Identifier{table}.Sanitize())

	var max *int64
	if err := q.QueryRow(ctx, sql).Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to read max %s.%s: %w", table, column, err)
	}
	if max == nil {
		return floor, nil
	}
	if next := *max + 1; next > floor {
		return next, nil
	}
	return floor, nil
}

// IsNew reports whether key was handed out from start in this job.
func IsNew(key, start int64) bool {
	return key != metdbload.NoKey && key >= start
}
