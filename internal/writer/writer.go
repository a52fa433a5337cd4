package writer

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/vvka-141/metdbload/internal/batch"
	"github.com/vvka-141/metdbload/internal/keys"
	"github.com/vvka-141/metdbload/internal/schema"
	"github.com/vvka-141/metdbload/pkg/metdbload"
)

// Writer loads row groups through a Querier.
type Writer struct {
	schema  *schema.Schema
	logger  metdbload.Logger
	staging *Staging
}

// New creates a Writer. With a non-nil staging, rows go through staging files
// and COPY FROM STDIN; otherwise through binary COPY. Panics on nil schema or logger.
func New(s *schema.Schema, logger metdbload.Logger, staging *Staging) *Writer {
	if s == nil {
		panic("schema cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Writer{schema: s, logger: logger, staging: staging}
}

// WriteFiles inserts the files whose key was allocated from start.
func (w *Writer) WriteFiles(ctx context.Context, q metdbload.Querier, files []batch.FileRecord, start int64) (int, error) {
	var rows [][]any
	for _, f := range files {
		if keys.IsNew(f.Key, start) {
			rows = append(rows, fileRow(f))
		}
	}
	return w.write(ctx, q, schema.DataFileTable, w.schema.DataFileColumns(), rows)
}

// WriteHeaders inserts the headers whose id was allocated from start.
func (w *Writer) WriteHeaders(ctx context.Context, q metdbload.Querier, headers []batch.HeaderRecord, start int64) (int, error) {
	var rows [][]any
	for _, h := range headers {
		if keys.IsNew(h.ID, start) {
			rows = append(rows, headerRow(h))
		}
	}
	return w.write(ctx, q, schema.StatHeaderTable, w.schema.StatHeaderColumns(), rows)
}

// GroupLines splits lines by line type. An unknown line type is a data contract error.
func (w *Writer) GroupLines(lines []batch.LineRecord) (map[string][]batch.LineRecord, error) {
	groups := make(map[string][]batch.LineRecord)
	for _, l := range lines {
		lt, ok := w.schema.LineType(l.LineType)
		if !ok {
			return nil, &metdbload.DataContractError{
				FileRow: l.FileRow,
				Reason:  fmt.Sprintf("unknown line type %q", l.LineType),
			}
		}
		groups[lt.Name] = append(groups[lt.Name], l)
	}
	return groups, nil
}

// WriteLines loads every line into the fact table of its line type, one group
// per type in name order. Returns the row count per line type.
func (w *Writer) WriteLines(ctx context.Context, q metdbload.Querier, lines []batch.LineRecord) (map[string]int, error) {
	groups, err := w.GroupLines(lines)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	written := make(map[string]int, len(names))
	for _, name := range names {
		lt, _ := w.schema.LineType(name)
		rows := make([][]any, 0, len(groups[name]))
		for _, l := range groups[name] {
			if lt.Variable && l.LineDataID == metdbload.NoKey {
				return written, &metdbload.DataContractError{FileRow: l.FileRow, Reason: name + " line has no line_data_id"}
			}
			rows = append(rows, lineRow(lt, l))
		}
		n, err := w.write(ctx, q, lt.Table, lt.Columns(), rows)
		if err != nil {
			return written, err
		}
		written[name] = n
	}
	return written, nil
}

func (w *Writer) write(ctx context.Context, q metdbload.Querier, table string, columns []string, rows [][]any) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	started := time.Now()

	var (
		n   int64
		err error
	)
	if w.staging != nil {
		n, err = w.copyStaged(ctx, q, table, columns, rows)
	} else {
		n, err = q.CopyFrom(ctx, table, columns, rows)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load %d rows into %s: %w", len(rows), table, err)
	}

	w.logger.Verbose("Loaded %d rows into %s in %v", n, table, time.Since(started).Round(time.Millisecond))
	return int(n), nil
}

func (w *Writer) copyStaged(ctx context.Context, q metdbload.Querier, table string, columns []string, rows [][]any) (int64, error) {
	path := w.staging.Path(table)
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create staging file: %w", err)
	}
	defer f.Close()

	if err := Encode(f, rows); err != nil {
		return 0, fmt.Errorf("failed to write staging file %s: %w", path, err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		return 0, err
	}

	return q.CopyFromReader(ctx, f, w.schema.CopyStatement(table, columns, metdbload.StagingSeparator))
}
