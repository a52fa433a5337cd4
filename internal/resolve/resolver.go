// Package resolve reconciles the files and stat headers of a batch with rows
// already stored in the database.
package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/metdbload/internal/batch"
	"github.com/vvka-141/metdbload/internal/schema"
	"github.com/vvka-141/metdbload/pkg/metdbload"
)

// Resolver probes the database for rows matching batch records by natural key.
type Resolver struct {
	schema *schema.Schema
	logger metdbload.Logger
}

// New creates a Resolver. Panics if any dependency is nil.
func New(s *schema.Schema, logger metdbload.Logger) *Resolver {
	if s == nil {
		panic("schema cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Resolver{schema: s, logger: logger}
}

// FilesResult is the batch after file reconciliation.
type FilesResult struct {
	Files []batch.FileRecord
	Lines []batch.LineRecord

	// Dropped lists the full paths of files skipped as duplicates.
	Dropped []string

	// Reused counts files that kept the key of an existing row.
	Reused int
}

// Files probes each file by (path, filename) in batch order.
//
// A file that is not stored keeps NoKey. A stored file takes the existing key
// when force is set; otherwise it is dropped together with all of its lines.
func (r *Resolver) Files(ctx context.Context, q metdbload.Querier, files []batch.FileRecord, lines []batch.LineRecord, force bool) (FilesResult, error) {
	res := FilesResult{Files: make([]batch.FileRecord, 0, len(files))}
	dropped := make(map[int]bool)

	for _, f := range files {
		var existing int64
		err := q.QueryRow(ctx, r.schema.QueryDataFile(), f.Path, f.Filename).Scan(&existing)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			f.Key = metdbload.NoKey
			res.Files = append(res.Files, f)
		case err != nil:
			return FilesResult{}, fmt.Errorf("failed to look up data file %s: %w", f.FullPath(), err)
		case force:
			r.logger.Verbose("Reusing data_file_id %d for %s", existing, f.FullPath())
			f.Key = existing
			res.Files = append(res.Files, f)
			res.Reused++
		default:
			r.logger.Warn("Duplicate file %s without force_dup_file", f.FullPath())
			dropped[f.FileRow] = true
			res.Dropped = append(res.Dropped, f.FullPath())
		}
	}

	res.Lines = make([]batch.LineRecord, 0, len(lines))
	for _, l := range batch.CloneLines(lines) {
		if !dropped[l.FileRow] {
			res.Lines = append(res.Lines, l)
		}
	}
	return res, nil
}

// DistinctHeaders returns the distinct header tuples of lines in first-seen order,
// each with ID NoKey.
func DistinctHeaders(lines []batch.LineRecord) []batch.HeaderRecord {
	seen := make(map[batch.HeaderKey]bool)
	var out []batch.HeaderRecord
	for _, l := range lines {
		if seen[l.Header] {
			continue
		}
		seen[l.Header] = true
		out = append(out, batch.HeaderRecord{Key: l.Header, ID: metdbload.NoKey})
	}
	return out
}

// Headers probes each header tuple when check is set and fills in the ids of
// stored rows. Without check every header stays new.
func (r *Resolver) Headers(ctx context.Context, q metdbload.Querier, headers []batch.HeaderRecord, check bool) ([]batch.HeaderRecord, error) {
	out := make([]batch.HeaderRecord, len(headers))
	copy(out, headers)
	if !check {
		return out, nil
	}

	sql := r.schema.QueryStatHeader()
	for i := range out {
		var existing int64
		err := q.QueryRow(ctx, sql, out[i].Key.Values()...).Scan(&existing)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			out[i].ID = metdbload.NoKey
		case err != nil:
			return nil, fmt.Errorf("failed to look up stat header %d: %w", i, err)
		default:
			out[i].ID = existing
		}
	}
	return out, nil
}
