package statfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vvka-141/metdbload/internal/batch"
	"github.com/vvka-141/metdbload/pkg/metdbload"
)

const (
	// DataFilesName is the batch file with one row per source file.
	DataFilesName = "data_files.csv"
	// StatDataName is the batch file with one row per statistics line.
	StatDataName = "stat_data.csv"
)

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"20060102_150405",
	"2006-01-02",
}

var fileColumns = []string{"file_row", "data_file_lu_id", "path", "filename", "load_date", "mod_date"}

// fixedLineColumns are the stat_data columns that are not measurements.
var fixedLineColumns = []string{
	"file_row", "line_type", "line_num",
	"version", "model", "descr",
	"fcst_var", "fcst_units", "fcst_lev",
	"obs_var", "obs_units", "obs_lev",
	"obtype", "vx_mask", "interp_mthd", "interp_pnts",
	"fcst_thresh", "obs_thresh",
	"fcst_lead", "fcst_valid_beg", "fcst_valid_end", "fcst_init_beg",
	"obs_lead", "obs_valid_beg", "obs_valid_end",
	"alpha", "cov_thresh",
}

// ReadBatch reads data_files.csv and stat_data.csv from dir.
func ReadBatch(dir string) (batch.Batch, error) {
	files, err := readFile(filepath.Join(dir, DataFilesName), ReadFiles)
	if err != nil {
		return batch.Batch{}, err
	}
	lines, err := readFile(filepath.Join(dir, StatDataName), ReadLines)
	if err != nil {
		return batch.Batch{}, err
	}
	return batch.Batch{Files: files, Lines: lines}, nil
}

func readFile[T any](path string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return zero, fmt.Errorf("%s: %w", path, metdbload.ErrBatchNotFound)
		}
		return zero, err
	}
	defer f.Close()

	out, err := parse(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return out, nil
}

// table is a header-indexed CSV reader.
type table struct {
	r      *csv.Reader
	index  map[string]int
	header []string
	line   int
}

func newTable(r io.Reader, required []string) (*table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, malformed(1, "missing header row: %v", err)
	}
	t := &table{r: cr, index: make(map[string]int, len(header)), line: 1}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		t.header = append(t.header, name)
		t.index[name] = i
	}
	for _, col := range required {
		if _, ok := t.index[col]; !ok {
			return nil, malformed(1, "missing column %q", col)
		}
	}
	return t, nil
}

func (t *table) next() ([]string, error) {
	rec, err := t.r.Read()
	t.line++
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, malformed(t.line, "%v", err)
	}
	return rec, err
}

func (t *table) get(rec []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func (t *table) int(rec []string, col string) (int, error) {
	v := t.get(rec, col)
	if v == "" || strings.EqualFold(v, "NA") {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, malformed(t.line, "column %s: %q is not an integer", col, v)
	}
	return n, nil
}

// requiredInt is int for key columns, where a missing value is an error.
func (t *table) requiredInt(rec []string, col string) (int, error) {
	v := t.get(rec, col)
	if v == "" || strings.EqualFold(v, "NA") {
		return 0, malformed(t.line, "empty %s", col)
	}
	return t.int(rec, col)
}

func (t *table) time(rec []string, col string) (time.Time, error) {
	v := t.get(rec, col)
	if v == "" || strings.EqualFold(v, "NA") {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, malformed(t.line, "column %s: %q is not a timestamp", col, v)
}

func (t *table) float(rec []string, col string) (*float64, error) {
	v := t.get(rec, col)
	if v == "" || strings.EqualFold(v, "NA") {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, malformed(t.line, "column %s: %q is not a number", col, v)
	}
	return &f, nil
}

func malformed(line int, format string, args ...any) error {
	return fmt.Errorf("line %d: %s: %w", line, fmt.Sprintf(format, args...), metdbload.ErrMalformedBatch)
}

// ReadFiles parses data_files.csv.
func ReadFiles(r io.Reader) ([]batch.FileRecord, error) {
	t, err := newTable(r, fileColumns[:4])
	if err != nil {
		return nil, err
	}

	var files []batch.FileRecord
	seen := make(map[int]bool)
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			return files, nil
		}
		if err != nil {
			return nil, err
		}

		f := batch.FileRecord{
			Path:     t.get(rec, "path"),
			Filename: t.get(rec, "filename"),
			Key:      metdbload.NoKey,
		}
		if f.FileRow, err = t.requiredInt(rec, "file_row"); err != nil {
			return nil, err
		}
		if seen[f.FileRow] {
			return nil, malformed(t.line, "duplicate file_row %d", f.FileRow)
		}
		seen[f.FileRow] = true
		if f.LookupID, err = t.int(rec, "data_file_lu_id"); err != nil {
			return nil, err
		}
		if f.LoadDate, err = t.time(rec, "load_date"); err != nil {
			return nil, err
		}
		if f.ModDate, err = t.time(rec, "mod_date"); err != nil {
			return nil, err
		}
		if f.Filename == "" {
			return nil, malformed(t.line, "empty filename")
		}
		files = append(files, f)
	}
}

// ReadLines parses stat_data.csv.
func ReadLines(r io.Reader) ([]batch.LineRecord, error) {
	t, err := newTable(r, fixedLineColumns[:2])
	if err != nil {
		return nil, err
	}

	fixed := make(map[string]bool, len(fixedLineColumns))
	for _, c := range fixedLineColumns {
		fixed[c] = true
	}
	var measures []string
	for _, name := range t.header {
		if !fixed[name] && name != "" {
			measures = append(measures, name)
		}
	}

	var lines []batch.LineRecord
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
		l, err := t.lineRecord(rec, measures)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
}

func (t *table) lineRecord(rec []string, measures []string) (batch.LineRecord, error) {
	fileRow, err := t.requiredInt(rec, "file_row")
	if err != nil {
		return batch.LineRecord{}, err
	}
	lineType := strings.ToUpper(t.get(rec, "line_type"))
	if lineType == "" {
		return batch.LineRecord{}, malformed(t.line, "empty line_type")
	}

	header := batch.HeaderKey{
		Version:    t.get(rec, "version"),
		Model:      t.get(rec, "model"),
		Descr:      t.get(rec, "descr"),
		FcstVar:    t.get(rec, "fcst_var"),
		FcstUnits:  t.get(rec, "fcst_units"),
		FcstLev:    t.get(rec, "fcst_lev"),
		ObsVar:     t.get(rec, "obs_var"),
		ObsUnits:   t.get(rec, "obs_units"),
		ObsLev:     t.get(rec, "obs_lev"),
		Obtype:     t.get(rec, "obtype"),
		VxMask:     t.get(rec, "vx_mask"),
		InterpMthd: t.get(rec, "interp_mthd"),
		FcstThresh: t.get(rec, "fcst_thresh"),
		ObsThresh:  t.get(rec, "obs_thresh"),
	}
	if header.InterpPnts, err = t.int(rec, "interp_pnts"); err != nil {
		return batch.LineRecord{}, err
	}

	l := batch.NewLine(fileRow, lineType, header)
	l.CovThresh = t.get(rec, "cov_thresh")

	for _, f := range []struct {
		col string
		dst *int
	}{{"line_num", &l.LineNum}, {"fcst_lead", &l.FcstLead}, {"obs_lead", &l.ObsLead}} {
		if *f.dst, err = t.int(rec, f.col); err != nil {
			return batch.LineRecord{}, err
		}
	}
	for _, f := range []struct {
		col string
		dst *time.Time
	}{
		{"fcst_valid_beg", &l.FcstValidBeg}, {"fcst_valid_end", &l.FcstValidEnd}, {"fcst_init_beg", &l.FcstInitBeg},
		{"obs_valid_beg", &l.ObsValidBeg}, {"obs_valid_end", &l.ObsValidEnd},
	} {
		if *f.dst, err = t.time(rec, f.col); err != nil {
			return batch.LineRecord{}, err
		}
	}
	if l.Alpha, err = t.float(rec, "alpha"); err != nil {
		return batch.LineRecord{}, err
	}
	for _, m := range measures {
		v, err := t.float(rec, m)
		if err != nil {
			return batch.LineRecord{}, err
		}
		l.Values[m] = v
	}
	return l, nil
}
