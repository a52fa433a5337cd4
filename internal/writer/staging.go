package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vvka-141/metdbload/pkg/metdbload"
)

const timestampLayout = "2006-01-02 15:04:05"

// nullField is the COPY NULL marker of staging files.
const nullField = `\N`

// Staging is the per-job directory holding staging files.
type Staging struct {
	dir string
}

// NewStaging creates base/metdbload-<jobID>. An empty base means os.TempDir().
func NewStaging(base, jobID string) (*Staging, error) {
	if base == "" {
		base = os.TempDir()
	}
	dir := filepath.Join(base, metdbload.AppName+"-"+jobID)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	return &Staging{dir: dir}, nil
}

// Dir returns the staging directory path.
func (s *Staging) Dir() string { return s.dir }

// Path returns the staging file path of table.
func (s *Staging) Path(table string) string {
	return filepath.Join(s.dir, table+".csv")
}

// Remove deletes the staging directory and everything in it.
func (s *Staging) Remove() error {
	return os.RemoveAll(s.dir)
}

// Encode writes rows as '$' delimited CSV without a header row.
func Encode(w io.Writer, rows [][]any) error {
	cw := csv.NewWriter(w)
	cw.Comma = metdbload.StagingSeparator

	record := make([]string, 0, 32)
	for _, row := range rows {
		record = record[:0]
		for _, v := range row {
			record = append(record, formatField(v))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatField(v any) string {
	switch x := v.(type) {
	case nil:
		return nullField
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		if x == metdbload.NullSentinelValue {
			return metdbload.NullSentinel
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case time.Time:
		return x.Format(timestampLayout)
	default:
		return fmt.Sprint(x)
	}
}
