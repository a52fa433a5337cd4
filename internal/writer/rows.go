package writer

import (
	"time"

	"github.com/vvka-141/metdbload/internal/batch"
	"github.com/vvka-141/metdbload/internal/schema"
	"github.com/vvka-141/metdbload/pkg/metdbload"
)

func fileRow(f batch.FileRecord) []any {
	return []any{f.Key, f.LookupID, f.Filename, f.Path, timestamp(f.LoadDate), timestamp(f.ModDate)}
}

func headerRow(h batch.HeaderRecord) []any {
	return append([]any{h.ID}, h.Key.Values()...)
}

// lineRow projects a line onto the columns of its line type.
func lineRow(lt schema.LineType, l batch.LineRecord) []any {
	row := make([]any, 0, len(lt.Measures)+13)
	if lt.Variable {
		row = append(row, l.LineDataID)
	}
	row = append(row,
		l.HeaderID, l.FileID, l.LineNum,
		l.FcstLead, timestamp(l.FcstValidBeg), timestamp(l.FcstValidEnd), timestamp(l.FcstInitBeg),
		l.ObsLead, timestamp(l.ObsValidBeg), timestamp(l.ObsValidEnd),
		numeric(l.Alpha), l.CovThresh,
	)
	for _, m := range lt.Measures {
		row = append(row, numeric(l.Values[m]))
	}
	return row
}

func numeric(v *float64) float64 {
	if v == nil {
		return metdbload.NullSentinelValue
	}
	return *v
}

func timestamp(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
