package batch

import (
	"path"
	"time"

	"github.com/vvka-141/metdbload/pkg/metdbload"
)

// FileRecord is one input data file.
type FileRecord struct {
	FileRow  int
	LookupID int // data_file_lu_id, the file type
	Path     string
	Filename string
	LoadDate time.Time
	ModDate  time.Time

	// Key is the data_file_id, or metdbload.NoKey until assigned.
	Key int64
}

// FullPath joins the directory and filename.
func (f FileRecord) FullPath() string {
	return path.Join(f.Path, f.Filename)
}

// HeaderKey is the natural key of a stat header.
// It is comparable, so identical tuples collapse to one map entry.
type HeaderKey struct {
	Version    string
	Model      string
	Descr      string
	FcstVar    string
	FcstUnits  string
	FcstLev    string
	ObsVar     string
	ObsUnits   string
	ObsLev     string
	Obtype     string
	VxMask     string
	InterpMthd string
	InterpPnts int
	FcstThresh string
	ObsThresh  string
}

// Values returns the key in stat_header column order.
func (k HeaderKey) Values() []any {
	return []any{
		k.Version, k.Model, k.Descr,
		k.FcstVar, k.FcstUnits, k.FcstLev,
		k.ObsVar, k.ObsUnits, k.ObsLev,
		k.Obtype, k.VxMask, k.InterpMthd, k.InterpPnts,
		k.FcstThresh, k.ObsThresh,
	}
}

// HeaderRecord is a distinct stat header and its stat_header_id.
type HeaderRecord struct {
	Key HeaderKey
	ID  int64
}

// LineRecord is one statistic line.
type LineRecord struct {
	FileRow  int
	LineType string
	Header   HeaderKey

	LineNum      int
	FcstLead     int
	FcstValidBeg time.Time
	FcstValidEnd time.Time
	FcstInitBeg  time.Time
	ObsLead      int
	ObsValidBeg  time.Time
	ObsValidEnd  time.Time
	Alpha        *float64
	CovThresh    string

	// Values holds the measurement columns of the line type; nil means missing.
	Values map[string]*float64

	FileID     int64
	HeaderID   int64
	LineDataID int64
}

// Value returns a measurement and whether it is present.
func (l LineRecord) Value(column string) (float64, bool) {
	v, ok := l.Values[column]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// NewLine returns a LineRecord with all keys unassigned.
func NewLine(fileRow int, lineType string, header HeaderKey) LineRecord {
	return LineRecord{
		FileRow:    fileRow,
		LineType:   lineType,
		Header:     header,
		Values:     make(map[string]*float64),
		FileID:     metdbload.NoKey,
		HeaderID:   metdbload.NoKey,
		LineDataID: metdbload.NoKey,
	}
}

// Float returns a pointer to v, for filling Values and Alpha.
func Float(v float64) *float64 {
	return &v
}
