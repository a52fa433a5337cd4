// Package fixtures builds load batches for tests, both in memory and as the
// data_files.csv / stat_data.csv hand-off a batch directory holds.
package fixtures

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/vvka-141/metdbload/internal/batch"
	"github.com/vvka-141/metdbload/internal/statfile"
	"github.com/vvka-141/metdbload/pkg/metdbload"
)

// LoadDate is the load_date every fixture file carries.
var LoadDate = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

// BatchBuilder provides a fluent API for building batches.
//
//	b := fixtures.NewBatchBuilder().
//	    AddFile("/data/gfs", "grid_stat_120000L.stat", func(f *fixtures.FileBuilder) {
//	        f.AddLine("CNT", fixtures.Header("GFS"), map[string]float64{"total": 100})
//	    }).
//	    Build()
type BatchBuilder struct {
	files []batch.FileRecord
	lines []batch.LineRecord
}

// FileBuilder adds lines to one file.
type FileBuilder struct {
	parent  *BatchBuilder
	fileRow int
	nextNum int
}

// NewBatchBuilder creates an empty builder.
func NewBatchBuilder() *BatchBuilder {
	return &BatchBuilder{}
}

// Header returns a stat header that differs from others only by model.
func Header(model string) batch.HeaderKey {
	return batch.HeaderKey{
		Version:    "V11.0",
		Model:      model,
		Descr:      "NA",
		FcstVar:    "TMP",
		FcstUnits:  "K",
		FcstLev:    "Z2",
		ObsVar:     "TMP",
		ObsUnits:   "K",
		ObsLev:     "Z2",
		Obtype:     "ADPSFC",
		VxMask:     "FULL",
		InterpMthd: "NEAREST",
		InterpPnts: 1,
		FcstThresh: "NA",
		ObsThresh:  "NA",
	}
}

// AddFile appends a file and lets build add its lines.
func (b *BatchBuilder) AddFile(path, filename string, build func(f *FileBuilder)) *BatchBuilder {
	row := len(b.files) + 1
	b.files = append(b.files, batch.FileRecord{
		FileRow:  row,
		LookupID: 5,
		Path:     path,
		Filename: filename,
		LoadDate: LoadDate,
		ModDate:  LoadDate.Add(-time.Hour),
		Key:      metdbload.NoKey,
	})
	if build != nil {
		build(&FileBuilder{parent: b, fileRow: row, nextNum: 1})
	}
	return b
}

// AddOrphanLine appends a line whose file_row has no file.
func (b *BatchBuilder) AddOrphanLine(fileRow int, lineType string) *BatchBuilder {
	b.lines = append(b.lines, batch.NewLine(fileRow, lineType, Header("ORPHAN")))
	return b
}

// AddLine appends a line of lineType with the given measurements.
func (f *FileBuilder) AddLine(lineType string, header batch.HeaderKey, values map[string]float64) *FileBuilder {
	l := batch.NewLine(f.fileRow, lineType, header)
	l.LineNum = f.nextNum
	l.FcstLead = 120000
	l.FcstValidBeg = LoadDate.Add(2 * time.Hour)
	l.FcstValidEnd = l.FcstValidBeg
	l.FcstInitBeg = l.FcstValidBeg.Add(-12 * time.Hour)
	l.ObsValidBeg = l.FcstValidBeg
	l.ObsValidEnd = l.FcstValidBeg
	l.Alpha = batch.Float(0.05)
	l.CovThresh = "NA"
	for k, v := range values {
		l.Values[k] = batch.Float(v)
	}
	f.nextNum++
	f.parent.lines = append(f.parent.lines, l)
	return f
}

// Build returns the batch. The builder can keep being used.
func (b *BatchBuilder) Build() batch.Batch {
	return batch.Batch{Files: batch.CloneFiles(b.files), Lines: batch.CloneLines(b.lines)}
}

// WriteDir writes the batch as a hand-off directory under dir.
func (b *BatchBuilder) WriteDir(dir string) error {
	if err := writeCSV(filepath.Join(dir, statfile.DataFilesName), b.fileRecords()); err != nil {
		return err
	}
	return writeCSV(filepath.Join(dir, statfile.StatDataName), b.lineRecords())
}

func (b *BatchBuilder) fileRecords() [][]string {
	out := [][]string{{"file_row", "data_file_lu_id", "path", "filename", "load_date", "mod_date"}}
	for _, f := range b.files {
		out = append(out, []string{
			strconv.Itoa(f.FileRow), strconv.Itoa(f.LookupID), f.Path, f.Filename,
			formatTime(f.LoadDate), formatTime(f.ModDate),
		})
	}
	return out
}

func (b *BatchBuilder) lineRecords() [][]string {
	measureSet := make(map[string]bool)
	for _, l := range b.lines {
		for k := range l.Values {
			measureSet[k] = true
		}
	}
	measures := make([]string, 0, len(measureSet))
	for k := range measureSet {
		measures = append(measures, k)
	}
	sort.Strings(measures)

	header := []string{
		"file_row", "line_type", "line_num",
		"version", "model", "descr", "fcst_var", "fcst_units", "fcst_lev",
		"obs_var", "obs_units", "obs_lev", "obtype", "vx_mask", "interp_mthd", "interp_pnts",
		"fcst_thresh", "obs_thresh",
		"fcst_lead", "fcst_valid_beg", "fcst_valid_end", "fcst_init_beg",
		"obs_lead", "obs_valid_beg", "obs_valid_end", "alpha", "cov_thresh",
	}
	out := [][]string{append(header, measures...)}

	for _, l := range b.lines {
		h := l.Header
		rec := []string{
			strconv.Itoa(l.FileRow), l.LineType, strconv.Itoa(l.LineNum),
			h.Version, h.Model, h.Descr, h.FcstVar, h.FcstUnits, h.FcstLev,
			h.ObsVar, h.ObsUnits, h.ObsLev, h.Obtype, h.VxMask, h.InterpMthd, strconv.Itoa(h.InterpPnts),
			h.FcstThresh, h.ObsThresh,
			strconv.Itoa(l.FcstLead), formatTime(l.FcstValidBeg), formatTime(l.FcstValidEnd), formatTime(l.FcstInitBeg),
			strconv.Itoa(l.ObsLead), formatTime(l.ObsValidBeg), formatTime(l.ObsValidEnd),
			formatFloat(l.Alpha), l.CovThresh,
		}
		for _, m := range measures {
			rec = append(rec, formatFloat(l.Values[m]))
		}
		out = append(out, rec)
	}
	return out
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return err
	}
	return f.Close()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatFloat(v *float64) string {
	if v == nil {
		return "NA"
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
