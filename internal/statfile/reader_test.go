package statfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/metdbload/pkg/metdbload"
)

const filesCSV = `file_row,data_file_lu_id,path,filename,load_date,mod_date
1,5,/data/grid_stat,grid_stat_120000L.stat,2024-05-01 10:00:00,2024-04-30 23:15:00
2,5,/data/grid_stat,grid_stat_240000L.stat,,
`

const linesCSV = `file_row,line_type,line_num,version,model,descr,fcst_var,fcst_units,fcst_lev,obs_var,obs_units,obs_lev,obtype,vx_mask,interp_mthd,interp_pnts,fcst_thresh,obs_thresh,fcst_lead,fcst_valid_beg,fcst_valid_end,fcst_init_beg,obs_lead,obs_valid_beg,obs_valid_end,alpha,cov_thresh,total,fbar,obar
1,cnt,1,V11.0,GFS,NA,TMP,K,Z2,TMP,K,Z2,ADPSFC,FULL,NEAREST,1,NA,NA,120000,2024-05-01 12:00:00,2024-05-01 12:00:00,2024-04-30 00:00:00,0,2024-05-01 12:00:00,2024-05-01 12:00:00,0.05,NA,100,285.5,NA
2,SL1L2,2,V11.0,GFS,NA,TMP,K,Z2,TMP,K,Z2,ADPSFC,FULL,NEAREST,1,NA,NA,240000,2024-05-02T12:00:00Z,,,0,,,NA,NA,50,,281
`

func TestReadFiles(t *testing.T) {
	files, err := ReadFiles(strings.NewReader(filesCSV))
	require.NoError(t, err)
	require.Len(t, files, 2)

	f := files[0]
	assert.Equal(t, 1, f.FileRow)
	assert.Equal(t, 5, f.LookupID)
	assert.Equal(t, "/data/grid_stat/grid_stat_120000L.stat", f.FullPath())
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), f.LoadDate)
	assert.Equal(t, metdbload.NoKey, f.Key)

	assert.True(t, files[1].LoadDate.IsZero())
	assert.True(t, files[1].ModDate.IsZero())
}

func TestReadFiles_ColumnOrderDoesNotMatter(t *testing.T) {
	in := "filename,path,file_row,data_file_lu_id\na.stat,/x,7,1\n"
	files, err := ReadFiles(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, 7, files[0].FileRow)
	assert.Equal(t, "/x/a.stat", files[0].FullPath())
}

func TestReadFiles_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"empty input", "", "missing header row"},
		{"missing column", "file_row,path,filename\n1,/x,a\n", `missing column "data_file_lu_id"`},
		{"bad file_row", "file_row,data_file_lu_id,path,filename\none,1,/x,a\n", "line 2"},
		{"duplicate file_row", "file_row,data_file_lu_id,path,filename\n1,1,/x,a\n1,1,/x,b\n", "duplicate file_row 1"},
		{"blank file_row", "file_row,data_file_lu_id,path,filename\n,1,/x,a\n", "line 2: empty file_row"},
		{"NA file_row", "file_row,data_file_lu_id,path,filename\nNA,1,/x,a\n", "line 2: empty file_row"},
		{"empty filename", "file_row,data_file_lu_id,path,filename\n1,1,/x,\n", "empty filename"},
		{"bad date", "file_row,data_file_lu_id,path,filename,load_date\n1,1,/x,a,yesterday\n", "not a timestamp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFiles(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, metdbload.ErrMalformedBatch)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestReadLines(t *testing.T) {
	lines, err := ReadLines(strings.NewReader(linesCSV))
	require.NoError(t, err)
	require.Len(t, lines, 2)

	l := lines[0]
	assert.Equal(t, "CNT", l.LineType, "line type is upper-cased")
	assert.Equal(t, 1, l.FileRow)
	assert.Equal(t, 120000, l.FcstLead)
	assert.Equal(t, "GFS", l.Header.Model)
	assert.Equal(t, 1, l.Header.InterpPnts)
	assert.Equal(t, "NA", l.Header.Descr, "header text is kept verbatim")
	require.NotNil(t, l.Alpha)
	assert.InDelta(t, 0.05, *l.Alpha, 1e-9)

	total, ok := l.Value("total")
	assert.True(t, ok)
	assert.Equal(t, 100.0, total)
	_, ok = l.Value("obar")
	assert.False(t, ok, "NA is missing")
	assert.Contains(t, l.Values, "obar")

	assert.Equal(t, metdbload.NoKey, l.FileID)
	assert.Equal(t, metdbload.NoKey, l.HeaderID)
	assert.Equal(t, metdbload.NoKey, l.LineDataID)

	second := lines[1]
	assert.Nil(t, second.Alpha)
	assert.Equal(t, time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC), second.FcstValidBeg.UTC())
	assert.True(t, second.FcstInitBeg.IsZero())
	_, ok = second.Value("fbar")
	assert.False(t, ok, "empty cell is missing")
}

func TestReadLines_Malformed(t *testing.T) {
	header := "file_row,line_type,total\n"
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"missing line_type column", "file_row,total\n1,2\n", `missing column "line_type"`},
		{"empty line type", header + "1,,2\n", "empty line_type"},
		{"bad measurement", header + "1,CNT,abc\n", `column total: "abc" is not a number`},
		{"ragged row", header + "1,CNT\n", "line 2"},
		{"blank file_row", header + ",CNT,5\n", "line 2: empty file_row"},
		{"NA file_row", header + "1,CNT,5\nNA,CNT,6\n", "line 3: empty file_row"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadLines(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, metdbload.ErrMalformedBatch)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestReadBatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DataFilesName), []byte(filesCSV), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, StatDataName), []byte(linesCSV), 0o600))

	b, err := ReadBatch(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, b.FileCount())
	assert.Equal(t, 2, b.LineCount())
}

func TestReadBatch_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadBatch(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, metdbload.ErrBatchNotFound)

	require.NoError(t, os.WriteFile(filepath.Join(dir, DataFilesName), []byte(filesCSV), 0o600))
	_, err = ReadBatch(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, metdbload.ErrBatchNotFound)
	assert.Contains(t, err.Error(), StatDataName)
}

func TestReadBatch_MalformedNamesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DataFilesName), []byte("file_row\n"), 0o600))
	_, err := ReadBatch(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, metdbload.ErrMalformedBatch)
	assert.Contains(t, err.Error(), DataFilesName)
}
