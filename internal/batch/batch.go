package batch

import "github.com/vvka-141/metdbload/pkg/metdbload"

// Batch is the parsed input of one load job.
type Batch struct {
	Files []FileRecord
	Lines []LineRecord
}

// FileCount returns the number of data files.
func (b Batch) FileCount() int { return len(b.Files) }

// LineCount returns the number of line records.
func (b Batch) LineCount() int { return len(b.Lines) }

// Empty reports whether there is nothing to load.
func (b Batch) Empty() bool { return len(b.Files) == 0 }

// Clone returns a deep copy whose slices can be changed freely.
func (b Batch) Clone() Batch {
	return Batch{Files: CloneFiles(b.Files), Lines: CloneLines(b.Lines)}
}

// CloneFiles copies a file slice.
func CloneFiles(files []FileRecord) []FileRecord {
	if files == nil {
		return nil
	}
	out := make([]FileRecord, len(files))
	copy(out, files)
	return out
}

// CloneLines copies a line slice including each Values map.
func CloneLines(lines []LineRecord) []LineRecord {
	if lines == nil {
		return nil
	}
	out := make([]LineRecord, len(lines))
	for i, l := range lines {
		out[i] = l
		if l.Values != nil {
			values := make(map[string]*float64, len(l.Values))
			for k, v := range l.Values {
				values[k] = v
			}
			out[i].Values = values
		}
	}
	return out
}

// ResetKeys returns a copy of the batch with every surrogate key unassigned.
func (b Batch) ResetKeys() Batch {
	out := b.Clone()
	for i := range out.Files {
		out.Files[i].Key = metdbload.NoKey
	}
	for i := range out.Lines {
		out.Lines[i].FileID = metdbload.NoKey
		out.Lines[i].HeaderID = metdbload.NoKey
		out.Lines[i].LineDataID = metdbload.NoKey
	}
	return out
}
