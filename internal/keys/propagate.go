package keys

import (
	"github.com/vvka-141/metdbload/internal/batch"
	"github.com/vvka-141/metdbload/pkg/metdbload"
)

// AssignFileKeys gives every file still at NoKey the key start+ordinal,
// where ordinal is its position in files.
func AssignFileKeys(files []batch.FileRecord, start int64) []batch.FileRecord {
	out := batch.CloneFiles(files)
	for i := range out {
		if out[i].Key == metdbload.NoKey {
			out[i].Key = start + int64(i)
		}
	}
	return out
}

// PropagateFileKeys sets FileID on every line from the file with the same FileRow.
func PropagateFileKeys(files []batch.FileRecord, lines []batch.LineRecord) ([]batch.LineRecord, error) {
	byRow := make(map[int]int64, len(files))
	for _, f := range files {
		byRow[f.FileRow] = f.Key
	}

	out := batch.CloneLines(lines)
	for i := range out {
		key, ok := byRow[out[i].FileRow]
		if !ok {
			return nil, &metdbload.DataContractError{
				FileRow: out[i].FileRow,
				Reason:  "line references a file that is not in the batch",
			}
		}
		if key == metdbload.NoKey {
			return nil, &metdbload.DataContractError{
				FileRow: out[i].FileRow,
				Reason:  "file has no data_file_id",
			}
		}
		out[i].FileID = key
	}
	return out, nil
}

// AssignHeaderKeys gives every header still at NoKey the id start+ordinal.
func AssignHeaderKeys(headers []batch.HeaderRecord, start int64) []batch.HeaderRecord {
	out := make([]batch.HeaderRecord, len(headers))
	copy(out, headers)
	for i := range out {
		if out[i].ID == metdbload.NoKey {
			out[i].ID = start + int64(i)
		}
	}
	return out
}

// PropagateHeaderKeys sets HeaderID on every line by natural-key match.
func PropagateHeaderKeys(headers []batch.HeaderRecord, lines []batch.LineRecord) ([]batch.LineRecord, error) {
	byKey := make(map[batch.HeaderKey]int64, len(headers))
	for _, h := range headers {
		byKey[h.Key] = h.ID
	}

	out := batch.CloneLines(lines)
	for i := range out {
		id, ok := byKey[out[i].Header]
		if !ok || id == metdbload.NoKey {
			return nil, &metdbload.DataContractError{
				FileRow: out[i].FileRow,
				Reason:  "line stat header was not resolved",
			}
		}
		out[i].HeaderID = id
	}
	return out, nil
}

// AssignLineDataIDs numbers the lines of one line type from start in batch order.
// Lines of other types are copied unchanged.
func AssignLineDataIDs(lines []batch.LineRecord, lineType string, start int64) []batch.LineRecord {
	out := batch.CloneLines(lines)
	next := start
	for i := range out {
		if out[i].LineType == lineType {
			out[i].LineDataID = next
			next++
		}
	}
	return out
}
