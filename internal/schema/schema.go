// Package schema describes the tables a load job writes to.
//
// A Schema is built once and never modified; components receive it explicitly
// instead of reaching for package-level constants.
package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Table names.
const (
	DataFileTable     = "data_file"
	StatHeaderTable   = "stat_header"
	MetadataTable     = "metadata"
	InstanceInfoTable = "instance_info"
)

// Key columns.
const (
	DataFileID     = "data_file_id"
	StatHeaderID   = "stat_header_id"
	InstanceInfoID = "instance_info_id"
	LineDataID     = "line_data_id"
)

var dataFileColumns = []string{
	DataFileID, "data_file_lu_id", "filename", "path", "load_date", "mod_date",
}

var headerKeyColumns = []string{
	"version", "model", "descr",
	"fcst_var", "fcst_units", "fcst_lev",
	"obs_var", "obs_units", "obs_lev",
	"obtype", "vx_mask", "interp_mthd", "interp_pnts",
	"fcst_thresh", "obs_thresh",
}

var lineCommonColumns = []string{
	StatHeaderID, DataFileID, "line_num",
	"fcst_lead", "fcst_valid_beg", "fcst_valid_end", "fcst_init_beg",
	"obs_lead", "obs_valid_beg", "obs_valid_end",
	"alpha", "cov_thresh",
}

// LineType describes the fact table of one statistic line type.
type LineType struct {
	Name     string
	Table    string
	Measures []string

	// Variable line types carry their own line_data_id key.
	Variable bool
}

// Columns returns the fact table columns in staging order.
func (lt LineType) Columns() []string {
	cols := make([]string, 0, len(lineCommonColumns)+len(lt.Measures)+1)
	if lt.Variable {
		cols = append(cols, LineDataID)
	}
	cols = append(cols, lineCommonColumns...)
	return append(cols, lt.Measures...)
}

// Schema is an immutable description of the target tables.
type Schema struct {
	lineTypes map[string]LineType
}

// New builds a Schema from line type descriptions.
// Line type names are matched case-insensitively and stored upper-case.
func New(lineTypes ...LineType) (*Schema, error) {
	s := &Schema{lineTypes: make(map[string]LineType, len(lineTypes))}
	for _, lt := range lineTypes {
		name := strings.ToUpper(lt.Name)
		if name == "" || lt.Table == "" {
			return nil, fmt.Errorf("line type needs a name and a table: %+v", lt)
		}
		if _, dup := s.lineTypes[name]; dup {
			return nil, fmt.Errorf("line type %s declared twice", name)
		}
		lt.Name = name
		lt.Measures = append([]string(nil), lt.Measures...)
		s.lineTypes[name] = lt
	}
	return s, nil
}

// LineType looks up a line type by name.
func (s *Schema) LineType(name string) (LineType, bool) {
	lt, ok := s.lineTypes[strings.ToUpper(name)]
	if !ok {
		return LineType{}, false
	}
	lt.Measures = append([]string(nil), lt.Measures...)
	return lt, true
}

// LineTypes returns all line types sorted by name.
func (s *Schema) LineTypes() []LineType {
	names := make([]string, 0, len(s.lineTypes))
	for name := range s.lineTypes {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]LineType, 0, len(names))
	for _, name := range names {
		lt, _ := s.LineType(name)
		out = append(out, lt)
	}
	return out
}

// DataFileColumns returns the data_file columns in staging order.
func (s *Schema) DataFileColumns() []string {
	return append([]string(nil), dataFileColumns...)
}

// HeaderKeyColumns returns the stat header natural-key columns.
func (s *Schema) HeaderKeyColumns() []string {
	return append([]string(nil), headerKeyColumns...)
}

// StatHeaderColumns returns the stat_header columns in staging order.
func (s *Schema) StatHeaderColumns() []string {
	return append([]string{StatHeaderID}, headerKeyColumns...)
}

// QueryDataFile finds a data file by its natural key.
func (s *Schema) QueryDataFile() string {
	return "SELECT data_file_id FROM data_file WHERE path = $1 AND filename = $2"
}

// QueryStatHeader finds a stat header by every natural-key column.
// NULLs compare equal so a partially empty tuple still matches itself.
func (s *Schema) QueryStatHeader() string {
	conds := make([]string, len(headerKeyColumns))
	for i, col := range headerKeyColumns {
		conds[i] = fmt.Sprintf("%s IS NOT DISTINCT FROM $%d", col, i+1)
	}
	return "SELECT stat_header_id FROM stat_header WHERE " + strings.Join(conds, " AND ") + " LIMIT 1"
}

// QueryMetadata reads the single metadata row.
func (s *Schema) QueryMetadata() string {
	return "SELECT category, description FROM metadata LIMIT 1"
}

// InsertMetadata creates the metadata row from category and description.
func (s *Schema) InsertMetadata() string {
	return "INSERT INTO metadata (category, description) VALUES ($1, $2)"
}

// UpdateMetadata overwrites the metadata row.
func (s *Schema) UpdateMetadata() string {
	return "UPDATE metadata SET category = $1, description = $2"
}

// InsertInstanceInfo writes one audit row.
func (s *Schema) InsertInstanceInfo() string {
	return "INSERT INTO instance_info (instance_info_id, updater, update_date, update_detail, load_xml) VALUES ($1, $2, $3, $4, $5)"
}

// CopyStatement builds the COPY statement that ingests a staged file into table.
func (s *Schema) CopyStatement(table string, columns []string, delimiter rune) string {
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = pgx.Identifier{col}.Sanitize()
	}
	return fmt.Sprintf(`COPY %s (%s) FROM STDIN WITH (FORMAT csv, DELIMITER '%c', NULL '\N')`,
		pgx.Identifier{table}.Sanitize(), strings.Join(quoted, ", "), delimiter)
}
