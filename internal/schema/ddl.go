package schema

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

var headerKeyTypes = map[string]string{
	"interp_pnts": "integer",
}

// DDL returns CREATE TABLE IF NOT EXISTS statements for every table, parents first.
func (s *Schema) DDL() []string {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS data_file (
    data_file_id    integer PRIMARY KEY,
    data_file_lu_id integer NOT NULL,
    filename        varchar(110) NOT NULL,
    path            varchar(120) NOT NULL,
    load_date       timestamp,
    mod_date        timestamp,
    UNIQUE (filename, path)
)`,
		s.statHeaderDDL(),
		`CREATE TABLE IF NOT EXISTS metadata (
    category    varchar(30),
    description varchar(150)
)`,
		`CREATE TABLE IF NOT EXISTS instance_info (
    instance_info_id integer PRIMARY KEY,
    updater          varchar(50),
    update_date      timestamp,
    update_detail    varchar(2048),
    load_xml         text
)`,
	}
	for _, lt := range s.LineTypes() {
		stmts = append(stmts, lineTypeDDL(lt))
	}
	return stmts
}

func (s *Schema) statHeaderDDL() string {
	cols := []string{"    stat_header_id integer PRIMARY KEY"}
	for _, col := range headerKeyColumns {
		typ, ok := headerKeyTypes[col]
		if !ok {
			typ = "varchar(512)"
		}
		cols = append(cols, fmt.Sprintf("    %s %s", col, typ))
	}
	return "CREATE TABLE IF NOT EXISTS stat_header (\n" + strings.Join(cols, ",\n") + "\n)"
}

func lineTypeDDL(lt LineType) string {
	var cols []string
	if lt.Variable {
		cols = append(cols, "    line_data_id integer PRIMARY KEY")
	}
	cols = append(cols,
		"    stat_header_id integer NOT NULL REFERENCES stat_header (stat_header_id)",
		"    data_file_id integer NOT NULL REFERENCES data_file (data_file_id)",
		"    line_num integer",
		"    fcst_lead integer",
		"    fcst_valid_beg timestamp",
		"    fcst_valid_end timestamp",
		"    fcst_init_beg timestamp",
		"    obs_lead integer",
		"    obs_valid_beg timestamp",
		"    obs_valid_end timestamp",
		"    alpha double precision",
		"    cov_thresh varchar(32)",
	)
	for _, m := range lt.Measures {
		cols = append(cols, fmt.Sprintf("    %s double precision", pgx.Identifier{m}.Sanitize()))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n)",
		pgx.Identifier{lt.Table}.Sanitize(), strings.Join(cols, ",\n"))
}
