// Package statfile reads the tabular hand-off of an upstream stat file parser.
//
// A batch directory holds two comma separated files with a header row:
//
//	data_files.csv  file_row,data_file_lu_id,path,filename,load_date,mod_date
//	stat_data.csv   file_row,line_type,line_num,<header>,<timing>,alpha,cov_thresh,<measurements...>
//
// Columns are matched by name. Every stat_data column that is not a fixed
// column is a measurement; "NA" or an empty cell means the value is missing.
package statfile
