package schema

// Line types loaded by default. Column names follow the MET database schema.
var defaultLineTypes = []LineType{
	{Name: "FHO", Table: "line_data_fho", Measures: []string{"total", "f_rate", "h_rate", "o_rate"}},
	{Name: "CTC", Table: "line_data_ctc", Measures: []string{"total", "fy_oy", "fy_on", "fn_oy", "fn_on"}},
	{Name: "CTS", Table: "line_data_cts", Measures: []string{
		"total", "baser", "fmean", "acc", "fbias", "pody", "pofd", "podn",
		"far", "csi", "gss", "hk", "hss",
	}},
	{Name: "CNT", Table: "line_data_cnt", Measures: []string{
		"total", "fbar", "fstdev", "obar", "ostdev", "pr_corr",
		"me", "estdev", "mbias", "mae", "mse", "bcmse", "rmse",
	}},
	{Name: "SL1L2", Table: "line_data_sl1l2", Measures: []string{"total", "fbar", "obar", "fobar", "ffbar", "oobar", "mae"}},
	{Name: "SAL1L2", Table: "line_data_sal1l2", Measures: []string{"total", "fabar", "oabar", "foabar", "ffabar", "ooabar", "mae"}},
	{Name: "VL1L2", Table: "line_data_vl1l2", Measures: []string{
		"total", "ufbar", "vfbar", "uobar", "vobar",
		"uvfobar", "uvffbar", "uvoobar", "f_speed_bar", "o_speed_bar",
	}},
	{Name: "MCTC", Table: "line_data_mctc", Measures: []string{"total", "n_cat", "ec_value"}, Variable: true},
	{Name: "PCT", Table: "line_data_pct", Measures: []string{"total", "n_thresh"}, Variable: true},
}

// Default returns the schema with the standard MET line types.
func Default() *Schema {
	s, err := New(defaultLineTypes...)
	if err != nil {
		panic(err)
	}
	return s
}
