package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RequireBatchDir validates that exactly one batch_dir argument is provided.
// Returns a helpful error message with usage and examples if missing or too many.
func RequireBatchDir(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`missing required argument: <batch_dir>

Usage: %s

Example:
  %s ./batches/20240501 -d mv_gfs --group GFS

The directory must hold data_files.csv and stat_data.csv.`, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 1 {
		return fmt.Errorf("accepts 1 arg(s), received %d", len(args))
	}
	return nil
}
