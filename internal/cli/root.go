package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "metdbload",
	Short: "Load MET verification statistics into PostgreSQL",
	Long: `metdbload takes a parsed batch of MET/VSDB statistics files and writes it to a
METdb-style PostgreSQL database in one transaction.

Each batch gets database keys for its files, stat headers and line data rows.
Files already stored are skipped or reused (--force-dup-file), stat headers
already stored are found and reused (--stat-header-db-check), and a failure
in any phase rolls the whole batch back.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration, load spec or missing batch files
  11 - Database connection failed
  13 - Load failed and was rolled back
  14 - Batch violated a data contract and was rolled back`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for metdbload")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
