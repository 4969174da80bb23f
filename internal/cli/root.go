package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "asdbload",
	Short: "Batch loader for antiSMASH result files",
	Long: `asdbload walks a directory of antiSMASH result files and imports each one into
the antiSMASH database file, exactly once.

Before the first item it provisions the database file from the schema template
and rebuilds the taxonomy cache. Each allowed item is then handed to the
importer; its outcome is appended to imported_files.txt or failed_files.txt.
Items listed in imported_files.txt are never imported again, so an interrupted
or partially failed batch is resumed by running the same command again.

Exit Codes:
  0  - Success (no item failed)
  1  - General error (including interruption)
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or flags
  11 - Input directory missing
  12 - Database provisioning failed
  13 - Taxonomy cache refresh failed
  14 - At least one item failed (see the failure log)`,
	SilenceUsage: true,
}

type rootFlagValues struct {
	configPath string
}

var rootFlags rootFlagValues

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
	rootCmd.PersistentFlags().StringVar(&rootFlags.configPath, "config", "",
		"Path to the configuration file (default: ./asdbload.yaml if present)")
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
