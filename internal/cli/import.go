package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/asdbload/internal/logging"
	"github.com/vvka-141/asdbload/internal/tui"
)

var importCmd = &cobra.Command{
	Use:   "import <input_dir>",
	Short: "Import every new result file from a directory",
	Long: `Import runs one batch over input_dir.

The import command:
1. Copies the schema template to the database file if the database file is missing
2. Rebuilds the taxonomy cache from the NCBI dumps
3. Truncates failed_files.txt and deferred_files.txt
4. Walks input_dir in lexical order and, for every result file whose identifier
   starts with an allowed prefix and that imported_files.txt does not list yet,
   runs the importer and records the outcome

A failing item does not stop the batch. The exit code is 14 when at least one
item failed; fix the cause and run the same command again to retry only those.

Arguments:
  input_dir    Directory containing antiSMASH result files (searched recursively)

Examples:
  # Import with the defaults from asdbload.yaml
  asdbload import ./antismash_results

  # Only RefSeq assemblies, verbose importer output
  asdbload import ./antismash_results --prefixes GCF -v

  # No per-item time limit
  asdbload import ./antismash_results --timeout 0`,
	Args: RequireInputDir,
	RunE: runImport,
}

type importFlagValues struct {
	prefixes  string
	database  string
	template  string
	timeout   time.Duration
	noJournal bool
}

var importFlags importFlagValues

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importFlags.prefixes, "prefixes", "",
		"Comma-separated identifier prefixes to import (default: GCA,GCF)\n"+
			"Precedence: --prefixes > $ASDBLOAD_PREFIXES > asdbload.yaml")
	importCmd.Flags().StringVar(&importFlags.database, "database", "",
		"Database file to import into (default: antismash_db.duckdb)\n"+
			"Precedence: --database > $ASDBLOAD_DATABASE > asdbload.yaml")
	importCmd.Flags().StringVar(&importFlags.template, "template", "",
		"Empty database copied when the database file is missing\n"+
			"(default: schema/antismash_db.duckdb)")
	importCmd.Flags().DurationVar(&importFlags.timeout, "timeout", 0,
		"Time limit for a single importer run; 0 disables it (default 2h)\n"+
			"A timed-out item is recorded as failed and the batch continues")
	importCmd.Flags().BoolVar(&importFlags.noJournal, "no-journal", false,
		"Do not record this batch in the run history")
}

func runImport(cmd *cobra.Command, args []string) error {
	inputDir := args[0]
	verbose := getVerboseFlag(cmd)

	cfg, err := resolveSettings(cmd, settingsFlags{
		prefixes: importFlags.prefixes,
		database: importFlags.database,
		template: importFlags.template,
		timeout:  &importFlags.timeout,
	}, verbose)
	if err != nil {
		return err
	}

	batch, err := cfg.BatchConfig(inputDir, verbose)
	if err != nil {
		return err
	}

	logger := logging.NewConsoleLogger(verbose)
	svc, j, err := newImportService(cfg, importFlags.noJournal, logger)
	if err != nil {
		return err
	}
	defer j.Close()

	ctx, stop := interruptContext(cmd, "the batch")
	defer stop()

	result, err := svc.Run(ctx, batch)
	if err == nil || result.Discovered > 0 {
		printBatchSummary(os.Stderr, result, tui.IsStyled(os.Stderr))
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	return nil
}
