package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vvka-141/asdbload/internal/logging"
	"github.com/vvka-141/asdbload/internal/tui"
)

var planCmd = &cobra.Command{
	Use:   "plan <input_dir>",
	Short: "Show what an import would do, without doing it",
	Long: `Plan walks input_dir like import does and classifies every result file:

  pending    would be handed to the importer
  skipped    already listed in imported_files.txt
  excluded   identifier does not start with an allowed prefix

Nothing is provisioned, refreshed, imported or written. One line per item is
printed to stdout as "<outcome><TAB><path>", in import order.

Examples:
  asdbload plan ./antismash_results
  asdbload plan ./antismash_results --prefixes GCF | grep ^pending`,
	Args: RequireInputDir,
	RunE: runPlan,
}

type planFlagValues struct {
	prefixes string
}

var planFlags planFlagValues

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVar(&planFlags.prefixes, "prefixes", "",
		"Comma-separated identifier prefixes to import (default: GCA,GCF)")
}

func runPlan(cmd *cobra.Command, args []string) error {
	inputDir := args[0]
	verbose := getVerboseFlag(cmd)

	cfg, err := resolveSettings(cmd, settingsFlags{prefixes: planFlags.prefixes}, verbose)
	if err != nil {
		return err
	}
	batch, err := cfg.BatchConfig(inputDir, verbose)
	if err != nil {
		return err
	}

	svc, j, err := newImportService(cfg, true, logging.NewConsoleLogger(verbose))
	if err != nil {
		return err
	}
	defer j.Close()

	ctx, stop := interruptContext(cmd, "planning")
	defer stop()

	plan, err := svc.Plan(ctx, batch)
	if err != nil {
		return fmt.Errorf("plan failed: %w", err)
	}

	printPlan(cmd.OutOrStdout(), os.Stderr, plan, tui.IsStyled(os.Stderr))
	return nil
}
