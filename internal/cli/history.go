package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vvka-141/asdbload/internal/journal"
	"github.com/vvka-141/asdbload/internal/tui"
	"github.com/vvka-141/asdbload/pkg/asdb"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent import batches",
	Long: `History lists batches recorded in the run journal (asdbload_history.db),
newest first. With --run, it lists the items attempted in that batch instead.

On a terminal the output is a table. Otherwise one tab-separated row per
batch or item is printed without a header, for use in scripts.

Examples:
  asdbload history
  asdbload history --limit 5
  asdbload history --run 0b6f3c1e-5d2a-4a43-9a57-2f1f6d0f4c2b`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

type historyFlagValues struct {
	limit int
	runID string
}

var historyFlags historyFlagValues

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyFlags.limit, "limit", 20,
		"Number of batches to show; 0 shows all")
	historyCmd.Flags().StringVar(&historyFlags.runID, "run", "",
		"Show the items of one batch")
}

func runHistory(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	if historyFlags.limit < 0 {
		return fmt.Errorf("--limit cannot be negative: %w", asdb.ErrInvalidConfig)
	}

	cfg, err := resolveSettings(cmd, settingsFlags{}, verbose)
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfg.Journal.Path); err != nil {
		return fmt.Errorf("no run history at %s: %w", cfg.Journal.Path, err)
	}

	j, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer j.Close()

	out := cmd.OutOrStdout()
	styled := tui.IsStyled(os.Stdout)

	if historyFlags.runID != "" {
		items, err := j.Items(commandContext(cmd), historyFlags.runID)
		if err != nil {
			return err
		}
		writeRows(out, itemHeaders, itemRows(items), styled)
		return nil
	}

	runs, err := j.RecentRuns(commandContext(cmd), historyFlags.limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "No batches recorded yet")
		return nil
	}
	writeRows(out, runHeaders, runRows(runs), styled)
	return nil
}
