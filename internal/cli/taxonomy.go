package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/asdbload/internal/exttool"
	"github.com/vvka-141/asdbload/internal/logging"
	"github.com/vvka-141/asdbload/pkg/asdb"
)

var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "Manage the taxonomy cache",
}

var taxonomyRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild the taxonomy cache from the NCBI dumps",
	Long: `Refresh runs the taxonomy cache builder once, the same way import does before
its first item. The data directory and both reference dumps must be readable.

Examples:
  asdbload taxonomy refresh
  asdbload taxonomy refresh --retries 2 --timeout 30m -v`,
	Args: cobra.NoArgs,
	RunE: runTaxonomyRefresh,
}

type taxonomyFlagValues struct {
	timeout time.Duration
	retries int
}

var taxonomyFlags taxonomyFlagValues

func init() {
	rootCmd.AddCommand(taxonomyCmd)
	taxonomyCmd.AddCommand(taxonomyRefreshCmd)

	taxonomyRefreshCmd.Flags().DurationVar(&taxonomyFlags.timeout, "timeout", 0,
		"Time limit for one builder run; 0 disables it (default 1h)")
	taxonomyRefreshCmd.Flags().IntVar(&taxonomyFlags.retries, "retries", 0,
		"Retries after a transient builder failure (default from asdbload.yaml, 0)")
}

func runTaxonomyRefresh(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	cfg, err := resolveSettings(cmd, settingsFlags{}, verbose)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("timeout") {
		if taxonomyFlags.timeout < 0 {
			return fmt.Errorf("--timeout cannot be negative: %w", asdb.ErrInvalidConfig)
		}
		cfg.Taxonomy.Timeout = taxonomyFlags.timeout.String()
	}
	if cmd.Flags().Changed("retries") {
		cfg.Taxonomy.Retries = taxonomyFlags.retries
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.NewConsoleLogger(verbose)
	gate, err := newTaxonomyGate(cfg, exttool.NewRunner(logger), logger)
	if err != nil {
		return err
	}

	ctx, stop := interruptContext(cmd, "the taxonomy refresh")
	defer stop()

	return gate.Refresh(ctx, cfg.TaxonomySources(), verbose)
}
