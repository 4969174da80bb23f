package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vvka-141/asdbload/internal/logging"
	"github.com/vvka-141/asdbload/internal/provision"
	"github.com/vvka-141/asdbload/internal/tui"
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create the database file from the schema template if it is missing",
	Long: `Provision copies the schema template to the database file when the database
file does not exist yet. An existing database file is never touched.

The copy is written next to the target and renamed into place, so an
interrupted copy never leaves a partial database file behind.

Examples:
  asdbload provision
  asdbload provision --database data/asdb.duckdb --template schema/antismash_db.duckdb`,
	Args: cobra.NoArgs,
	RunE: runProvision,
}

type provisionFlagValues struct {
	database string
	template string
}

var provisionFlags provisionFlagValues

func init() {
	rootCmd.AddCommand(provisionCmd)

	provisionCmd.Flags().StringVar(&provisionFlags.database, "database", "",
		"Database file to provision (default: antismash_db.duckdb)")
	provisionCmd.Flags().StringVar(&provisionFlags.template, "template", "",
		"Empty database to copy from (default: schema/antismash_db.duckdb)")
}

func runProvision(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	cfg, err := resolveSettings(cmd, settingsFlags{
		database: provisionFlags.database,
		template: provisionFlags.template,
	}, verbose)
	if err != nil {
		return err
	}

	ctx, stop := interruptContext(cmd, "provisioning")
	defer stop()

	provisioner := provision.NewFileProvisioner(logging.NewConsoleLogger(verbose))
	status, err := provisioner.Ensure(ctx, cfg.Database.Path, cfg.Database.Template)
	if err != nil {
		return err
	}

	styled := tui.IsStyled(os.Stderr)
	fmt.Fprintf(os.Stderr, "%s %s: %s\n",
		tui.Render(tui.SuccessStyle, tui.SymbolCheck, styled), cfg.Database.Path, status)
	return nil
}
