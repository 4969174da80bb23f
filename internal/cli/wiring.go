package cli

import (
	"fmt"
	"os"

	"github.com/vvka-141/asdbload/internal/config"
	"github.com/vvka-141/asdbload/internal/exttool"
	"github.com/vvka-141/asdbload/internal/files/scanner"
	"github.com/vvka-141/asdbload/internal/journal"
	"github.com/vvka-141/asdbload/internal/provision"
	"github.com/vvka-141/asdbload/internal/services"
	"github.com/vvka-141/asdbload/internal/taxonomy"
	"github.com/vvka-141/asdbload/pkg/asdb"
)

func newTaxonomyGate(cfg *config.ProjectConfig, runner *exttool.Runner, logger asdb.Logger) (*taxonomy.Gate, error) {
	timeout, err := cfg.TaxonomyTimeout()
	if err != nil {
		return nil, err
	}
	builder := exttool.NewCommandTaxonomyBuilder(runner, exttool.Command{
		Path: cfg.Taxonomy.Command,
		Args: cfg.Taxonomy.Args,
	})
	return taxonomy.NewGate(builder, logger,
		taxonomy.WithTimeout(timeout),
		taxonomy.WithRetries(cfg.Taxonomy.Retries),
	), nil
}

// openJournal opens the run journal. A journal that cannot be opened does not
// stop a batch; the batch runs without history instead.
func openJournal(cfg *config.ProjectConfig, disabled bool, logger asdb.Logger) asdb.Journal {
	if disabled || !cfg.Journal.Enabled {
		logger.Verbose("Run journal disabled")
		return journal.NewNullJournal()
	}
	j, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: run history unavailable: %v\n", err)
		return journal.NewNullJournal()
	}
	return j
}

// newImportService wires the batch orchestrator from cfg. The returned
// journal must be closed by the caller.
func newImportService(cfg *config.ProjectConfig, noJournal bool, logger asdb.Logger) (*services.ImportService, asdb.Journal, error) {
	runner := exttool.NewRunner(logger)

	gate, err := newTaxonomyGate(cfg, runner, logger)
	if err != nil {
		return nil, nil, err
	}

	importer := exttool.NewCommandImporter(runner, exttool.Command{
		Path: cfg.Importer.Command,
		Args: cfg.Importer.Args,
	})

	j := openJournal(cfg, noJournal, logger)
	var opts []services.Option
	if _, off := j.(*journal.NullJournal); !off {
		opts = append(opts, services.WithJournal(j))
	}

	svc := services.NewImportService(
		provision.NewFileProvisioner(logger),
		gate,
		scanner.NewScanner(cfg.Discovery.Extensions),
		importer,
		services.FileStoreOpener(logger),
		logger,
		opts...,
	)
	return svc, j, nil
}
