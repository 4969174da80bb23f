package exttool

import (
	"context"
	"fmt"
	"strings"

	"github.com/vvka-141/asdbload/pkg/asdb"
)

// CommandImporter implements asdb.ItemImporter by running the per-file importer.
type CommandImporter struct {
	runner *Runner
	cmd    Command
}

// NewCommandImporter creates an importer running cmd through runner.
// Panics if runner is nil.
func NewCommandImporter(runner *Runner, cmd Command) *CommandImporter {
	if runner == nil {
		panic("runner cannot be nil")
	}
	return &CommandImporter{runner: runner, cmd: cmd}
}

// Import runs the importer for one item. Errors wrap asdb.ErrImporterFailed and
// the underlying *asdb.ProcessError.
func (i *CommandImporter) Import(ctx context.Context, req asdb.ImportRequest) error {
	err := i.runner.Run(ctx, i.cmd, Invocation{
		Args:    ImportArgs(req),
		Env:     []string{asdb.DatabaseEnvVar + "=" + req.DatabasePath},
		Timeout: req.Timeout,
		Forward: req.Verbose,
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", asdb.ErrImporterFailed, req.ItemPath, err)
	}
	return nil
}

// ImportArgs builds the per-item arguments appended to the importer command.
func ImportArgs(req asdb.ImportRequest) []string {
	args := []string{
		"--taxonomy", req.TaxonomyCache,
		"--prefixes", strings.Join(req.AllowedPrefixes, ","),
	}
	if req.Verbose {
		args = append(args, "--verbose")
	}
	return append(args, req.ItemPath)
}

var _ asdb.ItemImporter = (*CommandImporter)(nil)
