package exttool

import (
	"context"

	"github.com/vvka-141/asdbload/pkg/asdb"
)

// CommandTaxonomyBuilder implements asdb.TaxonomyCacheBuilder by running the
// taxonomy cache builder.
type CommandTaxonomyBuilder struct {
	runner *Runner
	cmd    Command
}

// NewCommandTaxonomyBuilder creates a builder running cmd through runner.
// Panics if runner is nil.
func NewCommandTaxonomyBuilder(runner *Runner, cmd Command) *CommandTaxonomyBuilder {
	if runner == nil {
		panic("runner cannot be nil")
	}
	return &CommandTaxonomyBuilder{runner: runner, cmd: cmd}
}

// Build runs the builder. A failure is returned as *asdb.ProcessError so the
// caller can classify it for retry.
func (b *CommandTaxonomyBuilder) Build(ctx context.Context, req asdb.RefreshRequest) error {
	return b.runner.Run(ctx, b.cmd, Invocation{
		Args:    RefreshArgs(req.Sources),
		Timeout: req.Timeout,
		Forward: req.Verbose,
	})
}

// RefreshArgs builds the arguments appended to the builder command.
func RefreshArgs(src asdb.TaxonomySources) []string {
	return []string{
		"--cache", src.CachePath,
		"--datadir", src.DataDir,
		"--mergeddump", src.MergedDumpPath,
		"--rankedlineage", src.RankedDumpPath,
	}
}

var _ asdb.TaxonomyCacheBuilder = (*CommandTaxonomyBuilder)(nil)
