// Package taxonomy guarantees that the taxonomy cache is refreshed before any
// item of a batch is imported.
//
// The cache contents are never inspected. The gate checks that the reference
// dumps are reachable, runs the builder once (plus configured retries for
// transient failures) and turns any failure into asdb.ErrTaxonomyRefresh, which
// aborts the batch before the first import.
package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/vvka-141/asdbload/internal/retry"
	"github.com/vvka-141/asdbload/pkg/asdb"
)

// Gate implements asdb.TaxonomyGate.
type Gate struct {
	builder  asdb.TaxonomyCacheBuilder
	logger   asdb.Logger
	timeout  time.Duration
	strategy asdb.BackoffStrategy
}

// Option configures a Gate.
type Option func(*Gate)

// WithTimeout bounds each builder attempt (0 = unbounded).
func WithTimeout(d time.Duration) Option {
	return func(g *Gate) {
		g.timeout = d
	}
}

// WithRetries allows up to n additional attempts after a transient failure.
func WithRetries(n int, opts ...retry.BackoffOption) Option {
	return func(g *Gate) {
		g.strategy = retry.NewExponentialBackoff(n, opts...)
	}
}

// NewGate creates a gate around builder. By default each attempt is bounded by
// asdb.DefaultTaxonomyTimeout and failures are not retried.
// Panics if builder or logger is nil.
func NewGate(builder asdb.TaxonomyCacheBuilder, logger asdb.Logger, opts ...Option) *Gate {
	if builder == nil {
		panic("builder cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	g := &Gate{
		builder:  builder,
		logger:   logger,
		timeout:  asdb.DefaultTaxonomyTimeout,
		strategy: retry.NewExponentialBackoff(0),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Refresh rebuilds the taxonomy cache from sources and blocks until the builder
// is done. Errors wrap asdb.ErrTaxonomyRefresh, except when ctx ends first.
func (g *Gate) Refresh(ctx context.Context, sources asdb.TaxonomySources, verbose bool) error {
	if err := sources.Validate(); err != nil {
		return fmt.Errorf("%w: %w", asdb.ErrTaxonomyRefresh, err)
	}
	if err := CheckSources(sources); err != nil {
		return fmt.Errorf("%w: %w", asdb.ErrTaxonomyRefresh, err)
	}

	g.logger.Info("Refreshing taxonomy cache %s", sources.CachePath)
	start := time.Now()

	executor := retry.NewExecutor(retry.NewProcessErrorClassifier(), g.strategy).
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			g.logger.Info("Taxonomy refresh failed transiently (%v); retry %d of %d in %s",
				err, attempt+1, g.strategy.MaxAttempts(), delay.Round(time.Second))
		})

	err := executor.Execute(ctx, func(ctx context.Context) error {
		return g.builder.Build(ctx, asdb.RefreshRequest{
			Sources: sources,
			Verbose: verbose,
			Timeout: g.timeout,
		})
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("taxonomy refresh interrupted: %w", ctxErr)
		}
		if !verbose {
			logStderrTail(g.logger, err)
		}
		return fmt.Errorf("%w: %w", asdb.ErrTaxonomyRefresh, err)
	}

	g.logger.Info("Taxonomy cache ready (%s)", time.Since(start).Round(time.Millisecond))
	return nil
}

// CheckSources verifies that the data directory and both reference dumps exist
// and can be opened.
func CheckSources(sources asdb.TaxonomySources) error {
	info, err := os.Stat(sources.DataDir)
	if err != nil {
		return fmt.Errorf("taxonomy data directory unreachable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("taxonomy data directory %s is not a directory", sources.DataDir)
	}

	var errs []error
	for _, dump := range []string{sources.MergedDumpPath, sources.RankedDumpPath} {
		if err := checkReadableFile(dump); err != nil {
			errs = append(errs, fmt.Errorf("reference dump unreachable: %w", err))
		}
	}
	return errors.Join(errs...)
}

func checkReadableFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

func logStderrTail(logger asdb.Logger, err error) {
	var procErr *asdb.ProcessError
	if !errors.As(err, &procErr) {
		return
	}
	for _, line := range procErr.StderrTail {
		logger.Error("  %s", line)
	}
}

var _ asdb.TaxonomyGate = (*Gate)(nil)
