package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/vvka-141/asdbload/internal/checksum"
	"github.com/vvka-141/asdbload/internal/filter"
	"github.com/vvka-141/asdbload/internal/journal"
	"github.com/vvka-141/asdbload/internal/progress"
	"github.com/vvka-141/asdbload/pkg/asdb"
)

// StoreOpener opens the progress store for one batch.
type StoreOpener func(paths asdb.ProgressPaths) (asdb.ProgressStore, error)

// FileStoreOpener returns a StoreOpener backed by progress.Open.
func FileStoreOpener(logger asdb.Logger) StoreOpener {
	return func(paths asdb.ProgressPaths) (asdb.ProgressStore, error) {
		store, err := progress.Open(paths, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

// FilterFactory builds the item filter for a batch's allowed prefixes.
type FilterFactory func(prefixes []string) asdb.ItemFilter

func prefixFilter(prefixes []string) asdb.ItemFilter {
	return filter.NewPrefixFilter(prefixes)
}

// ImportService implements asdb.Importer.
// Thread-Safety: NOT safe for concurrent Run() calls. A batch owns the database
// file and the progress logs; run one batch at a time.
type ImportService struct {
	provisioner asdb.Provisioner
	gate        asdb.TaxonomyGate
	scanner     asdb.ItemScanner
	importer    asdb.ItemImporter
	openStore   StoreOpener
	newFilter   FilterFactory
	logger      asdb.Logger

	journal   asdb.Journal
	checksums checksum.Calculator

	now      func() time.Time
	newRunID func() string
}

// Option configures an ImportService.
type Option func(*ImportService)

// WithJournal records every batch and every attempted item in j.
// Attempted items are checksummed for the journal.
func WithJournal(j asdb.Journal) Option {
	return func(s *ImportService) {
		if j == nil {
			return
		}
		s.journal = j
		s.checksums = checksum.New()
	}
}

// WithFilter replaces the prefix filter applied to discovered items.
func WithFilter(f FilterFactory) Option {
	return func(s *ImportService) {
		if f != nil {
			s.newFilter = f
		}
	}
}

// WithClock replaces time.Now. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *ImportService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewImportService creates an ImportService with all collaborators injected.
//
// Panics on nil dependencies: these are wiring mistakes and should surface at
// startup rather than halfway through a batch.
func NewImportService(
	provisioner asdb.Provisioner,
	gate asdb.TaxonomyGate,
	scanner asdb.ItemScanner,
	importer asdb.ItemImporter,
	openStore StoreOpener,
	logger asdb.Logger,
	opts ...Option,
) *ImportService {
	if provisioner == nil {
		panic("provisioner cannot be nil")
	}
	if gate == nil {
		panic("gate cannot be nil")
	}
	if scanner == nil {
		panic("scanner cannot be nil")
	}
	if importer == nil {
		panic("importer cannot be nil")
	}
	if openStore == nil {
		panic("openStore cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	s := &ImportService{
		provisioner: provisioner,
		gate:        gate,
		scanner:     scanner,
		importer:    importer,
		openStore:   openStore,
		newFilter:   prefixFilter,
		logger:      logger,
		journal:     journal.NewNullJournal(),
		now:         time.Now,
		newRunID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes one batch: provision the database, refresh the taxonomy cache,
// then import every allowed item that the success log does not already list.
//
// The returned BatchResult is filled as far as the batch got, also on error.
// Pre-batch failures abort before the progress logs are touched. Item failures
// do not stop the batch; they are aggregated into an error wrapping
// asdb.ErrItemsFailed once every item has been visited.
func (s *ImportService) Run(ctx context.Context, config asdb.BatchConfig) (asdb.BatchResult, error) {
	result := asdb.BatchResult{
		RunID:     s.newRunID(),
		InputDir:  config.InputDir,
		StartedAt: s.now().UTC(),
		FailedLog: config.Progress.FailedLog,
	}

	if err := config.Validate(); err != nil {
		return result, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := checkInputDir(config.InputDir); err != nil {
		return result, err
	}

	s.logger.Verbose("Starting batch %s over %s", result.RunID, config.InputDir)
	s.startRun(ctx, result)

	err := s.runBatch(ctx, config, &result)

	result.FinishedAt = s.now().UTC()
	s.finishRun(ctx, result, err)

	if err == nil {
		s.logger.Info("✓ Batch completed: %s", summarize(result))
	}
	return result, err
}

func (s *ImportService) runBatch(ctx context.Context, config asdb.BatchConfig, result *asdb.BatchResult) (err error) {
	status, err := s.provisioner.Ensure(ctx, config.DatabasePath, config.TemplatePath)
	if err != nil {
		return err
	}
	result.Provisioned = status
	s.logger.Info("Database %s: %s", config.DatabasePath, status)

	if err := s.gate.Refresh(ctx, config.Taxonomy, config.Verbose); err != nil {
		return err
	}

	store, err := s.openStore(config.Progress)
	if err != nil {
		return fmt.Errorf("failed to open progress logs: %w", err)
	}
	s.logger.Verbose("Success log %s lists %d imported item(s)", config.Progress.ImportedLog, store.ImportedCount())
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close progress logs: %w", closeErr))
		}
	}()

	scan, err := s.scanner.ScanDirectory(config.InputDir)
	if err != nil {
		return fmt.Errorf("failed to discover items in %s: %w", config.InputDir, err)
	}
	result.Discovered = len(scan.Items)
	s.logger.Verbose("Discovered %d item(s) in %s", result.Discovered, config.InputDir)

	allowed := s.newFilter(config.AllowedPrefixes)
	total := len(scan.Items)

	for i, item := range scan.Items {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("batch interrupted after %d of %d items: %w", i, total, ctxErr)
		}

		if !allowed.Allowed(item) {
			result.Excluded++
			s.logger.Verbose("Excluded %s (identifier %q)", item.Path, item.Identifier)
			continue
		}
		if store.IsImported(item.Path) {
			result.Skipped++
			s.logger.Verbose("Skipping %s: already imported", item.Path)
			continue
		}

		s.logger.Info("[%d/%d] Importing %s", i+1, total, item.Path)
		if err := s.importItem(ctx, config, store, item, result); err != nil {
			return err
		}
	}

	if result.HasFailures() {
		attempted := len(result.Imported) + len(result.Failed)
		s.logger.Error("Batch finished with failures: %s", summarize(*result))
		return fmt.Errorf("%w: %d of %d attempted item(s) failed, see %s",
			asdb.ErrItemsFailed, len(result.Failed), attempted, config.Progress.FailedLog)
	}
	return nil
}

// importItem runs the importer for one item and records its outcome. Only a
// progress store write error or an interruption is returned.
func (s *ImportService) importItem(
	ctx context.Context,
	config asdb.BatchConfig,
	store asdb.ProgressStore,
	item asdb.Item,
	result *asdb.BatchResult,
) error {
	record := asdb.ItemRecord{
		RunID:      result.RunID,
		Path:       item.Path,
		Identifier: item.Identifier,
		Checksum:   s.checksum(item.Path),
	}

	start := s.now()
	importErr := s.importer.Import(ctx, asdb.ImportRequest{
		ItemPath:        item.Path,
		TaxonomyCache:   config.Taxonomy.CachePath,
		AllowedPrefixes: config.AllowedPrefixes,
		Verbose:         config.Verbose,
		DatabasePath:    config.DatabasePath,
		Timeout:         config.ItemTimeout,
	})
	record.Duration = s.now().Sub(start)

	if importErr != nil && ctx.Err() != nil {
		// The item was cut short, not judged: leave it out of both logs.
		return fmt.Errorf("batch interrupted while importing %s: %w", item.Path, ctx.Err())
	}

	if importErr == nil {
		if err := store.MarkImported(item.Path); err != nil {
			return fmt.Errorf("failed to record %s as imported: %w", item.Path, err)
		}
		result.Imported = append(result.Imported, item.Path)
		record.Outcome = asdb.OutcomeImported
		s.logger.Verbose("Imported %s in %s", item.Path, record.Duration.Round(time.Millisecond))
	} else {
		s.logger.Error("Failed to import %s: %v", item.Path, importErr)
		if !config.Verbose {
			logStderrTail(s.logger, importErr)
		}
		if err := store.MarkFailed(item.Path); err != nil {
			return fmt.Errorf("failed to record %s as failed: %w", item.Path, err)
		}
		result.Failed = append(result.Failed, item.Path)
		record.Outcome = asdb.OutcomeFailed
		record.Error = importErr.Error()
		record.ExitCode = exitCodeOf(importErr)
	}

	record.RecordedAt = s.now().UTC()
	if err := s.journal.RecordItem(ctx, record); err != nil {
		s.logger.Verbose("Run journal: %v", err)
	}
	return nil
}

// Plan classifies the items of a batch without side effects: nothing is
// provisioned, refreshed, imported or written.
func (s *ImportService) Plan(ctx context.Context, config asdb.BatchConfig) (asdb.Plan, error) {
	if err := config.Validate(); err != nil {
		return asdb.Plan{}, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := checkInputDir(config.InputDir); err != nil {
		return asdb.Plan{}, err
	}

	lines, err := progress.ReadLog(config.Progress.ImportedLog)
	if err != nil {
		return asdb.Plan{}, fmt.Errorf("failed to read success log: %w", err)
	}
	imported := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		imported[line] = struct{}{}
	}

	scan, err := s.scanner.ScanDirectory(config.InputDir)
	if err != nil {
		return asdb.Plan{}, fmt.Errorf("failed to discover items in %s: %w", config.InputDir, err)
	}

	allowed := s.newFilter(config.AllowedPrefixes)
	plan := asdb.Plan{Items: make([]asdb.PlannedItem, 0, len(scan.Items))}
	for _, item := range scan.Items {
		if err := ctx.Err(); err != nil {
			return asdb.Plan{}, err
		}
		outcome := asdb.OutcomePending
		if !allowed.Allowed(item) {
			outcome = asdb.OutcomeExcluded
		} else if _, ok := imported[item.Path]; ok {
			outcome = asdb.OutcomeSkipped
		}
		plan.Items = append(plan.Items, asdb.PlannedItem{Item: item, Outcome: outcome})
	}
	return plan, nil
}

func (s *ImportService) checksum(path string) string {
	if s.checksums == nil {
		return ""
	}
	sum, err := s.checksums.CalculateFile(path)
	if err != nil {
		s.logger.Verbose("Checksum of %s unavailable: %v", path, err)
		return ""
	}
	return sum
}

func (s *ImportService) startRun(ctx context.Context, result asdb.BatchResult) {
	err := s.journal.StartRun(ctx, asdb.RunRecord{
		ID:        result.RunID,
		InputDir:  result.InputDir,
		StartedAt: result.StartedAt,
		Status:    asdb.RunRunning,
	})
	if err != nil {
		s.logger.Verbose("Run journal: %v", err)
	}
}

func (s *ImportService) finishRun(ctx context.Context, result asdb.BatchResult, runErr error) {
	finished := result.FinishedAt
	record := asdb.RunRecord{
		ID:         result.RunID,
		InputDir:   result.InputDir,
		StartedAt:  result.StartedAt,
		FinishedAt: &finished,
		Status:     runStatus(runErr),
		Discovered: result.Discovered,
		Excluded:   result.Excluded,
		Skipped:    result.Skipped,
		Imported:   len(result.Imported),
		Failed:     len(result.Failed),
	}
	if runErr != nil {
		record.Error = runErr.Error()
	}
	// The batch context may already be cancelled; the record is still written.
	if err := s.journal.FinishRun(context.WithoutCancel(ctx), record); err != nil {
		s.logger.Verbose("Run journal: %v", err)
	}
}

func runStatus(err error) asdb.RunStatus {
	switch {
	case err == nil:
		return asdb.RunSucceeded
	case errors.Is(err, asdb.ErrItemsFailed):
		return asdb.RunFailed
	default:
		return asdb.RunAborted
	}
}

func checkInputDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: %w", asdb.ErrInputDirMissing, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", asdb.ErrInputDirMissing, dir)
	}
	return nil
}

func exitCodeOf(err error) int {
	var procErr *asdb.ProcessError
	if errors.As(err, &procErr) {
		return procErr.ExitCode
	}
	return -1
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

func summarize(r asdb.BatchResult) string {
	return fmt.Sprintf("%d imported, %d failed, %d skipped, %d excluded of %d discovered",
		len(r.Imported), len(r.Failed), r.Skipped, r.Excluded, r.Discovered)
}

var _ asdb.Importer = (*ImportService)(nil)
