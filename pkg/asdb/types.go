package asdb

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// BatchConfig contains all parameters needed for one batch run over one input directory.
type BatchConfig struct {
	// InputDir is the root of the directory tree holding result files
	InputDir string

	// AllowedPrefixes is the identifier-prefix policy; items whose identifier
	// starts with none of them are excluded from the run
	AllowedPrefixes []string

	// Verbose enables detailed logging and is forwarded to the importer
	Verbose bool

	// DatabasePath is the working database file the importer writes into
	DatabasePath string

	// TemplatePath is the empty database copied to DatabasePath on first run only
	TemplatePath string

	// Taxonomy locates the taxonomy cache and the reference dumps it is built from
	Taxonomy TaxonomySources

	// Progress locates the append-only progress logs
	Progress ProgressPaths

	// ItemTimeout bounds a single importer invocation (0 = unbounded)
	ItemTimeout time.Duration
}

// TaxonomySources identifies the taxonomy cache and its inputs.
type TaxonomySources struct {
	CachePath      string
	DataDir        string
	MergedDumpPath string
	RankedDumpPath string
}

// ProgressPaths locates the three progress logs.
type ProgressPaths struct {
	ImportedLog string
	FailedLog   string
	DeferredLog string
}

// Validate checks if the BatchConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *BatchConfig) Validate() error {
	var errs []error

	if c.InputDir == "" {
		errs = append(errs, fmt.Errorf("InputDir is required: %w", ErrInvalidConfig))
	}

	if len(c.AllowedPrefixes) == 0 {
		errs = append(errs, fmt.Errorf("at least one allowed prefix is required: %w", ErrInvalidConfig))
	}
	for _, p := range c.AllowedPrefixes {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, fmt.Errorf("allowed prefixes must not be blank: %w", ErrInvalidConfig))
			break
		}
	}

	if c.DatabasePath == "" {
		errs = append(errs, fmt.Errorf("DatabasePath is required: %w", ErrInvalidConfig))
	}

	if c.TemplatePath == "" {
		errs = append(errs, fmt.Errorf("TemplatePath is required: %w", ErrInvalidConfig))
	}

	if c.DatabasePath != "" && c.DatabasePath == c.TemplatePath {
		errs = append(errs, fmt.Errorf("database and template must be different files: %w", ErrInvalidConfig))
	}

	if err := c.Taxonomy.Validate(); err != nil {
		errs = append(errs, err)
	}

	if err := c.Progress.Validate(); err != nil {
		errs = append(errs, err)
	}

	if c.ItemTimeout < 0 {
		errs = append(errs, fmt.Errorf("item timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// Validate checks that every taxonomy location is set.
func (t TaxonomySources) Validate() error {
	var errs []error
	if t.CachePath == "" {
		errs = append(errs, fmt.Errorf("taxonomy cache path is required: %w", ErrInvalidConfig))
	}
	if t.DataDir == "" {
		errs = append(errs, fmt.Errorf("taxonomy data directory is required: %w", ErrInvalidConfig))
	}
	if t.MergedDumpPath == "" {
		errs = append(errs, fmt.Errorf("merged dump path is required: %w", ErrInvalidConfig))
	}
	if t.RankedDumpPath == "" {
		errs = append(errs, fmt.Errorf("ranked lineage dump path is required: %w", ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

// Validate checks that the three logs are set and distinct.
func (p ProgressPaths) Validate() error {
	if p.ImportedLog == "" || p.FailedLog == "" || p.DeferredLog == "" {
		return fmt.Errorf("imported, failed and deferred log paths are required: %w", ErrInvalidConfig)
	}
	if p.ImportedLog == p.FailedLog || p.ImportedLog == p.DeferredLog || p.FailedLog == p.DeferredLog {
		return fmt.Errorf("progress logs must be distinct files: %w", ErrInvalidConfig)
	}
	return nil
}

// Item is one discovered result file considered for import.
type Item struct {
	// Path is the input directory joined with RelativePath, exactly as discovered.
	// It is the key recorded in the progress logs.
	Path string

	// RelativePath is relative to the input directory, using the OS separator
	RelativePath string

	// Identifier is the file name without its result extension: "GCF_000005845.2"
	Identifier string

	SizeBytes  int64
	ModifiedAt time.Time
}

// Outcome is the terminal state of an item within one batch.
type Outcome string

const (
	OutcomePending  Outcome = "pending"
	OutcomeExcluded Outcome = "excluded"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeImported Outcome = "imported"
	OutcomeFailed   Outcome = "failed"
)

// BatchResult summarizes a finished (or aborted) batch.
type BatchResult struct {
	RunID      string
	InputDir   string
	StartedAt  time.Time
	FinishedAt time.Time

	// Provisioned reports what the provisioner did at batch start
	Provisioned ProvisionStatus

	Discovered int
	Excluded   int
	Skipped    int

	// Imported and Failed list item paths in processing order
	Imported []string
	Failed   []string

	// FailedLog is where failures are enumerated for manual inspection
	FailedLog string
}

// HasFailures reports whether any item failed.
func (r BatchResult) HasFailures() bool {
	return len(r.Failed) > 0
}

// Duration returns the wall-clock time of the batch.
func (r BatchResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// PlannedItem pairs an item with the outcome a batch would start from.
// Outcome is one of OutcomeExcluded, OutcomeSkipped or OutcomePending.
type PlannedItem struct {
	Item    Item
	Outcome Outcome
}

// Plan is the side-effect-free classification of an input directory.
type Plan struct {
	Items []PlannedItem
}

// Count returns how many planned items have the given outcome.
func (p Plan) Count(o Outcome) int {
	n := 0
	for _, it := range p.Items {
		if it.Outcome == o {
			n++
		}
	}
	return n
}
