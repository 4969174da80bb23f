package asdb

import (
	"context"
	"time"
)

// ImportRequest carries everything the per-file importer is invoked with.
type ImportRequest struct {
	ItemPath        string
	TaxonomyCache   string
	AllowedPrefixes []string
	Verbose         bool
	DatabasePath    string

	// Timeout bounds the invocation (0 = unbounded)
	Timeout time.Duration
}

// ItemImporter loads one result file into the database.
// The outcome is communicated solely through the returned error:
// nil means the item was imported.
type ItemImporter interface {
	Import(ctx context.Context, req ImportRequest) error
}

// RefreshRequest carries everything the taxonomy-cache builder is invoked with.
type RefreshRequest struct {
	Sources TaxonomySources
	Verbose bool
	Timeout time.Duration
}

// TaxonomyCacheBuilder produces or refreshes the taxonomy cache.
type TaxonomyCacheBuilder interface {
	Build(ctx context.Context, req RefreshRequest) error
}

// TaxonomyGate makes sure the taxonomy cache is current before any import runs.
// A returned error wraps ErrTaxonomyRefresh.
type TaxonomyGate interface {
	Refresh(ctx context.Context, sources TaxonomySources, verbose bool) error
}

// Importer is the main interface for running import batches.
type Importer interface {
	// Run provisions the database, refreshes the taxonomy cache and imports every
	// eligible item under config.InputDir that is not already recorded as imported.
	// Per-item failures do not stop the batch; they are reported at the end through
	// an error wrapping ErrItemsFailed.
	Run(ctx context.Context, config BatchConfig) (BatchResult, error)

	// Plan classifies the items under config.InputDir without side effects.
	Plan(ctx context.Context, config BatchConfig) (Plan, error)
}
