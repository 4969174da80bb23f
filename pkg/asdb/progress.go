package asdb

// ProgressStore is the durable record of item outcomes across batch runs.
//
// Implementations are NOT safe for concurrent use; a batch owns its store.
type ProgressStore interface {
	// IsImported reports whether path appears verbatim in the success log.
	IsImported(path string) bool

	// MarkImported appends path to the success log. The entry is durable when
	// MarkImported returns.
	MarkImported(path string) error

	// MarkFailed appends path to the failure log. A failed path is retried by the
	// next batch.
	MarkFailed(path string) error

	// ImportedCount returns the number of distinct paths in the success log.
	ImportedCount() int

	// Close releases the underlying files.
	Close() error
}
