package asdb

// ItemScanner discovers the result files of an input directory.
// Implementations must be safe for concurrent use by multiple goroutines.
type ItemScanner interface {
	// ScanDirectory walks inputDir and returns its items in a deterministic order:
	// depth-first, the entries of each directory in lexical order of their names.
	ScanDirectory(inputDir string) (ScanResult, error)
}

// ScanResult contains the results of scanning an input directory.
type ScanResult struct {
	Items []Item
}

// ItemFilter decides whether an item is eligible for import.
type ItemFilter interface {
	Allowed(item Item) bool
}
