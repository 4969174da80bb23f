// Package checksum provides content hashing for result files.
//
// Checksums identify the exact bytes an import attempt saw. They are recorded
// in the run journal so an operator can tell whether a file that failed in one
// run was replaced before the next. They never decide whether an item is
// imported; the progress logs do.
//
// # Example Usage
//
//	calculator := checksum.New()
//	sum, err := calculator.CalculateFile("results/GCF_000005845.2.json")
//
// # Thread Safety
//
// SHA256 is safe for concurrent use by multiple goroutines.
package checksum
