// Package files groups the input discovery sub-packages:
//   - filesystem: Filesystem abstraction interfaces and implementations (OS and in-memory)
//   - scanner: Result file discovery and identifier derivation
//
// # Usage
//
//	import (
//	    "github.com/vvka-141/asdbload/internal/files/scanner"
//	)
//
//	itemScanner := scanner.NewScanner([]string{".json"})
//	result, err := itemScanner.ScanDirectory("./results")
package files
