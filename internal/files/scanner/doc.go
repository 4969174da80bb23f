// Package scanner provides discovery of analysis result files.
//
// The scanner package is responsible for:
//   - Recursively discovering result files in an input directory tree
//   - Deriving each item's identifier from its file name
//   - Producing items in a documented, deterministic order
//
// The scanner is designed to be filesystem-agnostic through the use of
// filesystem.FileSystemProvider interface, enabling both production use
// with the OS filesystem and testing with in-memory filesystems.
package scanner
