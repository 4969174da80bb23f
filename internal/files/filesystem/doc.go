// Package filesystem provides filesystem abstraction interfaces and implementations.
//
// This package defines interfaces for directory traversal and file access, enabling
// testability through an in-memory implementation while maintaining compatibility
// with the OS filesystem.
//
// Key interfaces:
//   - FileSystemProvider: Factory for creating directory instances
//   - Directory: Represents a directory that can be traversed
//   - File: Represents an individual file with metadata and content accessor
//   - FileInfo: File metadata similar to os.FileInfo
//
// Implementations:
//   - OSFileSystem: Production implementation using the OS filesystem
//   - MemoryFileSystem: In-memory implementation for testing
//
// Both implementations walk depth-first, visiting the entries of each directory in
// lexical order of their names, and never follow symbolic links.
package filesystem
