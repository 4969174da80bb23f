package filesystem

import "io/fs"

// FileInfo is an alias for fs.FileInfo from the standard library.
type FileInfo = fs.FileInfo

// SkipDir can be returned from a Walk callback on a directory to skip its contents.
var SkipDir = fs.SkipDir

// File represents an individual file or directory met during a walk.
type File interface {
	// Path returns the walked directory path joined with RelativePath.
	// The walked directory is used exactly as given to Open.
	Path() string

	// RelativePath returns the path relative to the walked directory
	RelativePath() string

	// Info returns metadata of the entry itself; symbolic links are not resolved
	Info() FileInfo
}

// Directory represents a directory that can be traversed to discover files
type Directory interface {
	// Path returns the directory path as given to Open
	Path() string

	// Walk traverses the directory tree depth-first, calling fn for the root and for
	// each entry below it. A directory opened through a symbolic link is walked at
	// the link's target; reported paths still start with Path. Entries of a directory are visited in lexical order.
	// If fn returns SkipDir for a directory, its contents are skipped.
	// Any other error stops the walk and is returned.
	Walk(fn func(File, error) error) error
}

// FileSystemProvider is a factory for creating Directory instances
type FileSystemProvider interface {
	// Open opens a directory at the specified path
	Open(path string) (Directory, error)

	// Stat returns file information for the given path, following symbolic links
	Stat(path string) (FileInfo, error)
}
