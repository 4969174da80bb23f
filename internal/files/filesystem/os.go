package filesystem

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// osFile implements File interface for OS filesystem
type osFile struct {
	path    string
	relPath string
	entry   fs.DirEntry
}

func (f *osFile) Path() string         { return f.path }
func (f *osFile) RelativePath() string { return f.relPath }

func (f *osFile) Info() FileInfo {
	info, err := f.entry.Info()
	if err != nil {
		// Entry vanished between readdir and stat; report what readdir saw.
		return dirEntryInfo{f.entry}
	}
	return info
}

// osDirectory implements Directory interface for OS filesystem
type osDirectory struct {
	path string
}

func (d *osDirectory) Path() string { return d.path }

// Walk descends into d's resolved location when d itself is a symbolic link.
// Reported paths keep d's path as given.
func (d *osDirectory) Walk(fn func(File, error) error) error {
	root, err := filepath.EvalSymlinks(d.path)
	if err != nil {
		return fn(nil, fmt.Errorf("failed to resolve %s: %w", d.path, err))
	}

	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		var callbackErr error
		func() {
			defer func() {
				if r := recover(); r != nil {
					callbackErr = fmt.Errorf("walk callback panicked at %s: %v", path, r)
				}
			}()

			if walkErr != nil {
				callbackErr = fn(nil, walkErr)
				return
			}

			relPath, relErr := filepath.Rel(root, path)
			if relErr != nil {
				callbackErr = fn(nil, fmt.Errorf("failed to get relative path: %w", relErr))
				return
			}

			callbackErr = fn(&osFile{
				path:    filepath.Join(d.path, relPath),
				relPath: relPath,
				entry:   entry,
			}, nil)
		}()

		return callbackErr
	})
}

// OSFileSystem implements FileSystemProvider for the OS filesystem
type OSFileSystem struct{}

// NewOSFileSystem creates a new OS filesystem provider
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

func (p *OSFileSystem) Open(path string) (Directory, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", path)
	}

	return &osDirectory{path: path}, nil
}

func (p *OSFileSystem) Stat(path string) (FileInfo, error) {
	return os.Stat(path)
}

// dirEntryInfo is the fallback FileInfo for an entry that can no longer be stat'ed.
type dirEntryInfo struct {
	entry fs.DirEntry
}

func (i dirEntryInfo) Name() string       { return i.entry.Name() }
func (i dirEntryInfo) Size() int64        { return 0 }
func (i dirEntryInfo) Mode() fs.FileMode  { return i.entry.Type() }
func (i dirEntryInfo) ModTime() time.Time { return time.Time{} }
func (i dirEntryInfo) IsDir() bool        { return i.entry.IsDir() }
func (i dirEntryInfo) Sys() interface{}   { return nil }
