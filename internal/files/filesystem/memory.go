package filesystem

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// memoryFileInfo implements fs.FileInfo for in-memory entries
type memoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return f.mode }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return f.mode.IsDir() }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

// memoryEntry is a stored file, directory or symlink keyed by its cleaned slash path.
type memoryEntry struct {
	absPath string
	content []byte
	info    *memoryFileInfo
}

// memoryFile is a memoryEntry seen from a particular walk.
type memoryFile struct {
	entry   *memoryEntry
	path    string
	relPath string
}

func (f *memoryFile) Path() string         { return f.path }
func (f *memoryFile) RelativePath() string { return f.relPath }
func (f *memoryFile) Info() FileInfo       { return f.entry.info }

// memoryDirectory implements Directory interface for in-memory filesystem
type memoryDirectory struct {
	path    string // as given to Open
	absPath string
	fs      *MemoryFileSystem
}

func (d *memoryDirectory) Path() string { return d.path }

func (d *memoryDirectory) Walk(fn func(File, error) error) error {
	root := d.fs.entries[d.absPath]
	err := d.walk(root, ".", fn)
	if err == SkipDir {
		return nil
	}
	return err
}

func (d *memoryDirectory) walk(entry *memoryEntry, relPath string, fn func(File, error) error) error {
	file := &memoryFile{
		entry:   entry,
		path:    joinGiven(d.path, relPath),
		relPath: filepath.FromSlash(relPath),
	}

	var callbackErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				callbackErr = fmt.Errorf("walk callback panicked at %s: %v", file.path, r)
			}
		}()
		callbackErr = fn(file, nil)
	}()

	if !entry.info.IsDir() {
		if callbackErr == SkipDir {
			return nil
		}
		return callbackErr
	}
	if callbackErr != nil {
		return callbackErr
	}

	for _, child := range d.fs.children(entry.absPath) {
		childRel := child.info.name
		if relPath != "." {
			childRel = relPath + "/" + child.info.name
		}
		if err := d.walk(child, childRel, fn); err != nil {
			if err == SkipDir {
				continue
			}
			return err
		}
	}
	return nil
}

func joinGiven(dir, relPath string) string {
	if relPath == "." {
		return dir
	}
	return filepath.Join(dir, filepath.FromSlash(relPath))
}

// MemoryFileSystem implements FileSystemProvider for in-memory testing.
// It is not safe for concurrent modification.
type MemoryFileSystem struct {
	entries map[string]*memoryEntry
	root    string
}

// NewMemoryFileSystem creates a new in-memory filesystem.
// The root path is normalized to use forward slashes for virtual filesystem consistency.
func NewMemoryFileSystem(root string) *MemoryFileSystem {
	root = path.Clean(filepath.ToSlash(root))

	mfs := &MemoryFileSystem{
		entries: make(map[string]*memoryEntry),
		root:    root,
	}
	mfs.addDir(root)
	return mfs
}

// AddFile adds a regular file to the in-memory filesystem
func (mfs *MemoryFileSystem) AddFile(filePath string, content string) {
	mfs.AddFileWithTime(filePath, content, time.Now())
}

// AddFileWithTime adds a regular file with a specific modification time
func (mfs *MemoryFileSystem) AddFileWithTime(filePath string, content string, modTime time.Time) {
	absPath := mfs.resolve(filePath)
	mfs.ensureDirectoriesExist(absPath)

	contentBytes := []byte(content)
	mfs.entries[absPath] = &memoryEntry{
		absPath: absPath,
		content: contentBytes,
		info: &memoryFileInfo{
			name:    path.Base(absPath),
			size:    int64(len(contentBytes)),
			mode:    0644,
			modTime: modTime,
		},
	}
}

// AddDir adds an empty directory
func (mfs *MemoryFileSystem) AddDir(dirPath string) {
	absPath := mfs.resolve(dirPath)
	mfs.ensureDirectoriesExist(absPath)
	mfs.addDir(absPath)
}

// AddSymlink adds a symbolic link entry. The target is recorded for Stat only;
// walks report the link itself and never descend into it.
func (mfs *MemoryFileSystem) AddSymlink(linkPath string, target string) {
	absPath := mfs.resolve(linkPath)
	mfs.ensureDirectoriesExist(absPath)
	mfs.entries[absPath] = &memoryEntry{
		absPath: absPath,
		content: []byte(target),
		info: &memoryFileInfo{
			name:    path.Base(absPath),
			mode:    0777 | fs.ModeSymlink,
			modTime: time.Now(),
		},
	}
}

func (mfs *MemoryFileSystem) addDir(absPath string) {
	if e, ok := mfs.entries[absPath]; ok && e.info.IsDir() {
		return
	}
	mfs.entries[absPath] = &memoryEntry{
		absPath: absPath,
		info: &memoryFileInfo{
			name:    path.Base(absPath),
			mode:    0755 | fs.ModeDir,
			modTime: time.Now(),
		},
	}
}

// ensureDirectoriesExist creates directory entries for all parent directories
func (mfs *MemoryFileSystem) ensureDirectoriesExist(entryPath string) {
	dir := path.Dir(entryPath)
	if dir == entryPath {
		return
	}
	if _, exists := mfs.entries[dir]; exists {
		return
	}
	mfs.ensureDirectoriesExist(dir)
	mfs.addDir(dir)
}

// resolve turns a path relative to the filesystem root into a cleaned absolute slash path.
func (mfs *MemoryFileSystem) resolve(p string) string {
	p = filepath.ToSlash(p)
	if p == "" || p == "." {
		return mfs.root
	}
	if !path.IsAbs(p) {
		p = path.Join(mfs.root, p)
	}
	return path.Clean(p)
}

// children returns the direct children of dir sorted by name.
func (mfs *MemoryFileSystem) children(dir string) []*memoryEntry {
	var out []*memoryEntry
	for p, e := range mfs.entries {
		if p != dir && path.Dir(p) == dir {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].info.name < out[j].info.name
	})
	return out
}

// Open implements FileSystemProvider.Open
func (mfs *MemoryFileSystem) Open(openPath string) (Directory, error) {
	absPath, err := mfs.follow(mfs.resolve(openPath))
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	entry, exists := mfs.entries[absPath]
	if !exists {
		return nil, fmt.Errorf("failed to access path: %s: %w", openPath, fs.ErrNotExist)
	}
	if !entry.info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", openPath)
	}

	return &memoryDirectory{
		path:    openPath,
		absPath: absPath,
		fs:      mfs,
	}, nil
}

// Stat implements FileSystemProvider.Stat
func (mfs *MemoryFileSystem) Stat(statPath string) (FileInfo, error) {
	absPath, err := mfs.follow(mfs.resolve(statPath))
	if err != nil {
		return nil, err
	}
	entry, exists := mfs.entries[absPath]
	if !exists {
		return nil, fmt.Errorf("path not found: %s: %w", statPath, fs.ErrNotExist)
	}
	return entry.info, nil
}

// follow resolves a chain of symlinks, giving up after a fixed depth.
func (mfs *MemoryFileSystem) follow(absPath string) (string, error) {
	for i := 0; i < 8; i++ {
		entry, ok := mfs.entries[absPath]
		if !ok || entry.info.mode&fs.ModeSymlink == 0 {
			return absPath, nil
		}
		target := string(entry.content)
		if !path.IsAbs(target) {
			target = path.Join(path.Dir(absPath), target)
		}
		absPath = path.Clean(target)
	}
	return "", fmt.Errorf("too many levels of symbolic links: %s", strings.TrimPrefix(absPath, mfs.root+"/"))
}
