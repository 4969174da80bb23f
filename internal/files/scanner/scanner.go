package scanner

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vvka-141/asdbload/internal/files/filesystem"
	"github.com/vvka-141/asdbload/pkg/asdb"
)

// Scanner discovers result files in a directory tree.
// Scanner is safe for concurrent use by multiple goroutines as long as
// the provided fsProvider is also thread-safe.
type Scanner struct {
	fsProvider filesystem.FileSystemProvider
	extensions []string
}

// NewScanner creates a scanner over the OS filesystem recognizing the given
// result extensions. With no extensions, asdb.DefaultExtensions is used.
func NewScanner(extensions []string) *Scanner {
	return NewScannerWithFS(filesystem.NewOSFileSystem(), extensions)
}

// NewScannerWithFS creates a scanner with a custom filesystem provider.
// This is primarily useful for testing with in-memory filesystems.
// Panics if fsProvider is nil.
func NewScannerWithFS(fsProvider filesystem.FileSystemProvider, extensions []string) *Scanner {
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	if len(extensions) == 0 {
		extensions = asdb.DefaultExtensions
	}
	return &Scanner{
		fsProvider: fsProvider,
		extensions: NormalizeExtensions(extensions),
	}
}

// ScanDirectory walks inputDir depth-first, visiting the entries of each directory
// in lexical order of their names. Only regular files carrying a recognized
// extension become items; a symbolic link counts when it resolves to a regular
// file. Hidden entries are skipped and symlinked directories are never entered.
// An inputDir that is itself a symbolic link is walked at its target.
//
// Each item's Path is inputDir joined with its relative path; that string is
// the key the progress logs record.
func (s *Scanner) ScanDirectory(inputDir string) (asdb.ScanResult, error) {
	dir, err := s.fsProvider.Open(inputDir)
	if err != nil {
		return asdb.ScanResult{}, fmt.Errorf("failed to open directory: %w", err)
	}

	var items []asdb.Item

	err = dir.Walk(func(file filesystem.File, err error) error {
		if err != nil {
			return fmt.Errorf("error walking path: %w", err)
		}

		relPath := file.RelativePath()
		if relPath == "." {
			return nil
		}

		info := file.Info()
		if isHidden(info.Name()) {
			if info.IsDir() {
				return filesystem.SkipDir
			}
			return nil
		}

		name := info.Name()
		if info.Mode()&fs.ModeSymlink != 0 {
			target, err := s.fsProvider.Stat(file.Path())
			if err != nil {
				return nil
			}
			info = target
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		identifier, ok := s.Identifier(name)
		if !ok {
			return nil
		}

		items = append(items, asdb.Item{
			Path:         filepath.Join(inputDir, relPath),
			RelativePath: relPath,
			Identifier:   identifier,
			SizeBytes:    info.Size(),
			ModifiedAt:   info.ModTime(),
		})
		return nil
	})

	if err != nil {
		return asdb.ScanResult{}, err
	}

	return asdb.ScanResult{
		Items: items,
	}, nil
}

// Identifier derives an item identifier from a file name by removing the longest
// recognized extension: "GCF_000005845.2.json" becomes "GCF_000005845.2".
// It reports false if the name carries no recognized extension or nothing
// would remain.
func (s *Scanner) Identifier(name string) (string, bool) {
	for _, ext := range s.extensions {
		if strings.HasSuffix(name, ext) && len(name) > len(ext) {
			return strings.TrimSuffix(name, ext), true
		}
	}
	return "", false
}

// NormalizeExtensions trims the given extensions, adds a missing leading dot,
// drops blanks and duplicates, and orders the result longest first so that
// ".json.gz" is tried before ".gz".
func NormalizeExtensions(extensions []string) []string {
	seen := make(map[string]bool, len(extensions))
	out := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" || ext == "." {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if seen[ext] {
			continue
		}
		seen[ext] = true
		out = append(out, ext)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i]) > len(out[j])
	})
	return out
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// Verify Scanner implements the interface at compile time
var _ asdb.ItemScanner = (*Scanner)(nil)
