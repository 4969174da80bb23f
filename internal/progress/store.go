package progress

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vvka-141/asdbload/pkg/asdb"
)

// FileStore is the file-backed asdb.ProgressStore.
// It is NOT safe for concurrent use; a batch owns its store.
type FileStore struct {
	logger asdb.Logger

	imported     map[string]struct{}
	importedFile *os.File
	failedFile   *os.File

	// tornTail is set when the success log does not end in a newline
	tornTail bool
	closed   bool
}

// Open loads the success log and prepares the store for a new batch: the success
// log is created if missing and otherwise left as is, the failure log and the
// deferred log are truncated. Errors wrap asdb.ErrProgressStore.
//
// Panics if logger is nil.
func Open(paths asdb.ProgressPaths, logger asdb.Logger) (*FileStore, error) {
	if logger == nil {
		panic("logger cannot be nil")
	}
	if err := paths.Validate(); err != nil {
		return nil, err
	}

	for _, p := range []string{paths.ImportedLog, paths.FailedLog, paths.DeferredLog} {
		if err := ensureParentDir(p); err != nil {
			return nil, err
		}
	}

	importedFile, err := os.OpenFile(paths.ImportedLog, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: open success log: %w", asdb.ErrProgressStore, err)
	}

	imported, torn, err := readEntries(importedFile)
	if err != nil {
		importedFile.Close()
		return nil, fmt.Errorf("%w: read success log %s: %w", asdb.ErrProgressStore, paths.ImportedLog, err)
	}
	if torn {
		logger.Verbose("Success log %s ends without a newline; keeping its last entry", paths.ImportedLog)
	}

	failedFile, err := os.OpenFile(paths.FailedLog, os.O_WRONLY|os.O_CREATE|os.O_TRUNC|os.O_APPEND, 0644)
	if err != nil {
		importedFile.Close()
		return nil, fmt.Errorf("%w: open failure log: %w", asdb.ErrProgressStore, err)
	}

	if err := truncate(paths.DeferredLog); err != nil {
		importedFile.Close()
		failedFile.Close()
		return nil, fmt.Errorf("%w: create deferred log: %w", asdb.ErrProgressStore, err)
	}

	return &FileStore{
		logger:       logger,
		imported:     imported,
		importedFile: importedFile,
		failedFile:   failedFile,
		tornTail:     torn,
	}, nil
}

// IsImported reports whether path appears verbatim in the success log.
func (s *FileStore) IsImported(path string) bool {
	_, ok := s.imported[path]
	return ok
}

// MarkImported appends path to the success log and fsyncs it.
func (s *FileStore) MarkImported(path string) error {
	prefix := ""
	if s.tornTail {
		prefix = "\n"
	}
	if err := s.appendLine(s.importedFile, prefix, path); err != nil {
		return fmt.Errorf("%w: record %s as imported: %w", asdb.ErrProgressStore, path, err)
	}
	s.tornTail = false
	s.imported[path] = struct{}{}
	return nil
}

// MarkFailed appends path to the failure log and fsyncs it.
func (s *FileStore) MarkFailed(path string) error {
	if err := s.appendLine(s.failedFile, "", path); err != nil {
		return fmt.Errorf("%w: record %s as failed: %w", asdb.ErrProgressStore, path, err)
	}
	return nil
}

// ImportedCount returns the number of distinct paths in the success log.
func (s *FileStore) ImportedCount() int {
	return len(s.imported)
}

// Close releases the log files. Calling Close more than once is a no-op.
func (s *FileStore) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return errors.Join(s.importedFile.Close(), s.failedFile.Close())
}

func (s *FileStore) appendLine(f *os.File, prefix, path string) error {
	if s.closed {
		return errors.New("store is closed")
	}
	if path == "" {
		return errors.New("empty path")
	}
	if strings.ContainsAny(path, "\r\n") {
		return errors.New("path contains a line break")
	}
	// Single write per entry.
	if _, err := f.WriteString(prefix + path + "\n"); err != nil {
		return err
	}
	return f.Sync()
}

// readEntries reads one path per line. Blank lines are ignored and a trailing
// carriage return is dropped. torn reports a final line without a newline.
func readEntries(r io.Reader) (entries map[string]struct{}, torn bool, err error) {
	entries = make(map[string]struct{})
	br := bufio.NewReader(r)
	for {
		line, readErr := br.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return nil, false, readErr
		}
		if readErr == io.EOF && line != "" {
			torn = true
		}
		line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
		if line != "" {
			entries[line] = struct{}{}
		}
		if readErr == io.EOF {
			return entries, torn, nil
		}
	}
}

// ReadLog returns the entries of a progress log in file order, duplicates
// included. A missing log reads as empty.
func ReadLog(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", asdb.ErrProgressStore, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := strings.TrimSuffix(sc.Text(), "\r"); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", asdb.ErrProgressStore, path, err)
	}
	return lines, nil
}

func truncate(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: create directory for %s: %w", asdb.ErrProgressStore, path, err)
	}
	return nil
}

var _ asdb.ProgressStore = (*FileStore)(nil)
