package services

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/vvka-141/asdbload/pkg/asdb"
)

type mockProvisioner struct {
	status asdb.ProvisionStatus
	err    error
	calls  int
}

func (m *mockProvisioner) Ensure(_ context.Context, _, _ string) (asdb.ProvisionStatus, error) {
	m.calls++
	if m.err != nil {
		return asdb.ProvisionUnknown, m.err
	}
	if m.status == asdb.ProvisionUnknown {
		return asdb.AlreadyPresent, nil
	}
	return m.status, nil
}

type mockGate struct {
	err   error
	calls int
}

func (m *mockGate) Refresh(_ context.Context, _ asdb.TaxonomySources, _ bool) error {
	m.calls++
	return m.err
}

type mockScanner struct {
	result asdb.ScanResult
	err    error
}

func (m *mockScanner) ScanDirectory(_ string) (asdb.ScanResult, error) {
	return m.result, m.err
}

// identifierFilter allows only items carrying exactly this identifier.
type identifierFilter string

func (f identifierFilter) Allowed(item asdb.Item) bool {
	return item.Identifier == string(f)
}

// fakeImporter succeeds unless the item path is listed in failures.
// It appends every request it sees to requests.
type fakeImporter struct {
	mu       sync.Mutex
	failures map[string]error
	requests []asdb.ImportRequest
	onImport func(req asdb.ImportRequest)
}

func newFakeImporter() *fakeImporter {
	return &fakeImporter{failures: map[string]error{}}
}

func (f *fakeImporter) failOn(path string, err error) *fakeImporter {
	f.failures[path] = err
	return f
}

func (f *fakeImporter) Import(_ context.Context, req asdb.ImportRequest) error {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	hook := f.onImport
	err := f.failures[req.ItemPath]
	f.mu.Unlock()

	if hook != nil {
		hook(req)
	}
	return err
}

func (f *fakeImporter) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.requests))
	for i, r := range f.requests {
		out[i] = r.ItemPath
	}
	return out
}

// memoryStore is an in-memory asdb.ProgressStore with optional write faults.
type memoryStore struct {
	imported    map[string]bool
	importedLog []string
	failedLog   []string
	markErr     error
	closed      bool
	closeErr    error
}

func newMemoryStore(preloaded ...string) *memoryStore {
	s := &memoryStore{imported: map[string]bool{}}
	for _, p := range preloaded {
		s.imported[p] = true
	}
	return s
}

func (s *memoryStore) IsImported(path string) bool { return s.imported[path] }
func (s *memoryStore) ImportedCount() int           { return len(s.imported) }

func (s *memoryStore) MarkImported(path string) error {
	if s.markErr != nil {
		return s.markErr
	}
	s.imported[path] = true
	s.importedLog = append(s.importedLog, path)
	return nil
}

func (s *memoryStore) MarkFailed(path string) error {
	if s.markErr != nil {
		return s.markErr
	}
	s.failedLog = append(s.failedLog, path)
	return nil
}

func (s *memoryStore) Close() error {
	s.closed = true
	return s.closeErr
}

func (s *memoryStore) opener() StoreOpener {
	return func(asdb.ProgressPaths) (asdb.ProgressStore, error) { return s, nil }
}

// recordingJournal keeps everything written to it.
type recordingJournal struct {
	started  []asdb.RunRecord
	items    []asdb.ItemRecord
	finished []asdb.RunRecord
	err      error
}

func (j *recordingJournal) StartRun(_ context.Context, run asdb.RunRecord) error {
	j.started = append(j.started, run)
	return j.err
}

func (j *recordingJournal) RecordItem(_ context.Context, item asdb.ItemRecord) error {
	j.items = append(j.items, item)
	return j.err
}

func (j *recordingJournal) FinishRun(_ context.Context, run asdb.RunRecord) error {
	j.finished = append(j.finished, run)
	return j.err
}

func (j *recordingJournal) RecentRuns(context.Context, int) ([]asdb.RunRecord, error) {
	return nil, errors.New("not implemented")
}

func (j *recordingJournal) Items(context.Context, string) ([]asdb.ItemRecord, error) {
	return nil, errors.New("not implemented")
}

func (j *recordingJournal) Close() error { return nil }

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
