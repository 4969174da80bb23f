package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/asdbload/pkg/asdb"
)

func openMemory(t *testing.T) *SQLiteJournal {
	t.Helper()
	j, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_RunLifecycle(t *testing.T) {
	ctx := context.Background()
	j := openMemory(t)

	runID := uuid.NewString()
	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, j.StartRun(ctx, asdb.RunRecord{ID: runID, InputDir: "results", StartedAt: started}))

	runs, err := j.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, asdb.RunRunning, runs[0].Status)
	assert.Nil(t, runs[0].FinishedAt)
	assert.True(t, runs[0].StartedAt.Equal(started))

	finished := started.Add(90 * time.Second)
	require.NoError(t, j.FinishRun(ctx, asdb.RunRecord{
		ID:         runID,
		FinishedAt: &finished,
		Status:     asdb.RunFailed,
		Discovered: 5,
		Excluded:   1,
		Skipped:    1,
		Imported:   2,
		Failed:     1,
		Error:      "one or more items failed",
	}))

	runs, err = j.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	got := runs[0]
	assert.Equal(t, asdb.RunFailed, got.Status)
	require.NotNil(t, got.FinishedAt)
	assert.True(t, got.FinishedAt.Equal(finished))
	assert.Equal(t, "results", got.InputDir)
	assert.Equal(t, 5, got.Discovered)
	assert.Equal(t, 1, got.Excluded)
	assert.Equal(t, 1, got.Skipped)
	assert.Equal(t, 2, got.Imported)
	assert.Equal(t, 1, got.Failed)
	assert.Equal(t, "one or more items failed", got.Error)
}

func TestJournal_Items(t *testing.T) {
	ctx := context.Background()
	j := openMemory(t)

	runID := uuid.NewString()
	require.NoError(t, j.StartRun(ctx, asdb.RunRecord{ID: runID, InputDir: "results", StartedAt: time.Now()}))

	require.NoError(t, j.RecordItem(ctx, asdb.ItemRecord{
		RunID: runID, Path: "results/GCF_1.json", Identifier: "GCF_1",
		Checksum: "abc", Outcome: asdb.OutcomeImported, Duration: 1500 * time.Millisecond,
	}))
	require.NoError(t, j.RecordItem(ctx, asdb.ItemRecord{
		RunID: runID, Path: "results/GCF_2.json", Identifier: "GCF_2",
		Outcome: asdb.OutcomeFailed, ExitCode: 3, Error: "asdb-import exited with status 3",
	}))

	items, err := j.Items(ctx, runID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "results/GCF_1.json", items[0].Path)
	assert.Equal(t, asdb.OutcomeImported, items[0].Outcome)
	assert.Equal(t, 1500*time.Millisecond, items[0].Duration)
	assert.Equal(t, "abc", items[0].Checksum)
	assert.False(t, items[0].RecordedAt.IsZero())

	assert.Equal(t, asdb.OutcomeFailed, items[1].Outcome)
	assert.Equal(t, 3, items[1].ExitCode)

	none, err := j.Items(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestJournal_RecordItemForUnknownRun(t *testing.T) {
	j := openMemory(t)
	err := j.RecordItem(context.Background(), asdb.ItemRecord{RunID: "missing", Path: "x", Outcome: asdb.OutcomeImported})
	assert.ErrorIs(t, err, asdb.ErrJournal)
}

func TestJournal_FinishUnknownRun(t *testing.T) {
	j := openMemory(t)
	err := j.FinishRun(context.Background(), asdb.RunRecord{ID: "missing", Status: asdb.RunSucceeded})
	assert.ErrorIs(t, err, asdb.ErrJournal)
}

func TestJournal_RecentRunsNewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	j := openMemory(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 5; i++ {
		id := uuid.NewString()
		ids = append(ids, id)
		// Sub-second offsets check that ordering is chronological, not textual.
		started := base.Add(time.Duration(i) * 500 * time.Millisecond)
		require.NoError(t, j.StartRun(ctx, asdb.RunRecord{ID: id, InputDir: "in", StartedAt: started}))
	}

	runs, err := j.RecentRuns(ctx, 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, ids[4], runs[0].ID)
	assert.Equal(t, ids[3], runs[1].ID)
	assert.Equal(t, ids[2], runs[2].ID)

	all, err := j.RecentRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestJournal_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", asdb.DefaultJournalPath)

	j, err := Open(path)
	require.NoError(t, err)
	runID := uuid.NewString()
	require.NoError(t, j.StartRun(ctx, asdb.RunRecord{ID: runID, InputDir: "in", StartedAt: time.Now()}))
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()

	runs, err := j.RecentRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ID)
}

func TestNullJournal(t *testing.T) {
	ctx := context.Background()
	j := NewNullJournal()

	assert.NoError(t, j.StartRun(ctx, asdb.RunRecord{ID: "x"}))
	assert.NoError(t, j.RecordItem(ctx, asdb.ItemRecord{RunID: "x"}))
	assert.NoError(t, j.FinishRun(ctx, asdb.RunRecord{ID: "x"}))
	assert.NoError(t, j.Close())

	_, err := j.RecentRuns(ctx, 1)
	assert.Error(t, err)
}
