package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	appErrors "mitremenu/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	_, err := store.Record(ctx, Entry{
		TestID:    "T1055",
		Title:     "Process Injection",
		Command:   "Invoke-AtomicTest T1055 -TestNumbers 4",
		StartedAt: base,
		Duration:  1500 * time.Millisecond,
	})
	require.NoError(t, err)

	id, err := store.Record(ctx, Entry{
		TestID:    "T1106",
		Title:     "Native API",
		Command:   "Invoke-AtomicTest T1106 -TestNumbers 5",
		ExitCode:  1,
		Error:     "command failed: exit status 1",
		StartedAt: base.Add(time.Minute),
		Duration:  250 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	entries, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	newest := entries[0]
	assert.Equal(t, "T1106", newest.TestID)
	assert.Equal(t, 1, newest.ExitCode)
	assert.False(t, newest.Succeeded())
	assert.Equal(t, 250*time.Millisecond, newest.Duration)
	assert.True(t, newest.StartedAt.Equal(base.Add(time.Minute)))

	oldest := entries[1]
	assert.Equal(t, "T1055", oldest.TestID)
	assert.True(t, oldest.Succeeded())
	assert.Equal(t, "Invoke-AtomicTest T1055 -TestNumbers 4", oldest.Command)
}

func TestRecentHonoursLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := store.Record(ctx, Entry{
			TestID:    "T1105",
			Title:     "Ingress Tool Transfer",
			Command:   "Invoke-AtomicTest T1105 -TestNumbers 26",
			StartedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	entries, err := store.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.True(t, entries[0].StartedAt.Equal(base.Add(4*time.Second)))
}

func TestRecordDefaultsStartTime(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	before := time.Now().Add(-time.Second)
	_, err := store.Record(ctx, Entry{TestID: "T1", Title: "t", Command: "c"})
	require.NoError(t, err)

	entries, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].StartedAt.After(before))
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = store.Record(ctx, Entry{TestID: "T1", Title: "t", Command: "c"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	assert.Equal(t, path, reopened.Path())

	entries, err := reopened.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open(context.Background(), " ")
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.CodeHistoryFailed))
}

func TestCloseNilStore(t *testing.T) {
	var store *Store
	assert.NoError(t, store.Close())
}
