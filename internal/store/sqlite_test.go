package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/carenav/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestNewSQLite_InvalidDSN(t *testing.T) {
	_, err := NewSQLite(filepath.Join(t.TempDir(), "missing", "dir", "test.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite")
}

func TestSQLite_WALMode(t *testing.T) {
	st := newTestSQLiteStore(t)

	var mode string
	require.NoError(t, st.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	require.NoError(t, st.Migrate(context.Background()))
}

func TestSQLite_CloseAndReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Migrate(ctx))
	run, err := st.CreateRun(ctx, "d", "o")
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st2, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st2.Close() }) //nolint:errcheck

	got, err := st2.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
}

func TestSQLite_ConcurrentRecordEpisode(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "d", "o")
	require.NoError(t, err)

	ids := []string{"ep_1", "ep_2", "ep_3", "ep_4", "ep_5", "ep_6", "ep_7", "ep_8"}
	var wg sync.WaitGroup
	errs := make([]error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = st.RecordEpisode(ctx, &model.EpisodeRecord{
				RunID:     run.ID,
				EpisodeID: id,
				Status:    model.EpisodeStatusSuccess,
			})
		}()
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	eps, err := st.ListEpisodes(ctx, run.ID)
	require.NoError(t, err)
	assert.Len(t, eps, len(ids))
}
