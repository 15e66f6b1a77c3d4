package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/carenav/internal/model"
)

func newTestSQLite(t *testing.T) Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() }) //nolint:errcheck
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func storeTestSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("CreateAndGetRun", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		run, err := s.CreateRun(ctx, "synthetic_dataset", "outputs")
		require.NoError(t, err)
		assert.NotEmpty(t, run.ID)
		assert.Equal(t, model.RunStatusQueued, run.Status)

		got, err := s.GetRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, run.ID, got.ID)
		assert.Equal(t, "synthetic_dataset", got.DatasetDir)
		assert.Equal(t, "outputs", got.OutputDir)
		assert.Equal(t, model.RunStatusQueued, got.Status)
		assert.Nil(t, got.Result)
	})

	t.Run("GetRunNotFound", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetRun(context.Background(), "nonexistent")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("UpdateRunStatus", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		run, err := s.CreateRun(ctx, "d", "o")
		require.NoError(t, err)

		require.NoError(t, s.UpdateRunStatus(ctx, run.ID, model.RunStatusProcessing))

		got, err := s.GetRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RunStatusProcessing, got.Status)
	})

	t.Run("UpdateRunStatusNotFound", func(t *testing.T) {
		s := newStore(t)
		err := s.UpdateRunStatus(context.Background(), "nonexistent", model.RunStatusFailed)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("CompleteRun", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		run, err := s.CreateRun(ctx, "d", "o")
		require.NoError(t, err)

		result := &model.RunResult{
			Episodes:   3,
			Succeeded:  2,
			Skipped:    1,
			IndexTotal: 2,
			DurationMs: 42,
		}
		require.NoError(t, s.CompleteRun(ctx, run.ID, model.RunStatusComplete, result))

		got, err := s.GetRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RunStatusComplete, got.Status)
		require.NotNil(t, got.Result)
		assert.Equal(t, *result, *got.Result)
	})

	t.Run("CompleteRunNotFound", func(t *testing.T) {
		s := newStore(t)
		err := s.CompleteRun(context.Background(), "nonexistent", model.RunStatusFailed, &model.RunResult{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("ListRuns", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		r1, err := s.CreateRun(ctx, "d1", "o1")
		require.NoError(t, err)
		_, err = s.CreateRun(ctx, "d2", "o2")
		require.NoError(t, err)
		require.NoError(t, s.UpdateRunStatus(ctx, r1.ID, model.RunStatusFailed))

		all, err := s.ListRuns(ctx, RunFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		failed, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusFailed})
		require.NoError(t, err)
		require.Len(t, failed, 1)
		assert.Equal(t, r1.ID, failed[0].ID)

		limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, limited, 1)

		offset, err := s.ListRuns(ctx, RunFilter{Limit: 10, Offset: 1})
		require.NoError(t, err)
		assert.Len(t, offset, 1)
	})

	t.Run("RecordAndListEpisodes", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		run, err := s.CreateRun(ctx, "d", "o")
		require.NoError(t, err)

		require.NoError(t, s.RecordEpisode(ctx, &model.EpisodeRecord{
			RunID:     run.ID,
			EpisodeID: "ep_b",
			PatientID: "pt_1",
			Status:    model.EpisodeStatusSuccess,
			Phases: []model.PhaseResult{
				{Name: "triage", Status: model.PhaseStatusComplete, Duration: 1},
			},
		}))
		require.NoError(t, s.RecordEpisode(ctx, &model.EpisodeRecord{
			RunID:     run.ID,
			EpisodeID: "ep_a",
			PatientID: "pt_missing",
			Status:    model.EpisodeStatusSkipped,
			Reason:    "patient not found",
		}))

		eps, err := s.ListEpisodes(ctx, run.ID)
		require.NoError(t, err)
		require.Len(t, eps, 2)
		assert.Equal(t, "ep_a", eps[0].EpisodeID)
		assert.Equal(t, model.EpisodeStatusSkipped, eps[0].Status)
		assert.Equal(t, "patient not found", eps[0].Reason)
		assert.Empty(t, eps[0].Phases)
		assert.Equal(t, "ep_b", eps[1].EpisodeID)
		require.Len(t, eps[1].Phases, 1)
		assert.Equal(t, "triage", eps[1].Phases[0].Name)
	})

	t.Run("RecordEpisodeUpsert", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		run, err := s.CreateRun(ctx, "d", "o")
		require.NoError(t, err)

		rec := &model.EpisodeRecord{RunID: run.ID, EpisodeID: "ep_1", Status: model.EpisodeStatusFailed, Reason: "boom"}
		require.NoError(t, s.RecordEpisode(ctx, rec))
		require.NoError(t, s.RecordEpisode(ctx, &model.EpisodeRecord{RunID: run.ID, EpisodeID: "ep_1", Status: model.EpisodeStatusSuccess}))

		eps, err := s.ListEpisodes(ctx, run.ID)
		require.NoError(t, err)
		require.Len(t, eps, 1)
		assert.Equal(t, model.EpisodeStatusSuccess, eps[0].Status)
		assert.Empty(t, eps[0].Reason)
	})

	t.Run("ListEpisodesEmpty", func(t *testing.T) {
		s := newStore(t)
		eps, err := s.ListEpisodes(context.Background(), "no-such-run")
		require.NoError(t, err)
		assert.Empty(t, eps)
	})
}

func TestSQLiteStore(t *testing.T) {
	storeTestSuite(t, newTestSQLite)
}
