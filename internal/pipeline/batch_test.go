package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/carenav/internal/dataset"
	"github.com/sells-group/carenav/internal/model"
	"github.com/sells-group/carenav/internal/store"
)

func readTree(t *testing.T, root string) map[string][]byte {
	t.Helper()
	files := map[string][]byte{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		files[rel] = data
		return nil
	})
	require.NoError(t, err)
	return files
}

func TestRunAll_IndexAndSummary(t *testing.T) {
	root := newFixtureDataset(t)
	out := t.TempDir()
	p := New(testConfig(out), nil, dataset.Open(root), nil)

	res, err := p.RunAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Count(model.EpisodeStatusSuccess))
	assert.Equal(t, 1, res.Count(model.EpisodeStatusSkipped))
	assert.Equal(t, model.RunIndex{Episodes: []string{"ep_1.json", "ep_2.json"}, Total: 2}, res.Index)
	assert.Equal(t, model.RunSummary{TotalEpisodes: 2, OutputDir: out}, res.Summary)

	index, err := os.ReadFile(filepath.Join(out, "episodes", "index.json"))
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"episodes\": [\n    \"ep_1.json\",\n    \"ep_2.json\"\n  ],\n  \"total\": 2\n}\n", string(index))

	summary, err := os.ReadFile(filepath.Join(out, "summary.json"))
	require.NoError(t, err)
	assert.JSONEq(t, fmt.Sprintf(`{"total_episodes":2,"output_dir":%q}`, out), string(summary))
}

func TestRunAll_Idempotent(t *testing.T) {
	root := newFixtureDataset(t)
	out := t.TempDir()

	_, err := New(testConfig(out), nil, dataset.Open(root), nil).RunAll(context.Background())
	require.NoError(t, err)
	first := readTree(t, out)

	_, err = New(testConfig(out), nil, dataset.Open(root), nil).RunAll(context.Background())
	require.NoError(t, err)
	second := readTree(t, out)

	assert.Equal(t, first, second)
	assert.Len(t, first, 4) // two episodes, index, summary
}

func TestRunAll_SkippedEpisodeNotIndexed(t *testing.T) {
	root := newFixtureDataset(t)
	out := t.TempDir()

	res, err := New(testConfig(out), nil, dataset.Open(root), nil).RunAll(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, res.Index.Episodes, "ep_3.json")

	skipped := res.Outcomes[2]
	assert.Equal(t, "ep_3", skipped.Episode.EpisodeID)
	assert.Equal(t, model.EpisodeStatusSkipped, skipped.Status)
}

func TestRunAll_OutputsInEpisodeOrder(t *testing.T) {
	root := newFixtureDataset(t)

	var episodes []model.Episode
	for i := range 12 {
		id := fmt.Sprintf("ep_%02d", 12-i)
		writeEpisode(t, root, id, "skin rash")
		episodes = append(episodes, model.Episode{EpisodeID: id, PatientID: "pt_1"})
	}
	writeJSON(t, root, "metadata/episodes.json", episodes)

	cfg := testConfig(t.TempDir())
	cfg.Batch.Concurrency = 4
	res, err := New(cfg, nil, dataset.Open(root), nil).RunAll(context.Background())
	require.NoError(t, err)

	outputs := res.Outputs()
	require.Len(t, outputs, 12)
	for i, o := range outputs {
		assert.Equal(t, episodes[i].EpisodeID, o.EpisodeID)
	}
	assert.Equal(t, "ep_01.json", res.Index.Episodes[0])
}

func TestRunAll_FailFast(t *testing.T) {
	root := newFixtureDataset(t)
	require.NoError(t, os.Remove(filepath.Join(root, "clinical_notes", "ep_2.json")))
	out := t.TempDir()

	cfg := testConfig(out)
	cfg.Batch.Concurrency = 1
	res, err := New(cfg, nil, dataset.Open(root), nil).RunAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ep_2")
	assert.Contains(t, err.Error(), "clinical_notes")
	require.NotNil(t, res)
	assert.Equal(t, model.EpisodeStatusFailed, res.Outcomes[1].Status)

	_, statErr := os.Stat(filepath.Join(out, "episodes", "index.json"))
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Join(out, "summary.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunAll_ContinueOnFailure(t *testing.T) {
	root := newFixtureDataset(t)
	require.NoError(t, os.Remove(filepath.Join(root, "billing", "ep_1.json")))
	out := t.TempDir()

	cfg := testConfig(out)
	cfg.Batch.FailFast = false
	res, err := New(cfg, nil, dataset.Open(root), nil).RunAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Count(model.EpisodeStatusFailed))
	assert.Equal(t, 1, res.Count(model.EpisodeStatusSuccess))
	assert.Equal(t, []string{"ep_2.json"}, res.Index.Episodes)
	assert.Equal(t, 1, res.Summary.TotalEpisodes)
}

func TestRunAll_IndexIncludesEarlierArtifacts(t *testing.T) {
	root := newFixtureDataset(t)
	out := t.TempDir()
	writeJSON(t, out, "episodes/ep_0.json", map[string]string{"episode_id": "ep_0"})

	res, err := New(testConfig(out), nil, dataset.Open(root), nil).RunAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ep_0.json", "ep_1.json", "ep_2.json"}, res.Index.Episodes)
	assert.Equal(t, 3, res.Index.Total)
	assert.Equal(t, 2, res.Summary.TotalEpisodes)
}

func TestRunAll_MissingReferences(t *testing.T) {
	root := t.TempDir()
	st := &mockStore{}
	st.On("CreateRun", mock.Anything, root, mock.Anything).Return(&model.Run{ID: "run-1"}, nil)
	st.On("CompleteRun", mock.Anything, "run-1", model.RunStatusFailed, mock.MatchedBy(func(r *model.RunResult) bool {
		return r.Error != ""
	})).Return(nil)

	_, err := New(testConfig(t.TempDir()), st, dataset.Open(root), nil).RunAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load references")
	st.AssertExpectations(t)
}

func TestRunAll_RecordsRunHistory(t *testing.T) {
	root := newFixtureDataset(t)
	out := t.TempDir()

	st := &mockStore{}
	st.On("CreateRun", mock.Anything, root, out).Return(&model.Run{ID: "run-1"}, nil)
	st.On("UpdateRunStatus", mock.Anything, "run-1", model.RunStatusProcessing).Return(nil)
	st.On("UpdateRunStatus", mock.Anything, "run-1", model.RunStatusIndexing).Return(nil)
	st.On("RecordEpisode", mock.Anything, mock.MatchedBy(func(r *model.EpisodeRecord) bool {
		return r.RunID == "run-1"
	})).Return(nil).Times(3)
	st.On("CompleteRun", mock.Anything, "run-1", model.RunStatusComplete, mock.MatchedBy(func(r *model.RunResult) bool {
		return r.Episodes == 3 && r.Succeeded == 2 && r.Skipped == 1 && r.Failed == 0 && r.IndexTotal == 2
	})).Return(nil)

	res, err := New(testConfig(out), st, dataset.Open(root), nil).RunAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "run-1", res.RunID)
	st.AssertExpectations(t)
}

func TestRunAll_StoreErrorsDoNotFailBatch(t *testing.T) {
	root := newFixtureDataset(t)
	out := t.TempDir()

	st := &mockStore{}
	st.On("CreateRun", mock.Anything, root, out).Return(&model.Run{ID: "run-1"}, nil)
	st.On("UpdateRunStatus", mock.Anything, "run-1", mock.Anything).Return(errors.New("db locked"))
	st.On("RecordEpisode", mock.Anything, mock.Anything).Return(errors.New("db locked"))
	st.On("CompleteRun", mock.Anything, "run-1", model.RunStatusComplete, mock.Anything).Return(errors.New("db locked"))

	res, err := New(testConfig(out), st, dataset.Open(root), nil).RunAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Index.Total)
}

func TestRunAll_CreateRunError(t *testing.T) {
	st := &mockStore{}
	st.On("CreateRun", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	_, err := New(testConfig(t.TempDir()), st, dataset.Open(t.TempDir()), nil).RunAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create run")
}

func TestRunAll_SQLiteHistory(t *testing.T) {
	root := newFixtureDataset(t)
	out := t.TempDir()
	ctx := context.Background()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(ctx))

	res, err := New(testConfig(out), st, dataset.Open(root), nil).RunAll(ctx)
	require.NoError(t, err)

	run, err := st.GetRun(ctx, res.RunID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	require.NotNil(t, run.Result)
	assert.Equal(t, 2, run.Result.Succeeded)

	eps, err := st.ListEpisodes(ctx, res.RunID)
	require.NoError(t, err)
	require.Len(t, eps, 3)
	assert.Equal(t, model.EpisodeStatusSuccess, eps[0].Status)
	assert.Len(t, eps[0].Phases, 9)
	assert.Equal(t, model.EpisodeStatusSkipped, eps[2].Status)
}

func TestRunAll_Cancelled(t *testing.T) {
	root := newFixtureDataset(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := testConfig(t.TempDir())
	cfg.Batch.FailFast = false
	_, err := New(cfg, nil, dataset.Open(root), nil).RunAll(ctx)
	require.Error(t, err)
}
