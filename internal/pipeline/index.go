package pipeline

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/carenav/internal/dataset"
	"github.com/sells-group/carenav/internal/model"
)

const (
	indexFile   = "index.json"
	summaryFile = "summary.json"
)

// ListEpisodeFiles returns the sorted names of episode artifacts in
// <outputDir>/episodes. The index itself and hidden temp files are not
// listed. A missing directory yields an empty list.
func ListEpisodeFiles(outputDir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(outputDir, EpisodesDir))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, eris.Wrap(err, "pipeline: read episodes dir")
	}

	names := []string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == indexFile || strings.HasPrefix(name, ".") {
			continue
		}
		if filepath.Ext(name) != ".json" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// RefreshIndex rescans the episode directory and rewrites index.json.
// The run summary is left untouched.
func RefreshIndex(outputDir string) (model.RunIndex, error) {
	names, err := ListEpisodeFiles(outputDir)
	if err != nil {
		return model.RunIndex{}, err
	}

	index := model.RunIndex{Episodes: names, Total: len(names)}
	if err := dataset.WriteJSON(filepath.Join(outputDir, EpisodesDir, indexFile), index); err != nil {
		return model.RunIndex{}, eris.Wrap(err, "pipeline: write index")
	}
	return index, nil
}

// WriteIndex refreshes index.json, then writes summary.json with the
// number of episodes that succeeded in this run. The index reflects
// everything on disk, including artifacts from earlier runs.
func WriteIndex(outputDir string, succeeded int) (model.RunIndex, model.RunSummary, error) {
	index, err := RefreshIndex(outputDir)
	if err != nil {
		return model.RunIndex{}, model.RunSummary{}, err
	}

	summary := model.RunSummary{TotalEpisodes: succeeded, OutputDir: outputDir}
	if err := dataset.WriteJSON(filepath.Join(outputDir, summaryFile), summary); err != nil {
		return model.RunIndex{}, model.RunSummary{}, eris.Wrap(err, "pipeline: write summary")
	}
	return index, summary, nil
}
