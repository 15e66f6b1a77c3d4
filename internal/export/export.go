// Package export re-reads persisted episode artifacts and writes them as
// tabular reports for people (XLSX) or analytics tools (Parquet).
package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/carenav/internal/model"
	"github.com/sells-group/carenav/internal/pipeline"
)

// Format names an export file format.
type Format string

const (
	FormatXLSX    Format = "xlsx"
	FormatParquet Format = "parquet"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatXLSX, FormatParquet:
		return f, nil
	default:
		return "", eris.Errorf("export: unsupported format %q (want xlsx or parquet)", s)
	}
}

// LoadArtifacts reads every episode artifact under outputDir in index order.
func LoadArtifacts(outputDir string) ([]model.EpisodeOutput, error) {
	names, err := pipeline.ListEpisodeFiles(outputDir)
	if err != nil {
		return nil, err
	}

	out := make([]model.EpisodeOutput, 0, len(names))
	for _, name := range names {
		path := filepath.Join(outputDir, pipeline.EpisodesDir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "export: read %s", path)
		}
		var ep model.EpisodeOutput
		if err := json.Unmarshal(data, &ep); err != nil {
			return nil, eris.Wrapf(err, "export: decode %s", path)
		}
		out = append(out, ep)
	}
	return out, nil
}

// Write exports episodes to path in the given format and returns the
// number of data rows written.
func Write(format Format, path string, episodes []model.EpisodeOutput) (int, error) {
	switch format {
	case FormatXLSX:
		return WriteWorkbook(path, episodes)
	case FormatParquet:
		return WriteParquet(path, EpisodeRows(episodes))
	default:
		return 0, eris.Errorf("export: unsupported format %q", format)
	}
}
