package dataset

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// ManifestFile is the manifest filename written at the dataset root.
const ManifestFile = "manifest.json"

// Manifest lists every JSON file in the dataset, grouped by category
// directory. Categories with no files are omitted.
type Manifest struct {
	GeneratedAt string              `json:"generated_at"`
	TotalFiles  int                 `json:"total_files"`
	Categories  map[string][]string `json:"categories"`
}

// BuildManifest scans the immediate subdirectories of root.
func BuildManifest(root string, now time.Time) (*Manifest, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, eris.Wrapf(err, "manifest: read dataset root %s", root)
	}

	m := &Manifest{
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Categories:  make(map[string][]string),
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		files, err := filepath.Glob(filepath.Join(root, e.Name(), "*.json"))
		if err != nil {
			return nil, eris.Wrapf(err, "manifest: glob %s", e.Name())
		}
		if len(files) == 0 {
			continue
		}
		names := make([]string, 0, len(files))
		for _, f := range files {
			base := filepath.Base(f)
			if strings.HasPrefix(base, ".") {
				continue
			}
			names = append(names, base)
		}
		sort.Strings(names)
		m.Categories[e.Name()] = names
		m.TotalFiles += len(names)
	}

	return m, nil
}

// WriteManifest builds the manifest for root and writes it to
// root/manifest.json.
func WriteManifest(root string, now time.Time) (*Manifest, error) {
	m, err := BuildManifest(root, now)
	if err != nil {
		return nil, err
	}
	if err := WriteJSON(filepath.Join(root, ManifestFile), m); err != nil {
		return nil, eris.Wrap(err, "manifest: write")
	}
	return m, nil
}
