package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeFile writes raw content to root/rel, creating directories.
func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// writeEpisodeDocs writes a minimal, complete document set for one episode.
func writeEpisodeDocs(t *testing.T, root, episodeID string) {
	t.Helper()
	writeFile(t, root, "intake/"+episodeID+".json", `{"reported_symptom":"knee pain","severity":"severe","duration_days":3}`)
	writeFile(t, root, "transcripts/"+episodeID+".json", `{"transcript":"Patient describes symptoms."}`)
	writeFile(t, root, "clinical_notes/"+episodeID+".json", `{"assessment":"Reviewed.","medications":["ibuprofen"]}`)
	writeFile(t, root, "discharge/"+episodeID+".json", `{"instructions":["Rest."],"red_flags":["fever"]}`)
	writeFile(t, root, "consent/"+episodeID+".json", `{"document_type":"HIPAA Authorization","clauses":["a","b"]}`)
	writeFile(t, root, "billing/"+episodeID+".json", `[{"bill_type":"Imaging","amount":120.5}]`)
	writeFile(t, root, "eob/"+episodeID+".json", `{"total_billed":120.5,"patient_responsibility":24.1}`)
}
