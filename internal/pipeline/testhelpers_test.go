package pipeline

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/carenav/internal/config"
	"github.com/sells-group/carenav/internal/dataset"
	"github.com/sells-group/carenav/internal/model"
)

func writeJSON(t *testing.T, root, rel string, v any) {
	t.Helper()
	require.NoError(t, dataset.WriteJSON(filepath.Join(root, rel), v))
}

// writeEpisode writes the seven source documents for one episode.
func writeEpisode(t *testing.T, root, episodeID, symptom string) {
	t.Helper()
	writeJSON(t, root, "intake/"+episodeID+".json", model.Intake{
		EpisodeID:       episodeID,
		ReportedSymptom: strPtr(symptom),
		Severity:        strPtr("moderate"),
		DurationDays:    json.RawMessage(`4`),
		FreeText:        "Started <after> a fall & twisted",
	})
	writeJSON(t, root, "transcripts/"+episodeID+".json", model.Transcript{EpisodeID: episodeID, Transcript: "Discussed " + symptom + "."})
	writeJSON(t, root, "clinical_notes/"+episodeID+".json", model.ClinicalNote{
		EpisodeID:    episodeID,
		Assessment:   strPtr("Evaluate " + symptom),
		Medications:  []string{"Ibuprofen"},
		TestsOrdered: []string{"X-ray"},
		FollowUp:     strPtr("2 weeks"),
	})
	writeJSON(t, root, "discharge/"+episodeID+".json", model.Discharge{
		EpisodeID:    episodeID,
		Instructions: []string{"Rest", "Ice"},
		RedFlags:     []string{"fever"},
	})
	writeJSON(t, root, "consent/"+episodeID+".json", model.Consent{
		EpisodeID:     episodeID,
		DocumentType:  strPtr("Treatment Consent"),
		Clauses:       []string{"I agree to treatment.", "Fees may vary.", "I may revoke consent."},
		MissingFields: []string{},
	})
	writeJSON(t, root, "billing/"+episodeID+".json", []model.Bill{
		{EpisodeID: episodeID, BillType: "Professional", Amount: 100.005, DateOfService: "2026-01-05"},
		{EpisodeID: episodeID, BillType: "Professional", Amount: 50, DateOfService: "2026-01-05"},
		{EpisodeID: episodeID, BillType: "Imaging", Amount: 25, DateOfService: "2026-01-05"},
	})
	writeJSON(t, root, "eob/"+episodeID+".json", model.EOB{
		EpisodeID:             episodeID,
		TotalBilled:           floatPtr(175),
		PatientResponsibility: floatPtr(35.5),
		Notes:                 "Processed",
	})
}

// newFixtureDataset writes a dataset with two patients and three
// episodes; ep_3 references a patient that does not exist.
func newFixtureDataset(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "dataset")

	writeJSON(t, root, "metadata/patients.json", []model.Patient{
		{PatientID: "pt_1", AgeRange: "30-39", Language: "English", InsuranceID: strPtr("PLAN-A")},
		{PatientID: "pt_2", AgeRange: "60-69", Language: "Spanish", Caregiver: true, InsuranceID: strPtr("PLAN-Z")},
	})
	writeJSON(t, root, "metadata/providers.json", []model.Provider{
		{ProviderID: "pr_1", Specialty: "Orthopedics", Location: "North", InNetworkPlans: []string{"PLAN-B"}},
		{ProviderID: "pr_2", Specialty: "Orthopedics", Location: "South", InNetworkPlans: []string{"PLAN-A"}},
		{ProviderID: "pr_3", Specialty: "Primary Care", Location: "East", InNetworkPlans: []string{"PLAN-A", "PLAN-B"}},
		{ProviderID: "pr_4", Specialty: "Cardiology", Location: "West", InNetworkPlans: []string{"PLAN-A"}},
	})
	writeJSON(t, root, "metadata/episodes.json", []model.Episode{
		{EpisodeID: "ep_1", PatientID: "pt_1", ProviderID: "pr_2", Specialty: "Orthopedics", VisitDate: "2026-01-05"},
		{EpisodeID: "ep_2", PatientID: "pt_2", ProviderID: "pr_4", Specialty: "Cardiology", VisitDate: "2026-01-06"},
		{EpisodeID: "ep_3", PatientID: "pt_missing", ProviderID: "pr_3", Specialty: "Primary Care", VisitDate: "2026-01-07"},
	})

	writeEpisode(t, root, "ep_1", "Knee pain")
	writeEpisode(t, root, "ep_2", "Chest pain")
	writeEpisode(t, root, "ep_3", "Fatigue")

	writeJSON(t, root, "preferences/pt_1.json", model.Preferences{PatientID: "pt_1", ReminderTime: "morning", DetailLevel: "brief"})
	writeJSON(t, root, "preferences/pt_2.json", model.Preferences{PatientID: "pt_2", ReminderTime: "evening", DetailLevel: "detailed", PreferredLanguage: "Spanish"})
	return root
}

func testConfig(outputDir string) *config.Config {
	return &config.Config{
		Output:   config.OutputConfig{Dir: outputDir},
		Pipeline: config.PipelineConfig{ProviderLimit: 5, DefaultSpecialty: []string{"Primary Care"}},
		Batch:    config.BatchConfig{Concurrency: 2, FailFast: true},
	}
}
