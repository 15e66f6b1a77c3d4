package pipeline

import (
	"strings"

	"github.com/sells-group/carenav/internal/model"
)

// Summarize builds a plain-language summary from the transcript, note and
// discharge documents. Absent inputs omit their segment; nothing is added
// beyond the source text.
func Summarize(transcript model.Transcript, note model.ClinicalNote, discharge model.Discharge) model.NarrativeSummary {
	var parts []string

	if transcript.Transcript != "" {
		parts = append(parts, "Visit summary: "+transcript.Transcript)
	}
	if a := model.Text(note.Assessment); a != "" {
		parts = append(parts, "Assessment: "+a)
	}
	if f := model.Text(note.FollowUp); f != "" {
		parts = append(parts, "Follow-up: "+f)
	}
	if len(discharge.Instructions) > 0 {
		parts = append(parts, "Discharge instructions: "+strings.Join(discharge.Instructions, "; "))
	}
	if len(discharge.RedFlags) > 0 {
		parts = append(parts, "Watch-outs: "+strings.Join(discharge.RedFlags, ", "))
	}

	return model.NarrativeSummary{
		PlainLanguageSummary: strings.TrimSpace(strings.Join(parts, " ")),
		SourceBasedOnly:      true,
	}
}
