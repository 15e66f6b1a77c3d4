package pipeline

import (
	"github.com/sells-group/carenav/internal/model"
)

// Extract projects intake, note and discharge fields into a structured
// record. Values are copied as written: absent text stays null and
// missing lists become empty.
func Extract(intake model.Intake, note model.ClinicalNote, discharge model.Discharge) model.StructuredExtraction {
	return model.StructuredExtraction{
		Symptoms:            []*string{intake.ReportedSymptom},
		Severity:            intake.Severity,
		DurationDays:        intake.DurationDays,
		ConditionsAsWritten: []*string{note.Assessment},
		Medications:         orEmpty(note.Medications),
		TestsOrdered:        orEmpty(note.TestsOrdered),
		FollowUp:            note.FollowUp,
		RedFlags:            orEmpty(discharge.RedFlags),
	}
}
