package pipeline

import (
	"github.com/sells-group/carenav/internal/model"
)

const (
	defaultReminderTime = "flexible"
	defaultLanguage     = "English"
)

var personalizationNotes = []string{
	"Instructions reformatted from discharge summary.",
	"No new medical advice added.",
}

// PersonalizeActionPlan turns discharge instructions and the note's
// follow-up into a checklist, tagged with the patient's reminder and
// language preferences for whoever delivers it.
func PersonalizeActionPlan(discharge model.Discharge, note model.ClinicalNote, prefs model.Preferences) model.ActionPlan {
	checklist := []string{}
	if f := model.Text(note.FollowUp); f != "" {
		checklist = append(checklist, "Schedule follow-up: "+f)
	}
	checklist = append(checklist, discharge.Instructions...)

	reminder := prefs.ReminderTime
	if reminder == "" {
		reminder = defaultReminderTime
	}
	lang := prefs.PreferredLanguage
	if lang == "" {
		lang = defaultLanguage
	}

	return model.ActionPlan{
		PreferredLanguage:    lang,
		ReminderTime:         reminder,
		Checklist:            checklist,
		WatchOuts:            orEmpty(discharge.RedFlags),
		PersonalizationNotes: append([]string(nil), personalizationNotes...),
	}
}
