package pipeline

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/carenav/internal/model"
)

// TriageRule maps a symptom keyword to suggested specialties. A rule
// matches when its keyword is a substring of the lower-cased symptom.
type TriageRule struct {
	Keyword     string   `yaml:"keyword"`
	Specialties []string `yaml:"specialties"`
}

// DefaultTriageRules is the built-in rule table. Order matters: the first
// matching rule wins.
var DefaultTriageRules = []TriageRule{
	{Keyword: "chest pain", Specialties: []string{"Cardiology", "Primary Care"}},
	{Keyword: "shortness of breath", Specialties: []string{"Pulmonology", "Primary Care"}},
	{Keyword: "knee pain", Specialties: []string{"Orthopedics", "Primary Care"}},
	{Keyword: "abdominal", Specialties: []string{"Gastroenterology", "Primary Care"}},
	{Keyword: "skin", Specialties: []string{"Dermatology", "Primary Care"}},
	{Keyword: "fatigue", Specialties: []string{"Primary Care"}},
}

// DefaultSpecialties is returned when no rule matches.
var DefaultSpecialties = []string{"Primary Care"}

// LoadTriageRules reads an ordered rule table from a YAML file of the form
//
//	rules:
//	  - keyword: chest pain
//	    specialties: [Cardiology, Primary Care]
//
// An empty path returns the built-in table.
func LoadTriageRules(path string) ([]TriageRule, error) {
	if path == "" {
		return DefaultTriageRules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "triage: read rules %s", path)
	}

	var wrapper struct {
		Rules []TriageRule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "triage: parse rules")
	}
	if len(wrapper.Rules) == 0 {
		return nil, eris.Errorf("triage: %s defines no rules", path)
	}

	lower := cases.Lower(language.Und)
	for i, r := range wrapper.Rules {
		kw := strings.TrimSpace(r.Keyword)
		if kw == "" {
			return nil, eris.Errorf("triage: rule %d has an empty keyword", i)
		}
		if len(r.Specialties) == 0 {
			return nil, eris.Errorf("triage: rule %q has no specialties", kw)
		}
		wrapper.Rules[i].Keyword = lower.String(kw)
	}
	return wrapper.Rules, nil
}

// MatchSpecialties returns the specialties of the first rule whose keyword
// occurs in symptom (already lower-cased), or fallback when none does.
func MatchSpecialties(symptom string, rules []TriageRule, fallback []string) []string {
	for _, r := range rules {
		if strings.Contains(symptom, r.Keyword) {
			return append([]string(nil), r.Specialties...)
		}
	}
	return append([]string(nil), fallback...)
}

// Triage suggests specialties for an intake form. The result is
// explicitly non-diagnostic.
func Triage(intake model.Intake, rules []TriageRule, fallback []string) model.TriageResult {
	symptom := cases.Lower(language.Und).String(model.Text(intake.ReportedSymptom))

	severity := "unspecified"
	if intake.Severity != nil {
		severity = *intake.Severity
	}
	duration, ok := model.ValueText(intake.DurationDays)
	if !ok {
		duration = "unknown"
	}
	shown := symptom
	if shown == "" {
		shown = "unspecified"
	}

	summary := fmt.Sprintf("Reported symptom: %s (severity: %s, duration: %s days).", shown, severity, duration)
	if notes := strings.TrimSpace(intake.FreeText); notes != "" {
		summary += " Patient notes: " + notes
	}

	return model.TriageResult{
		TriageSummary:        summary,
		SuggestedSpecialties: MatchSpecialties(symptom, rules, fallback),
		NonDiagnostic:        true,
	}
}
