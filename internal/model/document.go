package model

import (
	"bytes"
	"encoding/json"
)

// DocumentKind names one of the per-episode source documents.
type DocumentKind string

const (
	DocumentIntake       DocumentKind = "intake"
	DocumentTranscript   DocumentKind = "transcripts"
	DocumentClinicalNote DocumentKind = "clinical_notes"
	DocumentDischarge    DocumentKind = "discharge"
	DocumentConsent      DocumentKind = "consent"
	DocumentBilling      DocumentKind = "billing"
	DocumentEOB          DocumentKind = "eob"
)

// EpisodeDocuments returns the per-episode document kinds in load order.
// Each kind doubles as its directory name under the dataset root.
func EpisodeDocuments() []DocumentKind {
	return []DocumentKind{
		DocumentIntake,
		DocumentTranscript,
		DocumentClinicalNote,
		DocumentDischarge,
		DocumentConsent,
		DocumentBilling,
		DocumentEOB,
	}
}

// Intake is the patient-reported intake form. DurationDays is kept as
// the raw JSON value because forms record it inconsistently.
type Intake struct {
	EpisodeID       string          `json:"episode_id,omitempty"`
	ReportedSymptom *string         `json:"reported_symptom,omitempty"`
	Severity        *string         `json:"severity,omitempty"`
	DurationDays    json.RawMessage `json:"duration_days,omitempty"`
	FreeText        string          `json:"free_text,omitempty"`
}

// Transcript is the visit conversation transcript.
type Transcript struct {
	EpisodeID  string `json:"episode_id,omitempty"`
	Transcript string `json:"transcript,omitempty"`
}

// ClinicalNote is the provider's note for the visit.
type ClinicalNote struct {
	EpisodeID    string   `json:"episode_id,omitempty"`
	Assessment   *string  `json:"assessment,omitempty"`
	Medications  []string `json:"medications,omitempty"`
	TestsOrdered []string `json:"tests_ordered,omitempty"`
	FollowUp     *string  `json:"follow_up,omitempty"`
}

// Discharge holds discharge instructions and red flags.
type Discharge struct {
	EpisodeID    string   `json:"episode_id,omitempty"`
	Instructions []string `json:"instructions,omitempty"`
	RedFlags     []string `json:"red_flags,omitempty"`
}

// Consent is a consent or authorization form.
type Consent struct {
	EpisodeID     string   `json:"episode_id,omitempty"`
	DocumentType  *string  `json:"document_type,omitempty"`
	Clauses       []string `json:"clauses,omitempty"`
	MissingFields []string `json:"missing_fields"`
}

// Bill is a single billed line item.
type Bill struct {
	EpisodeID     string  `json:"episode_id,omitempty"`
	BillType      string  `json:"bill_type,omitempty"`
	Amount        float64 `json:"amount"`
	DateOfService string  `json:"date_of_service,omitempty"`
}

// EOB is the insurer's explanation of benefits. Totals are nullable
// because they are carried through verbatim, never recomputed.
type EOB struct {
	EpisodeID             string   `json:"episode_id,omitempty"`
	TotalBilled           *float64 `json:"total_billed"`
	PatientResponsibility *float64 `json:"patient_responsibility"`
	Notes                 string   `json:"notes,omitempty"`
}

// DocumentSet is every source document loaded for one episode.
type DocumentSet struct {
	Intake       Intake
	Transcript   Transcript
	ClinicalNote ClinicalNote
	Discharge    Discharge
	Consent      Consent
	Billing      []Bill
	EOB          EOB
}

// Text returns an optional text field, or "" when it is absent.
func Text(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ValueText renders a raw JSON scalar for display. Strings are unquoted and
// other values are shown as written. It reports false for absent or null.
func ValueText(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	return string(raw), true
}
