package model

import "encoding/json"

// TriageResult is the non-diagnostic specialty suggestion for an episode.
type TriageResult struct {
	TriageSummary        string   `json:"triage_summary"`
	SuggestedSpecialties []string `json:"suggested_specialties"`
	NonDiagnostic        bool     `json:"non_diagnostic"`
}

// ProviderMatch is the size-bounded provider shortlist. InNetworkOnly is
// true only when network filtering produced the shortlist.
type ProviderMatch struct {
	InsuranceID          *string    `json:"insurance_id"`
	SuggestedSpecialties []string   `json:"suggested_specialties"`
	Providers            []Provider `json:"providers"`
	InNetworkOnly        bool       `json:"in_network_only"`
}

// NarrativeSummary is a plain-language summary built only from source text.
type NarrativeSummary struct {
	PlainLanguageSummary string `json:"plain_language_summary"`
	SourceBasedOnly      bool   `json:"source_based_only"`
}

// StructuredExtraction is a field projection of intake, note and
// discharge. Absent source values stay null.
type StructuredExtraction struct {
	Symptoms            []*string       `json:"symptoms"`
	Severity            *string         `json:"severity"`
	DurationDays        json.RawMessage `json:"duration_days"`
	ConditionsAsWritten []*string       `json:"conditions_as_written"`
	Medications         []string        `json:"medications"`
	TestsOrdered        []string        `json:"tests_ordered"`
	FollowUp            *string         `json:"follow_up"`
	RedFlags            []string        `json:"red_flags"`
}

// ConsentHeuristicPositional marks a consent review whose buckets come from
// clause position rather than clause content.
const ConsentHeuristicPositional = "positional"

// BeforeYouSign groups the consent review buckets shown before signing.
type BeforeYouSign struct {
	KeyCommitments   []string `json:"key_commitments"`
	ConfusingOrVague []string `json:"confusing_or_vague"`
	MissingFields    []string `json:"missing_fields"`
	QuestionsToAsk   []string `json:"questions_to_ask"`
}

// ConsentReview is the reviewed consent document.
type ConsentReview struct {
	DocumentType  *string       `json:"document_type"`
	Summary       string        `json:"summary"`
	BeforeYouSign BeforeYouSign `json:"before_you_sign"`
	Heuristic     string        `json:"heuristic"`
}

// BillingReconciliation puts computed group totals next to the EOB totals.
// The two are never reconciled automatically.
type BillingReconciliation struct {
	GroupedCharges        ChargeGroups `json:"grouped_charges"`
	TotalsByType          TypeTotals   `json:"totals_by_type"`
	TotalBilled           *float64     `json:"total_billed"`
	PatientResponsibility *float64     `json:"patient_responsibility"`
	VerificationChecklist []string     `json:"verification_checklist"`
}

// ActionPlan is the personalized discharge checklist.
type ActionPlan struct {
	PreferredLanguage    string   `json:"preferred_language"`
	ReminderTime         string   `json:"reminder_time"`
	Checklist            []string `json:"checklist"`
	WatchOuts            []string `json:"watch_outs"`
	PersonalizationNotes []string `json:"personalization_notes"`
}

// EpisodeOutput is the merged per-episode artifact.
type EpisodeOutput struct {
	EpisodeID             string                `json:"episode_id"`
	PatientID             string                `json:"patient_id"`
	Triage                TriageResult          `json:"triage"`
	ProviderMatching      ProviderMatch         `json:"provider_matching"`
	Summary               NarrativeSummary      `json:"summary"`
	StructuredExtraction  StructuredExtraction  `json:"structured_extraction"`
	ConsentReview         ConsentReview         `json:"consent_review"`
	BillingReconciliation BillingReconciliation `json:"billing_reconciliation"`
	ActionPlan            ActionPlan            `json:"action_plan"`
}

// RunIndex lists every episode artifact present in the output directory.
type RunIndex struct {
	Episodes []string `json:"episodes"`
	Total    int      `json:"total"`
}

// RunSummary is the aggregate summary written after a batch.
type RunSummary struct {
	TotalEpisodes int    `json:"total_episodes"`
	OutputDir     string `json:"output_dir"`
}
