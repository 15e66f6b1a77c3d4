package export

import (
	"strings"

	"github.com/sells-group/carenav/internal/model"
	"github.com/sells-group/carenav/internal/pipeline"
)

// EpisodeRow is the flat, one-row-per-episode view used by both exports.
type EpisodeRow struct {
	EpisodeID             string   `parquet:"episode_id"`
	PatientID             string   `parquet:"patient_id"`
	Symptom               string   `parquet:"symptom"`
	Severity              string   `parquet:"severity"`
	DurationDays          *string  `parquet:"duration_days,optional"`
	SuggestedSpecialties  []string `parquet:"suggested_specialties,list"`
	ProviderIDs           []string `parquet:"provider_ids,list"`
	InNetworkOnly         bool     `parquet:"in_network_only"`
	ConsentDocument       string   `parquet:"consent_document"`
	MissingConsentFields  int32    `parquet:"missing_consent_fields"`
	BillLines             int32    `parquet:"bill_lines"`
	ComputedTotal         float64  `parquet:"computed_total"`
	TotalBilled           *float64 `parquet:"total_billed,optional"`
	PatientResponsibility *float64 `parquet:"patient_responsibility,optional"`
	PreferredLanguage     string   `parquet:"preferred_language"`
	ReminderTime          string   `parquet:"reminder_time"`
	ChecklistItems        int32    `parquet:"checklist_items"`
}

// BillingRow is one bill-type group of one episode.
type BillingRow struct {
	EpisodeID string
	BillType  string
	Lines     int
	Total     float64
}

// EpisodeRows flattens episode artifacts into rows, preserving order.
// ComputedTotal sums the per-type totals; it is reported next to the EOB
// figures and never replaces them.
func EpisodeRows(episodes []model.EpisodeOutput) []EpisodeRow {
	rows := make([]EpisodeRow, 0, len(episodes))
	for _, ep := range episodes {
		br := ep.BillingReconciliation

		var lines int
		for _, g := range br.GroupedCharges {
			lines += len(g.Charges)
		}
		var computed float64
		for _, t := range br.TotalsByType {
			computed += t.Total
		}

		var duration *string
		if d, ok := model.ValueText(ep.StructuredExtraction.DurationDays); ok {
			duration = &d
		}

		symptoms := make([]string, 0, len(ep.StructuredExtraction.Symptoms))
		for _, s := range ep.StructuredExtraction.Symptoms {
			if s != nil {
				symptoms = append(symptoms, *s)
			}
		}

		providers := make([]string, 0, len(ep.ProviderMatching.Providers))
		for _, p := range ep.ProviderMatching.Providers {
			providers = append(providers, p.ProviderID)
		}

		rows = append(rows, EpisodeRow{
			EpisodeID:             ep.EpisodeID,
			PatientID:             ep.PatientID,
			Symptom:               strings.Join(symptoms, "; "),
			Severity:              model.Text(ep.StructuredExtraction.Severity),
			DurationDays:          duration,
			SuggestedSpecialties:  append([]string{}, ep.Triage.SuggestedSpecialties...),
			ProviderIDs:           providers,
			InNetworkOnly:         ep.ProviderMatching.InNetworkOnly,
			ConsentDocument:       model.Text(ep.ConsentReview.DocumentType),
			MissingConsentFields:  int32(len(ep.ConsentReview.BeforeYouSign.MissingFields)),
			BillLines:             int32(lines),
			ComputedTotal:         pipeline.RoundCents(computed),
			TotalBilled:           br.TotalBilled,
			PatientResponsibility: br.PatientResponsibility,
			PreferredLanguage:     ep.ActionPlan.PreferredLanguage,
			ReminderTime:          ep.ActionPlan.ReminderTime,
			ChecklistItems:        int32(len(ep.ActionPlan.Checklist)),
		})
	}
	return rows
}

// BillingRows lists every bill-type group of every episode.
func BillingRows(episodes []model.EpisodeOutput) []BillingRow {
	var rows []BillingRow
	for _, ep := range episodes {
		br := ep.BillingReconciliation
		for _, g := range br.GroupedCharges {
			total, _ := br.TotalsByType.Get(g.BillType)
			rows = append(rows, BillingRow{
				EpisodeID: ep.EpisodeID,
				BillType:  g.BillType,
				Lines:     len(g.Charges),
				Total:     total,
			})
		}
	}
	return rows
}
