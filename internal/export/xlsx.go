package export

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/carenav/internal/model"
)

const (
	SheetEpisodes = "Episodes"
	SheetBilling  = "Billing"
)

var (
	episodeHeader = []string{
		"episode_id", "patient_id", "symptom", "severity", "duration_days",
		"suggested_specialties", "providers", "in_network_only", "consent_document",
		"missing_consent_fields", "bill_lines", "computed_total", "total_billed",
		"patient_responsibility", "preferred_language", "reminder_time", "checklist_items",
	}
	billingHeader = []string{"episode_id", "bill_type", "lines", "total"}
)

// WriteWorkbook writes an Episodes sheet with one row per episode and a
// Billing sheet with one row per bill-type group. It returns the number of
// episode rows.
func WriteWorkbook(path string, episodes []model.EpisodeOutput) (int, error) {
	f := xlsx.NewFile()

	epSheet, err := f.AddSheet(SheetEpisodes)
	if err != nil {
		return 0, eris.Wrap(err, "xlsx: add episodes sheet")
	}
	addStringRow(epSheet, episodeHeader)

	rows := EpisodeRows(episodes)
	for _, r := range rows {
		row := epSheet.AddRow()
		row.AddCell().SetString(r.EpisodeID)
		row.AddCell().SetString(r.PatientID)
		row.AddCell().SetString(r.Symptom)
		row.AddCell().SetString(r.Severity)
		addOptionalString(row, r.DurationDays)
		row.AddCell().SetString(strings.Join(r.SuggestedSpecialties, ", "))
		row.AddCell().SetString(strings.Join(r.ProviderIDs, ", "))
		row.AddCell().SetBool(r.InNetworkOnly)
		row.AddCell().SetString(r.ConsentDocument)
		row.AddCell().SetInt(int(r.MissingConsentFields))
		row.AddCell().SetInt(int(r.BillLines))
		row.AddCell().SetFloat(r.ComputedTotal)
		addOptionalFloat(row, r.TotalBilled)
		addOptionalFloat(row, r.PatientResponsibility)
		row.AddCell().SetString(r.PreferredLanguage)
		row.AddCell().SetString(r.ReminderTime)
		row.AddCell().SetInt(int(r.ChecklistItems))
	}

	billSheet, err := f.AddSheet(SheetBilling)
	if err != nil {
		return 0, eris.Wrap(err, "xlsx: add billing sheet")
	}
	addStringRow(billSheet, billingHeader)
	for _, b := range BillingRows(episodes) {
		row := billSheet.AddRow()
		row.AddCell().SetString(b.EpisodeID)
		row.AddCell().SetString(b.BillType)
		row.AddCell().SetInt(b.Lines)
		row.AddCell().SetFloat(b.Total)
	}

	if err := f.Save(path); err != nil {
		return 0, eris.Wrapf(err, "xlsx: save %s", path)
	}
	return len(rows), nil
}

// ReadSheet returns all rows of the named sheet as strings.
func ReadSheet(path, name string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	sheet, ok := f.Sheet[name]
	if !ok {
		return nil, eris.Errorf("xlsx: sheet %q not found", name)
	}

	var rows [][]string
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func addStringRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

// Absent values are written as empty cells.
func addOptionalFloat(row *xlsx.Row, v *float64) {
	cell := row.AddCell()
	if v != nil {
		cell.SetFloat(*v)
	}
}

func addOptionalString(row *xlsx.Row, v *string) {
	cell := row.AddCell()
	if v != nil {
		cell.SetString(*v)
	}
}
