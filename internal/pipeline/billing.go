package pipeline

import (
	"strconv"

	"github.com/sells-group/carenav/internal/model"
)

// UnknownBillType groups line items that carry no bill type.
const UnknownBillType = "Unknown"

var billingChecklist = []string{
	"Verify dates of service and provider entity",
	"Check for duplicate charges",
	"Confirm network status for each biller",
}

// ReconcileBilling groups bills by type and totals each group. The EOB
// totals are reported verbatim next to the computed group totals; the two
// are left for a person to compare.
func ReconcileBilling(bills []model.Bill, eob model.EOB) model.BillingReconciliation {
	groups := model.ChargeGroups{}
	for _, b := range bills {
		billType := b.BillType
		if billType == "" {
			billType = UnknownBillType
		}
		groups.Add(billType, b)
	}

	totals := make(model.TypeTotals, 0, len(groups))
	for _, g := range groups {
		var sum float64
		for _, b := range g.Charges {
			sum += b.Amount
		}
		totals = append(totals, model.TypeTotal{BillType: g.BillType, Total: RoundCents(sum)})
	}

	return model.BillingReconciliation{
		GroupedCharges:        groups,
		TotalsByType:          totals,
		TotalBilled:           eob.TotalBilled,
		PatientResponsibility: eob.PatientResponsibility,
		VerificationChecklist: append([]string(nil), billingChecklist...),
	}
}

// RoundCents rounds v to two decimal places using the exact decimal value
// of the float, so 150.005 (stored as 150.00499...) rounds down.
func RoundCents(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return r
}
