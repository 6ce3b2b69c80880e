package billing

import (
	"time"

	"m77ag-backend/models"
	"m77ag-backend/utils"

	"github.com/shopspring/decimal"
)

// Lateness is the outcome of checking an invoice against a point in time.
type Lateness struct {
	IsLate      bool            `json:"isLate"`
	DaysLate    int             `json:"daysLate"`
	GraceEndsAt time.Time       `json:"graceEndsAt"`
	FeeDue      decimal.Decimal `json:"feeDue"`
}

// GraceEndsAt is the boundary day dueDate+graceDays+1 at midnight UTC. Due
// dates are calendar dates, so the zone a driver hands back is ignored.
func GraceEndsAt(inv *models.RentInvoice) time.Time {
	return dateOnly(inv.DueDate.UTC()).AddDate(0, 0, inv.GracePeriodDays+1)
}

// EvaluateLateness does not modify the invoice. Lateness is judged on the
// calendar date of asOf: the boundary day is not late at any hour, the day
// after it is.
// FeeDue is non-zero only the first time an open invoice is found late.
func EvaluateLateness(inv *models.RentInvoice, asOf time.Time) Lateness {
	graceEnd := GraceEndsAt(inv)
	result := Lateness{GraceEndsAt: graceEnd, FeeDue: decimal.Zero}

	asOfDate := dateOnly(asOf)
	if !IsOpen(inv) || !asOfDate.After(graceEnd) {
		return result
	}

	result.IsLate = true
	result.DaysLate = utils.DaysBetween(dateOnly(inv.DueDate.UTC()), asOfDate)
	if !inv.LateFeeApplied && inv.ConfiguredLateFee.IsPositive() {
		result.FeeDue = inv.ConfiguredLateFee
	}
	return result
}

// ApplyLateness records the evaluation on the invoice. It reports whether a
// late fee was newly applied and whether any field changed.
func ApplyLateness(inv *models.RentInvoice, asOf time.Time) (feeApplied bool, changed bool) {
	result := EvaluateLateness(inv, asOf)
	if !result.IsLate {
		return false, false
	}

	if !inv.IsLate || inv.DaysLate != result.DaysLate {
		inv.IsLate = true
		inv.DaysLate = result.DaysLate
		changed = true
	}
	if result.FeeDue.IsPositive() {
		inv.LateFeeApplied = true
		inv.LateFeeAmount = result.FeeDue
		feeApplied, changed = true, true
	}
	return feeApplied, changed
}
