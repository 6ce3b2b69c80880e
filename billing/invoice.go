package billing

import (
	"fmt"
	"time"

	"m77ag-backend/models"
	"m77ag-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ComputeDueDate places the lease's due day inside month/year, clamping to
// the last day when the month is shorter.
func ComputeDueDate(lease *models.Lease, month, year int) time.Time {
	day := lease.RentDueDay
	if day < 1 {
		day = 1
	}
	if last := utils.DaysInMonth(year, time.Month(month)); day > last {
		day = last
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// NewInvoice builds the pending invoice for a lease and period. It does not
// check for an existing invoice; storage does that.
func NewInvoice(lease *models.Lease, month, year int) (*models.RentInvoice, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}
	if err := ValidateLease(lease); err != nil {
		return nil, err
	}
	if !CoversPeriod(lease, month, year) {
		return nil, fmt.Errorf("%w: %d/%d", ErrLeaseNotActive, month, year)
	}

	return &models.RentInvoice{
		ID:                uuid.New(),
		LeaseID:           lease.ID,
		PeriodYear:        year,
		PeriodMonth:       month,
		InvoiceNumber:     InvoiceNumber(month, year),
		AmountDue:         lease.MonthlyRent,
		AmountPaid:        decimal.Zero,
		DueDate:           ComputeDueDate(lease, month, year),
		Status:            models.InvoicePending,
		LateFeeAmount:     decimal.Zero,
		ConfiguredLateFee: lease.LateFeeAmount,
		GracePeriodDays:   lease.GracePeriodDays,
	}, nil
}

// InvoiceNumber is RENT-YYYYMM-XXXXXX.
func InvoiceNumber(month, year int) string {
	return fmt.Sprintf("RENT-%04d%02d-%s", year, month, utils.GenerateRandomString(6))
}

// AmountOwed is rent plus any late fee already applied.
func AmountOwed(inv *models.RentInvoice) decimal.Decimal {
	if inv.LateFeeApplied {
		return inv.AmountDue.Add(inv.LateFeeAmount)
	}
	return inv.AmountDue
}

// Balance is what remains to be paid.
func Balance(inv *models.RentInvoice) decimal.Decimal {
	remaining := AmountOwed(inv).Sub(inv.AmountPaid)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// IsOpen reports whether the invoice still expects payment.
func IsOpen(inv *models.RentInvoice) bool {
	return inv.Status == models.InvoicePending || inv.Status == models.InvoiceProcessing
}
