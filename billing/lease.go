package billing

import (
	"fmt"
	"time"

	"m77ag-backend/models"
	"m77ag-backend/utils"
)

// Lease lifecycle states derived from the lease dates.
const (
	LeaseUpcoming   = "upcoming"
	LeaseActive     = "active"
	LeaseExpired    = "expired"
	LeaseTerminated = "terminated"
)

// ValidateLease checks the terms the engine relies on.
func ValidateLease(lease *models.Lease) error {
	switch {
	case !lease.MonthlyRent.IsPositive():
		return fmt.Errorf("%w: monthly rent must be greater than zero", ErrInvalidLease)
	case lease.RentDueDay < 1 || lease.RentDueDay > 31:
		return fmt.Errorf("%w: rent due day must be between 1 and 31", ErrInvalidLease)
	case lease.GracePeriodDays < 0:
		return fmt.Errorf("%w: grace period cannot be negative", ErrInvalidLease)
	case lease.LateFeeAmount.IsNegative():
		return fmt.Errorf("%w: late fee cannot be negative", ErrInvalidLease)
	case lease.EndDate != nil && lease.EndDate.Before(lease.StartDate):
		return fmt.Errorf("%w: end date before start date", ErrInvalidLease)
	}
	return nil
}

// LeaseStatusAt reports where the lease is in its term on asOf.
func LeaseStatusAt(lease *models.Lease, asOf time.Time) string {
	if lease.Status == models.LeaseStatusTerminated {
		return LeaseTerminated
	}
	day := utils.BeginningOfDay(asOf)
	if day.Before(utils.BeginningOfDay(lease.StartDate)) {
		return LeaseUpcoming
	}
	if lease.EndDate != nil && day.After(utils.BeginningOfDay(*lease.EndDate)) {
		return LeaseExpired
	}
	return LeaseActive
}

// CoversPeriod reports whether any day of month/year falls inside the lease term.
func CoversPeriod(lease *models.Lease, month, year int) bool {
	if lease.Status == models.LeaseStatusTerminated {
		return false
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(year, time.Month(month), utils.DaysInMonth(year, time.Month(month)), 0, 0, 0, 0, time.UTC)

	start := dateOnly(lease.StartDate)
	if start.After(last) {
		return false
	}
	if lease.EndDate != nil && dateOnly(*lease.EndDate).Before(first) {
		return false
	}
	return true
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validatePeriod(month, year int) error {
	if month < 1 || month > 12 || year < 1900 {
		return fmt.Errorf("%w: %d/%d", ErrInvalidPeriod, month, year)
	}
	return nil
}
