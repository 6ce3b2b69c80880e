// billing/errors.go
package billing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrDuplicateInvoice means the lease already has an invoice for the period.
	// Callers treat it as already done.
	ErrDuplicateInvoice = errors.New("invoice already exists for lease and period")

	ErrLeaseNotFound   = errors.New("lease not found")
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrLeaseNotActive is returned when the billing period falls outside the lease term.
	ErrLeaseNotActive = errors.New("lease does not cover billing period")

	ErrInvalidLease            = errors.New("invalid lease terms")
	ErrInvalidPeriod           = errors.New("invalid billing period")
	ErrInvalidStatusTransition = errors.New("invalid invoice status transition")
	ErrInvalidPaymentAmount    = errors.New("payment amount must be positive")

	ErrOverpayment = errors.New("payment exceeds amount owed")

	// ErrStaleInvoice means the stored invoice changed between read and write.
	ErrStaleInvoice = errors.New("invoice was modified concurrently")
)

// OverpaymentError carries the rejected amount and what was still owed.
type OverpaymentError struct {
	Attempted decimal.Decimal
	Remaining decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment of %s exceeds remaining balance of %s",
		e.Attempted.StringFixed(2), e.Remaining.StringFixed(2))
}

func (e *OverpaymentError) Is(target error) bool {
	return target == ErrOverpayment
}
