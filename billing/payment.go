package billing

import (
	"fmt"
	"time"

	"m77ag-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ApplyPayment validates a payment against the invoice and, when accepted,
// updates the paid total and status. On error the invoice is left untouched.
// Amounts must be whole cents; money columns hold two decimal places.
func ApplyPayment(inv *models.RentInvoice, amount decimal.Decimal, method, reference string, paidAt time.Time) (*models.Payment, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidPaymentAmount
	}
	if !amount.Equal(amount.Round(2)) {
		return nil, fmt.Errorf("%w: %s has fractions of a cent", ErrInvalidPaymentAmount, amount)
	}
	if !IsOpen(inv) {
		return nil, fmt.Errorf("%w: cannot pay a %s invoice", ErrInvalidStatusTransition, inv.Status)
	}

	remaining := Balance(inv)
	if amount.GreaterThan(remaining) {
		return nil, &OverpaymentError{Attempted: amount, Remaining: remaining}
	}

	inv.AmountPaid = inv.AmountPaid.Add(amount)
	if inv.AmountPaid.GreaterThanOrEqual(AmountOwed(inv)) {
		inv.Status = models.InvoiceCompleted
		paid := paidAt
		inv.PaidDate = &paid
	} else {
		inv.Status = models.InvoiceProcessing
	}

	return &models.Payment{
		ID:             uuid.New(),
		InvoiceID:      inv.ID,
		Amount:         amount,
		Method:         method,
		TransactionRef: reference,
		PaidDate:       paidAt,
	}, nil
}
