package billing

import (
	"fmt"

	"m77ag-backend/models"
)

var transitions = map[models.InvoiceStatus][]models.InvoiceStatus{
	models.InvoicePending:    {models.InvoiceProcessing, models.InvoiceCompleted, models.InvoiceFailed, models.InvoiceCancelled},
	models.InvoiceProcessing: {models.InvoiceCompleted, models.InvoiceFailed, models.InvoiceCancelled},
	models.InvoiceFailed:     {models.InvoicePending},
	models.InvoiceCompleted:  {models.InvoiceRefunded},
}

// CanTransition reports whether an invoice may move from one status to another.
func CanTransition(from, to models.InvoiceStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition moves the invoice to status or returns ErrInvalidStatusTransition.
func Transition(inv *models.RentInvoice, to models.InvoiceStatus) error {
	if inv.Status == to {
		return nil
	}
	if !CanTransition(inv.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, inv.Status, to)
	}
	inv.Status = to
	return nil
}
