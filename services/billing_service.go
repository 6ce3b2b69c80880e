package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"m77ag-backend/billing"
	"m77ag-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BillingRepository is the storage the billing service needs.
type BillingRepository interface {
	GetLease(ctx context.Context, id uuid.UUID) (*models.Lease, error)
	ListActiveLeases(ctx context.Context) ([]models.Lease, error)
	GetInvoice(ctx context.Context, id uuid.UUID) (*models.RentInvoice, error)
	FindInvoiceForPeriod(ctx context.Context, leaseID uuid.UUID, month, year int) (*models.RentInvoice, error)
	CreateInvoice(ctx context.Context, inv *models.RentInvoice) error
	ListOpenInvoices(ctx context.Context) ([]models.RentInvoice, error)
	UpdateLateness(ctx context.Context, inv *models.RentInvoice, feeNewlyApplied bool) error
	UpdateStatus(ctx context.Context, inv *models.RentInvoice, from models.InvoiceStatus) error
	SavePayment(ctx context.Context, inv *models.RentInvoice, payment *models.Payment, previousPaid decimal.Decimal) error
}

// GenerationResult summarizes a batch invoice run.
type GenerationResult struct {
	Month     int               `json:"month"`
	Year      int               `json:"year"`
	Generated []uuid.UUID       `json:"generated"`
	Skipped   []uuid.UUID       `json:"skipped"`
	Failed    map[string]string `json:"failed"`
}

// LateFeeResult summarizes a late-fee run. Applied counts invoices that got
// a fee; Updated counts invoices whose lateness fields changed without one.
type LateFeeResult struct {
	AsOf    time.Time         `json:"asOf"`
	Scanned int               `json:"scanned"`
	Applied int               `json:"applied"`
	Updated int               `json:"updated"`
	Failed  map[string]string `json:"failed"`
}

// Modified is the number of invoices written by the run.
func (r *LateFeeResult) Modified() int {
	return r.Applied + r.Updated
}

type BillingService struct {
	repo   BillingRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewBillingService(repo BillingRepository, logger *zap.Logger) *BillingService {
	return &BillingService{repo: repo, logger: logger, now: time.Now}
}

// GenerateInvoice creates the invoice for a lease and period, or returns
// billing.ErrDuplicateInvoice when one already exists.
func (s *BillingService) GenerateInvoice(ctx context.Context, leaseID uuid.UUID, month, year int) (*models.RentInvoice, error) {
	lease, err := s.repo.GetLease(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	return s.generateForLease(ctx, lease, month, year)
}

func (s *BillingService) generateForLease(ctx context.Context, lease *models.Lease, month, year int) (*models.RentInvoice, error) {
	existing, err := s.repo.FindInvoiceForPeriod(ctx, lease.ID, month, year)
	if err == nil && existing != nil {
		return nil, billing.ErrDuplicateInvoice
	}
	if err != nil && !errors.Is(err, billing.ErrInvoiceNotFound) {
		return nil, err
	}

	inv, err := billing.NewInvoice(lease, month, year)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	s.logger.Info("invoice generated",
		zap.String("lease_id", lease.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.Int("month", month),
		zap.Int("year", year),
		zap.String("amount_due", inv.AmountDue.StringFixed(2)),
	)
	return inv, nil
}

// AutoGenerateForAllActiveLeases never stops on a single lease's failure.
func (s *BillingService) AutoGenerateForAllActiveLeases(ctx context.Context, month, year int) (*GenerationResult, error) {
	leases, err := s.repo.ListActiveLeases(ctx)
	if err != nil {
		return nil, err
	}

	result := &GenerationResult{
		Month:     month,
		Year:      year,
		Generated: []uuid.UUID{},
		Skipped:   []uuid.UUID{},
		Failed:    map[string]string{},
	}
	for i := range leases {
		lease := &leases[i]
		if ctx.Err() != nil {
			result.Failed[lease.ID.String()] = ctx.Err().Error()
			continue
		}

		_, err := s.generateForLease(ctx, lease, month, year)
		switch {
		case err == nil:
			result.Generated = append(result.Generated, lease.ID)
		case errors.Is(err, billing.ErrDuplicateInvoice), errors.Is(err, billing.ErrLeaseNotActive):
			result.Skipped = append(result.Skipped, lease.ID)
		default:
			s.logger.Error("invoice generation failed",
				zap.String("lease_id", lease.ID.String()), zap.Error(err))
			result.Failed[lease.ID.String()] = err.Error()
		}
	}

	s.logger.Info("invoice generation finished",
		zap.Int("month", month),
		zap.Int("year", year),
		zap.Int("generated", len(result.Generated)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

func (s *BillingService) GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*models.RentInvoice, error) {
	return s.repo.GetInvoice(ctx, invoiceID)
}

// EvaluateLateness reports lateness for an invoice without changing it.
func (s *BillingService) EvaluateLateness(ctx context.Context, invoiceID uuid.UUID, asOf time.Time) (billing.Lateness, error) {
	inv, err := s.repo.GetInvoice(ctx, invoiceID)
	if err != nil {
		return billing.Lateness{}, err
	}
	return billing.EvaluateLateness(inv, asOf), nil
}

// ApplyLateFeesBatch checks every open invoice against asOf and stores
// lateness and one-time fees.
func (s *BillingService) ApplyLateFeesBatch(ctx context.Context, asOf time.Time) (*LateFeeResult, error) {
	invoices, err := s.repo.ListOpenInvoices(ctx)
	if err != nil {
		return nil, err
	}

	result := &LateFeeResult{AsOf: asOf, Scanned: len(invoices), Failed: map[string]string{}}
	for i := range invoices {
		inv := &invoices[i]
		feeApplied, changed := billing.ApplyLateness(inv, asOf)
		if !changed {
			continue
		}

		if err := s.repo.UpdateLateness(ctx, inv, feeApplied); err != nil {
			s.logger.Error("late fee update failed",
				zap.String("invoice_id", inv.ID.String()), zap.Error(err))
			result.Failed[inv.ID.String()] = err.Error()
			continue
		}

		if feeApplied {
			result.Applied++
			s.logger.Info("late fee applied",
				zap.String("invoice_number", inv.InvoiceNumber),
				zap.Int("days_late", inv.DaysLate),
				zap.String("fee", inv.LateFeeAmount.StringFixed(2)),
			)
		} else {
			result.Updated++
		}
	}

	s.logger.Info("late fee run finished",
		zap.Time("as_of", asOf),
		zap.Int("scanned", result.Scanned),
		zap.Int("applied", result.Applied),
		zap.Int("updated", result.Updated),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

// RecordPayment applies a payment. Rejected payments leave the stored
// invoice unchanged.
func (s *BillingService) RecordPayment(ctx context.Context, invoiceID uuid.UUID, amount decimal.Decimal, method, reference string) (*models.RentInvoice, *models.Payment, error) {
	inv, err := s.repo.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, nil, err
	}

	previousPaid := inv.AmountPaid
	payment, err := billing.ApplyPayment(inv, amount, method, reference, s.now())
	if err != nil {
		return nil, nil, err
	}
	if err := s.repo.SavePayment(ctx, inv, payment, previousPaid); err != nil {
		return nil, nil, err
	}

	s.logger.Info("payment recorded",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("status", string(inv.Status)),
	)
	return inv, payment, nil
}

func (s *BillingService) MarkPaymentFailed(ctx context.Context, invoiceID uuid.UUID) (*models.RentInvoice, error) {
	return s.transition(ctx, invoiceID, models.InvoiceFailed)
}

// RetryInvoice reopens a failed invoice.
func (s *BillingService) RetryInvoice(ctx context.Context, invoiceID uuid.UUID) (*models.RentInvoice, error) {
	return s.transition(ctx, invoiceID, models.InvoicePending)
}

func (s *BillingService) RefundInvoice(ctx context.Context, invoiceID uuid.UUID) (*models.RentInvoice, error) {
	return s.transition(ctx, invoiceID, models.InvoiceRefunded)
}

func (s *BillingService) CancelInvoice(ctx context.Context, invoiceID uuid.UUID) (*models.RentInvoice, error) {
	return s.transition(ctx, invoiceID, models.InvoiceCancelled)
}

func (s *BillingService) transition(ctx context.Context, invoiceID uuid.UUID, to models.InvoiceStatus) (*models.RentInvoice, error) {
	inv, err := s.repo.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	from := inv.Status
	if from == to {
		return inv, nil
	}
	if err := billing.Transition(inv, to); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, inv, from); err != nil {
		return nil, fmt.Errorf("failed to move invoice %s to %s: %w", inv.InvoiceNumber, to, err)
	}

	s.logger.Info("invoice status changed",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return inv, nil
}
