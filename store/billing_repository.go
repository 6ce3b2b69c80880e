package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"m77ag-backend/billing"
	"m77ag-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// openStatuses are the invoice states that still expect payment.
var openStatuses = []models.InvoiceStatus{models.InvoicePending, models.InvoiceProcessing}

// Store is the gorm-backed persistence for billing, reminders and the spray catalog.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetLease(ctx context.Context, id uuid.UUID) (*models.Lease, error) {
	var lease models.Lease
	if err := s.db.WithContext(ctx).First(&lease, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrLeaseNotFound
		}
		return nil, fmt.Errorf("failed to get lease: %w", err)
	}
	return &lease, nil
}

func (s *Store) ListActiveLeases(ctx context.Context) ([]models.Lease, error) {
	var leases []models.Lease
	if err := s.db.WithContext(ctx).
		Where("status = ?", models.LeaseStatusActive).
		Order("created_at").
		Find(&leases).Error; err != nil {
		return nil, fmt.Errorf("failed to list active leases: %w", err)
	}
	return leases, nil
}

func (s *Store) GetInvoice(ctx context.Context, id uuid.UUID) (*models.RentInvoice, error) {
	var inv models.RentInvoice
	if err := s.db.WithContext(ctx).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("paid_date") }).
		First(&inv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return &inv, nil
}

func (s *Store) FindInvoiceForPeriod(ctx context.Context, leaseID uuid.UUID, month, year int) (*models.RentInvoice, error) {
	var inv models.RentInvoice
	err := s.db.WithContext(ctx).
		Where("lease_id = ? AND period_year = ? AND period_month = ?", leaseID, year, month).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to find invoice for period: %w", err)
	}
	return &inv, nil
}

// CreateInvoice relies on idx_lease_period; a concurrent duplicate loses here.
func (s *Store) CreateInvoice(ctx context.Context, inv *models.RentInvoice) error {
	if err := s.db.WithContext(ctx).Omit("Lease", "Payments").Create(inv).Error; err != nil {
		if IsUniqueViolation(err) {
			return billing.ErrDuplicateInvoice
		}
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

func (s *Store) ListOpenInvoices(ctx context.Context) ([]models.RentInvoice, error) {
	var invoices []models.RentInvoice
	if err := s.db.WithContext(ctx).
		Where("status IN ?", openStatuses).
		Order("due_date").
		Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("failed to list open invoices: %w", err)
	}
	return invoices, nil
}

// UpdateLateness persists the lateness fields. The write only succeeds while
// the invoice is still open with the paid total that was read, and when
// feeNewlyApplied is set, only if no fee was stored yet.
func (s *Store) UpdateLateness(ctx context.Context, inv *models.RentInvoice, feeNewlyApplied bool) error {
	q := s.db.WithContext(ctx).Model(&models.RentInvoice{}).
		Where("id = ? AND status IN ? AND amount_paid = ?", inv.ID, openStatuses, inv.AmountPaid)
	if feeNewlyApplied {
		q = q.Where("late_fee_applied = ?", false)
	}
	res := q.Updates(map[string]interface{}{
		"is_late":          inv.IsLate,
		"days_late":        inv.DaysLate,
		"late_fee_applied": inv.LateFeeApplied,
		"late_fee_amount":  inv.LateFeeAmount,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update lateness: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return billing.ErrStaleInvoice
	}
	return nil
}

// UpdateStatus moves the stored invoice out of from.
func (s *Store) UpdateStatus(ctx context.Context, inv *models.RentInvoice, from models.InvoiceStatus) error {
	res := s.db.WithContext(ctx).Model(&models.RentInvoice{}).
		Where("id = ? AND status = ?", inv.ID, from).
		Updates(map[string]interface{}{
			"status":    inv.Status,
			"paid_date": inv.PaidDate,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update invoice status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return billing.ErrStaleInvoice
	}
	return nil
}

// SavePayment inserts the payment and updates the invoice totals in one
// transaction. The update is conditional on the open status, paid total and
// late-fee flag read earlier, so a concurrent payment or late fee makes it
// fail with ErrStaleInvoice.
func (s *Store) SavePayment(ctx context.Context, inv *models.RentInvoice, payment *models.Payment, previousPaid decimal.Decimal) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.RentInvoice{}).
			Where("id = ? AND status IN ? AND amount_paid = ? AND late_fee_applied = ?",
				inv.ID, openStatuses, previousPaid, inv.LateFeeApplied).
			Updates(map[string]interface{}{
				"amount_paid": inv.AmountPaid,
				"status":      inv.Status,
				"paid_date":   inv.PaidDate,
				"updated_at":  time.Now(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update invoice totals: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return billing.ErrStaleInvoice
		}

		if err := tx.Create(payment).Error; err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}
		return nil
	})
}
