package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"m77ag-backend/billing"
	"m77ag-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type periodKey struct {
	leaseID     uuid.UUID
	month, year int
}

// memRepo keeps values, not pointers, so callers cannot mutate stored state.
type memRepo struct {
	mu        sync.Mutex
	leases    map[uuid.UUID]models.Lease
	invoices  map[uuid.UUID]models.RentInvoice
	periods   map[periodKey]uuid.UUID
	payments  []models.Payment
	templates map[string]models.ReminderTemplate
	logs      []models.ReminderLog

	// createErr forces CreateInvoice to fail for a lease.
	createErr map[uuid.UUID]error
	// skipLookup hides existing invoices from FindInvoiceForPeriod to exercise the unique index path.
	skipLookup bool
	// beforeSavePayment runs once, outside the lock, when SavePayment is
	// entered. Tests use it to land another write between read and save.
	beforeSavePayment func()
}

func newMemRepo() *memRepo {
	return &memRepo{
		leases:    map[uuid.UUID]models.Lease{},
		invoices:  map[uuid.UUID]models.RentInvoice{},
		periods:   map[periodKey]uuid.UUID{},
		templates: map[string]models.ReminderTemplate{},
		createErr: map[uuid.UUID]error{},
	}
}

func (r *memRepo) addLease(l models.Lease) models.Lease {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Status == "" {
		l.Status = models.LeaseStatusActive
	}
	r.leases[l.ID] = l
	return l
}

func (r *memRepo) invoice(id uuid.UUID) models.RentInvoice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.invoices[id]
}

func (r *memRepo) GetLease(ctx context.Context, id uuid.UUID) (*models.Lease, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leases[id]
	if !ok {
		return nil, billing.ErrLeaseNotFound
	}
	return &l, nil
}

func (r *memRepo) ListActiveLeases(ctx context.Context) ([]models.Lease, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Lease
	for _, l := range r.leases {
		if l.Status == models.LeaseStatusActive {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PropertyName < out[j].PropertyName })
	return out, nil
}

func (r *memRepo) GetInvoice(ctx context.Context, id uuid.UUID) (*models.RentInvoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, billing.ErrInvoiceNotFound
	}
	return &inv, nil
}

func (r *memRepo) FindInvoiceForPeriod(ctx context.Context, leaseID uuid.UUID, month, year int) (*models.RentInvoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.periods[periodKey{leaseID, month, year}]
	if !ok || r.skipLookup {
		return nil, billing.ErrInvoiceNotFound
	}
	inv := r.invoices[id]
	return &inv, nil
}

func (r *memRepo) CreateInvoice(ctx context.Context, inv *models.RentInvoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.createErr[inv.LeaseID]; err != nil {
		return err
	}
	key := periodKey{inv.LeaseID, inv.PeriodMonth, inv.PeriodYear}
	if _, exists := r.periods[key]; exists {
		return billing.ErrDuplicateInvoice
	}
	r.periods[key] = inv.ID
	r.invoices[inv.ID] = *inv
	return nil
}

func (r *memRepo) ListOpenInvoices(ctx context.Context) ([]models.RentInvoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.RentInvoice
	for _, inv := range r.invoices {
		if billing.IsOpen(&inv) {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (r *memRepo) UpdateLateness(ctx context.Context, inv *models.RentInvoice, feeNewlyApplied bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.invoices[inv.ID]
	if !ok || !billing.IsOpen(&stored) || !stored.AmountPaid.Equal(inv.AmountPaid) ||
		(feeNewlyApplied && stored.LateFeeApplied) {
		return billing.ErrStaleInvoice
	}
	stored.IsLate = inv.IsLate
	stored.DaysLate = inv.DaysLate
	stored.LateFeeApplied = inv.LateFeeApplied
	stored.LateFeeAmount = inv.LateFeeAmount
	r.invoices[inv.ID] = stored
	return nil
}

func (r *memRepo) UpdateStatus(ctx context.Context, inv *models.RentInvoice, from models.InvoiceStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.invoices[inv.ID]
	if !ok || stored.Status != from {
		return billing.ErrStaleInvoice
	}
	stored.Status = inv.Status
	stored.PaidDate = inv.PaidDate
	r.invoices[inv.ID] = stored
	return nil
}

func (r *memRepo) SavePayment(ctx context.Context, inv *models.RentInvoice, payment *models.Payment, previousPaid decimal.Decimal) error {
	if hook := r.beforeSavePayment; hook != nil {
		r.beforeSavePayment = nil
		hook()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.invoices[inv.ID]
	if !ok || !billing.IsOpen(&stored) || !stored.AmountPaid.Equal(previousPaid) ||
		stored.LateFeeApplied != inv.LateFeeApplied {
		return billing.ErrStaleInvoice
	}
	stored.AmountPaid = inv.AmountPaid
	stored.Status = inv.Status
	stored.PaidDate = inv.PaidDate
	r.invoices[inv.ID] = stored
	r.payments = append(r.payments, *payment)
	return nil
}

func (r *memRepo) ListInvoicesDueBy(ctx context.Context, cutoff time.Time) ([]models.RentInvoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.RentInvoice
	for _, inv := range r.invoices {
		if !billing.IsOpen(&inv) || inv.DueDate.After(cutoff) {
			continue
		}
		lease := r.leases[inv.LeaseID]
		inv.Lease = &lease
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (r *memRepo) GetTemplate(ctx context.Context, reminderType string) (*models.ReminderTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[reminderType]
	if !ok || !t.IsActive {
		return nil, nil
	}
	return &t, nil
}

func (r *memRepo) LastReminderSent(ctx context.Context, invoiceID uuid.UUID, reminderType string) (*time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var last *time.Time
	for i := range r.logs {
		l := r.logs[i]
		if l.InvoiceID == invoiceID && l.Type == reminderType && l.Status == ReminderStatusSent {
			if last == nil || l.SentAt.After(*last) {
				at := l.SentAt
				last = &at
			}
		}
	}
	return last, nil
}

func (r *memRepo) CreateReminderLog(ctx context.Context, entry *models.ReminderLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, *entry)
	return nil
}

var errStorage = errors.New("storage unavailable")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(fmt.Sprintf("bad date %q", s))
	}
	return t
}
