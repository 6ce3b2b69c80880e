package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"m77ag-backend/billing"
	"m77ag-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func farmhouseLease() models.Lease {
	start := mustDate("2024-01-01")
	return models.Lease{
		PropertyName:    "North Farmhouse",
		TenantName:      "Dana Reyes",
		TenantPhone:     "+15551234567",
		MonthlyRent:     decimal.NewFromInt(1250),
		RentDueDay:      1,
		LateFeeAmount:   decimal.NewFromInt(50),
		GracePeriodDays: 7,
		StartDate:       start,
	}
}

func newTestBillingService(repo *memRepo) *BillingService {
	svc := NewBillingService(repo, zap.NewNop())
	svc.now = fixedClock(mustDate("2024-04-15"))
	return svc
}

func TestGenerateInvoiceIsIdempotent(t *testing.T) {
	repo := newMemRepo()
	lease := repo.addLease(farmhouseLease())
	svc := newTestBillingService(repo)
	ctx := context.Background()

	inv, err := svc.GenerateInvoice(ctx, lease.ID, 4, 2024)
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePending, inv.Status)
	assert.True(t, inv.AmountDue.Equal(decimal.NewFromInt(1250)))
	assert.Equal(t, mustDate("2024-04-01"), inv.DueDate)

	_, err = svc.GenerateInvoice(ctx, lease.ID, 4, 2024)
	assert.ErrorIs(t, err, billing.ErrDuplicateInvoice)
	assert.Len(t, repo.invoices, 1)
}

func TestGenerateInvoiceDuplicateFromUniqueIndex(t *testing.T) {
	repo := newMemRepo()
	lease := repo.addLease(farmhouseLease())
	svc := newTestBillingService(repo)
	ctx := context.Background()

	_, err := svc.GenerateInvoice(ctx, lease.ID, 4, 2024)
	require.NoError(t, err)

	repo.skipLookup = true
	_, err = svc.GenerateInvoice(ctx, lease.ID, 4, 2024)
	assert.ErrorIs(t, err, billing.ErrDuplicateInvoice)
	assert.Len(t, repo.invoices, 1)
}

func TestGenerateInvoiceConcurrentCallsCreateOne(t *testing.T) {
	repo := newMemRepo()
	lease := repo.addLease(farmhouseLease())
	svc := newTestBillingService(repo)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.GenerateInvoice(context.Background(), lease.ID, 5, 2024)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	created := 0
	for err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, billing.ErrDuplicateInvoice)
	}
	assert.Equal(t, 1, created)
	assert.Len(t, repo.invoices, 1)
}

func TestGenerateInvoiceUnknownLease(t *testing.T) {
	svc := newTestBillingService(newMemRepo())
	_, err := svc.GenerateInvoice(context.Background(), uuid.New(), 4, 2024)
	assert.ErrorIs(t, err, billing.ErrLeaseNotFound)
}

func TestAutoGenerateIsolatesFailures(t *testing.T) {
	repo := newMemRepo()
	a := farmhouseLease()
	a.PropertyName = "A"
	b := farmhouseLease()
	b.PropertyName = "B"
	c := farmhouseLease()
	c.PropertyName = "C"
	leaseA := repo.addLease(a)
	leaseB := repo.addLease(b)
	leaseC := repo.addLease(c)
	repo.createErr[leaseB.ID] = errStorage

	svc := newTestBillingService(repo)
	ctx := context.Background()

	_, err := svc.GenerateInvoice(ctx, leaseC.ID, 6, 2024)
	require.NoError(t, err)

	result, err := svc.AutoGenerateForAllActiveLeases(ctx, 6, 2024)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{leaseA.ID}, result.Generated)
	assert.Equal(t, []uuid.UUID{leaseC.ID}, result.Skipped)
	require.Len(t, result.Failed, 1)
	assert.Contains(t, result.Failed[leaseB.ID.String()], "storage unavailable")

	again, err := svc.AutoGenerateForAllActiveLeases(ctx, 6, 2024)
	require.NoError(t, err)
	assert.Empty(t, again.Generated)
	assert.Len(t, again.Skipped, 2)
}

func TestAutoGenerateSkipsLeaseOutsideTerm(t *testing.T) {
	repo := newMemRepo()
	l := farmhouseLease()
	l.StartDate = mustDate("2025-01-01")
	lease := repo.addLease(l)

	result, err := newTestBillingService(repo).AutoGenerateForAllActiveLeases(context.Background(), 6, 2024)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{lease.ID}, result.Skipped)
	assert.Empty(t, result.Failed)
}

func TestLateFeeBatchAcrossGraceBoundary(t *testing.T) {
	repo := newMemRepo()
	lease := repo.addLease(farmhouseLease())
	svc := newTestBillingService(repo)
	ctx := context.Background()

	inv, err := svc.GenerateInvoice(ctx, lease.ID, 4, 2024)
	require.NoError(t, err)

	result, err := svc.ApplyLateFeesBatch(ctx, mustDate("2024-04-09"))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Modified())
	stored := repo.invoice(inv.ID)
	assert.False(t, stored.IsLate)
	assert.False(t, stored.LateFeeApplied)

	result, err = svc.ApplyLateFeesBatch(ctx, mustDate("2024-04-10"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	stored = repo.invoice(inv.ID)
	assert.True(t, stored.IsLate)
	assert.Equal(t, 9, stored.DaysLate)
	assert.True(t, stored.LateFeeAmount.Equal(decimal.NewFromInt(50)))
	assert.True(t, billing.AmountOwed(&stored).Equal(decimal.NewFromInt(1300)))

	result, err = svc.ApplyLateFeesBatch(ctx, mustDate("2024-04-20"))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Applied)
	assert.Equal(t, 1, result.Updated)
	stored = repo.invoice(inv.ID)
	assert.Equal(t, 19, stored.DaysLate)
	assert.True(t, billing.AmountOwed(&stored).Equal(decimal.NewFromInt(1300)))
}

func TestLateFeeBatchSkipsClosedInvoices(t *testing.T) {
	repo := newMemRepo()
	lease := repo.addLease(farmhouseLease())
	svc := newTestBillingService(repo)
	ctx := context.Background()

	inv, err := svc.GenerateInvoice(ctx, lease.ID, 4, 2024)
	require.NoError(t, err)
	_, _, err = svc.RecordPayment(ctx, inv.ID, decimal.NewFromInt(1250), "ach", "ref-1")
	require.NoError(t, err)

	result, err := svc.ApplyLateFeesBatch(ctx, mustDate("2024-05-01"))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Scanned)
	assert.False(t, repo.invoice(inv.ID).LateFeeApplied)
}

func TestEvaluateLatenessDoesNotPersist(t *testing.T) {
	repo := newMemRepo()
	lease := repo.addLease(farmhouseLease())
	svc := newTestBillingService(repo)
	ctx := context.Background()

	inv, err := svc.GenerateInvoice(ctx, lease.ID, 4, 2024)
	require.NoError(t, err)

	late, err := svc.EvaluateLateness(ctx, inv.ID, mustDate("2024-04-10"))
	require.NoError(t, err)
	assert.True(t, late.IsLate)
	assert.True(t, late.FeeDue.Equal(decimal.NewFromInt(50)))
	assert.False(t, repo.invoice(inv.ID).IsLate)
}

func TestRecordPaymentPartialThenFull(t *testing.T) {
	repo := newMemRepo()
	lease := repo.addLease(farmhouseLease())
	svc := newTestBillingService(repo)
	ctx := context.Background()

	inv, err := svc.GenerateInvoice(ctx, lease.ID, 4, 2024)
	require.NoError(t, err)

	updated, _, err := svc.RecordPayment(ctx, inv.ID, decimal.NewFromInt(500), "check", "1001")
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceProcessing, updated.Status)
	assert.Nil(t, updated.PaidDate)

	updated, payment, err := svc.RecordPayment(ctx, inv.ID, decimal.NewFromInt(750), "check", "1002")
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceCompleted, updated.Status)
	require.NotNil(t, updated.PaidDate)
	assert.Equal(t, mustDate("2024-04-15"), *updated.PaidDate)
	assert.Equal(t, "1002", payment.TransactionRef)
	assert.Len(t, repo.payments, 2)
}

func TestRecordPaymentOverpaymentLeavesInvoiceUnchanged(t *testing.T) {
	repo := newMemRepo()
	lease := repo.addLease(farmhouseLease())
	svc := newTestBillingService(repo)
	ctx := context.Background()

	inv, err := svc.GenerateInvoice(ctx, lease.ID, 4, 2024)
	require.NoError(t, err)
	_, _, err = svc.RecordPayment(ctx, inv.ID, decimal.NewFromInt(1000), "ach", "a")
	require.NoError(t, err)

	_, _, err = svc.RecordPayment(ctx, inv.ID, decimal.NewFromInt(300), "ach", "b")
	require.Error(t, err)
	assert.ErrorIs(t, err, billing.ErrOverpayment)
	var over *billing.OverpaymentError
	require.True(t, errors.As(err, &over))
	assert.True(t, over.Remaining.Equal(decimal.NewFromInt(250)))

	stored := repo.invoice(inv.ID)
	assert.True(t, stored.AmountPaid.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, models.InvoiceProcessing, stored.Status)
	assert.Len(t, repo.payments, 1)
}

func TestRecordPaymentAfterLateFee(t *testing.T) {
	repo := newMemRepo()
	lease := repo.addLease(farmhouseLease())
	svc := newTestBillingService(repo)
	ctx := context.Background()

	inv, err := svc.GenerateInvoice(ctx, lease.ID, 4, 2024)
	require.NoError(t, err)
	_, err = svc.ApplyLateFeesBatch(ctx, mustDate("2024-04-10"))
	require.NoError(t, err)

	updated, _, err := svc.RecordPayment(ctx, inv.ID, decimal.NewFromInt(1250), "ach", "a")
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceProcessing, updated.Status)

	updated, _, err = svc.RecordPayment(ctx, inv.ID, decimal.NewFromInt(50), "ach", "b")
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceCompleted, updated.Status)
}

func TestStatusOperations(t *testing.T) {
	repo := newMemRepo()
	lease := repo.addLease(farmhouseLease())
	svc := newTestBillingService(repo)
	ctx := context.Background()

	inv, err := svc.GenerateInvoice(ctx, lease.ID, 4, 2024)
	require.NoError(t, err)

	_, err = svc.RefundInvoice(ctx, inv.ID)
	assert.ErrorIs(t, err, billing.ErrInvalidStatusTransition)

	failed, err := svc.MarkPaymentFailed(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceFailed, failed.Status)

	_, _, err = svc.RecordPayment(ctx, inv.ID, decimal.NewFromInt(10), "ach", "x")
	assert.ErrorIs(t, err, billing.ErrInvalidStatusTransition)

	retried, err := svc.RetryInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePending, retried.Status)

	_, _, err = svc.RecordPayment(ctx, inv.ID, decimal.NewFromInt(1250), "ach", "y")
	require.NoError(t, err)

	refunded, err := svc.RefundInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceRefunded, refunded.Status)

	_, err = svc.CancelInvoice(ctx, inv.ID)
	assert.ErrorIs(t, err, billing.ErrInvalidStatusTransition)
	assert.Equal(t, models.InvoiceRefunded, repo.invoice(inv.ID).Status)
}

func TestCancelInvoiceStopsLateFees(t *testing.T) {
	repo := newMemRepo()
	lease := repo.addLease(farmhouseLease())
	svc := newTestBillingService(repo)
	ctx := context.Background()

	inv, err := svc.GenerateInvoice(ctx, lease.ID, 4, 2024)
	require.NoError(t, err)
	_, err = svc.CancelInvoice(ctx, inv.ID)
	require.NoError(t, err)

	result, err := svc.ApplyLateFeesBatch(ctx, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Applied)
	assert.False(t, repo.invoice(inv.ID).LateFeeApplied)
}

func TestRecordPaymentRacingLateFeeIsStale(t *testing.T) {
	repo := newMemRepo()
	lease := repo.addLease(farmhouseLease())
	svc := newTestBillingService(repo)
	ctx := context.Background()

	inv, err := svc.GenerateInvoice(ctx, lease.ID, 4, 2024)
	require.NoError(t, err)

	// the late fee lands after the payment read the invoice
	repo.beforeSavePayment = func() {
		result, err := svc.ApplyLateFeesBatch(ctx, mustDate("2024-04-15"))
		require.NoError(t, err)
		require.Equal(t, 1, result.Applied)
	}

	_, _, err = svc.RecordPayment(ctx, inv.ID, decimal.NewFromInt(1250), "ach", "a")
	assert.ErrorIs(t, err, billing.ErrStaleInvoice)

	stored := repo.invoice(inv.ID)
	assert.Equal(t, models.InvoicePending, stored.Status)
	assert.True(t, stored.AmountPaid.IsZero())
	assert.True(t, stored.LateFeeApplied)
	assert.Empty(t, repo.payments)

	// a retry sees the fee and leaves 50 owing
	updated, _, err := svc.RecordPayment(ctx, inv.ID, decimal.NewFromInt(1250), "ach", "a")
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceProcessing, updated.Status)
	assert.True(t, billing.Balance(updated).Equal(decimal.NewFromInt(50)))
}

func TestLateFeeWriteAfterPaymentIsStale(t *testing.T) {
	repo := newMemRepo()
	lease := repo.addLease(farmhouseLease())
	svc := newTestBillingService(repo)
	ctx := context.Background()

	inv, err := svc.GenerateInvoice(ctx, lease.ID, 4, 2024)
	require.NoError(t, err)

	// the batch reads the open invoice, then the tenant pays in full
	openInvoices, err := repo.ListOpenInvoices(ctx)
	require.NoError(t, err)
	require.Len(t, openInvoices, 1)
	scanned := &openInvoices[0]
	feeApplied, changed := billing.ApplyLateness(scanned, mustDate("2024-04-15"))
	require.True(t, feeApplied)
	require.True(t, changed)

	_, _, err = svc.RecordPayment(ctx, inv.ID, decimal.NewFromInt(1250), "ach", "a")
	require.NoError(t, err)

	err = repo.UpdateLateness(ctx, scanned, feeApplied)
	assert.ErrorIs(t, err, billing.ErrStaleInvoice)

	stored := repo.invoice(inv.ID)
	assert.Equal(t, models.InvoiceCompleted, stored.Status)
	assert.False(t, stored.LateFeeApplied)
	assert.True(t, billing.Balance(&stored).IsZero())
}

func TestLateFeeWriteAfterPartialPaymentIsStale(t *testing.T) {
	repo := newMemRepo()
	lease := repo.addLease(farmhouseLease())
	svc := newTestBillingService(repo)
	ctx := context.Background()

	inv, err := svc.GenerateInvoice(ctx, lease.ID, 4, 2024)
	require.NoError(t, err)

	openInvoices, err := repo.ListOpenInvoices(ctx)
	require.NoError(t, err)
	scanned := &openInvoices[0]
	feeApplied, _ := billing.ApplyLateness(scanned, mustDate("2024-04-15"))

	_, _, err = svc.RecordPayment(ctx, inv.ID, decimal.NewFromInt(500), "ach", "a")
	require.NoError(t, err)

	assert.ErrorIs(t, repo.UpdateLateness(ctx, scanned, feeApplied), billing.ErrStaleInvoice)

	// the next run reads the new paid total and applies the fee
	result, err := svc.ApplyLateFeesBatch(ctx, mustDate("2024-04-16"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)
	stored := repo.invoice(inv.ID)
	assert.True(t, billing.Balance(&stored).Equal(decimal.NewFromInt(800)))
}
