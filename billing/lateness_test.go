package billing_test

import (
	"testing"
	"time"

	"m77ag-backend/billing"
	"m77ag-backend/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateLateness_GraceBoundary(t *testing.T) {
	lease := testLease()
	inv, err := billing.NewInvoice(lease, 3, 2024)
	require.NoError(t, err)

	tests := []struct {
		name     string
		asOf     time.Time
		wantLate bool
	}{
		{"on due date", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), false},
		{"boundary day at midnight", time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), false},
		{"boundary day morning run", time.Date(2024, 3, 9, 7, 0, 0, 0, time.UTC), false},
		{"boundary day end", time.Date(2024, 3, 9, 23, 59, 59, 0, time.UTC), false},
		{"first late day", time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), true},
		{"later", time.Date(2024, 3, 12, 12, 0, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := billing.EvaluateLateness(inv, tt.asOf)
			assert.Equal(t, tt.wantLate, got.IsLate)
			assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), got.GraceEndsAt)
			if tt.wantLate {
				assert.True(t, got.FeeDue.Equal(decimal.NewFromInt(50)))
			} else {
				assert.True(t, got.FeeDue.IsZero())
			}
		})
	}
}

func TestEvaluateLateness_ZeroGrace(t *testing.T) {
	lease := testLease()
	lease.GracePeriodDays = 0
	inv, err := billing.NewInvoice(lease, 5, 2024)
	require.NoError(t, err)

	assert.False(t, billing.EvaluateLateness(inv, time.Date(2024, 5, 2, 23, 0, 0, 0, time.UTC)).IsLate)
	assert.True(t, billing.EvaluateLateness(inv, time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)).IsLate)
}

func TestEvaluateLateness_DueDateInLocalZone(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	inv, err := billing.NewInvoice(testLease(), 4, 2024)
	require.NoError(t, err)
	// drivers return timestamptz in the server zone: 2024-03-31 19:00 CDT
	inv.DueDate = inv.DueDate.In(chicago)

	boundary := billing.EvaluateLateness(inv, time.Date(2024, 4, 9, 0, 0, 0, 0, time.UTC))
	assert.False(t, boundary.IsLate)
	assert.True(t, boundary.FeeDue.IsZero())
	assert.Equal(t, time.Date(2024, 4, 9, 0, 0, 0, 0, time.UTC), boundary.GraceEndsAt)

	got := billing.EvaluateLateness(inv, time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC))
	assert.True(t, got.IsLate)
	assert.Equal(t, 9, got.DaysLate)
}

func TestEvaluateLateness_AsOfCalendarDateInItsOwnZone(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	inv, err := billing.NewInvoice(testLease(), 4, 2024)
	require.NoError(t, err)

	// 20:00 on April 9 in Chicago is already April 10 in UTC
	evening := time.Date(2024, 4, 9, 20, 0, 0, 0, chicago)
	assert.False(t, billing.EvaluateLateness(inv, evening).IsLate)

	morning := time.Date(2024, 4, 10, 7, 0, 0, 0, chicago)
	got := billing.EvaluateLateness(inv, morning)
	assert.True(t, got.IsLate)
	assert.Equal(t, 9, got.DaysLate)
}

func TestApplyLateness_OneTimeFee(t *testing.T) {
	inv, err := billing.NewInvoice(testLease(), 4, 2024)
	require.NoError(t, err)

	applied, changed := billing.ApplyLateness(inv, time.Date(2024, 4, 9, 0, 0, 0, 0, time.UTC))
	assert.False(t, applied)
	assert.False(t, changed)
	assert.True(t, billing.AmountOwed(inv).Equal(decimal.NewFromInt(1250)))

	applied, changed = billing.ApplyLateness(inv, time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC))
	assert.True(t, applied)
	assert.True(t, changed)
	assert.True(t, inv.IsLate)
	assert.Equal(t, 9, inv.DaysLate)
	assert.True(t, billing.AmountOwed(inv).Equal(decimal.NewFromInt(1300)))

	applied, _ = billing.ApplyLateness(inv, time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC))
	assert.False(t, applied)
	assert.Equal(t, 19, inv.DaysLate)
	assert.True(t, billing.AmountOwed(inv).Equal(decimal.NewFromInt(1300)))
}

func TestEvaluateLateness_ClosedInvoiceNeverLate(t *testing.T) {
	inv, err := billing.NewInvoice(testLease(), 4, 2024)
	require.NoError(t, err)
	inv.Status = models.InvoiceCompleted

	got := billing.EvaluateLateness(inv, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.False(t, got.IsLate)
	assert.True(t, got.FeeDue.IsZero())
}

func TestEvaluateLateness_NoFeeConfigured(t *testing.T) {
	lease := testLease()
	lease.LateFeeAmount = decimal.Zero
	inv, err := billing.NewInvoice(lease, 4, 2024)
	require.NoError(t, err)

	applied, changed := billing.ApplyLateness(inv, time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC))
	assert.False(t, applied)
	assert.True(t, changed)
	assert.True(t, inv.IsLate)
	assert.False(t, inv.LateFeeApplied)
}
