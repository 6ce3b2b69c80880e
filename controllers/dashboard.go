package controllers

import (
	"net/http"
	"strconv"
	"time"

	"m77ag-backend/billing"
	"m77ag-backend/config"
	"m77ag-backend/models"
	"m77ag-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DashboardOverview struct {
	ActiveLeases       int             `json:"activeLeases"`
	OpenInvoices       int             `json:"openInvoices"`
	LateInvoices       int             `json:"lateInvoices"`
	OutstandingBalance decimal.Decimal `json:"outstandingBalance"`
	CollectedThisMonth decimal.Decimal `json:"collectedThisMonth"`
	UpcomingDue        []UpcomingDue   `json:"upcomingDue"`
	RecentPayments     []RecentPayment `json:"recentPayments"`
}

type UpcomingDue struct {
	InvoiceID    uuid.UUID       `json:"invoiceId"`
	PropertyName string          `json:"propertyName"`
	TenantName   string          `json:"tenantName"`
	Balance      decimal.Decimal `json:"balance"`
	Due          string          `json:"due"` // e.g. "Today", "Tomorrow", "3 days"
}

type RecentPayment struct {
	PropertyName string          `json:"propertyName"`
	Amount       decimal.Decimal `json:"amount"`
	Method       string          `json:"method"`
	PaidDate     string          `json:"paidDate"` // e.g. "Today", "Yesterday"
}

func GetDashboardOverview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Joins("JOIN leases ON leases.id = rent_invoices.lease_id AND leases.deleted_at IS NULL")
		if isAdmin(c) {
			return db
		}
		return db.Where("leases.landlord_id = ?", userID)
	}

	var overview DashboardOverview

	var activeLeases int64
	ownedLeases(c, config.DB.Model(&models.Lease{}), userID).
		Where("status = ?", models.LeaseStatusActive).
		Count(&activeLeases)
	overview.ActiveLeases = int(activeLeases)

	var open []models.RentInvoice
	if err := config.DB.Scopes(scope).Preload("Lease").
		Where("rent_invoices.status IN ?", []models.InvoiceStatus{models.InvoicePending, models.InvoiceProcessing}).
		Order("rent_invoices.due_date").
		Find(&open).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load invoices")
		return
	}

	now := time.Now()
	today := utils.BeginningOfDay(now.UTC())
	overview.OpenInvoices = len(open)
	overview.OutstandingBalance = decimal.Zero
	overview.UpcomingDue = []UpcomingDue{}
	for i := range open {
		inv := &open[i]
		overview.OutstandingBalance = overview.OutstandingBalance.Add(billing.Balance(inv))
		if billing.EvaluateLateness(inv, now).IsLate {
			overview.LateInvoices++
			continue
		}
		days := utils.DaysBetween(today, inv.DueDate)
		if days < 0 || days > 7 || len(overview.UpcomingDue) >= 5 {
			continue
		}
		entry := UpcomingDue{
			InvoiceID: inv.ID,
			Balance:   utils.RoundMoney(billing.Balance(inv)),
			Due:       relativeDays(days),
		}
		if inv.Lease != nil {
			entry.PropertyName = inv.Lease.PropertyName
			entry.TenantName = inv.Lease.TenantName
		}
		overview.UpcomingDue = append(overview.UpcomingDue, entry)
	}
	overview.OutstandingBalance = utils.RoundMoney(overview.OutstandingBalance)

	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	config.DB.Model(&models.Payment{}).
		Joins("JOIN rent_invoices ON rent_invoices.id = payments.invoice_id").
		Scopes(scope).
		Where("payments.paid_date >= ?", firstOfMonth).
		Select("COALESCE(SUM(payments.amount), 0)").
		Scan(&overview.CollectedThisMonth)

	var recent []struct {
		PropertyName string
		Amount       decimal.Decimal
		Method       string
		PaidDate     time.Time
	}
	config.DB.Model(&models.Payment{}).
		Joins("JOIN rent_invoices ON rent_invoices.id = payments.invoice_id").
		Scopes(scope).
		Select("leases.property_name, payments.amount, payments.method, payments.paid_date").
		Order("payments.paid_date DESC").
		Limit(5).
		Scan(&recent)

	overview.RecentPayments = make([]RecentPayment, 0, len(recent))
	for _, p := range recent {
		overview.RecentPayments = append(overview.RecentPayments, RecentPayment{
			PropertyName: p.PropertyName,
			Amount:       p.Amount,
			Method:       p.Method,
			PaidDate:     relativeDays(-utils.DaysBetween(p.PaidDate, today)),
		})
	}

	c.JSON(http.StatusOK, overview)
}

// relativeDays renders a day offset from today.
func relativeDays(days int) string {
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days == -1:
		return "Yesterday"
	case days > 1:
		return strconv.Itoa(days) + " days"
	default:
		return strconv.Itoa(-days) + " days ago"
	}
}
