// controllers/report.go
package controllers

import (
	"net/http"
	"strconv"
	"time"

	"m77ag-backend/config"
	"m77ag-backend/models"
	"m77ag-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReportController handles rent collection reporting
type ReportController struct{}

// MonthlyRentSummary is one billing period across the caller's leases.
type MonthlyRentSummary struct {
	Month          int             `json:"month"`
	Invoices       int             `json:"invoices"`
	Billed         decimal.Decimal `json:"billed"`
	LateFees       decimal.Decimal `json:"lateFees"`
	Collected      decimal.Decimal `json:"collected"`
	LateInvoices   int             `json:"lateInvoices"`
	CollectionRate decimal.Decimal `json:"collectionRate"` // percent of billed plus fees
}

type RentReport struct {
	Year          int                  `json:"year"`
	Months        []MonthlyRentSummary `json:"months"`
	TotalBilled   decimal.Decimal      `json:"totalBilled"`
	TotalLateFees decimal.Decimal      `json:"totalLateFees"`
	TotalPaid     decimal.Decimal      `json:"totalCollected"`
	YearGrowth    decimal.Decimal      `json:"yearGrowth"` // collected vs previous year, percent
}

// GetRentReport handles GET /api/reports/rent?year=YYYY.
func (rc *ReportController) GetRentReport(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	year := time.Now().Year()
	if v := c.Query("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1900 {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid year")
			return
		}
		year = parsed
	}

	months, err := rc.monthlySummaries(c, userID, year)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to build rent report")
		return
	}
	previous, err := rc.monthlySummaries(c, userID, year-1)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to build rent report")
		return
	}

	report := RentReport{
		Year:          year,
		Months:        months,
		TotalBilled:   decimal.Zero,
		TotalLateFees: decimal.Zero,
		TotalPaid:     decimal.Zero,
	}
	previousPaid := decimal.Zero
	for _, m := range months {
		report.TotalBilled = report.TotalBilled.Add(m.Billed)
		report.TotalLateFees = report.TotalLateFees.Add(m.LateFees)
		report.TotalPaid = report.TotalPaid.Add(m.Collected)
	}
	for _, m := range previous {
		previousPaid = previousPaid.Add(m.Collected)
	}
	report.YearGrowth = rc.calculateGrowthPercentage(report.TotalPaid, previousPaid)

	c.JSON(http.StatusOK, report)
}

func (rc *ReportController) monthlySummaries(c *gin.Context, userID uuid.UUID, year int) ([]MonthlyRentSummary, error) {
	var rows []struct {
		PeriodMonth  int
		Invoices     int
		Billed       decimal.Decimal
		LateFees     decimal.Decimal
		Collected    decimal.Decimal
		LateInvoices int
	}

	query := config.DB.Model(&models.RentInvoice{}).
		Joins("JOIN leases ON leases.id = rent_invoices.lease_id").
		Select(`rent_invoices.period_month,
			COUNT(*) AS invoices,
			COALESCE(SUM(rent_invoices.amount_due), 0) AS billed,
			COALESCE(SUM(CASE WHEN rent_invoices.late_fee_applied THEN rent_invoices.late_fee_amount ELSE 0 END), 0) AS late_fees,
			COALESCE(SUM(rent_invoices.amount_paid), 0) AS collected,
			SUM(CASE WHEN rent_invoices.is_late THEN 1 ELSE 0 END) AS late_invoices`).
		Where("rent_invoices.period_year = ? AND rent_invoices.status <> ?", year, models.InvoiceCancelled).
		Group("rent_invoices.period_month").
		Order("rent_invoices.period_month")
	query = rc.scope(c, query, userID)

	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]MonthlyRentSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, MonthlyRentSummary{
			Month:          r.PeriodMonth,
			Invoices:       r.Invoices,
			Billed:         r.Billed,
			LateFees:       r.LateFees,
			Collected:      r.Collected,
			LateInvoices:   r.LateInvoices,
			CollectionRate: rc.collectionRate(r.Collected, r.Billed.Add(r.LateFees)),
		})
	}
	return out, nil
}

func (rc *ReportController) scope(c *gin.Context, db *gorm.DB, userID uuid.UUID) *gorm.DB {
	if isAdmin(c) {
		return db
	}
	return db.Where("leases.landlord_id = ?", userID)
}

func (rc *ReportController) collectionRate(collected, owed decimal.Decimal) decimal.Decimal {
	if owed.IsZero() {
		return decimal.Zero
	}
	return collected.Div(owed).Mul(decimal.NewFromInt(100)).Round(1)
}

func (rc *ReportController) calculateGrowthPercentage(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.IsZero() {
			return decimal.Zero
		}
		return decimal.NewFromInt(100)
	}
	return current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(1)
}
