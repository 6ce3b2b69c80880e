package controllers

import (
	"net/http"
	"time"

	"m77ag-backend/services"
	"m77ag-backend/utils"

	"github.com/gin-gonic/gin"
)

type LateFeeRunInput struct {
	AsOf string `json:"asOf"`
}

// BillingController triggers the scheduled billing jobs on demand.
type BillingController struct {
	Billing   *services.BillingService
	Reminders *services.ReminderService
}

// GenerateInvoices handles POST /api/billing/generate.
func (bc *BillingController) GenerateInvoices(c *gin.Context) {
	var input GenerateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	result, err := bc.Billing.AutoGenerateForAllActiveLeases(c.Request.Context(), input.Month, input.Year)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ApplyLateFees handles POST /api/billing/late-fees. asOf defaults to now.
func (bc *BillingController) ApplyLateFees(c *gin.Context) {
	asOf, ok := bindAsOf(c)
	if !ok {
		return
	}

	result, err := bc.Billing.ApplyLateFeesBatch(c.Request.Context(), asOf)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"asOf":     result.AsOf,
		"scanned":  result.Scanned,
		"applied":  result.Applied,
		"updated":  result.Updated,
		"modified": result.Modified(),
		"failed":   result.Failed,
	})
}

// SendReminders handles POST /api/billing/reminders.
func (bc *BillingController) SendReminders(c *gin.Context) {
	if bc.Reminders == nil {
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Reminders are not configured")
		return
	}
	asOf, ok := bindAsOf(c)
	if !ok {
		return
	}

	result, err := bc.Reminders.SendRentReminders(c.Request.Context(), asOf)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// bindAsOf reads an optional {"asOf": "YYYY-MM-DD"} body.
func bindAsOf(c *gin.Context) (time.Time, bool) {
	var input LateFeeRunInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
			return time.Time{}, false
		}
	}
	if input.AsOf == "" {
		return time.Now(), true
	}
	asOf, err := utils.ParseDate(input.AsOf)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid asOf date")
		return time.Time{}, false
	}
	return asOf, true
}
