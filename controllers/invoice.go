// controllers/invoice.go
package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"m77ag-backend/billing"
	"m77ag-backend/models"
	"m77ag-backend/services"
	"m77ag-backend/spray"
	"m77ag-backend/store"
	"m77ag-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GenerateInvoiceInput struct {
	Month int `json:"month" binding:"required,min=1,max=12"`
	Year  int `json:"year" binding:"required,min=1900"`
}

type RecordPaymentInput struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method" binding:"required"`
	Reference string          `json:"reference"`
}

// InvoiceView adds the outstanding balance.
type InvoiceView struct {
	models.RentInvoice
	AmountOwed decimal.Decimal `json:"amountOwed"`
	Balance    decimal.Decimal `json:"balance"`
}

func invoiceView(inv *models.RentInvoice) InvoiceView {
	return InvoiceView{
		RentInvoice: *inv,
		AmountOwed:  utils.RoundMoney(billing.AmountOwed(inv)),
		Balance:     utils.RoundMoney(billing.Balance(inv)),
	}
}

// InvoiceController serves rent invoices. DB is used for listing and
// ownership checks; everything that changes an invoice goes through Billing.
type InvoiceController struct {
	Billing *services.BillingService
	DB      *gorm.DB
}

// GenerateLeaseInvoice handles POST /api/leases/:id/invoices.
func (ic *InvoiceController) GenerateLeaseInvoice(c *gin.Context) {
	leaseID, ok := parseID(c)
	if !ok || !ic.authorizeLease(c, leaseID) {
		return
	}

	var input GenerateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	inv, err := ic.Billing.GenerateInvoice(c.Request.Context(), leaseID, input.Month, input.Year)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoiceView(inv))
}

// GetInvoices lists invoices. Filters: status, leaseId, late=true.
func (ic *InvoiceController) GetInvoices(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	query := ic.DB.Model(&models.RentInvoice{}).
		Joins("JOIN leases ON leases.id = rent_invoices.lease_id AND leases.deleted_at IS NULL")
	if !isAdmin(c) {
		query = query.Where("leases.landlord_id = ?", userID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("rent_invoices.status = ?", status)
	}
	if leaseID := c.Query("leaseId"); leaseID != "" {
		id, err := uuid.Parse(leaseID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid lease ID format")
			return
		}
		query = query.Where("rent_invoices.lease_id = ?", id)
	}
	if c.Query("late") == "true" {
		query = query.Where("rent_invoices.is_late = ?", true)
	}

	var invoices []models.RentInvoice
	if err := query.Order("rent_invoices.due_date DESC").Find(&invoices).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve invoices")
		return
	}

	views := make([]InvoiceView, 0, len(invoices))
	for i := range invoices {
		views = append(views, invoiceView(&invoices[i]))
	}
	c.JSON(http.StatusOK, views)
}

func (ic *InvoiceController) GetInvoice(c *gin.Context) {
	inv, ok := ic.loadInvoice(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, invoiceView(inv))
}

// GetLateness reports lateness as of ?asOf=YYYY-MM-DD (default now) without
// changing the invoice.
func (ic *InvoiceController) GetLateness(c *gin.Context) {
	inv, ok := ic.loadInvoice(c)
	if !ok {
		return
	}

	asOf := time.Now()
	if v := c.Query("asOf"); v != "" {
		parsed, err := utils.ParseDate(v)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid asOf date")
			return
		}
		asOf = parsed
	}

	c.JSON(http.StatusOK, billing.EvaluateLateness(inv, asOf))
}

func (ic *InvoiceController) RecordPayment(c *gin.Context) {
	inv, ok := ic.loadInvoice(c)
	if !ok {
		return
	}

	var input RecordPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	updated, payment, err := ic.Billing.RecordPayment(c.Request.Context(), inv.ID, input.Amount, input.Method, input.Reference)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"invoice": invoiceView(updated),
		"payment": payment,
	})
}

func (ic *InvoiceController) MarkFailed(c *gin.Context) {
	ic.changeStatus(c, ic.Billing.MarkPaymentFailed)
}

func (ic *InvoiceController) Retry(c *gin.Context) {
	ic.changeStatus(c, ic.Billing.RetryInvoice)
}

func (ic *InvoiceController) Refund(c *gin.Context) {
	ic.changeStatus(c, ic.Billing.RefundInvoice)
}

func (ic *InvoiceController) Cancel(c *gin.Context) {
	ic.changeStatus(c, ic.Billing.CancelInvoice)
}

func (ic *InvoiceController) changeStatus(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*models.RentInvoice, error)) {
	inv, ok := ic.loadInvoice(c)
	if !ok {
		return
	}
	updated, err := op(c.Request.Context(), inv.ID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoiceView(updated))
}

func (ic *InvoiceController) loadInvoice(c *gin.Context) (*models.RentInvoice, bool) {
	id, ok := parseID(c)
	if !ok {
		return nil, false
	}
	inv, err := ic.Billing.GetInvoice(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err)
		return nil, false
	}
	if !ic.authorizeLease(c, inv.LeaseID) {
		return nil, false
	}
	return inv, true
}

// authorizeLease responds 404 when a non-admin does not own the lease.
func (ic *InvoiceController) authorizeLease(c *gin.Context, leaseID uuid.UUID) bool {
	if isAdmin(c) {
		return true
	}
	userID, ok := currentUser(c)
	if !ok {
		return false
	}

	var count int64
	if err := ic.DB.Model(&models.Lease{}).
		Where("id = ? AND landlord_id = ?", leaseID, userID).
		Count(&count).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return false
	}
	if count == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Lease not found")
		return false
	}
	return true
}

// respondDomainError maps billing and spray errors to HTTP statuses.
func respondDomainError(c *gin.Context, err error) {
	var over *billing.OverpaymentError
	switch {
	case errors.As(err, &over):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"error":     err.Error(),
			"attempted": over.Attempted,
			"remaining": over.Remaining,
		})
	case errors.Is(err, billing.ErrLeaseNotFound),
		errors.Is(err, billing.ErrInvoiceNotFound),
		errors.Is(err, store.ErrProgramNotFound):
		utils.RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, billing.ErrDuplicateInvoice),
		errors.Is(err, billing.ErrInvalidStatusTransition),
		errors.Is(err, billing.ErrStaleInvoice):
		utils.RespondWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, billing.ErrInvalidPaymentAmount),
		errors.Is(err, billing.ErrLeaseNotActive),
		errors.Is(err, billing.ErrInvalidLease),
		errors.Is(err, billing.ErrInvalidPeriod),
		errors.Is(err, spray.ErrUnsupportedUnitConversion),
		errors.Is(err, spray.ErrInvalidPrice),
		errors.Is(err, spray.ErrInvalidRate),
		errors.Is(err, spray.ErrInvalidArea),
		errors.Is(err, spray.ErrInvalidContainer),
		errors.Is(err, spray.ErrInvalidDiscountTier):
		utils.RespondWithError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		utils.RespondWithError(c, http.StatusGatewayTimeout, "Request timed out")
	default:
		utils.RespondWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}
