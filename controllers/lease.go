package controllers

import (
	"errors"
	"net/http"
	"strings"
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

type CreateLeaseInput struct {
	PropertyName    string          `json:"propertyName" binding:"required"`
	PropertyAddress string          `json:"propertyAddress"`
	TenantName      string          `json:"tenantName" binding:"required"`
	TenantEmail     string          `json:"tenantEmail" binding:"omitempty,email"`
	TenantPhone     string          `json:"tenantPhone"`
	MonthlyRent     decimal.Decimal `json:"monthlyRent" binding:"required"`
	RentDueDay      int             `json:"rentDueDay" binding:"required,min=1,max=31"`
	LateFeeAmount   decimal.Decimal `json:"lateFeeAmount"`
	GracePeriodDays *int            `json:"gracePeriodDays" binding:"omitempty,min=0"`
	StartDate       string          `json:"startDate" binding:"required"`
	EndDate         *string         `json:"endDate"`
	Notes           string          `json:"notes"`
	// Admins may create leases on behalf of a landlord.
	LandlordID *uuid.UUID `json:"landlordId"`
}

type UpdateLeaseInput struct {
	PropertyName    *string          `json:"propertyName"`
	PropertyAddress *string          `json:"propertyAddress"`
	TenantName      *string          `json:"tenantName"`
	TenantEmail     *string          `json:"tenantEmail" binding:"omitempty,email"`
	TenantPhone     *string          `json:"tenantPhone"`
	MonthlyRent     *decimal.Decimal `json:"monthlyRent"`
	RentDueDay      *int             `json:"rentDueDay" binding:"omitempty,min=1,max=31"`
	LateFeeAmount   *decimal.Decimal `json:"lateFeeAmount"`
	GracePeriodDays *int             `json:"gracePeriodDays" binding:"omitempty,min=0"`
	EndDate         *string          `json:"endDate"`
	Status          *string          `json:"status" binding:"omitempty,oneof=active terminated"`
	Notes           *string          `json:"notes"`
}

// LeaseView adds the lease's position in its term as of today.
type LeaseView struct {
	models.Lease
	TermStatus string `json:"termStatus"`
}

func leaseView(l models.Lease) LeaseView {
	return LeaseView{Lease: l, TermStatus: billing.LeaseStatusAt(&l, time.Now())}
}

const defaultGracePeriodDays = 5

func CreateLease(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var input CreateLeaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.TenantPhone != "" && !utils.ValidatePhone(input.TenantPhone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	start, err := utils.ParseDate(input.StartDate)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid start date")
		return
	}

	lease := models.Lease{
		ID:              uuid.New(),
		LandlordID:      userID,
		PropertyName:    strings.TrimSpace(input.PropertyName),
		PropertyAddress: input.PropertyAddress,
		TenantName:      strings.TrimSpace(input.TenantName),
		TenantEmail:     input.TenantEmail,
		TenantPhone:     input.TenantPhone,
		MonthlyRent:     input.MonthlyRent,
		RentDueDay:      input.RentDueDay,
		LateFeeAmount:   input.LateFeeAmount,
		GracePeriodDays: defaultGracePeriodDays,
		StartDate:       start,
		Status:          models.LeaseStatusActive,
		Notes:           input.Notes,
	}
	if input.GracePeriodDays != nil {
		lease.GracePeriodDays = *input.GracePeriodDays
	}
	if input.LandlordID != nil && isAdmin(c) {
		lease.LandlordID = *input.LandlordID
	}
	if input.EndDate != nil && *input.EndDate != "" {
		end, err := utils.ParseDate(*input.EndDate)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid end date")
			return
		}
		lease.EndDate = &end
	}

	if err := billing.ValidateLease(&lease); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := config.DB.Create(&lease).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create lease")
		return
	}

	c.JSON(http.StatusCreated, leaseView(lease))
}

// GetLeases lists the caller's leases. Filters: status, search (property or tenant).
func GetLeases(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	query := ownedLeases(c, config.DB, userID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(property_name) LIKE ? OR LOWER(tenant_name) LIKE ?", like, like)
	}

	var leases []models.Lease
	if err := query.Order("property_name").Find(&leases).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve leases")
		return
	}

	views := make([]LeaseView, 0, len(leases))
	for _, l := range leases {
		views = append(views, leaseView(l))
	}
	c.JSON(http.StatusOK, views)
}

func GetLease(c *gin.Context) {
	lease, ok := loadOwnedLease(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, leaseView(*lease))
}

func UpdateLease(c *gin.Context) {
	lease, ok := loadOwnedLease(c)
	if !ok {
		return
	}

	var input UpdateLeaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.PropertyName != nil {
		lease.PropertyName = *input.PropertyName
	}
	if input.PropertyAddress != nil {
		lease.PropertyAddress = *input.PropertyAddress
	}
	if input.TenantName != nil {
		lease.TenantName = *input.TenantName
	}
	if input.TenantEmail != nil {
		lease.TenantEmail = *input.TenantEmail
	}
	if input.TenantPhone != nil {
		if *input.TenantPhone != "" && !utils.ValidatePhone(*input.TenantPhone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		lease.TenantPhone = *input.TenantPhone
	}
	if input.MonthlyRent != nil {
		lease.MonthlyRent = *input.MonthlyRent
	}
	if input.RentDueDay != nil {
		lease.RentDueDay = *input.RentDueDay
	}
	if input.LateFeeAmount != nil {
		lease.LateFeeAmount = *input.LateFeeAmount
	}
	if input.GracePeriodDays != nil {
		lease.GracePeriodDays = *input.GracePeriodDays
	}
	if input.EndDate != nil {
		if *input.EndDate == "" {
			lease.EndDate = nil
		} else {
			end, err := utils.ParseDate(*input.EndDate)
			if err != nil {
				utils.RespondWithError(c, http.StatusBadRequest, "Invalid end date")
				return
			}
			lease.EndDate = &end
		}
	}
	if input.Status != nil {
		lease.Status = *input.Status
	}
	if input.Notes != nil {
		lease.Notes = *input.Notes
	}

	if err := billing.ValidateLease(lease); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	// Existing invoices keep the terms they were generated with.
	if err := config.DB.Omit("Invoices").Save(lease).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update lease")
		return
	}

	c.JSON(http.StatusOK, leaseView(*lease))
}

// DeleteLease soft-deletes a lease with no open invoices.
func DeleteLease(c *gin.Context) {
	lease, ok := loadOwnedLease(c)
	if !ok {
		return
	}

	var open int64
	if err := config.DB.Model(&models.RentInvoice{}).
		Where("lease_id = ? AND status IN ?", lease.ID,
			[]models.InvoiceStatus{models.InvoicePending, models.InvoiceProcessing}).
		Count(&open).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if open > 0 {
		utils.RespondWithError(c, http.StatusConflict, "Lease has open invoices")
		return
	}

	if err := config.DB.Delete(lease).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete lease")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lease deleted successfully"})
}

func loadOwnedLease(c *gin.Context) (*models.Lease, bool) {
	userID, ok := currentUser(c)
	if !ok {
		return nil, false
	}
	leaseID, ok := parseID(c)
	if !ok {
		return nil, false
	}

	var lease models.Lease
	if err := ownedLeases(c, config.DB, userID).First(&lease, "id = ?", leaseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Lease not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &lease, true
}
