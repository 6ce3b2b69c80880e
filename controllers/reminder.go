// controllers/reminder.go
package controllers

import (
	"errors"
	"net/http"

	"m77ag-backend/config"
	"m77ag-backend/models"
	"m77ag-backend/services"
	"m77ag-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UpdateReminderTemplateInput struct {
	Message  *string `json:"message"`
	IsActive *bool   `json:"isActive"`
}

func validReminderType(t string) bool {
	return t == models.ReminderUpcoming || t == models.ReminderOverdue
}

// EnsureDefaultReminderTemplates stores the built-in templates for any type
// that has none yet.
func EnsureDefaultReminderTemplates(db *gorm.DB) error {
	for _, t := range []string{models.ReminderUpcoming, models.ReminderOverdue} {
		var existing models.ReminderTemplate
		err := db.Where("type = ?", t).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		tmpl := models.ReminderTemplate{Type: t, Message: services.DefaultReminderMessage(t), IsActive: true}
		if err := db.Create(&tmpl).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return nil
}

func GetReminderTemplates(c *gin.Context) {
	var templates []models.ReminderTemplate
	if err := config.DB.Order("type").Find(&templates).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch reminder templates")
		return
	}
	c.JSON(http.StatusOK, templates)
}

// UpdateReminderTemplate edits or creates the template for :type.
func UpdateReminderTemplate(c *gin.Context) {
	reminderType := c.Param("type")
	if !validReminderType(reminderType) {
		utils.RespondWithError(c, http.StatusBadRequest, "Type must be upcoming or overdue")
		return
	}

	var input UpdateReminderTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Message != nil && *input.Message == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Message cannot be empty")
		return
	}

	var template models.ReminderTemplate
	err := config.DB.Where("type = ?", reminderType).First(&template).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		template = models.ReminderTemplate{
			Type:     reminderType,
			Message:  services.DefaultReminderMessage(reminderType),
			IsActive: true,
		}
	}

	if input.Message != nil {
		template.Message = *input.Message
	}
	if input.IsActive != nil {
		template.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&template).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to save reminder template")
		return
	}
	c.JSON(http.StatusOK, template)
}

// GetReminderLogs lists sent and failed reminders, newest first.
func GetReminderLogs(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	query := config.DB.Model(&models.ReminderLog{}).
		Joins("JOIN leases ON leases.id = reminder_logs.lease_id")
	if !isAdmin(c) {
		query = query.Where("leases.landlord_id = ?", userID)
	}
	if invoiceID := c.Query("invoiceId"); invoiceID != "" {
		query = query.Where("reminder_logs.invoice_id = ?", invoiceID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("reminder_logs.status = ?", status)
	}

	var logs []models.ReminderLog
	if err := query.Order("reminder_logs.sent_at DESC").Limit(200).Find(&logs).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch reminder logs")
		return
	}
	c.JSON(http.StatusOK, logs)
}
