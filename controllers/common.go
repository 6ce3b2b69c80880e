package controllers

import (
	"net/http"

	"m77ag-backend/models"
	"m77ag-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// currentUser reads the authenticated user id. It responds 401 and returns
// false when missing.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return uuid.Nil, false
	}
	id, ok := userID.(string)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid user ID")
		return uuid.Nil, false
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid user ID format")
		return uuid.Nil, false
	}
	return parsed, true
}

func isAdmin(c *gin.Context) bool {
	role, _ := c.Get("role")
	return role == models.RoleAdmin
}

// ownedLeases limits a lease query to the caller's leases. Admins see all.
func ownedLeases(c *gin.Context, db *gorm.DB, userID uuid.UUID) *gorm.DB {
	if isAdmin(c) {
		return db
	}
	return db.Where("landlord_id = ?", userID)
}

// parseID reads the :id path parameter, responding 400 on failure.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}
