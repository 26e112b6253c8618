// controllers/service.go
package controllers

import (
	"errors"
	"net/http"

	"salonbook-backend/config"
	"salonbook-backend/models"
	"salonbook-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateServiceInput defines the expected JSON structure for creating a service
type CreateServiceInput struct {
	Name            string  `json:"name" binding:"required"`
	Description     string  `json:"description"`
	Price           float64 `json:"price" binding:"required,min=0"`
	DurationMinutes int     `json:"durationMinutes" binding:"required,min=1"`
	Category        string  `json:"category"`
}

// UpdateServiceInput defines the expected JSON structure for updating a service
type UpdateServiceInput struct {
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	Price           *float64 `json:"price"`
	DurationMinutes *int     `json:"durationMinutes"`
	Category        *string  `json:"category"`
	IsActive        *bool    `json:"isActive"`
}

// CreateService creates a new service for the salon
func CreateService(c *gin.Context) {
	salonUUID, ok := salonUUIDFromContext(c)
	if !ok {
		return
	}
	userUUID, ok := userUUIDFromContext(c)
	if !ok {
		return
	}

	var input CreateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	service := models.Service{
		SalonID:         salonUUID,
		CreatedByUserID: userUUID,
		Name:            input.Name,
		Description:     input.Description,
		Price:           input.Price,
		DurationMinutes: input.DurationMinutes,
		Category:        input.Category,
		IsActive:        true,
	}

	if err := config.DB.Create(&service).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create service")
		return
	}

	c.JSON(http.StatusCreated, service)
}

// GetServices retrieves all services for the salon
func GetServices(c *gin.Context) {
	salonUUID, ok := salonUUIDFromContext(c)
	if !ok {
		return
	}

	var services []models.Service
	if err := config.DB.Where("salon_id = ?", salonUUID).Find(&services).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve services")
		return
	}

	c.JSON(http.StatusOK, services)
}

// GetService retrieves a specific service by ID
func GetService(c *gin.Context) {
	salonUUID, ok := salonUUIDFromContext(c)
	if !ok {
		return
	}

	serviceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format")
		return
	}

	var service models.Service
	if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, serviceUUID).
		First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, service)
}

// UpdateService updates an existing service
func UpdateService(c *gin.Context) {
	salonUUID, ok := salonUUIDFromContext(c)
	if !ok {
		return
	}

	serviceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format")
		return
	}

	var input UpdateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var service models.Service
	if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, serviceUUID).
		First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	// Update fields if provided. Price and duration changes never touch
	// existing bookings: their items carry the snapshot taken at booking
	// time.
	if input.Name != nil {
		service.Name = *input.Name
	}
	if input.Description != nil {
		service.Description = *input.Description
	}
	if input.Price != nil {
		service.Price = *input.Price
	}
	if input.DurationMinutes != nil {
		service.DurationMinutes = *input.DurationMinutes
	}
	if input.Category != nil {
		service.Category = *input.Category
	}
	if input.IsActive != nil {
		service.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&service).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update service")
		return
	}

	c.JSON(http.StatusOK, service)
}

// DeleteService soft deletes a service via its active flag and hard
// unlinks it from every stylist profile.
func DeleteService(c *gin.Context) {
	salonUUID, ok := salonUUIDFromContext(c)
	if !ok {
		return
	}

	serviceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format")
		return
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	result := tx.Model(&models.Service{}).
		Where("salon_id = ? AND id = ? AND is_active = ?", salonUUID, serviceUUID, true).
		Update("is_active", false)
	if result.Error != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete service")
		return
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		return
	}

	if err := tx.Exec("DELETE FROM employee_services WHERE service_id = ?", serviceUUID).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to unlink service")
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete service")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Service deleted successfully"})
}
