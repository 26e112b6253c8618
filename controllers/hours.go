// controllers/hours.go
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"salonbook-backend/config"
	"salonbook-backend/models"
	"salonbook-backend/scheduling"
	"salonbook-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetSalonHoursInput upserts the salon's opening hours for one weekday.
type SetSalonHoursInput struct {
	Weekday   int    `json:"weekday" binding:"min=0,max=6"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
}

// GetSalonHours lists the salon's weekly opening hours
func GetSalonHours(c *gin.Context) {
	salonUUID, ok := salonUUIDFromContext(c)
	if !ok {
		return
	}

	var hours []models.SalonAvailability
	if err := config.DB.Where("salon_id = ?", salonUUID).
		Order("weekday").Find(&hours).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve hours")
		return
	}

	c.JSON(http.StatusOK, hours)
}

// SetSalonHours creates or replaces the opening window for a weekday
func SetSalonHours(c *gin.Context) {
	salonUUID, ok := salonUUIDFromContext(c)
	if !ok {
		return
	}

	var input SetSalonHoursInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	start, err := scheduling.ParseTimeOfDay(input.StartTime)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	end, err := scheduling.ParseTimeOfDay(input.EndTime)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if !start.Before(end) {
		utils.RespondWithError(c, http.StatusBadRequest, "endTime must be after startTime")
		return
	}

	hours := models.SalonAvailability{
		SalonID:   salonUUID,
		Weekday:   input.Weekday,
		StartTime: start.String(),
		EndTime:   end.String(),
	}

	var existing models.SalonAvailability
	err = config.DB.Where("salon_id = ? AND weekday = ?", salonUUID, input.Weekday).
		First(&existing).Error
	switch {
	case err == nil:
		existing.StartTime = hours.StartTime
		existing.EndTime = hours.EndTime
		if err := config.DB.Save(&existing).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update hours")
			return
		}
		c.JSON(http.StatusOK, existing)
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := config.DB.Create(&hours).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create hours")
			return
		}
		c.JSON(http.StatusCreated, hours)
	default:
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
	}
}

// DeleteSalonHours closes the salon on a weekday
func DeleteSalonHours(c *gin.Context) {
	salonUUID, ok := salonUUIDFromContext(c)
	if !ok {
		return
	}

	weekday, err := strconv.Atoi(c.Param("weekday"))
	if err != nil || !utils.ValidateWeekday(weekday) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid weekday")
		return
	}

	result := config.DB.Where("salon_id = ? AND weekday = ?", salonUUID, weekday).
		Delete(&models.SalonAvailability{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete hours")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "No hours defined for that weekday")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Hours deleted successfully"})
}
