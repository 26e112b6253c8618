// controllers/unavailability.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"salonbook-backend/config"
	"salonbook-backend/models"
	"salonbook-backend/scheduling"
	"salonbook-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateUnavailabilityInput defines a weekly recurring block
type CreateUnavailabilityInput struct {
	Weekday             int    `json:"weekday" binding:"min=0,max=6"`
	StartTime           string `json:"startTime" binding:"required"`
	EndTime             string `json:"endTime" binding:"required"`
	SlotIntervalMinutes int    `json:"slotIntervalMinutes" binding:"min=0"`
	Reason              string `json:"reason"`
}

// DeleteUnavailabilityInput identifies a block either by id or by its
// exact (weekday, startTime, endTime) triple.
type DeleteUnavailabilityInput struct {
	ID        *uuid.UUID `json:"id"`
	Weekday   *int       `json:"weekday"`
	StartTime *string    `json:"startTime"`
	EndTime   *string    `json:"endTime"`
}

// CreateUnavailability adds a recurring weekly block to the logged-in
// stylist's calendar. The block must sit inside the stylist's hours for
// that weekday, must not overlap another block, and must not cover any
// SCHEDULED booking; conflicting bookings are returned for resolution
// rather than silently overridden.
func CreateUnavailability(c *gin.Context) {
	callerID, ok := userUUIDFromContext(c)
	if !ok {
		return
	}
	employee, err := employeeForUser(config.DB, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Stylist profile not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var input CreateUnavailabilityInput
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

	// The block must lie within the stylist's availability window.
	var hours models.EmployeeAvailability
	if err := config.DB.Where("employee_id = ? AND weekday = ?", employee.ID, input.Weekday).
		First(&hours).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "No availability defined for that weekday")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}
	hoursStart, err := scheduling.ParseTimeOfDay(hours.StartTime)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	hoursEnd, err := scheduling.ParseTimeOfDay(hours.EndTime)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if start.Before(hoursStart) || hoursEnd.Before(end) {
		utils.RespondWithError(c, http.StatusBadRequest, "Block must be within your availability window")
		return
	}

	interval := input.SlotIntervalMinutes
	if interval == 0 {
		interval = hours.SlotIntervalMinutes
	}

	block := models.EmployeeUnavailability{
		EmployeeID:          employee.ID,
		Weekday:             input.Weekday,
		StartTime:           start.String(),
		EndTime:             end.String(),
		SlotIntervalMinutes: interval,
		Reason:              input.Reason,
	}

	var salon models.Salon
	if err := config.DB.First(&salon, "id = ?", employee.SalonID).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	loc := salonLocation(salon)

	// Block writes take the same per-employee lock as reservations, so
	// neither can slip its conflict check past the other.
	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := lockEmployee(tx, employee.ID); err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	var existing []models.EmployeeUnavailability
	if err := tx.Where("employee_id = ? AND weekday = ?", employee.ID, input.Weekday).
		Find(&existing).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	for _, other := range existing {
		otherStart, err := scheduling.ParseTimeOfDay(other.StartTime)
		if err != nil {
			continue
		}
		otherEnd, err := scheduling.ParseTimeOfDay(other.EndTime)
		if err != nil {
			continue
		}
		if start.Before(otherEnd) && otherStart.Before(end) {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusConflict, "Block overlaps an existing block")
			return
		}
	}

	conflicting, err := bookingsInsideBlock(tx, employee.ID, input.Weekday, start, end, loc)
	if err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if len(conflicting) > 0 {
		tx.Rollback()
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error":                "Block overlaps scheduled bookings",
			"conflicting_bookings": conflicting,
		})
		return
	}

	if err := tx.Create(&block).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create block")
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create block")
		return
	}

	c.JSON(http.StatusCreated, block)
}

// GetUnavailability lists the stylist's recurring blocks ordered by
// weekday then start, optionally filtered with ?weekday=.
func GetUnavailability(c *gin.Context) {
	callerID, ok := userUUIDFromContext(c)
	if !ok {
		return
	}
	employee, err := employeeForUser(config.DB, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Stylist profile not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	q := config.DB.Where("employee_id = ?", employee.ID).Order("weekday, start_time")
	if weekday := c.Query("weekday"); weekday != "" {
		q = q.Where("weekday = ?", weekday)
	}

	var blocks []models.EmployeeUnavailability
	if err := q.Find(&blocks).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve blocks")
		return
	}

	c.JSON(http.StatusOK, blocks)
}

// DeleteUnavailability removes exactly one block; deleting a block that
// does not exist is a 404, never a silent no-op.
func DeleteUnavailability(c *gin.Context) {
	callerID, ok := userUUIDFromContext(c)
	if !ok {
		return
	}
	employee, err := employeeForUser(config.DB, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Stylist profile not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var input DeleteUnavailabilityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	q := config.DB.Where("employee_id = ?", employee.ID)
	switch {
	case input.ID != nil:
		q = q.Where("id = ?", *input.ID)
	case input.Weekday != nil && input.StartTime != nil && input.EndTime != nil:
		start, err := scheduling.ParseTimeOfDay(*input.StartTime)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		end, err := scheduling.ParseTimeOfDay(*input.EndTime)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		q = q.Where("weekday = ? AND start_time = ? AND end_time = ?",
			*input.Weekday, start.String(), end.String())
	default:
		utils.RespondWithError(c, http.StatusBadRequest, "Provide id or weekday with startTime and endTime")
		return
	}

	result := q.Delete(&models.EmployeeUnavailability{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete block")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Block not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Block deleted successfully"})
}

// bookingsInsideBlock returns SCHEDULED bookings whose salon-local
// occurrence lands on the block's weekday overlapping [start, end).
// Bookings recur nowhere, so the whole SCHEDULED set is examined; the
// sweep keeps that set bounded to upcoming appointments.
func bookingsInsideBlock(tx *gorm.DB, employeeID uuid.UUID, weekday int, start, end scheduling.TimeOfDay, loc *time.Location) ([]models.Booking, error) {
	var scheduled []models.Booking
	if err := tx.Where("employee_id = ? AND status = ?", employeeID, models.BookingScheduled).
		Find(&scheduled).Error; err != nil {
		return nil, err
	}

	var conflicting []models.Booking
	for _, booking := range scheduled {
		localDate := scheduling.LocalDate(booking.ScheduledStart, loc)
		if int(localDate.Weekday()) != weekday {
			continue
		}
		window := scheduling.Interval{
			Start: scheduling.LocalToUTC(start, localDate, loc),
			End:   scheduling.LocalToUTC(end, localDate, loc),
		}
		span := scheduling.Interval{Start: booking.ScheduledStart, End: booking.ScheduledEnd}
		if span.Overlaps(window) {
			conflicting = append(conflicting, booking)
		}
	}
	return conflicting, nil
}
