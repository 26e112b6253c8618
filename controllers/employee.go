// controllers/employee.go
package controllers

import (
	"errors"
	"net/http"

	"salonbook-backend/config"
	"salonbook-backend/models"
	"salonbook-backend/scheduling"
	"salonbook-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AddEmployeeInput struct {
	Name   string     `json:"name" binding:"required"`
	Phone  string     `json:"phone"`
	UserID *uuid.UUID `json:"userId"` // optional stylist login account
}

type UpdateEmployeeInput struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	IsActive *bool   `json:"isActive"`
}

// SetEmployeeAvailabilityInput upserts one weekday's working hours.
type SetEmployeeAvailabilityInput struct {
	Weekday             int    `json:"weekday" binding:"min=0,max=6"`
	StartTime           string `json:"startTime" binding:"required"`
	EndTime             string `json:"endTime" binding:"required"`
	SlotIntervalMinutes int    `json:"slotIntervalMinutes" binding:"required,min=5"`
}

type LinkServiceInput struct {
	ServiceID uuid.UUID `json:"serviceId" binding:"required"`
}

// AddEmployee creates a stylist in the owner's salon
func AddEmployee(c *gin.Context) {
	salonUUID, ok := salonUUIDFromContext(c)
	if !ok {
		return
	}

	var input AddEmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	employee := models.Employee{
		SalonID:  salonUUID,
		UserID:   input.UserID,
		Name:     input.Name,
		Phone:    input.Phone,
		IsActive: true,
	}

	if err := config.DB.Create(&employee).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create employee")
		return
	}

	c.JSON(http.StatusCreated, employee)
}

// GetEmployees retrieves all employees of the salon with their hours and services
func GetEmployees(c *gin.Context) {
	salonUUID, ok := salonUUIDFromContext(c)
	if !ok {
		return
	}

	var employees []models.Employee
	if err := config.DB.Preload("Availabilities").Preload("Services").
		Where("salon_id = ?", salonUUID).Find(&employees).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve employees")
		return
	}

	c.JSON(http.StatusOK, employees)
}

// UpdateEmployee updates name, phone or the active flag
func UpdateEmployee(c *gin.Context) {
	salonUUID, ok := salonUUIDFromContext(c)
	if !ok {
		return
	}

	employeeUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid employee ID format")
		return
	}

	var input UpdateEmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var employee models.Employee
	if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, employeeUUID).
		First(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Employee not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		employee.Name = *input.Name
	}
	if input.Phone != nil {
		employee.Phone = *input.Phone
	}
	if input.IsActive != nil {
		employee.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&employee).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update employee")
		return
	}

	c.JSON(http.StatusOK, employee)
}

// DeleteEmployee deactivates an employee; their booking history remains.
func DeleteEmployee(c *gin.Context) {
	salonUUID, ok := salonUUIDFromContext(c)
	if !ok {
		return
	}

	employeeUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid employee ID format")
		return
	}

	result := config.DB.Model(&models.Employee{}).
		Where("salon_id = ? AND id = ? AND is_active = ?", salonUUID, employeeUUID, true).
		Update("is_active", false)
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete employee")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Employee not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Employee deactivated successfully"})
}

// SetEmployeeAvailability upserts the stylist's hours for one weekday.
// The window must fall inside the salon's hours for that weekday; this
// is enforced here at write time, not re-validated per read.
func SetEmployeeAvailability(c *gin.Context) {
	salonUUID, ok := salonUUIDFromContext(c)
	if !ok {
		return
	}

	employeeUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid employee ID format")
		return
	}

	var input SetEmployeeAvailabilityInput
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

	var employee models.Employee
	if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, employeeUUID).
		First(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Employee not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var salonHours models.SalonAvailability
	if err := config.DB.Where("salon_id = ? AND weekday = ?", salonUUID, input.Weekday).
		First(&salonHours).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Salon is closed on that weekday")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}
	salonStart, err := scheduling.ParseTimeOfDay(salonHours.StartTime)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	salonEnd, err := scheduling.ParseTimeOfDay(salonHours.EndTime)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if start.Before(salonStart) || salonEnd.Before(end) {
		utils.RespondWithError(c, http.StatusBadRequest, "Hours must be within the salon's hours for that weekday")
		return
	}

	availability := models.EmployeeAvailability{
		EmployeeID:          employee.ID,
		Weekday:             input.Weekday,
		StartTime:           start.String(),
		EndTime:             end.String(),
		SlotIntervalMinutes: input.SlotIntervalMinutes,
	}

	var existing models.EmployeeAvailability
	err = config.DB.Where("employee_id = ? AND weekday = ?", employee.ID, input.Weekday).
		First(&existing).Error
	switch {
	case err == nil:
		existing.StartTime = availability.StartTime
		existing.EndTime = availability.EndTime
		existing.SlotIntervalMinutes = availability.SlotIntervalMinutes
		if err := config.DB.Save(&existing).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update availability")
			return
		}
		c.JSON(http.StatusOK, existing)
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := config.DB.Create(&availability).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create availability")
			return
		}
		c.JSON(http.StatusCreated, availability)
	default:
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
	}
}

// LinkService adds an active salon service to a stylist's offered set
func LinkService(c *gin.Context) {
	salonUUID, ok := salonUUIDFromContext(c)
	if !ok {
		return
	}

	employeeUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid employee ID format")
		return
	}

	var input LinkServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var employee models.Employee
	if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, employeeUUID).
		First(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Employee not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var service models.Service
	if err := config.DB.Where("salon_id = ? AND id = ? AND is_active = ?", salonUUID, input.ServiceID, true).
		First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if err := config.DB.Model(&employee).Association("Services").Append(&service); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to link service")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Service linked"})
}

// UnlinkService removes a service from a stylist's offered set. The join
// row is hard-deleted; the service itself is untouched.
func UnlinkService(c *gin.Context) {
	salonUUID, ok := salonUUIDFromContext(c)
	if !ok {
		return
	}

	employeeUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid employee ID format")
		return
	}
	serviceUUID, err := uuid.Parse(c.Param("serviceId"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format")
		return
	}

	var employee models.Employee
	if err := config.DB.Where("salon_id = ? AND id = ?", salonUUID, employeeUUID).
		First(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Employee not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	result := config.DB.Exec(
		"DELETE FROM employee_services WHERE employee_id = ? AND service_id = ?",
		employeeUUID, serviceUUID,
	)
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to unlink service")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Service not linked")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Service unlinked"})
}
