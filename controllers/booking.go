// controllers/booking.go
package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"salonbook-backend/config"
	"salonbook-backend/models"
	"salonbook-backend/scheduling"
	"salonbook-backend/services"
	"salonbook-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateBookingInput defines the expected JSON structure for booking a slot
type CreateBookingInput struct {
	ScheduledStart time.Time   `json:"scheduledStart" binding:"required"` // ISO-8601 with offset
	ServiceIDs     []uuid.UUID `json:"serviceIds" binding:"required,min=1"`
	Notes          string      `json:"notes"`
}

type RescheduleBookingInput struct {
	BookingID      uuid.UUID `json:"bookingId" binding:"required"`
	ScheduledStart time.Time `json:"scheduledStart" binding:"required"`
}

type CancelBookingInput struct {
	BookingID uuid.UUID `json:"bookingId" binding:"required"`
}

// CreateBooking reserves a slot with the given stylist for the logged-in
// customer. The reservation runs in one transaction that first locks the
// employee row, so the overlap re-check and the insert are serialized
// per employee: of N concurrent requests for overlapping time exactly
// one commits. The live-slot unique index backstops identical starts at
// the storage level.
func CreateBooking(c *gin.Context) {
	customerID, ok := userUUIDFromContext(c)
	if !ok {
		return
	}

	salonUUID, err := uuid.Parse(c.Param("salonId"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid salon ID format")
		return
	}
	employeeUUID, err := uuid.Parse(c.Param("employeeId"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid stylist ID format")
		return
	}

	var input CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	salon, employee, ok := loadBookableStylist(c, salonUUID, employeeUUID)
	if !ok {
		return
	}

	// Only services this stylist actually offers can be booked.
	services, ok := offeredServices(c, employee, input.ServiceIDs)
	if !ok {
		return
	}

	now := timeNow().UTC()
	start := input.ScheduledStart.UTC()
	if !start.After(now) {
		utils.RespondWithError(c, http.StatusBadRequest, "Scheduled start must be in the future")
		return
	}

	var totalMinutes int
	for _, service := range services {
		totalMinutes += service.DurationMinutes
	}
	span := scheduling.Interval{Start: start, End: start.Add(time.Duration(totalMinutes) * time.Minute)}

	booking := models.Booking{
		SalonID:        salon.ID,
		EmployeeID:     employee.ID,
		CustomerUserID: customerID,
		ScheduledStart: span.Start,
		ScheduledEnd:   span.End,
		Status:         models.BookingScheduled,
		Notes:          input.Notes,
	}
	for _, service := range services {
		booking.Items = append(booking.Items, models.BookingItem{
			EmployeeID:      employee.ID,
			ServiceID:       service.ID,
			ServiceName:     service.Name,
			Price:           service.Price,
			DurationMinutes: service.DurationMinutes,
		})
	}

	// Start transaction
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

	if !validateWithinHours(c, tx, salon, employee, span) {
		tx.Rollback()
		return
	}

	conflicts, err := overlappingBookings(tx, employee.ID, span, uuid.Nil)
	if err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if len(conflicts) > 0 {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusConflict, "The requested time slot is no longer available")
		return
	}

	if err := tx.Create(&booking).Error; err != nil {
		tx.Rollback()
		if isUniqueViolation(err) {
			utils.RespondWithError(c, http.StatusConflict, "The requested time slot is no longer available")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create booking")
		}
		return
	}

	if err := tx.Commit().Error; err != nil {
		if isUniqueViolation(err) {
			utils.RespondWithError(c, http.StatusConflict, "The requested time slot is no longer available")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create booking")
		}
		return
	}

	notifyBooking(models.EventBookingCreated, booking, customerID, employeeUser(employee))

	c.JSON(http.StatusCreated, gin.H{
		"booking_id":  booking.ID,
		"appointment": booking,
	})
}

// RescheduleBooking moves a SCHEDULED booking to a new start by
// canceling it and inserting a replacement in one transaction. Prices
// and durations are carried over from the original's snapshot, never
// re-read from the catalog.
func RescheduleBooking(c *gin.Context) {
	customerID, ok := userUUIDFromContext(c)
	if !ok {
		return
	}

	var input RescheduleBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// Missing, foreign and wrong-state bookings are indistinguishable to
	// the caller so existence is never leaked.
	var booking models.Booking
	if err := config.DB.Preload("Items").
		Where("id = ? AND customer_user_id = ?", input.BookingID, customerID).
		First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Booking not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}
	if booking.Status != models.BookingScheduled {
		utils.RespondWithError(c, http.StatusNotFound, "Booking not found")
		return
	}

	var salon models.Salon
	if err := config.DB.First(&salon, "id = ?", booking.SalonID).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	var employee models.Employee
	if err := config.DB.First(&employee, "id = ?", booking.EmployeeID).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	loc := salonLocation(salon)
	now := timeNow().UTC()

	// Same-day churn guard, on the salon's calendar.
	if scheduling.SameLocalDay(now, booking.ScheduledStart, loc) {
		utils.RespondWithError(c, http.StatusBadRequest, "Same-day bookings cannot be rescheduled")
		return
	}

	start := input.ScheduledStart.UTC()
	if !start.After(now) {
		utils.RespondWithError(c, http.StatusBadRequest, "Scheduled start must be in the future")
		return
	}

	var totalMinutes int
	for _, item := range booking.Items {
		totalMinutes += item.DurationMinutes
	}
	span := scheduling.Interval{Start: start, End: start.Add(time.Duration(totalMinutes) * time.Minute)}

	replacement := models.Booking{
		SalonID:           booking.SalonID,
		EmployeeID:        booking.EmployeeID,
		CustomerUserID:    booking.CustomerUserID,
		ScheduledStart:    span.Start,
		ScheduledEnd:      span.End,
		Status:            models.BookingScheduled,
		Notes:             booking.Notes,
		RescheduledFromID: &booking.ID,
	}
	for _, item := range booking.Items {
		replacement.Items = append(replacement.Items, models.BookingItem{
			EmployeeID:      item.EmployeeID,
			ServiceID:       item.ServiceID,
			ServiceName:     item.ServiceName,
			Price:           item.Price,
			DurationMinutes: item.DurationMinutes,
		})
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := lockEmployee(tx, booking.EmployeeID); err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	if !validateWithinHours(c, tx, salon, employee, span) {
		tx.Rollback()
		return
	}

	// The booking's own current slot must not conflict with its move.
	conflicts, err := overlappingBookings(tx, booking.EmployeeID, span, booking.ID)
	if err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if len(conflicts) > 0 {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusConflict, "The requested time slot is no longer available")
		return
	}

	// Cancel before insert so a move to the identical start does not trip
	// the live-slot index against the row being replaced.
	result := tx.Model(&models.Booking{}).
		Where("id = ? AND status = ?", booking.ID, models.BookingScheduled).
		Update("status", models.BookingCanceled)
	if result.Error != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to reschedule booking")
		return
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusNotFound, "Booking not found")
		return
	}

	if err := tx.Create(&replacement).Error; err != nil {
		tx.Rollback()
		if isUniqueViolation(err) {
			utils.RespondWithError(c, http.StatusConflict, "The requested time slot is no longer available")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to reschedule booking")
		}
		return
	}

	if err := tx.Commit().Error; err != nil {
		if isUniqueViolation(err) {
			utils.RespondWithError(c, http.StatusConflict, "The requested time slot is no longer available")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to reschedule booking")
		}
		return
	}

	notifyBooking(models.EventBookingRescheduled, replacement, customerID, employeeUser(employee))

	c.JSON(http.StatusCreated, gin.H{
		"old_booking_id": booking.ID,
		"new_booking_id": replacement.ID,
		"appointment":    replacement,
	})
}

// CancelBooking cancels a SCHEDULED booking. Customers may cancel their
// own bookings (not on the appointment's salon-local day); stylists may
// cancel bookings on their own calendar. Any SUCCEEDED payment on the
// booking is marked REFUNDED in the same transaction and the refund is
// requested from the payment collaborator after commit.
func CancelBooking(c *gin.Context) {
	callerID, ok := userUUIDFromContext(c)
	if !ok {
		return
	}

	var input CancelBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	booking, sameDayGuard, ok := bookingForCancel(c, input.BookingID, callerID)
	if !ok {
		return
	}
	if !booking.Status.CanTransition(models.BookingCanceled) {
		utils.RespondWithError(c, http.StatusNotFound, "Booking not found")
		return
	}

	var salon models.Salon
	if err := config.DB.First(&salon, "id = ?", booking.SalonID).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	if sameDayGuard {
		loc := salonLocation(salon)
		if scheduling.SameLocalDay(timeNow().UTC(), booking.ScheduledStart, loc) {
			utils.RespondWithError(c, http.StatusBadRequest, "Same-day bookings cannot be canceled")
			return
		}
	}

	var refunded []models.Payment

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Compare-and-swap on the status observed above; a concurrent
	// transition makes this a 404 rather than an illegal jump.
	result := tx.Model(&models.Booking{}).
		Where("id = ? AND status = ?", booking.ID, booking.Status).
		Update("status", models.BookingCanceled)
	if result.Error != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to cancel booking")
		return
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusNotFound, "Booking not found")
		return
	}

	if err := tx.Where("booking_id = ? AND status = ?", booking.ID, models.PaymentSucceeded).
		Find(&refunded).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to cancel booking")
		return
	}
	if len(refunded) > 0 {
		if err := tx.Model(&models.Payment{}).
			Where("booking_id = ? AND status = ?", booking.ID, models.PaymentSucceeded).
			Update("status", models.PaymentRefunded).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to cancel booking")
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to cancel booking")
		return
	}

	for _, payment := range refunded {
		if Payments == nil {
			continue
		}
		if err := Payments.RequestRefund(payment); err != nil {
			log.Printf("Refund request for payment %s failed: %v", payment.ID, err)
		}
	}

	var employee models.Employee
	if err := config.DB.First(&employee, "id = ?", booking.EmployeeID).Error; err == nil {
		notifyBooking(models.EventBookingCanceled, booking, booking.CustomerUserID, employeeUser(employee))
	} else {
		notifyBooking(models.EventBookingCanceled, booking, booking.CustomerUserID)
	}

	c.JSON(http.StatusOK, gin.H{
		"booking_id": booking.ID,
		"new_status": models.BookingCanceled,
	})
}

// GetBookings lists the caller's bookings: their own appointments for
// customers, their calendar for stylists.
func GetBookings(c *gin.Context) {
	callerID, ok := userUUIDFromContext(c)
	if !ok {
		return
	}

	q := config.DB.Preload("Items").Order("scheduled_start")
	switch roleFromContext(c) {
	case "stylist":
		employee, err := employeeForUser(config.DB, callerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondWithError(c, http.StatusNotFound, "Stylist profile not found")
			} else {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			}
			return
		}
		q = q.Where("employee_id = ?", employee.ID)
	default:
		q = q.Where("customer_user_id = ?", callerID)
	}

	var bookings []models.Booking
	if err := q.Find(&bookings).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve bookings")
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// CompleteElapsedBookings runs one auto-complete sweep pass on demand.
// The same operation runs on the cron schedule; calling it twice in a
// row produces the same end state as once.
func CompleteElapsedBookings(c *gin.Context) {
	count, err := services.NewSweeper(config.DB).RunOnce(timeNow().UTC())
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Sweep failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"completed": count})
}

// loadBookableStylist fetches an APPROVED salon and its active employee,
// replying 404 (never distinguishing why) when either is not bookable.
func loadBookableStylist(c *gin.Context, salonID, employeeID uuid.UUID) (models.Salon, models.Employee, bool) {
	var salon models.Salon
	if err := config.DB.Where("id = ? AND status = ?", salonID, models.SalonApproved).
		First(&salon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Salon not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return models.Salon{}, models.Employee{}, false
	}

	var employee models.Employee
	if err := config.DB.Where("id = ? AND salon_id = ? AND is_active = ?", employeeID, salonID, true).
		First(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Stylist not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return models.Salon{}, models.Employee{}, false
	}

	return salon, employee, true
}

// offeredServices loads the requested services, requiring every one to
// be active and offered by the stylist.
func offeredServices(c *gin.Context, employee models.Employee, serviceIDs []uuid.UUID) ([]models.Service, bool) {
	var services []models.Service
	err := config.DB.
		Joins("JOIN employee_services es ON es.service_id = services.id").
		Where("es.employee_id = ? AND services.id IN ? AND services.is_active = ?", employee.ID, serviceIDs, true).
		Find(&services).Error
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return nil, false
	}

	offered := make(map[uuid.UUID]bool, len(services))
	for _, service := range services {
		offered[service.ID] = true
	}
	for _, id := range serviceIDs {
		if !offered[id] {
			utils.RespondWithError(c, http.StatusBadRequest, "Service not offered by this stylist: "+id.String())
			return nil, false
		}
	}
	return services, true
}

// validateWithinHours checks that span sits inside the operating window
// for its salon-local date and clear of recurring blocks. Responds and
// returns false on violation; the caller rolls back. Runs on the
// reservation transaction after lockEmployee so the block check cannot
// race a concurrent block insert.
func validateWithinHours(c *gin.Context, tx *gorm.DB, salon models.Salon, employee models.Employee, span scheduling.Interval) bool {
	loc := salonLocation(salon)
	localDate := scheduling.LocalDate(span.Start, loc)

	win, _, open, err := operatingWindow(tx, salon.ID, employee.ID, localDate, loc)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return false
	}
	if !open || !win.Contains(span) {
		utils.RespondWithError(c, http.StatusBadRequest, "Requested time is outside operating hours")
		return false
	}

	blocks, err := blockIntervals(tx, employee.ID, localDate, loc)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return false
	}
	for _, block := range blocks {
		if span.Overlaps(block) {
			utils.RespondWithError(c, http.StatusConflict, "Requested time falls inside the stylist's unavailability")
			return false
		}
	}
	return true
}

// bookingForCancel resolves the booking by the caller's role. The bool
// result sameDayGuard is true for customer-initiated cancels, which are
// subject to the same-day policy; stylists are not.
func bookingForCancel(c *gin.Context, bookingID, callerID uuid.UUID) (models.Booking, bool, bool) {
	var booking models.Booking

	if roleFromContext(c) == "stylist" {
		employee, err := employeeForUser(config.DB, callerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondWithError(c, http.StatusNotFound, "Booking not found")
			} else {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			}
			return models.Booking{}, false, false
		}
		if err := config.DB.Where("id = ? AND employee_id = ?", bookingID, employee.ID).
			First(&booking).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondWithError(c, http.StatusNotFound, "Booking not found")
			} else {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			}
			return models.Booking{}, false, false
		}
		return booking, false, true
	}

	if err := config.DB.Where("id = ? AND customer_user_id = ?", bookingID, callerID).
		First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Booking not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return models.Booking{}, false, false
	}
	return booking, true, true
}

func employeeUser(employee models.Employee) uuid.UUID {
	if employee.UserID == nil {
		return uuid.Nil
	}
	return *employee.UserID
}
