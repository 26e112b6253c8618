// controllers/context.go
package controllers

import (
	"net/http"
	"time"

	"salonbook-backend/models"
	"salonbook-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Overridable clock so boundary tests can pin "now".
var timeNow = time.Now

// NotificationSink receives booking lifecycle events after the write has
// committed. Delivery is fire-and-forget; failures must never undo a
// booking operation.
type NotificationSink interface {
	BookingEvent(event string, booking models.Booking, recipientIDs []uuid.UUID)
}

// PaymentGateway is asked to refund a payment the cancel flow has already
// marked REFUNDED in the database.
type PaymentGateway interface {
	RequestRefund(payment models.Payment) error
}

// Collaborators wired in main. Both are optional; nil means no-op.
var (
	Notifications NotificationSink
	Payments      PaymentGateway
)

func notifyBooking(event string, booking models.Booking, recipients ...uuid.UUID) {
	if Notifications == nil {
		return
	}
	ids := make([]uuid.UUID, 0, len(recipients))
	for _, id := range recipients {
		if id != uuid.Nil {
			ids = append(ids, id)
		}
	}
	go Notifications.BookingEvent(event, booking, ids)
}

func salonUUIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	salonID, exists := c.Get("salonId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "Salon ID not found in context")
		return uuid.Nil, false
	}
	s, _ := salonID.(string)
	salonUUID, err := uuid.Parse(s)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid salon ID format")
		return uuid.Nil, false
	}
	return salonUUID, true
}

func userUUIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get("userId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return uuid.Nil, false
	}
	s, _ := userID.(string)
	userUUID, err := uuid.Parse(s)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid user ID format")
		return uuid.Nil, false
	}
	return userUUID, true
}

func roleFromContext(c *gin.Context) string {
	role, _ := c.Get("role")
	s, _ := role.(string)
	return s
}

// employeeForUser resolves the Employee record of the logged-in stylist.
func employeeForUser(db *gorm.DB, userID uuid.UUID) (models.Employee, error) {
	var employee models.Employee
	err := db.Where("user_id = ? AND is_active = ?", userID, true).First(&employee).Error
	return employee, err
}
