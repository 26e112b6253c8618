// services/notifier.go
package services

import (
	"fmt"
	"log"
	"os"
	"time"

	"salonbook-backend/models"

	"github.com/google/uuid"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

// Notifier delivers booking lifecycle events over SMS and records each
// attempt in notification_logs. Without Twilio credentials it runs in
// log-only mode so that local setups never lose bookings to a missing
// integration.
type Notifier struct {
	db     *gorm.DB
	client *twilio.RestClient
	from   string
}

func NewNotifier(db *gorm.DB) *Notifier {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	n := &Notifier{db: db, from: os.Getenv("TWILIO_PHONE_NUMBER")}
	if accountSid != "" && authToken != "" {
		n.client = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		})
	}
	return n
}

// BookingEvent notifies every recipient of one booking lifecycle event.
// Called after the booking write has committed; failures are logged and
// recorded, never propagated.
func (n *Notifier) BookingEvent(event string, booking models.Booking, recipientIDs []uuid.UUID) {
	body := eventBody(event, booking)

	for _, recipientID := range recipientIDs {
		var recipient models.User
		if err := n.db.First(&recipient, "id = ?", recipientID).Error; err != nil {
			log.Printf("Notification %s: recipient %s not found: %v", event, recipientID, err)
			continue
		}

		channel := "log"
		status := "sent"
		errorMsg := ""

		if n.client != nil && recipient.Phone != "" {
			channel = "sms"
			params := &twilioApi.CreateMessageParams{}
			params.SetTo(recipient.Phone)
			params.SetFrom(n.from)
			params.SetBody(body)

			if _, err := n.client.Api.CreateMessage(params); err != nil {
				log.Printf("Failed to send %s to %s: %v", event, recipient.Phone, err)
				status = "failed"
				errorMsg = err.Error()
			}
		} else {
			log.Printf("Notification %s for booking %s -> %s: %s", event, booking.ID, recipient.Email, body)
		}

		record := models.NotificationLog{
			SalonID:         booking.SalonID,
			BookingID:       booking.ID,
			RecipientUserID: recipient.ID,
			Event:           event,
			Channel:         channel,
			Status:          status,
			ErrorMessage:    errorMsg,
			SentAt:          time.Now(),
		}
		if err := n.db.Create(&record).Error; err != nil {
			log.Printf("Failed to log notification for booking %s: %v", booking.ID, err)
		}
	}
}

func eventBody(event string, booking models.Booking) string {
	when := booking.ScheduledStart.Format(time.RFC1123)
	switch event {
	case models.EventBookingCreated:
		return fmt.Sprintf("Your appointment on %s is confirmed.", when)
	case models.EventBookingRescheduled:
		return fmt.Sprintf("Your appointment was moved to %s.", when)
	case models.EventBookingCanceled:
		return fmt.Sprintf("Your appointment on %s was canceled.", when)
	default:
		return fmt.Sprintf("Appointment update: %s on %s.", event, when)
	}
}
