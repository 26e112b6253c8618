// models/notification_log.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Booking lifecycle event codes emitted to the notification collaborator.
const (
	EventBookingCreated     = "BOOKING_CREATED"
	EventBookingRescheduled = "BOOKING_RESCHEDULED"
	EventBookingCanceled    = "BOOKING_CANCELED"
)

type NotificationLog struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	SalonID         uuid.UUID `gorm:"type:uuid;index;not null"`
	BookingID       uuid.UUID `gorm:"type:uuid;index;not null"`
	RecipientUserID uuid.UUID `gorm:"type:uuid;index;not null"`

	Event        string `gorm:"type:varchar(40);not null"`
	Channel      string `gorm:"type:varchar(20)"` // sms, whatsapp, log
	Status       string `gorm:"type:varchar(20)"` // sent, failed
	ErrorMessage string `gorm:"type:text"`
	SentAt       time.Time

	gorm.Model
}

func (n *NotificationLog) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}
