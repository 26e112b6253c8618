package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentSucceeded PaymentStatus = "SUCCEEDED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

// Payment is the record of a charge tied to a booking. Capture happens
// in an external gateway; this table only tracks the outcome so that a
// booking cancel can request a refund for SUCCEEDED rows.
type Payment struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	BookingID uuid.UUID `gorm:"type:uuid;index;not null"`

	Amount    float64       `gorm:"type:decimal(10,2);not null"`
	Status    PaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Provider  string        `gorm:"type:varchar(40)"`
	Reference string        // gateway transaction id

	gorm.Model
}

func (p *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
