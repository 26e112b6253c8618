package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SalonStatus string

const (
	SalonPending  SalonStatus = "PENDING"
	SalonApproved SalonStatus = "APPROVED"
	SalonRejected SalonStatus = "REJECTED"
)

type Salon struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	Name    string    `gorm:"not null"`
	Address string

	// IANA zone name, e.g. "America/New_York". Empty means the deployment
	// default (DEFAULT_TIMEZONE env, falling back to UTC).
	Timezone string `gorm:"type:varchar(64)"`

	Status SalonStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`

	Users          []User              `gorm:"foreignKey:SalonID"`
	Employees      []Employee          `gorm:"foreignKey:SalonID"`
	Services       []Service           `gorm:"foreignKey:SalonID"`
	Availabilities []SalonAvailability `gorm:"foreignKey:SalonID"`

	gorm.Model
}

func (s *Salon) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}
