package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Employee struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	SalonID uuid.UUID `gorm:"type:uuid;index;not null"`

	// Stylist login account, if the employee has one.
	UserID *uuid.UUID `gorm:"type:uuid;index"`

	Name     string `gorm:"not null"`
	Phone    string
	IsActive bool `gorm:"default:true"`

	// Services this stylist offers. Unlinking removes the join row only;
	// the Service itself is soft-deleted via its active flag.
	Services []Service `gorm:"many2many:employee_services"`

	Availabilities   []EmployeeAvailability   `gorm:"foreignKey:EmployeeID"`
	Unavailabilities []EmployeeUnavailability `gorm:"foreignKey:EmployeeID"`

	gorm.Model
}

func (e *Employee) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}
