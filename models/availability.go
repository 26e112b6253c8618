package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Weekly opening hours, one row per weekday the salon is open.
// Weekday follows time.Weekday: 0 = Sunday .. 6 = Saturday.
// No row for a weekday means the salon is closed that day.
// Times are local civil times in the salon's timezone, "HH:MM:SS".
type SalonAvailability struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	SalonID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_salon_weekday,priority:1"`

	Weekday   int    `gorm:"not null;uniqueIndex:idx_salon_weekday,priority:2"`
	StartTime string `gorm:"type:varchar(8);not null"`
	EndTime   string `gorm:"type:varchar(8);not null"`

	gorm.Model
}

func (a *SalonAvailability) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

// Weekly working hours for one employee. Must lie within the salon's
// window for the same weekday; enforced when the row is written.
type EmployeeAvailability struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_employee_weekday,priority:1"`

	Weekday             int    `gorm:"not null;uniqueIndex:idx_employee_weekday,priority:2"`
	StartTime           string `gorm:"type:varchar(8);not null"`
	EndTime             string `gorm:"type:varchar(8);not null"`
	SlotIntervalMinutes int    `gorm:"not null;default:30"`

	gorm.Model
}

func (a *EmployeeAvailability) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

// Recurring weekly block during which the employee takes no bookings.
// Blocks for the same employee+weekday never overlap each other.
type EmployeeUnavailability struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	EmployeeID uuid.UUID `gorm:"type:uuid;index;not null"`

	Weekday             int    `gorm:"not null"`
	StartTime           string `gorm:"type:varchar(8);not null"`
	EndTime             string `gorm:"type:varchar(8);not null"`
	SlotIntervalMinutes int    `gorm:"not null;default:30"`
	Reason              string `gorm:"type:varchar(255)"`

	gorm.Model
}

func (u *EmployeeUnavailability) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}
