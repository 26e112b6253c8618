package models

import (
	"time"

	"salonbook-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	// BookingPending is reserved for the checkout flow; a PENDING booking
	// never occupies a slot.
	BookingPending   BookingStatus = "PENDING"
	BookingScheduled BookingStatus = "SCHEDULED"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingCanceled  BookingStatus = "CANCELED"
)

// CanTransition reports whether moving to the given status is a legal
// lifecycle step. COMPLETED and CANCELED are terminal.
func (s BookingStatus) CanTransition(to BookingStatus) bool {
	switch s {
	case BookingPending:
		return to == BookingScheduled || to == BookingCanceled
	case BookingScheduled:
		return to == BookingCompleted || to == BookingCanceled
	default:
		return false
	}
}

// ConsumesSlot reports whether a booking in this status blocks the
// employee's time for conflict checks.
func (s BookingStatus) ConsumesSlot() bool {
	return s == BookingScheduled || s == BookingCompleted
}

// SlotConsumingStatuses is the allowlist used in conflict and
// availability queries, derived from ConsumesSlot. PENDING and CANCELED
// rows never block a slot.
var SlotConsumingStatuses = func() []BookingStatus {
	all := []BookingStatus{BookingPending, BookingScheduled, BookingCompleted, BookingCanceled}
	var consuming []BookingStatus
	for _, s := range all {
		if s.ConsumesSlot() {
			consuming = append(consuming, s)
		}
	}
	return consuming
}()

type Booking struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key"`

	// Code is the short reference customers quote over the phone.
	Code string `gorm:"type:varchar(12);uniqueIndex"`

	SalonID        uuid.UUID `gorm:"type:uuid;index;not null"`
	EmployeeID     uuid.UUID `gorm:"type:uuid;index;not null"`
	CustomerUserID uuid.UUID `gorm:"type:uuid;index;not null"`

	// UTC instants. Immutable once created: a reschedule cancels this row
	// and inserts a replacement, preserving the audit trail.
	ScheduledStart time.Time `gorm:"not null;index"`
	ScheduledEnd   time.Time `gorm:"not null"`

	Status BookingStatus `gorm:"type:varchar(20);not null;default:'SCHEDULED'"`
	Notes  string

	// Populated on a reschedule: the booking this one replaced.
	RescheduledFromID *uuid.UUID `gorm:"type:uuid"`

	Items    []BookingItem `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`
	Payments []Payment     `gorm:"foreignKey:BookingID"`

	gorm.Model
}

func (b *Booking) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Code == "" {
		b.Code = utils.GenerateRandomString(8)
	}
	return
}

// BookingItem is one service line on a booking. Price and duration are
// snapshotted from the Service at booking time and never recomputed, so
// historical bookings are immune to later catalog changes.
type BookingItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	BookingID  uuid.UUID `gorm:"type:uuid;index;not null"`
	EmployeeID uuid.UUID `gorm:"type:uuid;index;not null"`
	ServiceID  uuid.UUID `gorm:"type:uuid;index;not null"`

	ServiceName     string  `gorm:"not null"`
	Price           float64 `gorm:"type:decimal(10,2);not null"`
	DurationMinutes int     `gorm:"not null"`
}

func (i *BookingItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}
