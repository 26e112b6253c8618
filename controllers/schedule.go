// controllers/schedule.go
//
// Shared pieces of the scheduling core: the operating window (salon
// hours ∩ employee hours for a local date), recurring block windows, and
// the overlap query that the conflict guard runs inside reservation
// transactions. Booking creation, rescheduling and recurring-block
// creation all validate through these same helpers.
package controllers

import (
	"os"
	"strings"
	"time"

	"salonbook-backend/models"
	"salonbook-backend/scheduling"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockEmployee takes the per-employee write lock for the rest of the
// transaction. Every writer that checks the employee's calendar before
// inserting (reservation, reschedule, recurring block) locks this row
// first, so check-then-insert sequences for the same employee are
// serialized even at READ COMMITTED; two overlapping reservations can
// never both read "no conflict". SQLite has no row locks and drops the
// clause; its single writer gives the same ordering.
func lockEmployee(tx *gorm.DB, employeeID uuid.UUID) error {
	var employee models.Employee
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&employee, "id = ?", employeeID).Error
}

// salonLocation resolves the salon's IANA zone, falling back to the
// deployment default and finally UTC.
func salonLocation(salon models.Salon) *time.Location {
	name := salon.Timezone
	if name == "" {
		name = os.Getenv("DEFAULT_TIMEZONE")
	}
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// operatingWindow intersects the salon's and the employee's hours for
// the weekday of localDate (a midnight instant in loc) and converts the
// result to a UTC interval. ok is false when either side has no hours
// that weekday or the intersection is empty.
func operatingWindow(db *gorm.DB, salonID, employeeID uuid.UUID, localDate time.Time, loc *time.Location) (win scheduling.Interval, slotInterval int, ok bool, err error) {
	weekday := int(localDate.Weekday())

	var salonHours models.SalonAvailability
	if err = db.Where("salon_id = ? AND weekday = ?", salonID, weekday).
		First(&salonHours).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return scheduling.Interval{}, 0, false, nil
		}
		return
	}

	var employeeHours models.EmployeeAvailability
	if err = db.Where("employee_id = ? AND weekday = ?", employeeID, weekday).
		First(&employeeHours).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return scheduling.Interval{}, 0, false, nil
		}
		return
	}

	salonStart, err := scheduling.ParseTimeOfDay(salonHours.StartTime)
	if err != nil {
		return
	}
	salonEnd, err := scheduling.ParseTimeOfDay(salonHours.EndTime)
	if err != nil {
		return
	}
	employeeStart, err := scheduling.ParseTimeOfDay(employeeHours.StartTime)
	if err != nil {
		return
	}
	employeeEnd, err := scheduling.ParseTimeOfDay(employeeHours.EndTime)
	if err != nil {
		return
	}

	start := salonStart.Max(employeeStart)
	end := salonEnd.Min(employeeEnd)
	if !start.Before(end) {
		return scheduling.Interval{}, 0, false, nil
	}

	win = scheduling.Interval{
		Start: scheduling.LocalToUTC(start, localDate, loc),
		End:   scheduling.LocalToUTC(end, localDate, loc),
	}
	return win, employeeHours.SlotIntervalMinutes, true, nil
}

// blockIntervals maps the employee's recurring blocks for the weekday of
// localDate onto that date as UTC intervals.
func blockIntervals(db *gorm.DB, employeeID uuid.UUID, localDate time.Time, loc *time.Location) ([]scheduling.Interval, error) {
	weekday := int(localDate.Weekday())

	var blocks []models.EmployeeUnavailability
	if err := db.Where("employee_id = ? AND weekday = ?", employeeID, weekday).
		Find(&blocks).Error; err != nil {
		return nil, err
	}

	intervals := make([]scheduling.Interval, 0, len(blocks))
	for _, block := range blocks {
		start, err := scheduling.ParseTimeOfDay(block.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := scheduling.ParseTimeOfDay(block.EndTime)
		if err != nil {
			return nil, err
		}
		intervals = append(intervals, scheduling.Interval{
			Start: scheduling.LocalToUTC(start, localDate, loc),
			End:   scheduling.LocalToUTC(end, localDate, loc),
		})
	}
	return intervals, nil
}

// overlappingBookings returns the employee's slot-consuming bookings
// intersecting span, optionally excluding one booking (the reschedule
// origin). Run inside the reservation transaction this is the conflict
// guard's read.
func overlappingBookings(tx *gorm.DB, employeeID uuid.UUID, span scheduling.Interval, excludeID uuid.UUID) ([]models.Booking, error) {
	q := tx.Where(
		"employee_id = ? AND status IN ? AND scheduled_start < ? AND scheduled_end > ?",
		employeeID, models.SlotConsumingStatuses, span.End, span.Start,
	)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}

	var found []models.Booking
	err := q.Find(&found).Error
	return found, err
}

// isUniqueViolation detects the live-slot index firing on Postgres
// ("duplicate key") and SQLite ("UNIQUE constraint failed").
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
