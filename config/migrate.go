package config

import (
	"salonbook-backend/models"

	"gorm.io/gorm"
)

// Migrate creates all tables plus the live-slot uniqueness index.
//
// The partial unique index is the storage-level backstop of the conflict
// guard: two non-canceled bookings can never share an employee and a
// start instant, so concurrent identical-slot inserts lose with a
// unique violation even when both transactions read "no conflict".
// Partial indexes work on both Postgres and SQLite (used in tests).
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Salon{},
		&models.SalonAvailability{},
		&models.Employee{},
		&models.EmployeeAvailability{},
		&models.EmployeeUnavailability{},
		&models.Service{},
		&models.Booking{},
		&models.BookingItem{},
		&models.Payment{},
		&models.NotificationLog{},
	); err != nil {
		return err
	}

	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_live_slot
		 ON bookings (employee_id, scheduled_start)
		 WHERE status IN ('SCHEDULED', 'COMPLETED')`,
	).Error
}
