// services/sweeper.go
package services

import (
	"log"
	"time"

	"salonbook-backend/models"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Sweeper transitions SCHEDULED bookings whose end has passed to
// COMPLETED. Completion is what downstream visit counting keys off, so
// the sweep runs frequently; one pass is idempotent.
type Sweeper struct {
	db *gorm.DB
}

func NewSweeper(db *gorm.DB) *Sweeper {
	return &Sweeper{db: db}
}

func (s *Sweeper) StartScheduler() {
	c := cron.New()

	// Every 5 minutes
	c.AddFunc("*/5 * * * *", func() {
		if _, err := s.RunOnce(time.Now().UTC()); err != nil {
			log.Printf("Booking sweep failed: %v", err)
		}
	})

	c.Start()
	log.Println("Booking sweeper started")
}

// RunOnce performs one sweep pass and returns the number of bookings
// completed.
func (s *Sweeper) RunOnce(now time.Time) (int64, error) {
	result := s.db.Model(&models.Booking{}).
		Where("status = ? AND scheduled_end <= ?", models.BookingScheduled, now).
		Update("status", models.BookingCompleted)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		log.Printf("Booking sweep completed %d bookings", result.RowsAffected)
	}
	return result.RowsAffected, result.Error
}
