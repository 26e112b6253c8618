// controllers/timeslot.go
package controllers

import (
	"net/http"
	"strings"
	"time"

	"salonbook-backend/config"
	"salonbook-backend/scheduling"
	"salonbook-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Longest inclusive date range a single timeslot request may cover.
const maxTimeslotRangeDays = 31

// ListTimeSlots enumerates bookable start instants per date for one
// stylist. The result layers salon hours ∩ stylist hours, steps by the
// stylist's slot interval, and removes recurring blocks, live bookings,
// past instants and starts where the full service duration would not
// fit before close. Everything is recomputed on every call; there is no
// cache to go stale.
func ListTimeSlots(c *gin.Context) {
	salonUUID, err := uuid.Parse(c.Param("salonId"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid salon ID format")
		return
	}
	employeeUUID, err := uuid.Parse(c.Param("employeeId"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid stylist ID format")
		return
	}

	salon, employee, ok := loadBookableStylist(c, salonUUID, employeeUUID)
	if !ok {
		return
	}
	loc := salonLocation(salon)

	startDate, endDate, ok := parseDateRange(c, loc)
	if !ok {
		return
	}

	// Optional service selection; slots must fit the combined duration.
	// Without services the stylist's per-day slot interval is used.
	var serviceMinutes int
	if raw := c.Query("service_ids"); raw != "" {
		ids, ok := parseServiceIDs(c, raw)
		if !ok {
			return
		}
		services, ok := offeredServices(c, employee, ids)
		if !ok {
			return
		}
		for _, service := range services {
			serviceMinutes += service.DurationMinutes
		}
	}

	now := timeNow().UTC()
	dailySlots := gin.H{}

	for date := startDate; !date.After(endDate); date = date.AddDate(0, 0, 1) {
		key := date.Format("2006-01-02")

		win, slotInterval, open, err := operatingWindow(config.DB, salon.ID, employee.ID, date, loc)
		if err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			return
		}
		if !open || slotInterval <= 0 {
			dailySlots[key] = []string{}
			continue
		}

		step := time.Duration(slotInterval) * time.Minute
		duration := step
		if serviceMinutes > 0 {
			duration = time.Duration(serviceMinutes) * time.Minute
		}

		busy, err := blockIntervals(config.DB, employee.ID, date, loc)
		if err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			return
		}
		booked, err := overlappingBookings(config.DB, employee.ID, win, uuid.Nil)
		if err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			return
		}
		for _, b := range booked {
			busy = append(busy, scheduling.Interval{Start: b.ScheduledStart, End: b.ScheduledEnd})
		}

		starts := scheduling.SlotStarts(win, duration, step, busy, now)
		formatted := make([]string, 0, len(starts))
		for _, s := range starts {
			formatted = append(formatted, s.Format(time.RFC3339))
		}
		dailySlots[key] = formatted
	}

	c.JSON(http.StatusOK, gin.H{
		"stylist": gin.H{
			"id":   employee.ID,
			"name": employee.Name,
		},
		"date_range": gin.H{
			"start_date": startDate.Format("2006-01-02"),
			"end_date":   endDate.Format("2006-01-02"),
		},
		"daily_slots": dailySlots,
	})
}

// parseDateRange reads the inclusive start_date/end_date query params as
// salon-local dates and rejects missing, inverted or oversized ranges.
func parseDateRange(c *gin.Context, loc *time.Location) (time.Time, time.Time, bool) {
	startRaw := c.Query("start_date")
	endRaw := c.Query("end_date")
	if startRaw == "" || endRaw == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "start_date and end_date are required")
		return time.Time{}, time.Time{}, false
	}

	start, err := time.ParseInLocation("2006-01-02", startRaw, loc)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid start_date: expected YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	end, err := time.ParseInLocation("2006-01-02", endRaw, loc)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid end_date: expected YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}

	if end.Before(start) {
		utils.RespondWithError(c, http.StatusBadRequest, "end_date must not be before start_date")
		return time.Time{}, time.Time{}, false
	}
	if end.Sub(start) >= maxTimeslotRangeDays*24*time.Hour {
		utils.RespondWithError(c, http.StatusBadRequest, "Date range too large: maximum 31 days")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func parseServiceIDs(c *gin.Context, raw string) ([]uuid.UUID, bool) {
	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		id, err := uuid.Parse(strings.TrimSpace(part))
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format")
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}
