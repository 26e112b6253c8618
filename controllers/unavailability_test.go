package controllers

import (
	"net/http"
	"testing"
	"time"

	"salonbook-backend/models"
)

func blockBody(weekday int, start, end string) map[string]interface{} {
	return map[string]interface{}{
		"weekday":   weekday,
		"startTime": start,
		"endTime":   end,
	}
}

func TestCreateUnavailability_Lifecycle(t *testing.T) {
	db := openTestDB(t)
	f := seedSalon(t, db, "UTC")
	pinNow(t, testNow)
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/unavailability",
		blockBody(1, "12:00", "13:00"), f.stylistToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("create block: got %d: %s", w.Code, w.Body.String())
	}
	var created models.EmployeeUnavailability
	decodeBody(t, w, &created)
	if created.StartTime != "12:00:00" || created.EndTime != "13:00:00" {
		t.Errorf("stored block = %s-%s, want 12:00:00-13:00:00", created.StartTime, created.EndTime)
	}

	// Overlapping block is rejected; an adjacent one is not.
	w = doJSON(t, r, http.MethodPost, "/api/unavailability",
		blockBody(1, "12:30", "13:30"), f.stylistToken)
	if w.Code != http.StatusConflict {
		t.Errorf("overlapping block: got %d, want 409: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodPost, "/api/unavailability",
		blockBody(1, "13:00", "14:00"), f.stylistToken)
	if w.Code != http.StatusCreated {
		t.Errorf("adjacent block: got %d, want 201: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/unavailability", nil, f.stylistToken)
	if w.Code != http.StatusOK {
		t.Fatalf("list blocks: got %d: %s", w.Code, w.Body.String())
	}
	var blocks []models.EmployeeUnavailability
	decodeBody(t, w, &blocks)
	if len(blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(blocks))
	}
	if blocks[0].StartTime != "12:00:00" || blocks[1].StartTime != "13:00:00" {
		t.Errorf("blocks out of order: %s, %s", blocks[0].StartTime, blocks[1].StartTime)
	}

	// Delete by triple, then by id; the repeat delete is a 404.
	w = doJSON(t, r, http.MethodDelete, "/api/unavailability",
		blockBody(1, "12:00", "13:00"), f.stylistToken)
	if w.Code != http.StatusOK {
		t.Errorf("delete by triple: got %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodDelete, "/api/unavailability",
		blockBody(1, "12:00", "13:00"), f.stylistToken)
	if w.Code != http.StatusNotFound {
		t.Errorf("repeat delete: got %d, want 404: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodDelete, "/api/unavailability",
		map[string]interface{}{"id": blocks[1].ID.String()}, f.stylistToken)
	if w.Code != http.StatusOK {
		t.Errorf("delete by id: got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateUnavailability_Validation(t *testing.T) {
	db := openTestDB(t)
	f := seedSalon(t, db, "UTC")
	pinNow(t, testNow)
	r := newTestRouter()

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"weekday out of range", blockBody(7, "12:00", "13:00")},
		{"unparseable time", blockBody(1, "noonish", "13:00")},
		{"end before start", blockBody(1, "14:00", "13:00")},
		{"zero-length", blockBody(1, "13:00", "13:00")},
		{"no availability that weekday", blockBody(3, "12:00", "13:00")},
		{"outside availability window", blockBody(1, "08:00", "09:30")},
	}
	for _, tc := range cases {
		w := doJSON(t, r, http.MethodPost, "/api/unavailability", tc.body, f.stylistToken)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want 400: %s", tc.name, w.Code, w.Body.String())
		}
	}

	// Customers have no stylist profile to attach blocks to.
	w := doJSON(t, r, http.MethodPost, "/api/unavailability",
		blockBody(1, "12:00", "13:00"), f.customerToken)
	if w.Code != http.StatusNotFound {
		t.Errorf("customer block: got %d, want 404: %s", w.Code, w.Body.String())
	}
}

func TestCreateUnavailability_OverScheduledBooking(t *testing.T) {
	db := openTestDB(t)
	f := seedSalon(t, db, "UTC")
	pinNow(t, testNow)
	r := newTestRouter()

	start := time.Date(2026, 9, 7, 14, 0, 0, 0, time.UTC)
	booking := insertBooking(t, db, f, start, start.Add(time.Hour), models.BookingScheduled)

	w := doJSON(t, r, http.MethodPost, "/api/unavailability",
		blockBody(1, "14:00", "15:00"), f.stylistToken)
	if w.Code != http.StatusConflict {
		t.Fatalf("block over booking: got %d, want 409: %s", w.Code, w.Body.String())
	}
	var resp struct {
		ConflictingBookings []models.Booking `json:"conflicting_bookings"`
	}
	decodeBody(t, w, &resp)
	if len(resp.ConflictingBookings) != 1 || resp.ConflictingBookings[0].ID != booking.ID {
		t.Errorf("conflicting_bookings = %+v, want the blocked booking", resp.ConflictingBookings)
	}

	// Half-open intervals: a block starting exactly at the booking's end
	// does not touch it.
	w = doJSON(t, r, http.MethodPost, "/api/unavailability",
		blockBody(1, "15:00", "16:00"), f.stylistToken)
	if w.Code != http.StatusCreated {
		t.Errorf("adjacent block: got %d, want 201: %s", w.Code, w.Body.String())
	}

	// A canceled booking holds nothing.
	insertBooking(t, db, f,
		time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 7, 11, 0, 0, 0, time.UTC),
		models.BookingCanceled)
	w = doJSON(t, r, http.MethodPost, "/api/unavailability",
		blockBody(1, "10:00", "11:00"), f.stylistToken)
	if w.Code != http.StatusCreated {
		t.Errorf("block over canceled booking: got %d, want 201: %s", w.Code, w.Body.String())
	}
}
