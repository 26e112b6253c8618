package controllers

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"salonbook-backend/models"

	"github.com/google/uuid"
)

// Tuesday; the seeded salon is open the following Monday.
var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func bookPath(f fixture) string {
	return fmt.Sprintf("/api/salons/%s/stylists/%s/book", f.salon.ID, f.employee.ID)
}

func bookBody(f fixture, start time.Time) map[string]interface{} {
	return map[string]interface{}{
		"scheduledStart": start.Format(time.RFC3339),
		"serviceIds":     []string{f.service.ID.String()},
	}
}

func TestCreateBooking_EdgeOfClose(t *testing.T) {
	db := openTestDB(t)
	f := seedSalon(t, db, "UTC")
	pinNow(t, testNow)
	r := newTestRouter()

	// 16:00 + 60 minutes lands exactly on close; the interval is half-open
	// so the booking fits.
	edge := time.Date(2026, 9, 7, 16, 0, 0, 0, time.UTC)
	w := doJSON(t, r, http.MethodPost, bookPath(f), bookBody(f, edge), f.customerToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("edge-of-close booking: got %d, want 201: %s", w.Code, w.Body.String())
	}

	var resp struct {
		BookingID uuid.UUID `json:"booking_id"`
	}
	decodeBody(t, w, &resp)

	var booking models.Booking
	if err := db.First(&booking, "id = ?", resp.BookingID).Error; err != nil {
		t.Fatalf("load booking: %v", err)
	}
	wantEnd := time.Date(2026, 9, 7, 17, 0, 0, 0, time.UTC)
	if !booking.ScheduledEnd.UTC().Equal(wantEnd) {
		t.Errorf("scheduled end = %v, want %v", booking.ScheduledEnd.UTC(), wantEnd)
	}
	if len(booking.Code) != 8 {
		t.Errorf("booking code = %q, want an 8-character reference", booking.Code)
	}

	// One step later the service would run past close.
	late := time.Date(2026, 9, 7, 16, 30, 0, 0, time.UTC)
	w = doJSON(t, r, http.MethodPost, bookPath(f), bookBody(f, late), f.customerToken)
	if w.Code != http.StatusBadRequest {
		t.Errorf("past-close booking: got %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestCreateBooking_RejectsPastStart(t *testing.T) {
	db := openTestDB(t)
	f := seedSalon(t, db, "UTC")
	pinNow(t, testNow)
	r := newTestRouter()

	past := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	w := doJSON(t, r, http.MethodPost, bookPath(f), bookBody(f, past), f.customerToken)
	if w.Code != http.StatusBadRequest {
		t.Errorf("past booking: got %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestCreateBooking_DuplicateSlotConflicts(t *testing.T) {
	db := openTestDB(t)
	f := seedSalon(t, db, "UTC")
	pinNow(t, testNow)
	r := newTestRouter()

	start := time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)

	w := doJSON(t, r, http.MethodPost, bookPath(f), bookBody(f, start), f.customerToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("first booking: got %d, want 201: %s", w.Code, w.Body.String())
	}

	// Identical slot.
	w = doJSON(t, r, http.MethodPost, bookPath(f), bookBody(f, start), f.customerToken)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate slot: got %d, want 409: %s", w.Code, w.Body.String())
	}

	// Different start but overlapping the held hour.
	w = doJSON(t, r, http.MethodPost, bookPath(f), bookBody(f, start.Add(30*time.Minute)), f.customerToken)
	if w.Code != http.StatusConflict {
		t.Errorf("overlapping slot: got %d, want 409: %s", w.Code, w.Body.String())
	}

	var count int64
	if err := db.Model(&models.Booking{}).
		Where("status = ?", models.BookingScheduled).Count(&count).Error; err != nil {
		t.Fatalf("count bookings: %v", err)
	}
	if count != 1 {
		t.Errorf("scheduled bookings = %d, want 1", count)
	}
}

// Two requests race for overlapping time from separate goroutines; the
// per-employee lock inside the reservation transaction must let exactly
// one commit, whether the starts are identical or merely overlapping.
func TestCreateBooking_ConcurrentOverlappingRequests(t *testing.T) {
	cases := []struct {
		name         string
		first, second time.Time
	}{
		{
			"identical start",
			time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC),
			time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC),
		},
		{
			"staggered overlap",
			time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC),
			time.Date(2026, 9, 7, 9, 30, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := openTestDB(t)
			f := seedSalon(t, db, "UTC")
			pinNow(t, testNow)
			r := newTestRouter()

			codes := make(chan int, 2)
			var wg sync.WaitGroup
			for _, start := range []time.Time{tc.first, tc.second} {
				wg.Add(1)
				go func(start time.Time) {
					defer wg.Done()
					w := doJSON(t, r, http.MethodPost, bookPath(f), bookBody(f, start), f.customerToken)
					codes <- w.Code
				}(start)
			}
			wg.Wait()
			close(codes)

			var created, conflicted int
			for code := range codes {
				switch code {
				case http.StatusCreated:
					created++
				case http.StatusConflict:
					conflicted++
				default:
					t.Errorf("unexpected status %d", code)
				}
			}
			if created != 1 || conflicted != 1 {
				t.Errorf("got %d created and %d conflicted, want exactly one of each", created, conflicted)
			}

			var count int64
			if err := db.Model(&models.Booking{}).
				Where("status = ?", models.BookingScheduled).Count(&count).Error; err != nil {
				t.Fatalf("count bookings: %v", err)
			}
			if count != 1 {
				t.Errorf("scheduled bookings = %d, want 1", count)
			}
		})
	}
}

func TestCreateBooking_CanceledSlotIsReusable(t *testing.T) {
	db := openTestDB(t)
	f := seedSalon(t, db, "UTC")
	pinNow(t, testNow)
	r := newTestRouter()

	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	insertBooking(t, db, f, start, start.Add(time.Hour), models.BookingCanceled)

	w := doJSON(t, r, http.MethodPost, bookPath(f), bookBody(f, start), f.customerToken)
	if w.Code != http.StatusCreated {
		t.Errorf("booking over canceled slot: got %d, want 201: %s", w.Code, w.Body.String())
	}
}

func TestRescheduleBooking_PreservesPriceSnapshot(t *testing.T) {
	db := openTestDB(t)
	f := seedSalon(t, db, "UTC")
	pinNow(t, testNow)
	r := newTestRouter()

	start := time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)
	w := doJSON(t, r, http.MethodPost, bookPath(f), bookBody(f, start), f.customerToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("create booking: got %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		BookingID uuid.UUID `json:"booking_id"`
	}
	decodeBody(t, w, &created)

	// A later price hike must not leak into the moved booking.
	if err := db.Model(&models.Service{}).
		Where("id = ?", f.service.ID).Update("price", 80.0).Error; err != nil {
		t.Fatalf("update price: %v", err)
	}

	newStart := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)
	w = doJSON(t, r, http.MethodPost, "/api/bookings/reschedule", map[string]interface{}{
		"bookingId":      created.BookingID.String(),
		"scheduledStart": newStart.Format(time.RFC3339),
	}, f.customerToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("reschedule: got %d, want 201: %s", w.Code, w.Body.String())
	}
	var moved struct {
		OldBookingID uuid.UUID `json:"old_booking_id"`
		NewBookingID uuid.UUID `json:"new_booking_id"`
	}
	decodeBody(t, w, &moved)
	if moved.OldBookingID != created.BookingID {
		t.Errorf("old_booking_id = %s, want %s", moved.OldBookingID, created.BookingID)
	}

	var old models.Booking
	if err := db.First(&old, "id = ?", created.BookingID).Error; err != nil {
		t.Fatalf("load original: %v", err)
	}
	if old.Status != models.BookingCanceled {
		t.Errorf("original status = %s, want %s", old.Status, models.BookingCanceled)
	}

	var replacement models.Booking
	if err := db.Preload("Items").First(&replacement, "id = ?", moved.NewBookingID).Error; err != nil {
		t.Fatalf("load replacement: %v", err)
	}
	if !replacement.ScheduledStart.UTC().Equal(newStart) {
		t.Errorf("new start = %v, want %v", replacement.ScheduledStart.UTC(), newStart)
	}
	if replacement.RescheduledFromID == nil || *replacement.RescheduledFromID != created.BookingID {
		t.Errorf("rescheduled_from_id = %v, want %s", replacement.RescheduledFromID, created.BookingID)
	}
	if len(replacement.Items) != 1 {
		t.Fatalf("replacement items = %d, want 1", len(replacement.Items))
	}
	if replacement.Items[0].Price != 50 {
		t.Errorf("snapshot price = %v, want 50 (booked before the price change)", replacement.Items[0].Price)
	}

	// The freed slot is bookable again.
	w = doJSON(t, r, http.MethodPost, bookPath(f), bookBody(f, start), f.customerToken)
	if w.Code != http.StatusCreated {
		t.Errorf("rebooking freed slot: got %d, want 201: %s", w.Code, w.Body.String())
	}
}

func TestRescheduleBooking_SameDayRejected(t *testing.T) {
	db := openTestDB(t)
	f := seedSalon(t, db, "UTC")
	pinNow(t, testNow)
	r := newTestRouter()

	todayStart := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	booking := insertBooking(t, db, f, todayStart, todayStart.Add(time.Hour), models.BookingScheduled)

	w := doJSON(t, r, http.MethodPost, "/api/bookings/reschedule", map[string]interface{}{
		"bookingId":      booking.ID.String(),
		"scheduledStart": time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC).Format(time.RFC3339),
	}, f.customerToken)
	if w.Code != http.StatusBadRequest {
		t.Errorf("same-day reschedule: got %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestRescheduleBooking_CanceledLooksMissing(t *testing.T) {
	db := openTestDB(t)
	f := seedSalon(t, db, "UTC")
	pinNow(t, testNow)
	r := newTestRouter()

	start := time.Date(2026, 9, 7, 11, 0, 0, 0, time.UTC)
	booking := insertBooking(t, db, f, start, start.Add(time.Hour), models.BookingCanceled)

	w := doJSON(t, r, http.MethodPost, "/api/bookings/reschedule", map[string]interface{}{
		"bookingId":      booking.ID.String(),
		"scheduledStart": time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC).Format(time.RFC3339),
	}, f.customerToken)
	if w.Code != http.StatusNotFound {
		t.Errorf("reschedule canceled booking: got %d, want 404: %s", w.Code, w.Body.String())
	}
}

func TestCancelBooking_RefundsSucceededPayment(t *testing.T) {
	db := openTestDB(t)
	f := seedSalon(t, db, "UTC")
	pinNow(t, testNow)
	r := newTestRouter()

	start := time.Date(2026, 9, 7, 13, 0, 0, 0, time.UTC)
	booking := insertBooking(t, db, f, start, start.Add(time.Hour), models.BookingScheduled)

	payment := models.Payment{
		BookingID: booking.ID, Amount: 50, Status: models.PaymentSucceeded,
		Provider: "stripe", Reference: "pi_test_123",
	}
	mustCreate(t, db, &payment)

	w := doJSON(t, r, http.MethodPost, "/api/bookings/cancel", map[string]interface{}{
		"bookingId": booking.ID.String(),
	}, f.customerToken)
	if w.Code != http.StatusOK {
		t.Fatalf("cancel: got %d, want 200: %s", w.Code, w.Body.String())
	}
	var resp struct {
		NewStatus models.BookingStatus `json:"new_status"`
	}
	decodeBody(t, w, &resp)
	if resp.NewStatus != models.BookingCanceled {
		t.Errorf("new_status = %s, want %s", resp.NewStatus, models.BookingCanceled)
	}

	if err := db.First(&payment, "id = ?", payment.ID).Error; err != nil {
		t.Fatalf("reload payment: %v", err)
	}
	if payment.Status != models.PaymentRefunded {
		t.Errorf("payment status = %s, want %s", payment.Status, models.PaymentRefunded)
	}
}

func TestCancelBooking_SameDayRejectedForCustomer(t *testing.T) {
	db := openTestDB(t)
	f := seedSalon(t, db, "UTC")
	pinNow(t, testNow)
	r := newTestRouter()

	todayStart := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	booking := insertBooking(t, db, f, todayStart, todayStart.Add(time.Hour), models.BookingScheduled)

	w := doJSON(t, r, http.MethodPost, "/api/bookings/cancel", map[string]interface{}{
		"bookingId": booking.ID.String(),
	}, f.customerToken)
	if w.Code != http.StatusBadRequest {
		t.Errorf("same-day customer cancel: got %d, want 400: %s", w.Code, w.Body.String())
	}

	// The stylist is not bound by the same-day policy.
	w = doJSON(t, r, http.MethodPost, "/api/bookings/cancel", map[string]interface{}{
		"bookingId": booking.ID.String(),
	}, f.stylistToken)
	if w.Code != http.StatusOK {
		t.Errorf("same-day stylist cancel: got %d, want 200: %s", w.Code, w.Body.String())
	}
}

func TestCancelBooking_ForeignBookingLooksMissing(t *testing.T) {
	db := openTestDB(t)
	f := seedSalon(t, db, "UTC")
	pinNow(t, testNow)
	r := newTestRouter()

	start := time.Date(2026, 9, 7, 14, 0, 0, 0, time.UTC)
	booking := insertBooking(t, db, f, start, start.Add(time.Hour), models.BookingScheduled)

	intruder := models.User{
		ID: uuid.New(), Email: "mallory@example.com", Password: "x",
		Name: "Mallory", Phone: "+15550000099", Role: "customer", IsActive: true,
	}
	mustCreate(t, db.Session(&gormSkipHooks), &intruder)
	token := mustToken(t, intruder.ID.String(), "", "customer")

	w := doJSON(t, r, http.MethodPost, "/api/bookings/cancel", map[string]interface{}{
		"bookingId": booking.ID.String(),
	}, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("foreign cancel: got %d, want 404: %s", w.Code, w.Body.String())
	}
}

func TestCancelBooking_FollowsStatusMachine(t *testing.T) {
	db := openTestDB(t)
	f := seedSalon(t, db, "UTC")
	pinNow(t, testNow)
	r := newTestRouter()

	// Terminal statuses cannot be canceled.
	start := time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)
	completed := insertBooking(t, db, f, start, start.Add(time.Hour), models.BookingCompleted)
	w := doJSON(t, r, http.MethodPost, "/api/bookings/cancel", map[string]interface{}{
		"bookingId": completed.ID.String(),
	}, f.customerToken)
	if w.Code != http.StatusNotFound {
		t.Errorf("cancel completed booking: got %d, want 404: %s", w.Code, w.Body.String())
	}

	// A PENDING booking may be canceled straight from checkout.
	pendingStart := time.Date(2026, 9, 7, 11, 0, 0, 0, time.UTC)
	pending := insertBooking(t, db, f, pendingStart, pendingStart.Add(time.Hour), models.BookingPending)
	w = doJSON(t, r, http.MethodPost, "/api/bookings/cancel", map[string]interface{}{
		"bookingId": pending.ID.String(),
	}, f.customerToken)
	if w.Code != http.StatusOK {
		t.Fatalf("cancel pending booking: got %d, want 200: %s", w.Code, w.Body.String())
	}
	if err := db.First(&pending, "id = ?", pending.ID).Error; err != nil {
		t.Fatalf("reload pending booking: %v", err)
	}
	if pending.Status != models.BookingCanceled {
		t.Errorf("pending booking status = %s, want %s", pending.Status, models.BookingCanceled)
	}
}

func TestCompleteElapsedBookings_Idempotent(t *testing.T) {
	db := openTestDB(t)
	f := seedSalon(t, db, "UTC")
	pinNow(t, testNow)
	r := newTestRouter()

	elapsedStart := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	booking := insertBooking(t, db, f, elapsedStart, elapsedStart.Add(time.Hour), models.BookingScheduled)

	upcomingStart := time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)
	upcoming := insertBooking(t, db, f, upcomingStart, upcomingStart.Add(time.Hour), models.BookingScheduled)

	w := doJSON(t, r, http.MethodPost, "/api/bookings/complete-elapsed", nil, f.stylistToken)
	if w.Code != http.StatusOK {
		t.Fatalf("sweep: got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Completed int64 `json:"completed"`
	}
	decodeBody(t, w, &resp)
	if resp.Completed != 1 {
		t.Errorf("first sweep completed = %d, want 1", resp.Completed)
	}

	w = doJSON(t, r, http.MethodPost, "/api/bookings/complete-elapsed", nil, f.stylistToken)
	decodeBody(t, w, &resp)
	if resp.Completed != 0 {
		t.Errorf("second sweep completed = %d, want 0", resp.Completed)
	}

	if err := db.First(&booking, "id = ?", booking.ID).Error; err != nil {
		t.Fatalf("reload elapsed booking: %v", err)
	}
	if booking.Status != models.BookingCompleted {
		t.Errorf("elapsed booking status = %s, want %s", booking.Status, models.BookingCompleted)
	}
	if err := db.First(&upcoming, "id = ?", upcoming.ID).Error; err != nil {
		t.Fatalf("reload upcoming booking: %v", err)
	}
	if upcoming.Status != models.BookingScheduled {
		t.Errorf("upcoming booking status = %s, want %s", upcoming.Status, models.BookingScheduled)
	}
}
