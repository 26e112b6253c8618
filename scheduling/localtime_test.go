package scheduling

import (
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"09:00", TimeOfDay{9, 0, 0}, false},
		{"09:30:15", TimeOfDay{9, 30, 15}, false},
		{"00:00", TimeOfDay{0, 0, 0}, false},
		{"23:59:59", TimeOfDay{23, 59, 59}, false},
		{"24:00", TimeOfDay{}, true},
		{"09:60", TimeOfDay{}, true},
		{"9:00", TimeOfDay{}, true},
		{"09-00", TimeOfDay{}, true},
		{"", TimeOfDay{}, true},
		{"banana", TimeOfDay{}, true},
	}
	for _, tc := range cases {
		got, err := ParseTimeOfDay(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseTimeOfDay(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseTimeOfDay(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestLocalToUTC_RoundTrip(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}

	// An ordinary summer day, nowhere near a transition.
	date := time.Date(2026, 7, 15, 0, 0, 0, 0, loc)
	for _, tod := range []TimeOfDay{{0, 0, 0}, {9, 30, 0}, {13, 0, 45}, {23, 59, 59}} {
		instant := LocalToUTC(tod, date, loc)
		if got := UTCToLocal(instant, loc); got != tod {
			t.Errorf("round trip for %v: got %v", tod, got)
		}
	}
}

func TestLocalToUTC_SpringForwardGap(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}

	// 2026-03-08: clocks jump 02:00 -> 03:00, so 02:30 does not exist.
	date := time.Date(2026, 3, 8, 0, 0, 0, 0, loc)
	instant := LocalToUTC(TimeOfDay{2, 30, 0}, date, loc)

	// Resolution is deterministic and lands on a real instant that day.
	local := instant.In(loc)
	if local.Hour() == 2 {
		t.Fatalf("resolved to nonexistent local hour 2: %s", local)
	}
	if y, m, d := local.Date(); y != 2026 || m != time.March || d != 8 {
		t.Fatalf("resolved off the requested date: %s", local)
	}
}

func TestLocalToUTC_TransitionDayLengths(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		date  time.Time
		hours float64
	}{
		{time.Date(2026, 3, 8, 0, 0, 0, 0, loc), 23},  // spring forward
		{time.Date(2026, 11, 1, 0, 0, 0, 0, loc), 25}, // fall back
		{time.Date(2026, 7, 15, 0, 0, 0, 0, loc), 24}, // plain day
	}
	for _, tc := range cases {
		dayStart := LocalToUTC(TimeOfDay{}, tc.date, loc)
		nextStart := LocalToUTC(TimeOfDay{}, tc.date.AddDate(0, 0, 1), loc)
		if got := nextStart.Sub(dayStart).Hours(); got != tc.hours {
			t.Errorf("%s: day length %v hours, want %v", tc.date.Format("2006-01-02"), got, tc.hours)
		}
	}
}

func TestSameLocalDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}

	// 23:30 local and 00:30 local next day are under an hour apart but on
	// different salon calendar dates.
	late := time.Date(2026, 7, 15, 23, 30, 0, 0, loc)
	early := late.Add(time.Hour)
	if SameLocalDay(late.UTC(), early.UTC(), loc) {
		t.Fatal("expected different local days")
	}
	if !SameLocalDay(late.UTC(), late.Add(-6*time.Hour).UTC(), loc) {
		t.Fatal("expected same local day")
	}

	// In UTC those same instants share a date.
	if !SameLocalDay(late.UTC(), early.UTC(), time.UTC) {
		t.Fatal("expected same UTC day")
	}
}
