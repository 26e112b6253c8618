// Package scheduling holds the pure time arithmetic behind slot listing
// and booking validation: civil time-of-day parsing, salon-local to UTC
// conversion, and slot enumeration. Nothing in here touches the database.
package scheduling

import (
	"fmt"
)

// TimeOfDay is a local civil wall-clock time, independent of date and zone.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var t TimeOfDay
	switch len(s) {
	case 5:
		if _, err := fmt.Sscanf(s, "%2d:%2d", &t.Hour, &t.Minute); err != nil {
			return TimeOfDay{}, fmt.Errorf("invalid time %q: expected HH:MM or HH:MM:SS", s)
		}
	case 8:
		if _, err := fmt.Sscanf(s, "%2d:%2d:%2d", &t.Hour, &t.Minute, &t.Second); err != nil {
			return TimeOfDay{}, fmt.Errorf("invalid time %q: expected HH:MM or HH:MM:SS", s)
		}
	default:
		return TimeOfDay{}, fmt.Errorf("invalid time %q: expected HH:MM or HH:MM:SS", s)
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 || t.Second < 0 || t.Second > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid time %q: out of range", s)
	}
	return t, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

func (t TimeOfDay) seconds() int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}

func (t TimeOfDay) Before(o TimeOfDay) bool {
	return t.seconds() < o.seconds()
}

// Max returns the later of t and o.
func (t TimeOfDay) Max(o TimeOfDay) TimeOfDay {
	if t.Before(o) {
		return o
	}
	return t
}

// Min returns the earlier of t and o.
func (t TimeOfDay) Min(o TimeOfDay) TimeOfDay {
	if o.Before(t) {
		return o
	}
	return t
}
