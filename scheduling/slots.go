package scheduling

import "time"

// Interval is a half-open [Start, End) span of UTC instants.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (iv Interval) IsZero() bool {
	return !iv.End.After(iv.Start)
}

// Overlaps reports whether two half-open intervals intersect.
func (iv Interval) Overlaps(o Interval) bool {
	return iv.Start.Before(o.End) && o.Start.Before(iv.End)
}

// Contains reports whether o lies entirely within iv.
func (iv Interval) Contains(o Interval) bool {
	return !o.Start.Before(iv.Start) && !o.End.After(iv.End)
}

// SlotStarts enumerates candidate start instants within window, stepped
// by step, such that a booking of the given duration:
//
//   - ends no later than window.End (partial fits are excluded),
//   - does not start before now,
//   - does not overlap any busy interval.
//
// The result is ordered and recomputed from scratch on every call;
// callers never cache it.
func SlotStarts(window Interval, duration, step time.Duration, busy []Interval, now time.Time) []time.Time {
	if duration <= 0 || step <= 0 || window.IsZero() {
		return nil
	}

	var starts []time.Time
	for t := window.Start; !t.Add(duration).After(window.End); t = t.Add(step) {
		if t.Before(now) {
			continue
		}
		candidate := Interval{Start: t, End: t.Add(duration)}
		if overlapsAny(candidate, busy) {
			continue
		}
		starts = append(starts, t)
	}
	return starts
}

func overlapsAny(candidate Interval, busy []Interval) bool {
	for _, b := range busy {
		if candidate.Overlaps(b) {
			return true
		}
	}
	return false
}
