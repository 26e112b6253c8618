package scheduling

import "time"

// LocalToUTC resolves a wall-clock time on the calendar date carried by
// date (its year/month/day in loc) to an absolute UTC instant.
//
// DST handling follows time.Date normalization: a time that does not
// exist on that day (spring-forward gap) is shifted across the gap, and
// an ambiguous time (fall-back fold) resolves to the first offset. Both
// cases are deterministic; the conversion never fails.
func LocalToUTC(t TimeOfDay, date time.Time, loc *time.Location) time.Time {
	y, m, d := date.In(loc).Date()
	return time.Date(y, m, d, t.Hour, t.Minute, t.Second, 0, loc).UTC()
}

// UTCToLocal is the inverse of LocalToUTC for unambiguous instants: the
// wall-clock reading of instant in loc.
func UTCToLocal(instant time.Time, loc *time.Location) TimeOfDay {
	local := instant.In(loc)
	return TimeOfDay{Hour: local.Hour(), Minute: local.Minute(), Second: local.Second()}
}

// LocalDate truncates instant to midnight of its calendar date in loc.
func LocalDate(instant time.Time, loc *time.Location) time.Time {
	y, m, d := instant.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// SameLocalDay reports whether two instants fall on the same calendar
// date in loc. Used for the salon-local same-day reschedule/cancel rule.
func SameLocalDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
