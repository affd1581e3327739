package utils

import "time"

// DayUTC truncates t to midnight UTC — the canonical check-in date.
func DayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDayUTC is the last instant of t's UTC calendar day.
func EndOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
}

// UnixUTC converts a unix timestamp back to a UTC time.
func UnixUTC(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// WithinWindow reports whether t falls inside [start, end], inclusive
// on both ends.
func WithinWindow(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
