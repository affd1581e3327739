package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayUTC(t *testing.T) {
	in := time.Date(2026, 3, 15, 23, 45, 12, 999, time.FixedZone("CET", 3600))
	got := DayUTC(in)
	// 23:45 CET is 22:45 UTC, still March 15.
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), got)
}

func TestEndOfDayUTC(t *testing.T) {
	in := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	got := EndOfDayUTC(in)
	assert.Equal(t, 23, got.Hour())
	assert.Equal(t, 59, got.Minute())
	assert.True(t, got.Before(time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)))
	assert.True(t, got.After(in))
}

func TestWithinWindow(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)

	assert.True(t, WithinWindow(start, start, end), "start boundary is inclusive")
	assert.True(t, WithinWindow(end, start, end), "end boundary is inclusive")
	assert.True(t, WithinWindow(start.AddDate(0, 0, 15), start, end))
	assert.False(t, WithinWindow(start.Add(-time.Nanosecond), start, end))
	assert.False(t, WithinWindow(end.Add(time.Nanosecond), start, end))
}

func TestUnixUTC(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, now, UnixUTC(now.Unix()))
	assert.Equal(t, time.UTC, UnixUTC(0).Location())
}
