package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/meddesk/clinic-booking/models"
)

func tod(s string) models.TimeOfDay {
	return models.MustTimeOfDay(s)
}

func TestRoundToNearestInterval(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"09:00", "09:00"},
		{"09:14", "09:00"},
		{"09:15", "09:00"}, // exact half rounds down
		{"09:16", "09:30"},
		{"09:29", "09:30"},
		{"09:30", "09:30"},
		{"09:44", "09:30"},
		{"09:45", "09:30"},
		{"09:46", "10:00"},
		{"00:00", "00:00"},
		{"23:50", "24:00"},
	}
	for _, tc := range cases {
		got := RoundToNearestInterval(tod(tc.in), 30*time.Minute)
		assert.Equal(t, tc.want, got.String(), "rounding %s", tc.in)
	}
}

func TestRoundToNearestIntervalIdempotent(t *testing.T) {
	for start := tod("08:00"); start <= tod("18:00"); start++ {
		once := RoundToNearestInterval(start, 30*time.Minute)
		twice := RoundToNearestInterval(once, 30*time.Minute)
		assert.Equal(t, once, twice, "rounding %s twice", start)
	}
}

func TestRoundToNearestIntervalZeroStep(t *testing.T) {
	assert.Equal(t, tod("09:17"), RoundToNearestInterval(tod("09:17"), 0))
}

func TestOverlaps(t *testing.T) {
	// Touching windows do not overlap.
	assert.False(t, Overlaps(tod("09:00"), tod("09:30"), tod("09:30"), tod("10:00")))
	assert.False(t, Overlaps(tod("09:30"), tod("10:00"), tod("09:00"), tod("09:30")))

	// Partial and full containment do.
	assert.True(t, Overlaps(tod("09:00"), tod("09:30"), tod("09:15"), tod("09:45")))
	assert.True(t, Overlaps(tod("09:00"), tod("10:00"), tod("09:15"), tod("09:45")))
	assert.True(t, Overlaps(tod("09:15"), tod("09:45"), tod("09:00"), tod("10:00")))
	assert.True(t, Overlaps(tod("09:00"), tod("09:30"), tod("09:00"), tod("09:30")))

	// Disjoint windows do not.
	assert.False(t, Overlaps(tod("09:00"), tod("09:30"), tod("11:00"), tod("11:30")))
}

func TestIsWithinWorkingHours(t *testing.T) {
	open, close := tod("09:00"), tod("17:00")

	assert.True(t, IsWithinWorkingHours(tod("09:00"), tod("09:30"), open, close))
	assert.True(t, IsWithinWorkingHours(tod("16:30"), tod("17:00"), open, close))
	assert.False(t, IsWithinWorkingHours(tod("08:30"), tod("09:00"), open, close))
	assert.False(t, IsWithinWorkingHours(tod("16:45"), tod("17:15"), open, close))
	assert.False(t, IsWithinWorkingHours(tod("17:00"), tod("17:30"), open, close))
}

func TestIsBreakTime(t *testing.T) {
	breakStart, breakEnd := tod("13:00"), tod("14:00")

	assert.True(t, IsBreakTime(tod("13:00"), breakStart, breakEnd))
	assert.True(t, IsBreakTime(tod("13:30"), breakStart, breakEnd))
	assert.False(t, IsBreakTime(tod("14:00"), breakStart, breakEnd))
	assert.False(t, IsBreakTime(tod("12:30"), breakStart, breakEnd))

	// A doctor with no break window.
	assert.False(t, IsBreakTime(tod("13:00"), tod("00:00"), tod("00:00")))
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2026, 9, 1, 15, 42, 7, 123, time.UTC)
	got := DateOnly(in)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestSameDate(t *testing.T) {
	a := time.Date(2026, 9, 1, 23, 59, 0, 0, time.UTC)
	b := time.Date(2026, 9, 1, 0, 1, 0, 0, time.UTC)
	c := time.Date(2026, 9, 2, 0, 1, 0, 0, time.UTC)

	assert.True(t, SameDate(a, b))
	assert.False(t, SameDate(a, c))
}
