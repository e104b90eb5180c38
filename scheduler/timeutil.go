package scheduler

import (
	"time"

	"github.com/meddesk/clinic-booking/models"
)

// RoundToNearestInterval snaps a time of day to the nearest multiple of
// interval. Exact halves round down, so 09:15 on a 30-minute grid becomes
// 09:00 while 09:16 becomes 09:30. Idempotent for already-aligned times.
func RoundToNearestInterval(t models.TimeOfDay, interval time.Duration) models.TimeOfDay {
	step := int(interval / time.Minute)
	if step <= 0 {
		return t
	}
	rem := int(t) % step
	rounded := int(t) - rem
	if rem*2 > step {
		rounded += step
	}
	return models.TimeOfDay(rounded)
}

// Overlaps reports whether the half-open windows [aStart, aEnd) and
// [bStart, bEnd) share at least one instant.
func Overlaps(aStart, aEnd, bStart, bEnd models.TimeOfDay) bool {
	return aStart < bEnd && bStart < aEnd
}

// IsWithinWorkingHours reports whether [start, end) fits inside the clinic's
// opening hours.
func IsWithinWorkingHours(start, end, open, close models.TimeOfDay) bool {
	return start >= open && end <= close
}

// IsBreakTime reports whether t falls inside the break window [breakStart, breakEnd).
func IsBreakTime(t, breakStart, breakEnd models.TimeOfDay) bool {
	if breakStart >= breakEnd {
		return false
	}
	return t >= breakStart && t < breakEnd
}

// DateOnly strips the time-of-day component, keeping the location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDate reports whether a and b fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
