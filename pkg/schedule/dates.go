// pkg/schedule/dates.go
package schedule

import "time"

const (
	forwardScanDays = 14

	bookingWindowOpensBefore  = 72 * time.Hour
	bookingWindowClosesBefore = 2 * time.Hour
)

// NextAllowedDate returns the earliest date, today or later within the
// forward scan window, whose weekday is in allowedDays (0=Sunday..6).
// When nothing in the window matches it falls back to today; for a
// non-empty set that can only happen with out-of-range day values.
func NextAllowedDate(now time.Time, allowedDays []int) time.Time {
	allowedWeekdaySet := map[time.Weekday]struct{}{}
	for _, day := range allowedDays {
		if day >= 0 && day <= 6 {
			allowedWeekdaySet[time.Weekday(day)] = struct{}{}
		}
	}
	today := midnightOf(now)
	for dayOffset := 0; dayOffset < forwardScanDays; dayOffset++ {
		candidate := today.AddDate(0, 0, dayOffset)
		if _, allowed := allowedWeekdaySet[candidate.Weekday()]; allowed {
			return candidate
		}
	}
	return today
}

// BookingWindow is the span during which the remote system accepts
// reservations for a class: opens 72h before start, closes 2h before.
func BookingWindow(startTime time.Time) (opensAt, closesAt time.Time) {
	return startTime.Add(-bookingWindowOpensBefore), startTime.Add(-bookingWindowClosesBefore)
}

// WithinBookingWindow reports whether now falls inside the class's booking
// window, boundaries included.
func WithinBookingWindow(now, startTime time.Time) bool {
	opensAt, closesAt := BookingWindow(startTime)
	return !now.Before(opensAt) && !now.After(closesAt)
}

func midnightOf(moment time.Time) time.Time {
	return time.Date(moment.Year(), moment.Month(), moment.Day(), 0, 0, 0, 0, moment.Location())
}
