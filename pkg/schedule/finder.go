// pkg/schedule/finder.go
package schedule

import (
	"sort"
	"time"

	"gymbooker/pkg/config"
)

// FindClass picks at most one bookable class for the rule. Candidates are
// narrowed to the rule's activity type and slots the UI does not mark
// unavailable, then scanned earliest-first; the first one passing every
// check wins. When the rule does not require an open booking window, a
// candidate outside its window is still returned (the attempt-anyway
// leniency is deliberate).
func FindClass(now time.Time, classes []ClassInstance, rule config.ActivityRule) (ClassInstance, bool) {
	var candidates []ClassInstance
	for _, class := range classes {
		if class.ActivityTypeID != rule.ActivityID || class.Unavailable {
			continue
		}
		candidates = append(candidates, class)
	}
	sort.Slice(candidates, func(first, second int) bool {
		return candidates[first].StartTime.Before(candidates[second].StartTime)
	})

	for _, candidate := range candidates {
		startHour := candidate.StartTime.Hour()
		if startHour < rule.MinHour {
			continue
		}
		if startHour == rule.MinHour && candidate.StartTime.Minute() < rule.MinMinutes {
			continue
		}
		if !weekdayAllowed(candidate.StartTime.Weekday(), rule.AllowedDays) {
			continue
		}
		if candidate.AlreadyBooked {
			continue
		}
		if candidate.Available() <= 0 {
			continue
		}
		if rule.OpenWindowRequired() && !WithinBookingWindow(now, candidate.StartTime) {
			continue
		}
		return candidate, true
	}
	return ClassInstance{}, false
}

func weekdayAllowed(weekday time.Weekday, allowedDays []int) bool {
	for _, day := range allowedDays {
		if time.Weekday(day) == weekday {
			return true
		}
	}
	return false
}
