package schedule

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gymbooker/pkg/config"
	"gymbooker/pkg/log"
)

func TestMain(m *testing.M) {
	_ = log.Init(false)
	os.Exit(m.Run())
}

func boolPointer(value bool) *bool { return &value }

// Sunday, January 4th 2026 at 20:00: Monday the 5th is inside its booking
// window for evening classes.
var findReference = time.Date(2026, time.January, 4, 20, 0, 0, 0, time.Local)

func mondayAt(hour, minute int) time.Time {
	return time.Date(2026, time.January, 5, hour, minute, 0, 0, time.Local)
}

func TestFindClassSelectsEarliestEligible(t *testing.T) {
	rule := config.ActivityRule{ActivityID: 5, AllowedDays: []int{1, 5}, MinHour: 19, MinMinutes: 0}
	classes := []ClassInstance{
		{ID: 1, Name: "Spin early", StartTime: mondayAt(18, 30), Capacity: 10, ActivityTypeID: 5},
		{ID: 2, Name: "Spin", StartTime: mondayAt(19, 15), Capacity: 10, BookingsMade: 9, ActivityTypeID: 5},
	}
	candidate, found := FindClass(findReference, classes, rule)
	require.True(t, found)
	require.Equal(t, 2, candidate.ID)
}

func TestFindClassEarliestWinsAmongMultipleEligible(t *testing.T) {
	rule := config.ActivityRule{ActivityID: 5, AllowedDays: []int{1}, MinHour: 17}
	classes := []ClassInstance{
		{ID: 3, StartTime: mondayAt(20, 0), Capacity: 5, ActivityTypeID: 5},
		{ID: 1, StartTime: mondayAt(18, 0), Capacity: 5, ActivityTypeID: 5},
		{ID: 2, StartTime: mondayAt(19, 0), Capacity: 5, ActivityTypeID: 5},
	}
	candidate, found := FindClass(findReference, classes, rule)
	require.True(t, found)
	require.Equal(t, 1, candidate.ID)
}

func TestFindClassNeverReturnsIneligibleCandidates(t *testing.T) {
	rule := config.ActivityRule{ActivityID: 5, AllowedDays: []int{1}, MinHour: 19, MinMinutes: 30}
	testCases := []struct {
		name  string
		class ClassInstance
	}{
		{"wrong activity type", ClassInstance{ID: 1, StartTime: mondayAt(20, 0), Capacity: 10, ActivityTypeID: 6}},
		{"marked unavailable", ClassInstance{ID: 2, StartTime: mondayAt(20, 0), Capacity: 10, ActivityTypeID: 5, Unavailable: true}},
		{"hour below minimum", ClassInstance{ID: 3, StartTime: mondayAt(18, 45), Capacity: 10, ActivityTypeID: 5}},
		{"equal hour below minute minimum", ClassInstance{ID: 4, StartTime: mondayAt(19, 15), Capacity: 10, ActivityTypeID: 5}},
		{"weekday not allowed", ClassInstance{ID: 5, StartTime: mondayAt(20, 0).AddDate(0, 0, 1), Capacity: 10, ActivityTypeID: 5}},
		{"already booked", ClassInstance{ID: 6, StartTime: mondayAt(20, 0), Capacity: 10, ActivityTypeID: 5, AlreadyBooked: true}},
		{"full", ClassInstance{ID: 7, StartTime: mondayAt(20, 0), Capacity: 10, BookingsMade: 10, ActivityTypeID: 5}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, found := FindClass(findReference, []ClassInstance{testCase.class}, rule)
			require.False(t, found)
		})
	}
}

func TestFindClassEqualHourMinuteBoundary(t *testing.T) {
	rule := config.ActivityRule{ActivityID: 5, AllowedDays: []int{1}, MinHour: 19, MinMinutes: 15}
	classes := []ClassInstance{
		{ID: 1, StartTime: mondayAt(19, 15), Capacity: 10, ActivityTypeID: 5},
	}
	candidate, found := FindClass(findReference, classes, rule)
	require.True(t, found)
	require.Equal(t, 1, candidate.ID)
}

func TestFindClassRespectsClosedWindowWhenRequired(t *testing.T) {
	rule := config.ActivityRule{ActivityID: 5, AllowedDays: []int{0, 1}, RequireOpenWindow: boolPointer(true)}
	// Starts in 90 minutes: the window closed 30 minutes ago.
	closedAlready := ClassInstance{ID: 1, StartTime: findReference.Add(90 * time.Minute), Capacity: 10, ActivityTypeID: 5}
	// Eight days out: the window has not opened yet.
	notYetOpen := ClassInstance{ID: 2, StartTime: mondayAt(19, 0).AddDate(0, 0, 7), Capacity: 10, ActivityTypeID: 5}

	_, found := FindClass(findReference, []ClassInstance{closedAlready}, rule)
	require.False(t, found)
	_, found = FindClass(findReference, []ClassInstance{notYetOpen}, rule)
	require.False(t, found)
}

func TestFindClassOutsideWindowStillReturnedWhenNotRequired(t *testing.T) {
	rule := config.ActivityRule{ActivityID: 5, AllowedDays: []int{1}, RequireOpenWindow: boolPointer(false)}
	classes := []ClassInstance{
		// Eight days out, so well before the window opens.
		{ID: 9, StartTime: mondayAt(19, 0).AddDate(0, 0, 7), Capacity: 10, ActivityTypeID: 5},
	}
	candidate, found := FindClass(findReference, classes, rule)
	require.True(t, found)
	require.Equal(t, 9, candidate.ID)
}

func TestFindClassOpenWindowDefaultsToRequired(t *testing.T) {
	rule := config.ActivityRule{ActivityID: 5, AllowedDays: []int{1}}
	classes := []ClassInstance{
		{ID: 9, StartTime: mondayAt(19, 0).AddDate(0, 0, 7), Capacity: 10, ActivityTypeID: 5},
	}
	_, found := FindClass(findReference, classes, rule)
	require.False(t, found)
}

func TestFindClassNoCandidates(t *testing.T) {
	rule := config.ActivityRule{ActivityID: 5, AllowedDays: []int{1}}
	_, found := FindClass(findReference, nil, rule)
	require.False(t, found)
}
