package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const scheduleFixtureHTML = `
<body>
  <div class="schedule-grid">
    <div class="schedule-slot" data-class='{"id":101,"name":"Spin","startDate":"2026-01-05T19:15:00","maxParticipants":20,"participantsCount":12,"activityTypeId":5,"isParticipant":false}'></div>
    <div class="schedule-slot" data-class='{"id":102,"name":"Yoga","startDate":"2026-01-06T08:00:00","maxParticipants":15,"participantsCount":15,"activityTypeId":7,"isParticipant":true}'>
      <span class="schedule-slot__unavailable">Not available</span>
    </div>
    <div class="schedule-slot" data-class='not json at all'></div>
    <div class="schedule-slot" data-class='{"name":"missing id","startDate":"2026-01-06T08:00:00","activityTypeId":7}'></div>
    <div class="schedule-slot" data-class='{"id":103,"name":"bad date","startDate":"tomorrow-ish","activityTypeId":7}'></div>
    <div class="schedule-slot"></div>
  </div>
</body>`

func TestParseClassesExtractsTypedRecords(t *testing.T) {
	classes, parseError := ParseClasses(scheduleFixtureHTML)
	require.NoError(t, parseError)
	require.Len(t, classes, 2)

	spin := classes[0]
	require.Equal(t, 101, spin.ID)
	require.Equal(t, "Spin", spin.Name)
	require.Equal(t, time.Date(2026, time.January, 5, 19, 15, 0, 0, time.Local), spin.StartTime)
	require.Equal(t, 20, spin.Capacity)
	require.Equal(t, 12, spin.BookingsMade)
	require.Equal(t, 8, spin.Available())
	require.Equal(t, 5, spin.ActivityTypeID)
	require.False(t, spin.AlreadyBooked)
	require.False(t, spin.Unavailable)

	yoga := classes[1]
	require.Equal(t, 102, yoga.ID)
	require.True(t, yoga.AlreadyBooked)
	require.True(t, yoga.Unavailable)
	require.Equal(t, 0, yoga.Available())
}

func TestParseClassesEmptyPage(t *testing.T) {
	classes, parseError := ParseClasses(`<body><div class="schedule-grid"></div></body>`)
	require.NoError(t, parseError)
	require.Empty(t, classes)
}
