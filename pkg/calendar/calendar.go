// pkg/calendar/calendar.go
package calendar

import (
	"fmt"
	"os"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

const (
	eventUIDSuffix       = "@gymbooker"
	defaultClassDuration = time.Hour
	calendarFileMode     = 0o644
)

// Writer appends booked classes to an iCalendar file so reruns accumulate
// events instead of overwriting them.
type Writer struct {
	filePath string
}

func NewWriter(filePath string) *Writer {
	return &Writer{filePath: filePath}
}

// AddBooking records one booked class as a VEVENT. The remote schedule has
// no end time per slot, so events get a flat one-hour duration.
func (w *Writer) AddBooking(classID int, name string, startTime time.Time) error {
	cal := ics.NewCalendar()
	if existingBytes, readError := os.ReadFile(w.filePath); readError == nil {
		if parsedCalendar, parseError := ics.ParseCalendar(strings.NewReader(string(existingBytes))); parseError == nil {
			cal = parsedCalendar
		}
	}
	cal.SetMethod(ics.MethodPublish)

	eventUID := fmt.Sprintf("class-%d%s", classID, eventUIDSuffix)
	for _, existingEvent := range cal.Events() {
		if uidProperty := existingEvent.GetProperty(ics.ComponentPropertyUniqueId); uidProperty != nil && uidProperty.Value == eventUID {
			// Rebooking the same class on a rerun; the event is already there.
			return nil
		}
	}

	event := cal.AddEvent(eventUID)
	event.SetCreatedTime(time.Now())
	event.SetDtStampTime(time.Now())
	event.SetStartAt(startTime)
	event.SetEndAt(startTime.Add(defaultClassDuration))
	event.SetSummary(name)

	return os.WriteFile(w.filePath, []byte(cal.Serialize()), calendarFileMode)
}
