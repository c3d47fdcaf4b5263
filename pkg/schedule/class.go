// pkg/schedule/class.go
package schedule

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"gymbooker/pkg/log"
)

const (
	slotSelector              = ".schedule-slot"
	slotRecordAttributeName   = "data-class"
	unavailableMarkerSelector = ".schedule-slot__unavailable"
	classStartTimeLayout      = "2006-01-02T15:04:05"
)

// ClassInstance is one scheduled occurrence of an activity, rebuilt fresh
// from every page load. Unavailable comes from the sibling UI marker, not
// from the serialized record.
type ClassInstance struct {
	ID             int
	Name           string
	StartTime      time.Time
	Capacity       int
	BookingsMade   int
	ActivityTypeID int
	AlreadyBooked  bool
	Unavailable    bool
}

// Available is the number of open spots left on the class.
func (class ClassInstance) Available() int {
	return class.Capacity - class.BookingsMade
}

// classRecord is the JSON shape the schedule page embeds in each slot
// element's data attribute.
type classRecord struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	StartDate         string `json:"startDate"`
	MaxParticipants   int    `json:"maxParticipants"`
	ParticipantsCount int    `json:"participantsCount"`
	ActivityTypeID    int    `json:"activityTypeId"`
	IsParticipant     bool   `json:"isParticipant"`
}

// ParseClasses extracts every slot record from the captured weekly-schedule
// HTML, decoding each into a typed ClassInstance at the boundary. Slots with
// a missing, malformed, or incomplete record are skipped, not fatal.
func ParseClasses(pageHTML string) ([]ClassInstance, error) {
	document, documentError := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if documentError != nil {
		return nil, documentError
	}

	var parsedClasses []ClassInstance
	document.Find(slotSelector).Each(func(_ int, slot *goquery.Selection) {
		rawRecord, hasRecord := slot.Attr(slotRecordAttributeName)
		if !hasRecord {
			return
		}
		var record classRecord
		if decodeError := json.Unmarshal([]byte(rawRecord), &record); decodeError != nil {
			log.L().Warn("slot_record_malformed", zap.Error(decodeError))
			return
		}
		if record.ID <= 0 || record.ActivityTypeID <= 0 || record.StartDate == "" {
			log.L().Warn("slot_record_incomplete", zap.Int("id", record.ID))
			return
		}
		startTime, startError := time.ParseInLocation(classStartTimeLayout, record.StartDate, time.Local)
		if startError != nil {
			log.L().Warn("slot_start_unparseable", zap.Int("id", record.ID), zap.String("startDate", record.StartDate))
			return
		}
		parsedClasses = append(parsedClasses, ClassInstance{
			ID:             record.ID,
			Name:           record.Name,
			StartTime:      startTime,
			Capacity:       record.MaxParticipants,
			BookingsMade:   record.ParticipantsCount,
			ActivityTypeID: record.ActivityTypeID,
			AlreadyBooked:  record.IsParticipant,
			Unavailable:    slot.Find(unavailableMarkerSelector).Length() > 0,
		})
	})
	return parsedClasses, nil
}
