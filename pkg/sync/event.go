package sync

import (
	"fmt"
	"strings"
	"time"

	cal "github.com/aimanagement-dev/archipielago-production-sub001/pkg/calendar"
	"github.com/aimanagement-dev/archipielago-production-sub001/pkg/model"
	"google.golang.org/api/calendar/v3"
)

// buildEvent converts a schedulable task into its target calendar
// event. The event id is not set here; the engine decides it.
func buildEvent(task *model.Task, start time.Time, duration time.Duration, colorID string) *calendar.Event {
	end := start.Add(duration)

	var desc strings.Builder
	desc.WriteString(fmt.Sprintf("Status: %s\n", task.Status))
	if task.Area != "" {
		desc.WriteString(fmt.Sprintf("Area: %s\n", task.Area))
	}
	if task.Week != "" {
		desc.WriteString(fmt.Sprintf("Week: %s (%s)\n", task.Week, task.Month))
	}
	if task.MeetLink != "" {
		desc.WriteString(fmt.Sprintf("Meet: %s\n", task.MeetLink))
	}
	if task.Notes != "" {
		desc.WriteString("\nNotes:\n")
		desc.WriteString(task.Notes)
		desc.WriteString("\n")
	}

	event := &calendar.Event{
		Summary:     task.Title,
		Description: desc.String(),
		ColorId:     colorID,
		Start: &calendar.EventDateTime{
			DateTime: start.Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: end.Format(time.RFC3339),
		},
		Attendees: attendeesFor(task),
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				cal.TaskIDProperty: task.ID,
			},
		},
	}
	return event
}

// attendeesFor builds the invitee list: responsible plus visibleTo,
// deduplicated, with anything that is not an email address dropped.
// Recorded responses carry over as the attendee's responseStatus.
func attendeesFor(task *model.Task) []*calendar.EventAttendee {
	responses := make(map[string]model.ResponseStatus, len(task.AttendeeResponses))
	for _, r := range task.AttendeeResponses {
		responses[strings.ToLower(r.Email)] = r.Status
	}

	seen := make(map[string]bool)
	var attendees []*calendar.EventAttendee
	for _, email := range append(append([]string{}, task.Responsible...), task.VisibleTo...) {
		email = strings.TrimSpace(email)
		if !isEmail(email) {
			continue
		}
		key := strings.ToLower(email)
		if seen[key] {
			continue
		}
		seen[key] = true

		attendee := &calendar.EventAttendee{Email: email}
		if status, ok := responses[key]; ok {
			attendee.ResponseStatus = status.String()
		}
		attendees = append(attendees, attendee)
	}
	return attendees
}

// isEmail is the same loose check the dashboard applies before
// inviting: anything without a user and a domain part is treated as a
// display name, not an invitee.
func isEmail(s string) bool {
	at := strings.Index(s, "@")
	return at > 0 && at < len(s)-1 && !strings.Contains(s, " ")
}

// diff returns a patch holding only the fields where the existing
// remote event differs from the target, or nil when nothing differs.
// Attendees are compared as an email set: a response status change
// alone is not outbound drift (the remote status may be newer).
func diff(existing, target *calendar.Event) (*calendar.Event, error) {
	patch := &calendar.Event{}
	needsUpdate := false

	if existing.Summary != target.Summary {
		patch.Summary = target.Summary
		needsUpdate = true
	}
	if existing.Description != target.Description {
		patch.Description = target.Description
		needsUpdate = true
	}
	if target.ColorId != "" && existing.ColorId != target.ColorId {
		patch.ColorId = target.ColorId
		needsUpdate = true
	}

	existingStart, err := eventTime(existing.Start)
	if err != nil {
		return nil, err
	}
	targetStart, err := eventTime(target.Start)
	if err != nil {
		return nil, err
	}
	existingEnd, err := eventTime(existing.End)
	if err != nil {
		return nil, err
	}
	targetEnd, err := eventTime(target.End)
	if err != nil {
		return nil, err
	}
	if !existingStart.Equal(targetStart) || !existingEnd.Equal(targetEnd) {
		patch.Start = target.Start
		patch.End = target.End
		needsUpdate = true
	}

	if !sameAttendeeSet(existing.Attendees, target.Attendees) {
		patch.Attendees = mergeAttendees(existing.Attendees, target.Attendees)
		needsUpdate = true
	}

	if needsUpdate {
		return patch, nil
	}
	return nil, nil
}

// eventTime parses the start/end of an event, accepting both timed
// and all-day forms.
func eventTime(edt *calendar.EventDateTime) (time.Time, error) {
	if edt == nil {
		return time.Time{}, fmt.Errorf("event has no time")
	}
	if edt.DateTime != "" {
		return time.Parse(time.RFC3339, edt.DateTime)
	}
	if edt.Date != "" {
		return time.ParseInLocation("2006-01-02", edt.Date, time.Local)
	}
	return time.Time{}, fmt.Errorf("event has no time")
}

func sameAttendeeSet(a, b []*calendar.EventAttendee) bool {
	if len(a) != len(b) {
		return false
	}
	emails := make(map[string]bool, len(a))
	for _, att := range a {
		emails[strings.ToLower(att.Email)] = true
	}
	for _, att := range b {
		if !emails[strings.ToLower(att.Email)] {
			return false
		}
	}
	return true
}

// mergeAttendees produces the target email set while keeping the
// response status an attendee already gave on the remote event.
func mergeAttendees(existing, target []*calendar.EventAttendee) []*calendar.EventAttendee {
	remote := make(map[string]string, len(existing))
	for _, att := range existing {
		remote[strings.ToLower(att.Email)] = att.ResponseStatus
	}

	merged := make([]*calendar.EventAttendee, 0, len(target))
	for _, att := range target {
		out := &calendar.EventAttendee{Email: att.Email, ResponseStatus: att.ResponseStatus}
		if status, ok := remote[strings.ToLower(att.Email)]; ok && status != "" {
			out.ResponseStatus = status
		}
		merged = append(merged, out)
	}
	return merged
}
