package sync

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aimanagement-dev/archipielago-production-sub001/pkg/model"
	"google.golang.org/api/calendar/v3"
)

// RecordResponse records one attendee's RSVP on a task and mirrors it
// onto the remote event. Any prior response for the same email is
// replaced; every state may transition to every other state, any
// number of times.
//
// Local state is authoritative: the persisted response is returned
// even when remote mirroring fails, and the mirror never triggers an
// invitation email. An invalid response value is rejected before
// anything is mutated.
func (e *Engine) RecordResponse(ctx context.Context, taskID, email string, status model.ResponseStatus) ([]model.AttendeeResponse, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidResponse, status)
	}
	if email == "" {
		return nil, fmt.Errorf("%w: empty attendee email", ErrInvalidResponse)
	}

	task, err := e.store.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("task %s not found", taskID)
	}

	upsertResponse(task, email, status)
	if err := e.store.Upsert(ctx, task); err != nil {
		return nil, err
	}

	if err := e.mirrorResponse(ctx, taskID, email, status); err != nil {
		log.Printf("Warning: could not mirror response for %s on task %s: %v", email, taskID, err)
	}

	return task.AttendeeResponses, nil
}

// mirrorResponse patches the attendee's responseStatus on the remote
// event, appending them when they were not an original invitee. The
// patch sends no notification.
func (e *Engine) mirrorResponse(ctx context.Context, taskID, email string, status model.ResponseStatus) error {
	_, event, err := e.resolveEvent(ctx, taskID)
	if err != nil {
		return err
	}
	if event == nil {
		return fmt.Errorf("no remote event for task %s", taskID)
	}

	attendees := event.Attendees
	found := false
	for _, attendee := range attendees {
		if strings.EqualFold(attendee.Email, email) {
			attendee.ResponseStatus = status.String()
			found = true
			break
		}
	}
	if !found {
		attendees = append(attendees, &calendar.EventAttendee{
			Email:          email,
			ResponseStatus: status.String(),
		})
	}

	return e.cal.PatchAttendees(ctx, event.Id, attendees, false)
}
