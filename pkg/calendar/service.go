package calendar

import (
	"context"
	"errors"
	"time"

	gcal "google.golang.org/api/calendar/v3"
)

// TaskIDProperty is the private extended property carrying the
// originating task id on every event the engine creates. It is the
// reverse-lookup convention: event→task resolution reads it back.
const TaskIDProperty = "task_id"

// ErrNotFound is returned by Service implementations when the
// requested event does not exist on the remote calendar (deleted
// out-of-band, or never created).
var ErrNotFound = errors.New("calendar: event not found")

// Service is the calendar capability the sync engine depends on. The
// production implementation lives in pkg/google; tests substitute a
// fake.
type Service interface {
	GetEvent(ctx context.Context, eventID string) (*gcal.Event, error)
	CreateEvent(ctx context.Context, event *gcal.Event) (*gcal.Event, error)
	PatchEvent(ctx context.Context, eventID string, patch *gcal.Event) (*gcal.Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
	ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]*gcal.Event, error)

	// PatchAttendees replaces the event's attendee list. notify=false
	// must suppress any invitation email the vendor would otherwise
	// send.
	PatchAttendees(ctx context.Context, eventID string, attendees []*gcal.EventAttendee, notify bool) error

	// FindByTaskID searches for an event tagged with the given task id
	// in its private extended properties. Returns ErrNotFound when no
	// such event exists.
	FindByTaskID(ctx context.Context, taskID string) (*gcal.Event, error)
}
