package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	cal "github.com/aimanagement-dev/archipielago-production-sub001/pkg/calendar"
	"google.golang.org/api/calendar/v3"
)

type attendeePatch struct {
	eventID string
	notify  bool
}

// fakeCalendar is an in-memory calendar.Service with failure
// injection, standing in for the Google implementation in tests.
type fakeCalendar struct {
	mu     sync.Mutex
	events map[string]*calendar.Event

	failCreateFor map[string]bool // by summary
	getErr        error
	patchAttErr   error

	attendeePatches []attendeePatch
	getCalls        int
	createCalls     int
}

func newFakeCalendar() *fakeCalendar {
	return &fakeCalendar{
		events:        make(map[string]*calendar.Event),
		failCreateFor: make(map[string]bool),
	}
}

func (f *fakeCalendar) GetEvent(ctx context.Context, eventID string) (*calendar.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	event, ok := f.events[eventID]
	if !ok {
		return nil, cal.ErrNotFound
	}
	return event, nil
}

func (f *fakeCalendar) CreateEvent(ctx context.Context, event *calendar.Event) (*calendar.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.failCreateFor[event.Summary] {
		return nil, fmt.Errorf("simulated create failure for %q", event.Summary)
	}
	if event.Id == "" {
		event.Id = fmt.Sprintf("generated-%d", len(f.events)+1)
	}
	f.events[event.Id] = event
	return event, nil
}

func (f *fakeCalendar) PatchEvent(ctx context.Context, eventID string, patch *calendar.Event) (*calendar.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[eventID]
	if !ok {
		return nil, cal.ErrNotFound
	}
	if patch.Summary != "" {
		event.Summary = patch.Summary
	}
	if patch.Description != "" {
		event.Description = patch.Description
	}
	if patch.ColorId != "" {
		event.ColorId = patch.ColorId
	}
	if patch.Start != nil {
		event.Start = patch.Start
	}
	if patch.End != nil {
		event.End = patch.End
	}
	if patch.Attendees != nil {
		event.Attendees = patch.Attendees
	}
	if patch.ExtendedProperties != nil {
		event.ExtendedProperties = patch.ExtendedProperties
	}
	return event, nil
}

func (f *fakeCalendar) DeleteEvent(ctx context.Context, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[eventID]; !ok {
		return cal.ErrNotFound
	}
	delete(f.events, eventID)
	return nil
}

func (f *fakeCalendar) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]*calendar.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []*calendar.Event
	for _, event := range f.events {
		start, err := eventTime(event.Start)
		if err != nil {
			continue
		}
		if start.Before(timeMin) || start.After(timeMax) {
			continue
		}
		items = append(items, event)
	}
	return items, nil
}

func (f *fakeCalendar) PatchAttendees(ctx context.Context, eventID string, attendees []*calendar.EventAttendee, notify bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.patchAttErr != nil {
		return f.patchAttErr
	}
	event, ok := f.events[eventID]
	if !ok {
		return cal.ErrNotFound
	}
	event.Attendees = attendees
	f.attendeePatches = append(f.attendeePatches, attendeePatch{eventID: eventID, notify: notify})
	return nil
}

func (f *fakeCalendar) FindByTaskID(ctx context.Context, taskID string) (*calendar.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, event := range f.events {
		if taggedTaskID(event) == taskID {
			return event, nil
		}
	}
	return nil, cal.ErrNotFound
}
