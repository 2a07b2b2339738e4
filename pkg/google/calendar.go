package google

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	cal "github.com/aimanagement-dev/archipielago-production-sub001/pkg/calendar"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

const (
	maxRetries   = 3
	initialDelay = 1 * time.Second
)

// CalendarClient is a Google Calendar API client implementing
// calendar.Service against a single calendar.
type CalendarClient struct {
	srv        *calendar.Service
	calendarID string
}

// NewCalendarClient creates a new Google Calendar client.
func NewCalendarClient(srv *calendar.Service, calendarID string) *CalendarClient {
	return &CalendarClient{srv: srv, calendarID: calendarID}
}

func (c *CalendarClient) GetEvent(ctx context.Context, eventID string) (*calendar.Event, error) {
	var event *calendar.Event
	err := c.withRetry(ctx, func() error {
		var err error
		event, err = c.srv.Events.Get(c.calendarID, eventID).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	// The API returns cancelled tombstones for deleted events instead
	// of a 404.
	if event.Status == "cancelled" {
		return nil, cal.ErrNotFound
	}
	return event, nil
}

func (c *CalendarClient) CreateEvent(ctx context.Context, event *calendar.Event) (*calendar.Event, error) {
	var created *calendar.Event
	err := c.withRetry(ctx, func() error {
		var err error
		created, err = c.srv.Events.Insert(c.calendarID, event).Context(ctx).Do()
		return err
	})
	return created, err
}

func (c *CalendarClient) PatchEvent(ctx context.Context, eventID string, patch *calendar.Event) (*calendar.Event, error) {
	var updated *calendar.Event
	err := c.withRetry(ctx, func() error {
		var err error
		updated, err = c.srv.Events.Patch(c.calendarID, eventID, patch).Context(ctx).Do()
		return err
	})
	return updated, err
}

func (c *CalendarClient) DeleteEvent(ctx context.Context, eventID string) error {
	return c.withRetry(ctx, func() error {
		return c.srv.Events.Delete(c.calendarID, eventID).Context(ctx).Do()
	})
}

func (c *CalendarClient) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]*calendar.Event, error) {
	var items []*calendar.Event
	err := c.withRetry(ctx, func() error {
		events, err := c.srv.Events.List(c.calendarID).
			TimeMin(timeMin.Format(time.RFC3339)).
			TimeMax(timeMax.Format(time.RFC3339)).
			SingleEvents(true).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		items = events.Items
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve events from calendar: %w", err)
	}
	return items, nil
}

// PatchAttendees replaces the event's attendee list. With notify set
// to false the vendor sends no invitation or update emails.
func (c *CalendarClient) PatchAttendees(ctx context.Context, eventID string, attendees []*calendar.EventAttendee, notify bool) error {
	sendUpdates := "none"
	if notify {
		sendUpdates = "all"
	}
	patch := &calendar.Event{Attendees: attendees}
	return c.withRetry(ctx, func() error {
		_, err := c.srv.Events.Patch(c.calendarID, eventID, patch).
			SendUpdates(sendUpdates).
			Context(ctx).
			Do()
		return err
	})
}

// FindByTaskID searches for an event tagged with the given task id in
// its private extended properties.
func (c *CalendarClient) FindByTaskID(ctx context.Context, taskID string) (*calendar.Event, error) {
	var found *calendar.Event
	err := c.withRetry(ctx, func() error {
		events, err := c.srv.Events.List(c.calendarID).
			PrivateExtendedProperty(fmt.Sprintf("%s=%s", cal.TaskIDProperty, taskID)).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		if len(events.Items) == 0 {
			found = nil
			return nil
		}
		found = events.Items[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, cal.ErrNotFound
	}
	return found, nil
}

// withRetry runs fn up to maxRetries times with exponential backoff
// (1s, 2s, 4s), honoring ctx between attempts. Rate limits and server
// errors are retried; 404/410 map to calendar.ErrNotFound; other
// client errors fail immediately.
func (c *CalendarClient) withRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt-1))) * initialDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := fn()
		if err == nil {
			return nil
		}

		if gerr, ok := err.(*googleapi.Error); ok {
			if gerr.Code == http.StatusNotFound || gerr.Code == http.StatusGone {
				return cal.ErrNotFound
			}
			if gerr.Code != http.StatusTooManyRequests && gerr.Code < 500 {
				return err
			}
		}
		lastErr = err
	}
	return lastErr
}
