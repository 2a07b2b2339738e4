package sync

import (
	"context"
	"testing"
	"time"

	"github.com/aimanagement-dev/archipielago-production-sub001/pkg/model"
	"google.golang.org/api/calendar/v3"
)

func inboundWindow() (time.Time, time.Time) {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
}

func TestInboundWritesBackTimeMove(t *testing.T) {
	ctx := context.Background()
	engine, s, fake := newTestEngine(t)
	task := scheduledTask("t1", "Review Script")
	s.Upsert(ctx, &task)
	engine.SyncToCalendar(ctx, []model.Task{task})

	// The user drags the event to another slot in the calendar UI.
	moved := time.Date(2026, 1, 14, 15, 30, 0, 0, time.Local)
	event := fake.events[engineEventID(t, "t1", fake)]
	event.Start = &calendar.EventDateTime{DateTime: moved.Format(time.RFC3339)}
	event.End = &calendar.EventDateTime{DateTime: moved.Add(time.Hour).Format(time.RFC3339)}

	timeMin, timeMax := inboundWindow()
	result := engine.SyncFromCalendar(ctx, timeMin, timeMax)
	if result.TasksFound != 1 || result.Updated != 1 {
		t.Fatalf("expected one matched and updated task, got %+v", result)
	}

	updated, _ := s.Get(ctx, "t1")
	if updated.ScheduledDate != "2026-01-14" || updated.ScheduledTime != "15:30" {
		t.Errorf("remote time move not written back: %q %q", updated.ScheduledDate, updated.ScheduledTime)
	}

	// Fixed point: a second run with no remote changes updates nothing.
	again := engine.SyncFromCalendar(ctx, timeMin, timeMax)
	if again.Updated != 0 {
		t.Errorf("second inbound run must update nothing, got %+v", again)
	}
}

func TestInboundImportsAttendeeResponses(t *testing.T) {
	ctx := context.Background()
	engine, s, fake := newTestEngine(t)
	task := scheduledTask("t1", "Review Script")
	s.Upsert(ctx, &task)
	engine.SyncToCalendar(ctx, []model.Task{task})

	event := fake.events[engineEventID(t, "t1", fake)]
	event.Attendees = []*calendar.EventAttendee{
		{Email: "ana@studio.example", ResponseStatus: "accepted"},
		{Email: "luis@studio.example", ResponseStatus: "needsAction"},
	}

	timeMin, timeMax := inboundWindow()
	result := engine.SyncFromCalendar(ctx, timeMin, timeMax)
	if result.Updated != 1 {
		t.Fatalf("expected update from response change, got %+v", result)
	}

	updated, _ := s.Get(ctx, "t1")
	if len(updated.AttendeeResponses) != 1 {
		t.Fatalf("needsAction must stay unrecorded, got %v", updated.AttendeeResponses)
	}
	r := updated.AttendeeResponses[0]
	if r.Email != "ana@studio.example" || r.Status != model.Accepted {
		t.Errorf("unexpected recorded response %+v", r)
	}
}

func TestInboundSkipsUnmatchedByDefault(t *testing.T) {
	ctx := context.Background()
	engine, s, fake := newTestEngine(t)

	fake.events["foreign1"] = &calendar.Event{
		Id:      "foreign1",
		Summary: "Dentist",
		Start:   &calendar.EventDateTime{DateTime: "2026-01-20T09:00:00Z"},
		End:     &calendar.EventDateTime{DateTime: "2026-01-20T09:30:00Z"},
	}

	timeMin, timeMax := inboundWindow()
	result := engine.SyncFromCalendar(ctx, timeMin, timeMax)
	if result.TasksFound != 0 || result.Created != 0 || len(result.Errors) != 0 {
		t.Errorf("foreign event must be skipped by default, got %+v", result)
	}

	tasks, _ := s.List(ctx)
	if len(tasks) != 0 {
		t.Errorf("no task should be created, got %d", len(tasks))
	}
}

func TestInboundCreatesUnmatchedWhenConfigured(t *testing.T) {
	ctx := context.Background()
	_, s, fake := newTestEngine(t)
	engine := New(s, fake, Options{CreateUnmatched: true, DefaultArea: "General"})

	fake.events["foreign1"] = &calendar.Event{
		Id:      "foreign1",
		Summary: "Location Scouting",
		Start:   &calendar.EventDateTime{DateTime: "2026-01-20T09:00:00Z"},
		End:     &calendar.EventDateTime{DateTime: "2026-01-20T10:00:00Z"},
	}

	timeMin, timeMax := inboundWindow()
	result := engine.SyncFromCalendar(ctx, timeMin, timeMax)
	if result.Created != 1 {
		t.Fatalf("expected one created task, got %+v", result)
	}

	tasks, _ := s.List(ctx)
	if len(tasks) != 1 {
		t.Fatalf("expected one task in store, got %d", len(tasks))
	}
	created := tasks[0]
	if created.Title != "Location Scouting" || !created.IsScheduled {
		t.Errorf("unexpected created task %+v", created)
	}
	if created.Status != model.StatusPending || created.Area != "General" {
		t.Errorf("created task must use defaults, got %+v", created)
	}

	// The event was tagged on creation, so a second run resolves it
	// instead of creating another task.
	again := engine.SyncFromCalendar(ctx, timeMin, timeMax)
	if again.Created != 0 || again.TasksFound != 1 {
		t.Errorf("second inbound run must not duplicate the task, got %+v", again)
	}
}

// engineEventID finds the single event id present in the fake for a
// synced task.
func engineEventID(t *testing.T, taskID string, fake *fakeCalendar) string {
	t.Helper()
	for id, event := range fake.events {
		if taggedTaskID(event) == taskID {
			return id
		}
	}
	t.Fatalf("no event found for task %s", taskID)
	return ""
}
