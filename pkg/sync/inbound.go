package sync

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	cal "github.com/aimanagement-dev/archipielago-production-sub001/pkg/calendar"
	"github.com/aimanagement-dev/archipielago-production-sub001/pkg/identity"
	"github.com/aimanagement-dev/archipielago-production-sub001/pkg/model"
	"github.com/google/uuid"
	"google.golang.org/api/calendar/v3"
)

// SyncFromCalendar pulls remote events in [timeMin, timeMax] back
// into the task store. The remote calendar is the source of truth for
// the fields a user edits there directly: the event start and
// attendee responses. Running it twice against an unchanged calendar
// updates nothing the second time.
//
// Events that resolve to no task are skipped unless the engine was
// configured with CreateUnmatched, in which case a minimal task is
// created for each.
func (e *Engine) SyncFromCalendar(ctx context.Context, timeMin, timeMax time.Time) model.InboundResult {
	var result model.InboundResult

	events, err := e.cal.ListEvents(ctx, timeMin, timeMax)
	if err != nil {
		result.Errors = append(result.Errors, model.ItemError{ID: "list", Message: err.Error()})
		return result
	}

	// One store scan serves every derived-id fallback below.
	known, err := e.store.List(ctx)
	if err != nil {
		result.Errors = append(result.Errors, model.ItemError{ID: "store", Message: err.Error()})
		return result
	}
	byEventID := make(map[string]model.Task, len(known)*2)
	for _, t := range known {
		byEventID[identity.EventID(t.ID)] = t
		if legacy := identity.LegacyEventID(t.ID); legacy != "" {
			byEventID[legacy] = t
		}
	}

	for _, event := range events {
		if ctx.Err() != nil {
			break
		}
		if event.Status == "cancelled" {
			continue
		}

		task, err := e.resolveTask(ctx, event, byEventID)
		if err != nil {
			result.Errors = append(result.Errors, model.ItemError{ID: event.Id, Message: err.Error()})
			continue
		}

		if task == nil {
			if !e.opts.CreateUnmatched {
				continue
			}
			created, err := e.createFromEvent(ctx, event)
			if err != nil {
				result.Errors = append(result.Errors, model.ItemError{ID: event.Id, Message: err.Error()})
				continue
			}
			byEventID[event.Id] = *created
			result.Created++
			continue
		}

		result.TasksFound++

		changed, err := reconcileFromRemote(task, event)
		if err != nil {
			result.Errors = append(result.Errors, model.ItemError{ID: event.Id, Message: err.Error()})
			continue
		}
		if !changed {
			continue
		}
		if err := e.store.Upsert(ctx, task); err != nil {
			result.Errors = append(result.Errors, model.ItemError{ID: event.Id, Message: err.Error()})
			continue
		}
		result.Updated++
	}

	return result
}

// resolveTask maps an event back to its task: the private task_id tag
// first, then a scan for a task whose derived event id matches. The
// forward derivation is lossy, so un-stripping the id is never
// attempted.
func (e *Engine) resolveTask(ctx context.Context, event *calendar.Event, byEventID map[string]model.Task) (*model.Task, error) {
	if tag := taggedTaskID(event); tag != "" {
		task, err := e.store.Get(ctx, tag)
		if err != nil {
			return nil, err
		}
		return task, nil
	}

	if match, ok := byEventID[event.Id]; ok {
		return e.store.Get(ctx, match.ID)
	}
	return nil, nil
}

// createFromEvent materializes a minimal task for a foreign event.
func (e *Engine) createFromEvent(ctx context.Context, event *calendar.Event) (*model.Task, error) {
	start, err := eventTime(event.Start)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", event.Id, err)
	}

	task := &model.Task{
		ID:            uuid.NewString(),
		Title:         event.Summary,
		Area:          e.opts.DefaultArea,
		Month:         start.Format("Jan"),
		Status:        model.StatusPending,
		IsScheduled:   true,
		ScheduledDate: start.In(time.Local).Format("2006-01-02"),
		ScheduledTime: start.In(time.Local).Format("15:04"),
		Visibility:    "all",
	}
	if task.Title == "" {
		task.Title = "(untitled event)"
	}
	if err := e.store.Upsert(ctx, task); err != nil {
		return nil, err
	}

	// Tag the foreign event so the next run resolves it instead of
	// creating another task. Best effort: the task exists either way.
	patch := &calendar.Event{
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{cal.TaskIDProperty: task.ID},
		},
	}
	if _, err := e.cal.PatchEvent(ctx, event.Id, patch); err != nil {
		log.Printf("Warning: failed to tag event %s with task id: %v", event.Id, err)
	}
	return task, nil
}

// reconcileFromRemote writes the remote event's start and attendee
// responses into the task, reporting whether anything changed.
func reconcileFromRemote(task *model.Task, event *calendar.Event) (bool, error) {
	start, err := eventTime(event.Start)
	if err != nil {
		return false, err
	}

	changed := false

	local := start.In(time.Local)
	if date := local.Format("2006-01-02"); task.ScheduledDate != date {
		task.ScheduledDate = date
		changed = true
	}
	if event.Start != nil && event.Start.DateTime != "" {
		if clock := local.Format("15:04"); task.ScheduledTime != clock {
			task.ScheduledTime = clock
			changed = true
		}
	}

	for _, attendee := range event.Attendees {
		status := model.ResponseStatus(attendee.ResponseStatus)
		if !status.Valid() {
			// needsAction and exotic statuses stay unrecorded.
			continue
		}
		if upsertResponse(task, attendee.Email, status) {
			changed = true
		}
	}

	return changed, nil
}

// upsertResponse records one attendee's response: any existing entry
// for the same email (case-insensitive) is removed, then the new one
// appended, so a task never holds two responses for one attendee.
// Reports whether the list changed.
func upsertResponse(task *model.Task, email string, status model.ResponseStatus) bool {
	key := strings.ToLower(email)
	kept := task.AttendeeResponses[:0]
	changed := true
	for _, r := range task.AttendeeResponses {
		if strings.ToLower(r.Email) == key {
			if r.Status == status {
				changed = false
			}
			continue
		}
		kept = append(kept, r)
	}
	task.AttendeeResponses = append(kept, model.AttendeeResponse{Email: email, Status: status})
	return changed
}
