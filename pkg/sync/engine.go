package sync

import (
	"context"
	"errors"
	"time"

	cal "github.com/aimanagement-dev/archipielago-production-sub001/pkg/calendar"
	"github.com/aimanagement-dev/archipielago-production-sub001/pkg/colors"
	"github.com/aimanagement-dev/archipielago-production-sub001/pkg/identity"
	"github.com/aimanagement-dev/archipielago-production-sub001/pkg/store"
	"google.golang.org/api/calendar/v3"
)

// ErrInvalidResponse rejects RSVP values outside
// accepted/declined/tentative before any mutation happens.
var ErrInvalidResponse = errors.New("sync: invalid response value")

// Options tune an Engine. Zero values fall back to the documented
// defaults.
type Options struct {
	// EventDuration is the length of created events when the task has
	// no explicit end. Defaults to one hour.
	EventDuration time.Duration

	// Workers bounds per-item parallelism in outbound batches.
	// Defaults to 4.
	Workers int

	// CreateUnmatched makes inbound sync create a minimal task for a
	// remote event it cannot resolve. Default is to skip such events.
	CreateUnmatched bool

	// DefaultArea is given to tasks created by inbound sync.
	DefaultArea string

	// IDs caches remote event ids for tasks whose events predate the
	// hash derivation. Optional.
	IDs *identity.IDMap

	// Colors assigns per-area event colors. Optional.
	Colors *colors.ColorCache
}

// Engine keeps tasks and their remote calendar events consistent in
// both directions.
type Engine struct {
	store store.TaskStore
	cal   cal.Service
	opts  Options
}

func New(s store.TaskStore, c cal.Service, opts Options) *Engine {
	if opts.EventDuration <= 0 {
		opts.EventDuration = time.Hour
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.DefaultArea == "" {
		opts.DefaultArea = "General"
	}
	return &Engine{store: s, cal: c, opts: opts}
}

// resolveEvent locates the remote event for a task id, if one exists.
// Lookup order: hash-derived id, cached legacy id, legacy
// stripped-prefix id, extended-property search. A legacy hit is
// cached in the id map so it is resolved once, never recomputed.
// Returns the id to create under when no event exists.
func (e *Engine) resolveEvent(ctx context.Context, taskID string) (string, *calendar.Event, error) {
	hashID := identity.EventID(taskID)

	event, err := e.cal.GetEvent(ctx, hashID)
	if err == nil {
		return hashID, event, nil
	}
	if !errors.Is(err, cal.ErrNotFound) {
		return "", nil, err
	}

	if e.opts.IDs != nil {
		if cached := e.opts.IDs.Get(taskID); cached != "" {
			event, err = e.cal.GetEvent(ctx, cached)
			if err == nil {
				return cached, event, nil
			}
			if !errors.Is(err, cal.ErrNotFound) {
				return "", nil, err
			}
			e.opts.IDs.Remove(taskID)
		}
	}

	if legacyID := identity.LegacyEventID(taskID); legacyID != "" && legacyID != hashID {
		event, err = e.cal.GetEvent(ctx, legacyID)
		if err == nil {
			// The legacy derivation is lossy: an event at this id may
			// belong to a different task. Trust it only when its tag
			// agrees or it predates tagging.
			if tag := taggedTaskID(event); tag == "" || tag == taskID {
				if e.opts.IDs != nil {
					e.opts.IDs.Set(taskID, legacyID)
				}
				return legacyID, event, nil
			}
		} else if !errors.Is(err, cal.ErrNotFound) {
			return "", nil, err
		}
	}

	event, err = e.cal.FindByTaskID(ctx, taskID)
	if err == nil {
		if e.opts.IDs != nil {
			e.opts.IDs.Set(taskID, event.Id)
		}
		return event.Id, event, nil
	}
	if !errors.Is(err, cal.ErrNotFound) {
		return "", nil, err
	}

	return hashID, nil, nil
}

// taggedTaskID reads the originating task id off an event's private
// extended properties.
func taggedTaskID(event *calendar.Event) string {
	if event == nil || event.ExtendedProperties == nil || event.ExtendedProperties.Private == nil {
		return ""
	}
	return event.ExtendedProperties.Private[cal.TaskIDProperty]
}

func (e *Engine) colorFor(area string) string {
	if e.opts.Colors == nil {
		return ""
	}
	return e.opts.Colors.GetColorID(area)
}
