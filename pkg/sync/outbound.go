package sync

import (
	"context"
	"errors"
	"log"
	"sync"

	cal "github.com/aimanagement-dev/archipielago-production-sub001/pkg/calendar"
	"github.com/aimanagement-dev/archipielago-production-sub001/pkg/model"
)

// SyncToCalendar pushes schedulable tasks to the remote calendar. The
// caller filters: every input task is assumed to have isScheduled set
// and a scheduled date. Per-task failures are collected, never
// raised; an empty batch is a no-op with all-zero counts.
//
// Items are fanned out over a bounded worker pool. Duplicate task ids
// in one batch are collapsed last-write-wins before fan-out, so no
// two workers ever act on the same derived event id. Cancelling ctx
// stops new remote calls; in-flight items settle and their outcomes
// are included in the partial result.
func (e *Engine) SyncToCalendar(ctx context.Context, tasks []model.Task) model.SyncResult {
	tasks = collapseByID(tasks)
	if len(tasks) == 0 {
		return model.SyncResult{}
	}

	workers := e.opts.Workers
	if workers > len(tasks) {
		workers = len(tasks)
	}

	jobs := make(chan model.Task)
	results := make(chan model.SyncResult, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range jobs {
				results <- e.syncOne(ctx, &task)
			}
		}()
	}

feed:
	for _, task := range tasks {
		select {
		case jobs <- task:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	var result model.SyncResult
	for r := range results {
		result.Merge(r)
	}

	if e.opts.IDs != nil {
		if err := e.opts.IDs.Save(); err != nil {
			log.Printf("Warning: failed to save event id map: %v", err)
		}
	}
	if e.opts.Colors != nil {
		if err := e.opts.Colors.Save(); err != nil {
			log.Printf("Warning: failed to save area color cache: %v", err)
		}
	}

	return result
}

// syncOne upserts a single task's event and reports its outcome as a
// one-item result.
func (e *Engine) syncOne(ctx context.Context, task *model.Task) model.SyncResult {
	itemErr := func(err error) model.SyncResult {
		return model.SyncResult{Errors: []model.ItemError{{ID: task.ID, Message: err.Error()}}}
	}

	if ctx.Err() != nil {
		return model.SyncResult{}
	}

	start, err := task.StartTime()
	if err != nil {
		return itemErr(err)
	}

	eventID, existing, err := e.resolveEvent(ctx, task.ID)
	if err != nil {
		return itemErr(err)
	}

	target := buildEvent(task, start, e.opts.EventDuration, e.colorFor(task.Area))

	if existing == nil {
		target.Id = eventID
		if _, err := e.cal.CreateEvent(ctx, target); err != nil {
			return itemErr(err)
		}
		return model.SyncResult{Created: 1}
	}

	patch, err := diff(existing, target)
	if err != nil {
		return itemErr(err)
	}
	if patch == nil {
		return model.SyncResult{Skipped: 1}
	}
	if _, err := e.cal.PatchEvent(ctx, eventID, patch); err != nil {
		return itemErr(err)
	}
	return model.SyncResult{Updated: 1}
}

// DeleteIfExists removes the remote event for a task that is no
// longer schedulable. An already absent event is not an error; the
// call reports whether anything was actually deleted.
func (e *Engine) DeleteIfExists(ctx context.Context, taskID string) (bool, error) {
	eventID, existing, err := e.resolveEvent(ctx, taskID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}

	if err := e.cal.DeleteEvent(ctx, eventID); err != nil {
		if errors.Is(err, cal.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if e.opts.IDs != nil {
		e.opts.IDs.Remove(taskID)
		if err := e.opts.IDs.Save(); err != nil {
			log.Printf("Warning: failed to save event id map: %v", err)
		}
	}
	return true, nil
}

// collapseByID keeps the last occurrence of each task id, preserving
// first-seen order. Duplicates within one batch are unexpected but
// must not race on one event id.
func collapseByID(tasks []model.Task) []model.Task {
	if len(tasks) < 2 {
		return tasks
	}
	byID := make(map[string]model.Task, len(tasks))
	var order []string
	for _, t := range tasks {
		if _, seen := byID[t.ID]; !seen {
			order = append(order, t.ID)
		}
		byID[t.ID] = t
	}
	out := make([]model.Task, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return out
}
