package importer

import (
	"context"
	"fmt"

	"github.com/aimanagement-dev/archipielago-production-sub001/pkg/dedup"
	"github.com/aimanagement-dev/archipielago-production-sub001/pkg/model"
	"github.com/aimanagement-dev/archipielago-production-sub001/pkg/store"
	"github.com/google/uuid"
)

// Defaults fill required-but-missing candidate fields.
type Defaults struct {
	Area string
	Week string
}

// Result is the outcome of one import run.
type Result struct {
	Created []model.Task `json:"created"`
	Skipped int          `json:"skipped"`
	Errors  []string     `json:"errors,omitempty"`
}

// Reconciler imports batches of candidate rows against the task
// store without ever creating duplicates.
type Reconciler struct {
	store    store.TaskStore
	defaults Defaults
}

func NewReconciler(s store.TaskStore, d Defaults) *Reconciler {
	if d.Area == "" {
		d.Area = "General"
	}
	if d.Week == "" {
		d.Week = "W1"
	}
	return &Reconciler{store: s, defaults: d}
}

// ImportBatch processes candidates in input order. A candidate whose
// dedup key is already claimed — by an existing task or by an earlier
// row of the same batch — is skipped silently. A persistence failure
// on one candidate is recorded and does not stop the rest.
func (r *Reconciler) ImportBatch(ctx context.Context, candidates []model.Candidate) (Result, error) {
	existing, err := r.store.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("unable to list existing tasks: %w", err)
	}

	idx := dedup.Build(existing)
	var result Result

	for _, c := range candidates {
		if c.Title == "" {
			result.Errors = append(result.Errors, "candidate with empty title rejected")
			continue
		}

		task := r.fill(c)
		key := dedup.Key(task.Title, task.Month, task.Area)
		if idx.Has(key) {
			result.Skipped++
			continue
		}

		if err := r.store.Upsert(ctx, &task); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("could not persist %q: %v", task.Title, err))
			continue
		}

		idx.Add(key, task)
		result.Created = append(result.Created, task)
	}

	return result, nil
}

// fill materializes a candidate into a task, applying documented
// defaults and a freshly generated id.
func (r *Reconciler) fill(c model.Candidate) model.Task {
	task := model.Task{
		ID:            uuid.NewString(),
		Title:         c.Title,
		Area:          c.Area,
		Month:         c.Month,
		Week:          c.Week,
		Status:        c.Status,
		ScheduledDate: c.ScheduledDate,
		ScheduledTime: c.ScheduledTime,
		Responsible:   c.Responsible,
		Visibility:    "all",
		Attachments:   []string{},
	}
	if task.Status == "" {
		task.Status = model.StatusPending
	}
	if task.Area == "" {
		task.Area = r.defaults.Area
	}
	if task.Week == "" {
		task.Week = r.defaults.Week
	}
	if task.Responsible == nil {
		task.Responsible = []string{}
	}
	if task.ScheduledDate != "" {
		task.IsScheduled = true
	}
	return task
}
