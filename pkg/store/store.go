package store

import (
	"context"

	"github.com/aimanagement-dev/archipielago-production-sub001/pkg/model"
)

// TaskStore is the application's task persistence, consumed as a
// collaborator. Implementations must key tasks by their stable ID and
// provide at least last-write-wins semantics per id; the sync engine
// does no locking of its own.
type TaskStore interface {
	List(ctx context.Context) ([]model.Task, error)
	Get(ctx context.Context, id string) (*model.Task, error)
	Upsert(ctx context.Context, task *model.Task) error
}
