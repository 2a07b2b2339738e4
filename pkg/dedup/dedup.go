package dedup

import (
	"strings"

	"github.com/aimanagement-dev/archipielago-production-sub001/pkg/model"
)

// Key builds the content fingerprint used to decide that two task-like
// records are the same task: normalized title + period + category.
// The key is intentionally coarse; two genuinely distinct tasks with
// identical title, month and area collapse into one.
func Key(title, month, area string) string {
	return strings.ToLower(strings.TrimSpace(title)) + "-" + month + "-" + strings.ToLower(strings.TrimSpace(area))
}

// Index maps dedup keys to the task that claimed them. It is built
// from the existing store at the start of an import run and updated as
// candidates are accepted, so two identical rows in the same incoming
// batch are not both inserted.
type Index struct {
	tasks map[string]model.Task
}

// Build indexes the existing tasks by their dedup key.
func Build(existing []model.Task) *Index {
	idx := &Index{tasks: make(map[string]model.Task, len(existing))}
	for _, t := range existing {
		idx.tasks[Key(t.Title, t.Month, t.Area)] = t
	}
	return idx
}

// Has reports whether a task with this key is already known.
func (idx *Index) Has(key string) bool {
	_, ok := idx.tasks[key]
	return ok
}

// Get returns the task that claimed the key, if any.
func (idx *Index) Get(key string) (model.Task, bool) {
	t, ok := idx.tasks[key]
	return t, ok
}

// Add records a newly accepted task under its key.
func (idx *Index) Add(key string, t model.Task) {
	idx.tasks[key] = t
}
