package store

import (
	"context"
	"testing"

	"github.com/aimanagement-dev/archipielago-production-sub001/pkg/model"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	task := model.Task{ID: "t1", Title: "Review Script"}
	if err := s.Upsert(ctx, &task); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := s.Get(ctx, "t1")
	if err != nil || got == nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "Review Script" {
		t.Errorf("unexpected task %+v", got)
	}

	// Returned value is a copy; mutating it must not touch the store.
	got.Title = "mutated"
	again, _ := s.Get(ctx, "t1")
	if again.Title != "Review Script" {
		t.Error("store exposed internal state")
	}

	missing, err := s.Get(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("expected nil for missing id, got %v, %v", missing, err)
	}
}

func TestMemoryStorePreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for _, id := range []string{"c", "a", "b"} {
		s.Upsert(ctx, &model.Task{ID: id})
	}
	s.Upsert(ctx, &model.Task{ID: "a", Title: "updated"})

	tasks, _ := s.List(ctx)
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	if tasks[0].ID != "c" || tasks[1].ID != "a" || tasks[2].ID != "b" {
		t.Errorf("unexpected order: %v", tasks)
	}
	if tasks[1].Title != "updated" {
		t.Errorf("upsert of existing id must replace, got %+v", tasks[1])
	}
}

func TestFileStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	if err := s.Upsert(ctx, &model.Task{ID: "t1", Title: "Review Script", Month: "Ene"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	reopened, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	got, err := reopened.Get(ctx, "t1")
	if err != nil || got == nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if got.Title != "Review Script" || got.Month != "Ene" {
		t.Errorf("unexpected reloaded task %+v", got)
	}
}
