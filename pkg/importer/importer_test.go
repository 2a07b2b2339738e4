package importer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/aimanagement-dev/archipielago-production-sub001/pkg/model"
	"github.com/aimanagement-dev/archipielago-production-sub001/pkg/store"
)

// flakyStore fails Upsert for selected titles.
type flakyStore struct {
	*store.MemoryStore
	failTitles map[string]bool
}

func (s *flakyStore) Upsert(ctx context.Context, task *model.Task) error {
	if s.failTitles[task.Title] {
		return fmt.Errorf("simulated persistence failure")
	}
	return s.MemoryStore.Upsert(ctx, task)
}

func TestImportSkipsExistingTask(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	s.Upsert(ctx, &model.Task{ID: "t1", Title: "Review Script", Month: "Ene", Area: "Guión"})

	r := NewReconciler(s, Defaults{})
	result, err := r.ImportBatch(ctx, []model.Candidate{
		{Title: "  REVIEW SCRIPT ", Month: "Ene", Area: "guión"},
		{Title: "Storyboard", Month: "Ene", Area: "Arte"},
	})
	if err != nil {
		t.Fatalf("ImportBatch failed: %v", err)
	}

	if result.Skipped != 1 {
		t.Errorf("expected 1 skipped, got %d", result.Skipped)
	}
	if len(result.Created) != 1 || result.Created[0].Title != "Storyboard" {
		t.Errorf("expected only Storyboard created, got %+v", result.Created)
	}
	if len(result.Errors) != 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
}

func TestImportCollapsesDuplicateRowsInOneBatch(t *testing.T) {
	ctx := context.Background()
	r := NewReconciler(store.NewMemoryStore(), Defaults{})

	result, err := r.ImportBatch(ctx, []model.Candidate{
		{Title: "Casting", Month: "Feb", Area: "Producción"},
		{Title: "casting ", Month: "Feb", Area: "PRODUCCIÓN"},
	})
	if err != nil {
		t.Fatalf("ImportBatch failed: %v", err)
	}
	if len(result.Created) != 1 {
		t.Errorf("expected 1 created, got %d", len(result.Created))
	}
	if result.Skipped != 1 {
		t.Errorf("expected 1 skipped, got %d", result.Skipped)
	}
}

func TestImportAppliesDefaults(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	r := NewReconciler(s, Defaults{Area: "General", Week: "W1"})

	result, err := r.ImportBatch(ctx, []model.Candidate{{Title: "Dailies", Month: "Mar"}})
	if err != nil {
		t.Fatalf("ImportBatch failed: %v", err)
	}
	if len(result.Created) != 1 {
		t.Fatalf("expected 1 created, got %d", len(result.Created))
	}

	task := result.Created[0]
	if task.ID == "" {
		t.Error("expected a generated id")
	}
	if task.Status != model.StatusPending {
		t.Errorf("expected default status %q, got %q", model.StatusPending, task.Status)
	}
	if task.Area != "General" || task.Week != "W1" {
		t.Errorf("expected default area/week, got %q/%q", task.Area, task.Week)
	}
	if task.Visibility != "all" {
		t.Errorf("expected visibility 'all', got %q", task.Visibility)
	}
	if task.Responsible == nil || len(task.Responsible) != 0 {
		t.Errorf("expected empty responsible list, got %v", task.Responsible)
	}

	persisted, err := s.Get(ctx, task.ID)
	if err != nil || persisted == nil {
		t.Fatalf("created task not persisted: %v", err)
	}
}

func TestImportContinuesPastPersistenceFailure(t *testing.T) {
	ctx := context.Background()
	s := &flakyStore{
		MemoryStore: store.NewMemoryStore(),
		failTitles:  map[string]bool{"Broken": true},
	}
	r := NewReconciler(s, Defaults{})

	result, err := r.ImportBatch(ctx, []model.Candidate{
		{Title: "First", Month: "Ene", Area: "Guión"},
		{Title: "Broken", Month: "Ene", Area: "Arte"},
		{Title: "Third", Month: "Ene", Area: "Sonido"},
	})
	if err != nil {
		t.Fatalf("ImportBatch failed: %v", err)
	}

	if len(result.Created) != 2 {
		t.Errorf("expected 2 created, got %d", len(result.Created))
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0], "Broken") {
		t.Errorf("expected error to name the candidate, got %q", result.Errors[0])
	}
	if result.Created[len(result.Created)-1].Title != "Third" {
		t.Errorf("expected processing to continue past the failure, got %+v", result.Created)
	}
}

func TestParseCSV(t *testing.T) {
	input := `Title,Month,Area,Week,Status,Date,Time,Responsible
Review Script,Ene,Guión,W1,Pending,2026-01-12,10:00,ana@studio.example;luis@studio.example
Storyboard,Ene,Arte,,,,,
,Ene,Arte,,,,,
`
	candidates, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}

	first := candidates[0]
	if first.Title != "Review Script" || first.Month != "Ene" || first.Area != "Guión" {
		t.Errorf("unexpected first candidate: %+v", first)
	}
	if first.ScheduledDate != "2026-01-12" || first.ScheduledTime != "10:00" {
		t.Errorf("unexpected schedule fields: %+v", first)
	}
	if len(first.Responsible) != 2 || first.Responsible[1] != "luis@studio.example" {
		t.Errorf("unexpected responsible list: %v", first.Responsible)
	}

	if candidates[1].Title != "Storyboard" || candidates[1].Status != "" {
		t.Errorf("unexpected second candidate: %+v", candidates[1])
	}
}

func TestParseCSVRequiresTitleColumn(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("Month,Area\nEne,Guión\n"))
	if err == nil {
		t.Fatal("expected an error for a header without a title column")
	}
}
