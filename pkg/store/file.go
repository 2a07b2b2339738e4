package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/aimanagement-dev/archipielago-production-sub001/pkg/model"
)

// FileStore is a TaskStore backed by a JSON file, used when the tool
// runs standalone instead of against the dashboard's store. Every
// upsert is flushed to disk.
type FileStore struct {
	mu    sync.Mutex
	path  string
	tasks map[string]model.Task
	order []string
}

// NewFileStore opens tasks.json in the given directory, starting
// empty when no file exists yet.
func NewFileStore(configDir string) (*FileStore, error) {
	s := &FileStore{
		path:  filepath.Join(configDir, "tasks.json"),
		tasks: make(map[string]model.Task),
	}

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	defer f.Close()

	var loaded []model.Task
	if err := json.NewDecoder(f).Decode(&loaded); err != nil {
		return nil, err
	}
	for _, t := range loaded {
		s.tasks[t.ID] = t
		s.order = append(s.order, t.ID)
	}
	return s, nil
}

func (s *FileStore) List(ctx context.Context) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.tasks[id])
	}
	return out, nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *FileStore) Upsert(ctx context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tasks[task.ID]; !exists {
		s.order = append(s.order, task.ID)
	}
	s.tasks[task.ID] = *task
	return s.flush()
}

// flush writes the full task list; callers hold the lock.
func (s *FileStore) flush() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}

	f, err := os.Create(s.path)
	if err != nil {
		return err
	}
	defer f.Close()

	out := make([]model.Task, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.tasks[id])
	}
	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
