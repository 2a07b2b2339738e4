package identity

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// IDMap is a persisted mapping from task id to the actual remote
// event id, for events that predate the hash derivation. A legacy
// event is resolved once (by its stripped-prefix id or an extended
// property search) and cached here instead of being recomputed.
type IDMap struct {
	Mappings map[string]string `json:"mappings"`
	Path     string            `json:"-"`
	mu       sync.RWMutex
	dirty    bool
}

// NewIDMap loads the map from the application's config directory,
// starting empty when no file exists yet.
func NewIDMap(configDir string) (*IDMap, error) {
	m := &IDMap{
		Mappings: make(map[string]string),
		Path:     filepath.Join(configDir, "event_ids.json"),
	}

	if _, err := os.Stat(m.Path); err == nil {
		if err := m.Load(); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *IDMap) Load() error {
	f, err := os.Open(m.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(&m.Mappings)
}

func (m *IDMap) Save() error {
	m.mu.RLock()
	if !m.dirty {
		m.mu.RUnlock()
		return nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(m.Path), 0700); err != nil {
		return err
	}

	f, err := os.Create(m.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(m.Mappings); err != nil {
		return err
	}
	m.dirty = false
	return nil
}

func (m *IDMap) Get(taskID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Mappings[taskID]
}

func (m *IDMap) Set(taskID, eventID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Mappings[taskID] != eventID {
		m.Mappings[taskID] = eventID
		m.dirty = true
	}
}

func (m *IDMap) Remove(taskID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.Mappings[taskID]; exists {
		delete(m.Mappings, taskID)
		m.dirty = true
	}
}
