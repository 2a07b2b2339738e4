package colors

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// AreaState tracks the color claimed by a production area and when it
// was last used, for LRU recycling.
type AreaState struct {
	ColorID      string    `json:"color_id"`
	LastModified time.Time `json:"last_modified"`
}

// ColorCache assigns each task area a stable Google Calendar color so
// events from the same area look alike. Assignments persist across
// runs.
type ColorCache struct {
	Path  string
	Areas map[string]*AreaState `json:"areas"`

	mu    sync.Mutex
	dirty bool
}

const cacheFile = "area_colors.json"

// NewColorCache loads the cache from the given config directory,
// starting empty when no file exists.
func NewColorCache(configDir string) (*ColorCache, error) {
	path := filepath.Join(configDir, cacheFile)

	cache := &ColorCache{
		Path:  path,
		Areas: make(map[string]*AreaState),
	}

	if _, err := os.Stat(path); err == nil {
		if err := cache.Load(); err != nil {
			return nil, err
		}
	}
	return cache, nil
}

func (c *ColorCache) Load() error {
	f, err := os.Open(c.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(&c.Areas)
}

func (c *ColorCache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.Path), 0700); err != nil {
		log.Printf("Error creating color cache directory: %v", err)
		return err
	}

	f, err := os.Create(c.Path)
	if err != nil {
		log.Printf("Error creating color cache file: %v", err)
		return err
	}
	defer f.Close()
	err = json.NewEncoder(f).Encode(c.Areas)
	if err == nil {
		c.dirty = false
	}
	return err
}

// GetColorID returns the color ID for an area, assigning one when the
// area is new.
func (c *ColorCache) GetColorID(area string) string {
	if area == "" {
		return "14" // Gray for uncategorized tasks
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	state, exists := c.Areas[area]
	if exists {
		state.LastModified = time.Now()
		c.dirty = true
		return state.ColorID
	}

	return c.assignColor(area)
}

func (c *ColorCache) assignColor(area string) string {
	// Google Calendar event colors 1 to 11
	used := make(map[string]bool)
	for _, s := range c.Areas {
		used[s.ColorID] = true
	}

	for i := 1; i <= 11; i++ {
		id := strconv.Itoa(i)
		if !used[id] {
			c.Areas[area] = &AreaState{
				ColorID:      id,
				LastModified: time.Now(),
			}
			c.dirty = true
			return id
		}
	}

	// All colors taken: recycle the least recently used area's color.
	var oldestArea string
	var oldestTime time.Time
	first := true

	for a, s := range c.Areas {
		if first || s.LastModified.Before(oldestTime) {
			oldestTime = s.LastModified
			oldestArea = a
			first = false
		}
	}

	if oldestArea != "" {
		recycled := c.Areas[oldestArea].ColorID
		delete(c.Areas, oldestArea)

		c.Areas[area] = &AreaState{
			ColorID:      recycled,
			LastModified: time.Now(),
		}
		c.dirty = true
		return recycled
	}

	return "1"
}
