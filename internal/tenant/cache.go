package tenant

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"azdo-mcp/pkg/logging"
)

// CacheFileName is the file name of the on-disk tenant cache.
const CacheFileName = "org-tenants.yaml"

// Entry is one cached organization -> tenant mapping. An empty TenantID
// records an organization without a directory tenant.
type Entry struct {
	TenantID    string    `yaml:"tenantId"`
	RefreshedAt time.Time `yaml:"refreshedAt"`
}

// Cache persists tenant lookups in a YAML file. A zero path keeps the cache
// in memory only.
type Cache struct {
	path string

	mu      sync.Mutex
	loaded  bool
	entries map[string]Entry
}

// NewCache returns a cache backed by path.
func NewCache(path string) *Cache {
	return &Cache{path: path, entries: make(map[string]Entry)}
}

// DefaultCachePath returns the cache location under the user config directory.
func DefaultCachePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "azdo-mcp", CacheFileName), nil
}

// Get returns the entry for org, loading the file on first use.
func (c *Cache) Get(org string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadLocked()
	e, ok := c.entries[org]
	return e, ok
}

// Put stores the entry and writes the file. Write failures are logged and
// otherwise ignored.
func (c *Cache) Put(org string, e Entry) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadLocked()
	c.entries[org] = e
	if err := c.saveLocked(); err != nil {
		logging.Warn("Tenant", "Could not write tenant cache %s: %v", c.path, err)
	}
}

func (c *Cache) loadLocked() {
	if c.loaded {
		return
	}
	c.loaded = true
	if c.path == "" {
		return
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.Warn("Tenant", "Could not read tenant cache %s: %v", c.path, err)
		}
		return
	}

	entries := make(map[string]Entry)
	if err := yaml.Unmarshal(data, &entries); err != nil {
		logging.Warn("Tenant", "Ignoring malformed tenant cache %s: %v", c.path, err)
		return
	}
	if entries == nil {
		entries = make(map[string]Entry)
	}
	c.entries = entries
	logging.Debug("Tenant", "Loaded %d cached tenant entries from %s", len(entries), c.path)
}

func (c *Cache) saveLocked() error {
	if c.path == "" {
		return nil
	}
	data, err := yaml.Marshal(c.entries)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return err
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}
