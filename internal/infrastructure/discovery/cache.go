package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"RankingsScanner/internal/domain"
	"RankingsScanner/internal/ports"
)

// FileCache persists discovered endpoints as a JSON array of {cat, url} objects.
type FileCache struct {
	path string
}

var _ ports.DiscoveryCache = (*FileCache)(nil)

// NewFileCache binds the cache to a file path.
func NewFileCache(path string) *FileCache {
	return &FileCache{path: path}
}

// Load returns the cached endpoints. A missing, unreadable, empty or partially
// populated artifact reports ok=false so the caller probes again.
func (c *FileCache) Load(_ context.Context) ([]domain.DiscoveredEndpoint, bool, error) {
	raw, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read discovery cache: %w", err)
	}

	var endpoints []domain.DiscoveredEndpoint
	if err := json.Unmarshal(raw, &endpoints); err != nil {
		return nil, false, nil
	}
	if !Complete(endpoints) {
		return nil, false, nil
	}
	return endpoints, true, nil
}

// Save writes the endpoints, replacing any previous artifact.
func (c *FileCache) Save(_ context.Context, endpoints []domain.DiscoveredEndpoint) error {
	if dir := filepath.Dir(c.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}
	if endpoints == nil {
		endpoints = []domain.DiscoveredEndpoint{}
	}
	raw, err := json.MarshalIndent(endpoints, "", "  ")
	if err != nil {
		return fmt.Errorf("encode discovery cache: %w", err)
	}
	if err := os.WriteFile(c.path, raw, 0o644); err != nil {
		return fmt.Errorf("write discovery cache: %w", err)
	}
	return nil
}

// Complete reports whether a cached set is usable: non-empty, and every entry
// has both a category and a URL.
func Complete(endpoints []domain.DiscoveredEndpoint) bool {
	if len(endpoints) == 0 {
		return false
	}
	for _, ep := range endpoints {
		if ep.Category == "" || ep.URL == "" {
			return false
		}
	}
	return true
}
