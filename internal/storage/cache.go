package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pfrederiksen/dira-lottery/internal/dira"
)

// LoadCache reads the subscriber cache. A missing file yields an empty cache.
func (s *Storage) LoadCache(name string, ttl time.Duration) (*dira.Cache, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return dira.NewCache(ttl), nil
		}
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	cache := dira.NewCache(ttl)
	if err := json.Unmarshal(data, cache); err != nil {
		return nil, fmt.Errorf("parsing cache: %w", err)
	}
	cache.TTL = ttl
	return cache, nil
}

// SaveCache drops expired entries and writes the cache as indented JSON.
func (s *Storage) SaveCache(name string, cache *dira.Cache) error {
	path := s.Path(name)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	cache.CleanExpired()

	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}

	return nil
}

// LoadPreviousExport reads an export if one exists. It returns nil, nil when
// the file is missing, so a first run reports every lottery as new.
func (s *Storage) LoadPreviousExport(name string) (*Export, error) {
	if _, err := os.Stat(s.Path(name)); os.IsNotExist(err) {
		return nil, nil
	}
	return s.LoadExport(name)
}
