// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package draftcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Entry is one persisted draft record. Only the draft text is authoritative
// on load; the remaining fields are diagnostics.
type Entry struct {
	Draft       string    `json:"draft"`
	Target      int       `json:"target,omitempty"`
	Model       string    `json:"model,omitempty"`
	GeneratedAt time.Time `json:"generated_at,omitempty"`
}

// Store is a directory of fingerprint-keyed draft files, one per
// (item, context) pair. Construct one per run and pass it by reference.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. The directory is created lazily on
// first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the cache file for one item under one context fingerprint.
func (s *Store) Path(itemID, fingerprint string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.json", Slug(itemID), fingerprint))
}

// Load reads a cached entry. Loads are opportunistic: a missing file,
// unreadable JSON, or an empty draft all count as a miss, never an error.
func (s *Store) Load(itemID, fingerprint string) (Entry, bool) {
	data, err := os.ReadFile(s.Path(itemID, fingerprint))
	if err != nil {
		return Entry{}, false
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, false
	}
	if strings.TrimSpace(e.Draft) == "" {
		return Entry{}, false
	}
	return e, true
}

// Save persists an entry, creating the store directory if needed.
func (s *Store) Save(itemID, fingerprint string, e Entry) error {
	if e.GeneratedAt.IsZero() {
		e.GeneratedAt = time.Now().UTC()
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory %s: %w", s.dir, err)
	}
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	path := s.Path(itemID, fingerprint)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing cache entry %s: %w", path, err)
	}
	return nil
}
