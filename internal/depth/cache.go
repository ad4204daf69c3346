// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package depth

import (
	"fmt"
	"os"
	"path/filepath"
)

// cachePath builds the file path for one cached draft. The key is purely
// positional (prefix, depth, index); callers that share a prefix across
// differing contexts own the resulting collisions.
func cachePath(dir, prefix string, depth, index int) string {
	return filepath.Join(dir, fmt.Sprintf("%s_d%d_i%d.txt", prefix, depth, index))
}

// loadCachedDraft reads a cached draft from disk. A missing or unreadable
// file, or an empty one, counts as a cache miss.
func loadCachedDraft(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return "", false
	}
	return string(data), true
}

// saveDraft writes a draft to its cache file verbatim, creating parent
// directories as needed. Existing contents are overwritten.
func saveDraft(path, text string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating cache directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing draft cache %s: %w", path, err)
	}
	return nil
}
