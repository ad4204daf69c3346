// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package draftcache persists per-item drafts keyed by a content digest of
// the generation context. Changing any semantic input (stage, window, target,
// backend options) changes the digest, so stale drafts are never reused;
// orphaned cache files from old contexts are expected growth, not a defect.
package draftcache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// RunContext captures the semantic inputs of one generation run. Two runs
// with equal contexts may share cached drafts.
type RunContext struct {
	// Stage names the pipeline stage (outline, blog, social, podcast).
	Stage string

	// User and the window bounds identify the activity scope.
	User        string
	WindowStart string
	WindowEnd   string

	// Target is the numeric length target (words or characters).
	Target int

	// Totals are the aggregate activity counts for the window.
	Totals map[string]int

	// Extra holds open-ended stage options that affect output (model name,
	// speaker count, depth).
	Extra map[string]any
}

// Fingerprint digests a run context into a 16-character key. The context is
// serialized as a JSON object; Go marshals map keys in sorted order, so the
// digest is independent of insertion order and stable across runs.
func Fingerprint(rc RunContext) string {
	payload := map[string]any{
		"stage":        rc.Stage,
		"user":         rc.User,
		"window_start": rc.WindowStart,
		"window_end":   rc.WindowEnd,
		"target":       rc.Target,
		"totals":       rc.Totals,
		"extra":        rc.Extra,
	}
	if rc.Totals == nil {
		payload["totals"] = map[string]int{}
	}
	if rc.Extra == nil {
		payload["extra"] = map[string]any{}
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		// Only unmarshalable Extra values (channels, funcs) can land here;
		// fall back to the printed form rather than failing the run.
		encoded = []byte(fmt.Sprintf("%+v", payload))
	}
	sum := sha256.Sum256(encoded)
	return fmt.Sprintf("%x", sum)[:16]
}

// slugRe matches runs of characters that are not filesystem-safe.
var slugRe = regexp.MustCompile(`[^a-z0-9._-]+`)

// Slug normalizes an item identifier into one path-safe fragment: lowercase,
// path separators doubled-underscored, every other unsafe run collapsed to a
// single dash.
func Slug(itemID string) string {
	text := strings.ToLower(strings.TrimSpace(itemID))
	text = strings.ReplaceAll(text, "/", "__")
	text = slugRe.ReplaceAllString(text, "-")
	text = strings.Trim(text, "-")
	if text == "" {
		return "unknown-item"
	}
	return text
}
