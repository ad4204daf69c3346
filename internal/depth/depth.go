// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package depth orchestrates multi-draft text generation. A depth level 1-4
// controls how many candidate drafts are produced, whether a pairwise referee
// round eliminates half of them, and whether a polish pass merges the
// survivors into one result. Drafts are cached per run so interrupted runs
// can resume without regenerating.
package depth

import (
	"errors"
	"fmt"
)

// MinDepth and MaxDepth bound the valid depth range.
const (
	MinDepth = 1
	MaxDepth = 4
)

// ErrInvalidDepth reports a depth outside the 1-4 range.
var ErrInvalidDepth = errors.New("invalid depth")

// Validate returns an ErrInvalidDepth-wrapped error unless depth is 1-4.
func Validate(depth int) error {
	if depth < MinDepth || depth > MaxDepth {
		return fmt.Errorf("%w: depth must be 1, 2, 3, or 4; got %d", ErrInvalidDepth, depth)
	}
	return nil
}

// DraftCount returns the number of drafts generated at a depth. One draft
// per depth level.
func DraftCount(depth int) int {
	return depth
}

// NeedsReferee reports whether a depth runs the pairwise referee round.
// Only depth 4 does.
func NeedsReferee(depth int) bool {
	return depth == MaxDepth
}

// NeedsPolish reports whether a depth runs the polish merge pass.
// Depth 2 and above do.
func NeedsPolish(depth int) bool {
	return depth >= 2
}
