// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package depth

import (
	"fmt"
	"regexp"
	"strings"
)

// Bracket is one pair of drafts compared in a single elimination round.
type Bracket struct {
	A string
	B string
}

// BuildBrackets pairs adjacent drafts: (0,1), (2,3), and so on, preserving
// generation order. A trailing unpaired draft is dropped; at the only depth
// that runs brackets the draft count is always even.
func BuildBrackets(drafts []string) []Bracket {
	var brackets []Bracket
	for i := 0; i+1 < len(drafts); i += 2 {
		brackets = append(brackets, Bracket{A: drafts[i], B: drafts[i+1]})
	}
	return brackets
}

// winnerRe matches a <winner>...</winner> marker, case-insensitively, with
// the content captured lazily so surrounding prose does not leak in.
var winnerRe = regexp.MustCompile(`(?is)<winner>\s*(.*?)\s*</winner>`)

// ParseWinner extracts the winning label from raw referee output. The marker
// content is compared case-insensitively against both labels. When the marker
// is missing or matches neither label the second label wins and a diagnostic
// describing the miss is returned; callers randomize the physical draft
// behind each label so the fixed tie-break does not bias the outcome.
// ParseWinner always resolves; it never fails.
func ParseWinner(raw, labelA, labelB string) (winner, diag string) {
	m := winnerRe.FindStringSubmatch(raw)
	if m == nil {
		return labelB, fmt.Sprintf("no <winner> marker in referee output; defaulting to %s", labelB)
	}
	content := strings.ToLower(strings.TrimSpace(m[1]))
	if content == strings.ToLower(strings.TrimSpace(labelA)) {
		return labelA, ""
	}
	if content == strings.ToLower(strings.TrimSpace(labelB)) {
		return labelB, ""
	}
	return labelB, fmt.Sprintf("<winner> content %q matches neither %q nor %q; defaulting to %s",
		strings.TrimSpace(m[1]), labelA, labelB, labelB)
}
