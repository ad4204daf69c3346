// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package stage provides the capability implementations shared by the
// content generation stages: referee and polish prompts for multi-draft
// runs, and the word-band guardrail applied to length-targeted output.
package stage

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/vosslab/content-engine/internal/depth"
	"github.com/vosslab/content-engine/internal/llm"
	"github.com/vosslab/content-engine/internal/prompt"
	"github.com/vosslab/content-engine/internal/textutil"
)

// swapPresentation decides whether a referee comparison shows the second
// draft first. Overridden in tests for deterministic prompts.
var swapPresentation = func() bool { return rand.Intn(2) == 1 }

// Referee builds a referee capability for one document kind. Presentation
// order is randomized per comparison so the parser's fixed default-to-second
// tie-break cannot systematically favor one generation slot; the labels
// travel with their drafts, so the verdict stays positionally correct.
func Referee(client llm.Client, documentName string, maxTokens int) depth.RefereeFunc {
	return func(ctx context.Context, draftA, draftB, labelA, labelB string) (string, error) {
		if swapPresentation() {
			draftA, draftB = draftB, draftA
			labelA, labelB = labelB, labelA
		}
		rendered, err := prompt.Render("depth_referee.tmpl", map[string]any{
			"DocumentName": documentName,
			"LabelA":       labelA,
			"LabelB":       labelB,
			"DraftA":       draftA,
			"DraftB":       draftB,
		})
		if err != nil {
			return "", fmt.Errorf("render referee prompt: %w", err)
		}
		return client.Generate(ctx, llm.Request{
			Prompt:    rendered,
			Purpose:   documentName + " referee",
			MaxTokens: maxTokens,
		})
	}
}

// Polish builds a polish capability that merges drafts into one document of
// about target units.
func Polish(client llm.Client, documentName, unit string, target, maxTokens int) depth.PolishFunc {
	return func(ctx context.Context, drafts []string, _ int) (string, error) {
		parts := make([]string, 0, len(drafts))
		for i, draft := range drafts {
			parts = append(parts, fmt.Sprintf("Draft %d:\n%s", i+1, draft))
		}
		rendered, err := prompt.Render("depth_polish.tmpl", map[string]any{
			"DraftCount":   len(drafts),
			"DocumentName": documentName,
			"Target":       target,
			"Unit":         unit,
			"DraftsBlock":  strings.Join(parts, "\n\n"),
		})
		if err != nil {
			return "", fmt.Errorf("render polish prompt: %w", err)
		}
		polished, err := client.Generate(ctx, llm.Request{
			Prompt:    rendered,
			Purpose:   documentName + " polish",
			MaxTokens: maxTokens,
		})
		if err != nil {
			return "", err
		}
		return textutil.StripXMLWrapper(strings.TrimSpace(polished)), nil
	}
}

// InWordBand reports whether text lands inside the 0.5x..2x band around
// target.
func InWordBand(text string, target int) bool {
	words := textutil.CountWords(text)
	lower := target / 2
	if lower < 1 {
		lower = 1
	}
	return words >= lower && words <= target*2
}

// EnforceWordBand retries a generation once when its word count falls
// outside the band. The retry prepends the miss to the original prompt; its
// result is returned regardless of whether it lands in the band.
func EnforceWordBand(ctx context.Context, client llm.Client, text, originalPrompt, purpose string, target, maxTokens int, logf func(string, ...any)) (string, error) {
	if InWordBand(text, target) {
		return text, nil
	}
	words := textutil.CountWords(text)
	if logf != nil {
		logf("%s target miss; retrying once (words=%d, target=%d)", purpose, words, target)
	}
	retryPrompt := fmt.Sprintf("Your previous attempt was %d words. Rewrite to about %d words.\n\n%s", words, target, originalPrompt)
	retried, err := client.Generate(ctx, llm.Request{
		Prompt:    retryPrompt,
		Purpose:   purpose + " retry",
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", err
	}
	return textutil.StripXMLWrapper(strings.TrimSpace(retried)), nil
}
