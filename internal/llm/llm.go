// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm is the boundary to the text-generation backend. The engine and
// the stages only see the Client interface; concrete backends live here so
// tests can substitute a scripted client.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vosslab/content-engine/pkg/types"
)

// ErrEmptyCompletion reports a backend that answered successfully but with
// no usable text.
var ErrEmptyCompletion = errors.New("backend returned empty completion")

// Request is one generation call.
type Request struct {
	// Prompt is the full rendered prompt.
	Prompt string

	// Purpose is a short human label for progress logging ("blog polish").
	Purpose string

	// MaxTokens caps the generated length. Zero means the backend default.
	MaxTokens int
}

// Client generates text for one request. Implementations handle transport,
// authentication, and transport-level retries; they do not interpret the
// output.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// New builds a Client from configuration.
func New(cfg types.LLMConfig) (Client, error) {
	switch cfg.Provider {
	case types.ProviderOpenAI:
		return NewOpenAIClient(cfg)
	case types.ProviderOllama:
		return NewOllamaClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

// PayloadIssue sniffs generated text for the failure shapes backends leak
// into otherwise-successful responses. It returns "" for usable text and a
// short issue description otherwise. Stages use it both as the orchestrator
// quality predicate and to decide an in-stage regeneration.
func PayloadIssue(text string) string {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return "empty output"
	}
	lower := strings.ToLower(clean)
	if strings.Contains(lower, "error_code") || strings.Contains(lower, "generationerror") {
		return "llm returned error payload"
	}
	if strings.HasPrefix(clean, "{") && strings.HasSuffix(clean, "}") {
		return "llm returned structured error/object text"
	}
	return ""
}

// IsContextWindowError reports whether an error looks like a model
// context-window overflow, across backends that phrase it differently.
func IsContextWindowError(err error) bool {
	if err == nil {
		return false
	}
	text := strings.ToLower(err.Error())
	return strings.Contains(text, "context window") ||
		strings.Contains(text, "context length") ||
		strings.Contains(text, "maximum context")
}

// GenerateChecked generates once and, when the output trips PayloadIssue,
// retries a single time with a corrective preamble before giving up. The
// second output is returned regardless; callers gate it again downstream.
func GenerateChecked(ctx context.Context, c Client, req Request, logf func(string, ...any)) (string, error) {
	text, err := c.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	issue := PayloadIssue(text)
	if issue == "" {
		return text, nil
	}
	if logf != nil {
		logf("%s output unusable (%s); retrying once", req.Purpose, issue)
	}
	retry := req
	retry.Prompt = "Your previous answer was unusable (" + issue + "). " +
		"Answer again, following the format exactly.\n\n" + req.Prompt
	retry.Purpose = req.Purpose + " retry"
	return c.Generate(ctx, retry)
}
