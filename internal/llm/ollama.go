// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vosslab/content-engine/internal/httputil"
	"github.com/vosslab/content-engine/pkg/types"
)

const defaultOllamaBaseURL = "http://localhost:11434"

// OllamaClient generates text through a local Ollama server's chat endpoint.
type OllamaClient struct {
	model   string
	baseURL string
	client  *http.Client
}

// NewOllamaClient builds a client from configuration. BaseURL defaults to
// the standard local server.
func NewOllamaClient(cfg types.LLMConfig) *OllamaClient {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultOllamaBaseURL
	}
	return &OllamaClient{
		model:   cfg.Model,
		baseURL: base,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// ollamaChatRequest is the request body for POST /api/chat.
type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	NumPredict int `json:"num_predict,omitempty"`
}

// ollamaChatResponse is the non-streaming response body from /api/chat.
type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Error   string        `json:"error,omitempty"`
}

// Generate sends one non-streaming chat request. Transient 429/503 responses
// are retried with backoff; a model that is still loading answers 503.
func (c *OllamaClient) Generate(ctx context.Context, req Request) (string, error) {
	body := ollamaChatRequest{
		Model:    c.model,
		Messages: []ollamaMessage{{Role: "user", Content: req.Prompt}},
		Stream:   false,
		Options:  ollamaOptions{NumPredict: req.MaxTokens},
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling ollama request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("creating ollama request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(ctx, c.client, httpReq, 0)
	if err != nil {
		return "", fmt.Errorf("ollama %s: %w", req.Purpose, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama %s: server returned %d: %s", req.Purpose, resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var decoded ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decoding ollama response: %w", err)
	}
	if decoded.Error != "" {
		return "", fmt.Errorf("ollama %s: %s", req.Purpose, decoded.Error)
	}
	if strings.TrimSpace(decoded.Message.Content) == "" {
		return "", fmt.Errorf("ollama %s: %w", req.Purpose, ErrEmptyCompletion)
	}
	return decoded.Message.Content, nil
}
