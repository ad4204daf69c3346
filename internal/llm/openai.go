// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/vosslab/content-engine/pkg/types"
)

// OpenAIClient generates text through the chat completions API of OpenAI or
// any OpenAI-compatible gateway.
type OpenAIClient struct {
	model string
	opts  []option.RequestOption
}

// NewOpenAIClient builds a client from configuration. An API key and model
// are required; BaseURL switches to a compatible gateway.
func NewOpenAIClient(cfg types.LLMConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key missing; provide llm.api_key or .secrets/openai-api-key")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("openai model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	return &OpenAIClient{model: cfg.Model, opts: opts}, nil
}

// Generate sends one single-turn chat completion.
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	client := openai.NewClient(c.opts...)

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai %s: %w", req.Purpose, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai %s: %w", req.Purpose, ErrEmptyCompletion)
	}
	return resp.Choices[0].Message.Content, nil
}
