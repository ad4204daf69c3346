// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package social

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vosslab/content-engine/internal/llm"
	"github.com/vosslab/content-engine/pkg/types"
)

type scriptedClient struct {
	replies []string
	errs    []error
	calls   int
	prompts []string
}

func (c *scriptedClient) Generate(_ context.Context, req llm.Request) (string, error) {
	i := c.calls
	c.calls++
	c.prompts = append(c.prompts, req.Prompt)
	if i < len(c.errs) && c.errs[i] != nil {
		return "", c.errs[i]
	}
	if i < len(c.replies) {
		return c.replies[i], nil
	}
	return "a tidy one line summary of the week", nil
}

func testConfig(dir string) types.Config {
	cfg := types.Config{}
	cfg.ApplyDefaults()
	cfg.Generate.Depth = 1
	cfg.Generate.CacheDir = dir
	return cfg
}

const blogText = "# A Week of Parsers\n\nRewrote the tokenizer this week. It got faster.\n"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  plain line  ", "plain line"},
		{"<post>wrapped text</post>", "wrapped text"},
		{"some <b>bold</b> claim", "some bold claim"},
		{"a *starred* word", "a starred word"},
		{"line one\nline two\t end", "line one line two end"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFallbackText(t *testing.T) {
	if got := FallbackText(blogText); got != "A Week of Parsers. Rewrote the tokenizer this week." {
		t.Errorf("fallback = %q", got)
	}
	if got := FallbackText("# Title Only\n"); got != "Title Only" {
		t.Errorf("title-only fallback = %q", got)
	}
	if got := FallbackText("Just body text. More text."); got != "Just body text." {
		t.Errorf("body-only fallback = %q", got)
	}
	long := strings.Repeat("словоword", 50)
	if got := FallbackText(long); len(got) > 200 {
		t.Errorf("last-resort fallback too long: %d chars", len(got))
	} else if !strings.HasSuffix(got, "...") {
		t.Errorf("capped fallback missing ellipsis: %q", got)
	}
}

func TestRunHappyPath(t *testing.T) {
	client := &scriptedClient{replies: []string{"<post>Shipped a *faster* tokenizer this week</post>"}}
	g := NewGenerator(client, testConfig(t.TempDir()), func(string, ...any) {})

	result, err := g.Run(context.Background(), blogText)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Text != "Shipped a faster tokenizer this week" {
		t.Errorf("text = %q", result.Text)
	}
	if result.Fallback || result.Trimmed {
		t.Errorf("flags = %+v", result)
	}
	if !strings.Contains(client.prompts[0], "Target 300 characters for this social post.") {
		t.Error("prompt missing closing target line")
	}
}

func TestRunRetriesOnUnusablePayload(t *testing.T) {
	client := &scriptedClient{replies: []string{"", "clean second attempt"}}
	g := NewGenerator(client, testConfig(t.TempDir()), func(string, ...any) {})

	result, err := g.Run(context.Background(), blogText)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Text != "clean second attempt" {
		t.Errorf("text = %q", result.Text)
	}
	if client.calls != 2 {
		t.Errorf("calls = %d, want 2", client.calls)
	}
}

func TestRunFallsBackOnError(t *testing.T) {
	client := &scriptedClient{errs: []error{errors.New("backend down")}}
	g := NewGenerator(client, testConfig(t.TempDir()), func(string, ...any) {})

	result, err := g.Run(context.Background(), blogText)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Fallback {
		t.Error("expected fallback flag")
	}
	if result.Text != "A Week of Parsers. Rewrote the tokenizer this week." {
		t.Errorf("text = %q", result.Text)
	}
}

func TestRunTrimsToCharLimit(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Social.CharLimit = 20
	client := &scriptedClient{replies: []string{"this reply is clearly longer than twenty characters"}}
	g := NewGenerator(client, cfg, func(string, ...any) {})

	result, err := g.Run(context.Background(), blogText)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Text) > 20 {
		t.Errorf("text %d chars over limit: %q", len(result.Text), result.Text)
	}
	if !result.Trimmed {
		t.Error("expected trimmed flag")
	}
}

func TestRunEmptyBlog(t *testing.T) {
	g := NewGenerator(&scriptedClient{}, testConfig(t.TempDir()), func(string, ...any) {})
	if _, err := g.Run(context.Background(), " \n"); err == nil {
		t.Fatal("expected error for empty blog text")
	}
}
