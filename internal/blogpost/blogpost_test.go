// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package blogpost

import (
	"context"
	"strings"
	"testing"

	"github.com/vosslab/content-engine/internal/llm"
	"github.com/vosslab/content-engine/pkg/types"
)

type countingClient struct {
	calls int
	reply string
}

func (c *countingClient) Generate(_ context.Context, req llm.Request) (string, error) {
	c.calls++
	return c.reply, nil
}

func testConfig(dir string) types.Config {
	cfg := types.Config{}
	cfg.ApplyDefaults()
	cfg.Generate.Depth = 1
	cfg.Generate.CacheDir = dir
	cfg.Generate.Continue = true
	return cfg
}

func testReport() *types.Report {
	return &types.Report{
		User:        "voss",
		WindowStart: "2026-08-01T00:00:00Z",
		WindowEnd:   "2026-08-08T00:00:00Z",
	}
}

// blogReply is an in-band post for the default 750-word target.
func blogReply() string {
	return "# Shipping the parser\n\n" + strings.TrimSpace(strings.Repeat("word ", 500))
}

func TestRunGeneratesAndCaches(t *testing.T) {
	dir := t.TempDir()
	client := &countingClient{reply: blogReply()}
	g := NewGenerator(client, testConfig(dir), func(string, ...any) {})

	result, err := g.Run(context.Background(), testReport(), "outline text")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Cached {
		t.Error("first run should not be a cache hit")
	}
	if result.Title != "Shipping the parser" {
		t.Errorf("title = %q", result.Title)
	}
	if client.calls != 1 {
		t.Errorf("calls = %d, want 1", client.calls)
	}

	second := &countingClient{reply: blogReply()}
	g = NewGenerator(second, testConfig(dir), func(string, ...any) {})
	result, err = g.Run(context.Background(), testReport(), "outline text")
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if !result.Cached {
		t.Error("second run should hit the fingerprint cache")
	}
	if second.calls != 0 {
		t.Errorf("second run calls = %d, want 0", second.calls)
	}
}

func TestRunOutlineChangeInvalidatesCache(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(&countingClient{reply: blogReply()}, testConfig(dir), func(string, ...any) {})
	if _, err := g.Run(context.Background(), testReport(), "outline text"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	second := &countingClient{reply: blogReply()}
	g = NewGenerator(second, testConfig(dir), func(string, ...any) {})
	result, err := g.Run(context.Background(), testReport(), "different outline")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Cached {
		t.Error("changed outline should miss the cache")
	}
	if second.calls != 1 {
		t.Errorf("calls = %d, want 1", second.calls)
	}
}

func TestRunEmptyOutline(t *testing.T) {
	g := NewGenerator(&countingClient{}, testConfig(t.TempDir()), func(string, ...any) {})
	if _, err := g.Run(context.Background(), testReport(), "  \n "); err == nil {
		t.Fatal("expected error for empty outline")
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		markdown string
		want     string
	}{
		{"# A Week of Parsers\n\nbody", "A Week of Parsers"},
		{"intro\n\n# Late Heading\n\nbody", "Late Heading"},
		{"## only a subheading\n\nbody", defaultTitle},
		{"no headings at all", defaultTitle},
	}
	for _, tt := range tests {
		if got := Title(tt.markdown); got != tt.want {
			t.Errorf("Title(%q) = %q, want %q", tt.markdown, got, tt.want)
		}
	}
}

func TestRenderHTML(t *testing.T) {
	doc, err := RenderHTML("Parsers & Pipes", "# Parsers & Pipes\n\nOne *short* paragraph.")
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	for _, want := range []string{
		"<!doctype html>",
		"<title>Parsers &amp; Pipes</title>",
		"<em>short</em>",
		"</html>",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}
}
