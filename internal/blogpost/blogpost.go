// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package blogpost turns a daily outline into a first-person blog post in
// Markdown, optionally rendered to a standalone HTML document.
package blogpost

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/vosslab/content-engine/internal/depth"
	"github.com/vosslab/content-engine/internal/draftcache"
	"github.com/vosslab/content-engine/internal/llm"
	"github.com/vosslab/content-engine/internal/prompt"
	"github.com/vosslab/content-engine/internal/stage"
	"github.com/vosslab/content-engine/internal/textutil"
	"github.com/vosslab/content-engine/pkg/types"
)

const defaultTitle = "Development Notes"

// Generator runs the blog stage.
type Generator struct {
	client    llm.Client
	store     *draftcache.Store
	depthCfg  types.DepthConfig
	maxTokens int
	target    int
	logf      func(format string, args ...any)
}

// Result is the blog stage output.
type Result struct {
	Title    string
	Markdown string
	Cached   bool
}

func NewGenerator(client llm.Client, cfg types.Config, logf func(string, ...any)) *Generator {
	return &Generator{
		client:    client,
		store:     draftcache.NewStore(cfg.Generate.CacheDir),
		depthCfg:  cfg.Generate,
		maxTokens: cfg.LLM.MaxTokens,
		target:    cfg.Blog.TargetWords,
		logf:      logf,
	}
}

// Run generates the blog post for one outline.
func (g *Generator) Run(ctx context.Context, report *types.Report, outlineText string) (*Result, error) {
	if err := depth.Validate(g.depthCfg.Depth); err != nil {
		return nil, err
	}
	if strings.TrimSpace(outlineText) == "" {
		return nil, fmt.Errorf("blog post: outline text is empty")
	}

	fp := draftcache.Fingerprint(draftcache.RunContext{
		Stage:       "blog_post",
		User:        report.User,
		WindowStart: report.WindowStart,
		WindowEnd:   report.WindowEnd,
		Target:      g.target,
		Extra:       map[string]any{"outline": outlineText},
	})
	if g.depthCfg.Continue {
		if entry, ok := g.store.Load("blog_post", fp); ok {
			g.logf("reusing cached blog post")
			return &Result{Title: Title(entry.Draft), Markdown: entry.Draft, Cached: true}, nil
		}
	}

	text, err := g.generate(ctx, outlineText)
	if err != nil {
		return nil, err
	}
	if err := g.store.Save("blog_post", fp, draftcache.Entry{Draft: text, Target: g.target}); err != nil {
		g.logf("blog cache write failed: %v", err)
	}
	return &Result{Title: Title(text), Markdown: text}, nil
}

func (g *Generator) generate(ctx context.Context, outlineText string) (string, error) {
	generate := func(ctx context.Context) (string, error) {
		return g.draft(ctx, outlineText)
	}
	if g.depthCfg.Depth <= 1 {
		return generate(ctx)
	}
	p := &depth.Pipeline{
		Generate:     generate,
		Referee:      stage.Referee(g.client, "blog post", g.maxTokens),
		Polish:       stage.Polish(g.client, "blog post", "words", g.target, g.maxTokens),
		QualityCheck: llm.PayloadIssue,
		Depth:        g.depthCfg.Depth,
		CacheDir:     g.depthCfg.CacheDir,
		CachePrefix:  "blog_post",
		Continue:     g.depthCfg.Continue,
		Log:          func(msg string) { g.logf("%s", msg) },
	}
	return p.Run(ctx)
}

func (g *Generator) draft(ctx context.Context, outlineText string) (string, error) {
	rendered, err := prompt.RenderWithTarget("blog_post.tmpl", map[string]any{
		"TargetWords": g.target,
		"OutlineText": outlineText,
	}, g.target, "words", "blog post")
	if err != nil {
		return "", err
	}
	raw, err := llm.GenerateChecked(ctx, g.client, llm.Request{
		Prompt:    rendered,
		Purpose:   "blog post",
		MaxTokens: g.maxTokens,
	}, g.logf)
	if err != nil {
		return "", err
	}
	draft := textutil.StripXMLWrapper(strings.TrimSpace(raw))
	return stage.EnforceWordBand(ctx, g.client, draft, rendered, "blog post", g.target, g.maxTokens, g.logf)
}

// Title returns the first H1 heading of a Markdown post, or a fixed
// fallback when the post has none.
func Title(markdown string) string {
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return defaultTitle
}

// RenderHTML converts Markdown into a minimal standalone HTML document.
func RenderHTML(title, markdown string) (string, error) {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("render blog html: %w", err)
	}
	var doc strings.Builder
	doc.WriteString("<!doctype html>\n<html lang=\"en\">\n<head>\n")
	doc.WriteString("<meta charset=\"utf-8\">\n")
	doc.WriteString("<title>" + html.EscapeString(title) + "</title>\n")
	doc.WriteString("</head>\n<body>\n")
	doc.Write(body.Bytes())
	doc.WriteString("</body>\n</html>\n")
	return doc.String(), nil
}
