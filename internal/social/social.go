// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package social condenses a blog post into one publishable plain-text
// line under a hard character limit. Generation failures degrade to a
// deterministic extract of the post instead of failing the stage.
package social

import (
	"context"
	"fmt"
	"strings"

	"github.com/vosslab/content-engine/internal/blogpost"
	"github.com/vosslab/content-engine/internal/depth"
	"github.com/vosslab/content-engine/internal/llm"
	"github.com/vosslab/content-engine/internal/prompt"
	"github.com/vosslab/content-engine/internal/stage"
	"github.com/vosslab/content-engine/internal/textutil"
	"github.com/vosslab/content-engine/pkg/types"
)

// Generator runs the social stage.
type Generator struct {
	client    llm.Client
	depthCfg  types.DepthConfig
	maxTokens int
	charLimit int
	logf      func(format string, args ...any)
}

// Result is the social stage output.
type Result struct {
	Text     string
	Fallback bool
	Trimmed  bool
}

func NewGenerator(client llm.Client, cfg types.Config, logf func(string, ...any)) *Generator {
	return &Generator{
		client:    client,
		depthCfg:  cfg.Generate,
		maxTokens: cfg.LLM.MaxTokens,
		charLimit: cfg.Social.CharLimit,
		logf:      logf,
	}
}

// Run produces one social post for a blog post. The final text is always
// within the character limit; a failed generation yields the deterministic
// fallback, never an error.
func (g *Generator) Run(ctx context.Context, blogText string) (*Result, error) {
	if err := depth.Validate(g.depthCfg.Depth); err != nil {
		return nil, err
	}
	if strings.TrimSpace(blogText) == "" {
		return nil, fmt.Errorf("social post: blog text is empty")
	}

	result := &Result{}
	text, err := g.generate(ctx, blogText)
	if err != nil {
		g.logf("generation failed (%v); using deterministic fallback text", err)
		text = FallbackText(blogText)
		result.Fallback = true
	}

	final := textutil.TrimToCharLimit(text, g.charLimit)
	if len(final) < len(text) {
		g.logf("trimmed final text to char limit (%d -> %d chars)", len(text), len(final))
		result.Trimmed = true
	}
	result.Text = final
	return result, nil
}

func (g *Generator) generate(ctx context.Context, blogText string) (string, error) {
	generate := func(ctx context.Context) (string, error) {
		return g.draft(ctx, blogText)
	}
	if g.depthCfg.Depth <= 1 {
		return generate(ctx)
	}
	p := &depth.Pipeline{
		Generate:     generate,
		Referee:      stage.Referee(g.client, "social post", g.maxTokens),
		Polish:       g.polish(),
		QualityCheck: llm.PayloadIssue,
		Depth:        g.depthCfg.Depth,
		CacheDir:     g.depthCfg.CacheDir,
		CachePrefix:  "social_post",
		Continue:     g.depthCfg.Continue,
		Log:          func(msg string) { g.logf("%s", msg) },
	}
	return p.Run(ctx)
}

// polish normalizes the merged result the same way single drafts are
// normalized, so depth runs cannot reintroduce markup.
func (g *Generator) polish() depth.PolishFunc {
	inner := stage.Polish(g.client, "social post", "characters", g.charLimit, g.maxTokens)
	return func(ctx context.Context, drafts []string, d int) (string, error) {
		merged, err := inner(ctx, drafts, d)
		if err != nil {
			return "", err
		}
		return Normalize(merged), nil
	}
}

func (g *Generator) draft(ctx context.Context, blogText string) (string, error) {
	rendered, err := prompt.RenderWithTarget("social_post.tmpl", map[string]any{
		"CharLimit": g.charLimit,
		"BlogText":  blogText,
	}, g.charLimit, "characters", "social post")
	if err != nil {
		return "", err
	}
	raw, err := g.client.Generate(ctx, llm.Request{
		Prompt:    rendered,
		Purpose:   "social post",
		MaxTokens: g.maxTokens,
	})
	if err != nil {
		return "", err
	}
	text := Normalize(raw)
	if issue := llm.PayloadIssue(text); issue != "" {
		g.logf("social post unusable (%s); retrying once", issue)
		retryPrompt := fmt.Sprintf(
			"Regenerate as one clean plain-text line of about %d characters. No XML tags, no Markdown, no hashtags.\n\n%s",
			g.charLimit, rendered)
		raw, err = g.client.Generate(ctx, llm.Request{
			Prompt:    retryPrompt,
			Purpose:   "social post retry",
			MaxTokens: g.maxTokens,
		})
		if err != nil {
			return "", err
		}
		text = Normalize(raw)
	}
	return text, nil
}

// Normalize flattens raw model output into one clean publishable line.
func Normalize(text string) string {
	return textutil.NormalizeLine(text)
}

// fallbackCharLimit caps the deterministic fallback before the configured
// per-post limit is applied.
const fallbackCharLimit = 200

// FallbackText builds a deterministic post from the blog's H1 title and
// first body sentence.
func FallbackText(blogText string) string {
	title := ""
	for _, line := range strings.Split(blogText, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "# ") {
			title = blogpost.Title(blogText)
			break
		}
	}

	firstSentence := ""
	for _, line := range strings.Split(blogText, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		firstSentence = strings.TrimSpace(strings.SplitN(trimmed, ".", 2)[0])
		if firstSentence != "" {
			firstSentence += "."
		}
		break
	}

	text := ""
	switch {
	case title != "" && firstSentence != "":
		text = title + ". " + firstSentence
	case title != "":
		text = title
	case firstSentence != "":
		text = firstSentence
	default:
		text = blogText
	}
	// A run-on first line with no period can be arbitrarily long; keep the
	// fallback short even before the configured limit applies.
	return textutil.TrimToCharLimit(text, fallbackCharLimit)
}
