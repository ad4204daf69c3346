// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package podcast turns a blog post into a multi-speaker conversation
// script. Model output is parsed into SPEAKER: text lines; prose that
// escapes the format is salvaged sentence by sentence rather than dropped.
package podcast

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/vosslab/content-engine/internal/blogpost"
	"github.com/vosslab/content-engine/internal/depth"
	"github.com/vosslab/content-engine/internal/llm"
	"github.com/vosslab/content-engine/internal/prompt"
	"github.com/vosslab/content-engine/internal/stage"
	"github.com/vosslab/content-engine/internal/textutil"
	"github.com/vosslab/content-engine/pkg/types"
)

// MaxSpeakers bounds the host roster.
const MaxSpeakers = 8

var (
	speakerLineRe   = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9 _-]*):\s*(.+)$`)
	speakerTokenRe  = regexp.MustCompile(`[^A-Z0-9]+`)
	sentenceSplitRe = regexp.MustCompile(`(?:[.!?])\s+`)
)

// Line is one spoken turn.
type Line struct {
	Speaker string
	Text    string
}

// Labels builds the host roster HOST1..HOSTn.
func Labels(n int) ([]string, error) {
	if n < 1 {
		return nil, fmt.Errorf("speaker count must be at least 1")
	}
	if n > MaxSpeakers {
		return nil, fmt.Errorf("speaker count must be at most %d", MaxSpeakers)
	}
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("HOST%d", i+1)
	}
	return labels, nil
}

// SpeakerFormat renders the per-line format instruction for prompts.
func SpeakerFormat(labels []string) string {
	lines := make([]string, len(labels))
	for i, label := range labels {
		lines[i] = label + ": spoken text"
	}
	return strings.Join(lines, "\n")
}

func normalizeSpeaker(token string) string {
	return strings.Trim(speakerTokenRe.ReplaceAllString(strings.ToUpper(strings.TrimSpace(token)), "_"), "_")
}

func normalizeSpoken(text string) string {
	clean := strings.ReplaceAll(strings.TrimSpace(text), "\n", " ")
	clean = strings.TrimLeft(clean, "-*# ")
	return textutil.NormalizeLine(clean)
}

func splitSentences(text string) []string {
	clean := normalizeSpoken(text)
	if clean == "" {
		return nil
	}
	var sentences []string
	for _, part := range sentenceSplitRe.Split(clean, -1) {
		if item := normalizeSpoken(part); item != "" {
			sentences = append(sentences, item)
		}
	}
	if len(sentences) == 0 {
		return []string{clean}
	}
	return sentences
}

// ParseScript parses model output into speaker lines. Lines that do not
// match the SPEAKER: text form, or that name an unknown speaker, are pooled
// and redistributed across the roster one sentence per turn.
func ParseScript(scriptText string, labels []string) []Line {
	allowed := make(map[string]bool, len(labels))
	for _, label := range labels {
		allowed[label] = true
	}

	var parsed []Line
	var narrative []string
	for _, raw := range strings.Split(scriptText, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		m := speakerLineRe.FindStringSubmatch(line)
		if m == nil {
			narrative = append(narrative, line)
			continue
		}
		speaker := normalizeSpeaker(m[1])
		text := normalizeSpoken(m[2])
		if allowed[speaker] && text != "" {
			parsed = append(parsed, Line{Speaker: speaker, Text: text})
			continue
		}
		narrative = append(narrative, line)
	}
	if len(narrative) > 0 {
		for i, sentence := range splitSentences(strings.Join(narrative, " ")) {
			parsed = append(parsed, Line{Speaker: labels[i%len(labels)], Text: sentence})
		}
	}
	return parsed
}

// EnsureSpeakers guarantees every configured speaker gets at least one
// line, appending a stock line for anyone the model left silent.
func EnsureSpeakers(lines []Line, labels []string) []Line {
	var cleaned []Line
	for _, line := range lines {
		if spoken := normalizeSpoken(line.Text); spoken != "" {
			cleaned = append(cleaned, Line{Speaker: line.Speaker, Text: spoken})
		}
	}
	if len(cleaned) == 0 {
		for _, label := range labels {
			cleaned = append(cleaned, Line{Speaker: label, Text: "Engineering update in progress."})
		}
		return cleaned
	}
	used := make(map[string]bool, len(cleaned))
	for _, line := range cleaned {
		used[line.Speaker] = true
	}
	for _, label := range labels {
		if !used[label] {
			cleaned = append(cleaned, Line{
				Speaker: label,
				Text:    "Quick take: steady engineering movement this window.",
			})
		}
	}
	return cleaned
}

// CountWords counts spoken words across lines, excluding speaker labels.
func CountWords(lines []Line) int {
	total := 0
	for _, line := range lines {
		total += textutil.CountWords(line.Text)
	}
	return total
}

// TrimToWordLimit cuts the script at a total spoken-word budget. The line
// that crosses the budget is shortened with an ellipsis; everything after
// it is dropped.
func TrimToWordLimit(lines []Line, limit int) []Line {
	if limit <= 0 {
		return nil
	}
	remaining := limit
	var trimmed []Line
	for _, line := range lines {
		words := textutil.ExtractWords(line.Text)
		if len(words) == 0 {
			continue
		}
		if len(words) <= remaining {
			trimmed = append(trimmed, line)
			remaining -= len(words)
			if remaining == 0 {
				break
			}
			continue
		}
		short := strings.Join(words[:remaining], " ")
		if !strings.HasSuffix(short, "...") {
			short += " ..."
		}
		trimmed = append(trimmed, Line{Speaker: line.Speaker, Text: short})
		break
	}
	return trimmed
}

// Render writes lines back to SPEAKER: text form, one per line.
func Render(lines []Line) string {
	rendered := make([]string, len(lines))
	for i, line := range lines {
		rendered[i] = line.Speaker + ": " + strings.TrimSpace(line.Text)
	}
	return strings.TrimSpace(strings.Join(rendered, "\n")) + "\n"
}

// FallbackLines builds a deterministic script from the blog post when
// generation fails outright.
func FallbackLines(blogText string, labels []string) []Line {
	title := blogpost.Title(blogText)
	var paragraphs []string
	for _, raw := range strings.Split(blogText, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paragraphs = append(paragraphs, line)
		if len(paragraphs) >= 6 {
			break
		}
	}

	lines := []Line{{Speaker: labels[0], Text: "Welcome to the engineering report. Today: " + title + "."}}
	for i, para := range paragraphs {
		lines = append(lines, Line{Speaker: labels[i%len(labels)], Text: para})
	}
	lines = append(lines, Line{Speaker: labels[0], Text: "That wraps up this engineering report."})
	return lines
}

// Generator runs the podcast stage.
type Generator struct {
	client    llm.Client
	depthCfg  types.DepthConfig
	maxTokens int
	speakers  int
	wordLimit int
	logf      func(format string, args ...any)
}

// Result is the podcast stage output.
type Result struct {
	Script   string
	Lines    []Line
	Words    int
	Fallback bool
}

func NewGenerator(client llm.Client, cfg types.Config, logf func(string, ...any)) *Generator {
	return &Generator{
		client:    client,
		depthCfg:  cfg.Generate,
		maxTokens: cfg.LLM.MaxTokens,
		speakers:  cfg.Podcast.Speakers,
		wordLimit: cfg.Podcast.WordLimit,
		logf:      logf,
	}
}

// Run produces one finished script for a blog post. Generation failures
// degrade to the deterministic fallback script.
func (g *Generator) Run(ctx context.Context, blogText string) (*Result, error) {
	if err := depth.Validate(g.depthCfg.Depth); err != nil {
		return nil, err
	}
	if strings.TrimSpace(blogText) == "" {
		return nil, fmt.Errorf("podcast script: blog text is empty")
	}
	labels, err := Labels(g.speakers)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	raw, err := g.generate(ctx, blogText, labels)
	if err != nil {
		g.logf("generation failed (%v); using deterministic fallback script", err)
		result.Fallback = true
	}

	lines := ParseScript(raw, labels)
	if len(lines) == 0 && !result.Fallback {
		g.logf("no usable speaker lines parsed; using deterministic fallback script")
		result.Fallback = true
	}
	if result.Fallback {
		lines = FallbackLines(blogText, labels)
	}
	lines = EnsureSpeakers(lines, labels)
	if words := CountWords(lines); words > g.wordLimit {
		g.logf("trimming script to word limit (%d -> %d words)", words, g.wordLimit)
		lines = TrimToWordLimit(lines, g.wordLimit)
	}

	result.Lines = lines
	result.Words = CountWords(lines)
	result.Script = Render(lines)
	return result, nil
}

func (g *Generator) generate(ctx context.Context, blogText string, labels []string) (string, error) {
	generate := func(ctx context.Context) (string, error) {
		return g.draft(ctx, blogText, labels)
	}
	if g.depthCfg.Depth <= 1 {
		return generate(ctx)
	}
	p := &depth.Pipeline{
		Generate:     generate,
		Referee:      stage.Referee(g.client, "podcast script", g.maxTokens),
		Polish:       stage.Polish(g.client, "podcast script", "words", g.wordLimit, g.maxTokens),
		QualityCheck: llm.PayloadIssue,
		Depth:        g.depthCfg.Depth,
		CacheDir:     g.depthCfg.CacheDir,
		CachePrefix:  "podcast_script",
		Continue:     g.depthCfg.Continue,
		Log:          func(msg string) { g.logf("%s", msg) },
	}
	return p.Run(ctx)
}

func (g *Generator) draft(ctx context.Context, blogText string, labels []string) (string, error) {
	rendered, err := prompt.RenderWithTarget("podcast_script.tmpl", map[string]any{
		"SpeakerFormat": SpeakerFormat(labels),
		"WordLimit":     g.wordLimit,
		"BlogText":      blogText,
	}, g.wordLimit, "words", "podcast script")
	if err != nil {
		return "", err
	}
	raw, err := llm.GenerateChecked(ctx, g.client, llm.Request{
		Prompt:    rendered,
		Purpose:   "podcast script",
		MaxTokens: g.maxTokens,
	}, g.logf)
	if err != nil {
		return "", err
	}
	return textutil.StripXMLWrapper(strings.TrimSpace(raw)), nil
}
