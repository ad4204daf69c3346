// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package changelog condenses long changelog entries before they enter
// prompt context. Entries over a character threshold are split into
// overlapping chunks, each chunk is summarized, and the summaries are
// concatenated back into a single shorter entry.
package changelog

import (
	"context"
	"fmt"
	"strings"

	"github.com/vosslab/content-engine/internal/depth"
	"github.com/vosslab/content-engine/internal/draftcache"
	"github.com/vosslab/content-engine/internal/llm"
	"github.com/vosslab/content-engine/internal/prompt"
	"github.com/vosslab/content-engine/internal/stage"
	"github.com/vosslab/content-engine/pkg/types"
)

// Summarizer rewrites oversized changelog entries in place.
type Summarizer struct {
	Client    llm.Client
	Threshold int
	ChunkSize int
	Overlap   int
	MaxTokens int
	Depth     types.DepthConfig
	Log       func(msg string)
}

// NewSummarizer builds a summarizer from the pipeline configuration.
func NewSummarizer(client llm.Client, cfg types.Config, log func(string)) *Summarizer {
	return &Summarizer{
		Client:    client,
		Threshold: cfg.Changelog.Threshold,
		ChunkSize: cfg.Changelog.ChunkSize,
		Overlap:   cfg.Changelog.Overlap,
		MaxTokens: cfg.LLM.MaxTokens,
		Depth:     cfg.Generate,
		Log:       log,
	}
}

// ChunkText splits text into chunks of at most size characters, with each
// chunk overlapping the previous one by overlap characters. A trailing
// remainder no longer than the overlap is emitted as its own final chunk
// rather than producing a near-duplicate of the previous tail.
func ChunkText(text string, size, overlap int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= size {
		return []string{text}
	}
	step := size - overlap
	if step < 1 {
		// A configured overlap at or above the chunk size would never advance.
		step = 1
	}
	var chunks []string
	for start := 0; start < len(text); start += step {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
		next := start + step
		if next < len(text) && len(text)-next <= overlap {
			chunks = append(chunks, text[next:])
			break
		}
	}
	return chunks
}

// Condense returns entryText unchanged when it fits under the threshold,
// otherwise the concatenated per-chunk summaries.
func (s *Summarizer) Condense(ctx context.Context, entryText string) (string, error) {
	if len(entryText) <= s.Threshold {
		return entryText, nil
	}
	chunks := ChunkText(entryText, s.ChunkSize, s.Overlap)
	s.logf("summarizing changelog entry (%d chars) in %d chunks", len(entryText), len(chunks))

	var summaries []string
	for i, chunk := range chunks {
		summary, err := s.summarizeChunk(ctx, chunk, i, len(chunks))
		if err != nil {
			return "", fmt.Errorf("summarize chunk %d/%d: %w", i+1, len(chunks), err)
		}
		summary = strings.TrimSpace(summary)
		if summary != "" {
			summaries = append(summaries, summary)
		}
	}
	return strings.Join(summaries, "\n\n"), nil
}

// summarizeChunk runs one chunk through the generation engine. Depth 1
// is a single call; higher depths draft, referee, and polish like any
// other stage, keyed in the draft cache by the chunk's content hash.
func (s *Summarizer) summarizeChunk(ctx context.Context, chunk string, index, total int) (string, error) {
	generate := func(ctx context.Context) (string, error) {
		rendered, err := prompt.Render("changelog_chunk.tmpl", map[string]any{"ChunkText": chunk})
		if err != nil {
			return "", fmt.Errorf("render chunk prompt: %w", err)
		}
		return s.Client.Generate(ctx, llm.Request{
			Prompt:    rendered,
			Purpose:   fmt.Sprintf("changelog chunk summary %d/%d", index+1, total),
			MaxTokens: s.MaxTokens,
		})
	}
	if s.Depth.Depth <= 1 {
		return generate(ctx)
	}

	// A third of the chunk's estimated words, at five chars per word.
	target := s.ChunkSize / 15
	fp := draftcache.Fingerprint(draftcache.RunContext{
		Stage: "changelog_chunk",
		Extra: map[string]any{"chunk": chunk},
	})
	p := &depth.Pipeline{
		Generate:     generate,
		Referee:      stage.Referee(s.Client, "changelog summary", s.MaxTokens),
		Polish:       stage.Polish(s.Client, "changelog summary", "words", target, s.MaxTokens),
		QualityCheck: llm.PayloadIssue,
		Depth:        s.Depth.Depth,
		CacheDir:     s.Depth.CacheDir,
		CachePrefix:  "changelog_" + fp,
		Continue:     s.Depth.Continue,
		Log:          func(msg string) { s.logf("%s", msg) },
	}
	return p.Run(ctx)
}

// CondenseRepo rewrites oversized entries in a repository bucket in place.
func (s *Summarizer) CondenseRepo(ctx context.Context, repo *types.RepoActivity) error {
	for i := range repo.ChangelogEntries {
		entry := &repo.ChangelogEntries[i]
		if len(entry.EntryText) <= s.Threshold {
			continue
		}
		condensed, err := s.Condense(ctx, entry.EntryText)
		if err != nil {
			return fmt.Errorf("condense %s changelog: %w", repo.RepoFullName, err)
		}
		entry.EntryText = condensed
	}
	return nil
}

func (s *Summarizer) logf(format string, args ...any) {
	if s.Log != nil {
		s.Log(fmt.Sprintf(format, args...))
	}
}
