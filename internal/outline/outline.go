// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package outline turns an activity report into per-repository outlines and
// one merged daily outline. Per-repo results are fingerprint-cached so
// re-runs over the same window only pay for repositories whose activity
// changed.
package outline

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/vosslab/content-engine/internal/activity"
	"github.com/vosslab/content-engine/internal/depth"
	"github.com/vosslab/content-engine/internal/draftcache"
	"github.com/vosslab/content-engine/internal/llm"
	"github.com/vosslab/content-engine/internal/prompt"
	"github.com/vosslab/content-engine/internal/stage"
	"github.com/vosslab/content-engine/internal/textutil"
	"github.com/vosslab/content-engine/pkg/types"
)

// Changelog character budgets for prompt context: the default, and the
// tightened budget used after a context-window overflow.
const (
	changelogBudget        = 8000
	changelogBudgetTrimmed = 6000
)

const charsPerWord = 5

// Generator runs the outline stage. Zero-value fields are not usable;
// construct with NewGenerator.
type Generator struct {
	client    llm.Client
	store     *draftcache.Store
	depthCfg  types.DepthConfig
	maxTokens int
	global    int
	minRepo   int
	logf      func(format string, args ...any)
}

// RepoOutline is one per-repository result.
type RepoOutline struct {
	RepoFullName  string `json:"repo_full_name" yaml:"repo_full_name"`
	TotalActivity int    `json:"total_activity" yaml:"total_activity"`
	Target        int    `json:"target_words" yaml:"target_words"`
	Cached        bool   `json:"cached" yaml:"cached"`
	Text          string `json:"text" yaml:"text"`
}

// Result is the full outline stage output.
type Result struct {
	Repos        []RepoOutline `json:"repos" yaml:"repos"`
	GlobalTarget int           `json:"global_target_words" yaml:"global_target_words"`
	Global       string        `json:"global" yaml:"global"`
	CacheHits    int           `json:"cache_hits" yaml:"cache_hits"`
}

func NewGenerator(client llm.Client, cfg types.Config, logf func(string, ...any)) *Generator {
	return &Generator{
		client:    client,
		store:     draftcache.NewStore(cfg.Generate.CacheDir),
		depthCfg:  cfg.Generate,
		maxTokens: cfg.LLM.MaxTokens,
		global:    cfg.Outline.GlobalTargetWords,
		minRepo:   cfg.Outline.MinRepoTargetWords,
		logf:      logf,
	}
}

// CeilingTarget computes the per-repo word ceiling for a window covering
// repoCount repositories: max(minRepo, ceil(global/(N-1))). A single-repo
// window gets the whole global budget.
func CeilingTarget(repoCount, global, minRepo int) int {
	if repoCount <= 1 {
		return global
	}
	calculated := int(math.Ceil(float64(global) / float64(repoCount-1)))
	if calculated < minRepo {
		return minRepo
	}
	return calculated
}

// ScaledTarget scales a repository's word target by its input richness.
// Input words are estimated from total prompt-context characters at five
// characters per word; thin inputs target half their own size so a quiet
// repository does not get padded out to the ceiling.
func ScaledTarget(repo types.RepoActivity, ceiling int) int {
	ctx := activity.BuildContext(repo, 2500)
	chars := 0
	for _, m := range ctx.CommitMessages {
		chars += len(m)
	}
	for _, t := range ctx.IssueTitles {
		chars += len(t)
	}
	for _, t := range ctx.PullRequestTitles {
		chars += len(t)
	}
	for _, e := range ctx.ChangelogEntries {
		chars += len(e.EntryText)
	}
	inputWords := chars / charsPerWord
	if inputWords >= 1500 {
		return ceiling
	}
	scaled := inputWords / 2
	if scaled < 100 {
		scaled = 100
	}
	if scaled > ceiling {
		scaled = ceiling
	}
	return scaled
}

// Run generates outlines for every repository in the report, then the
// merged daily outline.
func (g *Generator) Run(ctx context.Context, report *types.Report) (*Result, error) {
	if err := depth.Validate(g.depthCfg.Depth); err != nil {
		return nil, err
	}
	ceiling := CeilingTarget(len(report.Repos), g.global, g.minRepo)
	g.logf("repo outline ceiling: %d words (N=%d)", ceiling, len(report.Repos))

	result := &Result{}
	for rank, repo := range report.Repos {
		target := ScaledTarget(repo, ceiling)
		g.logf("repo %d/%d %s: target=%d ceiling=%d", rank+1, len(report.Repos), repo.RepoFullName, target, ceiling)
		text, cached, err := g.repoOutline(ctx, report, repo, target)
		if err != nil {
			return nil, fmt.Errorf("outline %s: %w", repo.RepoFullName, err)
		}
		if cached {
			result.CacheHits++
		}
		result.Repos = append(result.Repos, RepoOutline{
			RepoFullName:  repo.RepoFullName,
			TotalActivity: repo.TotalActivity,
			Target:        target,
			Cached:        cached,
			Text:          text,
		})
	}

	totalWords := 0
	for _, ro := range result.Repos {
		totalWords += textutil.CountWords(ro.Text)
	}
	result.GlobalTarget = globalTarget(g.global, totalWords)
	g.logf("global outline: input_words=%d target=%d", totalWords, result.GlobalTarget)

	global, err := g.globalOutline(ctx, report, result.Repos, result.GlobalTarget)
	if err != nil {
		return nil, fmt.Errorf("global outline: %w", err)
	}
	result.Global = global
	return result, nil
}

// globalTarget scales the merged outline to three quarters of its input,
// floored at 400 words and capped at the configured global budget.
func globalTarget(global, inputWords int) int {
	target := inputWords * 3 / 4
	if target < 400 {
		target = 400
	}
	if target > global {
		target = global
	}
	return target
}

func (g *Generator) repoOutline(ctx context.Context, report *types.Report, repo types.RepoActivity, target int) (string, bool, error) {
	fp := draftcache.Fingerprint(draftcache.RunContext{
		Stage:       "outline_repo",
		User:        report.User,
		WindowStart: report.WindowStart,
		WindowEnd:   report.WindowEnd,
		Target:      target,
		Extra:       map[string]any{"repo": activity.BuildContext(repo, changelogBudget)},
	})
	if g.depthCfg.Continue {
		if entry, ok := g.store.Load(repo.RepoFullName, fp); ok {
			if stage.InWordBand(entry.Draft, target) {
				g.logf("reusing cached outline for %s", repo.RepoFullName)
				return entry.Draft, true, nil
			}
			g.logf("rejecting cached outline for %s: %d words outside band (target=%d)",
				repo.RepoFullName, textutil.CountWords(entry.Draft), target)
		}
	}

	text, err := g.repoOutlineDepth(ctx, report, repo, target)
	if err != nil {
		return "", false, err
	}
	if err := g.store.Save(repo.RepoFullName, fp, draftcache.Entry{Draft: text, Target: target}); err != nil {
		g.logf("outline cache write failed for %s: %v", repo.RepoFullName, err)
	}
	return text, false, nil
}

func (g *Generator) repoOutlineDepth(ctx context.Context, report *types.Report, repo types.RepoActivity, target int) (string, error) {
	generate := func(ctx context.Context) (string, error) {
		return g.repoDraft(ctx, report, repo, target)
	}
	if g.depthCfg.Depth <= 1 {
		return generate(ctx)
	}
	p := &depth.Pipeline{
		Generate:     generate,
		Referee:      stage.Referee(g.client, "repo outline", g.maxTokens),
		Polish:       stage.Polish(g.client, "repo outline", "words", target, g.maxTokens),
		QualityCheck: llm.PayloadIssue,
		Depth:        g.depthCfg.Depth,
		CacheDir:     g.depthCfg.CacheDir,
		CachePrefix:  "outline_repo_" + draftcache.Slug(repo.RepoFullName),
		Continue:     g.depthCfg.Continue,
		Log:          func(msg string) { g.logf("%s", msg) },
	}
	return p.Run(ctx)
}

// repoDraft generates one repo outline draft, retrying once with a trimmed
// changelog budget on context-window overflow and once more if the result
// misses the word band.
func (g *Generator) repoDraft(ctx context.Context, report *types.Report, repo types.RepoActivity, target int) (string, error) {
	rendered, err := g.repoPrompt(report, repo, target, changelogBudget)
	if err != nil {
		return "", err
	}
	raw, err := g.client.Generate(ctx, llm.Request{
		Prompt:    rendered,
		Purpose:   "repo outline",
		MaxTokens: g.maxTokens,
	})
	if err != nil {
		if !llm.IsContextWindowError(err) {
			return "", err
		}
		g.logf("context window exceeded for %s (prompt ~%d chars); retrying with trimmed changelog",
			repo.RepoFullName, len(rendered))
		rendered, err = g.repoPrompt(report, repo, target, changelogBudgetTrimmed)
		if err != nil {
			return "", err
		}
		raw, err = g.client.Generate(ctx, llm.Request{
			Prompt:    rendered,
			Purpose:   "repo outline (trimmed)",
			MaxTokens: g.maxTokens,
		})
		if err != nil {
			return "", err
		}
	}
	draft := textutil.StripXMLWrapper(strings.TrimSpace(raw))
	return stage.EnforceWordBand(ctx, g.client, draft, rendered, "repo outline", target, g.maxTokens, g.logf)
}

func (g *Generator) repoPrompt(report *types.Report, repo types.RepoActivity, target, budget int) (string, error) {
	payload, err := json.MarshalIndent(activity.BuildContext(repo, budget), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal repo context: %w", err)
	}
	return prompt.RenderWithTarget("outline_repo.tmpl", map[string]any{
		"User":        report.User,
		"WindowStart": report.WindowStart,
		"WindowEnd":   report.WindowEnd,
		"TargetWords": target,
		"ContextJSON": string(payload),
	}, target, "words", "repo outline")
}

// shrinkAttempts lists (repo limit, excerpt chars) pairs for building the
// global prompt, largest first. Later attempts are only reached when the
// model rejects the prompt as too large.
var shrinkAttempts = [][2]int{{20, 900}, {12, 600}, {8, 400}, {5, 250}}

func (g *Generator) globalOutline(ctx context.Context, report *types.Report, repos []RepoOutline, target int) (string, error) {
	generate := func(ctx context.Context) (string, error) {
		return g.globalDraft(ctx, report, repos, target)
	}
	if g.depthCfg.Depth <= 1 {
		return generate(ctx)
	}
	p := &depth.Pipeline{
		Generate:     generate,
		Referee:      stage.Referee(g.client, "daily outline", g.maxTokens),
		Polish:       stage.Polish(g.client, "daily outline", "words", target, g.maxTokens),
		QualityCheck: llm.PayloadIssue,
		Depth:        g.depthCfg.Depth,
		CacheDir:     g.depthCfg.CacheDir,
		CachePrefix:  "outline_global",
		Continue:     g.depthCfg.Continue,
		Log:          func(msg string) { g.logf("%s", msg) },
	}
	return p.Run(ctx)
}

func (g *Generator) globalDraft(ctx context.Context, report *types.Report, repos []RepoOutline, target int) (string, error) {
	var lastErr error
	for attempt, shape := range shrinkAttempts {
		rendered, err := g.globalPrompt(report, repos, target, shape[0], shape[1])
		if err != nil {
			return "", err
		}
		g.logf("global outline attempt %d/%d (repo_limit=%d, excerpt_chars=%d)",
			attempt+1, len(shrinkAttempts), shape[0], shape[1])
		raw, err := g.client.Generate(ctx, llm.Request{
			Prompt:    rendered,
			Purpose:   "daily outline",
			MaxTokens: g.maxTokens,
		})
		if err != nil {
			if !llm.IsContextWindowError(err) {
				return "", err
			}
			g.logf("global outline attempt hit context window; retrying with smaller prompt")
			lastErr = err
			continue
		}
		draft := textutil.StripXMLWrapper(strings.TrimSpace(raw))
		return stage.EnforceWordBand(ctx, g.client, draft, rendered, "daily outline", target, g.maxTokens, g.logf)
	}
	return "", fmt.Errorf("global outline exhausted %d prompt sizes: %w", len(shrinkAttempts), lastErr)
}

func (g *Generator) globalPrompt(report *types.Report, repos []RepoOutline, target, repoLimit, excerptChars int) (string, error) {
	type compactRepo struct {
		RepoFullName string `json:"repo_full_name"`
		Activity     int    `json:"total_activity"`
		Excerpt      string `json:"repo_outline_excerpt"`
	}
	compact := make([]compactRepo, 0, repoLimit)
	for _, ro := range repos {
		if len(compact) >= repoLimit {
			break
		}
		excerpt := ro.Text
		if len(excerpt) > excerptChars {
			cut := excerptChars
			for cut > 0 && !utf8.RuneStart(excerpt[cut]) {
				cut--
			}
			excerpt = excerpt[:cut]
		}
		compact = append(compact, compactRepo{
			RepoFullName: ro.RepoFullName,
			Activity:     ro.TotalActivity,
			Excerpt:      excerpt,
		})
	}
	notable := report.NotableCommitMessages
	if len(notable) > 40 {
		notable = notable[:40]
	}
	payload, err := json.MarshalIndent(map[string]any{
		"user":                    report.User,
		"window_start":            report.WindowStart,
		"window_end":              report.WindowEnd,
		"totals":                  report.Totals,
		"repos":                   compact,
		"notable_commit_messages": notable,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal global context: %w", err)
	}
	return prompt.RenderWithTarget("outline_global.tmpl", map[string]any{
		"TargetWords": target,
		"ContextJSON": string(payload),
	}, target, "words", "daily outline")
}
