// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package depth

import (
	"context"
	"fmt"
)

// GenerateFunc produces one candidate draft. It is called once per draft
// index that misses the cache.
type GenerateFunc func(ctx context.Context) (string, error)

// RefereeFunc compares two drafts and returns raw output containing a
// <winner> marker naming labelA or labelB. Implementations may swap which
// draft is presented first as long as the labels travel with their drafts.
type RefereeFunc func(ctx context.Context, draftA, draftB, labelA, labelB string) (string, error)

// PolishFunc merges surviving drafts into one finished text. The depth value
// is passed through so prompts can mention the redundancy level.
type PolishFunc func(ctx context.Context, drafts []string, depth int) (string, error)

// QualityFunc inspects a polished result. It returns "" when the text is
// acceptable and a short issue description otherwise.
type QualityFunc func(text string) string

// LogFunc receives progress lines. It is observational only.
type LogFunc func(msg string)

// Pipeline is one configured multi-draft generation run. Construct a fresh
// value per run and share nothing; the only state that outlives Run is the
// cache directory.
type Pipeline struct {
	// Generate produces one draft. Required.
	Generate GenerateFunc

	// Referee compares bracket pairs. Required only at depth 4.
	Referee RefereeFunc

	// Polish merges drafts. Required at depth 2 and above.
	Polish PolishFunc

	// QualityCheck gates the polished result. Required at depth 2 and above.
	QualityCheck QualityFunc

	// Depth is the draft redundancy level, 1-4.
	Depth int

	// CacheDir and CachePrefix key the per-run draft cache.
	CacheDir    string
	CachePrefix string

	// Continue reuses cached drafts instead of regenerating them.
	Continue bool

	// Log receives progress lines. Optional.
	Log LogFunc
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.Log != nil {
		p.Log(fmt.Sprintf(format, args...))
	}
}

// Run executes the pipeline: generate (or load) drafts in index order, run
// the referee bracket at depth 4, polish at depth 2 and above, and gate the
// polished result. A failed quality check degrades to the best pre-polish
// draft instead of failing the run. Errors from the injected capabilities
// propagate unmodified; the only error Run raises on its own is an invalid
// depth, detected before any capability call.
func (p *Pipeline) Run(ctx context.Context) (string, error) {
	if err := Validate(p.Depth); err != nil {
		return "", err
	}
	count := DraftCount(p.Depth)

	drafts := make([]string, 0, count)
	for i := 0; i < count; i++ {
		file := cachePath(p.CacheDir, p.CachePrefix, p.Depth, i)
		if p.Continue {
			if cached, ok := loadCachedDraft(file); ok {
				p.logf("Loaded cached draft %d/%d", i+1, count)
				drafts = append(drafts, cached)
				continue
			}
		}
		p.logf("Generating draft %d/%d", i+1, count)
		draft, err := p.Generate(ctx)
		if err != nil {
			return "", err
		}
		if err := saveDraft(file, draft); err != nil {
			// Cache persistence is opportunistic; a failed write costs a
			// regeneration on the next run, nothing more.
			p.logf("Draft cache write failed: %v", err)
		}
		drafts = append(drafts, draft)
	}

	if p.Depth == 1 {
		return drafts[0], nil
	}

	bestUnpolished := drafts[0]
	forPolish := drafts
	if NeedsReferee(p.Depth) {
		p.logf("Running referee brackets")
		brackets := BuildBrackets(drafts)
		winners := make([]string, 0, len(brackets))
		for idx, b := range brackets {
			labelA := fmt.Sprintf("Draft %d", idx*2+1)
			labelB := fmt.Sprintf("Draft %d", idx*2+2)
			raw, err := p.Referee(ctx, b.A, b.B, labelA, labelB)
			if err != nil {
				return "", err
			}
			winner, diag := ParseWinner(raw, labelA, labelB)
			if diag != "" {
				p.logf("WARNING: %s", diag)
			}
			if winner == labelA {
				winners = append(winners, b.A)
			} else {
				winners = append(winners, b.B)
			}
		}
		forPolish = winners
		bestUnpolished = winners[0]
	}

	p.logf("Running polish pass")
	polished, err := p.Polish(ctx, forPolish, p.Depth)
	if err != nil {
		return "", err
	}

	if issue := p.QualityCheck(polished); issue != "" {
		p.logf("Quality check failed: %s; falling back to best unpolished draft", issue)
		return bestUnpolished, nil
	}
	return polished, nil
}
