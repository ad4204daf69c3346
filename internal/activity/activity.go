// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package activity loads activity reports from JSONL exports produced by
// the upstream fetcher and distills them into compact prompt contexts.
package activity

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/vosslab/content-engine/pkg/types"
)

// Per-repo caps applied when building prompt context. Lists longer than
// these are truncated so a single busy repository cannot flood the prompt.
const (
	maxContextMessages  = 30
	maxChangelogEntries = 3
)

// record is one JSONL line from the fetcher export. Fields are a union
// across record types; absent fields decode to zero values.
type record struct {
	RecordType    string          `json:"record_type"`
	User          string          `json:"user"`
	WindowStart   string          `json:"window_start"`
	WindowEnd     string          `json:"window_end"`
	RepoFullName  string          `json:"repo_full_name"`
	RepoName      string          `json:"repo_name"`
	EventTime     string          `json:"event_time"`
	Message       string          `json:"message"`
	Title         string          `json:"title"`
	LatestHeading string          `json:"latest_heading"`
	LatestEntry   string          `json:"latest_entry"`
	Data          json.RawMessage `json:"data"`
}

// repoData is the nested payload of a "repo" record.
type repoData struct {
	Name        string `json:"name"`
	HTMLURL     string `json:"html_url"`
	Description string `json:"description"`
	Language    string `json:"language"`
}

// LoadReport parses a JSONL export into a Report. Repositories with no
// commits in the window are dropped; the rest sort most active first.
func LoadReport(path string) (*types.Report, error) {
	handle, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open activity export: %w", err)
	}
	defer handle.Close()

	report := &types.Report{Totals: map[string]int{}}
	buckets := map[string]*types.RepoActivity{}

	scanner := bufio.NewScanner(handle)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("parse export line %d: %w", lineNo, err)
		}
		applyRecord(report, buckets, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read activity export: %w", err)
	}

	finishReport(report, buckets)
	return report, nil
}

func applyRecord(report *types.Report, buckets map[string]*types.RepoActivity, rec record) {
	if rec.User != "" {
		report.User = rec.User
	}
	if rec.WindowStart != "" {
		report.WindowStart = rec.WindowStart
	}
	if rec.WindowEnd != "" {
		report.WindowEnd = rec.WindowEnd
	}
	switch rec.RecordType {
	case "run_metadata", "run_summary":
		return
	}
	if rec.RepoFullName == "" {
		return
	}

	bucket := buckets[rec.RepoFullName]
	if bucket == nil {
		name := rec.RepoName
		if name == "" {
			name = rec.RepoFullName
		}
		bucket = &types.RepoActivity{RepoFullName: rec.RepoFullName, RepoName: name}
		buckets[rec.RepoFullName] = bucket
	}
	if rec.EventTime > bucket.LatestEventTime {
		bucket.LatestEventTime = rec.EventTime
	}

	switch rec.RecordType {
	case "repo":
		report.Totals["repo_records"]++
		var data repoData
		if len(rec.Data) > 0 {
			// repo metadata is best effort; a malformed payload only
			// loses the description fields
			_ = json.Unmarshal(rec.Data, &data)
		}
		if data.Name != "" {
			bucket.RepoName = data.Name
		}
		if data.Description != "" {
			bucket.Description = data.Description
		}
		if data.Language != "" {
			bucket.Language = data.Language
		}
	case "commit":
		report.Totals["commit_records"]++
		bucket.CommitCount++
		if msg := headMessageLines(rec.Message, 3); msg != "" {
			bucket.CommitMessages = append(bucket.CommitMessages, msg)
		}
	case "issue":
		report.Totals["issue_records"]++
		bucket.IssueCount++
		if title := strings.TrimSpace(rec.Title); title != "" {
			bucket.IssueTitles = append(bucket.IssueTitles, title)
		}
	case "pull_request":
		report.Totals["pull_request_records"]++
		bucket.PullRequestCount++
		if title := strings.TrimSpace(rec.Title); title != "" {
			bucket.PullRequestTitles = append(bucket.PullRequestTitles, title)
		}
	case "repo_changelog":
		report.Totals["changelog_records"]++
		entry := strings.TrimSpace(rec.LatestEntry)
		if entry == "" {
			return
		}
		bucket.ChangelogEntries = append(bucket.ChangelogEntries, types.ChangelogEntry{
			Heading:   strings.TrimSpace(rec.LatestHeading),
			EntryText: entry,
			Date:      strings.TrimSpace(rec.EventTime),
		})
	}
}

// headMessageLines keeps the first n non-empty lines of a commit message,
// joined with spaces. Subjects alone are often too thin for prompts.
func headMessageLines(message string, n int) string {
	var kept []string
	for _, line := range strings.Split(message, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		kept = append(kept, line)
		if len(kept) >= n {
			break
		}
	}
	return strings.Join(kept, " ")
}

func finishReport(report *types.Report, buckets map[string]*types.RepoActivity) {
	repos := make([]types.RepoActivity, 0, len(buckets))
	for _, bucket := range buckets {
		bucket.TotalActivity = bucket.CommitCount + bucket.IssueCount + bucket.PullRequestCount
		if bucket.CommitCount < 1 {
			continue
		}
		repos = append(repos, *bucket)
	}
	sort.Slice(repos, func(i, j int) bool {
		if repos[i].TotalActivity != repos[j].TotalActivity {
			return repos[i].TotalActivity > repos[j].TotalActivity
		}
		if repos[i].CommitCount != repos[j].CommitCount {
			return repos[i].CommitCount > repos[j].CommitCount
		}
		return repos[i].RepoFullName > repos[j].RepoFullName
	})
	report.Repos = repos
	report.NotableCommitMessages = notableMessages(repos, 30)
}

// notableMessages collects up to limit distinct commit messages, walking
// repositories most active first.
func notableMessages(repos []types.RepoActivity, limit int) []string {
	seen := map[string]bool{}
	var notable []string
	for _, repo := range repos {
		for _, msg := range repo.CommitMessages {
			if seen[msg] {
				continue
			}
			seen[msg] = true
			notable = append(notable, msg)
			if len(notable) >= limit {
				return notable
			}
		}
	}
	return notable
}

// Context is the compact per-repository payload embedded in prompts.
type Context struct {
	RepoFullName      string                 `json:"repo_full_name"`
	RepoName          string                 `json:"repo_name"`
	Description       string                 `json:"description,omitempty"`
	Language          string                 `json:"language,omitempty"`
	CommitCount       int                    `json:"commit_count"`
	IssueCount        int                    `json:"issue_count"`
	PullRequestCount  int                    `json:"pull_request_count"`
	TotalActivity     int                    `json:"total_activity"`
	LatestEventTime   string                 `json:"latest_event_time,omitempty"`
	CommitMessages    []string               `json:"commit_messages,omitempty"`
	IssueTitles       []string               `json:"issue_titles,omitempty"`
	PullRequestTitles []string               `json:"pull_request_titles,omitempty"`
	ChangelogEntries  []types.ChangelogEntry `json:"changelog_entries,omitempty"`
}

// BuildContext compacts one repository bucket for prompt embedding.
// changelogCharBudget bounds the total changelog text carried over.
func BuildContext(repo types.RepoActivity, changelogCharBudget int) Context {
	return Context{
		RepoFullName:      repo.RepoFullName,
		RepoName:          repo.RepoName,
		Description:       repo.Description,
		Language:          repo.Language,
		CommitCount:       repo.CommitCount,
		IssueCount:        repo.IssueCount,
		PullRequestCount:  repo.PullRequestCount,
		TotalActivity:     repo.TotalActivity,
		LatestEventTime:   repo.LatestEventTime,
		CommitMessages:    capList(repo.CommitMessages, maxContextMessages),
		IssueTitles:       capList(repo.IssueTitles, maxContextMessages),
		PullRequestTitles: capList(repo.PullRequestTitles, maxContextMessages),
		ChangelogEntries:  truncateChangelog(repo.ChangelogEntries, maxChangelogEntries, changelogCharBudget),
	}
}

// ShrunkContext rebuilds a context with tighter caps. Used when a prompt
// overflows the model's context window and needs to get smaller.
func ShrunkContext(repo types.RepoActivity, maxMessages, changelogCharBudget int) Context {
	ctx := BuildContext(repo, changelogCharBudget)
	ctx.CommitMessages = capList(ctx.CommitMessages, maxMessages)
	ctx.IssueTitles = capList(ctx.IssueTitles, maxMessages)
	ctx.PullRequestTitles = capList(ctx.PullRequestTitles, maxMessages)
	return ctx
}

func capList(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

// truncateChangelog keeps at most maxEntries entries within a shared
// character budget. The entry that crosses the budget is cut at the
// boundary with an ellipsis; later entries are dropped.
func truncateChangelog(entries []types.ChangelogEntry, maxEntries, charBudget int) []types.ChangelogEntry {
	var result []types.ChangelogEntry
	used := 0
	for _, entry := range entries {
		if len(result) >= maxEntries {
			break
		}
		remaining := charBudget - used
		if remaining <= 0 {
			break
		}
		text := entry.EntryText
		if len(text) > remaining {
			text = text[:remaining] + "..."
		}
		used += len(text)
		result = append(result, types.ChangelogEntry{
			Heading:   entry.Heading,
			EntryText: text,
			Date:      entry.Date,
		})
	}
	return result
}
