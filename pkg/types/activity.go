// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ChangelogEntry is one dated changelog section collected for a repository.
type ChangelogEntry struct {
	// Heading is the entry heading as it appears in the changelog file.
	Heading string `json:"heading" yaml:"heading"`

	// EntryText is the entry body. May be replaced by a shorter summary
	// when the original exceeds the summarization threshold.
	EntryText string `json:"entry_text" yaml:"entry_text"`

	// Date is the entry date in YYYY-MM-DD form when one could be parsed.
	Date string `json:"date,omitempty" yaml:"date,omitempty"`
}

// RepoActivity aggregates one repository's activity inside a report window.
type RepoActivity struct {
	// RepoFullName is the owner-qualified name (e.g. "vosslab/content-engine").
	RepoFullName string `json:"repo_full_name" yaml:"repo_full_name"`

	// RepoName is the bare repository name.
	RepoName string `json:"repo_name" yaml:"repo_name"`

	// Description is the repository description, if any.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Language is the repository's dominant language, if known.
	Language string `json:"language,omitempty" yaml:"language,omitempty"`

	CommitCount      int `json:"commit_count" yaml:"commit_count"`
	IssueCount       int `json:"issue_count" yaml:"issue_count"`
	PullRequestCount int `json:"pull_request_count" yaml:"pull_request_count"`

	// TotalActivity is the sum of commit, issue, and pull request counts.
	TotalActivity int `json:"total_activity" yaml:"total_activity"`

	// LatestEventTime is the most recent event timestamp (RFC 3339).
	LatestEventTime string `json:"latest_event_time,omitempty" yaml:"latest_event_time,omitempty"`

	CommitMessages    []string `json:"commit_messages,omitempty" yaml:"commit_messages,omitempty"`
	IssueTitles       []string `json:"issue_titles,omitempty" yaml:"issue_titles,omitempty"`
	PullRequestTitles []string `json:"pull_request_titles,omitempty" yaml:"pull_request_titles,omitempty"`

	ChangelogEntries []ChangelogEntry `json:"changelog_entries,omitempty" yaml:"changelog_entries,omitempty"`
}

// Report is one window of upstream activity, bucketed per repository.
// Reports are produced by an external fetcher and loaded from JSONL exports.
type Report struct {
	// User is the account the activity belongs to.
	User string `json:"user" yaml:"user"`

	// WindowStart and WindowEnd bound the report window (RFC 3339).
	WindowStart string `json:"window_start" yaml:"window_start"`
	WindowEnd   string `json:"window_end" yaml:"window_end"`

	// Totals maps event kinds (commits, issues, pull_requests) to counts.
	Totals map[string]int `json:"totals" yaml:"totals"`

	// Repos lists per-repository activity, most active first.
	Repos []RepoActivity `json:"repos" yaml:"repos"`

	// NotableCommitMessages collects standout commit messages across repos.
	NotableCommitMessages []string `json:"notable_commit_messages,omitempty" yaml:"notable_commit_messages,omitempty"`
}
