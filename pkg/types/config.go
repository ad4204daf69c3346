// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"path/filepath"
	"time"
)

// LLMProvider identifies the text-generation backend.
type LLMProvider string

const (
	ProviderOpenAI LLMProvider = "openai"
	ProviderOllama LLMProvider = "ollama"
)

// LLMConfig holds shared settings for stages that call a text-generation backend.
type LLMConfig struct {
	// Provider selects the backend: openai or ollama.
	Provider LLMProvider `json:"provider" yaml:"provider"`

	// Model is the model identifier (e.g. "gpt-4o-mini" or "llama3.1:8b").
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates against hosted backends. Empty for local ones.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the backend endpoint (OpenAI-compatible gateways,
	// non-default Ollama hosts).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxTokens is the per-call generation token limit (default 1200).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// Timeout is the per-request timeout for HTTP backends.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// DepthConfig holds the multi-draft generation dial shared by all stages.
type DepthConfig struct {
	// Depth is the draft redundancy level, 1-4.
	Depth int `json:"depth" yaml:"depth"`

	// CacheDir is the directory for per-run draft cache files.
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`

	// Continue enables reuse of previously cached drafts.
	Continue bool `json:"continue" yaml:"continue"`
}

// OutlineConfig holds settings for the outline stage.
type OutlineConfig struct {
	// GlobalTargetWords is the word target for the compiled daily outline
	// (default 2000).
	GlobalTargetWords int `json:"global_target_words" yaml:"global_target_words"`

	// MinRepoTargetWords is the floor for per-repo outline targets (default 250).
	MinRepoTargetWords int `json:"min_repo_target_words" yaml:"min_repo_target_words"`

	// ShardsDir is the directory for per-repo outline shard files.
	ShardsDir string `json:"shards_dir" yaml:"shards_dir"`
}

// BlogConfig holds settings for the blog stage.
type BlogConfig struct {
	// TargetWords is the blog post word target (default 750).
	TargetWords int `json:"target_words" yaml:"target_words"`

	// RenderHTML additionally writes an HTML rendering next to the Markdown.
	RenderHTML bool `json:"render_html" yaml:"render_html"`
}

// SocialConfig holds settings for the social-post stage.
type SocialConfig struct {
	// CharLimit is the hard character ceiling for the post (default 300).
	CharLimit int `json:"char_limit" yaml:"char_limit"`
}

// PodcastConfig holds settings for the podcast-script stage.
type PodcastConfig struct {
	// Speakers is the number of distinct speakers (default 2).
	Speakers int `json:"speakers" yaml:"speakers"`

	// WordLimit caps the total script length in words (default 1500).
	WordLimit int `json:"word_limit" yaml:"word_limit"`
}

// ChangelogConfig holds settings for long-changelog summarization.
type ChangelogConfig struct {
	// Threshold is the character count above which an entry is summarized
	// (default 6000).
	Threshold int `json:"threshold" yaml:"threshold"`

	// ChunkSize is the characters per chunk (default 2250).
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`

	// Overlap is the shared characters between consecutive chunks (default 250).
	Overlap int `json:"overlap" yaml:"overlap"`
}

// RunLogConfig holds settings for the run history store.
type RunLogConfig struct {
	// Dir is the directory holding the runs database (default the out dir).
	Dir string `json:"dir" yaml:"dir"`
}

// Config is the root configuration for the pipeline CLI.
type Config struct {
	// User is the upstream account whose activity feeds the pipeline.
	User string `json:"user" yaml:"user"`

	// OutDir is the base directory for stage outputs (default "out").
	OutDir string `json:"out_dir" yaml:"out_dir"`

	LLM       LLMConfig       `json:"llm" yaml:"llm"`
	Generate  DepthConfig     `json:"generate" yaml:"generate"`
	Outline   OutlineConfig   `json:"outline" yaml:"outline"`
	Blog      BlogConfig      `json:"blog" yaml:"blog"`
	Social    SocialConfig    `json:"social" yaml:"social"`
	Podcast   PodcastConfig   `json:"podcast" yaml:"podcast"`
	Changelog ChangelogConfig `json:"changelog" yaml:"changelog"`
	RunLog    RunLogConfig    `json:"runlog" yaml:"runlog"`
}

// ApplyDefaults fills zero-valued fields with their documented defaults.
func (c *Config) ApplyDefaults() {
	if c.OutDir == "" {
		c.OutDir = "out"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = ProviderOllama
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = 1200
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = 5 * time.Minute
	}
	if c.Generate.Depth <= 0 {
		c.Generate.Depth = 1
	}
	if c.Generate.CacheDir == "" {
		c.Generate.CacheDir = filepath.Join(c.OutDir, "depth_cache")
	}
	if c.Outline.GlobalTargetWords <= 0 {
		c.Outline.GlobalTargetWords = 2000
	}
	if c.Outline.MinRepoTargetWords <= 0 {
		c.Outline.MinRepoTargetWords = 250
	}
	if c.Outline.ShardsDir == "" {
		c.Outline.ShardsDir = filepath.Join(c.OutDir, "outline_repos")
	}
	if c.Blog.TargetWords <= 0 {
		c.Blog.TargetWords = 750
	}
	if c.Social.CharLimit <= 0 {
		c.Social.CharLimit = 300
	}
	if c.Podcast.Speakers <= 0 {
		c.Podcast.Speakers = 2
	}
	if c.Podcast.WordLimit <= 0 {
		c.Podcast.WordLimit = 1500
	}
	if c.Changelog.Threshold <= 0 {
		c.Changelog.Threshold = 6000
	}
	if c.Changelog.ChunkSize <= 0 {
		c.Changelog.ChunkSize = 2250
	}
	if c.Changelog.Overlap <= 0 {
		c.Changelog.Overlap = 250
	}
	if c.RunLog.Dir == "" {
		c.RunLog.Dir = c.OutDir
	}
}
