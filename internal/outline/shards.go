// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package outline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/vosslab/content-engine/internal/draftcache"
	"github.com/vosslab/content-engine/pkg/types"
)

// Shard is one per-repository outline file, self-describing enough to be
// consumed without the index.
type Shard struct {
	GeneratedAt string             `yaml:"generated_at"`
	User        string             `yaml:"user"`
	WindowStart string             `yaml:"window_start"`
	WindowEnd   string             `yaml:"window_end"`
	RepoRank    int                `yaml:"repo_rank"`
	RepoTotal   int                `yaml:"repo_total"`
	Activity    types.RepoActivity `yaml:"repo_activity"`
	Outline     string             `yaml:"outline"`
}

// ShardIndex is the manifest written next to the shards.
type ShardIndex struct {
	GeneratedAt string           `yaml:"generated_at"`
	User        string           `yaml:"user"`
	WindowStart string           `yaml:"window_start"`
	WindowEnd   string           `yaml:"window_end"`
	RepoCount   int              `yaml:"repo_count"`
	Shards      []ShardIndexItem `yaml:"shards"`
}

type ShardIndexItem struct {
	RepoFullName  string `yaml:"repo_full_name"`
	RepoRank      int    `yaml:"repo_rank"`
	TotalActivity int    `yaml:"total_activity"`
	Path          string `yaml:"path"`
}

// WriteShards writes one YAML shard per repository plus an index manifest,
// and returns the manifest path.
func WriteShards(dir string, report *types.Report, result *Result) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create shards dir: %w", err)
	}
	generatedAt := time.Now().UTC().Format(time.RFC3339)

	index := ShardIndex{
		GeneratedAt: generatedAt,
		User:        report.User,
		WindowStart: report.WindowStart,
		WindowEnd:   report.WindowEnd,
		RepoCount:   len(result.Repos),
	}
	for i, ro := range result.Repos {
		name := fmt.Sprintf("%03d_%s.yaml", i+1, draftcache.Slug(ro.RepoFullName))
		path := filepath.Join(dir, name)
		shard := Shard{
			GeneratedAt: generatedAt,
			User:        report.User,
			WindowStart: report.WindowStart,
			WindowEnd:   report.WindowEnd,
			RepoRank:    i + 1,
			RepoTotal:   len(result.Repos),
			Activity:    repoByName(report, ro.RepoFullName),
			Outline:     ro.Text,
		}
		if err := writeYAML(path, shard); err != nil {
			return "", fmt.Errorf("write shard %s: %w", name, err)
		}
		index.Shards = append(index.Shards, ShardIndexItem{
			RepoFullName:  ro.RepoFullName,
			RepoRank:      i + 1,
			TotalActivity: ro.TotalActivity,
			Path:          name,
		})
	}

	indexPath := filepath.Join(dir, "index.yaml")
	if err := writeYAML(indexPath, index); err != nil {
		return "", fmt.Errorf("write shard index: %w", err)
	}
	return indexPath, nil
}

func repoByName(report *types.Report, fullName string) types.RepoActivity {
	for _, repo := range report.Repos {
		if repo.RepoFullName == fullName {
			return repo
		}
	}
	return types.RepoActivity{RepoFullName: fullName}
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
