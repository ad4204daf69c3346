// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package outline

import (
	"os"
	"path/filepath"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/vosslab/content-engine/pkg/types"
)

func TestWriteShards(t *testing.T) {
	dir := t.TempDir()
	report := &types.Report{
		User:        "voss",
		WindowStart: "2026-08-01T00:00:00Z",
		WindowEnd:   "2026-08-08T00:00:00Z",
		Repos: []types.RepoActivity{
			{RepoFullName: "voss/alpha", RepoName: "alpha", CommitCount: 2, TotalActivity: 4},
			{RepoFullName: "voss/beta", RepoName: "beta", CommitCount: 1, TotalActivity: 1},
		},
	}
	result := &Result{
		Repos: []RepoOutline{
			{RepoFullName: "voss/alpha", TotalActivity: 4, Target: 400, Text: "alpha outline"},
			{RepoFullName: "voss/beta", TotalActivity: 1, Target: 100, Text: "beta outline"},
		},
	}

	indexPath, err := WriteShards(dir, report, result)
	if err != nil {
		t.Fatalf("WriteShards: %v", err)
	}
	if indexPath != filepath.Join(dir, "index.yaml") {
		t.Errorf("index path = %q", indexPath)
	}

	var index ShardIndex
	readYAML(t, indexPath, &index)
	if index.RepoCount != 2 || len(index.Shards) != 2 {
		t.Fatalf("index = %+v", index)
	}
	if index.Shards[0].Path != "001_voss__alpha.yaml" {
		t.Errorf("shard path = %q", index.Shards[0].Path)
	}

	var shard Shard
	readYAML(t, filepath.Join(dir, index.Shards[0].Path), &shard)
	if shard.RepoRank != 1 || shard.RepoTotal != 2 {
		t.Errorf("shard rank = %d/%d", shard.RepoRank, shard.RepoTotal)
	}
	if shard.Outline != "alpha outline" {
		t.Errorf("shard outline = %q", shard.Outline)
	}
	if shard.Activity.CommitCount != 2 {
		t.Errorf("shard activity = %+v", shard.Activity)
	}
}

func readYAML(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		t.Fatalf("unmarshal %s: %v", path, err)
	}
}
