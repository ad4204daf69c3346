// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/gofrs/flock"
	"github.com/spf13/viper"

	"github.com/vosslab/content-engine/internal/llm"
	"github.com/vosslab/content-engine/internal/runlog"
	"github.com/vosslab/content-engine/internal/secrets"
	"github.com/vosslab/content-engine/pkg/types"
)

// loadConfig decodes the viper config into the typed config, applies the
// root-level flag overrides, fills defaults, and merges loaded secrets.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	err := viper.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) { dc.TagName = "yaml" })
	if err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if v, _ := rootCmd.PersistentFlags().GetString("out-dir"); v != "" {
		cfg.OutDir = v
		// Derived paths follow the override unless set explicitly.
		cfg.Generate.CacheDir = ""
		cfg.Outline.ShardsDir = ""
		cfg.RunLog.Dir = ""
	}
	if v, _ := rootCmd.PersistentFlags().GetInt("depth"); v > 0 {
		cfg.Generate.Depth = v
	}
	if v, _ := rootCmd.PersistentFlags().GetBool("continue"); v {
		cfg.Generate.Continue = true
	}

	cfg.ApplyDefaults()
	secrets.Apply(&cfg, loadedSecrets)
	return cfg, nil
}

// stageLogf returns a progress logger writing timestamped lines to stderr.
func stageLogf(stageName string) func(string, ...any) {
	return func(format string, args ...any) {
		ts := time.Now().UTC().Format(time.RFC3339)
		fmt.Fprintf(os.Stderr, "%s [%s] %s\n", ts, stageName, fmt.Sprintf(format, args...))
	}
}

// newClient builds the text-generation client for the configured backend.
func newClient(cfg types.Config) (llm.Client, error) {
	client, err := llm.New(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("llm client: %w", err)
	}
	return client, nil
}

// withCacheLock runs fn while holding an exclusive lock on the draft cache
// directory. Concurrent runs sharing a cache dir would race on draft files,
// so a second run fails fast instead of corrupting the first.
func withCacheLock(cacheDir string, fn func() error) error {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	lock := flock.New(filepath.Join(cacheDir, ".lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire cache lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another content-engine run holds the cache lock in %s", cacheDir)
	}
	defer lock.Unlock()
	return fn()
}

// runlogRecord builds a history record for one finished stage run.
func runlogRecord(stageName string, depth int, outputPath string, words int, dur time.Duration, degraded bool) runlog.Record {
	return runlog.Record{
		Stage:      stageName,
		Depth:      depth,
		OutputPath: outputPath,
		Words:      words,
		Duration:   dur,
		Degraded:   degraded,
	}
}

// recordRun appends a stage run to the run history. Recording is
// best-effort: a failure warns on stderr and never fails the stage.
func recordRun(cfg types.Config, r runlog.Record) {
	store, err := runlog.NewStore(cfg.RunLog.Dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: run history unavailable: %v\n", err)
		return
	}
	defer store.Close()
	if _, err := store.Record(context.Background(), r); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to record run: %v\n", err)
	}
}

// writeOutput writes a stage output file, creating the out dir as needed.
func writeOutput(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
