// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vosslab/content-engine/internal/activity"
	"github.com/vosslab/content-engine/internal/changelog"
	"github.com/vosslab/content-engine/internal/outline"
	"github.com/vosslab/content-engine/internal/textutil"
)

var outlineCmd = &cobra.Command{
	Use:   "outline [report.jsonl]",
	Short: "Turn an activity report into per-repo outlines and a daily outline",
	Long: `Outline reads a JSONL activity report, generates one outline per
repository scaled to that repository's activity, and merges them into a
single daily outline. Per-repo outlines are written as YAML shards; the
daily outline is written as Markdown.

Oversized changelog entries are condensed before generation so they fit
the model's context window.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOutline,
}

func init() {
	outlineCmd.Flags().String("report", "", "path to the JSONL activity report")

	rootCmd.AddCommand(outlineCmd)
}

func runOutline(cmd *cobra.Command, args []string) error {
	reportPath, _ := cmd.Flags().GetString("report")
	if reportPath == "" && len(args) > 0 {
		reportPath = args[0]
	}
	if reportPath == "" {
		return fmt.Errorf("provide the activity report path (argument or --report)")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	logf := stageLogf("outline")

	report, err := activity.LoadReport(reportPath)
	if err != nil {
		return err
	}
	logf("loaded report: user=%s repos=%d window=%s..%s",
		report.User, len(report.Repos), report.WindowStart, report.WindowEnd)

	ctx := context.Background()
	summarizer := changelog.NewSummarizer(client, cfg, func(msg string) { logf("%s", msg) })
	gen := outline.NewGenerator(client, cfg, logf)
	started := time.Now()

	var result *outline.Result
	err = withCacheLock(cfg.Generate.CacheDir, func() error {
		for i := range report.Repos {
			if err := summarizer.CondenseRepo(ctx, &report.Repos[i]); err != nil {
				return err
			}
		}
		var runErr error
		result, runErr = gen.Run(ctx, report)
		return runErr
	})
	if err != nil {
		return err
	}

	indexPath, err := outline.WriteShards(cfg.Outline.ShardsDir, report, result)
	if err != nil {
		return err
	}
	outPath := filepath.Join(cfg.OutDir, "daily_outline.md")
	if err := writeOutput(outPath, result.Global+"\n"); err != nil {
		return err
	}

	recordRun(cfg, runlogRecord("outline", cfg.Generate.Depth, outPath,
		textutil.CountWords(result.Global), time.Since(started), false))

	fmt.Printf("Wrote %d repo outline shards (%d cached) to %s\n",
		len(result.Repos), result.CacheHits, indexPath)
	fmt.Printf("Wrote daily outline (%d words, target %d) to %s\n",
		textutil.CountWords(result.Global), result.GlobalTarget, outPath)
	return nil
}
