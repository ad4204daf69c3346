// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vosslab/content-engine/internal/activity"
	"github.com/vosslab/content-engine/internal/changelog"
)

var changelogCmd = &cobra.Command{
	Use:   "changelog [report.jsonl]",
	Short: "Condense oversized changelog entries in an activity report",
	Long: `Changelog reads a JSONL activity report and rewrites changelog entries
above the configured character threshold as chunked summaries. The
condensed report is written as JSON for inspection or downstream use.

The outline stage condenses entries itself; this command exists to
precompute or audit the condensation separately.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChangelog,
}

func init() {
	changelogCmd.Flags().String("report", "", "path to the JSONL activity report")

	rootCmd.AddCommand(changelogCmd)
}

func runChangelog(cmd *cobra.Command, args []string) error {
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
	logf := stageLogf("changelog")

	report, err := activity.LoadReport(reportPath)
	if err != nil {
		return err
	}

	oversized := 0
	for _, repo := range report.Repos {
		for _, entry := range repo.ChangelogEntries {
			if len(entry.EntryText) > cfg.Changelog.Threshold {
				oversized++
			}
		}
	}
	logf("report has %d changelog entries over %d chars", oversized, cfg.Changelog.Threshold)

	ctx := context.Background()
	summarizer := changelog.NewSummarizer(client, cfg, func(msg string) { logf("%s", msg) })
	started := time.Now()
	err = withCacheLock(cfg.Generate.CacheDir, func() error {
		for i := range report.Repos {
			if err := summarizer.CondenseRepo(ctx, &report.Repos[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal condensed report: %w", err)
	}
	outPath := filepath.Join(cfg.OutDir, "condensed_report.json")
	if err := writeOutput(outPath, string(payload)+"\n"); err != nil {
		return err
	}

	recordRun(cfg, runlogRecord("changelog", cfg.Generate.Depth, outPath,
		oversized, time.Since(started), false))

	fmt.Printf("Condensed %d oversized entries; wrote %s\n", oversized, outPath)
	return nil
}
