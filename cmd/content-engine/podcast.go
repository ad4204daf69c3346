// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vosslab/content-engine/internal/podcast"
)

var podcastCmd = &cobra.Command{
	Use:   "podcast",
	Short: "Write a multi-speaker podcast script from the blog post",
	Long: `Podcast turns the blog post into a SPEAKER: text script for the
configured number of speakers, capped at the configured word limit.
A failed generation falls back to a deterministic script built from the
blog paragraphs, so the stage always produces a readable script.`,
	RunE: runPodcast,
}

func init() {
	podcastCmd.Flags().String("blog", "", "path to the blog post (default: <out-dir>/blog_post.md)")

	rootCmd.AddCommand(podcastCmd)
}

func runPodcast(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	logf := stageLogf("podcast")

	blogPath, _ := cmd.Flags().GetString("blog")
	if blogPath == "" {
		blogPath = filepath.Join(cfg.OutDir, "blog_post.md")
	}
	blogText, err := os.ReadFile(blogPath)
	if err != nil {
		return fmt.Errorf("read blog post: %w", err)
	}

	gen := podcast.NewGenerator(client, cfg, logf)
	started := time.Now()

	var result *podcast.Result
	err = withCacheLock(cfg.Generate.CacheDir, func() error {
		var runErr error
		result, runErr = gen.Run(context.Background(), string(blogText))
		return runErr
	})
	if err != nil {
		return err
	}

	outPath := filepath.Join(cfg.OutDir, "podcast_script.txt")
	if err := writeOutput(outPath, result.Script); err != nil {
		return err
	}

	recordRun(cfg, runlogRecord("podcast", cfg.Generate.Depth, outPath,
		result.Words, time.Since(started), result.Fallback))

	note := ""
	if result.Fallback {
		note = " (fallback)"
	}
	fmt.Printf("Wrote podcast script (%d lines, %d words)%s to %s\n",
		len(result.Lines), result.Words, note, outPath)
	return nil
}
