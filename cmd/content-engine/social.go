// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vosslab/content-engine/internal/social"
	"github.com/vosslab/content-engine/internal/textutil"
)

var socialCmd = &cobra.Command{
	Use:   "social",
	Short: "Write a one-line social post from the blog post",
	Long: `Social condenses the blog post into a single plain-text line within
the configured character limit. A failed generation falls back to a
deterministic post built from the blog title and first sentence, so the
stage always produces something postable.`,
	RunE: runSocial,
}

func init() {
	socialCmd.Flags().String("blog", "", "path to the blog post (default: <out-dir>/blog_post.md)")

	rootCmd.AddCommand(socialCmd)
}

func runSocial(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	logf := stageLogf("social")

	blogPath, _ := cmd.Flags().GetString("blog")
	if blogPath == "" {
		blogPath = filepath.Join(cfg.OutDir, "blog_post.md")
	}
	blogText, err := os.ReadFile(blogPath)
	if err != nil {
		return fmt.Errorf("read blog post: %w", err)
	}

	gen := social.NewGenerator(client, cfg, logf)
	started := time.Now()

	var result *social.Result
	err = withCacheLock(cfg.Generate.CacheDir, func() error {
		var runErr error
		result, runErr = gen.Run(context.Background(), string(blogText))
		return runErr
	})
	if err != nil {
		return err
	}

	outPath := filepath.Join(cfg.OutDir, "social_post.txt")
	if err := writeOutput(outPath, result.Text+"\n"); err != nil {
		return err
	}

	recordRun(cfg, runlogRecord("social", cfg.Generate.Depth, outPath,
		textutil.CountWords(result.Text), time.Since(started), result.Fallback))

	note := ""
	if result.Fallback {
		note = " (fallback)"
	} else if result.Trimmed {
		note = " (trimmed)"
	}
	fmt.Printf("Wrote social post (%d chars)%s to %s\n", len(result.Text), note, outPath)
	return nil
}
