// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vosslab/content-engine/internal/activity"
	"github.com/vosslab/content-engine/internal/blogpost"
	"github.com/vosslab/content-engine/internal/textutil"
)

var blogCmd = &cobra.Command{
	Use:   "blog",
	Short: "Write a blog post from the daily outline",
	Long: `Blog expands the daily outline into a Markdown blog post. The post is
fingerprint-cached against the outline text, so re-running over an
unchanged outline reuses the previous post.

With render_html enabled in config, an HTML rendering is written next to
the Markdown.`,
	RunE: runBlog,
}

func init() {
	blogCmd.Flags().String("report", "", "path to the JSONL activity report")
	blogCmd.Flags().String("outline", "", "path to the daily outline (default: <out-dir>/daily_outline.md)")

	rootCmd.AddCommand(blogCmd)
}

func runBlog(cmd *cobra.Command, args []string) error {
	reportPath, _ := cmd.Flags().GetString("report")
	if reportPath == "" {
		return fmt.Errorf("provide the activity report path with --report")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	logf := stageLogf("blog")

	report, err := activity.LoadReport(reportPath)
	if err != nil {
		return err
	}

	outlinePath, _ := cmd.Flags().GetString("outline")
	if outlinePath == "" {
		outlinePath = filepath.Join(cfg.OutDir, "daily_outline.md")
	}
	outlineText, err := os.ReadFile(outlinePath)
	if err != nil {
		return fmt.Errorf("read outline: %w", err)
	}

	gen := blogpost.NewGenerator(client, cfg, logf)
	started := time.Now()

	var result *blogpost.Result
	err = withCacheLock(cfg.Generate.CacheDir, func() error {
		var runErr error
		result, runErr = gen.Run(context.Background(), report, string(outlineText))
		return runErr
	})
	if err != nil {
		return err
	}

	outPath := filepath.Join(cfg.OutDir, "blog_post.md")
	if err := writeOutput(outPath, result.Markdown+"\n"); err != nil {
		return err
	}
	if cfg.Blog.RenderHTML {
		html, err := blogpost.RenderHTML(result.Title, result.Markdown)
		if err != nil {
			return fmt.Errorf("render html: %w", err)
		}
		htmlPath := filepath.Join(cfg.OutDir, "blog_post.html")
		if err := writeOutput(htmlPath, html); err != nil {
			return err
		}
		logf("wrote HTML rendering to %s", htmlPath)
	}

	recordRun(cfg, runlogRecord("blog", cfg.Generate.Depth, outPath,
		textutil.CountWords(result.Markdown), time.Since(started), false))

	cached := ""
	if result.Cached {
		cached = " (cached)"
	}
	fmt.Printf("Wrote blog post %q (%d words)%s to %s\n",
		result.Title, textutil.CountWords(result.Markdown), cached, outPath)
	return nil
}
