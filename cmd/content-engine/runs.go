// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vosslab/content-engine/internal/runlog"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect the stage run history",
	Long: `Runs manages the run history database. Every stage run is recorded
with its depth, output path, word count, duration, and whether the
output degraded to a fallback.`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded stage runs, newest first",
	RunE:  runRunsList,
}

func init() {
	runsListCmd.Flags().String("stage", "", "filter by stage name (outline, blog, social, podcast, changelog)")
	runsListCmd.Flags().Int("limit", 20, "maximum runs to list (0 = all)")
	runsListCmd.Flags().Bool("json", false, "output runs as JSON")

	runsCmd.AddCommand(runsListCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRunsList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := runlog.NewStore(cfg.RunLog.Dir)
	if err != nil {
		return err
	}
	defer store.Close()

	stageFilter, _ := cmd.Flags().GetString("stage")
	limit, _ := cmd.Flags().GetInt("limit")

	records, err := store.List(context.Background(), stageFilter, limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-10s  %-5s  %-6s  %-9s  %-8s  %s\n",
		"Started", "Stage", "Depth", "Words", "Duration", "Degraded", "Output")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))

	for _, r := range records {
		degraded := ""
		if r.Degraded {
			degraded = "yes"
		}
		fmt.Fprintf(os.Stdout, "%-20s  %-10s  %-5d  %-6d  %-9s  %-8s  %s\n",
			r.CreatedAt.Format("2006-01-02 15:04:05"), r.Stage, r.Depth,
			r.Words, r.Duration.Round(10*time.Millisecond), degraded, r.OutputPath)
	}

	fmt.Fprintf(os.Stdout, "\n%d runs\n", len(records))
	return nil
}
