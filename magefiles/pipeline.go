//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// reportEnv names the environment variable pointing at the activity report.
const reportEnv = "CONTENT_ENGINE_REPORT"

func reportPath() (string, error) {
	path := os.Getenv(reportEnv)
	if path == "" {
		return "", fmt.Errorf("set %s to the JSONL activity report path", reportEnv)
	}
	return path, nil
}

func engine(args ...string) error {
	return sh.RunV(filepath.Join(binDir, binName), args...)
}

// Outline builds the CLI and runs the outline stage on the configured report.
func Outline() error {
	mg.Deps(Build)
	report, err := reportPath()
	if err != nil {
		return err
	}
	return engine("outline", report)
}

// Blog runs the blog stage after the outline stage.
func Blog() error {
	mg.Deps(Outline)
	report, err := reportPath()
	if err != nil {
		return err
	}
	return engine("blog", "--report", report)
}

// Social runs the social stage after the blog stage.
func Social() error {
	mg.Deps(Blog)
	return engine("social")
}

// Podcast runs the podcast stage after the blog stage.
func Podcast() error {
	mg.Deps(Blog)
	return engine("podcast")
}

// Pipeline runs every stage in order: outline, blog, social, podcast.
func Pipeline() error {
	mg.Deps(Social, Podcast)
	return nil
}
