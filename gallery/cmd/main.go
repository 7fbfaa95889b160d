// Package main provides the update_readme_gallery CLI
// that regenerates the image gallery between the
// AUTO-GALLERY markers of a repository README. Run it
// without arguments from the repository root.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/byte4ever/readme_gallery/gallery"
)

func run() error {
	const errCtx = "update_readme_gallery"

	var (
		root       string
		configFile string
		reportFile string
		limit      int
		check      bool
	)

	flag.StringVar(
		&root, "root", ".",
		"repository root to scan",
	)

	flag.StringVar(
		&configFile, "config", "",
		"YAML file overriding the built-in settings",
	)

	flag.IntVar(
		&limit, "limit", -1,
		"keep only the last N images (0 keeps all, "+
			"negative uses the config value)",
	)

	flag.BoolVar(
		&check, "check", false,
		"do not write; fail when the README is stale",
	)

	flag.StringVar(
		&reportFile, "report", "",
		"write a JSON report to this file (- for stdout)",
	)

	flag.Parse()

	cfg, err := gallery.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if limit >= 0 {
		cfg.Limit = limit
	}

	rep, err := gallery.Run(
		root, cfg, gallery.Options{Check: check},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if reportFile != "" {
		if err := writeReport(reportFile, rep); err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}
	}

	if rep.Status == gallery.StatusStale {
		return fmt.Errorf(
			"%s: %s is out of date, rerun without -check",
			errCtx, rep.Readme,
		)
	}

	return nil
}

func writeReport(path string, rep gallery.Report) error {
	const errCtx = "writing report"

	out, err := rep.JSON()
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if path == "-" {
		if _, err := os.Stdout.Write(out); err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}

		return nil
	}

	//nolint:gosec // path from CLI flag
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
