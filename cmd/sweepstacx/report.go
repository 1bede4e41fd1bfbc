package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/sourcegraph/conc"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/sweepstacx/internal/cache"
	"github.com/panbanda/sweepstacx/internal/output"
	"github.com/panbanda/sweepstacx/pkg/models"
)

func reportCmd() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Generate Markdown + JSON report from the last scan",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "out",
				Usage: "Output base filename, no extension (default from config)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print JSON to stdout (no files written)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Print to stdout instead of writing files: text, markdown, json, toon, yaml",
			},
		},
		Action: runReportCmd,
	}
}

func runReportCmd(c *cli.Context) error {
	cfg, err := loadConfig(c, ".")
	if err != nil {
		return err
	}
	store := cache.New(cfg.Cache.Dir, cfg.Cache.TTL)
	res, err := store.Load()
	if err != nil {
		return err
	}
	if store.IsStale(res) {
		warnf("last scan was %s; consider rerunning `sweepstacx scan`", humanize.Time(res.ScannedAt))
	}

	switch {
	case c.Bool("json"):
		return printReport(res, output.FormatJSON)
	case c.String("format") != "":
		return printReport(res, output.ParseFormat(c.String("format")))
	}

	base := c.String("out")
	if base == "" {
		base = cfg.Report.Out
	}
	if err := writeReports(base, res); err != nil {
		return err
	}
	color.Green("✓ Wrote %s.md and %s.json", base, base)
	return nil
}

func printReport(res *models.ScanResult, format output.Format) error {
	f := output.NewWriterFormatter(format, os.Stdout, !color.NoColor)
	return f.Output(output.ScanReport(res))
}

// writeReports renders <base>.md and <base>.json concurrently.
func writeReports(base string, res *models.ScanResult) error {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}

	report := output.ScanReport(res)
	targets := []struct {
		path   string
		format output.Format
	}{
		{base + ".md", output.FormatMarkdown},
		{base + ".json", output.FormatJSON},
	}

	errs := make([]error, len(targets))
	var wg conc.WaitGroup
	for i, t := range targets {
		wg.Go(func() {
			errs[i] = writeReport(t.path, t.format, report)
		})
	}
	wg.Wait()
	return errors.Join(errs...)
}

func writeReport(path string, format output.Format, report *output.Report) error {
	f, err := output.NewFormatter(format, path, false)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := f.Output(report); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
