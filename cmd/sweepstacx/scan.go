package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/sweepstacx/internal/progress"
	"github.com/panbanda/sweepstacx/internal/service/sweep"
	"github.com/panbanda/sweepstacx/pkg/models"
)

func scanFlags(withQuiet bool) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:  "path",
			Value: ".",
			Usage: "Target directory",
		},
		&cli.StringFlag{
			Name:  "lang",
			Usage: "Language focus: auto, js, ts, or py (default from config, else auto)",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Verbose logging",
		},
	}
	if withQuiet {
		flags = append(flags, &cli.BoolFlag{
			Name:  "quiet",
			Usage: "Suppress the summary line and progress bar",
		})
	}
	return flags
}

func scanCmd() *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "Scan the repository for unused imports and cache the results",
		Flags: scanFlags(true),
		Action: func(c *cli.Context) error {
			_, err := runScan(c, c.Bool("quiet"))
			return err
		},
	}
}

// runScan discovers, analyzes and caches one tree.
func runScan(c *cli.Context, quiet bool) (*models.ScanResult, error) {
	root := c.String("path")
	lang := c.String("lang")
	if err := checkLang(lang); err != nil {
		return nil, err
	}

	cfg, err := loadConfig(c, root)
	if err != nil {
		return nil, err
	}
	verbose := c.Bool("verbose") || cfg.Output.Verbose

	svc := sweep.New(sweep.WithConfig(cfg))
	d, err := svc.Discover(root, lang)
	if err != nil {
		return nil, err
	}

	verbosef(verbose, "Scanning %s (lang=%s, exts=%s)", d.Root, d.Selection.Label, extList(d.Selection.Extensions))
	if len(cfg.Ignore) > 0 {
		verbosef(verbose, "Ignoring: %s", strings.Join(cfg.Ignore, ", "))
	}
	if d.TooLarge > 0 {
		verbosef(verbose, "Skipped %d file(s) over max_file_size", d.TooLarge)
	}

	tracker := progress.NewTracker("Scanning", len(d.Selection.Files), progress.Quiet(quiet))
	res, err := svc.Scan(d, sweep.ScanOptions{
		OnProgress: tracker.Tick,
		OnSkip: func(path string, err error) {
			verbosef(verbose, "skip %s: %v", path, err)
		},
	})
	if err != nil {
		tracker.FinishError(err)
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	tracker.FinishSuccess()

	if !quiet {
		fmt.Println(
			color.GreenString("✓ Scan complete."),
			dim.Sprintf("files=%d, unused_imports=%d, duplicates=%d",
				res.Stats.FilesScanned, res.Stats.UnusedImports, res.Stats.DuplicateBlocks),
		)
	}
	return res, nil
}
