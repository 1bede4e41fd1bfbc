package main

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/sweepstacx/internal/progress"
	"github.com/panbanda/sweepstacx/internal/service/sweep"
	"github.com/panbanda/sweepstacx/pkg/patch"
)

func patchCmd() *cli.Command {
	return &cli.Command{
		Name:  "patch",
		Usage: "Generate patch files from the last scan; optionally apply",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "apply",
				Usage: "Apply edits directly to files",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Show what would be applied without modifying files",
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Directory for patch artifacts (default from config)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Verbose logging",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Suppress the progress bar",
			},
		},
		Action: runPatchCmd,
	}
}

func runPatchCmd(c *cli.Context) error {
	cfg, err := loadConfig(c, ".")
	if err != nil {
		return err
	}
	verbose := c.Bool("verbose") || cfg.Output.Verbose

	svc := sweep.New(sweep.WithConfig(cfg))
	var tracker *progress.Tracker
	res, err := svc.Patch(c.Context, sweep.PatchOptions{
		Apply:  c.Bool("apply"),
		DryRun: c.Bool("dry-run"),
		Dir:    c.String("dir"),
		OnStart: func(total int) {
			tracker = progress.NewTracker("Patching", total, progress.Quiet(c.Bool("quiet")))
		},
		OnProgress: func() { tracker.Tick() },
		OnSkip: func(path string, err error) {
			verbosef(verbose, "skip %s: %v", path, err)
		},
		OnWarn: func(msg string) { warnf("%s", msg) },
	})
	if tracker != nil {
		tracker.FinishSuccess()
	}
	if res == nil {
		return err
	}

	for _, rec := range res.Records {
		verbosef(verbose, "%s  %s  %s", filepath.Base(rec.Diff), rec.File, patch.EditsLine(rec.Edits))
	}

	if len(res.Records) == 0 {
		fmt.Println("No patchable issues detected in this pass.")
		return err
	}

	fmt.Printf("Generated %s patch file(s) in %s\n", humanize.Comma(int64(len(res.Records))), displayDir(res.Dir))
	switch {
	case res.Applied:
		removed := 0
		for _, rec := range res.Records {
			if rec.Applied {
				removed += rec.LinesRemoved
			}
		}
		color.Green("Applied edits directly to files (revert with git checkout or git reset --hard).")
		verbosef(verbose, "lines removed: %s", humanize.Comma(int64(removed)))
	case c.Bool("apply"):
		color.Yellow("Dry run: no source files were modified.")
	}

	if err != nil {
		for _, pe := range res.Errors.Errors {
			color.Red("  %s", pe.Error())
		}
		return fmt.Errorf("patch incomplete: %w", err)
	}
	return nil
}
