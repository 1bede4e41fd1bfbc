package main

import (
	"github.com/urfave/cli/v2"

	"github.com/panbanda/sweepstacx/internal/output"
)

func checkCmd() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Scan and print the JSON report to stdout (CI shortcut)",
		Flags: scanFlags(false),
		Action: func(c *cli.Context) error {
			res, err := runScan(c, true)
			if err != nil {
				return err
			}
			return printReport(res, output.FormatJSON)
		},
	}
}
