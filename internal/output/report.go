package output

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/panbanda/sweepstacx/pkg/models"
)

// ReportTitle heads every rendered scan report.
const ReportTitle = "SweepstacX Report"

// ScanReport builds the report for a scan result. Structured formats
// serialize the result itself.
func ScanReport(r *models.ScanResult) *Report {
	intro := []string{
		fmt.Sprintf("Repo: %s", r.Repo),
		fmt.Sprintf("Root: %s", r.Root),
	}
	if !r.ScannedAt.IsZero() {
		intro = append(intro, fmt.Sprintf("Scanned: %s (%s)", r.ScannedAt.Format(time.RFC3339), humanize.Time(r.ScannedAt)))
	}
	if r.Lang != "" {
		intro = append(intro, fmt.Sprintf("Languages: %s", r.Lang))
	}

	return &Report{
		Title: ReportTitle,
		Intro: intro,
		Sections: []Renderable{
			statsTable(r.Stats),
			unusedTable(r.IssuesOfType(models.IssueUnusedImport)),
			duplicatesTable(r.IssuesOfType(models.IssueDuplicateBlock)),
			patchesTable(r.Patches),
		},
		Data: r,
	}
}

func statsTable(s models.Stats) *Table {
	row := func(name string, v int) []string {
		return []string{name, humanize.Comma(int64(v))}
	}
	return NewTable("Summary", []string{"Metric", "Count"}, [][]string{
		row("Files scanned", s.FilesScanned),
		row("Unused imports", s.UnusedImports),
		row("Duplicate blocks", s.DuplicateBlocks),
		row("Dead files", s.DeadFiles),
		row("Stale configs", s.StaleConfigs),
		row("Lines removed", s.LOCRemoved),
	}, nil, s)
}

func unusedTable(issues []models.Issue) *Table {
	rows := make([][]string, 0, len(issues))
	for _, is := range issues {
		rows = append(rows, []string{is.File, strconv.Itoa(is.Line), is.Token, is.Module, is.Suggestion})
	}
	return NewTable("Unused imports", []string{"File", "Line", "Token", "Module", "Suggestion"}, rows, nil, issues)
}

func duplicatesTable(issues []models.Issue) *Table {
	rows := make([][]string, 0, len(issues))
	for _, is := range issues {
		rows = append(rows, []string{is.File, is.DuplicateOf})
	}
	return NewTable("Duplicate tiny files", []string{"File", "Duplicate of"}, rows, nil, issues)
}

func patchesTable(patches []models.PatchSummary) *Table {
	rows := make([][]string, 0, len(patches))
	for _, p := range patches {
		applied := "no"
		if p.Applied {
			applied = "yes"
		}
		rows = append(rows, []string{p.File, p.Diff, strconv.Itoa(p.Edits), strconv.Itoa(p.LinesRemoved), applied})
	}
	return NewTable("Patches", []string{"File", "Artifact", "Edits", "Lines removed", "Applied"}, rows, nil, patches)
}
