package mcpserver

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/sweepstacx/internal/cache"
	"github.com/panbanda/sweepstacx/internal/output"
	"github.com/panbanda/sweepstacx/internal/service/sweep"
	"github.com/panbanda/sweepstacx/pkg/config"
	"github.com/panbanda/sweepstacx/pkg/models"
	"github.com/panbanda/sweepstacx/pkg/patch"
)

// SweepInput is the base input for all tools.
type SweepInput struct {
	Path   string `json:"path,omitempty" jsonschema:"Directory to scan. Defaults to the current directory."`
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, yaml, or markdown."`
}

// ScanInput adds scan options.
type ScanInput struct {
	SweepInput
	Lang string `json:"lang,omitempty" jsonschema:"Language focus: auto (default), js, ts, or py."`
}

// PreviewInput adds preview options.
type PreviewInput struct {
	SweepInput
	Rescan bool `json:"rescan,omitempty" jsonschema:"Scan again before building patches, even if a scan is recorded."`
}

// ScanSummary is the scan tool's answer.
type ScanSummary struct {
	Root   string         `json:"root" toon:"root" yaml:"root"`
	Lang   string         `json:"lang" toon:"lang" yaml:"lang"`
	Stats  models.Stats   `json:"stats" toon:"stats" yaml:"stats"`
	Issues []models.Issue `json:"issues" toon:"issues" yaml:"issues"`
}

// PatchPreview describes one artifact.
type PatchPreview struct {
	File         string `json:"file" toon:"file" yaml:"file"`
	Diff         string `json:"diff" toon:"diff" yaml:"diff"`
	Edits        string `json:"edits" toon:"edits" yaml:"edits"`
	LinesRemoved int    `json:"lines_removed" toon:"lines_removed" yaml:"lines_removed"`
	Artifact     string `json:"artifact" toon:"artifact" yaml:"artifact"`
}

// PreviewSummary is the preview tool's answer.
type PreviewSummary struct {
	Root    string         `json:"root" toon:"root" yaml:"root"`
	Patches []PatchPreview `json:"patches" toon:"patches" yaml:"patches"`
	Skipped []string       `json:"skipped,omitempty" toon:"skipped,omitempty" yaml:"skipped,omitempty"`
	Notes   []string       `json:"notes,omitempty" toon:"notes,omitempty" yaml:"notes,omitempty"`
}

func getPath(input SweepInput) string {
	if input.Path == "" {
		return "."
	}
	return input.Path
}

func getFormat(input SweepInput) output.Format {
	switch f := output.ParseFormat(input.Format); f {
	case output.FormatJSON, output.FormatMarkdown, output.FormatYAML:
		return f
	default:
		return output.FormatTOON
	}
}

// newService builds a service whose cache and patch directories live under
// root, so tool calls for different trees do not share state.
func newService(root string) (*sweep.Service, *config.Config, error) {
	res, err := config.LoadConfig(config.WithSearchDir(root))
	if err != nil {
		return nil, nil, err
	}
	cfg := res.Config
	if !filepath.IsAbs(cfg.Cache.Dir) {
		cfg.Cache.Dir = filepath.Join(root, cfg.Cache.Dir)
	}
	if !filepath.IsAbs(cfg.Patch.Dir) {
		cfg.Patch.Dir = filepath.Join(root, cfg.Patch.Dir)
	}
	svc := sweep.New(
		sweep.WithConfig(cfg),
		sweep.WithStore(cache.New(cfg.Cache.Dir, cfg.Cache.TTL)),
	)
	return svc, cfg, nil
}

func formatOutput(data any, format output.Format) (string, error) {
	var buf bytes.Buffer
	if err := output.NewWriterFormatter(format, &buf, false).Output(data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func scan(svc *sweep.Service, root, lang string) (*models.ScanResult, error) {
	d, err := svc.Discover(root, lang)
	if err != nil {
		return nil, err
	}
	return svc.Scan(d, sweep.ScanOptions{})
}

// Tool handlers

func handleScanUnusedImports(ctx context.Context, req *mcp.CallToolRequest, input ScanInput) (*mcp.CallToolResult, any, error) {
	root := getPath(input.SweepInput)
	svc, _, err := newService(root)
	if err != nil {
		return toolError(err.Error())
	}

	res, err := scan(svc, root, input.Lang)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(ScanSummary{
		Root:   res.Root,
		Lang:   res.Lang,
		Stats:  res.Stats,
		Issues: res.Issues,
	}, getFormat(input.SweepInput))
}

func handlePreviewPatch(ctx context.Context, req *mcp.CallToolRequest, input PreviewInput) (*mcp.CallToolResult, any, error) {
	root := getPath(input.SweepInput)
	svc, _, err := newService(root)
	if err != nil {
		return toolError(err.Error())
	}

	if input.Rescan {
		if _, err := scan(svc, root, ""); err != nil {
			return toolError(err.Error())
		}
	}

	summary := PreviewSummary{Patches: []PatchPreview{}}
	opts := sweep.PatchOptions{
		OnSkip: func(path string, err error) {
			summary.Skipped = append(summary.Skipped, path+": "+err.Error())
		},
		OnWarn: func(msg string) {
			summary.Notes = append(summary.Notes, msg)
		},
	}

	res, err := svc.Patch(ctx, opts)
	if errors.Is(err, cache.ErrNoScanCache) {
		if _, err := scan(svc, root, ""); err != nil {
			return toolError(err.Error())
		}
		res, err = svc.Patch(ctx, opts)
	}
	if res == nil {
		return toolError(err.Error())
	}
	if err != nil {
		summary.Notes = append(summary.Notes, err.Error())
	}

	summary.Root = res.Scan.Root
	for _, rec := range res.Records {
		summary.Patches = append(summary.Patches, PatchPreview{
			File:         rec.File,
			Diff:         rec.Diff,
			Edits:        patch.EditsLine(rec.Edits),
			LinesRemoved: rec.LinesRemoved,
			Artifact:     patch.Render(rec.File, rec.Original, rec.Modified, rec.Edits),
		})
	}
	return toolResult(summary, getFormat(input.SweepInput))
}
