package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/sweepstacx/internal/output"
)

func TestServerCreation(t *testing.T) {
	server := NewServer("1.0.0-test")
	require.NotNil(t, server)
	require.NotNil(t, server.server)
	assert.NotNil(t, NewServer(""))
}

func TestToolDescriptions(t *testing.T) {
	for name, fn := range map[string]func() string{
		"scan":    describeScan,
		"preview": describePreviewPatch,
	} {
		t.Run(name, func(t *testing.T) {
			desc := fn()
			assert.Contains(t, desc, "USE WHEN:")
			assert.Contains(t, desc, "INTERPRETING RESULTS:")
			assert.Contains(t, desc, "METRICS RETURNED:")
		})
	}
}

func TestGetFormat(t *testing.T) {
	tests := []struct {
		format string
		want   output.Format
	}{
		{"", output.FormatTOON},
		{"json", output.FormatJSON},
		{"yaml", output.FormatYAML},
		{"md", output.FormatMarkdown},
		{"text", output.FormatTOON},
		{"xml", output.FormatTOON},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			assert.Equal(t, tt.want, getFormat(SweepInput{Format: tt.format}))
		})
	}
}

func TestGetPath(t *testing.T) {
	assert.Equal(t, ".", getPath(SweepInput{}))
	assert.Equal(t, "/src", getPath(SweepInput{Path: "/src"}))
}

func TestToolError(t *testing.T) {
	result, _, err := toolError("test error message")
	require.NoError(t, err)
	assert.True(t, result.IsError)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "Error: test error message", text.Text)
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "content is %T", result.Content[0])
	return text.Text
}

func fixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.py"), []byte("import os\nimport sys\nprint(sys.argv)\n"), 0644))
	return root
}

func TestHandleScanUnusedImports(t *testing.T) {
	root := fixture(t)

	result, _, err := handleScanUnusedImports(context.Background(), nil, ScanInput{
		SweepInput: SweepInput{Path: root, Format: "json"},
	})
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var summary ScanSummary
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &summary))
	assert.Equal(t, "py", summary.Lang)
	require.Len(t, summary.Issues, 1)
	assert.Equal(t, "os", summary.Issues[0].Token)
	assert.FileExists(t, filepath.Join(root, ".sweepstacx", "scan.json"))
}

func TestHandlePreviewPatch(t *testing.T) {
	root := fixture(t)

	// No scan recorded yet: the tool scans first.
	result, _, err := handlePreviewPatch(context.Background(), nil, PreviewInput{
		SweepInput: SweepInput{Path: root, Format: "json"},
	})
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var summary PreviewSummary
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &summary))
	require.Len(t, summary.Patches, 1)
	p := summary.Patches[0]
	assert.Equal(t, "a.py", p.File)
	assert.Equal(t, "# Edits: remove-line@1[os]", p.Edits)
	assert.True(t, strings.HasSuffix(p.Artifact, "@@ MODIFIED @@\nimport sys\nprint(sys.argv)\n\n"))
	assert.FileExists(t, p.Diff)

	data, err := os.ReadFile(filepath.Join(root, "a.py"))
	require.NoError(t, err)
	assert.Equal(t, "import os\nimport sys\nprint(sys.argv)\n", string(data), "preview never writes sources")
}

func TestHandleScanMissingRoot(t *testing.T) {
	result, _, err := handleScanUnusedImports(context.Background(), nil, ScanInput{
		SweepInput: SweepInput{Path: filepath.Join(t.TempDir(), "missing")},
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestParsePrompt(t *testing.T) {
	spec := parsePrompt([]byte("---\ndescription: Do a thing\narguments:\n  - name: path\n    default: \".\"\n---\nClean {{path}}\n"))
	assert.Equal(t, "Do a thing", spec.Description)
	require.Len(t, spec.Arguments, 1)
	assert.Equal(t, "Clean {{path}}\n", spec.Body)
	assert.Equal(t, "Clean .\n", spec.render(nil))
	assert.Equal(t, "Clean src\n", spec.render(map[string]string{"path": "src"}))

	spec = parsePrompt([]byte("no frontmatter"))
	assert.Empty(t, spec.Description)
	assert.Equal(t, "no frontmatter", spec.Body)
}

func TestEmbeddedPrompts(t *testing.T) {
	content, err := promptFiles.ReadFile("prompts/clean-imports.md")
	require.NoError(t, err)
	spec := parsePrompt(content)
	assert.NotEmpty(t, spec.Description)
	assert.Contains(t, spec.Body, "scan_unused_imports")
	assert.Contains(t, spec.Body, "preview_patch")
	assert.NotContains(t, spec.render(nil), "{{path}}")
}

func TestPromptHandler(t *testing.T) {
	spec := promptSpec{
		Description: "desc",
		Arguments:   []promptArg{{Name: "path", Default: "."}},
		Body:        "scan {{path}}",
	}
	handler := makePromptHandler(spec)

	res, err := handler(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "desc", res.Description)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, "scan .", res.Messages[0].Content.(*mcp.TextContent).Text)

	res, err = handler(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{Arguments: map[string]string{"path": "web"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "scan web", res.Messages[0].Content.(*mcp.TextContent).Text)
}

func TestGenerateManifest(t *testing.T) {
	data, err := GenerateManifest("1.2.3")
	require.NoError(t, err)
	var m Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "io.github.panbanda/sweepstacx", m.Name)
	assert.Equal(t, "1.2.3", m.Version)
	assert.Equal(t, repositoryURL, m.Repository.URL)
	assert.NotContains(t, string(data), "packages")

	data, err = GenerateManifest("")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version": "0.0.0"`)
}
