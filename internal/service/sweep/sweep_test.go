package sweep

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/sweepstacx/internal/cache"
	"github.com/panbanda/sweepstacx/internal/fileproc"
	"github.com/panbanda/sweepstacx/pkg/config"
	"github.com/panbanda/sweepstacx/pkg/models"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

type fixture struct {
	root     string
	patchDir string
	svc      *Service
}

func newFixture(t *testing.T, files map[string]string) *fixture {
	t.Helper()
	root := t.TempDir()
	writeFiles(t, root, files)
	work := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Patch.Dir = filepath.Join(work, "patches")
	svc := New(
		WithConfig(cfg),
		WithStore(cache.New(filepath.Join(work, ".sweepstacx"), cfg.Cache.TTL)),
	)
	return &fixture{root: root, patchDir: cfg.Patch.Dir, svc: svc}
}

func (fx *fixture) scan(t *testing.T) *models.ScanResult {
	t.Helper()
	d, err := fx.svc.Discover(fx.root, "")
	require.NoError(t, err)
	res, err := fx.svc.Scan(d, ScanOptions{})
	require.NoError(t, err)
	return res
}

func (fx *fixture) read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(fx.root, name))
	require.NoError(t, err)
	return string(data)
}

func TestScan(t *testing.T) {
	fx := newFixture(t, map[string]string{
		"a.py": "import os\nimport sys\nprint(sys.argv)\n",
		"b.ts": "import Def, { a, b as bb } from 'mod';\nconsole.log(a);\n",
		"c.py": "x = 1\n",
		"d.py": "x = 1\n",
		"e.py": "from m import *\n",
	})

	var ticks int
	d, err := fx.svc.Discover(fx.root, "auto")
	require.NoError(t, err)
	assert.Equal(t, "js/ts+py", d.Selection.Label)

	res, err := fx.svc.Scan(d, ScanOptions{OnProgress: func() { ticks++ }})
	require.NoError(t, err)
	assert.Equal(t, 5, ticks)

	assert.Equal(t, filepath.Base(d.Root), res.Repo)
	assert.Equal(t, 5, res.Stats.FilesScanned)
	assert.Equal(t, 3, res.Stats.UnusedImports)
	assert.Equal(t, 1, res.Stats.DuplicateBlocks)
	assert.Len(t, res.Files, 5)

	var got []string
	for _, is := range res.Issues {
		got = append(got, is.File+":"+is.Token+is.DuplicateOf)
	}
	require.Equal(t, []string{"a.py:os", "b.ts:Def", "b.ts:bb", "d.py:c.py"}, got)
	assert.Equal(t, 1, res.Issues[0].Line)
	assert.Equal(t, "Remove 'os' from: import os", res.Issues[0].Suggestion)

	cached, err := fx.svc.Store().Load()
	require.NoError(t, err)
	assert.Equal(t, res.Issues, cached.Issues)
}

func TestScanLanguageFocus(t *testing.T) {
	fx := newFixture(t, map[string]string{
		"a.py": "import os\n",
		"b.js": "import x from 'x'\n",
	})
	d, err := fx.svc.Discover(fx.root, "py")
	require.NoError(t, err)
	res, err := fx.svc.Scan(d, ScanOptions{NoSave: true})
	require.NoError(t, err)

	assert.Equal(t, "py", res.Lang)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "a.py", res.Issues[0].File)

	_, err = fx.svc.Store().Load()
	assert.ErrorIs(t, err, cache.ErrNoScanCache, "NoSave must not write the cache")
}

func TestScanSkipsUnreadable(t *testing.T) {
	fx := newFixture(t, map[string]string{"a.py": "import os\n"})
	d, err := fx.svc.Discover(fx.root, "")
	require.NoError(t, err)
	require.Len(t, d.Selection.Files, 1)
	require.NoError(t, os.Remove(d.Selection.Files[0]))

	var skipped []string
	res, err := fx.svc.Scan(d, ScanOptions{OnSkip: func(path string, _ error) { skipped = append(skipped, path) }})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py"}, skipped)
	assert.Empty(t, res.Issues)
}

func TestPatchPreviewThenApply(t *testing.T) {
	fx := newFixture(t, map[string]string{
		"a.py": "import os\nimport sys\nprint(sys.argv)\n",
		"b.ts": "import Def, { a, b as bb } from 'mod';\nconsole.log(a);\n",
	})
	fx.scan(t)

	res, err := fx.svc.Patch(context.Background(), PatchOptions{})
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.False(t, res.Applied)
	assert.Equal(t, filepath.Join(fx.patchDir, "patch-001.diff"), res.Records[0].Diff)
	assert.Equal(t, filepath.Join(fx.patchDir, "patch-002.diff"), res.Records[1].Diff)
	assert.Equal(t, "import os\nimport sys\nprint(sys.argv)\n", fx.read(t, "a.py"), "preview must not touch sources")

	artifact, err := os.ReadFile(res.Records[0].Diff)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(artifact), "diff -- (preview) a.py\n--- a/a.py\n+++ b/a.py\n# Edits: remove-line@1[os]\n"))

	res, err = fx.svc.Patch(context.Background(), PatchOptions{Apply: true, DryRun: true})
	require.NoError(t, err)
	assert.False(t, res.Applied, "dry-run apply behaves as preview")
	assert.Equal(t, "import os\nimport sys\nprint(sys.argv)\n", fx.read(t, "a.py"))

	var warnings []string
	res, err = fx.svc.Patch(context.Background(), PatchOptions{Apply: true, OnWarn: func(m string) { warnings = append(warnings, m) }})
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, "import sys\nprint(sys.argv)\n", fx.read(t, "a.py"))
	assert.Equal(t, "import { a } from 'mod';\nconsole.log(a);\n", fx.read(t, "b.ts"))
	assert.Contains(t, warnings, "not a git repository; applied edits cannot be reverted with git")

	cached, err := fx.svc.Store().Load()
	require.NoError(t, err)
	assert.Len(t, cached.Patches, 6)
	assert.Equal(t, 1, cached.Stats.LOCRemoved)

	// A fresh scan of the patched tree finds nothing left to remove.
	again := fx.scan(t)
	assert.Zero(t, again.Stats.UnusedImports)
	res, err = fx.svc.Patch(context.Background(), PatchOptions{Apply: true})
	require.NoError(t, err)
	assert.Empty(t, res.Records)
}

func TestPatchWithoutCache(t *testing.T) {
	fx := newFixture(t, nil)
	_, err := fx.svc.Patch(context.Background(), PatchOptions{})
	assert.ErrorIs(t, err, cache.ErrNoScanCache)
}

func TestPatchReverifiesChangedFiles(t *testing.T) {
	fx := newFixture(t, map[string]string{
		"a.py": "import os\nimport sys\nprint(sys.argv)\n",
	})
	fx.scan(t)

	writeFiles(t, fx.root, map[string]string{
		"a.py": "import os\nimport sys\nprint(os.sep, sys.argv)\n",
	})

	res, err := fx.svc.Patch(context.Background(), PatchOptions{Apply: true})
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Equal(t, "import os\nimport sys\nprint(os.sep, sys.argv)\n", fx.read(t, "a.py"))
}

func TestPatchSkipsMissingFiles(t *testing.T) {
	fx := newFixture(t, map[string]string{
		"a.py": "import os\n",
		"b.py": "import re\n",
	})
	fx.scan(t)
	require.NoError(t, os.Remove(filepath.Join(fx.root, "a.py")))

	var skipped []string
	res, err := fx.svc.Patch(context.Background(), PatchOptions{
		OnSkip: func(path string, _ error) { skipped = append(skipped, path) },
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py"}, skipped)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "b.py", res.Records[0].File)
	assert.Equal(t, filepath.Join(fx.patchDir, "patch-001.diff"), res.Records[0].Diff, "numbering skips nothing")
}

func TestPatchCollectsWriteErrors(t *testing.T) {
	fx := newFixture(t, map[string]string{
		"a.py": "import os\n",
		"b.py": "import re\n",
	})
	fx.scan(t)

	// A regular file where the patch directory should be.
	blocker := filepath.Join(t.TempDir(), "patches")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	res, err := fx.svc.Patch(context.Background(), PatchOptions{Dir: blocker})
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 2, res.Errors.Len())
	assert.Empty(t, res.Records)

	var pe fileproc.ProcessingError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "a.py", pe.Path)
}

func TestPatchMinimalRecord(t *testing.T) {
	fx := newFixture(t, map[string]string{
		"a.py": "import os\nimport sys\nprint(sys.argv)\n",
	})
	// A hand-written record with no hashes and no stats.
	data := `{"root": "` + filepath.ToSlash(fx.root) + `", "issues": [{"type": "unused_import", "file": "a.py", "token": "os"}]}`
	require.NoError(t, os.MkdirAll(fx.svc.Store().Dir(), 0755))
	require.NoError(t, os.WriteFile(fx.svc.Store().Path(), []byte(data), 0644))

	res, err := fx.svc.Patch(context.Background(), PatchOptions{Apply: true})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "import sys\nprint(sys.argv)\n", fx.read(t, "a.py"))
}
