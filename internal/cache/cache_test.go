package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/sweepstacx/pkg/models"
)

func sampleResult() *models.ScanResult {
	r := models.NewScanResult("/repo")
	r.Repo = "repo"
	r.ScannedAt = time.Now().UTC().Truncate(time.Second)
	r.Stats.FilesScanned = 2
	r.AddIssue(models.Issue{Type: models.IssueUnusedImport, File: "a.py", Line: 1, Token: "os", Module: "os"})
	r.Files["a.py"] = HashBytes([]byte("import os\n"))
	return r
}

func TestSaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".sweepstacx")
	s := New(dir, 24)

	want := sampleResult()
	require.NoError(t, s.Save(want))

	assert.FileExists(t, filepath.Join(dir, ScanFile))
	assert.FileExists(t, filepath.Join(dir, LastFile))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, want.Root, got.Root)
	assert.True(t, want.ScannedAt.Equal(got.ScannedAt))
	assert.Equal(t, want.Issues, got.Issues)
	assert.Equal(t, want.Files, got.Files)
	assert.Equal(t, 1, got.Stats.UnusedImports)
	assert.NotNil(t, got.Patches)

	last, err := s.LastScan()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), last, time.Minute)
}

func TestUpdateKeepsMarker(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, 24)

	r := sampleResult()
	require.NoError(t, s.Update(r))
	assert.NoFileExists(t, filepath.Join(dir, LastFile))

	r.Stats.LOCRemoved = 3
	require.NoError(t, s.Update(r))
	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stats.LOCRemoved)
}

func TestLoadMissing(t *testing.T) {
	s := New(t.TempDir(), 24)
	_, err := s.Load()
	assert.ErrorIs(t, err, ErrNoScanCache)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{"},
		{"missing root", `{"issues": []}`},
		{"missing issues", `{"root": "/r"}`},
		{"unknown issue type", `{"root": "/r", "issues": [{"type": "dead_code", "file": "a.py"}]}`},
		{"unused import without token", `{"root": "/r", "issues": [{"type": "unused_import", "file": "a.py"}]}`},
		{"negative stat", `{"root": "/r", "issues": [], "stats": {"files_scanned": -1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, ScanFile), []byte(tt.data), 0644))

			_, err := New(dir, 24).Load()
			assert.ErrorIs(t, err, ErrInvalidScanCache)
		})
	}
}

func TestLoadMinimalRecord(t *testing.T) {
	// The smallest record a patch run can work from.
	dir := t.TempDir()
	data := `{"root": "/r", "issues": [{"type": "unused_import", "file": "a.py", "token": "os"}], "patches": []}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ScanFile), []byte(data), 0644))

	r, err := New(dir, 24).Load()
	require.NoError(t, err)
	assert.Equal(t, "/r", r.Root)
	require.Len(t, r.Issues, 1)
	assert.Equal(t, "os", r.Issues[0].Token)
	assert.NotNil(t, r.Files)
}

func TestIsStale(t *testing.T) {
	r := sampleResult()

	s := New(t.TempDir(), 1)
	assert.False(t, s.IsStale(r))

	r.ScannedAt = time.Now().Add(-2 * time.Hour)
	assert.True(t, s.IsStale(r))

	assert.False(t, New(t.TempDir(), 0).IsStale(r), "ttl 0 disables staleness")
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.py")
	require.NoError(t, os.WriteFile(path, []byte("import os\n"), 0644))

	h, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, HashBytes([]byte("import os\n")), h)
	assert.Len(t, h, 64)

	_, err = HashFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestHashBytes(t *testing.T) {
	assert.Equal(t, HashBytes([]byte("a")), HashBytes([]byte("a")))
	assert.NotEqual(t, HashBytes([]byte("a")), HashBytes([]byte("b")))
}
