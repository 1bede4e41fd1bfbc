package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	// Check scan defaults
	if cfg.Scan.Lang != "auto" {
		t.Errorf("Scan.Lang = %s, want auto", cfg.Scan.Lang)
	}
	if cfg.Scan.TinyFileBytes != 200 {
		t.Errorf("Scan.TinyFileBytes = %d, want 200", cfg.Scan.TinyFileBytes)
	}

	// Check exclude defaults
	if !cfg.Exclude.Gitignore {
		t.Error("Exclude.Gitignore should be true by default")
	}
	if len(cfg.Exclude.Patterns) != 8 {
		t.Errorf("len(Exclude.Patterns) = %d, want 8", len(cfg.Exclude.Patterns))
	}

	// Check cache and patch defaults
	if cfg.Cache.Dir != ".sweepstacx" {
		t.Errorf("Cache.Dir = %s, want .sweepstacx", cfg.Cache.Dir)
	}
	if cfg.Cache.TTL != 24 {
		t.Errorf("Cache.TTL = %d, want 24", cfg.Cache.TTL)
	}
	if cfg.Patch.Dir != "patches" {
		t.Errorf("Patch.Dir = %s, want patches", cfg.Patch.Dir)
	}
	if !cfg.Patch.VerifySyntax || !cfg.Patch.CheckGit {
		t.Error("Patch.VerifySyntax and Patch.CheckGit should be true by default")
	}
	if cfg.Report.Out != "sweepstacx-report" {
		t.Errorf("Report.Out = %s, want sweepstacx-report", cfg.Report.Out)
	}

	// Check output defaults
	if cfg.Output.Format != "text" {
		t.Errorf("Output.Format = %s, want text", cfg.Output.Format)
	}
	if !cfg.Output.Color {
		t.Error("Output.Color should be true by default")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "sweepstacx.toml")

	content := `
ignore = ["legacy/**"]

[scan]
lang = "py"
tiny_file_bytes = 64

[patch]
verify_syntax = false

[output]
format = "json"
`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Scan.Lang != "py" {
		t.Errorf("Scan.Lang = %s, want py", cfg.Scan.Lang)
	}
	if cfg.Scan.TinyFileBytes != 64 {
		t.Errorf("Scan.TinyFileBytes = %d, want 64", cfg.Scan.TinyFileBytes)
	}
	if cfg.Patch.VerifySyntax {
		t.Error("Patch.VerifySyntax should be false")
	}
	if !cfg.Patch.CheckGit {
		t.Error("Patch.CheckGit should keep its default")
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %s, want json", cfg.Output.Format)
	}
	if len(cfg.Ignore) != 1 || cfg.Ignore[0] != "legacy/**" {
		t.Errorf("Ignore = %v, want [legacy/**]", cfg.Ignore)
	}
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "sweepstacx.yaml")

	content := `
cache:
  dir: .cache/sweep
  ttl: 1
report:
  out: out/report
`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Cache.Dir != ".cache/sweep" {
		t.Errorf("Cache.Dir = %s, want .cache/sweep", cfg.Cache.Dir)
	}
	if cfg.Cache.TTL != 1 {
		t.Errorf("Cache.TTL = %d, want 1", cfg.Cache.TTL)
	}
	if cfg.Report.Out != "out/report" {
		t.Errorf("Report.Out = %s, want out/report", cfg.Report.Out)
	}
}

func TestLoadJSONIgnoreList(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".sweepstacx.json")

	content := `{"ignore": ["**/fixtures/**", "scripts/*.js"]}`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	globs := cfg.IgnoreGlobs()
	if len(globs) != 10 {
		t.Fatalf("len(IgnoreGlobs()) = %d, want 10", len(globs))
	}
	if globs[8] != "**/fixtures/**" || globs[9] != "scripts/*.js" {
		t.Errorf("user ignores should follow base patterns, got %v", globs[8:])
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		invalid bool
	}{
		{"bad lang", "sweepstacx.toml", "[scan]\nlang = \"rb\"\n", true},
		{"bad format", "sweepstacx.toml", "[output]\nformat = \"xml\"\n", true},
		{"negative ttl", "sweepstacx.toml", "[cache]\nttl = -1\n", true},
		{"syntax error", "sweepstacx.toml", "[scan\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write config file: %v", err)
			}

			_, err := Load(path)
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if got := errors.Is(err, ErrInvalidConfig); got != tt.invalid {
				t.Errorf("errors.Is(err, ErrInvalidConfig) = %v, want %v (err: %v)", got, tt.invalid, err)
			}
		})
	}
}

func TestLoadNonexistent(t *testing.T) {
	_, err := Load("/nonexistent/path/config.toml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}

func TestLoadConfig_SearchDir(t *testing.T) {
	tmpDir := t.TempDir()
	content := "[scan]\nlang = \"ts\"\n"
	if err := os.WriteFile(filepath.Join(tmpDir, ".sweepstacx.toml"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	res, err := LoadConfig(WithSearchDir(tmpDir))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if res.Source != filepath.Join(tmpDir, ".sweepstacx.toml") {
		t.Errorf("Source = %s", res.Source)
	}
	if res.Config.Scan.Lang != "ts" {
		t.Errorf("Scan.Lang = %s, want ts", res.Config.Scan.Lang)
	}
}

func TestLoadConfig_ExplicitPathWins(t *testing.T) {
	searchDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(searchDir, "sweepstacx.toml"), []byte("[scan]\nlang = \"ts\"\n"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	explicit := filepath.Join(t.TempDir(), "custom.toml")
	if err := os.WriteFile(explicit, []byte("[scan]\nlang = \"py\"\n"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	res, err := LoadConfig(WithSearchDir(searchDir), WithPath(explicit))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if res.Source != explicit || res.Config.Scan.Lang != "py" {
		t.Errorf("got %s from %s, want py from %s", res.Config.Scan.Lang, res.Source, explicit)
	}

	if _, err := LoadConfig(WithPath(filepath.Join(searchDir, "missing.toml"))); err == nil {
		t.Error("missing explicit path should fail")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(oldWd) }()

	res, err := LoadConfig(WithSearchDir(filepath.Join(tmpDir, "empty")))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if res.Source != "" {
		t.Errorf("Source = %q, want empty", res.Source)
	}
	if res.Config.Scan.Lang != "auto" {
		t.Errorf("Scan.Lang = %s, want auto", res.Config.Scan.Lang)
	}

	if cfg := LoadOrDefault(); cfg == nil {
		t.Error("LoadOrDefault() returned nil")
	}
}
