package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for sweepstacx.
type Config struct {
	// Extra ignore globs, matched against slash-separated paths relative
	// to the scan root.
	Ignore []string `koanf:"ignore" toml:"ignore"`

	// Scan settings
	Scan ScanConfig `koanf:"scan" toml:"scan"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Scan cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Patch settings
	Patch PatchConfig `koanf:"patch" toml:"patch"`

	// Report settings
	Report ReportConfig `koanf:"report" toml:"report"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`
}

// ScanConfig controls discovery and analysis.
type ScanConfig struct {
	Lang          string `koanf:"lang" toml:"lang"` // auto, js, ts, py
	TinyFileBytes int    `koanf:"tiny_file_bytes" toml:"tiny_file_bytes"`
	MaxFileSize   int64  `koanf:"max_file_size" toml:"max_file_size"` // bytes, 0 = no limit
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore"`
}

// CacheConfig controls where scan results are kept.
type CacheConfig struct {
	Dir string `koanf:"dir" toml:"dir"`
	TTL int    `koanf:"ttl" toml:"ttl"` // TTL in hours
}

// PatchConfig controls patch generation.
type PatchConfig struct {
	Dir          string `koanf:"dir" toml:"dir"`
	VerifySyntax bool   `koanf:"verify_syntax" toml:"verify_syntax"`
	CheckGit     bool   `koanf:"check_git" toml:"check_git"`
}

// ReportConfig controls report files.
type ReportConfig struct {
	Out string `koanf:"out" toml:"out"` // base path, .md and .json are appended
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format" toml:"format"` // text, json, markdown, toon, yaml
	Color   bool   `koanf:"color" toml:"color"`
	Verbose bool   `koanf:"verbose" toml:"verbose"`
}

// Lang values accepted by ScanConfig.Lang.
var Langs = []string{"auto", "js", "ts", "py"}

// Formats accepted by OutputConfig.Format.
var Formats = []string{"text", "json", "markdown", "toon", "yaml"}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Ignore: []string{},
		Scan: ScanConfig{
			Lang:          "auto",
			TinyFileBytes: 200,
			MaxFileSize:   0,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"**/node_modules/**",
				"**/dist/**",
				"**/build/**",
				"**/.next/**",
				"**/.git/**",
				"**/.venv/**",
				"**/venv/**",
				"**/__pycache__/**",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Dir: ".sweepstacx",
			TTL: 24,
		},
		Patch: PatchConfig{
			Dir:          "patches",
			VerifySyntax: true,
			CheckGit:     true,
		},
		Report: ReportConfig{
			Out: "sweepstacx-report",
		},
		Output: OutputConfig{
			Format:  "text",
			Color:   true,
			Verbose: false,
		},
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		// Try to detect from content or default to TOML
		parser = toml.Parser()
	}

	// Load the config file
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	// Unmarshal into config struct
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// configNames are the file names searched for, in order.
var configNames = []string{
	"sweepstacx.toml",
	"sweepstacx.yaml",
	"sweepstacx.yml",
	"sweepstacx.json",
	".sweepstacx.toml",
	".sweepstacx.yaml",
	".sweepstacx.yml",
	".sweepstacx.json",
}

// LoadResult is a loaded config and the file it came from ("" for defaults).
type LoadResult struct {
	Config *Config
	Source string
}

type loadOptions struct {
	path string
	dirs []string
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

// WithPath loads exactly the given file.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithSearchDir adds a directory to search before the working directory.
func WithSearchDir(dir string) LoadOption {
	return func(o *loadOptions) {
		o.dirs = append(o.dirs, dir)
	}
}

// LoadConfig resolves the effective configuration. An explicit path must
// load; otherwise the first config file found in the search directories,
// then the working directory, is used, falling back to defaults.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.path != "" {
		cfg, err := Load(o.path)
		if err != nil {
			return nil, err
		}
		return &LoadResult{Config: cfg, Source: o.path}, nil
	}

	for _, dir := range append(o.dirs, ".") {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			cfg, err := Load(path)
			if err != nil {
				return nil, err
			}
			return &LoadResult{Config: cfg, Source: path}, nil
		}
	}
	return &LoadResult{Config: DefaultConfig()}, nil
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	res, err := LoadConfig()
	if err != nil {
		return DefaultConfig()
	}
	return res.Config
}

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Validate checks enumerated and numeric fields.
func (c *Config) Validate() error {
	if !contains(Langs, c.Scan.Lang) {
		return fmt.Errorf("%w: scan.lang %q (want one of %s)", ErrInvalidConfig, c.Scan.Lang, strings.Join(Langs, ", "))
	}
	if !contains(Formats, c.Output.Format) {
		return fmt.Errorf("%w: output.format %q (want one of %s)", ErrInvalidConfig, c.Output.Format, strings.Join(Formats, ", "))
	}
	if c.Scan.TinyFileBytes < 0 {
		return fmt.Errorf("%w: scan.tiny_file_bytes must be >= 0", ErrInvalidConfig)
	}
	if c.Scan.MaxFileSize < 0 {
		return fmt.Errorf("%w: scan.max_file_size must be >= 0", ErrInvalidConfig)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("%w: cache.ttl must be >= 0", ErrInvalidConfig)
	}
	if c.Cache.Dir == "" || c.Patch.Dir == "" || c.Report.Out == "" {
		return fmt.Errorf("%w: cache.dir, patch.dir and report.out must be set", ErrInvalidConfig)
	}
	return nil
}

// IgnoreGlobs returns the base exclusion patterns followed by user ignores.
func (c *Config) IgnoreGlobs() []string {
	out := make([]string, 0, len(c.Exclude.Patterns)+len(c.Ignore))
	out = append(out, c.Exclude.Patterns...)
	return append(out, c.Ignore...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
