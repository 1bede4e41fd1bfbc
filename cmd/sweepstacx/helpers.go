package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/sweepstacx/pkg/config"
)

// loadConfig loads the configuration for a run rooted at root. The global
// --config flag wins over files found in root or the working directory.
func loadConfig(c *cli.Context, root string) (*config.Config, error) {
	opts := []config.LoadOption{config.WithSearchDir(root)}
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithPath(path))
	}
	res, err := config.LoadConfig(opts...)
	if err != nil {
		return nil, err
	}
	if !res.Config.Output.Color {
		color.NoColor = true
	}
	return res.Config, nil
}

func checkLang(lang string) error {
	if lang != "" && !slices.Contains(config.Langs, lang) {
		return fmt.Errorf("invalid --lang %q (want one of %s)", lang, strings.Join(config.Langs, ", "))
	}
	return nil
}

var dim = color.New(color.Faint)

// verbosef prints a dimmed diagnostic line to stderr when enabled.
func verbosef(enabled bool, format string, args ...any) {
	if enabled {
		dim.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// warnf prints a warning line to stderr.
func warnf(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(os.Stderr, "[warn] "+format+"\n", args...)
}

// displayDir renders a directory the way summaries mention it.
func displayDir(dir string) string {
	if filepath.IsAbs(dir) || strings.HasPrefix(dir, ".") {
		return dir
	}
	return "./" + filepath.ToSlash(dir)
}

func extList(exts []string) string {
	out := make([]string, len(exts))
	for i, e := range exts {
		out[i] = strings.TrimPrefix(e, ".")
	}
	return strings.Join(out, ",")
}
