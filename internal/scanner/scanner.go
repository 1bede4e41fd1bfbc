package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/panbanda/sweepstacx/pkg/config"
	"github.com/panbanda/sweepstacx/pkg/parser"
)

// Scanner finds source files in a directory.
type Scanner struct {
	config   *config.Config
	globs    []string
	matchers []gitignore.Matcher
}

// NewScanner creates a new file scanner.
func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg, globs: cfg.IgnoreGlobs()}
}

// loadGitignore loads .gitignore rules found under root. Patterns are read
// relative to root so they line up with the paths matched in ScanDir.
func (s *Scanner) loadGitignore(root string) {
	s.matchers = nil
	if !s.config.Exclude.Gitignore {
		return
	}
	patterns, err := gitignore.ReadPatterns(osfs.New(root), nil)
	if err != nil || len(patterns) == 0 {
		return
	}
	s.matchers = append(s.matchers, gitignore.NewMatcher(patterns))
}

// isExcluded checks if a root-relative path matches an ignore glob or a
// .gitignore rule.
func (s *Scanner) isExcluded(rel string, isDir bool) bool {
	slashed := filepath.ToSlash(rel)
	for _, g := range s.globs {
		if ok, _ := doublestar.Match(g, slashed); ok {
			return true
		}
		if isDir {
			// Directory globs such as **/dist/** match the contents.
			if ok, _ := doublestar.Match(g, slashed+"/x"); ok {
				return true
			}
		}
	}

	if len(s.matchers) == 0 {
		return false
	}
	pathParts := strings.Split(rel, string(filepath.Separator))
	for _, m := range s.matchers {
		if m.Match(pathParts, isDir) {
			return true
		}
	}
	return false
}

// ScanDir recursively scans a directory for source files with a supported
// extension. Paths are returned absolute, in lexical walk order.
// Validates that all paths stay within the root directory to prevent traversal attacks.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	files := make([]string, 0, 256)

	// Resolve root to absolute path for security validation
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	// Resolve any symlinks in the root path
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	s.loadGitignore(absRoot)

	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == absRoot {
			return nil
		}

		relPath, _ := filepath.Rel(absRoot, path)

		// Security: validate path stays within root (prevent symlink traversal)
		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				return nil
			}
		}

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") || s.isExcluded(relPath, true) {
				return filepath.SkipDir
			}
			return nil
		}

		// Dotfiles are not scanned.
		if strings.HasPrefix(d.Name(), ".") || s.isExcluded(relPath, false) {
			return nil
		}
		if parser.DetectLanguage(path) != parser.LangUnknown {
			files = append(files, path)
		}
		return nil
	})

	return files, walkErr
}

// isWithinRoot checks if a path is contained within the root directory.
// Returns false if the path escapes via symlinks or relative paths.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)

	// Add separator to prevent "/root2" matching "/root"
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}

// Selection is the outcome of language focusing.
type Selection struct {
	Files []string
	// Label describes the families scanned, for verbose output and the
	// cache record.
	Label      string
	Extensions []string
}

var (
	esExtensions = append(append([]string{}, parser.Extensions[parser.FamilyJS]...), parser.Extensions[parser.FamilyTS]...)
	pyExtensions = parser.Extensions[parser.FamilyPython]
)

// SelectLanguage narrows files to the requested families. "js" and "ts"
// both select the whole JS/TS family. "auto" scans every family present,
// falling back to JS/TS when neither is found.
func SelectLanguage(lang string, files []string) Selection {
	var es, py []string
	for _, f := range files {
		switch parser.DetectLanguage(f) {
		case parser.LangPython:
			py = append(py, f)
		case parser.LangUnknown:
		default:
			es = append(es, f)
		}
	}

	switch lang {
	case "py":
		return Selection{Files: py, Label: "py", Extensions: pyExtensions}
	case "js", "ts":
		return Selection{Files: es, Label: "js/ts", Extensions: esExtensions}
	}

	switch {
	case len(es) > 0 && len(py) > 0:
		all := make([]string, 0, len(es)+len(py))
		for _, f := range files {
			if parser.DetectLanguage(f) != parser.LangUnknown {
				all = append(all, f)
			}
		}
		return Selection{Files: all, Label: "js/ts+py", Extensions: parser.AllExtensions()}
	case len(py) > 0:
		return Selection{Files: py, Label: "py", Extensions: pyExtensions}
	case len(es) > 0:
		return Selection{Files: es, Label: "js/ts", Extensions: esExtensions}
	}
	return Selection{Files: nil, Label: "js/ts (fallback)", Extensions: esExtensions}
}

// FilterBySize filters files that exceed the configured maximum size.
// Returns the filtered list and the count of files that were skipped.
// If maxSize is 0, returns the original list unchanged.
func FilterBySize(files []string, maxSize int64) ([]string, int) {
	if maxSize <= 0 {
		return files, 0
	}

	filtered := make([]string, 0, len(files))
	skipped := 0

	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			skipped++
			continue
		}
		if info.Size() > maxSize {
			skipped++
			continue
		}
		filtered = append(filtered, f)
	}

	return filtered, skipped
}
