// Package sweep runs scans and patch passes over a source tree.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/panbanda/sweepstacx/internal/cache"
	"github.com/panbanda/sweepstacx/internal/fileproc"
	"github.com/panbanda/sweepstacx/internal/scanner"
	"github.com/panbanda/sweepstacx/internal/vcs"
	"github.com/panbanda/sweepstacx/pkg/analyzer/duplicates"
	"github.com/panbanda/sweepstacx/pkg/analyzer/unused"
	"github.com/panbanda/sweepstacx/pkg/config"
	"github.com/panbanda/sweepstacx/pkg/imports"
	"github.com/panbanda/sweepstacx/pkg/models"
	"github.com/panbanda/sweepstacx/pkg/parser"
	"github.com/panbanda/sweepstacx/pkg/patch"
	"github.com/panbanda/sweepstacx/pkg/rewrite"
)

var (
	// ErrUnsupportedLanguage is reported for files no grammar covers.
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrSyntaxRegression is reported when a rewrite would introduce a
	// parse error the original file did not have.
	ErrSyntaxRegression = errors.New("rewrite introduces a syntax error")
)

// Service orchestrates scan and patch runs.
type Service struct {
	config *config.Config
	store  *cache.Store
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithStore sets the scan cache. The default store lives in the configured
// cache directory, relative to the working directory.
func WithStore(store *cache.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// New creates a new sweep service.
func New(opts ...Option) *Service {
	s := &Service{config: config.DefaultConfig()}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = cache.New(s.config.Cache.Dir, s.config.Cache.TTL)
	}
	return s
}

// Store returns the scan cache used by the service.
func (s *Service) Store() *cache.Store {
	return s.store
}

// Discovery is the set of files a scan will read.
type Discovery struct {
	// Root is the absolute scan root with symlinks resolved.
	Root      string
	Selection scanner.Selection
	// TooLarge counts files dropped by the size limit.
	TooLarge int
}

// Discover walks root and narrows the result to lang. An empty lang uses
// the configured one.
func (s *Service) Discover(root, lang string) (*Discovery, error) {
	if lang == "" {
		lang = s.config.Scan.Lang
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	files, err := scanner.NewScanner(s.config).ScanDir(abs)
	if err != nil {
		return nil, fmt.Errorf("discover files: %w", err)
	}
	sel := scanner.SelectLanguage(lang, files)
	var tooLarge int
	sel.Files, tooLarge = scanner.FilterBySize(sel.Files, s.config.Scan.MaxFileSize)

	return &Discovery{Root: abs, Selection: sel, TooLarge: tooLarge}, nil
}

// ScanOptions configures a scan.
type ScanOptions struct {
	// NoSave skips writing the scan cache.
	NoSave     bool
	OnProgress fileproc.ProgressFunc
	OnSkip     fileproc.SkipFunc
}

// Scan analyzes the discovered files in order and persists the result.
func (s *Service) Scan(d *Discovery, opts ScanOptions) (*models.ScanResult, error) {
	res := models.NewScanResult(d.Root)
	res.Repo = filepath.Base(d.Root)
	res.ScannedAt = time.Now().UTC()
	res.Lang = d.Selection.Label
	res.Stats.FilesScanned = len(d.Selection.Files)

	dups := duplicates.New(duplicates.WithMaxBytes(s.config.Scan.TinyFileBytes))
	for _, abs := range d.Selection.Files {
		rel := relPath(d.Root, abs)
		err := fileproc.Guard(func() error {
			return scanFile(res, dups, abs, rel)
		})
		if err != nil && opts.OnSkip != nil {
			opts.OnSkip(rel, err)
		}
		if opts.OnProgress != nil {
			opts.OnProgress()
		}
	}

	if !opts.NoSave {
		if err := s.store.Save(res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func scanFile(res *models.ScanResult, dups *duplicates.Detector, abs, rel string) error {
	data, err := os.ReadFile(abs)
	if err != nil {
		return err
	}
	g, ok := parser.GrammarFor(parser.DetectLanguage(abs))
	if !ok {
		return ErrUnsupportedLanguage
	}

	f := imports.Parse(g, string(data))
	for _, is := range unused.Issues(rel, unused.Analyze(f)) {
		res.AddIssue(is)
	}
	if is, ok := dups.Observe(rel, data); ok {
		res.AddIssue(is)
	}
	res.Files[rel] = cache.HashBytes(data)
	return nil
}

// PatchOptions configures a patch run.
type PatchOptions struct {
	Apply  bool
	DryRun bool
	// Dir overrides the configured artifact directory.
	Dir string
	// OnStart receives the number of files that will be visited.
	OnStart    func(total int)
	OnProgress fileproc.ProgressFunc
	OnSkip     fileproc.SkipFunc
	OnWarn     func(msg string)
}

// PatchResult is the outcome of a patch run.
type PatchResult struct {
	Scan    *models.ScanResult
	Records []patch.Record
	Dir     string
	Applied bool
	// Errors holds per-file write failures.
	Errors *fileproc.ProcessingErrors
}

// Patch rewrites the files named by unused-import issues in the cached
// scan. Artifacts are always written; sources are overwritten only when
// applying outside dry-run. The cache records a summary of every artifact.
// A non-nil error with a non-nil result means some files failed to write.
func (s *Service) Patch(ctx context.Context, opts PatchOptions) (*PatchResult, error) {
	warn := opts.OnWarn
	if warn == nil {
		warn = func(string) {}
	}

	scan, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	if s.store.IsStale(scan) {
		warn(fmt.Sprintf("last scan was %s; consider rerunning `sweepstacx scan`", humanize.Time(scan.ScannedAt)))
	}

	dir := opts.Dir
	if dir == "" {
		dir = s.config.Patch.Dir
	}
	mode := patch.ModePreview
	if opts.Apply {
		mode = patch.ModeApply
	}
	em := patch.NewEmitter(dir, patch.WithMode(mode), patch.WithDryRun(opts.DryRun))

	files, tokens := scan.UnusedByFile()
	if opts.OnStart != nil {
		opts.OnStart(len(files))
	}
	if em.Applies() && s.config.Patch.CheckGit {
		warnDirty(scan.Root, files, warn)
	}

	var ts *parser.Parser
	if s.config.Patch.VerifySyntax {
		ts = parser.New()
		defer ts.Close()
	}

	out := &PatchResult{
		Scan:    scan,
		Dir:     dir,
		Applied: em.Applies(),
		Errors:  &fileproc.ProcessingErrors{},
	}
	p := &patcher{ctx: ctx, scan: scan, emitter: em, syntax: ts}
	for _, rel := range files {
		var rec *patch.Record
		err := fileproc.Guard(func() error {
			var err error
			rec, err = p.file(rel, tokens[rel])
			return err
		})

		var we *patch.WriteError
		switch {
		case errors.As(err, &we):
			out.Errors.Add(rel, err)
		case errors.Is(err, ErrSyntaxRegression):
			warn(fmt.Sprintf("%s: %v; left unchanged", rel, err))
		case err != nil && opts.OnSkip != nil:
			opts.OnSkip(rel, err)
		}
		if rec != nil && rec.Diff != "" {
			out.Records = append(out.Records, *rec)
		}
		if opts.OnProgress != nil {
			opts.OnProgress()
		}
	}

	now := time.Now().UTC()
	for _, rec := range out.Records {
		scan.Patches = append(scan.Patches, models.PatchSummary{
			File:         rec.File,
			Diff:         filepath.ToSlash(rec.Diff),
			Edits:        len(rec.Edits),
			Applied:      rec.Applied,
			LinesRemoved: rec.LinesRemoved,
			LinesChanged: rec.LinesChanged,
			CreatedAt:    now,
		})
		if rec.Applied {
			scan.Stats.LOCRemoved += rec.LinesRemoved
		}
	}
	if len(out.Records) > 0 {
		if err := s.store.Update(scan); err != nil {
			out.Errors.Add(s.store.Path(), err)
		}
	}
	return out, out.Errors.Err()
}

func warnDirty(root string, files []string, warn func(string)) {
	wt, err := vcs.Open(root)
	if errors.Is(err, vcs.ErrNotRepository) {
		warn("not a git repository; applied edits cannot be reverted with git")
		return
	}
	if err != nil {
		warn(fmt.Sprintf("git status unavailable: %v", err))
		return
	}
	abs := make([]string, len(files))
	for i, rel := range files {
		abs[i] = filepath.Join(root, filepath.FromSlash(rel))
	}
	for _, path := range wt.DirtyFiles(abs) {
		warn(fmt.Sprintf("%s has uncommitted changes", relPath(root, path)))
	}
}

// patcher carries the per-run state shared by every file of a patch pass.
type patcher struct {
	ctx     context.Context
	scan    *models.ScanResult
	emitter *patch.Emitter
	syntax  *parser.Parser
}

// file rewrites one file. A nil record means there was nothing to change.
func (p *patcher) file(rel string, tokens []string) (*patch.Record, error) {
	abs := filepath.Join(p.scan.Root, filepath.FromSlash(rel))
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	lang := parser.DetectLanguage(abs)
	g, ok := parser.GrammarFor(lang)
	if !ok {
		return nil, ErrUnsupportedLanguage
	}

	src := string(data)
	f := imports.Parse(g, src)
	var findings []unused.Finding
	if h, ok := p.scan.Files[rel]; ok && h == cache.HashBytes(data) {
		findings = unused.Select(f, tokens)
	} else {
		// Changed since the scan: only remove what is still unused.
		findings = unused.Restrict(unused.Analyze(f), tokens)
	}

	modified, edits, err := rewrite.Apply(src, rewrite.File(findings))
	if err != nil {
		return nil, err
	}
	if len(edits) == 0 || modified == src {
		return nil, nil
	}

	if p.syntax != nil {
		regressed, err := p.syntax.Regressed(p.ctx, data, []byte(modified), lang)
		if err != nil {
			return nil, fmt.Errorf("verify syntax: %w", err)
		}
		if regressed {
			return nil, ErrSyntaxRegression
		}
	}

	rec, err := p.emitter.Emit(abs, rel, src, modified, edits)
	return &rec, err
}

func relPath(root, abs string) string {
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}
