// Package patch renders reviewable artifacts for rewritten files and, in
// apply mode, writes the rewritten sources back.
package patch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/panbanda/sweepstacx/pkg/rewrite"
)

// Mode selects whether sources are overwritten.
type Mode string

const (
	ModePreview Mode = "preview"
	ModeApply   Mode = "apply"
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	return string(m)
}

// Record describes one modified file.
type Record struct {
	File         string         `json:"file"`
	Edits        []rewrite.Edit `json:"edits"`
	Diff         string         `json:"diff"`
	Original     string         `json:"-"`
	Modified     string         `json:"-"`
	Applied      bool           `json:"applied"`
	LinesRemoved int            `json:"lines_removed"`
	LinesChanged int            `json:"lines_changed"`
}

// WriteError is a failure to write an artifact or a rewritten source.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// EditsLine formats the `# Edits:` header line. Edits must already be in
// ascending line order.
func EditsLine(edits []rewrite.Edit) string {
	parts := make([]string, len(edits))
	for i, e := range edits {
		parts[i] = fmt.Sprintf("%s@%d[%s]", e.Action.Tag(), e.Line, strings.Join(e.Removed, "|"))
	}
	return "# Edits: " + strings.Join(parts, ", ")
}

// Render builds the artifact text for one file.
func Render(rel, original, modified string, edits []rewrite.Edit) string {
	return strings.Join([]string{
		"diff -- (preview) " + rel,
		"--- a/" + rel,
		"+++ b/" + rel,
		EditsLine(edits),
		"@@ ORIGINAL @@",
		original,
		"@@ MODIFIED @@",
		modified,
		"",
	}, "\n")
}

// LineStats counts whole lines removed and replaced between before and after.
func LineStats(before, after string) (removed, changed int) {
	dmp := diffmatchpatch.New()
	a, b, _ := dmp.DiffLinesToRunes(before, after)
	diffs := dmp.DiffMainRunes(a, b, false)

	var pending int
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			removed += pending
			pending = 0
		case diffmatchpatch.DiffInsert:
			n := utf8.RuneCountInString(d.Text)
			if pending > n {
				changed += n
				removed += pending - n
			} else {
				changed += pending
			}
			pending = 0
		case diffmatchpatch.DiffDelete:
			pending = utf8.RuneCountInString(d.Text)
		}
	}
	removed += pending
	return removed, changed
}

// Emitter numbers and writes artifacts for one run.
type Emitter struct {
	dir    string
	mode   Mode
	dryRun bool
	next   int
	// Patch directory is created lazily on the first artifact.
	ready bool
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithMode sets preview or apply mode.
func WithMode(m Mode) Option {
	return func(e *Emitter) {
		e.mode = m
	}
}

// WithDryRun makes apply mode behave as preview.
func WithDryRun(dry bool) Option {
	return func(e *Emitter) {
		e.dryRun = dry
	}
}

// NewEmitter creates an emitter writing artifacts into dir.
func NewEmitter(dir string, opts ...Option) *Emitter {
	e := &Emitter{dir: dir, mode: ModePreview, next: 1}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Applies reports whether emitted files are written back.
func (e *Emitter) Applies() bool {
	return e.mode == ModeApply && !e.dryRun
}

// Dir returns the artifact directory.
func (e *Emitter) Dir() string {
	return e.dir
}

// Emit writes the artifact for rel and, when applying, overwrites abs with
// the modified text. Numbering advances only when the artifact is written.
// An apply failure still returns the record with Applied unset.
func (e *Emitter) Emit(abs, rel, original, modified string, edits []rewrite.Edit) (Record, error) {
	rec := Record{File: rel, Edits: edits, Original: original, Modified: modified}
	rec.LinesRemoved, rec.LinesChanged = LineStats(original, modified)

	if !e.ready {
		if err := os.MkdirAll(e.dir, 0o755); err != nil {
			return rec, &WriteError{Path: e.dir, Err: err}
		}
		e.ready = true
	}

	name := filepath.Join(e.dir, fmt.Sprintf("patch-%03d.diff", e.next))
	if err := os.WriteFile(name, []byte(Render(rel, original, modified, edits)), 0o644); err != nil {
		return rec, &WriteError{Path: name, Err: err}
	}
	e.next++
	rec.Diff = name

	if !e.Applies() {
		return rec, nil
	}
	perm := os.FileMode(0o644)
	if info, err := os.Stat(abs); err == nil {
		perm = info.Mode().Perm()
	}
	if err := os.WriteFile(abs, []byte(modified), perm); err != nil {
		return rec, &WriteError{Path: abs, Err: err}
	}
	rec.Applied = true
	return rec, nil
}
