// Package rewrite turns unused-binding findings into minimal statement
// edits and applies them to the source in a single pass.
package rewrite

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/panbanda/sweepstacx/pkg/analyzer/unused"
	"github.com/panbanda/sweepstacx/pkg/imports"
)

// Action is what an edit does to its statement.
type Action string

const (
	ActionRemove  Action = "remove-statement"
	ActionRewrite Action = "rewrite-statement"
)

// String implements fmt.Stringer.
func (a Action) String() string {
	return string(a)
}

// Tag is the short form written into patch headers.
func (a Action) Tag() string {
	if a == ActionRemove {
		return "remove-line"
	}
	return "edit-line"
}

// ErrOverlap is returned by Apply when two edits cover the same bytes.
var ErrOverlap = errors.New("overlapping edits")

// Edit replaces one statement span.
type Edit struct {
	Span        imports.Span `json:"span"`
	Line        int          `json:"line"`
	Action      Action       `json:"action"`
	Removed     []string     `json:"removed"`
	Replacement string       `json:"replacement"`
}

// Statement builds the edit that drops the named locals from st. It reports
// false when none of st's bindings are named.
func Statement(st *imports.Statement, drop []string) (Edit, bool) {
	gone := make(map[string]bool, len(drop))
	for _, d := range drop {
		gone[d] = true
	}

	var keep []imports.Binding
	var removed []string
	for _, b := range st.Bindings {
		if gone[b.Local] {
			removed = append(removed, b.Local)
			continue
		}
		keep = append(keep, b)
	}
	if len(removed) == 0 {
		return Edit{}, false
	}

	e := Edit{Span: st.Span, Line: st.Line, Action: ActionRemove, Removed: removed}
	if len(keep) == 0 {
		return e, true
	}
	e.Action = ActionRewrite
	if st.Grammar == imports.GrammarPython {
		e.Replacement = python(st, keep)
	} else {
		e.Replacement = es(st, keep)
	}
	return e, true
}

// File builds the edits for a whole file from its findings.
func File(findings []unused.Finding) []Edit {
	var edits []Edit
	for _, fd := range findings {
		if e, ok := Statement(fd.Statement, fd.Tokens()); ok {
			edits = append(edits, e)
		}
	}
	return edits
}

// Apply sorts edits by start offset and splices them into src in one pass.
// The returned slice is the sorted edit list.
func Apply(src string, edits []Edit) (string, []Edit, error) {
	if len(edits) == 0 {
		return src, nil, nil
	}
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Span.Start < sorted[j].Span.Start
	})

	var b strings.Builder
	b.Grow(len(src))
	pos := 0
	for _, e := range sorted {
		if e.Span.Start < pos || e.Span.End > len(src) || e.Span.End < e.Span.Start {
			return "", nil, fmt.Errorf("edit at line %d [%d,%d): %w", e.Line, e.Span.Start, e.Span.End, ErrOverlap)
		}
		b.WriteString(src[pos:e.Span.Start])
		b.WriteString(e.Replacement)
		pos = e.Span.End
	}
	b.WriteString(src[pos:])
	return b.String(), sorted, nil
}

func es(st *imports.Statement, keep []imports.Binding) string {
	var def, ns string
	var named []string
	for _, b := range keep {
		switch b.Kind {
		case imports.KindDefault:
			def = b.Local
		case imports.KindNamespace:
			ns = "* as " + b.Local
		default:
			s := b.Declared
			if b.Aliased {
				s += " as " + b.Local
			}
			if b.TypeOnly {
				s = "type " + s
			}
			named = append(named, s)
		}
	}

	var groups []string
	if def != "" {
		groups = append(groups, def)
	}
	if ns != "" {
		groups = append(groups, ns)
	}
	if len(named) > 0 {
		groups = append(groups, "{ "+strings.Join(named, ", ")+" }")
	}

	var b strings.Builder
	b.WriteString(st.Indent)
	b.WriteString("import ")
	if st.TypeOnly {
		b.WriteString("type ")
	}
	b.WriteString(strings.Join(groups, ", "))
	b.WriteString(" from ")
	b.WriteString(st.Source)
	if st.Semicolon {
		b.WriteString(";")
	}
	b.WriteString(st.Trailing)
	b.WriteString(st.EOL)
	return b.String()
}

func python(st *imports.Statement, keep []imports.Binding) string {
	names := make([]string, len(keep))
	for i, b := range keep {
		names[i] = b.Declared
		if b.Aliased {
			names[i] += " as " + b.Local
		}
	}
	list := strings.Join(names, ", ")

	var b strings.Builder
	b.WriteString(st.Indent)
	switch {
	case !st.FromImport:
		b.WriteString("import " + list)
	case st.Parens:
		b.WriteString("from " + st.Module + " import (" + list + ")")
	default:
		b.WriteString("from " + st.Module + " import " + list)
	}
	b.WriteString(st.Trailing)
	b.WriteString(st.EOL)
	return b.String()
}
