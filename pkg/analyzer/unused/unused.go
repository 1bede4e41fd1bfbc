// Package unused decides which import bindings are never referenced in the
// rest of their file.
//
// A binding counts as used when its local name appears as a whole word in
// the body view: the file with strings, comments and every import statement
// blanked out. No scope resolution is attempted.
package unused

import (
	"fmt"
	"strings"

	"github.com/panbanda/sweepstacx/pkg/imports"
	"github.com/panbanda/sweepstacx/pkg/models"
)

// Finding lists the unused bindings of one statement.
type Finding struct {
	Statement *imports.Statement
	Unused    []imports.Binding
}

// Tokens returns the local names of the unused bindings.
func (f Finding) Tokens() []string {
	names := make([]string, len(f.Unused))
	for i, b := range f.Unused {
		names[i] = b.Local
	}
	return names
}

// Body returns the body view of f.
func Body(f *imports.File) string {
	return imports.Blank(f.Code, f.Spans())
}

// Words returns the set of identifiers present in body.
func Words(g imports.Grammar, body string) map[string]bool {
	words := make(map[string]bool)
	for i := 0; i < len(body); {
		if !imports.IsIdentByte(g, body[i]) {
			i++
			continue
		}
		j := i + 1
		for j < len(body) && imports.IsIdentByte(g, body[j]) {
			j++
		}
		words[body[i:j]] = true
		i = j
	}
	return words
}

// Index maps every bound local name in f to whether it is used.
func Index(f *imports.File) map[string]bool {
	words := Words(f.Grammar, Body(f))
	idx := make(map[string]bool)
	for _, st := range f.Statements {
		for _, b := range st.Bindings {
			idx[b.Local] = words[b.Local]
		}
	}
	return idx
}

// throwaway is the Python placeholder name, never reported.
const throwaway = "_"

// Analyze returns one Finding per statement that has at least one unused
// binding, in source order. Star imports carry no bindings and never
// produce a finding.
func Analyze(f *imports.File) []Finding {
	idx := Index(f)
	var out []Finding
	for i := range f.Statements {
		st := &f.Statements[i]
		if st.Star {
			continue
		}
		var dead []imports.Binding
		for _, b := range st.Bindings {
			if f.Grammar == imports.GrammarPython && b.Local == throwaway {
				continue
			}
			if !idx[b.Local] {
				dead = append(dead, b)
			}
		}
		if len(dead) > 0 {
			out = append(out, Finding{Statement: st, Unused: dead})
		}
	}
	return out
}

// Restrict keeps only the unused bindings whose local name is in tokens.
// Findings left empty are dropped.
func Restrict(findings []Finding, tokens []string) []Finding {
	want := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		want[t] = true
	}
	var out []Finding
	for _, fd := range findings {
		var keep []imports.Binding
		for _, b := range fd.Unused {
			if want[b.Local] {
				keep = append(keep, b)
			}
		}
		if len(keep) > 0 {
			out = append(out, Finding{Statement: fd.Statement, Unused: keep})
		}
	}
	return out
}

// Select builds findings for the named tokens without consulting usage.
// It is used when the file is known to be unchanged since it was scanned.
func Select(f *imports.File, tokens []string) []Finding {
	want := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		want[t] = true
	}
	var out []Finding
	for i := range f.Statements {
		st := &f.Statements[i]
		var dead []imports.Binding
		for _, b := range st.Bindings {
			if want[b.Local] {
				dead = append(dead, b)
			}
		}
		if len(dead) > 0 {
			out = append(out, Finding{Statement: st, Unused: dead})
		}
	}
	return out
}

// Issues converts findings for the file at rel into scan issues.
func Issues(rel string, findings []Finding) []models.Issue {
	var out []models.Issue
	for _, fd := range findings {
		first, _, _ := strings.Cut(fd.Statement.Raw, "\n")
		first = strings.TrimSpace(first)
		for _, b := range fd.Unused {
			out = append(out, models.Issue{
				Type:       models.IssueUnusedImport,
				File:       rel,
				Line:       fd.Statement.Line,
				Token:      b.Local,
				Module:     fd.Statement.Module,
				Suggestion: fmt.Sprintf("Remove '%s' from: %s", b.Local, first),
			})
		}
	}
	return out
}
