// Package imports recognizes ES module and Python import statements in raw
// source text and records every binding they introduce together with the
// exact byte span of the statement.
package imports

// Grammar selects the import syntax a file is parsed with.
type Grammar string

const (
	// GrammarES covers JavaScript, JSX, TypeScript and TSX.
	GrammarES     Grammar = "es"
	GrammarPython Grammar = "python"
)

// String implements fmt.Stringer.
func (g Grammar) String() string {
	return string(g)
}

// Kind classifies how a binding was introduced.
type Kind string

const (
	KindDefault   Kind = "default"       // import Def from 'm'
	KindNamespace Kind = "namespace"     // import * as ns from 'm'
	KindNamed     Kind = "named"         // import { a, b as bb } from 'm'
	KindPyImport  Kind = "python-import" // import a.b as c
	KindPyFrom    Kind = "python-from"   // from m import a as b
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	return string(k)
}

// Binding is one locally visible name introduced by an import statement.
type Binding struct {
	// Local is the identifier matched against the file body.
	Local string `json:"local"`
	// Declared is the exported name (ES), imported name (Python from) or
	// dotted module path (Python import). "default" and "*" for ES default
	// and namespace bindings.
	Declared string `json:"declared"`
	Kind     Kind   `json:"kind"`
	Aliased  bool   `json:"aliased,omitempty"`
	// TypeOnly marks an inline TypeScript `type` modifier on a named entry.
	TypeOnly bool `json:"type_only,omitempty"`
}

// Span is a half-open byte range [Start, End) into the source.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered.
func (s Span) Len() int {
	return s.End - s.Start
}

// Statement is a single parsed import statement.
// Source[Span.Start:Span.End] == Raw, including the line terminator.
type Statement struct {
	Grammar  Grammar   `json:"grammar"`
	Raw      string    `json:"raw"`
	Span     Span      `json:"span"`
	Line     int       `json:"line"`
	Indent   string    `json:"indent,omitempty"`
	Module   string    `json:"module"`
	Bindings []Binding `json:"bindings"`
	// Trailing is a comment following the statement on its last line,
	// kept verbatim with its leading whitespace.
	Trailing string `json:"trailing,omitempty"`
	// EOL is the line terminator that ended the statement: "\n", "\r\n",
	// or empty at end of file.
	EOL string `json:"-"`

	// ES only.
	Source    string `json:"source,omitempty"` // quoted specifier as written
	Semicolon bool   `json:"semicolon,omitempty"`
	TypeOnly  bool   `json:"type_only,omitempty"`

	// Python only.
	Parens bool `json:"parens,omitempty"`
	Star   bool `json:"star,omitempty"`
	// FromImport distinguishes `from m import ...` from `import m`.
	FromImport bool `json:"from_import,omitempty"`
}

// Locals returns the local names of all bindings in declaration order.
func (s *Statement) Locals() []string {
	names := make([]string, len(s.Bindings))
	for i, b := range s.Bindings {
		names[i] = b.Local
	}
	return names
}

// File holds everything parsed out of one source file. It is built once per
// file and passed by pointer through scanning and rewriting.
type File struct {
	Grammar Grammar
	Source  string
	// Code is Source with strings and comments blanked (see Mask).
	Code       string
	Statements []Statement
}
