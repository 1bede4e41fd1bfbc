package imports

import "strings"

// Parse masks src and extracts every import statement it can recognize, in
// source order. Lines that look like imports but do not parse cleanly are
// skipped and stay untouched by later stages.
func Parse(g Grammar, src string) *File {
	f := &File{Grammar: g, Source: src, Code: Mask(g, src)}

	line := 1
	for pos := 0; pos < len(src); {
		var (
			st Statement
			ok bool
		)
		if g == GrammarPython {
			st, ok = parsePython(f, pos)
		} else {
			st, ok = parseES(f, pos)
		}

		next := lineEnd(src, pos) + 1
		if ok {
			st.Grammar = g
			st.Line = line
			f.Statements = append(f.Statements, st)
			next = st.Span.End
		}
		if next > len(src) {
			next = len(src)
		}
		line += strings.Count(src[pos:next], "\n")
		pos = next
	}
	return f
}

// Spans returns the spans of all statements in f.
func (f *File) Spans() []Span {
	spans := make([]Span, len(f.Statements))
	for i, st := range f.Statements {
		spans[i] = st.Span
	}
	return spans
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t'
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func skipBlanks(s string, i int) int {
	for i < len(s) && isBlank(s[i]) {
		i++
	}
	return i
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

// hasWord reports whether s[i:] starts with word as a whole identifier.
func hasWord(g Grammar, s string, i int, word string) bool {
	if !strings.HasPrefix(s[i:], word) {
		return false
	}
	j := i + len(word)
	return j == len(s) || !IsIdentByte(g, s[j])
}

// readIdent returns the identifier at s[i:] and the index after it, or ""
// when no identifier starts at i.
func readIdent(g Grammar, s string, i int) (string, int) {
	if i >= len(s) || !IsIdentByte(g, s[i]) || (s[i] >= '0' && s[i] <= '9') {
		return "", i
	}
	j := i + 1
	for j < len(s) && IsIdentByte(g, s[j]) {
		j++
	}
	return s[i:j], j
}

// finish validates the rest of the statement's last line from k, which may
// hold only whitespace and a comment accepted by isComment, and fills in
// the span, raw text, trailing comment and line terminator.
func finish(f *File, st *Statement, pos, k int, isComment func(string) bool) bool {
	src, code := f.Source, f.Code
	le := lineEnd(src, k)
	if strings.TrimSpace(code[k:le]) != "" {
		return false
	}

	tail := src[k:le]
	eol := ""
	end := le
	if le < len(src) {
		eol = "\n"
		end = le + 1
	}
	if strings.HasSuffix(tail, "\r") {
		tail = tail[:len(tail)-1]
		eol = "\r" + eol
	}

	if t := strings.TrimSpace(tail); t != "" {
		if !isComment(t) {
			return false
		}
		st.Trailing = strings.TrimRight(tail, " \t")
	}

	st.Span = Span{Start: pos, End: end}
	st.Raw = src[pos:end]
	st.EOL = eol
	return true
}
