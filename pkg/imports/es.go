package imports

import "strings"

type esToken struct {
	text  string
	punct bool
}

func (t esToken) is(s string) bool {
	return t.text == s
}

func (t esToken) ident() bool {
	return !t.punct
}

// parseES recognizes `import <clause> from '<module>'[;]` starting at the
// line beginning at pos.
func parseES(f *File, pos int) (Statement, bool) {
	src, code := f.Source, f.Code
	i := skipBlanks(code, pos)
	if !strings.HasPrefix(code[i:], "import") {
		return Statement{}, false
	}
	j := i + len("import")
	if j >= len(code) {
		return Statement{}, false
	}
	if c := code[j]; !isSpace(c) && c != '{' && c != '*' {
		return Statement{}, false
	}

	toks, j, ok := esClause(f, j)
	if !ok {
		return Statement{}, false
	}

	// Module specifier: the only string literal allowed in the statement.
	j = esSkip(src, j)
	if j >= len(src) || (src[j] != '\'' && src[j] != '"') {
		return Statement{}, false
	}
	q := src[j]
	end := j + 1
	for end < len(src) && src[end] != q && src[end] != '\n' {
		if src[end] == '\\' {
			end++
		}
		end++
	}
	if end >= len(src) || src[end] != q {
		return Statement{}, false
	}

	st := Statement{
		Indent: src[pos:i],
		Module: src[j+1 : end],
		Source: src[j : end+1],
	}

	bindings, typeOnly, ok := esBindings(toks)
	if !ok || len(bindings) == 0 {
		return Statement{}, false
	}
	st.Bindings = bindings
	st.TypeOnly = typeOnly

	k := end + 1
	if s := skipBlanks(src, k); s < len(src) && src[s] == ';' {
		st.Semicolon = true
		k = s + 1
	}
	if !finish(f, &st, pos, k, esComment) {
		return Statement{}, false
	}
	return st, true
}

// esComment accepts a line comment, or a block comment closed on the same
// line and optionally followed by a line comment.
func esComment(t string) bool {
	if strings.HasPrefix(t, "//") {
		return true
	}
	if !strings.HasPrefix(t, "/*") {
		return false
	}
	k := strings.Index(t[2:], "*/")
	if k < 0 {
		return false
	}
	rest := strings.TrimSpace(t[2+k+2:])
	return rest == "" || strings.HasPrefix(rest, "//")
}

// esSkip steps over whitespace and comments in src from i. It stops at
// the first byte of a string literal, which Mask has already blanked in
// the masked copy.
func esSkip(src string, i int) int {
	for i < len(src) {
		switch {
		case isSpace(src[i]):
			i++
		case strings.HasPrefix(src[i:], "//"):
			i = lineEnd(src, i)
		case strings.HasPrefix(src[i:], "/*"):
			j := strings.Index(src[i+2:], "*/")
			if j < 0 {
				return len(src)
			}
			i += 2 + j + 2
		default:
			return i
		}
	}
	return i
}

// esClause tokenizes the import clause from i up to and including the
// `from` keyword. It returns the clause tokens and the index after `from`.
func esClause(f *File, i int) ([]esToken, int, bool) {
	src, code := f.Source, f.Code
	var toks []esToken
	depth := 0
	for {
		i = esSkip(src, i)
		if i >= len(code) {
			return nil, i, false
		}
		if c := src[i]; c == '\'' || c == '"' || c == '`' {
			// Side-effect import or a string where a name belongs.
			return nil, i, false
		}

		c := code[i]
		switch {
		case c == '{':
			depth++
			if depth > 1 {
				return nil, i, false
			}
			toks = append(toks, esToken{text: "{", punct: true})
			i++
		case c == '}':
			depth--
			if depth < 0 {
				return nil, i, false
			}
			toks = append(toks, esToken{text: "}", punct: true})
			i++
		case c == ',' || c == '*':
			toks = append(toks, esToken{text: string(c), punct: true})
			i++
		default:
			word, j := readIdent(GrammarES, code, i)
			if word == "" {
				return nil, i, false
			}
			if word == "from" && depth == 0 && len(toks) > 0 && !toks[len(toks)-1].is("as") {
				return toks, j, true
			}
			toks = append(toks, esToken{text: word})
			i = j
		}
	}
}

// esBindings turns clause tokens into bindings ordered default, namespace,
// named. A leading `type` keyword marks the whole statement type-only.
func esBindings(toks []esToken) ([]Binding, bool, bool) {
	var (
		bindings []Binding
		typeOnly bool
		p        int
	)

	if len(toks) > 1 && toks[0].is("type") && (toks[1].ident() || toks[1].is("{") || toks[1].is("*")) {
		typeOnly = true
		p = 1
	}

	seenNamespace, seenNamed := false, false
	for first := true; p < len(toks); first = false {
		if !first {
			if !toks[p].is(",") {
				return nil, false, false
			}
			p++
			if p >= len(toks) {
				return nil, false, false
			}
		}

		t := toks[p]
		switch {
		case t.ident() && first:
			bindings = append(bindings, Binding{Local: t.text, Declared: "default", Kind: KindDefault})
			p++
		case t.is("*"):
			if seenNamespace || seenNamed || p+2 >= len(toks) || !toks[p+1].is("as") || !toks[p+2].ident() {
				return nil, false, false
			}
			bindings = append(bindings, Binding{Local: toks[p+2].text, Declared: "*", Kind: KindNamespace, Aliased: true})
			seenNamespace = true
			p += 3
		case t.is("{"):
			if seenNamed || seenNamespace {
				return nil, false, false
			}
			named, next, ok := esNamed(toks, p+1)
			if !ok {
				return nil, false, false
			}
			bindings = append(bindings, named...)
			seenNamed = true
			p = next
		default:
			return nil, false, false
		}
	}
	return bindings, typeOnly, true
}

// esNamed parses `a, type b, c as d }` starting just after the opening brace.
func esNamed(toks []esToken, p int) ([]Binding, int, bool) {
	var named []Binding
	for {
		if p >= len(toks) {
			return nil, p, false
		}
		if toks[p].is("}") {
			return named, p + 1, true
		}

		b := Binding{Kind: KindNamed}
		if toks[p].is("type") && p+1 < len(toks) && toks[p+1].ident() && !toks[p+1].is("as") {
			b.TypeOnly = true
			p++
		}
		if !toks[p].ident() {
			return nil, p, false
		}
		b.Declared = toks[p].text
		b.Local = b.Declared
		p++

		if p < len(toks) && toks[p].is("as") {
			if p+1 >= len(toks) || !toks[p+1].ident() {
				return nil, p, false
			}
			b.Local = toks[p+1].text
			b.Aliased = true
			p += 2
		}
		named = append(named, b)

		if p >= len(toks) {
			return nil, p, false
		}
		switch {
		case toks[p].is(","):
			p++
		case toks[p].is("}"):
			return named, p + 1, true
		default:
			return nil, p, false
		}
	}
}
