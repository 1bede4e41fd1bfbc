package imports

import "strings"

// futureModule imports change compiler behavior and define no names used
// in the body, so their bindings are never recorded.
const futureModule = "__future__"

// parsePython recognizes `import a.b [as c], ...` and
// `from [.]*mod import names` starting at the line beginning at pos.
func parsePython(f *File, pos int) (Statement, bool) {
	code := f.Code
	i := skipBlanks(code, pos)
	st := Statement{Indent: f.Source[pos:i]}

	var (
		k  int
		ok bool
	)
	switch {
	case hasWord(GrammarPython, code, i, "import"):
		k, ok = pyImport(code, i+len("import"), &st)
	case hasWord(GrammarPython, code, i, "from"):
		k, ok = pyFrom(code, i+len("from"), &st)
	default:
		return Statement{}, false
	}
	if !ok {
		return Statement{}, false
	}
	if !finish(f, &st, pos, k, pyComment) {
		return Statement{}, false
	}
	if st.Module == futureModule {
		st.Bindings = nil
	}
	return st, true
}

func pyComment(t string) bool {
	return strings.HasPrefix(t, "#")
}

// pyDotted reads `ident(.ident)*` at i.
func pyDotted(code string, i int) (string, int) {
	start := i
	for {
		word, j := readIdent(GrammarPython, code, i)
		if word == "" {
			return "", start
		}
		i = j
		if i+1 < len(code) && code[i] == '.' && IsIdentByte(GrammarPython, code[i+1]) {
			i++
			continue
		}
		return code[start:i], i
	}
}

// pyAlias reads an optional `as name` after j, using skip to step over
// whitespace. It returns the alias, or "" when absent, and the index after it.
func pyAlias(code string, j int, skip func(string, int) int) (string, int, bool) {
	k := skip(code, j)
	if !hasWord(GrammarPython, code, k, "as") || k == j {
		return "", j, true
	}
	k = skip(code, k+len("as"))
	alias, e := readIdent(GrammarPython, code, k)
	if alias == "" {
		return "", j, false
	}
	return alias, e, true
}

func pyImport(code string, i int, st *Statement) (int, bool) {
	if i >= len(code) || !isBlank(code[i]) {
		return i, false
	}
	for {
		i = skipBlanks(code, i)
		mod, j := pyDotted(code, i)
		if mod == "" {
			return i, false
		}

		b := Binding{Declared: mod, Kind: KindPyImport}
		alias, j, ok := pyAlias(code, j, skipBlanks)
		if !ok {
			return j, false
		}
		if alias != "" {
			b.Local = alias
			b.Aliased = true
		} else {
			b.Local, _, _ = strings.Cut(mod, ".")
		}
		st.Bindings = append(st.Bindings, b)
		if st.Module == "" {
			st.Module = mod
		}

		// The statement ends right after its last name so a trailing
		// comment, blanked in code, is still seen by finish.
		if k := skipBlanks(code, j); k < len(code) && code[k] == ',' {
			i = k + 1
			continue
		}
		return j, true
	}
}

func pyFrom(code string, i int, st *Statement) (int, bool) {
	if i >= len(code) || !isBlank(code[i]) {
		return i, false
	}
	i = skipBlanks(code, i)

	start := i
	for i < len(code) && code[i] == '.' {
		i++
	}
	if i < len(code) && IsIdentByte(GrammarPython, code[i]) {
		mod, j := pyDotted(code, i)
		if mod == "" {
			return i, false
		}
		i = j
	}
	if i == start {
		return i, false
	}
	st.Module = code[start:i]
	st.FromImport = true

	if i >= len(code) || !isBlank(code[i]) {
		return i, false
	}
	i = skipBlanks(code, i)
	if !hasWord(GrammarPython, code, i, "import") {
		return i, false
	}
	i += len("import")
	j := skipBlanks(code, i)
	switch {
	case j < len(code) && code[j] == '(':
		st.Parens = true
		return pyNames(code, j+1, st, skipSpace, true)
	case j < len(code) && code[j] == '*':
		st.Star = true
		return j + 1, true
	case j == i:
		return j, false
	}
	return pyNames(code, j, st, skipBlanks, false)
}

// pyNames reads `name [as alias], ...`. Inside parentheses whitespace
// includes newlines, a trailing comma is allowed and the list must close
// with ')'.
func pyNames(code string, i int, st *Statement, skip func(string, int) int, parens bool) (int, bool) {
	for {
		i = skip(code, i)
		if parens && i < len(code) && code[i] == ')' && len(st.Bindings) > 0 {
			return i + 1, true
		}
		name, j := readIdent(GrammarPython, code, i)
		if name == "" {
			return i, false
		}

		b := Binding{Local: name, Declared: name, Kind: KindPyFrom}
		alias, j, ok := pyAlias(code, j, skip)
		if !ok {
			return j, false
		}
		if alias != "" {
			b.Local = alias
			b.Aliased = true
		}
		st.Bindings = append(st.Bindings, b)

		k := skip(code, j)
		switch {
		case k < len(code) && code[k] == ',':
			i = k + 1
		case parens && k < len(code) && code[k] == ')':
			return k + 1, true
		case parens:
			return k, false
		default:
			return j, true
		}
	}
}
