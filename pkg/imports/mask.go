package imports

import "strings"

// Mask returns src with string literals and comments replaced by spaces.
// Newlines are kept, so offsets and line numbers in the result match src.
// Code inside ES template substitutions (${...}) and Python f-string
// replacement fields ({...}) is left intact.
//
// Regular expression literals are not recognized; a quote inside one is
// treated as the start of a string that ends at the line break.
func Mask(g Grammar, src string) string {
	out := []byte(src)
	switch g {
	case GrammarPython:
		m := &pyMasker{src: src, out: out}
		m.code(0, false)
	default:
		m := &esMasker{src: src, out: out}
		m.code(0, false)
	}
	return string(out)
}

// Blank returns s with every byte inside the given spans, other than
// newlines, replaced by a space.
func Blank(s string, spans []Span) string {
	out := []byte(s)
	for _, sp := range spans {
		blank(out, sp.Start, sp.End)
	}
	return string(out)
}

func blank(out []byte, start, end int) {
	if end > len(out) {
		end = len(out)
	}
	for i := start; i < end; i++ {
		if out[i] != '\n' {
			out[i] = ' '
		}
	}
}

// IsIdentByte reports whether c can be part of an identifier in g.
// Bytes of multi-byte UTF-8 sequences count as identifier bytes.
func IsIdentByte(g Grammar, c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		return true
	case c >= 0x80:
		return true
	case c == '$':
		return g == GrammarES
	}
	return false
}

func lineEnd(s string, i int) int {
	if j := strings.IndexByte(s[i:], '\n'); j >= 0 {
		return i + j
	}
	return len(s)
}

type esMasker struct {
	src string
	out []byte
}

// code walks ES code from i. With nested set it returns the index of the
// '}' that closes the current template substitution.
func (m *esMasker) code(i int, nested bool) int {
	depth := 0
	n := len(m.src)
	for i < n {
		c := m.src[i]
		switch {
		case c == '/' && i+1 < n && m.src[i+1] == '/':
			end := lineEnd(m.src, i)
			blank(m.out, i, end)
			i = end
		case c == '/' && i+1 < n && m.src[i+1] == '*':
			end := n
			if j := strings.Index(m.src[i+2:], "*/"); j >= 0 {
				end = i + 2 + j + 2
			}
			blank(m.out, i, end)
			i = end
		case c == '\'' || c == '"':
			i = m.quoted(i, c)
		case c == '`':
			i = m.template(i)
		case c == '{':
			depth++
			i++
		case c == '}':
			if nested && depth == 0 {
				return i
			}
			if depth > 0 {
				depth--
			}
			i++
		default:
			i++
		}
	}
	return n
}

func (m *esMasker) quoted(i int, q byte) int {
	n := len(m.src)
	j := i + 1
	for j < n {
		c := m.src[j]
		if c == '\\' {
			j += 2
			continue
		}
		if c == q {
			j++
			break
		}
		if c == '\n' {
			break
		}
		j++
	}
	if j > n {
		j = n
	}
	blank(m.out, i, j)
	return j
}

func (m *esMasker) template(i int) int {
	n := len(m.src)
	start := i
	j := i + 1
	for j < n {
		c := m.src[j]
		switch {
		case c == '\\':
			j += 2
		case c == '`':
			blank(m.out, start, j+1)
			return j + 1
		case c == '$' && j+1 < n && m.src[j+1] == '{':
			blank(m.out, start, j+2)
			end := m.code(j+2, true)
			if end >= n {
				return n
			}
			start = end
			j = end + 1
		default:
			j++
		}
	}
	blank(m.out, start, n)
	return n
}

type pyMasker struct {
	src string
	out []byte
}

// code walks Python code from i. With nested set it returns the index of
// the '}' that closes the current f-string replacement field.
func (m *pyMasker) code(i int, nested bool) int {
	depth := 0
	n := len(m.src)
	for i < n {
		c := m.src[i]
		switch {
		case c == '#':
			end := lineEnd(m.src, i)
			blank(m.out, i, end)
			i = end
		case c == '\'' || c == '"':
			i = m.str(i)
		case nested && c == '{':
			depth++
			i++
		case nested && c == '}':
			if depth == 0 {
				return i
			}
			depth--
			i++
		default:
			i++
		}
	}
	return n
}

// prefix returns the start of the string prefix (r, b, u, f and their
// two-letter combinations) preceding the quote at i, and whether it marks an
// f-string.
func (m *pyMasker) prefix(i int) (int, bool) {
	start := i
	for k := 0; k < 2 && start > 0; k++ {
		switch m.src[start-1] {
		case 'r', 'R', 'b', 'B', 'u', 'U', 'f', 'F':
			start--
			continue
		}
		break
	}
	if start < i && start > 0 && IsIdentByte(GrammarPython, m.src[start-1]) {
		return i, false
	}
	p := m.src[start:i]
	return start, strings.ContainsAny(p, "fF")
}

func (m *pyMasker) str(i int) int {
	n := len(m.src)
	q := m.src[i]
	start, fstr := m.prefix(i)
	triple := i+2 < n && m.src[i+1] == q && m.src[i+2] == q
	j := i + 1
	if triple {
		j = i + 3
	}
	for j < n {
		c := m.src[j]
		switch {
		case c == '\\':
			j += 2
			continue
		case c == q:
			if !triple {
				blank(m.out, start, j+1)
				return j + 1
			}
			if j+2 < n && m.src[j+1] == q && m.src[j+2] == q {
				blank(m.out, start, j+3)
				return j + 3
			}
		case c == '\n' && !triple:
			blank(m.out, start, j)
			return j
		case fstr && c == '{':
			if j+1 < n && m.src[j+1] == '{' {
				j += 2
				continue
			}
			blank(m.out, start, j+1)
			end := m.code(j+1, true)
			if end >= n {
				return n
			}
			start = end
			j = end
		}
		j++
	}
	blank(m.out, start, n)
	return n
}
