package normalizer

// identRun is a byte range in the source identifying one identifier-shaped
// token outside strings, comments and numeric literals.
type identRun struct {
	start, end int
	text       string
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentByte(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

// scanIdentifiers walks source left-to-right, skipping over brace-family
// string/comment regions (or indentation-family string/comment regions),
// and returns every maximal identifier-shaped run outside them. This is the
// "lexical fallback that treats contiguous identifier-shaped tokens outside
// strings, comments, and keywords as identifiers" named in §4.1 step 1.
func scanIdentifiers(source string, fam family) []identRun {
	var runs []identRun
	n := len(source)
	i := 0
	for i < n {
		c := source[i]

		switch fam {
		case familyBrace:
			if c == '/' && i+1 < n && source[i+1] == '/' {
				for i < n && source[i] != '\n' {
					i++
				}
				continue
			}
			if c == '/' && i+1 < n && source[i+1] == '*' {
				i += 2
				for i+1 < n && !(source[i] == '*' && source[i+1] == '/') {
					i++
				}
				i += 2
				continue
			}
			if c == '"' || c == '\'' || c == '`' {
				i = skipBraceString(source, i)
				continue
			}
		case familyIndentation:
			if c == '#' {
				for i < n && source[i] != '\n' {
					i++
				}
				continue
			}
			if c == '"' || c == '\'' {
				i = skipPythonString(source, i)
				continue
			}
		}

		if c >= '0' && c <= '9' {
			for i < n && isIdentByte(source[i]) {
				i++
			}
			continue
		}

		if isIdentStart(c) {
			start := i
			i++
			for i < n && isIdentByte(source[i]) {
				i++
			}
			runs = append(runs, identRun{start: start, end: i, text: source[start:i]})
			continue
		}

		i++
	}
	return runs
}

// skipBraceString advances past a "..", '..' or `..` literal, honoring
// backslash escapes, starting at the opening delimiter. Returns the index
// just past the closing delimiter, or len(source) if the string is
// unterminated (left in an open state, per §4.1 failure semantics the
// caller is expected to tolerate).
func skipBraceString(source string, i int) int {
	delim := source[i]
	n := len(source)
	i++
	for i < n {
		if source[i] == '\\' && i+1 < n {
			i += 2
			continue
		}
		if source[i] == delim {
			return i + 1
		}
		i++
	}
	return n
}

// skipPythonString advances past a '...'/"..." or '''...'''/"""..."""
// literal starting at the opening quote.
func skipPythonString(source string, i int) int {
	n := len(source)
	q := source[i]
	triple := i+2 < n && source[i+1] == q && source[i+2] == q
	if triple {
		i += 3
		for i+2 < n {
			if source[i] == '\\' && i+1 < n {
				i += 2
				continue
			}
			if source[i] == q && source[i+1] == q && source[i+2] == q {
				return i + 3
			}
			i++
		}
		return n
	}
	i++
	for i < n {
		if source[i] == '\\' && i+1 < n {
			i += 2
			continue
		}
		if source[i] == q {
			return i + 1
		}
		i++
	}
	return n
}
