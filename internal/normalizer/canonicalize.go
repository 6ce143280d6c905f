package normalizer

import (
	"regexp"
	"strings"
)

var (
	operatorSpacingRe = regexp.MustCompile(`\s*([+\-*/%=<>!&|^]+)\s*`)
	whitespaceRunRe    = regexp.MustCompile(`\s+`)
	openParenRe        = regexp.MustCompile(`\s*\(\s*`)
	closeParenRe       = regexp.MustCompile(`\s*\)\s*`)
	commaRe            = regexp.MustCompile(`\s*,\s*`)
	colonRe            = regexp.MustCompile(`\s*(:+)\s*`)
)

// stripComments removes // and /* */ comments (brace family) or # comments
// (indentation family), honoring string delimiters for the language so that
// a "//" or "#" inside a string literal is never treated as a comment start.
// A malformed string that leaves the scanner in an open state canonicalizes
// to its original bytes for that trailing region rather than raising (§4.1
// Failure) — skip* below always advances to len(source) in that case, which
// copies the remaining bytes through verbatim.
func stripComments(source string, fam family) string {
	var out strings.Builder
	n := len(source)
	i := 0
	for i < n {
		c := source[i]
		switch fam {
		case familyBrace:
			if c == '"' || c == '\'' || c == '`' {
				end := skipBraceString(source, i)
				out.WriteString(source[i:end])
				i = end
				continue
			}
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
				if i+1 < n {
					i += 2
				} else {
					i = n
				}
				continue
			}
		case familyIndentation:
			if c == '"' || c == '\'' {
				end := skipPythonString(source, i)
				out.WriteString(source[i:end])
				i = end
				continue
			}
			if c == '#' {
				for i < n && source[i] != '\n' {
					i++
				}
				continue
			}
		}
		out.WriteByte(c)
		i++
	}
	return out.String()
}

// collapseBlankLines trims every line and drops lines that are empty after
// trimming (this also collapses runs of consecutive blank lines to none).
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		kept = append(kept, trimmed)
	}
	return strings.Join(kept, "\n")
}

// normalizePunctuation applies the §4.1 step-3 whitespace/punctuation rules:
// single space around operators, collapsed whitespace runs, no space
// adjacent to parens, exactly one space after a comma or a colon run and
// none before it.
func normalizePunctuation(s string, fam family) string {
	s = operatorSpacingRe.ReplaceAllString(s, " $1 ")
	s = colonRe.ReplaceAllString(s, "$1 ")
	s = whitespaceRunRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = openParenRe.ReplaceAllString(s, "(")
	s = commaRe.ReplaceAllString(s, ", ")
	s = closeParenRe.ReplaceAllString(s, ")")

	if fam == familyIndentation {
		s = strings.ReplaceAll(s, ";", "")
	}
	return s
}

// canonicalize runs the full §4.1 step-3 pipeline over alpha-renamed source.
func canonicalize(alphaRenamed string, rules languageRules) string {
	stripped := stripComments(alphaRenamed, rules.family)
	collapsed := collapseBlankLines(stripped)
	return normalizePunctuation(collapsed, rules.family)
}
