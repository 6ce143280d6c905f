package atomizer

import "strings"

// findMatchingBrace scans forward from openIdx (which must point at a '{')
// tracking string/escape/nesting state, and returns the index of its
// matching '}', or -1 if the source runs out before the braces balance.
// This is the "hand-written brace-matching scanner (string/escape/nesting
// state)" named in §4.2, used only by the fallback extractors — the Go
// extractor derives its ranges directly from go/ast and never calls this.
func findMatchingBrace(source string, openIdx int) int {
	n := len(source)
	depth := 0
	i := openIdx
	for i < n {
		c := source[i]
		switch c {
		case '"', '\'', '`':
			i = skipStringLiteral(source, i)
			continue
		case '/':
			if i+1 < n && source[i+1] == '/' {
				for i < n && source[i] != '\n' {
					i++
				}
				continue
			}
			if i+1 < n && source[i+1] == '*' {
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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
		i++
	}
	return -1
}

// skipStringLiteral advances past a '"', '\'' or '`' delimited literal
// starting at i, honoring backslash escapes. Returns len(source) on an
// unterminated literal, matching the normalizer's tolerant-of-malformed-
// input behavior (§4.1/§4.2 Failure).
func skipStringLiteral(source string, i int) int {
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

// indentOf returns the number of leading space/tab bytes on a line.
func indentOf(line string) int {
	n := 0
	for n < len(line) && (line[n] == ' ' || line[n] == '\t') {
		n++
	}
	return n
}

// findIndentedBlockEnd implements the §4.2 Python block-end rule: starting
// just after a header line at baseIndent, a block continues through every
// contiguous line with strictly greater indentation; blank lines are
// continuations (they do not end the block on their own). Returns the
// 0-indexed line number one past the last line in the block, which may be
// len(lines) if the block runs to end of file.
func findIndentedBlockEnd(lines []string, headerIdx, baseIndent int) int {
	i := headerIdx + 1
	for i < len(lines) {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			i++
			continue
		}
		if indentOf(line) <= baseIndent {
			break
		}
		i++
	}
	// Trim any trailing blank lines we swallowed as continuations back off
	// the block so the block's end line is real code, not dangling whitespace.
	for i > headerIdx+1 && strings.TrimSpace(lines[i-1]) == "" {
		i--
	}
	return i
}

// leadingDocComment walks backward from declIdx collecting a contiguous run
// of comment-only lines immediately above it (no blank line gap), per
// §4.2's "doc-comment-contiguous boundary" rule for function/type-like
// extraction. Returns the 0-indexed line the atom should start at.
func leadingDocComment(lines []string, declIdx int, isCommentLine func(string) bool) int {
	i := declIdx
	for i > 0 {
		prev := strings.TrimSpace(lines[i-1])
		if prev == "" || !isCommentLine(prev) {
			break
		}
		i--
	}
	return i
}
