package rehydrate

import (
	"regexp"
	"strings"
)

// applyFormat implements the four content transforms named in §4.4 step 4.
// "json" falls through to the default case and returns the content text
// unchanged.
func applyFormat(format Format, language, content string) string {
	switch format {
	case FormatMinimal:
		return minimalize(language, content)
	case FormatSignatures:
		return extractSignatures(language, content)
	case FormatDocumented, FormatSource:
		fallthrough
	default:
		return content
	}
}

var lineCommentPrefix = map[string]string{
	"python":     "#",
	"ruby":       "#",
	"shell":      "#",
	"yaml":       "#",
	"toml":       "#",
}

func commentPrefixFor(language string) string {
	if p, ok := lineCommentPrefix[language]; ok {
		return p
	}
	return "//"
}

// minimalize drops fully-empty lines, lines whose trimmed prefix starts a
// line comment, and lines inside /* ... */ runs (§4.4 step 4, minimal).
func minimalize(language, content string) string {
	prefix := commentPrefixFor(language)
	lines := strings.Split(content, "\n")
	var out []string
	inBlockComment := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if inBlockComment {
			if idx := strings.Index(trimmed, "*/"); idx >= 0 {
				inBlockComment = false
				rest := strings.TrimSpace(trimmed[idx+2:])
				if rest == "" {
					continue
				}
				trimmed = rest
			} else {
				continue
			}
		}

		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, prefix) || strings.HasPrefix(trimmed, "//") {
			continue
		}
		if strings.HasPrefix(trimmed, "/*") {
			if idx := strings.Index(trimmed, "*/"); idx >= 0 {
				rest := strings.TrimSpace(trimmed[idx+2:])
				if rest == "" {
					continue
				}
				trimmed = rest
			} else {
				inBlockComment = true
				continue
			}
		}

		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

var signatureHeaderRe = regexp.MustCompile(`^\s*(?:export\s+|public\s+|pub\s+|private\s+|protected\s+|static\s+|async\s+|def\s+|func\s+|function\s+|fn\s+|class\s+|interface\s+|struct\s+|type\s+|enum\s+|trait\s+|impl\b).*`)

// extractSignatures implements §4.4 step 4 "signatures": function
// signatures keep only their header line (closed with a trailing semicolon
// or "..."), type/interface/struct/enum/trait declarations are kept
// verbatim (including their bodies), function bodies are dropped.
func extractSignatures(language string, content string) string {
	lines := strings.Split(content, "\n")
	var out []string

	// skipDepth > 0 means we are inside a function body being dropped.
	// keepDepth > 0 means we are inside a type body being kept verbatim.
	skipDepth, keepDepth := 0, 0

	for _, line := range lines {
		switch {
		case keepDepth > 0:
			out = append(out, line)
			keepDepth += strings.Count(line, "{") - strings.Count(line, "}")
			continue
		case skipDepth > 0:
			skipDepth += strings.Count(line, "{") - strings.Count(line, "}")
			continue
		}

		trimmed := strings.TrimSpace(line)
		if !signatureHeaderRe.MatchString(line) {
			continue
		}

		if isTypeDecl(trimmed) {
			out = append(out, line)
			keepDepth = strings.Count(line, "{") - strings.Count(line, "}")
			continue
		}

		header := line
		if idx := strings.Index(line, "{"); idx >= 0 {
			header = strings.TrimRight(line[:idx], " \t") + ";"
			skipDepth = strings.Count(line, "{") - strings.Count(line, "}")
		} else if strings.HasSuffix(trimmed, ":") {
			header = strings.TrimRight(line, " \t") + " ..."
		}
		out = append(out, header)
	}
	return strings.Join(out, "\n")
}

func isTypeDecl(trimmed string) bool {
	for _, kw := range []string{"struct", "interface", "class", "enum", "trait", "impl"} {
		if strings.Contains(trimmed, kw) {
			return true
		}
	}
	return false
}
