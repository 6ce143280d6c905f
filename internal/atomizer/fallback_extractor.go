package atomizer

import (
	"regexp"
	"strings"

	"github.com/cadigraph/cadigraph/internal/model"
)

// fallbackFamily mirrors the normalizer's brace/indentation split, kept
// local to this package so atomizer has no import-time dependency on
// internal/normalizer for a concept both packages happen to share.
type fallbackFamily int

const (
	fallbackBrace fallbackFamily = iota
	fallbackIndent
)

// langSpec is the per-language extraction rule table the fallback
// extractor is parameterized by — the generalized, regex-driven equivalent
// of internal/world's per-language CodeParser implementations (go_parser.go,
// typescript_parser.go, python_parser.go, rust_parser.go), collapsed into
// one scanner since none of those files' output is reused directly (they
// target Mangle facts this module does not emit).
type langSpec struct {
	family      fallbackFamily
	funcRe      *regexp.Regexp // group 1 = declared name
	typeRe      *regexp.Regexp // group 1 = declared name
	importRe    *regexp.Regexp // group 1 = bound/imported name, may be empty
	isComment   func(line string) bool
	isPublic    func(declLine, name string) bool
	callRefRe   *regexp.Regexp // group 1 = called identifier, scanned within a body
}

func isPublicByExportKeyword(declLine, _ string) bool {
	return strings.Contains(declLine, "export ") || strings.Contains(declLine, "pub ") || strings.Contains(declLine, "public ")
}

func isPublicAlways(string, string) bool { return true }

func isPublicByNoUnderscorePrefix(_ string, name string) bool {
	return !strings.HasPrefix(name, "_")
}

var langSpecs = map[string]langSpec{
	"typescript": {
		family:    fallbackBrace,
		funcRe:    regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s+([A-Za-z_$][\w$]*)\s*\(`),
		typeRe:    regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:abstract\s+)?(?:class|interface)\s+([A-Za-z_$][\w$]*)`),
		importRe:  regexp.MustCompile(`^\s*import\s+.*?from\s+['"]([^'"]+)['"]`),
		isComment: func(l string) bool { return strings.HasPrefix(strings.TrimSpace(l), "//") },
		isPublic:  isPublicByExportKeyword,
		callRefRe: regexp.MustCompile(`([A-Za-z_$][\w$]*)\s*\(`),
	},
	"javascript": {
		family:    fallbackBrace,
		funcRe:    regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s+([A-Za-z_$][\w$]*)\s*\(`),
		typeRe:    regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?class\s+([A-Za-z_$][\w$]*)`),
		importRe:  regexp.MustCompile(`^\s*import\s+.*?from\s+['"]([^'"]+)['"]`),
		isComment: func(l string) bool { return strings.HasPrefix(strings.TrimSpace(l), "//") },
		isPublic:  isPublicByExportKeyword,
		callRefRe: regexp.MustCompile(`([A-Za-z_$][\w$]*)\s*\(`),
	},
	"python": {
		family:    fallbackIndent,
		funcRe:    regexp.MustCompile(`^(\s*)(?:async\s+)?def\s+([A-Za-z_]\w*)\s*\(`),
		typeRe:    regexp.MustCompile(`^(\s*)class\s+([A-Za-z_]\w*)`),
		importRe:  regexp.MustCompile(`^\s*(?:import\s+([\w.]+)|from\s+([\w.]+)\s+import)`),
		isComment: func(l string) bool { return strings.HasPrefix(strings.TrimSpace(l), "#") },
		isPublic:  isPublicByNoUnderscorePrefix,
		callRefRe: regexp.MustCompile(`([A-Za-z_]\w*)\s*\(`),
	},
	"rust": {
		family:    fallbackBrace,
		funcRe:    regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?(?:async\s+)?fn\s+([A-Za-z_]\w*)`),
		typeRe:    regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?(?:struct|enum|trait|impl)\s+([A-Za-z_]\w*)`),
		importRe:  regexp.MustCompile(`^\s*use\s+([\w:]+)`),
		isComment: func(l string) bool { return strings.HasPrefix(strings.TrimSpace(l), "//") },
		isPublic:  isPublicByExportKeyword,
		callRefRe: regexp.MustCompile(`([A-Za-z_]\w*)\s*\(`),
	},
	"java": {
		family:    fallbackBrace,
		funcRe:    regexp.MustCompile(`^\s*(?:public|private|protected)\s+(?:static\s+)?(?:final\s+)?[\w<>\[\],\s]+?\s([A-Za-z_]\w*)\s*\([^;]*\)\s*\{?\s*$`),
		typeRe:    regexp.MustCompile(`^\s*(?:public|private|protected)?\s*(?:abstract\s+)?(?:class|interface|enum)\s+([A-Za-z_]\w*)`),
		importRe:  regexp.MustCompile(`^\s*import\s+([\w.]+)\s*;`),
		isComment: func(l string) bool { return strings.HasPrefix(strings.TrimSpace(l), "//") },
		isPublic:  isPublicByExportKeyword,
		callRefRe: regexp.MustCompile(`([A-Za-z_]\w*)\s*\(`),
	},
	"csharp": {
		family:    fallbackBrace,
		funcRe:    regexp.MustCompile(`^\s*(?:public|private|protected|internal)\s+(?:static\s+)?(?:async\s+)?[\w<>\[\],\s]+?\s([A-Za-z_]\w*)\s*\([^;]*\)\s*\{?\s*$`),
		typeRe:    regexp.MustCompile(`^\s*(?:public|private|protected|internal)?\s*(?:abstract\s+)?(?:class|interface|struct|enum)\s+([A-Za-z_]\w*)`),
		importRe:  regexp.MustCompile(`^\s*using\s+([\w.]+)\s*;`),
		isComment: func(l string) bool { return strings.HasPrefix(strings.TrimSpace(l), "//") },
		isPublic:  isPublicByExportKeyword,
		callRefRe: regexp.MustCompile(`([A-Za-z_]\w*)\s*\(`),
	},
	"c": {
		family:    fallbackBrace,
		funcRe:    regexp.MustCompile(`^\s*(?:static\s+)?[\w\*\s]+?\s\*?([A-Za-z_]\w*)\s*\([^;]*\)\s*\{?\s*$`),
		typeRe:    regexp.MustCompile(`^\s*(?:typedef\s+)?(?:struct|union|enum)\s+([A-Za-z_]\w*)`),
		importRe:  regexp.MustCompile(`^\s*#include\s*[<"]([^>"]+)[>"]`),
		isComment: func(l string) bool { return strings.HasPrefix(strings.TrimSpace(l), "//") },
		isPublic:  func(l, n string) bool { return !strings.Contains(l, "static ") },
		callRefRe: regexp.MustCompile(`([A-Za-z_]\w*)\s*\(`),
	},
	"cpp": {
		family:    fallbackBrace,
		funcRe:    regexp.MustCompile(`^\s*(?:static\s+)?(?:virtual\s+)?[\w:<>\*\s]+?\s\*?([A-Za-z_]\w*)\s*\([^;]*\)\s*(?:const\s*)?\{?\s*$`),
		typeRe:    regexp.MustCompile(`^\s*(?:class|struct|enum|namespace)\s+([A-Za-z_]\w*)`),
		importRe:  regexp.MustCompile(`^\s*#include\s*[<"]([^>"]+)[>"]`),
		isComment: func(l string) bool { return strings.HasPrefix(strings.TrimSpace(l), "//") },
		isPublic:  func(l, n string) bool { return !strings.Contains(l, "static ") },
		callRefRe: regexp.MustCompile(`([A-Za-z_]\w*)\s*\(`),
	},
	"css": {
		family:    fallbackBrace,
		funcRe:    nil, // css has no function-like declarations
		typeRe:    regexp.MustCompile(`^\s*([.#]?[\w\-:, >.#\[\]="'&*]+?)\s*\{`),
		importRe:  regexp.MustCompile(`^\s*@import\s+['"]?([^'";]+)['"]?`),
		isComment: func(l string) bool { return strings.HasPrefix(strings.TrimSpace(l), "/*") },
		isPublic:  isPublicAlways,
		callRefRe: nil,
	},
	"glsl": {
		family:    fallbackBrace,
		funcRe:    regexp.MustCompile(`^\s*[\w]+\s+([A-Za-z_]\w*)\s*\([^;]*\)\s*\{?\s*$`),
		typeRe:    regexp.MustCompile(`^\s*struct\s+([A-Za-z_]\w*)`),
		importRe:  regexp.MustCompile(`^\s*#include\s*[<"]([^>"]+)[>"]`),
		isComment: func(l string) bool { return strings.HasPrefix(strings.TrimSpace(l), "//") },
		isPublic:  isPublicAlways,
		callRefRe: regexp.MustCompile(`([A-Za-z_]\w*)\s*\(`),
	},
	"html": {
		family:    fallbackBrace,
		funcRe:    nil,
		typeRe:    regexp.MustCompile(`^\s*<(script|style|template)\b`),
		importRe:  regexp.MustCompile(`^\s*<link[^>]*href=["']([^"']+)["']`),
		isComment: func(l string) bool { return strings.HasPrefix(strings.TrimSpace(l), "<!--") },
		isPublic:  isPublicAlways,
		callRefRe: nil,
	},
}

// extractFallback implements the §4.2 lexical extraction path shared by
// every language without a native AST in this module.
func extractFallback(sourceFile, language string, content []byte) ([]model.Atom, error) {
	spec, ok := langSpecs[language]
	if !ok {
		return nil, nil
	}

	text := string(content)
	lines := strings.Split(text, "\n")

	var atoms []model.Atom
	consumedThrough := -1

	for i := 0; i < len(lines); i++ {
		if i <= consumedThrough {
			continue
		}
		line := lines[i]

		if spec.importRe != nil {
			if m := spec.importRe.FindStringSubmatch(line); m != nil {
				name := firstNonEmpty(m[1:])
				granularity := model.GranularityImport
				if language == "c" || language == "cpp" || language == "glsl" {
					granularity = model.GranularityHeader
				}
				atom := newAtom(sourceFile, language, granularity, model.VisibilityInternal,
					[]byte(line), i+1, i+1, []string{name}, []string{name})
				atoms = append(atoms, atom)
				continue
			}
		}

		if spec.funcRe != nil {
			if m := spec.funcRe.FindStringSubmatch(line); m != nil {
				name := m[len(m)-1]
				start, end := spanForDecl(lines, i, spec)
				atoms = append(atoms, buildDeclAtom(sourceFile, language, model.GranularityFunction, spec, lines, start, end, name))
				consumedThrough = end
				continue
			}
		}

		if spec.typeRe != nil {
			if m := spec.typeRe.FindStringSubmatch(line); m != nil {
				name := m[len(m)-1]
				start, end := spanForDecl(lines, i, spec)
				atoms = append(atoms, buildDeclAtom(sourceFile, language, model.GranularityType, spec, lines, start, end, name))
				consumedThrough = end
				continue
			}
		}
	}

	return atoms, nil
}

func firstNonEmpty(groups []string) string {
	for _, g := range groups {
		if g != "" {
			return g
		}
	}
	return ""
}

// spanForDecl resolves the doc-comment-contiguous start line and the
// matched-brace/indented-block end line for a declaration found at lineIdx.
func spanForDecl(lines []string, lineIdx int, spec langSpec) (start, end int) {
	start = leadingDocComment(lines, lineIdx, spec.isComment)

	if spec.family == fallbackIndent {
		baseIndent := indentOf(lines[lineIdx])
		endIdx := findIndentedBlockEnd(lines, lineIdx, baseIndent)
		return start, endIdx - 1
	}

	// Brace family: find the opening '{' from lineIdx onward, then match it.
	joined := strings.Join(lines[lineIdx:], "\n")
	openRel := strings.IndexByte(joined, '{')
	if openRel < 0 {
		return start, lineIdx
	}
	closeAbs := findMatchingBrace(joined, openRel)
	if closeAbs < 0 {
		return start, len(lines) - 1
	}
	// Count newlines up to closeAbs to find its line offset from lineIdx.
	endOffset := strings.Count(joined[:closeAbs], "\n")
	return start, lineIdx + endOffset
}

func buildDeclAtom(sourceFile, language string, granularity model.Granularity, spec langSpec, lines []string, start, end int, name string) model.Atom {
	if end >= len(lines) {
		end = len(lines) - 1
	}
	if end < start {
		end = start
	}
	fragment := strings.Join(lines[start:end+1], "\n")
	declLine := lines[start]

	visibility := model.VisibilityInternal
	if spec.isPublic(declLine, name) {
		visibility = model.VisibilityPublic
	}

	refs := scanCallRefs(fragment, spec.callRefRe, name)

	atom := newAtom(sourceFile, language, granularity, visibility, []byte(fragment), start+1, end+1, []string{name}, refs)
	atom.PrimaryAlias = name
	return atom
}

func scanCallRefs(fragment string, re *regexp.Regexp, ownName string) []string {
	if re == nil {
		return nil
	}
	matches := re.FindAllStringSubmatch(fragment, -1)
	seen := map[string]bool{ownName: true}
	var refs []string
	for _, m := range matches {
		name := m[len(m)-1]
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		refs = append(refs, name)
	}
	return refs
}
