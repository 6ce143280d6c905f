package normalizer

// family distinguishes the two comment/string/statement-terminator dialects
// the canonicalizer needs to know about (§4.1 step 3).
type family int

const (
	familyBrace       family = iota // C-like: //, /* */, "..", '..', `..`
	familyIndentation               // Python-like: #, triple-quoted strings, optional semicolons
)

// languageRules is the per-language table the lexical fallback alpha-rename
// and canonicalize steps are parameterized by, grounded on the keyword lists
// and per-language comment dialects in original_source's normalizer.rs.
type languageRules struct {
	family   family
	keywords map[string]bool
}

func newRules(family family, keywords []string) languageRules {
	m := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		m[k] = true
	}
	return languageRules{family: family, keywords: m}
}

var ruleTable = map[string]languageRules{
	"go": newRules(familyBrace, []string{
		"break", "case", "chan", "const", "continue", "default", "defer", "else",
		"fallthrough", "for", "func", "go", "goto", "if", "import", "interface",
		"map", "package", "range", "return", "select", "struct", "switch", "type",
		"var", "true", "false", "nil", "iota",
	}),
	"rust": newRules(familyBrace, []string{
		"fn", "let", "mut", "return", "if", "else", "for", "while", "loop", "impl",
		"trait", "struct", "enum", "pub", "async", "await", "use", "mod", "match",
		"crate", "self", "Self", "super", "where", "dyn", "const", "static", "move",
		"true", "false",
	}),
	"typescript": newRules(familyBrace, []string{
		"function", "const", "let", "var", "return", "if", "else", "for", "while",
		"class", "interface", "async", "await", "export", "import", "type", "new",
		"this", "extends", "implements", "public", "private", "protected", "static",
		"readonly", "enum", "namespace", "true", "false", "null", "undefined",
	}),
	"javascript": newRules(familyBrace, []string{
		"function", "const", "let", "var", "return", "if", "else", "for", "while",
		"class", "async", "await", "export", "import", "new", "this", "extends",
		"static", "true", "false", "null", "undefined",
	}),
	"java": newRules(familyBrace, []string{
		"class", "interface", "enum", "public", "private", "protected", "static",
		"final", "return", "if", "else", "for", "while", "new", "this", "extends",
		"implements", "import", "package", "void", "true", "false", "null",
	}),
	"csharp": newRules(familyBrace, []string{
		"class", "interface", "enum", "public", "private", "protected", "static",
		"readonly", "return", "if", "else", "for", "while", "new", "this", "using",
		"namespace", "void", "true", "false", "null",
	}),
	"c": newRules(familyBrace, []string{
		"if", "else", "for", "while", "return", "struct", "union", "enum", "typedef",
		"static", "const", "void", "sizeof", "switch", "case", "default", "break",
		"continue", "goto",
	}),
	"cpp": newRules(familyBrace, []string{
		"if", "else", "for", "while", "return", "struct", "union", "enum", "class",
		"typedef", "static", "const", "void", "sizeof", "switch", "case", "default",
		"break", "continue", "goto", "namespace", "template", "public", "private",
		"protected", "new", "delete", "this", "virtual", "override",
	}),
	"css":  newRules(familyBrace, nil),
	"glsl": newRules(familyBrace, []string{
		"if", "else", "for", "while", "return", "void", "in", "out", "uniform",
		"const", "struct", "true", "false",
	}),
	"html": newRules(familyBrace, nil),
	"python": newRules(familyIndentation, []string{
		"def", "return", "if", "elif", "else", "for", "while", "class", "import",
		"from", "async", "await", "with", "try", "except", "finally", "lambda",
		"pass", "break", "continue", "global", "nonlocal", "yield", "raise",
		"True", "False", "None", "and", "or", "not", "in", "is",
	}),
}

func rulesFor(language string) (languageRules, bool) {
	r, ok := ruleTable[language]
	return r, ok
}
