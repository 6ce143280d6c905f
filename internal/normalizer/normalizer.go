// Package normalizer implements the Semantic Normalizer (spec §4.1): an
// alpha-rename + canonicalization pipeline that reduces a source fragment to
// a string such that identical canonical strings imply semantically
// indistinguishable code, and a content hash over that canonical string.
//
// The alpha-rename and string/comment-aware canonicalization rules are
// grounded on original_source's internal/cadi-core/src/normalizer.rs; this
// package always runs the lexical fallback path described in spec §4.1 step
// 1 rather than normalizer.rs's tree-sitter path, since an AST-aware
// alpha-rename needs a full per-language grammar the fallback does not
// (the Atomizer package uses go/ast for Go; no package here uses tree-sitter).
package normalizer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/cadigraph/cadigraph/internal/atomerr"
	"github.com/cadigraph/cadigraph/internal/logging"
)

// Result is the output of Normalize: the original source, the alpha-renamed
// and canonical stages, and the final identity hash.
type Result struct {
	Original     string
	AlphaRenamed string
	Canonical    string
	Hash         string
}

// SupportedLanguages lists every language tag this package defines rules
// for. Spec §3 names twelve language tags; all twelve get a lexical
// alpha-rename/canonicalize path here (the narrower four-language list in
// original_source's normalizer.rs was specific to its tree-sitter grammars,
// which this package does not depend on).
func SupportedLanguages() []string {
	langs := make([]string, 0, len(ruleTable))
	for lang := range ruleTable {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Normalize runs the full four-step pipeline: parse (lexical scan),
// alpha-rename, canonicalize, hash. Returns UnsupportedLanguage when no
// rules are defined for the language tag (§4.1 Operations).
func Normalize(source, language string) (Result, error) {
	timer := logging.StartTimer(logging.CategoryNormalizer, "Normalize")
	defer timer.Stop()

	rules, ok := rulesFor(language)
	if !ok {
		return Result{}, atomerr.New(atomerr.KindUnsupportedLanguage,
			fmt.Sprintf("no normalizer rules for language %q", language))
	}

	alpha := alphaRename(source, rules)
	canon := canonicalize(alpha, rules)
	hash := computeHash(canon)

	logging.NormalizerDebug("normalized %d bytes (%s) -> %s", len(source), language, hash)

	return Result{
		Original:     source,
		AlphaRenamed: alpha,
		Canonical:    canon,
		Hash:         hash,
	}, nil
}

// alphaRename implements §4.1 step 2: traverse identifier occurrences
// left-to-right by byte offset, assign each distinct original identifier
// (excluding keywords) the next unused name from _var0, _var1, ..., and
// substitute every occurrence by splicing byte ranges ascending with no
// overlap.
func alphaRename(source string, rules languageRules) string {
	runs := scanIdentifiers(source, rules.family)

	names := make(map[string]string)
	counter := 0
	var out []byte
	lastPos := 0

	for _, run := range runs {
		if rules.keywords[run.text] {
			continue
		}
		name, seen := names[run.text]
		if !seen {
			name = fmt.Sprintf("_var%d", counter)
			counter++
			names[run.text] = name
		}
		if run.start < lastPos {
			// Overlapping run (should not happen given scanIdentifiers's
			// single left-to-right pass); skip rather than corrupt output.
			continue
		}
		out = append(out, source[lastPos:run.start]...)
		out = append(out, name...)
		lastPos = run.end
	}
	out = append(out, source[lastPos:]...)
	return string(out)
}

func computeHash(canonical string) string {
	sum := sha256.Sum256([]byte(canonical))
	return "semantic:sha256:" + hex.EncodeToString(sum[:])
}
