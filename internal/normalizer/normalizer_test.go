package normalizer

import (
	"testing"

	"github.com/cadigraph/cadigraph/internal/atomerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeUnsupportedLanguage(t *testing.T) {
	_, err := Normalize("whatever", "cobol")
	require.Error(t, err)
	assert.ErrorIs(t, err, atomerr.ErrUnsupportedLanguage)
}

// TestNormalizeTypeScriptAlphaEquivalence mirrors spec §8 scenario 2: two
// TypeScript fragments that differ only in identifier names and whitespace
// must normalize to the same canonical form and hash.
func TestNormalizeTypeScriptAlphaEquivalence(t *testing.T) {
	a := `function add(x: number, y: number): number {
  return x + y;
}`
	b := `function  add ( left : number , right : number ) : number {
    return left+right;
}`

	ra, err := Normalize(a, "typescript")
	require.NoError(t, err)
	rb, err := Normalize(b, "typescript")
	require.NoError(t, err)

	assert.Equal(t, ra.Canonical, rb.Canonical)
	assert.Equal(t, ra.Hash, rb.Hash)
}

// TestNormalizeIdempotence is the §8 law: canonicalizing an already-canonical
// string is a no-op.
func TestNormalizeIdempotence(t *testing.T) {
	source := `func Add(a int, b int) int {
		// sum the two
		return a + b
	}`
	r1, err := Normalize(source, "go")
	require.NoError(t, err)

	r2, err := Normalize(r1.Canonical, "go")
	require.NoError(t, err)

	assert.Equal(t, r1.Canonical, r2.Canonical)
	assert.Equal(t, r1.Hash, r2.Hash)
}

// TestStripCommentsHonorsStringDelimiters is the §8 boundary behavior: a
// "//" inside a string literal must not be treated as a comment start.
func TestStripCommentsHonorsStringDelimiters(t *testing.T) {
	source := `x := "abc // def"`
	got := stripComments(source, familyBrace)
	assert.Contains(t, got, `"abc // def"`)
}

// TestStripCommentsUnterminatedStringCanonicalizesVerbatim covers §4.1's
// failure semantics: a malformed/unterminated string does not raise, it
// just canonicalizes the trailing bytes as-is.
func TestStripCommentsUnterminatedStringCanonicalizesVerbatim(t *testing.T) {
	source := `x := "never closed`
	got := stripComments(source, familyBrace)
	assert.Equal(t, source, got)
}

func TestAlphaRenameAssignsFirstSeenOrder(t *testing.T) {
	rules, ok := rulesFor("go")
	require.True(t, ok)

	got := alphaRename("foo + bar + foo", rules)
	assert.Equal(t, "_var0 + _var1 + _var0", got)
}

func TestAlphaRenamePreservesKeywords(t *testing.T) {
	rules, ok := rulesFor("go")
	require.True(t, ok)

	got := alphaRename("if x { return y }", rules)
	assert.Equal(t, "if _var0 { return _var1 }", got)
}

func TestCollapseBlankLinesDropsBlanksAndTrims(t *testing.T) {
	got := collapseBlankLines("  a  \n\n\n  b  \n")
	assert.Equal(t, "a\nb", got)
}

func TestNormalizePunctuationCommaSpacing(t *testing.T) {
	got := normalizePunctuation("f(a,b ,c)", familyBrace)
	assert.Equal(t, "f(a, b, c)", got)
}

func TestNormalizePunctuationStripsTrailingSemicolonsForPythonOnly(t *testing.T) {
	py := normalizePunctuation("x = 1;", familyIndentation)
	assert.NotContains(t, py, ";")

	goCode := normalizePunctuation("x = 1;", familyBrace)
	assert.Contains(t, goCode, ";")
}

func TestNormalizeHashPrefix(t *testing.T) {
	r, err := Normalize("x", "go")
	require.NoError(t, err)
	assert.Regexp(t, `^semantic:sha256:[0-9a-f]{64}$`, r.Hash)
}

func TestSupportedLanguagesCoversAllTwelve(t *testing.T) {
	langs := SupportedLanguages()
	assert.Len(t, langs, 12)
}
