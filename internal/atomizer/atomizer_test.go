package atomizer

import (
	"testing"

	"github.com/cadigraph/cadigraph/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguageForPath(t *testing.T) {
	lang, ok := LanguageForPath("internal/store/local.go")
	require.True(t, ok)
	assert.Equal(t, "go", lang)

	_, ok = LanguageForPath("README")
	assert.False(t, ok)
}

func TestExtractUnrecognizedLanguageYieldsModuleAtom(t *testing.T) {
	a := New()
	atoms, err := a.Extract("thing.cobol", "cobol", []byte("IDENTIFICATION DIVISION.\n"))
	require.NoError(t, err)
	require.Len(t, atoms, 1)
	assert.Equal(t, model.GranularityModule, atoms[0].Granularity)
}

func TestExtractGoFunctionsAndTypes(t *testing.T) {
	source := `package widget

import "fmt"

// Widget is a thing.
type Widget struct {
	Name string
}

const MaxWidgets = 10

// Greet prints a greeting for w.
func (w *Widget) Greet() {
	fmt.Println("hello", w.Name)
}

func NewWidget(name string) *Widget {
	return &Widget{Name: name}
}
`
	a := New()
	atoms, err := a.Extract("widget.go", "go", []byte(source))
	require.NoError(t, err)

	var sawType, sawMethod, sawFunc, sawConst, sawImport bool
	for _, atom := range atoms {
		switch atom.Granularity {
		case model.GranularityType:
			sawType = true
			assert.Equal(t, model.VisibilityPublic, atom.Visibility)
		case model.GranularityMethod:
			sawMethod = true
			assert.Contains(t, atom.SymbolsDefined[0], "Greet")
		case model.GranularityFunction:
			sawFunc = true
		case model.GranularityConstant:
			sawConst = true
		case model.GranularityImport:
			sawImport = true
		}
		assert.NotEmpty(t, atom.ChunkID)
		assert.Regexp(t, `^chunk:sha256:[0-9a-f]{64}$`, atom.ChunkID)
	}

	assert.True(t, sawType, "expected a type atom")
	assert.True(t, sawMethod, "expected a method atom")
	assert.True(t, sawFunc, "expected a function atom")
	assert.True(t, sawConst, "expected a const atom")
	assert.True(t, sawImport, "expected an import atom")
}

func TestExtractGoIdenticalFragmentsShareChunkID(t *testing.T) {
	source := `package p

func Foo() int {
	return 1
}
`
	a := New()
	atoms1, err := a.Extract("p1.go", "go", []byte(source))
	require.NoError(t, err)
	atoms2, err := a.Extract("p2.go", "go", []byte(source))
	require.NoError(t, err)

	find := func(atoms []model.Atom) *model.Atom {
		for i := range atoms {
			if atoms[i].Granularity == model.GranularityFunction {
				return &atoms[i]
			}
		}
		return nil
	}
	f1, f2 := find(atoms1), find(atoms2)
	require.NotNil(t, f1)
	require.NotNil(t, f2)
	assert.Equal(t, f1.ChunkID, f2.ChunkID)
}

func TestExtractTypeScriptFunctionAndImport(t *testing.T) {
	source := `import { helper } from "./helper";

export function add(x: number, y: number): number {
  return x + y;
}
`
	a := New()
	atoms, err := a.Extract("math.ts", "typescript", []byte(source))
	require.NoError(t, err)

	var sawFunc, sawImport bool
	for _, atom := range atoms {
		if atom.Granularity == model.GranularityImport {
			sawImport = true
			assert.Equal(t, "./helper", atom.SymbolsReferenced[0])
		}
		if atom.Granularity == model.GranularityFunction {
			sawFunc = true
			assert.Equal(t, model.VisibilityPublic, atom.Visibility)
			assert.Equal(t, "add", atom.PrimaryAlias)
		}
	}
	assert.True(t, sawFunc)
	assert.True(t, sawImport)
}

func TestExtractPythonFunctionRespectsIndentBlockEnd(t *testing.T) {
	source := `def greet(name):
    message = "hi " + name

    return message

def _private():
    pass
`
	a := New()
	atoms, err := a.Extract("greet.py", "python", []byte(source))
	require.NoError(t, err)

	var greet, private *model.Atom
	for i := range atoms {
		if atoms[i].PrimaryAlias == "greet" {
			greet = &atoms[i]
		}
		if atoms[i].PrimaryAlias == "_private" {
			private = &atoms[i]
		}
	}
	require.NotNil(t, greet)
	require.NotNil(t, private)
	assert.Equal(t, model.VisibilityPublic, greet.Visibility)
	assert.Equal(t, model.VisibilityInternal, private.Visibility)
	// the blank line inside greet's body is a continuation, not a terminator:
	// the block must extend through the "return message" line (line 4).
	require.NotNil(t, greet.SourceLines)
	assert.GreaterOrEqual(t, greet.SourceLines.End, 4)
}

func TestExtractImportsFiltersToImportGranularity(t *testing.T) {
	source := `package p

import "os"

func F() {}
`
	a := New()
	imports, err := a.ExtractImports("p.go", "go", []byte(source))
	require.NoError(t, err)
	require.Len(t, imports, 1)
	assert.Equal(t, model.GranularityImport, imports[0].Granularity)
}

func TestResolveImportsBindsToSymbolIndex(t *testing.T) {
	a := New()
	imports := []model.Atom{
		{ChunkID: "chunk:sha256:aaa", SymbolsReferenced: []string{"os"}},
	}
	symbolIndex := map[string]string{"os": "chunk:sha256:bbb"}

	a.ResolveImports(imports, symbolIndex)

	require.Len(t, imports[0].OutgoingEdges, 1)
	assert.Equal(t, model.EdgeImports, imports[0].OutgoingEdges[0].Type)
	assert.Equal(t, "chunk:sha256:bbb", imports[0].OutgoingEdges[0].ID)
}

func TestResolveImportsSkipsUnresolvedSymbols(t *testing.T) {
	a := New()
	imports := []model.Atom{
		{ChunkID: "chunk:sha256:aaa", SymbolsReferenced: []string{"unknown"}},
	}
	a.ResolveImports(imports, map[string]string{})
	assert.Empty(t, imports[0].OutgoingEdges)
}
