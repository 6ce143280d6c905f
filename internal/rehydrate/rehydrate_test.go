package rehydrate

import (
	"path/filepath"
	"testing"

	"github.com/cadigraph/cadigraph/internal/atomerr"
	"github.com/cadigraph/cadigraph/internal/graphstore"
	"github.com/cadigraph/cadigraph/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *graphstore.Store {
	t.Helper()
	s, err := graphstore.Open(filepath.Join(t.TempDir(), "graph.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustInsert(t *testing.T, s *graphstore.Store, atom model.Atom, content string) {
	t.Helper()
	require.NoError(t, s.InsertNode(atom, []byte(content)))
}

func TestCreateViewTwoHopClosure(t *testing.T) {
	s := openTestStore(t)
	a := model.Atom{ChunkID: "chunk:sha256:a", Language: "rust", Granularity: model.GranularityFunction,
		PrimaryAlias: "f", TokenEstimate: 5, SymbolsDefined: []string{"f"}, Metadata: map[string]string{}}
	b := model.Atom{ChunkID: "chunk:sha256:b", Language: "rust", Granularity: model.GranularityFunction,
		PrimaryAlias: "g", TokenEstimate: 5, SymbolsDefined: []string{"g"}, Metadata: map[string]string{}}
	c := model.Atom{ChunkID: "chunk:sha256:c", Language: "rust", Granularity: model.GranularityType,
		PrimaryAlias: "S", TokenEstimate: 5, SymbolsDefined: []string{"S"}, Metadata: map[string]string{}}

	mustInsert(t, s, a, "fn f() { g() }")
	mustInsert(t, s, b, "fn g(s: S) {}")
	mustInsert(t, s, c, "struct S { x: i32 }")
	require.NoError(t, s.AddDependency(a.ChunkID, model.EdgeImports, b.ChunkID))
	require.NoError(t, s.AddDependency(b.ChunkID, model.EdgeTypeRef, c.ChunkID))

	engine := New(s)

	view1, err := engine.CreateView([]string{a.ChunkID}, ViewConfig{ExpansionDepth: 1, MaxTokens: 1000, Format: FormatSource})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ChunkID, b.ChunkID}, view1.Atoms)

	view2, err := engine.CreateView([]string{a.ChunkID}, ViewConfig{ExpansionDepth: 2, MaxTokens: 1000, Format: FormatSource})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ChunkID, b.ChunkID, c.ChunkID}, view2.Atoms)
	assert.ElementsMatch(t, []string{b.ChunkID, c.ChunkID}, view2.GhostAtoms)
}

func TestCreateViewTokenTruncation(t *testing.T) {
	s := openTestStore(t)
	ids := []string{"chunk:sha256:t1", "chunk:sha256:t2", "chunk:sha256:t3"}
	for i, id := range ids {
		atom := model.Atom{ChunkID: id, Language: "go", Granularity: model.GranularityFunction,
			PrimaryAlias: id, TokenEstimate: 500, SymbolsDefined: []string{id}, Metadata: map[string]string{}}
		mustInsert(t, s, atom, "body "+string(rune('A'+i)))
	}

	engine := New(s)
	view, err := engine.CreateView(ids, ViewConfig{ExpansionDepth: 0, MaxTokens: 1200, Format: FormatSource})
	require.NoError(t, err)

	assert.Len(t, view.Atoms, 2)
	assert.True(t, view.Truncated)
	assert.LessOrEqual(t, view.TokenEstimate, 1200)
}

func TestCreateViewSignaturesDropsFunctionBodyKeepsStructVerbatim(t *testing.T) {
	s := openTestStore(t)
	source := `struct S {
    x: i32,
}

fn f(s: S) -> i32 {
    s.x
}
`
	atom := model.Atom{ChunkID: "chunk:sha256:sig", Language: "rust", Granularity: model.GranularityModule,
		PrimaryAlias: "mod", TokenEstimate: 20, SymbolsDefined: []string{"S", "f"}, Metadata: map[string]string{}}
	mustInsert(t, s, atom, source)

	engine := New(s)
	view, err := engine.SignaturesView([]string{atom.ChunkID}, ViewConfig{MaxTokens: 1000})
	require.NoError(t, err)

	assert.Contains(t, view.Source, "struct S {")
	assert.Contains(t, view.Source, "x: i32,")
	assert.Contains(t, view.Source, "fn f(s: S) -> i32;")
	assert.NotContains(t, view.Source, "s.x")
}

func TestCreateViewEmptySeedsReturnsEmptyView(t *testing.T) {
	s := openTestStore(t)
	engine := New(s)
	view, err := engine.CreateView(nil, ViewConfig{MaxTokens: 100})
	require.NoError(t, err)
	assert.Empty(t, view.Atoms)
	assert.Empty(t, view.Source)
}

func TestCreateViewMissingSeedIsChunkNotFound(t *testing.T) {
	s := openTestStore(t)
	engine := New(s)
	_, err := engine.CreateView([]string{"chunk:sha256:missing"}, ViewConfig{MaxTokens: 100})
	require.Error(t, err)
	assert.ErrorIs(t, err, atomerr.ErrChunkNotFound)
}

func TestCreateViewSortByTypeFalsePreservesSeedOrder(t *testing.T) {
	s := openTestStore(t)
	fn := model.Atom{ChunkID: "chunk:sha256:fn1", Language: "go", Granularity: model.GranularityFunction,
		PrimaryAlias: "Fn", TokenEstimate: 5, SymbolsDefined: []string{"Fn"}, Metadata: map[string]string{}}
	imp := model.Atom{ChunkID: "chunk:sha256:imp1", Language: "go", Granularity: model.GranularityImport,
		PrimaryAlias: "fmt", TokenEstimate: 2, SymbolsDefined: []string{"fmt"}, Metadata: map[string]string{}}

	mustInsert(t, s, fn, "func Fn() {}")
	mustInsert(t, s, imp, `import "fmt"`)

	engine := New(s)
	view, err := engine.CreateView([]string{fn.ChunkID, imp.ChunkID}, ViewConfig{MaxTokens: 1000, SortByType: false})
	require.NoError(t, err)
	require.Len(t, view.Atoms, 2)
	assert.Equal(t, fn.ChunkID, view.Atoms[0])
	assert.Equal(t, imp.ChunkID, view.Atoms[1])
}

func TestCreateViewSortByTypeOrdersImportsBeforeFunctions(t *testing.T) {
	s := openTestStore(t)
	fn := model.Atom{ChunkID: "chunk:sha256:fn2", Language: "go", Granularity: model.GranularityFunction,
		PrimaryAlias: "Fn2", TokenEstimate: 5, SymbolsDefined: []string{"Fn2"}, Metadata: map[string]string{}}
	imp := model.Atom{ChunkID: "chunk:sha256:imp2", Language: "go", Granularity: model.GranularityImport,
		PrimaryAlias: "os", TokenEstimate: 2, SymbolsDefined: []string{"os"}, Metadata: map[string]string{}}

	mustInsert(t, s, fn, "func Fn2() {}")
	mustInsert(t, s, imp, `import "os"`)

	engine := New(s)
	view, err := engine.CreateView([]string{fn.ChunkID, imp.ChunkID}, ViewConfig{MaxTokens: 1000, SortByType: true})
	require.NoError(t, err)
	require.Len(t, view.Atoms, 2)
	assert.Equal(t, imp.ChunkID, view.Atoms[0])
	assert.Equal(t, fn.ChunkID, view.Atoms[1])
}

func TestSymbolLocationsIndexesDefinedIdentifiers(t *testing.T) {
	s := openTestStore(t)
	atom := model.Atom{ChunkID: "chunk:sha256:symloc", Language: "rust", Granularity: model.GranularityType,
		PrimaryAlias: "S", TokenEstimate: 10, SymbolsDefined: []string{"S"}, Metadata: map[string]string{}}
	mustInsert(t, s, atom, "struct S { x: i32 }")

	engine := New(s)
	view, err := engine.CreateView([]string{atom.ChunkID}, ViewConfig{MaxTokens: 1000})
	require.NoError(t, err)
	require.Contains(t, view.SymbolLocations, "S")
	assert.Equal(t, 1, view.SymbolLocations["S"])
}

func TestEstimateTokensSumsAcrossIDs(t *testing.T) {
	s := openTestStore(t)
	a := model.Atom{ChunkID: "chunk:sha256:et1", Language: "go", TokenEstimate: 10, Metadata: map[string]string{}}
	b := model.Atom{ChunkID: "chunk:sha256:et2", Language: "go", TokenEstimate: 20, Metadata: map[string]string{}}
	mustInsert(t, s, a, "x")
	mustInsert(t, s, b, "y")

	engine := New(s)
	total, err := engine.EstimateTokens([]string{a.ChunkID, b.ChunkID, "chunk:sha256:missing"})
	require.NoError(t, err)
	assert.Equal(t, 30, total)
}

func TestViewForSymbolResolvesByFindSymbol(t *testing.T) {
	s := openTestStore(t)
	atom := model.Atom{ChunkID: "chunk:sha256:vfs", Language: "go", Granularity: model.GranularityFunction,
		PrimaryAlias: "Handle", TokenEstimate: 5, SymbolsDefined: []string{"Handle"}, Metadata: map[string]string{}}
	mustInsert(t, s, atom, "func Handle() {}")

	engine := New(s)
	view, err := engine.ViewForSymbol("Handle", ViewConfig{MaxTokens: 1000})
	require.NoError(t, err)
	require.Len(t, view.Atoms, 1)
	assert.Equal(t, atom.ChunkID, view.Atoms[0])
}
