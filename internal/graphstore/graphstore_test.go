package graphstore

import (
	"path/filepath"
	"testing"

	"github.com/cadigraph/cadigraph/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "graph.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleAtom(chunkID, sourceFile, primaryAlias string) model.Atom {
	return model.Atom{
		ChunkID:        chunkID,
		ContentHash:    "sha256:deadbeef",
		Language:       "go",
		Granularity:    model.GranularityFunction,
		Visibility:     model.VisibilityPublic,
		ByteSize:       40,
		TokenEstimate:  10,
		SourceFile:     sourceFile,
		SourceLines:    &model.SourceLines{Start: 1, End: 4},
		PrimaryAlias:   primaryAlias,
		SymbolsDefined: []string{primaryAlias},
		Metadata:       map[string]string{},
	}
}

func TestInsertAndGetNodeRoundTrips(t *testing.T) {
	s := openTestStore(t)
	atom := sampleAtom("chunk:sha256:aaa", "widget.go", "widget.Greet")

	require.NoError(t, s.InsertNode(atom, []byte("func Greet() {}")))

	got, ok, err := s.GetNode("chunk:sha256:aaa")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, atom.ChunkID, got.ChunkID)
	assert.Equal(t, atom.Language, got.Language)
	assert.Equal(t, atom.PrimaryAlias, got.PrimaryAlias)
	require.NotNil(t, got.SourceLines)
	assert.Equal(t, 1, got.SourceLines.Start)
	assert.Equal(t, 4, got.SourceLines.End)

	content, ok, err := s.GetContent("chunk:sha256:aaa")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "func Greet() {}", string(content))
}

func TestNodeExistsAndFindSymbol(t *testing.T) {
	s := openTestStore(t)
	atom := sampleAtom("chunk:sha256:bbb", "a.go", "pkg.Foo")

	exists, err := s.NodeExists(atom.ChunkID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.InsertNode(atom, nil))

	exists, err = s.NodeExists(atom.ChunkID)
	require.NoError(t, err)
	assert.True(t, exists)

	found, ok, err := s.FindSymbol("pkg.Foo")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, atom.ChunkID, found)

	resolved, ok, err := s.ResolveAlias("pkg.Foo")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, atom.ChunkID, resolved)
}

func TestAddDependencyIsIdempotentAndSymmetric(t *testing.T) {
	s := openTestStore(t)
	src := sampleAtom("chunk:sha256:src", "a.go", "pkg.A")
	dst := sampleAtom("chunk:sha256:dst", "b.go", "pkg.B")
	require.NoError(t, s.InsertNode(src, nil))
	require.NoError(t, s.InsertNode(dst, nil))

	require.NoError(t, s.AddDependency(src.ChunkID, model.EdgeCalls, dst.ChunkID))
	require.NoError(t, s.AddDependency(src.ChunkID, model.EdgeCalls, dst.ChunkID)) // idempotent

	deps, err := s.GetDependencies(src.ChunkID, "")
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, dst.ChunkID, deps[0].ID)

	dependents, err := s.GetDependents(dst.ChunkID, "")
	require.NoError(t, err)
	require.Len(t, dependents, 1)
	assert.Equal(t, src.ChunkID, dependents[0].ID)
}

func TestDeleteNodeCascadesCleanly(t *testing.T) {
	s := openTestStore(t)
	src := sampleAtom("chunk:sha256:src2", "a.go", "pkg.A2")
	dst := sampleAtom("chunk:sha256:dst2", "b.go", "pkg.B2")
	require.NoError(t, s.InsertNode(src, []byte("body")))
	require.NoError(t, s.InsertNode(dst, nil))
	require.NoError(t, s.AddDependency(src.ChunkID, model.EdgeCalls, dst.ChunkID))

	require.NoError(t, s.DeleteNode(src.ChunkID))

	exists, err := s.NodeExists(src.ChunkID)
	require.NoError(t, err)
	assert.False(t, exists)

	_, ok, err := s.GetContent(src.ChunkID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.FindSymbol("pkg.A2")
	require.NoError(t, err)
	assert.False(t, ok)

	dependents, err := s.GetDependents(dst.ChunkID, "")
	require.NoError(t, err)
	assert.Empty(t, dependents)
}

func TestQueryBFSNonDecreasingDepth(t *testing.T) {
	s := openTestStore(t)
	a := sampleAtom("chunk:sha256:a", "a.go", "pkg.A")
	b := sampleAtom("chunk:sha256:b", "b.go", "pkg.B")
	c := sampleAtom("chunk:sha256:c", "c.go", "pkg.C")
	require.NoError(t, s.InsertNode(a, nil))
	require.NoError(t, s.InsertNode(b, nil))
	require.NoError(t, s.InsertNode(c, nil))
	require.NoError(t, s.AddDependency(a.ChunkID, model.EdgeCalls, b.ChunkID))
	require.NoError(t, s.AddDependency(b.ChunkID, model.EdgeCalls, c.ChunkID))

	result, err := s.Query(model.GraphQuery{
		Seeds:      []string{a.ChunkID},
		Direction:  model.DirectionOutgoing,
		MaxDepth:   5,
		MaxResults: 10,
	})
	require.NoError(t, err)
	require.Len(t, result.Nodes, 2)

	lastDepth := 0
	for _, n := range result.Nodes {
		assert.GreaterOrEqual(t, n.Depth, lastDepth)
		lastDepth = n.Depth
	}
	assert.Equal(t, b.ChunkID, result.Nodes[0].ChunkID)
	assert.Equal(t, c.ChunkID, result.Nodes[1].ChunkID)
}

func TestQueryRespectsMaxDepth(t *testing.T) {
	s := openTestStore(t)
	a := sampleAtom("chunk:sha256:da", "a.go", "pkg.DA")
	b := sampleAtom("chunk:sha256:db", "b.go", "pkg.DB")
	c := sampleAtom("chunk:sha256:dc", "c.go", "pkg.DC")
	require.NoError(t, s.InsertNode(a, nil))
	require.NoError(t, s.InsertNode(b, nil))
	require.NoError(t, s.InsertNode(c, nil))
	require.NoError(t, s.AddDependency(a.ChunkID, model.EdgeCalls, b.ChunkID))
	require.NoError(t, s.AddDependency(b.ChunkID, model.EdgeCalls, c.ChunkID))

	result, err := s.Query(model.GraphQuery{
		Seeds:      []string{a.ChunkID},
		Direction:  model.DirectionOutgoing,
		MaxDepth:   1,
		MaxResults: 10,
	})
	require.NoError(t, err)
	require.Len(t, result.Nodes, 1)
	assert.Equal(t, b.ChunkID, result.Nodes[0].ChunkID)
}

func TestQueryIncludeStartAddsSeedAtDepthZero(t *testing.T) {
	s := openTestStore(t)
	a := sampleAtom("chunk:sha256:ia", "a.go", "pkg.IA")
	require.NoError(t, s.InsertNode(a, nil))

	result, err := s.Query(model.GraphQuery{
		Seeds:        []string{a.ChunkID},
		MaxDepth:     2,
		MaxResults:   10,
		IncludeStart: true,
	})
	require.NoError(t, err)
	require.Len(t, result.Nodes, 1)
	assert.Equal(t, 0, result.Nodes[0].Depth)
}

func TestStatsCountsAcrossPartitions(t *testing.T) {
	s := openTestStore(t)
	a := sampleAtom("chunk:sha256:sa", "a.go", "pkg.SA")
	require.NoError(t, s.InsertNode(a, []byte("x")))

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats["nodes"])
	assert.EqualValues(t, 1, stats["content"])
	assert.EqualValues(t, 1, stats["symbols"])
	assert.EqualValues(t, 1, stats["aliases"])
}

func TestListNodesAndListEdges(t *testing.T) {
	s := openTestStore(t)
	a := sampleAtom("chunk:sha256:la", "a.go", "pkg.LA")
	b := sampleAtom("chunk:sha256:lb", "b.go", "pkg.LB")
	require.NoError(t, s.InsertNode(a, nil))
	require.NoError(t, s.InsertNode(b, nil))
	require.NoError(t, s.AddDependency(a.ChunkID, model.EdgeImports, b.ChunkID))

	nodes, err := s.ListNodes()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ChunkID, b.ChunkID}, nodes)

	edges, err := s.ListEdges()
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, a.ChunkID, edges[0].Source)
	assert.Equal(t, b.ChunkID, edges[0].Target)
	assert.Equal(t, model.EdgeImports, edges[0].Type)
}

func TestFlushDoesNotError(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Flush())
}
