// Package model holds the data types shared between the atomizer, the graph
// store and the rehydration engine: Atom, Edge, and the graph query/result
// shapes. Keeping them in one leaf package (mirroring the teacher's
// internal/types split used to break import cycles between internal/world
// and internal/core) means none of atomizer/graphstore/rehydrate import each
// other just to share a struct definition.
package model

import "time"

// Granularity is the kind of declaration an atom was extracted from.
type Granularity string

const (
	GranularityFunction      Granularity = "function"
	GranularityAsyncFunction Granularity = "async_function"
	GranularityMethod        Granularity = "method"
	GranularityType          Granularity = "type"
	GranularityConstant      Granularity = "constant"
	GranularityTypeAlias     Granularity = "type_alias"
	GranularityModule        Granularity = "module"
	GranularityMacro         Granularity = "macro"
	GranularityImplBlock     Granularity = "impl_block"
	GranularityImport        Granularity = "import"
	GranularityHeader        Granularity = "header"
)

// Visibility is the atom's declared access level.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityInternal  Visibility = "internal"
	VisibilityProtected Visibility = "protected"
	VisibilityPrivate   Visibility = "private"
)

// EdgeType is the relationship a dependency edge records.
type EdgeType string

const (
	EdgeImports    EdgeType = "imports"
	EdgeTypeRef    EdgeType = "type_ref"
	EdgeCalls      EdgeType = "calls"
	EdgeComposedOf EdgeType = "composed_of"
	EdgeImplements EdgeType = "implements"
	EdgeExtends    EdgeType = "extends"
	EdgeExports    EdgeType = "exports"
	EdgeGenericRef EdgeType = "generic_ref"
	EdgeMacroUse   EdgeType = "macro_use"
	EdgeTests      EdgeType = "tests"
	EdgeDocRef     EdgeType = "doc_ref"
)

// edgeProperties is the §3 edge-type table: whether losing the dependency
// changes observable semantics (Strong) and whether the rehydration engine
// follows it by default when building the ghost-import closure (AutoExpand).
var edgeProperties = map[EdgeType]struct {
	Strong     bool
	AutoExpand bool
}{
	EdgeImports:    {Strong: true, AutoExpand: true},
	EdgeTypeRef:    {Strong: true, AutoExpand: true},
	EdgeCalls:      {Strong: false, AutoExpand: false},
	EdgeComposedOf: {Strong: false, AutoExpand: false},
	EdgeImplements: {Strong: true, AutoExpand: false},
	EdgeExtends:    {Strong: true, AutoExpand: false},
	EdgeExports:    {Strong: false, AutoExpand: false},
	EdgeGenericRef: {Strong: false, AutoExpand: true},
	EdgeMacroUse:   {Strong: false, AutoExpand: false},
	EdgeTests:      {Strong: false, AutoExpand: false},
	EdgeDocRef:     {Strong: false, AutoExpand: false},
}

// IsStrong reports whether losing this dependency changes observable semantics.
func (e EdgeType) IsStrong() bool { return edgeProperties[e].Strong }

// AutoExpand reports whether the rehydration engine follows this edge type
// by default when building the ghost-import closure.
func (e EdgeType) AutoExpand() bool { return edgeProperties[e].AutoExpand }

// Valid reports whether e is one of the eleven edge types named in §3.
func (e EdgeType) Valid() bool {
	_, ok := edgeProperties[e]
	return ok
}

// EdgeRef is a (edge_type, chunk_id) pair as stored in an atom's cached
// outgoing_edges/incoming_edges lists and in the dependencies/dependents
// partitions.
type EdgeRef struct {
	Type EdgeType `json:"0"`
	ID   string   `json:"1"`
}

// SourceLines is the 1-indexed, inclusive [start, end] line range of an atom
// in its source file.
type SourceLines struct {
	Start int
	End   int
}

// Atom is the unit of indexed code (§3).
type Atom struct {
	ChunkID     string `json:"chunk_id"`
	ContentHash string `json:"content_hash"`

	Language    string      `json:"language"`
	Granularity Granularity `json:"granularity"`
	Visibility  Visibility  `json:"visibility"`

	ByteSize      int `json:"byte_size"`
	TokenEstimate int `json:"token_estimate"`

	SourceFile  string       `json:"source_file"`
	SourceLines *SourceLines `json:"source_lines,omitempty"`

	PrimaryAlias string   `json:"primary_alias,omitempty"`
	Aliases      []string `json:"aliases,omitempty"`

	SymbolsDefined    []string `json:"symbols_defined,omitempty"`
	SymbolsReferenced []string `json:"symbols_referenced,omitempty"`

	OutgoingEdges []EdgeRef `json:"outgoing_edges,omitempty"`
	IncomingEdges []EdgeRef `json:"incoming_edges,omitempty"`

	Metadata map[string]string `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TokenEstimateFromSize implements token_estimate = byte_size / 4 (integer).
func TokenEstimateFromSize(byteSize int) int {
	return byteSize / 4
}

// ChunkIDFromHash builds the canonical chunk:sha256:<hex> identifier.
func ChunkIDFromHash(hexDigest string) string {
	return "chunk:sha256:" + hexDigest
}
