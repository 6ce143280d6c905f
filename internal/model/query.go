package model

// Direction selects which edge lists query() walks from each frontier node.
type Direction string

const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
	DirectionBoth     Direction = "both"
)

// GraphQuery parameterizes the BFS traversal in Store.Query (§4.3).
type GraphQuery struct {
	Seeds              []string
	Direction          Direction
	MaxDepth           int
	MaxResults         int
	EdgeTypes          []EdgeType // empty means "no filter"
	LanguageFilter     string     // empty means "no filter"
	GranularityFilter  Granularity
	IncludeStart       bool
}

// QueryNode is one node discovered by a BFS traversal.
type QueryNode struct {
	ChunkID       string
	PrimaryAlias  string
	Depth         int
	ReachedVia    EdgeType
	Parent        string
	TokenEstimate int
}

// QueryResult is the full output of Store.Query.
type QueryResult struct {
	Nodes           []QueryNode
	NodesVisited    int
	Truncated       bool
	ExecutionTimeMS int64
}
