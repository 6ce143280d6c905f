package graphstore

import (
	"time"

	"github.com/cadigraph/cadigraph/internal/logging"
	"github.com/cadigraph/cadigraph/internal/model"
)

// Query implements §4.3's query algorithm: BFS from each seed id, expanding
// via get_dependencies/get_dependents/both depending on direction, applying
// edge-type/language/granularity filters per-candidate before admitting a
// node into the visited set. Grounded on internal/store/local_graph.go's
// queryLinksLocked/TraversePath split: the traversal takes the RLock once
// up front and calls unexported *Locked helpers internally rather than
// re-entering the exported, locking methods, avoiding the nested-RLock
// deadlock that a naive recursive implementation would hit.
func (s *Store) Query(q model.GraphQuery) (model.QueryResult, error) {
	timer := logging.StartTimer(logging.CategoryGraph, "Query")
	defer timer.Stop()
	start := time.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if q.MaxDepth <= 0 {
		q.MaxDepth = 1
	}
	if q.MaxResults <= 0 {
		q.MaxResults = 1000
	}
	if q.Direction == "" {
		q.Direction = model.DirectionOutgoing
	}

	type frontierEntry struct {
		id    string
		depth int
	}

	visited := make(map[string]bool, len(q.Seeds))
	queue := make([]frontierEntry, 0, len(q.Seeds))
	var result []model.QueryNode

	for _, seed := range q.Seeds {
		visited[seed] = true
		queue = append(queue, frontierEntry{id: seed, depth: 0})
		if q.IncludeStart {
			if node, ok, err := s.getNodeLocked(seed); err == nil && ok {
				result = append(result, model.QueryNode{
					ChunkID:       node.ChunkID,
					PrimaryAlias:  node.PrimaryAlias,
					Depth:         0,
					TokenEstimate: node.TokenEstimate,
				})
			}
		}
	}

	for len(queue) > 0 && len(result) < q.MaxResults {
		cur := queue[0]
		queue = queue[1:]

		if cur.depth >= q.MaxDepth {
			continue
		}

		edges, err := s.edgesLocked(cur.id, q.Direction)
		if err != nil {
			return model.QueryResult{}, err
		}

		for _, edge := range edges {
			next := edge.ID
			if visited[next] {
				continue
			}
			if len(q.EdgeTypes) > 0 && !edgeTypeIn(edge.Type, q.EdgeTypes) {
				continue
			}
			node, ok, err := s.getNodeLocked(next)
			if err != nil {
				return model.QueryResult{}, err
			}
			if !ok {
				continue
			}
			if q.LanguageFilter != "" && node.Language != q.LanguageFilter {
				continue
			}
			if q.GranularityFilter != "" && node.Granularity != q.GranularityFilter {
				continue
			}

			visited[next] = true
			result = append(result, model.QueryNode{
				ChunkID:       next,
				PrimaryAlias:  node.PrimaryAlias,
				Depth:         cur.depth + 1,
				ReachedVia:    edge.Type,
				Parent:        cur.id,
				TokenEstimate: node.TokenEstimate,
			})
			queue = append(queue, frontierEntry{id: next, depth: cur.depth + 1})

			if len(result) >= q.MaxResults {
				break
			}
		}
	}

	return model.QueryResult{
		Nodes:           result,
		NodesVisited:    len(visited),
		Truncated:       len(visited) > q.MaxResults,
		ExecutionTimeMS: time.Since(start).Milliseconds(),
	}, nil
}

func edgeTypeIn(t model.EdgeType, set []model.EdgeType) bool {
	for _, s := range set {
		if s == t {
			return true
		}
	}
	return false
}

// edgesLocked returns the edge list to expand from id for the given
// direction, merging forward and reverse lists when direction is "both".
// Caller must already hold s.mu (read or write).
func (s *Store) edgesLocked(id string, direction model.Direction) ([]model.EdgeRef, error) {
	switch direction {
	case model.DirectionIncoming:
		return s.queryEdgeTable("dependents", "target_id", "source_id", id, "")
	case model.DirectionBoth:
		out, err := s.queryEdgeTable("dependencies", "source_id", "target_id", id, "")
		if err != nil {
			return nil, err
		}
		in, err := s.queryEdgeTable("dependents", "target_id", "source_id", id, "")
		if err != nil {
			return nil, err
		}
		return append(out, in...), nil
	default:
		return s.queryEdgeTable("dependencies", "source_id", "target_id", id, "")
	}
}
