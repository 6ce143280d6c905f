package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cadigraph/cadigraph/internal/model"
)

var (
	queryDirection    string
	queryMaxDepth     int
	queryMaxResults   int
	queryEdgeTypes    []string
	queryLanguage     string
	queryGranularity  string
	queryIncludeStart bool
)

var queryCmd = &cobra.Command{
	Use:   "query <chunk-id>...",
	Short: "Run a breadth-first dependency traversal from one or more seed atoms",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryDirection, "direction", "outgoing", "outgoing|incoming|both")
	queryCmd.Flags().IntVar(&queryMaxDepth, "max-depth", 1, "maximum BFS depth")
	queryCmd.Flags().IntVar(&queryMaxResults, "max-results", 1000, "maximum nodes returned")
	queryCmd.Flags().StringSliceVar(&queryEdgeTypes, "edge-types", nil, "comma-separated edge types to follow (empty = all)")
	queryCmd.Flags().StringVar(&queryLanguage, "language", "", "restrict results to a language")
	queryCmd.Flags().StringVar(&queryGranularity, "granularity", "", "restrict results to a granularity")
	queryCmd.Flags().BoolVar(&queryIncludeStart, "include-start", true, "include the seed atoms themselves at depth 0")
}

func runQuery(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("open graph store: %w", err)
	}
	defer store.Close()

	var edgeTypes []model.EdgeType
	for _, et := range queryEdgeTypes {
		edgeTypes = append(edgeTypes, model.EdgeType(et))
	}

	q := model.GraphQuery{
		Seeds:             args,
		Direction:         model.Direction(queryDirection),
		MaxDepth:          queryMaxDepth,
		MaxResults:        queryMaxResults,
		EdgeTypes:         edgeTypes,
		LanguageFilter:    queryLanguage,
		GranularityFilter: model.Granularity(queryGranularity),
		IncludeStart:      queryIncludeStart,
	}

	result, err := store.Query(q)
	if err != nil {
		return err
	}

	for _, n := range result.Nodes {
		via := string(n.ReachedVia)
		if via == "" {
			via = "-"
		}
		fmt.Printf("depth=%d %-40s alias=%s via=%s parent=%s\n", n.Depth, n.ChunkID, n.PrimaryAlias, via, n.Parent)
	}
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("visited=%d truncated=%v elapsed_ms=%d\n", result.NodesVisited, result.Truncated, result.ExecutionTimeMS)
	return nil
}
