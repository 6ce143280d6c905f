// Package main implements the cadigraph CLI - a content-addressed code
// intelligence engine. It ingests source trees into a persistent graph of
// Atoms and their dependency edges, and serves token-budgeted virtual views
// rehydrated from that graph.
//
// # File Index
//
//   - main.go          - entry point, rootCmd, global flags
//   - cmd_ingest.go     - ingestCmd: walk + atomize + store a source tree
//   - cmd_view.go       - viewCmd: create_view / signatures_view / view_for_symbol
//   - cmd_query.go      - queryCmd: GraphQuery BFS traversal
//   - cmd_stats.go      - statsCmd: graph store partition counts
//   - cmd_normalize.go  - normalizeCmd: run the semantic normalizer standalone
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cadigraph/cadigraph/internal/config"
	"github.com/cadigraph/cadigraph/internal/graphstore"
	"github.com/cadigraph/cadigraph/internal/logging"
)

var (
	verbose    bool
	workspace  string
	dbPath     string
	configPath string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "cadigraph",
	Short: "cadigraph - content-addressed code intelligence engine",
	Long: `cadigraph ingests source repositories, decomposes them into
semantically meaningful atoms (functions, types, modules, imports), indexes
their dependency relationships in a persistent graph, and serves virtual
views: freshly assembled code fragments that combine requested atoms with
the transitive dependencies they need to remain self-contained.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ws := workspace
		if ws == "" {
			ws, _ = os.Getwd()
		}
		if err := logging.Initialize(ws); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to initialize logging: %v\n", err)
		}

		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if dbPath != "" {
			loaded.GraphStore.DatabasePath = dbPath
		}
		if verbose {
			loaded.Logging.DebugMode = true
		}
		cfg = loaded
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the graph store database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "path to cadigraph.yaml")

	rootCmd.AddCommand(ingestCmd, viewCmd, queryCmd, statsCmd, normalizeCmd)
}

func defaultConfigPath() string {
	return filepath.Join(".", "cadigraph.yaml")
}

// openStore opens the graph store named by the active config, wiring its
// busy_timeout from config.GraphStoreConfig.
func openStore() (*graphstore.Store, error) {
	return graphstore.OpenWithBusyTimeout(cfg.GraphStore.DatabasePath, cfg.GraphStore.BusyTimeoutMS)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
