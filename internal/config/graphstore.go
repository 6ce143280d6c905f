package config

// GraphStoreConfig configures the persistent SQLite-backed graph store.
type GraphStoreConfig struct {
	// DatabasePath is the path to the store's SQLite file.
	DatabasePath string `yaml:"database_path" json:"database_path,omitempty"`

	// BusyTimeoutMS is the sqlite busy_timeout PRAGMA, in milliseconds.
	BusyTimeoutMS int `yaml:"busy_timeout_ms" json:"busy_timeout_ms,omitempty"`

	// DefaultQueryMaxResults is carried in the config but graphstore.Query
	// does not read it; Query applies its own default when the caller leaves
	// GraphQuery.MaxResults unset.
	DefaultQueryMaxResults int `yaml:"default_query_max_results" json:"default_query_max_results,omitempty"`

	// DefaultQueryMaxDepth is carried in the config but graphstore.Query
	// does not read it; Query applies its own default when the caller leaves
	// GraphQuery.MaxDepth unset.
	DefaultQueryMaxDepth int `yaml:"default_query_max_depth" json:"default_query_max_depth,omitempty"`
}

// DefaultGraphStoreConfig returns sane store defaults.
func DefaultGraphStoreConfig() GraphStoreConfig {
	return GraphStoreConfig{
		DatabasePath:           "data/cadigraph.db",
		BusyTimeoutMS:          5000,
		DefaultQueryMaxResults: 1000,
		DefaultQueryMaxDepth:   8,
	}
}
