package config

// RehydrationConfig holds view-assembly defaults in the config file. Neither
// the view command nor rehydrate.Engine reads it: the view command takes its
// defaults from its own flags, and Engine.CreateView fills in only MaxTokens
// and Format when they are left at their zero value.
type RehydrationConfig struct {
	DefaultExpansionDepth int    `yaml:"default_expansion_depth" json:"default_expansion_depth,omitempty"`
	DefaultMaxTokens      int    `yaml:"default_max_tokens" json:"default_max_tokens,omitempty"`
	DefaultFormat         string `yaml:"default_format" json:"default_format,omitempty"`
	DefaultSortByType     bool   `yaml:"default_sort_by_type" json:"default_sort_by_type,omitempty"`
	DefaultAddSeparators  bool   `yaml:"default_add_separators" json:"default_add_separators,omitempty"`
}

// DefaultRehydrationConfig returns sane view-assembly defaults.
func DefaultRehydrationConfig() RehydrationConfig {
	return RehydrationConfig{
		DefaultExpansionDepth: 1,
		DefaultMaxTokens:      8000,
		DefaultFormat:         "source",
		DefaultSortByType:     true,
		DefaultAddSeparators:  true,
	}
}
