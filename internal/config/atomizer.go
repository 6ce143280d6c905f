package config

// AtomizerConfig configures source extraction and symbol resolution.
type AtomizerConfig struct {
	// UseTreeSitter is carried in the config but extraction does not read it:
	// the atomizer has no tree-sitter strategy and always runs go/ast for Go
	// and the regex/hand-scanner extractor for every other language.
	UseTreeSitter bool `yaml:"use_tree_sitter" json:"use_tree_sitter,omitempty"`

	// MaxFileSizeBytes skips files larger than this during a directory walk.
	// Zero means unbounded.
	MaxFileSizeBytes int64 `yaml:"max_file_size_bytes" json:"max_file_size_bytes,omitempty"`

	// IgnoreGlobs are glob patterns excluded from ingest directory walks.
	IgnoreGlobs []string `yaml:"ignore_globs" json:"ignore_globs,omitempty"`
}

// DefaultAtomizerConfig returns sane extraction defaults.
func DefaultAtomizerConfig() AtomizerConfig {
	return AtomizerConfig{
		UseTreeSitter:    false,
		MaxFileSizeBytes: 2 << 20, // 2 MiB
		IgnoreGlobs: []string{
			".git/**", "node_modules/**", "vendor/**", "dist/**", "build/**",
		},
	}
}
