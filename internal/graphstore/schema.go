package graphstore

// schema defines the six-partition SQLite layout named in §4.3: nodes,
// content, dependencies, dependents, symbols, aliases. The PRAGMA/table
// setup style (IF NOT EXISTS table bodies run in one batch at Open time) is
// grounded on internal/store/local_core.go's initialize(), trimmed down to
// the partitions this store actually needs — none of the teacher's
// vector/session/trace/cold-storage tables carry over, since nothing in
// SPEC_FULL.md's Graph Store exercises them.
const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	chunk_id           TEXT PRIMARY KEY,
	content_hash       TEXT NOT NULL,
	language           TEXT NOT NULL,
	granularity        TEXT NOT NULL,
	visibility         TEXT NOT NULL,
	byte_size          INTEGER NOT NULL,
	token_estimate     INTEGER NOT NULL,
	source_file        TEXT NOT NULL,
	source_line_start  INTEGER,
	source_line_end    INTEGER,
	primary_alias      TEXT,
	aliases_json       TEXT,
	symbols_defined_json    TEXT,
	symbols_referenced_json TEXT,
	outgoing_edges_json     TEXT,
	incoming_edges_json     TEXT,
	metadata_json      TEXT,
	created_at         TEXT NOT NULL,
	updated_at         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_nodes_source_file ON nodes(source_file);
CREATE INDEX IF NOT EXISTS idx_nodes_language ON nodes(language);
CREATE INDEX IF NOT EXISTS idx_nodes_granularity ON nodes(granularity);
CREATE UNIQUE INDEX IF NOT EXISTS idx_nodes_primary_alias ON nodes(primary_alias) WHERE primary_alias IS NOT NULL AND primary_alias != '';

CREATE TABLE IF NOT EXISTS content (
	chunk_id TEXT PRIMARY KEY,
	body     BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS dependencies (
	source_id TEXT NOT NULL,
	edge_type TEXT NOT NULL,
	target_id TEXT NOT NULL,
	PRIMARY KEY (source_id, edge_type, target_id)
);
CREATE INDEX IF NOT EXISTS idx_dependencies_target ON dependencies(target_id);

CREATE TABLE IF NOT EXISTS dependents (
	target_id TEXT NOT NULL,
	edge_type TEXT NOT NULL,
	source_id TEXT NOT NULL,
	PRIMARY KEY (target_id, edge_type, source_id)
);
CREATE INDEX IF NOT EXISTS idx_dependents_source ON dependents(source_id);

CREATE TABLE IF NOT EXISTS symbols (
	symbol   TEXT PRIMARY KEY,
	chunk_id TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS aliases (
	alias    TEXT PRIMARY KEY,
	chunk_id TEXT NOT NULL
);
`
