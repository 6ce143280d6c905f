// Package graphstore implements the Graph Store (§4.3): a single-file
// SQLite-backed index of Atoms and their dependency edges, split across six
// partitions (nodes, content, dependencies, dependents, symbols, aliases).
//
// The constructor's PRAGMA sequence (single connection, WAL, NORMAL sync,
// busy_timeout) and the sync.RWMutex-guarded struct are grounded on
// internal/store/local_core.go's NewLocalStore/LocalStore; the BFS query
// algorithm's avoid-nested-RLock discipline is grounded on
// internal/store/local_graph.go's queryLinksLocked/TraversePath split. This
// store standardizes on modernc.org/sqlite (pure Go, driver name "sqlite")
// rather than the teacher's mattn/go-sqlite3 cgo driver — see DESIGN.md.
package graphstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cadigraph/cadigraph/internal/atomerr"
	"github.com/cadigraph/cadigraph/internal/logging"
	"github.com/cadigraph/cadigraph/internal/model"

	_ "modernc.org/sqlite"
)

// Store is the Graph Store. All operations are ACID at single-call
// granularity (§4.3): a single insert_node/delete_node/add_dependency call
// either fully applies or fully rolls back.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// Open initializes (creating if absent) the SQLite database at path, using
// the default busy_timeout of 5000ms (config.DefaultGraphStoreConfig's
// value).
func Open(path string) (*Store, error) {
	return OpenWithBusyTimeout(path, 5000)
}

// OpenWithBusyTimeout is Open with an explicit busy_timeout in milliseconds,
// wired from config.GraphStoreConfig.BusyTimeoutMS by callers that load a
// cadigraph config file.
func OpenWithBusyTimeout(path string, busyTimeoutMS int) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryGraph, "Open")
	defer timer.Stop()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, atomerr.Wrap(atomerr.KindStorageError, "create graph store directory", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, atomerr.Wrap(atomerr.KindStorageError, "open graph store", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if busyTimeoutMS <= 0 {
		busyTimeoutMS = 5000
	}
	for _, pragma := range []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeoutMS),
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = OFF",
	} {
		if _, err := db.Exec(pragma); err != nil {
			logging.GraphDebug("pragma failed (%s): %v", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, atomerr.Wrap(atomerr.KindStorageError, "initialize graph store schema", err)
	}

	logging.Graph("graph store opened at %s", path)
	return &Store{db: db, dbPath: path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func marshalStrings(ss []string) string {
	if len(ss) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(ss)
	return string(b)
}

func unmarshalStrings(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	_ = json.Unmarshal([]byte(s), &out)
	return out
}

func marshalEdges(es []model.EdgeRef) string {
	if len(es) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(es)
	return string(b)
}

func unmarshalEdges(s string) []model.EdgeRef {
	if s == "" {
		return nil
	}
	var out []model.EdgeRef
	_ = json.Unmarshal([]byte(s), &out)
	return out
}

func marshalMetadata(m map[string]string) string {
	if len(m) == 0 {
		return "{}"
	}
	b, _ := json.Marshal(m)
	return string(b)
}

func unmarshalMetadata(s string) map[string]string {
	if s == "" {
		return nil
	}
	var out map[string]string
	_ = json.Unmarshal([]byte(s), &out)
	return out
}

// dedupStrings preserves first-seen order while dropping repeats, used to
// dedup edge/symbol lists on insert (§4.3 insert_node contract).
func dedupStrings(ss []string) []string {
	seen := make(map[string]bool, len(ss))
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func dedupEdges(es []model.EdgeRef) []model.EdgeRef {
	type key struct {
		t model.EdgeType
		i string
	}
	seen := make(map[key]bool, len(es))
	out := make([]model.EdgeRef, 0, len(es))
	for _, e := range es {
		k := key{e.Type, e.ID}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return out
}

// InsertNode implements §4.3 insert_node: writes the node row, its content
// blob, its symbol/alias index entries (overwriting any prior entry for the
// same key, last-writer-wins per §3's no-duplicates invariant), and the
// reverse (dependents) edge for every outgoing edge already cached on the
// atom — all within one transaction.
func (s *Store) InsertNode(atom model.Atom, content []byte) error {
	timer := logging.StartTimer(logging.CategoryGraph, "InsertNode:"+atom.ChunkID)
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	atom.OutgoingEdges = dedupEdges(atom.OutgoingEdges)
	atom.SymbolsDefined = dedupStrings(atom.SymbolsDefined)
	atom.Aliases = dedupStrings(atom.Aliases)

	now := time.Now().UTC().Format(time.RFC3339)
	if atom.CreatedAt.IsZero() {
		atom.CreatedAt = time.Now().UTC()
	}
	atom.UpdatedAt = time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return atomerr.Wrap(atomerr.KindStorageError, "begin insert_node tx", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO nodes (chunk_id, content_hash, language, granularity, visibility, byte_size,
			token_estimate, source_file, source_line_start, source_line_end, primary_alias,
			aliases_json, symbols_defined_json, symbols_referenced_json, outgoing_edges_json,
			incoming_edges_json, metadata_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
			content_hash=excluded.content_hash, language=excluded.language,
			granularity=excluded.granularity, visibility=excluded.visibility,
			byte_size=excluded.byte_size, token_estimate=excluded.token_estimate,
			source_file=excluded.source_file, source_line_start=excluded.source_line_start,
			source_line_end=excluded.source_line_end, primary_alias=excluded.primary_alias,
			aliases_json=excluded.aliases_json, symbols_defined_json=excluded.symbols_defined_json,
			symbols_referenced_json=excluded.symbols_referenced_json,
			outgoing_edges_json=excluded.outgoing_edges_json, metadata_json=excluded.metadata_json,
			updated_at=excluded.updated_at`,
		atom.ChunkID, atom.ContentHash, atom.Language, string(atom.Granularity), string(atom.Visibility),
		atom.ByteSize, atom.TokenEstimate, atom.SourceFile,
		sourceLine(atom, true), sourceLine(atom, false), nullableString(atom.PrimaryAlias),
		marshalStrings(atom.Aliases), marshalStrings(atom.SymbolsDefined), marshalStrings(atom.SymbolsReferenced),
		marshalEdges(atom.OutgoingEdges), marshalEdges(nil), marshalMetadata(atom.Metadata),
		atom.CreatedAt.UTC().Format(time.RFC3339), now,
	)
	if err != nil {
		return atomerr.Wrap(atomerr.KindStorageError, "insert node row", err)
	}

	if len(content) > 0 {
		if _, err := tx.Exec(`INSERT INTO content (chunk_id, body) VALUES (?, ?)
			ON CONFLICT(chunk_id) DO UPDATE SET body=excluded.body`, atom.ChunkID, content); err != nil {
			return atomerr.Wrap(atomerr.KindStorageError, "store content blob", err)
		}
	}

	for _, sym := range atom.SymbolsDefined {
		if _, err := tx.Exec(`INSERT INTO symbols (symbol, chunk_id) VALUES (?, ?)
			ON CONFLICT(symbol) DO UPDATE SET chunk_id=excluded.chunk_id`, sym, atom.ChunkID); err != nil {
			return atomerr.Wrap(atomerr.KindStorageError, "index symbol", err)
		}
	}
	if atom.PrimaryAlias != "" {
		if _, err := tx.Exec(`INSERT INTO aliases (alias, chunk_id) VALUES (?, ?)
			ON CONFLICT(alias) DO UPDATE SET chunk_id=excluded.chunk_id`, atom.PrimaryAlias, atom.ChunkID); err != nil {
			return atomerr.Wrap(atomerr.KindStorageError, "index primary alias", err)
		}
	}
	for _, alias := range atom.Aliases {
		if _, err := tx.Exec(`INSERT INTO aliases (alias, chunk_id) VALUES (?, ?)
			ON CONFLICT(alias) DO UPDATE SET chunk_id=excluded.chunk_id`, alias, atom.ChunkID); err != nil {
			return atomerr.Wrap(atomerr.KindStorageError, "index alias", err)
		}
	}

	for _, edge := range atom.OutgoingEdges {
		if err := writeDependencyPair(tx, atom.ChunkID, edge.Type, edge.ID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return atomerr.Wrap(atomerr.KindStorageError, "commit insert_node tx", err)
	}
	return nil
}

func sourceLine(atom model.Atom, start bool) interface{} {
	if atom.SourceLines == nil {
		return nil
	}
	if start {
		return atom.SourceLines.Start
	}
	return atom.SourceLines.End
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// writeDependencyPair writes both the forward (dependencies) and reverse
// (dependents) row for one edge within tx, idempotently (§4.3
// add_dependency contract: dual forward+reverse write, atomic pair commit).
func writeDependencyPair(tx *sql.Tx, sourceID string, edgeType model.EdgeType, targetID string) error {
	if _, err := tx.Exec(`INSERT OR IGNORE INTO dependencies (source_id, edge_type, target_id) VALUES (?, ?, ?)`,
		sourceID, string(edgeType), targetID); err != nil {
		return atomerr.Wrap(atomerr.KindStorageError, "write forward edge", err)
	}
	if _, err := tx.Exec(`INSERT OR IGNORE INTO dependents (target_id, edge_type, source_id) VALUES (?, ?, ?)`,
		targetID, string(edgeType), sourceID); err != nil {
		return atomerr.Wrap(atomerr.KindStorageError, "write reverse edge", err)
	}
	return nil
}

// AddDependency implements §4.3 add_dependency: idempotent, serialized on
// (source, target), writes both directions atomically.
func (s *Store) AddDependency(sourceID string, edgeType model.EdgeType, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return atomerr.Wrap(atomerr.KindStorageError, "begin add_dependency tx", err)
	}
	defer tx.Rollback()

	if err := writeDependencyPair(tx, sourceID, edgeType, targetID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return atomerr.Wrap(atomerr.KindStorageError, "commit add_dependency tx", err)
	}
	return nil
}

// GetNode implements §4.3 get_node.
func (s *Store) GetNode(chunkID string) (*model.Atom, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getNodeLocked(chunkID)
}

func (s *Store) getNodeLocked(chunkID string) (*model.Atom, bool, error) {
	row := s.db.QueryRow(`SELECT chunk_id, content_hash, language, granularity, visibility, byte_size,
		token_estimate, source_file, source_line_start, source_line_end, primary_alias,
		aliases_json, symbols_defined_json, symbols_referenced_json, outgoing_edges_json,
		incoming_edges_json, metadata_json, created_at, updated_at
		FROM nodes WHERE chunk_id = ?`, chunkID)

	var a model.Atom
	var granularity, visibility string
	var primaryAlias sql.NullString
	var startLine, endLine sql.NullInt64
	var aliasesJSON, definedJSON, refJSON, outJSON, inJSON, metaJSON string
	var createdAt, updatedAt string

	err := row.Scan(&a.ChunkID, &a.ContentHash, &a.Language, &granularity, &visibility, &a.ByteSize,
		&a.TokenEstimate, &a.SourceFile, &startLine, &endLine, &primaryAlias,
		&aliasesJSON, &definedJSON, &refJSON, &outJSON, &inJSON, &metaJSON, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, atomerr.Wrap(atomerr.KindStorageError, "get_node "+chunkID, err)
	}

	a.Granularity = model.Granularity(granularity)
	a.Visibility = model.Visibility(visibility)
	if primaryAlias.Valid {
		a.PrimaryAlias = primaryAlias.String
	}
	if startLine.Valid && endLine.Valid {
		a.SourceLines = &model.SourceLines{Start: int(startLine.Int64), End: int(endLine.Int64)}
	}
	a.Aliases = unmarshalStrings(aliasesJSON)
	a.SymbolsDefined = unmarshalStrings(definedJSON)
	a.SymbolsReferenced = unmarshalStrings(refJSON)
	a.OutgoingEdges = unmarshalEdges(outJSON)
	a.IncomingEdges = unmarshalEdges(inJSON)
	a.Metadata = unmarshalMetadata(metaJSON)
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	a.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return &a, true, nil
}

// NodeExists implements §4.3 node_exists.
func (s *Store) NodeExists(chunkID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var one int
	err := s.db.QueryRow(`SELECT 1 FROM nodes WHERE chunk_id = ?`, chunkID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, atomerr.Wrap(atomerr.KindStorageError, "node_exists "+chunkID, err)
	}
	return true, nil
}

// DeleteNode implements §4.3 delete_node: an atomic cascade removing the
// node, its content blob, every dependency/dependent row mentioning it, and
// every symbol/alias entry pointing to it.
func (s *Store) DeleteNode(chunkID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return atomerr.Wrap(atomerr.KindStorageError, "begin delete_node tx", err)
	}
	defer tx.Rollback()

	stmts := []struct {
		query string
		args  []interface{}
	}{
		{`DELETE FROM nodes WHERE chunk_id = ?`, []interface{}{chunkID}},
		{`DELETE FROM content WHERE chunk_id = ?`, []interface{}{chunkID}},
		{`DELETE FROM dependencies WHERE source_id = ? OR target_id = ?`, []interface{}{chunkID, chunkID}},
		{`DELETE FROM dependents WHERE source_id = ? OR target_id = ?`, []interface{}{chunkID, chunkID}},
		{`DELETE FROM symbols WHERE chunk_id = ?`, []interface{}{chunkID}},
		{`DELETE FROM aliases WHERE chunk_id = ?`, []interface{}{chunkID}},
	}
	for _, st := range stmts {
		if _, err := tx.Exec(st.query, st.args...); err != nil {
			return atomerr.Wrap(atomerr.KindStorageError, "delete_node "+chunkID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return atomerr.Wrap(atomerr.KindStorageError, "commit delete_node tx", err)
	}
	return nil
}

// GetContent implements §4.3 get_content.
func (s *Store) GetContent(chunkID string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var body []byte
	err := s.db.QueryRow(`SELECT body FROM content WHERE chunk_id = ?`, chunkID).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, atomerr.Wrap(atomerr.KindStorageError, "get_content "+chunkID, err)
	}
	return body, true, nil
}

// StoreContent implements §4.3 store_content as a standalone write (used
// when content needs to be (re)written outside of InsertNode).
func (s *Store) StoreContent(chunkID string, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO content (chunk_id, body) VALUES (?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET body=excluded.body`, chunkID, content)
	if err != nil {
		return atomerr.Wrap(atomerr.KindStorageError, "store_content "+chunkID, err)
	}
	return nil
}

// GetDependencies implements §4.3 get_dependencies: the forward edge list
// for chunkID, optionally filtered by edge type.
func (s *Store) GetDependencies(chunkID string, edgeType model.EdgeType) ([]model.EdgeRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryEdgeTable("dependencies", "source_id", "target_id", chunkID, edgeType)
}

// GetDependents implements §4.3 get_dependents: the reverse edge list for
// chunkID, optionally filtered by edge type.
func (s *Store) GetDependents(chunkID string, edgeType model.EdgeType) ([]model.EdgeRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryEdgeTable("dependents", "target_id", "source_id", chunkID, edgeType)
}

func (s *Store) queryEdgeTable(table, keyCol, otherCol, key string, edgeType model.EdgeType) ([]model.EdgeRef, error) {
	query := fmt.Sprintf(`SELECT edge_type, %s FROM %s WHERE %s = ?`, otherCol, table, keyCol)
	args := []interface{}{key}
	if edgeType != "" {
		query += ` AND edge_type = ?`
		args = append(args, string(edgeType))
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, atomerr.Wrap(atomerr.KindStorageError, "query "+table, err)
	}
	defer rows.Close()

	var out []model.EdgeRef
	for rows.Next() {
		var et, id string
		if err := rows.Scan(&et, &id); err != nil {
			continue
		}
		out = append(out, model.EdgeRef{Type: model.EdgeType(et), ID: id})
	}
	return out, nil
}

// FindSymbol implements §4.3 find_symbol: a single lookup in the symbols
// partition.
func (s *Store) FindSymbol(symbol string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chunkID string
	err := s.db.QueryRow(`SELECT chunk_id FROM symbols WHERE symbol = ?`, symbol).Scan(&chunkID)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, atomerr.Wrap(atomerr.KindStorageError, "find_symbol "+symbol, err)
	}
	return chunkID, true, nil
}

// ResolveAlias implements §4.3 resolve_alias: a single lookup in the
// aliases partition.
func (s *Store) ResolveAlias(alias string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chunkID string
	err := s.db.QueryRow(`SELECT chunk_id FROM aliases WHERE alias = ?`, alias).Scan(&chunkID)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, atomerr.Wrap(atomerr.KindStorageError, "resolve_alias "+alias, err)
	}
	return chunkID, true, nil
}

// ListNodes implements §4.3 list_nodes.
func (s *Store) ListNodes() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT chunk_id FROM nodes ORDER BY chunk_id`)
	if err != nil {
		return nil, atomerr.Wrap(atomerr.KindStorageError, "list_nodes", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		out = append(out, id)
	}
	return out, nil
}

// Edge is one (source, edge_type, target) row as returned by ListEdges.
type Edge struct {
	Source string
	Type   model.EdgeType
	Target string
}

// ListEdges implements §4.3 list_edges.
func (s *Store) ListEdges() ([]Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT source_id, edge_type, target_id FROM dependencies ORDER BY source_id, edge_type, target_id`)
	if err != nil {
		return nil, atomerr.Wrap(atomerr.KindStorageError, "list_edges", err)
	}
	defer rows.Close()

	var out []Edge
	for rows.Next() {
		var e Edge
		var et string
		if err := rows.Scan(&e.Source, &et, &e.Target); err != nil {
			continue
		}
		e.Type = model.EdgeType(et)
		out = append(out, e)
	}
	return out, nil
}

// Stats implements §4.3 stats: row counts per partition.
func (s *Store) Stats() (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]int64)
	for _, table := range []string{"nodes", "content", "dependencies", "dependents", "symbols", "aliases"} {
		var count int64
		if err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
			return nil, atomerr.Wrap(atomerr.KindStorageError, "stats "+table, err)
		}
		stats[table] = count
	}
	return stats, nil
}

// Flush implements §4.3 flush: forces a WAL checkpoint so the database file
// reflects everything committed so far.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(`PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return atomerr.Wrap(atomerr.KindStorageError, "flush", err)
	}
	return nil
}
