package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"codegraph/internal/entity"
	"codegraph/internal/extractor"
	"codegraph/internal/graph"
	"codegraph/internal/relation"
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS entities (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			source_file TEXT,
			name TEXT,
			payload JSON NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS relationships (
			id TEXT PRIMARY KEY,
			source_file TEXT,
			from_id TEXT NOT NULL,
			to_id TEXT NOT NULL,
			type TEXT NOT NULL,
			confidence REAL,
			payload JSON NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_entities_file ON entities(source_file);`,
		`CREATE INDEX IF NOT EXISTS idx_rel_file ON relationships(source_file);`,
		`CREATE INDEX IF NOT EXISTS idx_rel_from ON relationships(from_id);`,
		`CREATE INDEX IF NOT EXISTS idx_rel_to ON relationships(to_id);`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// SaveGraph replaces the stored graph with a full snapshot.
func (s *SQLiteStore) SaveGraph(ctx context.Context, g *graph.Graph) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entities`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM relationships`); err != nil {
		return err
	}

	for _, e := range g.Entities {
		if err := insertEntity(ctx, tx, sourceFileOf(e), e); err != nil {
			return err
		}
	}
	for _, rel := range g.Edges {
		if err := insertRelationship(ctx, tx, relationSourceFile(rel), rel); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// UpsertParse replaces one file's rows with a fresh parse result.
func (s *SQLiteStore) UpsertParse(ctx context.Context, fileRel string, res *extractor.ParseResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteFileRows(ctx, tx, fileRel); err != nil {
		return err
	}
	for _, e := range res.Entities {
		// Directories are shared across files; tag them with no source
		// so a file delete never drops them.
		tag := fileRel
		if e.EntityKind() == entity.KindDirectory {
			tag = ""
		}
		if err := insertEntity(ctx, tx, tag, e); err != nil {
			return err
		}
	}
	for _, rel := range res.Relationships {
		if err := insertRelationship(ctx, tx, fileRel, rel); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeleteFile removes everything a file contributed.
func (s *SQLiteStore) DeleteFile(ctx context.Context, fileRel string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := deleteFileRows(ctx, tx, fileRel); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadGraph reconstructs the stored graph.
func (s *SQLiteStore) LoadGraph(ctx context.Context) (*graph.Graph, error) {
	g := graph.New()

	rows, err := s.db.QueryContext(ctx, `SELECT kind, payload FROM entities`)
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var payload []byte
		if err := rows.Scan(&kind, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		e, err := unmarshalEntity(entity.Kind(kind), payload)
		if err != nil {
			return nil, err
		}
		g.Entities[e.EntityID()] = e
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	relRows, err := s.db.QueryContext(ctx, `SELECT payload FROM relationships`)
	if err != nil {
		return nil, fmt.Errorf("failed to query relationships: %w", err)
	}
	defer relRows.Close()
	var rels []*relation.Relationship
	for relRows.Next() {
		var payload []byte
		if err := relRows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan relationship: %w", err)
		}
		var rel relation.Relationship
		if err := json.Unmarshal(payload, &rel); err != nil {
			return nil, fmt.Errorf("failed to decode relationship: %w", err)
		}
		rels = append(rels, &rel)
	}
	if err := relRows.Err(); err != nil {
		return nil, err
	}

	g.Add(&extractor.ParseResult{Relationships: rels})
	return g, nil
}

// FindSymbolsByFile retrieves the stored symbols of one file.
func (s *SQLiteStore) FindSymbolsByFile(ctx context.Context, fileRel string) ([]entity.Symbol, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM entities WHERE source_file = ? AND kind = ?`, fileRel, string(entity.KindSymbol))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var syms []entity.Symbol
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var sym entity.Symbol
		if err := json.Unmarshal(payload, &sym); err != nil {
			return nil, err
		}
		syms = append(syms, sym)
	}
	return syms, rows.Err()
}

func deleteFileRows(ctx context.Context, tx *sql.Tx, fileRel string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM entities WHERE source_file = ?`, fileRel); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `DELETE FROM relationships WHERE source_file = ?`, fileRel)
	return err
}

func insertEntity(ctx context.Context, tx *sql.Tx, sourceFile string, e entity.Entity) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO entities (id, kind, source_file, name, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind=excluded.kind,
			source_file=excluded.source_file,
			name=excluded.name,
			payload=excluded.payload
	`, e.EntityID(), string(e.EntityKind()), sourceFile, entityName(e), payload)
	return err
}

func insertRelationship(ctx context.Context, tx *sql.Tx, sourceFile string, rel *relation.Relationship) error {
	payload, err := json.Marshal(rel)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO relationships (id, source_file, from_id, to_id, type, confidence, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_file=excluded.source_file,
			from_id=excluded.from_id,
			to_id=excluded.to_id,
			type=excluded.type,
			confidence=excluded.confidence,
			payload=excluded.payload
	`, rel.ID, sourceFile, rel.FromEntityID, rel.ToEntityID, string(rel.Type), rel.Confidence, payload)
	return err
}

func unmarshalEntity(kind entity.Kind, payload []byte) (entity.Entity, error) {
	switch kind {
	case entity.KindFile:
		var f entity.File
		if err := json.Unmarshal(payload, &f); err != nil {
			return nil, fmt.Errorf("failed to decode file entity: %w", err)
		}
		return f, nil
	case entity.KindDirectory:
		var d entity.Directory
		if err := json.Unmarshal(payload, &d); err != nil {
			return nil, fmt.Errorf("failed to decode directory entity: %w", err)
		}
		return d, nil
	case entity.KindSymbol:
		var sym entity.Symbol
		if err := json.Unmarshal(payload, &sym); err != nil {
			return nil, fmt.Errorf("failed to decode symbol entity: %w", err)
		}
		return sym, nil
	default:
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
}

// relationSourceFile tags a relationship row with the file whose reparse
// or deletion should replace it. Edges without a recorded site fall back
// to the file embedded in an endpoint ID, so a structural edge never
// outlives the file it describes.
func relationSourceFile(rel *relation.Relationship) string {
	if rel.Location.Path != "" {
		return rel.Location.Path
	}
	for _, id := range []string{rel.FromEntityID, rel.ToEntityID} {
		if f := entityIDFile(id); f != "" {
			return f
		}
	}
	return ""
}

// entityIDFile extracts the file path baked into an entity ID, or ""
// for directories and placeholders.
func entityIDFile(id string) string {
	switch {
	case strings.HasPrefix(id, "file:"):
		return strings.TrimPrefix(id, "file:")
	case strings.HasPrefix(id, "sym:"):
		rest := strings.TrimPrefix(id, "sym:")
		if i := strings.Index(rest, "#"); i > 0 {
			return rest[:i]
		}
	}
	return ""
}

func sourceFileOf(e entity.Entity) string {
	switch v := e.(type) {
	case entity.File:
		return v.Path
	case entity.Symbol:
		return v.File
	default:
		return ""
	}
}

func entityName(e entity.Entity) string {
	switch v := e.(type) {
	case entity.File:
		return v.Path
	case entity.Directory:
		return v.Path
	case entity.Symbol:
		return v.Name
	default:
		return ""
	}
}
