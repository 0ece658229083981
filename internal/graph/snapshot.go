package graph

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"codegraph/internal/entity"
	"codegraph/internal/relation"
)

const snapshotSchemaVersion = "v1"

// Snapshot is the serializable form of the graph, ordered
// deterministically so equal graphs produce byte-equal JSON.
type Snapshot struct {
	SchemaVersion string                   `json:"schema_version"`
	GeneratedAt   time.Time                `json:"generated_at"`
	Files         []entity.File            `json:"files"`
	Directories   []entity.Directory       `json:"directories"`
	Symbols       []entity.Symbol          `json:"symbols"`
	Relationships []*relation.Relationship `json:"relationships"`
}

// ToSnapshot flattens the graph into its serializable form.
func (g *Graph) ToSnapshot() *Snapshot {
	snap := &Snapshot{
		SchemaVersion: snapshotSchemaVersion,
		GeneratedAt:   time.Now().UTC(),
		Files:         []entity.File{},
		Directories:   []entity.Directory{},
		Symbols:       []entity.Symbol{},
		Relationships: []*relation.Relationship{},
	}
	for _, e := range g.Entities {
		switch v := e.(type) {
		case entity.File:
			snap.Files = append(snap.Files, v)
		case entity.Directory:
			snap.Directories = append(snap.Directories, v)
		case entity.Symbol:
			snap.Symbols = append(snap.Symbols, v)
		}
	}
	snap.Relationships = append(snap.Relationships, g.Edges...)

	sort.Slice(snap.Files, func(i, j int) bool { return snap.Files[i].ID < snap.Files[j].ID })
	sort.Slice(snap.Directories, func(i, j int) bool { return snap.Directories[i].ID < snap.Directories[j].ID })
	sort.Slice(snap.Symbols, func(i, j int) bool { return snap.Symbols[i].ID < snap.Symbols[j].ID })
	sort.Slice(snap.Relationships, func(i, j int) bool {
		return snap.Relationships[i].ID < snap.Relationships[j].ID
	})
	return snap
}

// MarshalIndent renders the snapshot as indented JSON.
func (s *Snapshot) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// snapshotSchema is the JSON Schema the exported snapshot must satisfy.
const snapshotSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["schema_version", "generated_at", "files", "directories", "symbols", "relationships"],
  "properties": {
    "schema_version": {"type": "string"},
    "generated_at": {"type": "string"},
    "files": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "path", "hash"],
        "properties": {
          "id": {"type": "string", "pattern": "^file:"},
          "path": {"type": "string"},
          "hash": {"type": "string", "pattern": "^[0-9a-f]{64}$"}
        }
      }
    },
    "directories": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "path"],
        "properties": {
          "id": {"type": "string", "pattern": "^dir:"}
        }
      }
    },
    "symbols": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "path", "file", "name", "kind"],
        "properties": {
          "id": {"type": "string", "pattern": "^sym:.+#.+@[0-9a-f]{8}$"},
          "kind": {"enum": ["function", "class", "interface", "typeAlias", "property", "variable"]}
        }
      }
    },
    "relationships": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "from_entity_id", "to_entity_id", "type", "confidence"],
        "properties": {
          "id": {"type": "string", "pattern": "^rel:[0-9a-f]{16}$"},
          "confidence": {"type": "number", "minimum": 0, "maximum": 1},
          "resolution": {"enum": ["direct", "via-import", "type-checker", "heuristic"]},
          "scope": {"enum": ["local", "imported", "external", "unknown"]}
        }
      }
    }
  }
}`

// Validate checks the snapshot's JSON form against the schema.
func (s *Snapshot) Validate() error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("snapshot.schema.json", strings.NewReader(snapshotSchema)); err != nil {
		return fmt.Errorf("failed to load snapshot schema: %w", err)
	}
	schema, err := compiler.Compile("snapshot.schema.json")
	if err != nil {
		return fmt.Errorf("failed to compile snapshot schema: %w", err)
	}

	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("snapshot schema violation: %w", err)
	}
	return nil
}
