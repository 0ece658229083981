package relation

import "time"

// Type is the relationship type between two entities.
type Type string

const (
	Defines     Type = "DEFINES"
	Contains    Type = "CONTAINS"
	Exports     Type = "EXPORTS"
	Imports     Type = "IMPORTS"
	Calls       Type = "CALLS"
	References  Type = "REFERENCES"
	DependsOn   Type = "DEPENDS_ON"
	Extends     Type = "EXTENDS"
	Implements  Type = "IMPLEMENTS"
	Overrides   Type = "OVERRIDES"
	ReturnsType Type = "RETURNS_TYPE"
	ParamType   Type = "PARAM_TYPE"
	Throws      Type = "THROWS"
	Reads       Type = "READS"
	Writes      Type = "WRITES"
)

// Resolution is the method that determined an edge's target.
type Resolution string

const (
	ResolutionDirect    Resolution = "direct"
	ResolutionViaImport Resolution = "via-import"
	ResolutionChecker   Resolution = "type-checker"
	ResolutionHeuristic Resolution = "heuristic"
)

// Scope locates the target relative to the referencing file.
type Scope string

const (
	ScopeLocal    Scope = "local"
	ScopeImported Scope = "imported"
	ScopeExternal Scope = "external"
	ScopeUnknown  Scope = "unknown"
)

// Location is a source position.
type Location struct {
	Path   string `json:"path"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// Evidence justifies why an edge was inferred.
type Evidence struct {
	Source     string   `json:"source"` // type-checker, ast, heuristic
	Confidence float64  `json:"confidence"`
	Location   Location `json:"location"`
	Note       string   `json:"note,omitempty"`
}

// RefKind classifies a structured target reference.
type RefKind string

const (
	RefEntity     RefKind = "entity"     // concrete entity ID
	RefFileSymbol RefKind = "fileSymbol" // (file, symbol name) pair
	RefExternal   RefKind = "external"   // outside the project
	RefKindName   RefKind = "kindName"   // kind-qualified placeholder
	RefImport     RefKind = "import"     // unresolved module member
)

// TargetRef is a structured description of an edge target. It is
// preferred over the raw target ID when computing canonical keys.
type TargetRef struct {
	Kind   RefKind `json:"kind"`
	File   string  `json:"file,omitempty"`
	Symbol string  `json:"symbol,omitempty"`
}

// Relationship is a typed, directed edge between two entities.
//
// ToEntityID is either a concrete entity ID ("sym:…", "file:<path>") or a
// placeholder ("file:<path>:<name>", "external:<name>",
// "class:<name>"-style kind placeholders, "import:<module>:<name>").
type Relationship struct {
	ID           string    `json:"id"`
	FromEntityID string    `json:"from_entity_id"`
	ToEntityID   string    `json:"to_entity_id"`
	Type         Type      `json:"type"`
	Created      time.Time `json:"created,omitempty"`
	LastModified time.Time `json:"last_modified,omitempty"`
	Version      int       `json:"version,omitempty"`

	Kind            string     `json:"kind,omitempty"`
	Resolution      Resolution `json:"resolution,omitempty"`
	Scope           Scope      `json:"scope,omitempty"`
	Confidence      float64    `json:"confidence"`
	OccurrencesScan int        `json:"occurrences_scan,omitempty"`
	AccessPath      string     `json:"access_path,omitempty"`
	Location        Location   `json:"location"`
	SiteID          string     `json:"site_id,omitempty"`
	SiteHash        string     `json:"site_hash,omitempty"`
	Evidence        []Evidence `json:"evidence,omitempty"`
	Sites           []Location `json:"sites,omitempty"`

	ToRef   *TargetRef `json:"to_ref,omitempty"`
	FromRef *TargetRef `json:"from_ref,omitempty"`

	// Resolver bookkeeping, not part of edge identity.
	Resolved    bool `json:"resolved"`
	ImportDepth int  `json:"import_depth,omitempty"`
	Ambiguous   bool `json:"ambiguous,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty"`
}
