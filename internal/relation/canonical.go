package relation

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// CanonicalTargetKey normalizes an edge's target into a stable key that is
// independent of resolution quality. A structured TargetRef wins over the
// raw target ID; raw IDs are classified by prefix.
func CanonicalTargetKey(rel *Relationship) string {
	if rel.ToRef != nil {
		switch rel.ToRef.Kind {
		case RefEntity:
			return "ENT:" + rel.ToEntityID
		case RefFileSymbol:
			return "FS:" + rel.ToRef.File + ":" + rel.ToRef.Symbol
		case RefExternal:
			return "EXT:" + rel.ToRef.Symbol
		case RefImport:
			return "IMP:" + rel.ToRef.File + ":" + rel.ToRef.Symbol
		case RefKindName:
			return "KIND:" + rel.ToRef.File + ":" + rel.ToRef.Symbol
		}
	}
	return classifyRawTarget(rel.ToEntityID)
}

func classifyRawTarget(id string) string {
	switch {
	case strings.HasPrefix(id, "sym:"):
		return "ENT:" + id
	case strings.HasPrefix(id, "file:"):
		rest := strings.TrimPrefix(id, "file:")
		// "file:<path>:<name>" is a placeholder; a bare "file:<path>" is
		// a concrete file entity. Paths never contain ':'.
		if i := strings.LastIndex(rest, ":"); i >= 0 {
			return "FS:" + rest[:i] + ":" + rest[i+1:]
		}
		return "ENT:" + id
	case strings.HasPrefix(id, "external:"):
		return "EXT:" + strings.TrimPrefix(id, "external:")
	case strings.HasPrefix(id, "import:"):
		return "IMP:" + strings.TrimPrefix(id, "import:")
	case strings.HasPrefix(id, "class:"),
		strings.HasPrefix(id, "interface:"),
		strings.HasPrefix(id, "function:"),
		strings.HasPrefix(id, "typeAlias:"):
		return "KIND:" + id
	default:
		return "RAW:" + id
	}
}

// CanonicalID derives the stable relationship ID from the edge's logical
// identity (from, canonical target, type). Incidental metadata does not
// participate, so the ID survives resolution-quality improvements.
func CanonicalID(fromID string, rel *Relationship) string {
	key := fmt.Sprintf("%s|%s|%s", fromID, CanonicalTargetKey(rel), rel.Type)
	return fmt.Sprintf("rel:%016x", xxhash.Sum64String(key))
}

// LogicalKey is the diff-engine comparison key for a relationship.
func LogicalKey(rel *Relationship) string {
	return fmt.Sprintf("%s|%s|%s", rel.FromEntityID, rel.Type, CanonicalTargetKey(rel))
}

// SiteHash is a short content hash of a call/reference site, stable across
// reparses independent of relationship identity.
func SiteHash(path string, line, column int, accessPath string) string {
	key := fmt.Sprintf("%s|%d|%d|%s", path, line, column, accessPath)
	return fmt.Sprintf("%016x", xxhash.Sum64String(key))
}

// SiteID is the abbreviated form of SiteHash used for grouping.
func SiteID(path string, line, column int, accessPath string) string {
	return SiteHash(path, line, column, accessPath)[:8]
}

// DataFlowID groups repeated accesses to the same logical variable.
func DataFlowID(file, owningSymbol, variable string) string {
	key := fmt.Sprintf("%s|%s|%s", file, owningSymbol, variable)
	return fmt.Sprintf("%016x", xxhash.Sum64String(key))
}

// defaultKinds backfills the hoisted kind field per relationship type.
var defaultKinds = map[Type]string{
	Calls:       "call",
	Extends:     "inheritance",
	Implements:  "inheritance",
	Overrides:   "inheritance",
	References:  "reference",
	DependsOn:   "dependency",
	Reads:       "read",
	Writes:      "write",
	Throws:      "throw",
	ReturnsType: "type_usage",
	ParamType:   "type_usage",
	Imports:     "import",
	Defines:     "structure",
	Contains:    "structure",
	Exports:     "structure",
}

// Canonicalize finalizes an edge: assigns the canonical ID, backfills the
// default kind, and stamps the site hash from the primary location.
func Canonicalize(rel *Relationship) {
	if rel.Kind == "" {
		rel.Kind = defaultKinds[rel.Type]
	}
	if rel.SiteHash == "" && rel.Location.Path != "" {
		rel.SiteHash = SiteHash(rel.Location.Path, rel.Location.Line, rel.Location.Column, rel.AccessPath)
		rel.SiteID = rel.SiteHash[:8]
	}
	rel.ID = CanonicalID(rel.FromEntityID, rel)
}
