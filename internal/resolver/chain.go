package resolver

import (
	"strings"

	"codegraph/internal/index"
	"codegraph/internal/relation"
)

type ResolveStats struct {
	Attempted int
	Resolved  int
	Skipped   int
}

// EdgeResolver is one pass that upgrades placeholder edge targets in place.
type EdgeResolver interface {
	Name() string
	Resolve(rels []*relation.Relationship) ResolveStats
}

type StageResult struct {
	Resolver         string
	Stats            ResolveStats
	UnresolvedBefore int
	UnresolvedAfter  int
}

// Chain runs edge resolvers in order, collecting per-stage stats.
type Chain struct {
	resolvers []EdgeResolver
}

func NewChain(resolvers ...EdgeResolver) *Chain {
	return &Chain{resolvers: resolvers}
}

// NewDefaultChain concretizes (file,name) placeholders first, then
// kind-qualified and external placeholders by unique global name match.
func NewDefaultChain(idx *index.Project) *Chain {
	return NewChain(NewFileSymbolResolver(idx), NewNameResolver(idx))
}

func (c *Chain) Run(rels []*relation.Relationship) []StageResult {
	var out []StageResult
	for _, r := range c.resolvers {
		before := countUnresolved(rels)
		stats := r.Resolve(rels)
		out = append(out, StageResult{
			Resolver:         r.Name(),
			Stats:            stats,
			UnresolvedBefore: before,
			UnresolvedAfter:  countUnresolved(rels),
		})
	}
	return out
}

func countUnresolved(rels []*relation.Relationship) int {
	n := 0
	for _, rel := range rels {
		if !rel.Resolved {
			n++
		}
	}
	return n
}

// FileSymbolResolver upgrades "file:<path>:<name>" placeholders to concrete
// symbol IDs when the global index knows the (file, name) pair.
type FileSymbolResolver struct {
	idx *index.Project
}

func NewFileSymbolResolver(idx *index.Project) *FileSymbolResolver {
	return &FileSymbolResolver{idx: idx}
}

func (r *FileSymbolResolver) Name() string { return "file-symbol" }

func (r *FileSymbolResolver) Resolve(rels []*relation.Relationship) ResolveStats {
	var stats ResolveStats
	for _, rel := range rels {
		if rel.Resolved {
			continue
		}
		file, name, ok := splitFilePlaceholder(rel.ToEntityID)
		if !ok {
			continue
		}
		stats.Attempted++
		sym, found := r.idx.LookupPath(file, name)
		if !found {
			stats.Skipped++
			continue
		}
		concretize(rel, sym.ID)
		stats.Resolved++
	}
	return stats
}

// NameResolver upgrades kind-qualified and external placeholders when
// exactly one project symbol carries the name.
type NameResolver struct {
	idx *index.Project
}

func NewNameResolver(idx *index.Project) *NameResolver {
	return &NameResolver{idx: idx}
}

func (r *NameResolver) Name() string { return "unique-name" }

var placeholderPrefixes = []string{"class:", "interface:", "function:", "typeAlias:", "external:"}

func (r *NameResolver) Resolve(rels []*relation.Relationship) ResolveStats {
	var stats ResolveStats
	for _, rel := range rels {
		if rel.Resolved {
			continue
		}
		name, ok := placeholderName(rel.ToEntityID)
		if !ok {
			continue
		}
		stats.Attempted++
		sym, unique := r.idx.Unique(name)
		if !unique {
			stats.Skipped++
			continue
		}
		concretize(rel, sym.ID)
		stats.Resolved++
	}
	return stats
}

// concretize keeps the canonical target key stable: the ToRef recorded at
// extraction time still describes the logical target, only the raw ID is
// upgraded.
func concretize(rel *relation.Relationship, id string) {
	if rel.ToRef == nil {
		key := relation.CanonicalTargetKey(rel)
		rel.ToRef = refFromKey(key)
	}
	rel.ToEntityID = id
	rel.Resolved = true
}

func refFromKey(key string) *relation.TargetRef {
	switch {
	case strings.HasPrefix(key, "FS:"):
		rest := strings.TrimPrefix(key, "FS:")
		if i := strings.LastIndex(rest, ":"); i >= 0 {
			return &relation.TargetRef{Kind: relation.RefFileSymbol, File: rest[:i], Symbol: rest[i+1:]}
		}
	case strings.HasPrefix(key, "EXT:"):
		return &relation.TargetRef{Kind: relation.RefExternal, Symbol: strings.TrimPrefix(key, "EXT:")}
	case strings.HasPrefix(key, "KIND:"):
		rest := strings.TrimPrefix(key, "KIND:")
		if i := strings.Index(rest, ":"); i >= 0 {
			return &relation.TargetRef{Kind: relation.RefKindName, File: rest[:i], Symbol: rest[i+1:]}
		}
	}
	return nil
}

func splitFilePlaceholder(id string) (file, name string, ok bool) {
	if !strings.HasPrefix(id, "file:") {
		return "", "", false
	}
	rest := strings.TrimPrefix(id, "file:")
	i := strings.LastIndex(rest, ":")
	if i < 0 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}

func placeholderName(id string) (string, bool) {
	for _, prefix := range placeholderPrefixes {
		if strings.HasPrefix(id, prefix) {
			return strings.TrimPrefix(id, prefix), true
		}
	}
	return "", false
}
