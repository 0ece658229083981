package engine

import (
	"codegraph/internal/entity"
	"codegraph/internal/extractor"
	"codegraph/internal/relation"
)

// IncrementalResult is a parse plus the delta against the previous
// cached parse of the same file.
type IncrementalResult struct {
	Result *extractor.ParseResult

	AddedEntities   []entity.Entity
	UpdatedEntities []entity.Entity
	RemovedEntities []entity.Entity

	AddedRelationships   []*relation.Relationship
	RemovedRelationships []*relation.Relationship

	// IsIncremental is true when a cached parse existed to diff against
	// (including the unchanged-content no-op and file deletion).
	IsIncremental bool
}

// Empty reports a no-op delta.
func (r *IncrementalResult) Empty() bool {
	return len(r.AddedEntities) == 0 && len(r.UpdatedEntities) == 0 &&
		len(r.RemovedEntities) == 0 && len(r.AddedRelationships) == 0 &&
		len(r.RemovedRelationships) == 0
}

// diffEntities compares symbols by their path key (file plus name) and
// files/directories by entity ID. A symbol present on both sides whose
// ID changed (the ID embeds the signature hash) is updated, not
// removed-and-added.
func diffEntities(out *IncrementalResult, old *cachedFile, res *extractor.ParseResult) {
	newSyms := res.SymbolMap()

	for path, sym := range newSyms {
		prev, ok := old.symbols[path]
		switch {
		case !ok:
			out.AddedEntities = append(out.AddedEntities, sym)
		case prev.ID != sym.ID:
			out.UpdatedEntities = append(out.UpdatedEntities, sym)
		}
	}
	for path, prev := range old.symbols {
		if _, ok := newSyms[path]; !ok {
			out.RemovedEntities = append(out.RemovedEntities, prev)
		}
	}

	// Non-symbol entities (file, directory) compare by ID; the file's
	// content hash changed or we would not be here, so report it updated.
	oldByID := make(map[string]entity.Entity)
	for _, e := range old.entities {
		if _, isSym := e.(entity.Symbol); !isSym {
			oldByID[e.EntityID()] = e
		}
	}
	for _, e := range res.Entities {
		if _, isSym := e.(entity.Symbol); isSym {
			continue
		}
		if _, ok := oldByID[e.EntityID()]; ok {
			if f, isFile := e.(entity.File); isFile {
				out.UpdatedEntities = append(out.UpdatedEntities, f)
			}
		} else {
			out.AddedEntities = append(out.AddedEntities, e)
		}
	}
}

// diffRelationships compares edges by logical key, so an edge whose
// resolution or confidence improved is neither added nor removed.
func diffRelationships(out *IncrementalResult, old, new []*relation.Relationship) {
	oldKeys := make(map[string]*relation.Relationship, len(old))
	for _, rel := range old {
		oldKeys[relation.LogicalKey(rel)] = rel
	}
	newKeys := make(map[string]bool, len(new))
	for _, rel := range new {
		key := relation.LogicalKey(rel)
		newKeys[key] = true
		if _, ok := oldKeys[key]; !ok {
			out.AddedRelationships = append(out.AddedRelationships, rel)
		}
	}
	for key, rel := range oldKeys {
		if !newKeys[key] {
			out.RemovedRelationships = append(out.RemovedRelationships, rel)
		}
	}
}
