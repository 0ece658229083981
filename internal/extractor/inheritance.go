package extractor

import (
	"strings"

	"codegraph/internal/relation"
	"codegraph/internal/scoring"
)

// resolveTypeTarget resolves a named type like an inheritance target:
// local index, import/re-export resolution, budgeted semantic fallback,
// then a kind-qualified placeholder.
func (st *fileState) resolveTypeTarget(name, placeholderKind string) *target {
	if t := st.resolveLocal(name); t != nil {
		return t
	}
	if t := st.resolveImported(name); t != nil && t.resolved {
		return t
	}
	if t := st.resolveSemantic(name, false); t != nil {
		return t
	}
	return &target{
		id:         placeholderKind + ":" + name,
		ref:        &relation.TargetRef{Kind: relation.RefKindName, File: placeholderKind, Symbol: name},
		resolution: relation.ResolutionHeuristic,
		scope:      relation.ScopeUnknown,
		bucket:     scoring.BucketFilePlaceholder,
	}
}

// extractInheritance emits EXTENDS and IMPLEMENTS edges for a class.
func (st *fileState) extractInheritance(sn *symbolNode) {
	loc := st.locationOf(sn.node)
	for _, name := range sn.sym.Extends {
		st.emitHeritage(sn, relation.Extends, name, "class", loc)
	}
	for _, name := range sn.sym.Implements {
		st.emitHeritage(sn, relation.Implements, name, "interface", loc)
	}
}

// extractInterfaceInheritance emits EXTENDS edges for an interface.
func (st *fileState) extractInterfaceInheritance(sn *symbolNode) {
	loc := st.locationOf(sn.node)
	for _, name := range sn.sym.Extends {
		st.emitHeritage(sn, relation.Extends, name, "interface", loc)
	}
}

func (st *fileState) emitHeritage(sn *symbolNode, typ relation.Type, rawName, placeholderKind string, loc relation.Location) {
	name := baseTypeName(rawName)
	if name == "" || builtinTypes[name] {
		return
	}
	t := st.resolveTypeTarget(name, placeholderKind)
	conf := st.score(t.features(name))

	rel := st.newEdge(sn.sym.ID, typ, t, loc)
	rel.Kind = "inheritance"
	rel.AccessPath = rawName
	rel.Confidence = conf
	rel.Evidence = st.evidence(evidenceSource(t), conf, loc, "heritage clause")
	st.add(rel)
}

// extractOverride emits OVERRIDES when a method's class extends a base
// whose declaring file contains a same-named method.
func (st *fileState) extractOverride(sn *symbolNode) {
	if sn.sym.Parent == "" {
		return
	}
	className := sn.sym.Parent[strings.LastIndex(sn.sym.Parent, ":")+1:]
	class, ok := st.local[className]
	if !ok || len(class.Extends) == 0 {
		return
	}

	for _, rawBase := range class.Extends {
		baseName := baseTypeName(rawBase)
		baseFile, found := st.heritageDeclarationFile(baseName)
		if !found {
			continue
		}
		base, found := st.lookupMethod(baseFile, baseName, sn.sym.Name)
		if !found {
			continue
		}
		loc := st.locationOf(sn.node)
		rel := &relation.Relationship{
			FromEntityID: sn.sym.ID,
			ToEntityID:   base,
			Type:         relation.Overrides,
			Kind:         "inheritance",
			Resolution:   relation.ResolutionViaImport,
			Scope:        relation.ScopeImported,
			Resolved:     true,
			Confidence:   st.score(scoring.Features{Bucket: scoring.BucketConcrete, NameLength: len(sn.sym.Name)}),
			Location:     loc,
			ToRef:        &relation.TargetRef{Kind: relation.RefEntity},
		}
		if baseFile == st.path {
			rel.Resolution = relation.ResolutionDirect
			rel.Scope = relation.ScopeLocal
		}
		rel.Evidence = st.evidence("ast", rel.Confidence, loc, "method overrides base class")
		st.add(rel)
		return
	}
}

// heritageDeclarationFile locates the file declaring a base type, via the
// import map first, then the same cascade as member calls.
func (st *fileState) heritageDeclarationFile(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	if binding, ok := st.imports.Lookup(name); ok && binding.File != "" {
		if entry := st.ex.modules.ResolveImportedMember(binding.Spec, binding.Imported, st.path); entry != nil {
			return entry.File, true
		}
		return binding.File, true
	}
	return st.typeDeclarationFile(name)
}

// lookupMethod finds the base class's method by name: the current parse
// for same-file bases, the global index otherwise.
func (st *fileState) lookupMethod(file, className, method string) (string, bool) {
	if file == st.path {
		basePath := file + ":" + className
		for _, other := range st.symbols {
			if other.sym.Name == method && other.sym.Parent == basePath {
				return other.sym.ID, true
			}
		}
		return "", false
	}
	if sym, ok := st.ex.idx.LookupPath(file, method); ok {
		return sym.ID, true
	}
	return "", false
}
