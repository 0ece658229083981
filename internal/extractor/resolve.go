package extractor

import (
	"codegraph/internal/relation"
	"codegraph/internal/scoring"
)

// target is the outcome of one name resolution attempt.
type target struct {
	id          string
	ref         *relation.TargetRef
	resolution  relation.Resolution
	scope       relation.Scope
	resolved    bool
	importDepth int
	bucket      scoring.TargetBucket
	sameFile    bool
	exported    bool
	usedChecker bool
	ambiguous   bool
}

func (t *target) features(name string) scoring.Features {
	return scoring.Features{
		Bucket:          t.bucket,
		SameFile:        t.sameFile,
		UsedTypeChecker: t.usedChecker,
		TargetExported:  t.exported,
		NameLength:      len(name),
		ImportDepth:     t.importDepth,
	}
}

// resolveName runs the standard cascade for a simple name referenced in
// this file: import map, local declarations, then a budgeted semantic
// lookup against the global index. Returns nil when every strategy
// misses; callers pick their own placeholder or drop the edge.
func (st *fileState) resolveName(name string) *target {
	if t := st.resolveImported(name); t != nil {
		return t
	}
	if t := st.resolveLocal(name); t != nil {
		return t
	}
	return st.resolveSemantic(name, false)
}

// resolveImported resolves a name bound by this file's import map.
func (st *fileState) resolveImported(name string) *target {
	binding, ok := st.imports.Lookup(name)
	if !ok || binding.Namespace {
		return nil
	}
	if binding.File == "" {
		return &target{
			id:         "external:" + name,
			ref:        &relation.TargetRef{Kind: relation.RefExternal, Symbol: name},
			resolution: relation.ResolutionViaImport,
			scope:      relation.ScopeExternal,
			bucket:     scoring.BucketExternal,
		}
	}

	declFile, declName, depth := binding.File, binding.Imported, 0
	if entry := st.ex.modules.ResolveImportedMember(binding.Spec, binding.Imported, st.path); entry != nil {
		declFile, declName, depth = entry.File, entry.Name, entry.Depth
	}
	t := &target{
		resolution:  relation.ResolutionViaImport,
		scope:       relation.ScopeImported,
		resolved:    true,
		importDepth: depth,
	}
	if sym, ok := st.ex.idx.LookupPath(declFile, declName); ok {
		t.id = sym.ID
		t.ref = &relation.TargetRef{Kind: relation.RefEntity}
		t.bucket = scoring.BucketConcrete
		t.exported = sym.IsExported
	} else {
		t.id = "file:" + declFile + ":" + declName
		t.ref = &relation.TargetRef{Kind: relation.RefFileSymbol, File: declFile, Symbol: declName}
		t.bucket = scoring.BucketFilePlaceholder
	}
	return t
}

// resolveLocal resolves against symbols declared in this file.
func (st *fileState) resolveLocal(name string) *target {
	sym, ok := st.local[name]
	if !ok {
		return nil
	}
	return &target{
		id:         sym.ID,
		ref:        &relation.TargetRef{Kind: relation.RefEntity},
		resolution: relation.ResolutionDirect,
		scope:      relation.ScopeLocal,
		resolved:   true,
		bucket:     scoring.BucketConcrete,
		sameFile:   true,
		exported:   sym.IsExported,
	}
}

// resolveSemantic is the budgeted project-wide lookup.
func (st *fileState) resolveSemantic(name string, imported bool) *target {
	candidates := st.ex.idx.LookupName(name)
	ambiguous := len(candidates) > 1
	if !st.shouldUseTypeChecker(name, imported, ambiguous) {
		return nil
	}
	sym, stillAmbiguous, ok := st.ex.idx.Disambiguate(name, st.path)
	if !ok {
		return nil
	}
	scope := relation.ScopeImported
	sameFile := sym.File == st.path
	if sameFile {
		scope = relation.ScopeLocal
	}
	return &target{
		id:          sym.ID,
		ref:         &relation.TargetRef{Kind: relation.RefEntity},
		resolution:  relation.ResolutionChecker,
		scope:       scope,
		resolved:    true,
		bucket:      scoring.BucketConcrete,
		sameFile:    sameFile,
		exported:    sym.IsExported,
		usedChecker: true,
		ambiguous:   stillAmbiguous,
	}
}
