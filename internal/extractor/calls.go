package extractor

import (
	sitter "github.com/smacker/go-tree-sitter"

	"codegraph/internal/relation"
	"codegraph/internal/scoring"
)

// callStoplist filters common globals and test-framework identifiers
// whose call edges are noise.
var callStoplist = map[string]bool{
	"require": true, "console": true, "log": true, "error": true, "warn": true,
	"describe": true, "it": true, "test": true, "expect": true,
	"beforeEach": true, "afterEach": true, "beforeAll": true, "afterAll": true,
	"setTimeout": true, "setInterval": true, "clearTimeout": true, "clearInterval": true,
	"parseInt": true, "parseFloat": true, "isNaN": true, "fetch": true,
	"stringify": true, "parse": true, "then": true, "catch": true, "finally": true,
	"map": true, "filter": true, "reduce": true, "forEach": true, "join": true,
	"toString": true, "bind": true, "call": true, "apply": true,
}

// mutatorMethods are receiver-mutating methods that imply a write.
var mutatorMethods = map[string]bool{
	"push": true, "pop": true, "shift": true, "unshift": true, "splice": true,
	"set": true, "delete": true, "add": true, "clear": true, "sort": true,
	"reverse": true, "fill": true,
}

// extractCalls finds call expressions in a symbol's body. Calls to the
// same target aggregate into one CALLS edge carrying the occurrence count
// and the earliest line; imported targets also get a DEPENDS_ON edge and
// every call mirrors a REFERENCES edge.
func (st *fileState) extractCalls(sn *symbolNode) {
	eachNode(sn.body, func(n *sitter.Node) bool {
		if n.Type() == "call_expression" {
			st.handleCall(sn, n)
		}
		return true
	})
}

func (st *fileState) handleCall(sn *symbolNode, call *sitter.Node) {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return
	}
	accessPath := firstLine(fn.Content(st.content))
	simple := calleeName(fn, st.content)
	if simple == "" || callStoplist[simple] || len(simple) < st.ex.cfg.MinNameLength {
		st.markCallee(fn)
		return
	}

	var t *target
	switch fn.Type() {
	case "member_expression":
		base := baseIdentifier(fn, st.content)
		t = st.resolveMemberCall(base, simple)
		st.markCallee(fn)
		if mutatorMethods[simple] && base != "" {
			st.emitMutatorWrite(sn, base, accessPath, call)
		}
	case "identifier":
		st.handled[fn.StartByte()] = true
		t = st.resolveName(simple)
	default:
		return
	}
	if t == nil {
		// Unresolvable targets are dropped, not emitted as noise.
		return
	}

	loc := st.locationOf(call)
	conf := st.score(t.features(simple))

	callRel := st.newEdge(sn.sym.ID, relation.Calls, t, loc)
	callRel.Kind = "call"
	callRel.AccessPath = accessPath
	callRel.Confidence = conf
	callRel.Evidence = st.evidence(evidenceSource(t), conf, loc, "call expression")
	callRel.SiteHash = relation.SiteHash(st.path, loc.Line, loc.Column, accessPath)
	callRel.SiteID = callRel.SiteHash[:8]
	st.add(callRel)

	refRel := st.newEdge(sn.sym.ID, relation.References, t, loc)
	refRel.Kind = "call"
	refRel.AccessPath = accessPath
	refRel.Confidence = conf
	refRel.Evidence = st.evidence(evidenceSource(t), conf, loc, "call reference")
	st.add(refRel)

	if t.scope == relation.ScopeImported {
		depRel := st.newEdge(sn.sym.ID, relation.DependsOn, t, loc)
		depRel.Confidence = conf
		depRel.Evidence = st.evidence(evidenceSource(t), conf, loc, "imported call target")
		st.add(depRel)
	}
}

// resolveMemberCall implements the property-access leg of the call
// cascade: receiver-type semantic lookup first, then the import map.
func (st *fileState) resolveMemberCall(base, method string) *target {
	if base == "" {
		return nil
	}

	// (a) Base-type resolution via budgeted semantic lookup.
	if typeName, ok := st.varTypes[base]; ok && st.shouldUseTypeChecker(method, false, false) {
		if declFile, found := st.typeDeclarationFile(typeName); found {
			t := &target{
				resolution:  relation.ResolutionChecker,
				scope:       relation.ScopeImported,
				resolved:    true,
				usedChecker: true,
			}
			if declFile == st.path {
				t.scope = relation.ScopeLocal
				t.sameFile = true
			}
			if sym, ok := st.ex.idx.LookupPath(declFile, method); ok {
				t.id = sym.ID
				t.ref = &relation.TargetRef{Kind: relation.RefEntity}
				t.bucket = scoring.BucketConcrete
				t.exported = sym.IsExported
			} else {
				t.id = "file:" + declFile + ":" + method
				t.ref = &relation.TargetRef{Kind: relation.RefFileSymbol, File: declFile, Symbol: method}
				t.bucket = scoring.BucketFilePlaceholder
			}
			return t
		}
	}

	// (b) Namespace or alias root in the import map.
	if binding, ok := st.imports.Lookup(base); ok && binding.File != "" {
		hint := method
		t := &target{
			resolution: relation.ResolutionViaImport,
			scope:      relation.ScopeImported,
			resolved:   true,
		}
		if sym, found := st.ex.idx.LookupPath(binding.File, hint); found {
			t.id = sym.ID
			t.ref = &relation.TargetRef{Kind: relation.RefEntity}
			t.bucket = scoring.BucketConcrete
			t.exported = sym.IsExported
		} else {
			t.id = "file:" + binding.File + ":" + hint
			t.ref = &relation.TargetRef{Kind: relation.RefFileSymbol, File: binding.File, Symbol: hint}
			t.bucket = scoring.BucketFilePlaceholder
		}
		return t
	}

	return nil
}

// typeDeclarationFile finds where a type name is declared: this file
// first, then a unique global match.
func (st *fileState) typeDeclarationFile(typeName string) (string, bool) {
	if typeName == "" || builtinTypes[typeName] {
		return "", false
	}
	if _, ok := st.local[typeName]; ok {
		return st.path, true
	}
	if sym, ok := st.ex.idx.Unique(typeName); ok {
		return sym.File, true
	}
	return "", false
}

// emitMutatorWrite records a WRITES edge on the receiver of a mutating
// method call.
func (st *fileState) emitMutatorWrite(sn *symbolNode, receiver, accessPath string, call *sitter.Node) {
	loc := st.locationOf(call)
	t := st.resolveName(receiver)
	if t == nil {
		t = &target{
			id:         "external:" + receiver,
			ref:        &relation.TargetRef{Kind: relation.RefExternal, Symbol: receiver},
			resolution: relation.ResolutionHeuristic,
			scope:      relation.ScopeUnknown,
			bucket:     scoring.BucketExternal,
		}
	}
	conf := st.score(t.features(receiver))
	rel := st.newEdge(sn.sym.ID, relation.Writes, t, loc)
	rel.Kind = "mutation"
	rel.AccessPath = accessPath
	rel.Confidence = conf
	rel.Evidence = st.evidence(evidenceSource(t), conf, loc, "mutating method call")
	rel.Metadata = map[string]any{
		"dataFlowId": relation.DataFlowID(st.path, sn.sym.Path, receiver),
	}
	st.add(rel)
}

// calleeName extracts the rightmost segment of the callee.
func calleeName(fn *sitter.Node, content []byte) string {
	switch fn.Type() {
	case "identifier":
		return fn.Content(content)
	case "member_expression":
		return fieldText(fn, "property", content)
	}
	return ""
}

// baseIdentifier walks to the leftmost identifier of a member chain.
func baseIdentifier(fn *sitter.Node, content []byte) string {
	node := fn
	for node != nil && node.Type() == "member_expression" {
		node = node.ChildByFieldName("object")
	}
	if node != nil && node.Type() == "identifier" {
		return node.Content(content)
	}
	return ""
}

// markCallee marks callee identifiers so the reference pass skips them.
func (st *fileState) markCallee(fn *sitter.Node) {
	eachNode(fn, func(n *sitter.Node) bool {
		if n.Type() == "identifier" || n.Type() == "property_identifier" {
			st.handled[n.StartByte()] = true
		}
		return true
	})
}
