package extractor

import (
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"

	"codegraph/internal/relation"
	"codegraph/internal/scoring"
)

// Dependency strength by where the referenced type lives.
func scopeWeight(s relation.Scope) float64 {
	switch s {
	case relation.ScopeLocal:
		return 0.9
	case relation.ScopeImported:
		return 0.6
	default:
		return 0.4
	}
}

// extractDecorators emits REFERENCES edges for decorators applied to a
// class or its members.
func (st *fileState) extractDecorators(sn *symbolNode) {
	eachNode(sn.node, func(n *sitter.Node) bool {
		if n.Type() != "decorator" {
			return true
		}
		name := decoratorName(n, st.content)
		if name == "" || len(name) < st.ex.cfg.MinNameLength {
			return true
		}
		t := st.resolveName(name)
		if t == nil {
			t = &target{
				id:         "external:" + name,
				ref:        &relation.TargetRef{Kind: relation.RefExternal, Symbol: name},
				resolution: relation.ResolutionHeuristic,
				scope:      relation.ScopeExternal,
				bucket:     scoring.BucketExternal,
			}
		}
		loc := st.locationOf(n)
		conf := st.score(t.features(name))

		rel := st.newEdge(sn.sym.ID, relation.References, t, loc)
		rel.Kind = "decorator"
		rel.AccessPath = "@" + name
		rel.Confidence = conf
		rel.Evidence = st.evidence(evidenceSource(t), conf, loc, "decorator")
		st.add(rel)
		return true
	})
}

// extractSignatureTypes emits RETURNS_TYPE and PARAM_TYPE edges from a
// function's annotations, each mirrored by a DEPENDS_ON edge whose
// confidence is scaled by the target's scope. When the return type is
// unannotated, a budgeted pass infers it from `return new X()`.
func (st *fileState) extractSignatureTypes(sn *symbolNode) {
	loc := st.locationOf(sn.node)

	retType := sn.sym.ReturnType
	var inferred *target
	if retType == "" && sn.body != nil {
		retType, inferred = st.inferReturnType(sn)
	}
	for _, name := range typeIdentifiers(retType) {
		t := inferred
		if t == nil {
			t = st.resolveTypeTarget(name, "typeAlias")
		}
		st.emitTypeUse(sn, relation.ReturnsType, name, t, loc, "return type annotation")
	}

	for _, p := range sn.sym.Parameters {
		for _, name := range typeIdentifiers(p.Type) {
			t := st.resolveTypeTarget(name, "typeAlias")
			st.emitTypeUse(sn, relation.ParamType, name, t, loc, "parameter type annotation")
		}
	}
}

func (st *fileState) emitTypeUse(sn *symbolNode, typ relation.Type, name string, t *target, loc relation.Location, note string) {
	conf := st.score(t.features(name))

	rel := st.newEdge(sn.sym.ID, typ, t, loc)
	rel.Kind = "type-usage"
	rel.AccessPath = name
	rel.Confidence = conf
	rel.Evidence = st.evidence(evidenceSource(t), conf, loc, note)
	st.add(rel)

	dep := st.newEdge(sn.sym.ID, relation.DependsOn, t, loc)
	dep.Kind = "type-usage"
	dep.Confidence = conf * scopeWeight(t.scope)
	dep.Evidence = st.evidence(evidenceSource(t), dep.Confidence, loc, note)
	st.add(dep)
}

// inferReturnType looks for `return new X(...)` in the body. The lookup
// counts against the semantic budget since it substitutes for annotation
// information the source does not carry.
func (st *fileState) inferReturnType(sn *symbolNode) (string, *target) {
	var name string
	eachNode(sn.body, func(n *sitter.Node) bool {
		if name != "" || n.Type() != "return_statement" {
			return name == ""
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() == "new_expression" {
				name = fieldText(child, "constructor", st.content)
				break
			}
		}
		return name == ""
	})
	if name == "" || !st.shouldUseTypeChecker(name, false, false) {
		return "", nil
	}
	t := st.resolveTypeTarget(name, "class")
	t.usedChecker = true
	if t.resolution != relation.ResolutionHeuristic {
		t.resolution = relation.ResolutionChecker
	}
	return name, t
}

// extractThrows emits THROWS edges for `throw new X()` and `throw x`.
func (st *fileState) extractThrows(sn *symbolNode) {
	eachNode(sn.body, func(n *sitter.Node) bool {
		if n.Type() != "throw_statement" {
			return true
		}
		var name string
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			switch child.Type() {
			case "new_expression":
				name = fieldText(child, "constructor", st.content)
			case "identifier":
				name = child.Content(st.content)
			}
		}
		if name == "" || builtinTypes[name] {
			return true
		}
		t := st.resolveTypeTarget(name, "class")
		loc := st.locationOf(n)
		conf := st.score(t.features(name))

		rel := st.newEdge(sn.sym.ID, relation.Throws, t, loc)
		rel.Kind = "error-flow"
		rel.AccessPath = name
		rel.Confidence = conf
		rel.Evidence = st.evidence(evidenceSource(t), conf, loc, "throw statement")
		st.add(rel)
		return true
	})
}

func decoratorName(dec *sitter.Node, content []byte) string {
	for i := 0; i < int(dec.NamedChildCount()); i++ {
		child := dec.NamedChild(i)
		switch child.Type() {
		case "identifier":
			return child.Content(content)
		case "call_expression":
			if fn := child.ChildByFieldName("function"); fn != nil {
				return baseIdentifier(fn, content)
			}
		}
	}
	return ""
}

// typeIdentifiers splits a type annotation into its named constituents,
// dropping builtins and primitive keywords. "Promise<User[]>" yields
// ["Promise", "User"].
func typeIdentifiers(annotation string) []string {
	if annotation == "" {
		return nil
	}
	var names []string
	seen := map[string]bool{}
	for _, tok := range strings.FieldsFunc(annotation, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '$'
	}) {
		if tok == "" || seen[tok] || builtinTypes[tok] {
			continue
		}
		if !unicode.IsLetter(rune(tok[0])) && tok[0] != '_' && tok[0] != '$' {
			continue
		}
		seen[tok] = true
		names = append(names, tok)
	}
	return names
}
