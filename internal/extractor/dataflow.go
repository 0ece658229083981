package extractor

import (
	sitter "github.com/smacker/go-tree-sitter"

	"codegraph/internal/relation"
	"codegraph/internal/scoring"
)

// extractDataFlow emits WRITES edges for assignment targets and READS
// edges for the identifiers feeding them. Repeated accesses to the same
// variable share a dataFlowId so consumers can group them.
func (st *fileState) extractDataFlow(sn *symbolNode) {
	eachNode(sn.body, func(n *sitter.Node) bool {
		switch n.Type() {
		case "assignment_expression", "augmented_assignment_expression":
			left := n.ChildByFieldName("left")
			right := n.ChildByFieldName("right")
			for _, name := range assignedNames(left, st.content) {
				st.emitAccess(sn, relation.Writes, name, n)
			}
			st.markPattern(left)
			if right != nil {
				st.emitReads(sn, right)
			}
			return false
		case "update_expression":
			if arg := n.ChildByFieldName("argument"); arg != nil {
				if name := baseIdentifier(arg, st.content); name != "" {
					st.emitAccess(sn, relation.Writes, name, n)
					st.markPattern(arg)
				}
			}
			return false
		}
		return true
	})
}

// emitReads walks an expression and records a READS edge per identifier,
// skipping property names and callees that the call pass already owns.
func (st *fileState) emitReads(sn *symbolNode, expr *sitter.Node) {
	eachNode(expr, func(n *sitter.Node) bool {
		switch n.Type() {
		case "identifier":
			if isPropertyPosition(n) || st.handled[n.StartByte()] {
				return true
			}
			st.handled[n.StartByte()] = true
			st.emitAccess(sn, relation.Reads, n.Content(st.content), n)
		case "call_expression":
			// The call extractor covers the callee; arguments still read.
			if fn := n.ChildByFieldName("function"); fn != nil {
				st.markPattern(fn)
			}
		}
		return true
	})
}

func (st *fileState) emitAccess(sn *symbolNode, typ relation.Type, name string, node *sitter.Node) {
	if name == "" || len(name) < st.ex.cfg.MinNameLength || callStoplist[name] {
		return
	}
	t := st.resolveName(name)
	if t == nil {
		t = &target{
			id:         "external:" + name,
			ref:        &relation.TargetRef{Kind: relation.RefExternal, Symbol: name},
			resolution: relation.ResolutionHeuristic,
			scope:      relation.ScopeUnknown,
			bucket:     scoring.BucketExternal,
		}
	}
	loc := st.locationOf(node)
	conf := st.score(t.features(name))

	rel := st.newEdge(sn.sym.ID, typ, t, loc)
	rel.Kind = "data-flow"
	rel.AccessPath = name
	rel.Confidence = conf
	rel.Evidence = st.evidence(evidenceSource(t), conf, loc, "data flow")
	rel.Metadata = map[string]any{
		"dataFlowId": relation.DataFlowID(st.path, sn.sym.Path, name),
	}
	st.add(rel)
}

// assignedNames collects the variable names bound by an assignment
// target: plain identifiers, member-access bases, and the elements of
// destructuring patterns.
func assignedNames(left *sitter.Node, content []byte) []string {
	if left == nil {
		return nil
	}
	switch left.Type() {
	case "identifier":
		return []string{left.Content(content)}
	case "member_expression", "subscript_expression":
		if base := baseIdentifier(left, content); base != "" {
			return []string{base}
		}
		return nil
	case "object_pattern", "array_pattern":
		var names []string
		eachNode(left, func(n *sitter.Node) bool {
			switch n.Type() {
			case "shorthand_property_identifier_pattern", "identifier":
				names = append(names, n.Content(content))
			case "pair_pattern":
				if v := n.ChildByFieldName("value"); v != nil && v.Type() == "identifier" {
					names = append(names, v.Content(content))
					return false
				}
			}
			return true
		})
		return names
	}
	return nil
}

// markPattern flags every identifier under a node as handled so the
// file-wide reference pass does not re-emit them.
func (st *fileState) markPattern(node *sitter.Node) {
	if node == nil {
		return
	}
	eachNode(node, func(n *sitter.Node) bool {
		if n.Type() == "identifier" || n.Type() == "property_identifier" {
			st.handled[n.StartByte()] = true
		}
		return true
	})
}

// isPropertyPosition reports whether an identifier is the property side
// of a member access, which names a field rather than a variable.
func isPropertyPosition(n *sitter.Node) bool {
	parent := n.Parent()
	if parent == nil {
		return false
	}
	if parent.Type() == "member_expression" {
		prop := parent.ChildByFieldName("property")
		return prop != nil && prop.StartByte() == n.StartByte()
	}
	return false
}
