package extractor

import (
	sitter "github.com/smacker/go-tree-sitter"

	"codegraph/internal/relation"
)

// extractReferences is the file-wide residual pass: every identifier a
// dedicated sub-extractor did not already claim becomes a REFERENCES
// edge from its enclosing symbol. Property names and declaration sites
// are skipped; unresolvable names are dropped rather than guessed.
func (st *fileState) extractReferences() {
	eachNode(st.root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "identifier", "type_identifier":
		default:
			return true
		}
		if st.handled[n.StartByte()] || isPropertyPosition(n) || isDeclarationName(n) {
			return true
		}
		name := n.Content(st.content)
		if len(name) < st.ex.cfg.MinNameLength || callStoplist[name] {
			return true
		}

		from := st.enclosingSymbolID(n)
		if sym, ok := st.local[name]; ok && sym.ID == from {
			return true // self-reference inside the declaring symbol
		}

		t := st.resolveName(name)
		if t == nil {
			return true
		}
		st.handled[n.StartByte()] = true

		loc := st.locationOf(n)
		conf := st.score(t.features(name))

		kind := "identifier"
		if n.Type() == "type_identifier" {
			kind = "type-usage"
		}
		rel := st.newEdge(from, relation.References, t, loc)
		rel.Kind = kind
		rel.AccessPath = name
		rel.Confidence = conf
		rel.Evidence = st.evidence(evidenceSource(t), conf, loc, "identifier reference")
		st.add(rel)
		return true
	})
}

// enclosingSymbolID finds the narrowest symbol whose syntax range covers
// a node, falling back to the file entity for top-level code.
func (st *fileState) enclosingSymbolID(n *sitter.Node) string {
	start := n.StartByte()
	bestID := st.fileID
	bestSpan := uint32(0)
	for i := range st.symbols {
		node := st.symbols[i].node
		if node.StartByte() <= start && start < node.EndByte() {
			span := node.EndByte() - node.StartByte()
			if bestID == st.fileID || span < bestSpan {
				bestID = st.symbols[i].sym.ID
				bestSpan = span
			}
		}
	}
	return bestID
}

// isDeclarationName reports whether an identifier is the name slot of a
// declaration rather than a use.
func isDeclarationName(n *sitter.Node) bool {
	parent := n.Parent()
	if parent == nil {
		return false
	}
	switch parent.Type() {
	case "function_declaration", "class_declaration", "interface_declaration",
		"type_alias_declaration", "method_definition", "variable_declarator",
		"enum_declaration", "abstract_class_declaration",
		"required_parameter", "optional_parameter", "formal_parameters":
		name := parent.ChildByFieldName("name")
		return name != nil && name.StartByte() == n.StartByte()
	}
	return false
}
