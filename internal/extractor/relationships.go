package extractor

import (
	sitter "github.com/smacker/go-tree-sitter"

	"codegraph/internal/entity"
	"codegraph/internal/relation"
)

// extractSymbolRelationships runs the sub-extractor family for one symbol.
// Each sub-extractor is best-effort: a resolution miss falls through to
// the next strategy or drops the candidate, never aborting the parse.
func (st *fileState) extractSymbolRelationships(sn *symbolNode) {
	switch sn.sym.Kind {
	case entity.SymbolClass:
		st.extractInheritance(sn)
		st.extractDecorators(sn)
	case entity.SymbolInterface:
		st.extractInterfaceInheritance(sn)
	case entity.SymbolFunction:
		st.extractDecorators(sn)
		st.extractSignatureTypes(sn)
		if sn.body != nil {
			st.extractCalls(sn)
			st.extractDataFlow(sn)
			st.extractThrows(sn)
		}
		st.extractOverride(sn)
	}
}

// eachNode walks a subtree depth-first, invoking fn on every named node.
// fn returns false to stop descending into a node's children.
func eachNode(root *sitter.Node, fn func(n *sitter.Node) bool) {
	if root == nil {
		return
	}
	if !fn(root) {
		return
	}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		eachNode(root.NamedChild(i), fn)
	}
}

// newEdge starts a relationship from a symbol with a resolved target.
func (st *fileState) newEdge(from string, typ relation.Type, t *target, loc relation.Location) *relation.Relationship {
	return &relation.Relationship{
		FromEntityID: from,
		ToEntityID:   t.id,
		Type:         typ,
		Resolution:   t.resolution,
		Scope:        t.scope,
		Resolved:     t.resolved,
		ImportDepth:  t.importDepth,
		Ambiguous:    t.ambiguous,
		Location:     loc,
		ToRef:        t.ref,
	}
}

func (st *fileState) locationOf(node *sitter.Node) relation.Location {
	return relation.Location{Path: st.path, Line: line(node), Column: column(node)}
}

func (st *fileState) evidence(source string, conf float64, loc relation.Location, note string) []relation.Evidence {
	return []relation.Evidence{{Source: source, Confidence: conf, Location: loc, Note: note}}
}

func evidenceSource(t *target) string {
	if t.usedChecker {
		return "type-checker"
	}
	if t.resolution == relation.ResolutionHeuristic {
		return "heuristic"
	}
	return "ast"
}
