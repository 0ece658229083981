package extractor

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"codegraph/internal/relation"
	"codegraph/internal/scoring"
)

// ImportBinding is one local name introduced by an import or require.
type ImportBinding struct {
	Local      string // name visible in this file
	Imported   string // exported name in the source module; "default" or "*"
	Spec       string // module specifier as written
	File       string // resolved project-relative path, "" when external
	Namespace  bool
	SideEffect bool
	Line       int
	Column     int
}

// ImportMap indexes a file's import bindings by local name.
type ImportMap struct {
	byLocal map[string]*ImportBinding
	order   []*ImportBinding
}

func (m *ImportMap) Lookup(local string) (*ImportBinding, bool) {
	b, ok := m.byLocal[local]
	return b, ok
}

// Specifiers lists the distinct module specifiers, in source order.
func (m *ImportMap) Specifiers() []string {
	var out []string
	seen := map[string]bool{}
	for _, b := range m.order {
		if !seen[b.Spec] {
			seen[b.Spec] = true
			out = append(out, b.Spec)
		}
	}
	return out
}

// buildImportMap collects default, namespace, named, aliased, and
// CommonJS-destructure imports from the file's top level.
func buildImportMap(st *fileState) *ImportMap {
	m := &ImportMap{byLocal: make(map[string]*ImportBinding)}
	root := st.root
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		switch node.Type() {
		case "import_statement":
			collectImportStatement(st, node, m)
		case "lexical_declaration", "variable_declaration":
			collectRequire(st, node, m)
		}
	}
	return m
}

func (m *ImportMap) put(b *ImportBinding) {
	m.order = append(m.order, b)
	if b.Local != "" {
		m.byLocal[b.Local] = b
	}
}

func collectImportStatement(st *fileState, node *sitter.Node, m *ImportMap) {
	source := node.ChildByFieldName("source")
	if source == nil {
		return
	}
	spec := strings.Trim(source.Content(st.content), "'\"`")
	resolved, _ := st.ex.modules.ResolveSpecifier(spec, st.path)
	line := int(node.StartPoint().Row) + 1
	col := int(node.StartPoint().Column)

	sawClause := false
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "import_clause" {
			continue
		}
		sawClause = true
		for j := 0; j < int(child.NamedChildCount()); j++ {
			part := child.NamedChild(j)
			switch part.Type() {
			case "identifier":
				m.put(&ImportBinding{
					Local: part.Content(st.content), Imported: "default",
					Spec: spec, File: resolved, Line: line, Column: col,
				})
				st.handled[part.StartByte()] = true
			case "namespace_import":
				for k := 0; k < int(part.NamedChildCount()); k++ {
					if id := part.NamedChild(k); id.Type() == "identifier" {
						m.put(&ImportBinding{
							Local: id.Content(st.content), Imported: "*",
							Spec: spec, File: resolved, Namespace: true,
							Line: line, Column: col,
						})
						st.handled[id.StartByte()] = true
					}
				}
			case "named_imports":
				for k := 0; k < int(part.NamedChildCount()); k++ {
					imp := part.NamedChild(k)
					if imp.Type() != "import_specifier" {
						continue
					}
					name := fieldText(imp, "name", st.content)
					alias := fieldText(imp, "alias", st.content)
					if alias == "" {
						alias = name
					}
					m.put(&ImportBinding{
						Local: alias, Imported: name,
						Spec: spec, File: resolved, Line: line, Column: col,
					})
					st.handled[imp.StartByte()] = true
				}
			}
		}
	}

	if !sawClause {
		m.put(&ImportBinding{
			Spec: spec, File: resolved, SideEffect: true, Line: line, Column: col,
		})
	}
}

// collectRequire handles `const x = require('./y')` and
// `const {a, b: c} = require('./y')`.
func collectRequire(st *fileState, node *sitter.Node, m *ImportMap) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		declarator := node.NamedChild(i)
		if declarator.Type() != "variable_declarator" {
			continue
		}
		value := declarator.ChildByFieldName("value")
		spec, ok := requireSpec(value, st.content)
		if !ok {
			continue
		}
		resolved, _ := st.ex.modules.ResolveSpecifier(spec, st.path)
		line := int(declarator.StartPoint().Row) + 1
		col := int(declarator.StartPoint().Column)

		name := declarator.ChildByFieldName("name")
		if name == nil {
			continue
		}
		switch name.Type() {
		case "identifier":
			m.put(&ImportBinding{
				Local: name.Content(st.content), Imported: "default",
				Spec: spec, File: resolved, Namespace: true, Line: line, Column: col,
			})
			st.handled[name.StartByte()] = true
		case "object_pattern":
			for j := 0; j < int(name.NamedChildCount()); j++ {
				prop := name.NamedChild(j)
				switch prop.Type() {
				case "shorthand_property_identifier_pattern":
					local := prop.Content(st.content)
					m.put(&ImportBinding{
						Local: local, Imported: local,
						Spec: spec, File: resolved, Line: line, Column: col,
					})
					st.handled[prop.StartByte()] = true
				case "pair_pattern":
					key := fieldText(prop, "key", st.content)
					val := prop.ChildByFieldName("value")
					if val != nil && val.Type() == "identifier" {
						m.put(&ImportBinding{
							Local: val.Content(st.content), Imported: key,
							Spec: spec, File: resolved, Line: line, Column: col,
						})
						st.handled[val.StartByte()] = true
					}
				}
			}
		}
	}
}

func requireSpec(value *sitter.Node, content []byte) (string, bool) {
	if value == nil || value.Type() != "call_expression" {
		return "", false
	}
	fn := value.ChildByFieldName("function")
	if fn == nil || fn.Content(content) != "require" {
		return "", false
	}
	args := value.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return "", false
	}
	arg := args.NamedChild(0)
	if arg.Type() != "string" {
		return "", false
	}
	return strings.Trim(arg.Content(content), "'\"`"), true
}

// extractImports emits one IMPORTS edge per binding, resolved through the
// export map; unresolved specifiers degrade to import: placeholders.
func (st *fileState) extractImports() {
	for _, b := range st.imports.order {
		loc := relation.Location{Path: st.path, Line: b.Line, Column: b.Column}
		rel := &relation.Relationship{
			FromEntityID: st.fileID,
			Type:         relation.Imports,
			Kind:         "import",
			Location:     loc,
			AccessPath:   b.Spec,
		}

		switch {
		case b.SideEffect && b.File != "":
			rel.ToEntityID = "file:" + b.File
			rel.ToRef = &relation.TargetRef{Kind: relation.RefEntity}
			rel.Resolution = relation.ResolutionViaImport
			rel.Scope = relation.ScopeImported
			rel.Resolved = true
			rel.Confidence = st.score(scoring.Features{Bucket: scoring.BucketConcrete})
		case b.Namespace && b.File != "":
			rel.ToEntityID = "file:" + b.File
			rel.ToRef = &relation.TargetRef{Kind: relation.RefEntity}
			rel.Resolution = relation.ResolutionViaImport
			rel.Scope = relation.ScopeImported
			rel.Resolved = true
			rel.Confidence = st.score(scoring.Features{Bucket: scoring.BucketConcrete, NameLength: len(b.Local)})
		case b.File != "":
			member := st.ex.modules.ResolveImportedMember(b.Spec, b.Imported, st.path)
			if member != nil {
				rel.ToEntityID = "file:" + member.File + ":" + member.Name
				rel.ToRef = &relation.TargetRef{Kind: relation.RefFileSymbol, File: member.File, Symbol: member.Name}
				rel.ImportDepth = member.Depth
			} else {
				rel.ToEntityID = "file:" + b.File + ":" + b.Imported
				rel.ToRef = &relation.TargetRef{Kind: relation.RefFileSymbol, File: b.File, Symbol: b.Imported}
			}
			rel.Resolution = relation.ResolutionViaImport
			rel.Scope = relation.ScopeImported
			rel.Resolved = true
			rel.Confidence = st.score(scoring.Features{
				Bucket:      scoring.BucketFilePlaceholder,
				NameLength:  len(b.Imported),
				ImportDepth: rel.ImportDepth,
			})
		default:
			name := b.Imported
			if name == "" {
				name = b.Spec
			}
			rel.ToEntityID = "import:" + b.Spec + ":" + name
			rel.ToRef = &relation.TargetRef{Kind: relation.RefImport, File: b.Spec, Symbol: name}
			rel.Resolution = relation.ResolutionHeuristic
			rel.Scope = relation.ScopeExternal
			rel.Confidence = st.score(scoring.Features{Bucket: scoring.BucketExternal, NameLength: len(name)})
		}

		rel.Evidence = []relation.Evidence{{
			Source: "ast", Confidence: rel.Confidence, Location: loc, Note: "import declaration",
		}}
		st.add(rel)
	}
}

func fieldText(node *sitter.Node, field string, content []byte) string {
	child := node.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return child.Content(content)
}
