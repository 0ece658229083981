package extractor

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"codegraph/internal/entity"
	"codegraph/internal/relation"
)

// extractSymbols enumerates top-level and nested declarations depth-first,
// building Symbol entities and the structural DEFINES/CONTAINS/EXPORTS
// edges. A malformed declaration is skipped with a warning; it never
// aborts the file.
func (st *fileState) extractSymbols() {
	st.varTypes = make(map[string]string)
	st.walkStatements(st.root, "", false, false)
	st.markClauseExports()
}

// walkStatements scans a statement container for declarations.
func (st *fileState) walkStatements(container *sitter.Node, parent string, exported, isDefault bool) {
	for i := 0; i < int(container.NamedChildCount()); i++ {
		node := container.NamedChild(i)
		switch node.Type() {
		case "export_statement":
			def := hasChildToken(node, "default")
			if decl := node.ChildByFieldName("declaration"); decl != nil {
				st.extractDeclaration(decl, parent, true, def)
			}
		case "statement_block", "internal_module", "module":
			st.walkStatements(node, parent, false, false)
		default:
			st.extractDeclaration(node, parent, exported, isDefault)
		}
	}
}

// extractDeclaration dispatches on the declaration's node kind.
func (st *fileState) extractDeclaration(node *sitter.Node, parent string, exported, isDefault bool) {
	switch node.Type() {
	case "function_declaration", "generator_function_declaration", "function_signature":
		st.extractFunction(node, parent, exported, isDefault)
	case "class_declaration", "abstract_class_declaration":
		st.extractClass(node, exported, isDefault)
	case "interface_declaration":
		st.extractInterface(node, exported)
	case "type_alias_declaration", "enum_declaration":
		st.extractTypeAlias(node, exported)
	case "lexical_declaration", "variable_declaration":
		st.extractVariables(node, parent, exported)
	}
}

func (st *fileState) extractFunction(node *sitter.Node, parent string, exported, isDefault bool) {
	name := fieldText(node, "name", st.content)
	if name == "" {
		if !isDefault {
			st.warnf(line(node), "skipping unnamed function declaration")
			return
		}
		name = "default"
	}

	body := node.ChildByFieldName("body")
	sym := st.newSymbol(name, entity.SymbolFunction, node)
	sym.Signature = st.signatureText(node, body)
	sym.Parameters = st.parseParameters(node)
	sym.ReturnType = st.annotationText(node.ChildByFieldName("return_type"))
	sym.IsAsync = hasChildToken(node, "async")
	sym.IsGenerator = node.Type() == "generator_function_declaration" || hasChildToken(node, "*")
	sym.IsExported = exported
	sym.IsDefault = isDefault
	sym.Parent = parent
	if body != nil {
		sym.Complexity = complexity(body)
	}

	st.register(sym, node, body, parent, exported)

	// Nested declarations inside the function body.
	if body != nil {
		st.walkStatements(body, sym.Path, false, false)
	}
}

func (st *fileState) extractClass(node *sitter.Node, exported, isDefault bool) {
	name := fieldText(node, "name", st.content)
	if name == "" {
		st.warnf(line(node), "skipping unnamed class declaration")
		return
	}

	sym := st.newSymbol(name, entity.SymbolClass, node)
	sym.IsAbstract = node.Type() == "abstract_class_declaration"
	sym.IsExported = exported
	sym.IsDefault = isDefault
	sym.Extends, sym.Implements = heritageNames(node, st.content)
	sym.Signature = classSignature(name, sym)

	st.register(sym, node, nil, "", exported)

	if body := classBody(node); body != nil {
		st.extractClassMembers(body, sym)
	}
}

func (st *fileState) extractClassMembers(body *sitter.Node, class entity.Symbol) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		switch member.Type() {
		case "method_definition", "abstract_method_signature":
			name := fieldText(member, "name", st.content)
			if name == "" {
				st.warnf(line(member), "skipping unnamed member of class %s", class.Name)
				continue
			}
			mbody := member.ChildByFieldName("body")
			sym := st.newSymbol(name, entity.SymbolFunction, member)
			sym.Signature = class.Name + "." + st.signatureText(member, mbody)
			sym.Parameters = st.parseParameters(member)
			sym.ReturnType = st.annotationText(member.ChildByFieldName("return_type"))
			sym.IsAsync = hasChildToken(member, "async")
			sym.IsGenerator = hasChildToken(member, "*")
			sym.IsAbstract = member.Type() == "abstract_method_signature"
			sym.Visibility = memberVisibility(member, name, st.content)
			sym.Parent = class.Path
			sym.IsExported = class.IsExported
			if mbody != nil {
				sym.Complexity = complexity(mbody)
			}
			st.registerMember(sym, member, mbody, class)

		case "public_field_definition", "field_definition":
			name := fieldText(member, "name", st.content)
			if name == "" {
				continue
			}
			sym := st.newSymbol(name, entity.SymbolProperty, member)
			sym.Signature = class.Name + "." + firstLine(member.Content(st.content))
			sym.Visibility = memberVisibility(member, name, st.content)
			sym.Parent = class.Path
			sym.IsExported = class.IsExported
			if t := st.annotationText(member.ChildByFieldName("type")); t != "" {
				sym.ReturnType = t
			}
			st.registerMember(sym, member, nil, class)
		}
	}
}

func (st *fileState) extractInterface(node *sitter.Node, exported bool) {
	name := fieldText(node, "name", st.content)
	if name == "" {
		st.warnf(line(node), "skipping unnamed interface declaration")
		return
	}
	sym := st.newSymbol(name, entity.SymbolInterface, node)
	sym.IsExported = exported
	sym.Extends = interfaceExtends(node, st.content)
	sym.Signature = firstLine(node.Content(st.content))
	st.register(sym, node, nil, "", exported)
}

func (st *fileState) extractTypeAlias(node *sitter.Node, exported bool) {
	name := fieldText(node, "name", st.content)
	if name == "" {
		st.warnf(line(node), "skipping unnamed type declaration")
		return
	}
	sym := st.newSymbol(name, entity.SymbolTypeAlias, node)
	sym.IsExported = exported
	sym.Signature = firstLine(node.Content(st.content))
	st.register(sym, node, nil, "", exported)
}

func (st *fileState) extractVariables(node *sitter.Node, parent string, exported bool) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		declarator := node.NamedChild(i)
		if declarator.Type() != "variable_declarator" {
			continue
		}
		nameNode := declarator.ChildByFieldName("name")
		if nameNode == nil || nameNode.Type() != "identifier" {
			continue
		}
		name := nameNode.Content(st.content)
		value := declarator.ChildByFieldName("value")

		// Requires were consumed by the import map.
		if _, isRequire := requireSpec(value, st.content); isRequire {
			continue
		}

		kind := entity.SymbolVariable
		var body *sitter.Node
		if value != nil && (value.Type() == "arrow_function" || value.Type() == "function" || value.Type() == "function_expression" || value.Type() == "generator_function") {
			kind = entity.SymbolFunction
			body = value.ChildByFieldName("body")
		}

		sym := st.newSymbol(name, kind, declarator)
		sym.Parent = parent
		sym.IsExported = exported
		if kind == entity.SymbolFunction {
			sym.Signature = st.signatureText(declarator, body)
			sym.Parameters = st.parseParameters(value)
			sym.ReturnType = st.annotationText(value.ChildByFieldName("return_type"))
			sym.IsAsync = hasChildToken(value, "async")
			sym.IsGenerator = value.Type() == "generator_function" || hasChildToken(value, "*")
			if body != nil {
				sym.Complexity = complexity(body)
			}
		} else {
			sym.Signature = firstLine(declarator.Content(st.content))
			if t := st.annotationText(declarator.ChildByFieldName("type")); t != "" {
				sym.ReturnType = t
				st.varTypes[name] = baseTypeName(t)
			} else if value != nil && value.Type() == "new_expression" {
				if ctor := value.ChildByFieldName("constructor"); ctor != nil {
					st.varTypes[name] = baseTypeName(ctor.Content(st.content))
				}
			}
		}

		st.register(sym, declarator, body, parent, exported)

		if body != nil {
			st.walkStatements(body, sym.Path, false, false)
		}
	}
}

// newSymbol fills the identity fields shared by every symbol kind.
func (st *fileState) newSymbol(name string, kind entity.SymbolKind, node *sitter.Node) entity.Symbol {
	doc := st.docComment(node)
	return entity.Symbol{
		Path:         entity.SymbolPath(st.path, name),
		File:         st.path,
		Name:         name,
		Kind:         kind,
		Docstring:    doc,
		IsDeprecated: strings.Contains(doc, "@deprecated"),
		Range: entity.Range{
			StartByte: int(node.StartByte()),
			EndByte:   int(node.EndByte()),
			StartLine: int(node.StartPoint().Row) + 1,
			EndLine:   int(node.EndPoint().Row) + 1,
		},
	}
}

// register finalizes a top-level (or nested) symbol: derive the ID from
// the signature, index it locally, and emit structural edges.
func (st *fileState) register(sym entity.Symbol, node, body *sitter.Node, parent string, exported bool) {
	sym.ID = entity.SymbolID(st.path, sym.Name, sym.Signature)
	st.local[sym.Name] = sym
	st.symbols = append(st.symbols, symbolNode{sym: sym, node: node, body: body})
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		st.handled[nameNode.StartByte()] = true
	}

	st.addStructural(st.fileID, sym.ID, relation.Defines)
	if exported || sym.IsExported {
		st.addStructural(st.fileID, sym.ID, relation.Exports)
	}
}

// registerMember finalizes a class member symbol under its owning class.
func (st *fileState) registerMember(sym entity.Symbol, node, body *sitter.Node, class entity.Symbol) {
	sym.ID = entity.SymbolID(st.path, sym.Name, sym.Signature)
	st.symbols = append(st.symbols, symbolNode{sym: sym, node: node, body: body})
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		st.handled[nameNode.StartByte()] = true
	}
	st.addStructural(class.ID, sym.ID, relation.Contains)
}

// markClauseExports handles `export { foo, bar as baz }` clauses that
// reference symbols declared elsewhere in the file.
func (st *fileState) markClauseExports() {
	for i := 0; i < int(st.root.NamedChildCount()); i++ {
		node := st.root.NamedChild(i)
		if node.Type() != "export_statement" || node.ChildByFieldName("source") != nil {
			continue
		}
		for j := 0; j < int(node.ChildCount()); j++ {
			clause := node.Child(j)
			if clause.Type() != "export_clause" {
				continue
			}
			for k := 0; k < int(clause.NamedChildCount()); k++ {
				spec := clause.NamedChild(k)
				if spec.Type() != "export_specifier" {
					continue
				}
				name := fieldText(spec, "name", st.content)
				if sym, ok := st.local[name]; ok {
					st.addStructural(st.fileID, sym.ID, relation.Exports)
					sym.IsExported = true
					st.local[name] = sym
					for i := range st.symbols {
						if st.symbols[i].sym.Path == sym.Path {
							st.symbols[i].sym.IsExported = true
						}
					}
				}
			}
		}
	}
}
