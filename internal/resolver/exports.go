package resolver

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"codegraph/internal/lang"
)

// scannedExports is the syntactic export surface of one module before
// re-export chains are followed.
type scannedExports struct {
	local     map[string]string // exported name -> declared name in this file
	reexports []reexport
}

type reexport struct {
	spec  string
	star  bool
	alias string            // "export * as ns from" namespace alias
	named map[string]string // exported name -> name in source module
}

// buildExportMap resolves a module's full export surface, following
// re-exports up to maxReexportDepth with a cycle guard keyed by path.
func (m *Modules) buildExportMap(fileRel string, depth int, seen map[string]bool) (map[string]ExportEntry, error) {
	if depth > maxReexportDepth || seen[fileRel] {
		return map[string]ExportEntry{}, nil
	}
	seen[fileRel] = true
	defer delete(seen, fileRel)

	scanned, err := m.scanModule(fileRel)
	if err != nil {
		return nil, err
	}

	out := make(map[string]ExportEntry, len(scanned.local))
	for exported, declared := range scanned.local {
		out[exported] = ExportEntry{File: fileRel, Name: declared, Depth: depth}
	}

	for _, re := range scanned.reexports {
		target, ok := m.ResolveSpecifier(re.spec, fileRel)
		if !ok {
			continue
		}
		targetMap, err := m.buildExportMap(target, depth+1, seen)
		if err != nil {
			continue
		}
		switch {
		case re.star && re.alias != "":
			// export * as ns: the namespace itself is the export.
			if _, taken := out[re.alias]; !taken {
				out[re.alias] = ExportEntry{File: target, Name: "*", Depth: depth + 1}
			}
		case re.star:
			for name, entry := range targetMap {
				if name == "default" {
					continue
				}
				if _, taken := out[name]; !taken {
					out[name] = entry
				}
			}
		default:
			for exported, sourceName := range re.named {
				if entry, found := targetMap[sourceName]; found {
					out[exported] = entry
				} else {
					out[exported] = ExportEntry{File: target, Name: sourceName, Depth: depth + 1}
				}
			}
		}
	}

	return out, nil
}

// scanModule parses a file and collects its top-level export statements,
// including CommonJS module.exports assignments.
func (m *Modules) scanModule(fileRel string) (*scannedExports, error) {
	content, err := m.src.ReadFile(fileRel)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fileRel, err)
	}
	tree, _, err := lang.Parse(context.Background(), fileRel, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	scanned := &scannedExports{local: make(map[string]string)}
	root := tree.RootNode()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		switch node.Type() {
		case "export_statement":
			m.scanExportStatement(node, content, scanned)
		case "expression_statement":
			m.scanCommonJSExport(node, content, scanned)
		}
	}
	return scanned, nil
}

func (m *Modules) scanExportStatement(node *sitter.Node, content []byte, scanned *scannedExports) {
	source := node.ChildByFieldName("source")

	if source != nil {
		re := reexport{spec: stringLiteral(source, content), named: map[string]string{}}
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			switch child.Type() {
			case "*":
				re.star = true
			case "namespace_export":
				re.star = true
				for j := 0; j < int(child.NamedChildCount()); j++ {
					if sub := child.NamedChild(j); sub.Type() == "identifier" || sub.Type() == "string" {
						re.alias = strings.Trim(sub.Content(content), `'"`)
					}
				}
			case "export_clause":
				for j := 0; j < int(child.NamedChildCount()); j++ {
					spec := child.NamedChild(j)
					if spec.Type() != "export_specifier" {
						continue
					}
					name := fieldContent(spec, "name", content)
					alias := fieldContent(spec, "alias", content)
					if alias == "" {
						alias = name
					}
					re.named[alias] = name
				}
			}
		}
		scanned.reexports = append(scanned.reexports, re)
		return
	}

	isDefault := false
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == "default" {
			isDefault = true
		}
	}

	if decl := node.ChildByFieldName("declaration"); decl != nil {
		for _, name := range declaredNames(decl, content) {
			if isDefault {
				scanned.local["default"] = name
			} else {
				scanned.local[name] = name
			}
		}
		if isDefault && len(declaredNames(decl, content)) == 0 {
			scanned.local["default"] = "default"
		}
		return
	}

	if value := node.ChildByFieldName("value"); value != nil && isDefault {
		name := "default"
		if value.Type() == "identifier" {
			name = value.Content(content)
		}
		scanned.local["default"] = name
		return
	}

	// export { a, b as c } without source: names declared in this file.
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "export_clause" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			spec := child.NamedChild(j)
			if spec.Type() != "export_specifier" {
				continue
			}
			name := fieldContent(spec, "name", content)
			alias := fieldContent(spec, "alias", content)
			if alias == "" {
				alias = name
			}
			scanned.local[alias] = name
		}
	}
}

// scanCommonJSExport handles top-level `module.exports = X` and
// `exports.foo = X` assignments.
func (m *Modules) scanCommonJSExport(node *sitter.Node, content []byte, scanned *scannedExports) {
	expr := node.NamedChild(0)
	if expr == nil || expr.Type() != "assignment_expression" {
		return
	}
	left := expr.ChildByFieldName("left")
	right := expr.ChildByFieldName("right")
	if left == nil || left.Type() != "member_expression" {
		return
	}

	object := fieldContent(left, "object", content)
	property := fieldContent(left, "property", content)

	switch {
	case object == "module" && property == "exports":
		name := "default"
		if right != nil && right.Type() == "identifier" {
			name = right.Content(content)
		}
		scanned.local["default"] = name
	case object == "exports" && property != "":
		name := property
		if right != nil && right.Type() == "identifier" {
			name = right.Content(content)
		}
		scanned.local[property] = name
	case strings.HasPrefix(object, "module.exports"):
		// module.exports.foo = X
		if property != "" {
			scanned.local[property] = property
		}
	}
}

// declaredNames extracts the names bound by an exported declaration node.
func declaredNames(decl *sitter.Node, content []byte) []string {
	switch decl.Type() {
	case "function_declaration", "generator_function_declaration",
		"class_declaration", "abstract_class_declaration",
		"interface_declaration", "type_alias_declaration", "enum_declaration":
		if name := decl.ChildByFieldName("name"); name != nil {
			return []string{name.Content(content)}
		}
	case "lexical_declaration", "variable_declaration":
		var names []string
		for i := 0; i < int(decl.NamedChildCount()); i++ {
			declarator := decl.NamedChild(i)
			if declarator.Type() != "variable_declarator" {
				continue
			}
			if name := declarator.ChildByFieldName("name"); name != nil && name.Type() == "identifier" {
				names = append(names, name.Content(content))
			}
		}
		return names
	}
	return nil
}

func fieldContent(node *sitter.Node, field string, content []byte) string {
	child := node.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return child.Content(content)
}

// stringLiteral unquotes a string node.
func stringLiteral(node *sitter.Node, content []byte) string {
	return strings.Trim(node.Content(content), "'\"`")
}
