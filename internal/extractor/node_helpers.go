package extractor

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"codegraph/internal/entity"
)

func line(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}

func column(node *sitter.Node) int {
	return int(node.StartPoint().Column)
}

// hasChildToken reports whether any direct child is the given keyword or
// punctuation token.
func hasChildToken(node *sitter.Node, token string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == token {
			return true
		}
	}
	return false
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// signatureText is the declaration text up to (and excluding) the body.
func (st *fileState) signatureText(node, body *sitter.Node) string {
	end := node.EndByte()
	if body != nil {
		end = body.StartByte()
	}
	text := string(st.content[node.StartByte():end])
	text = strings.TrimSuffix(strings.TrimSpace(text), "{")
	return strings.TrimSpace(text)
}

// annotationText strips the leading ":" from a type_annotation node.
func (st *fileState) annotationText(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(node.Content(st.content)), ":"))
}

// parseParameters reads a formal_parameters list from a function-like node.
func (st *fileState) parseParameters(node *sitter.Node) []entity.Param {
	if node == nil {
		return nil
	}
	params := node.ChildByFieldName("parameters")
	if params == nil {
		// Single-parameter arrow function: `x => ...`
		if p := node.ChildByFieldName("parameter"); p != nil {
			return []entity.Param{{Name: p.Content(st.content)}}
		}
		return nil
	}

	var out []entity.Param
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		switch p.Type() {
		case "required_parameter", "optional_parameter", "rest_parameter":
			param := entity.Param{}
			if pattern := p.ChildByFieldName("pattern"); pattern != nil {
				param.Name = firstLine(pattern.Content(st.content))
			}
			param.Type = st.annotationText(p.ChildByFieldName("type"))
			if param.Name != "" {
				out = append(out, param)
			}
		case "identifier":
			out = append(out, entity.Param{Name: p.Content(st.content)})
		}
	}
	return out
}

// heritageNames collects extends and implements targets from a class node.
func heritageNames(class *sitter.Node, content []byte) (extends, implements []string) {
	for i := 0; i < int(class.ChildCount()); i++ {
		child := class.Child(i)
		if child.Type() != "class_heritage" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			clause := child.NamedChild(j)
			names := typeNamesIn(clause, content)
			switch clause.Type() {
			case "extends_clause":
				extends = append(extends, names...)
			case "implements_clause":
				implements = append(implements, names...)
			}
		}
		// JavaScript grammar: class_heritage wraps the expression directly.
		if child.NamedChildCount() > 0 && child.NamedChild(0).Type() != "extends_clause" && child.NamedChild(0).Type() != "implements_clause" {
			extends = append(extends, typeNamesIn(child, content)...)
		}
	}
	return extends, implements
}

// typeNamesIn collects the base identifiers named by a heritage clause.
func typeNamesIn(clause *sitter.Node, content []byte) []string {
	var names []string
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		node := clause.NamedChild(i)
		switch node.Type() {
		case "identifier", "type_identifier":
			names = append(names, node.Content(content))
		case "member_expression", "nested_type_identifier":
			names = append(names, firstLine(node.Content(content)))
		case "generic_type":
			if name := node.ChildByFieldName("name"); name != nil {
				names = append(names, name.Content(content))
			}
		}
	}
	return names
}

// interfaceExtends reads the extends clause of an interface declaration.
func interfaceExtends(node *sitter.Node, content []byte) []string {
	var names []string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "extends_type_clause" || child.Type() == "extends_clause" {
			names = append(names, typeNamesIn(child, content)...)
		}
	}
	return names
}

func classBody(node *sitter.Node) *sitter.Node {
	if body := node.ChildByFieldName("body"); body != nil {
		return body
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child.Type() == "class_body" {
			return child
		}
	}
	return nil
}

func classSignature(name string, sym entity.Symbol) string {
	parts := []string{"class", name}
	if len(sym.Extends) > 0 {
		parts = append(parts, "extends", strings.Join(sym.Extends, ", "))
	}
	if len(sym.Implements) > 0 {
		parts = append(parts, "implements", strings.Join(sym.Implements, ", "))
	}
	return strings.Join(parts, " ")
}

func memberVisibility(member *sitter.Node, name string, content []byte) string {
	if strings.HasPrefix(name, "#") {
		return "private"
	}
	for i := 0; i < int(member.ChildCount()); i++ {
		if child := member.Child(i); child.Type() == "accessibility_modifier" {
			return child.Content(content)
		}
	}
	return "public"
}

// docComment finds the comment immediately preceding a declaration,
// looking through an enclosing export statement.
func (st *fileState) docComment(node *sitter.Node) string {
	target := node
	if parent := node.Parent(); parent != nil && parent.Type() == "export_statement" {
		target = parent
	}
	prev := target.PrevNamedSibling()
	if prev == nil || prev.Type() != "comment" {
		return ""
	}
	if int(target.StartPoint().Row)-int(prev.EndPoint().Row) > 1 {
		return ""
	}
	return cleanComment(prev.Content(st.content))
}

func cleanComment(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "/**")
	raw = strings.TrimPrefix(raw, "/*")
	raw = strings.TrimSuffix(raw, "*/")
	var lines []string
	for _, l := range strings.Split(raw, "\n") {
		l = strings.TrimSpace(l)
		l = strings.TrimPrefix(l, "*")
		l = strings.TrimPrefix(l, "//")
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n")
}

// complexity counts decision points in a body, starting at one.
func complexity(body *sitter.Node) int {
	count := 1
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "if_statement", "for_statement", "for_in_statement", "while_statement",
			"do_statement", "switch_case", "catch_clause", "ternary_expression",
			"conditional_type":
			count++
		case "binary_expression":
			for i := 0; i < int(n.ChildCount()); i++ {
				op := n.Child(i).Type()
				if op == "&&" || op == "||" || op == "??" {
					count++
				}
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(body)
	return count
}

// baseTypeName strips generics, arrays, and unions down to the leading
// named type.
func baseTypeName(t string) string {
	t = strings.TrimSpace(t)
	for _, sep := range []string{"<", "[", "|", "&"} {
		if i := strings.Index(t, sep); i >= 0 {
			t = t[:i]
		}
	}
	return strings.TrimSpace(t)
}

// builtinTypes are type names never worth an edge.
var builtinTypes = map[string]bool{
	"string": true, "number": true, "boolean": true, "void": true,
	"any": true, "unknown": true, "never": true, "object": true,
	"null": true, "undefined": true, "symbol": true, "bigint": true,
	"this": true, "true": true, "false": true,
	"Array": true, "Promise": true, "Map": true, "Set": true,
	"Record": true, "Partial": true, "Readonly": true, "Pick": true,
	"Omit": true, "Error": true, "Date": true, "RegExp": true,
	"Function": true, "Object": true, "String": true, "Number": true,
	"Boolean": true,
}
