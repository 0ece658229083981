package lang

import (
	"context"
	"fmt"
	"path"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language names as recorded on File entities.
const (
	TypeScript = "typescript"
	TSX        = "tsx"
	JavaScript = "javascript"
)

// ForPath returns the tree-sitter grammar and language name for a file
// path. ok is false for files the engine does not parse.
func ForPath(p string) (*sitter.Language, string, bool) {
	switch strings.ToLower(path.Ext(p)) {
	case ".ts", ".mts", ".cts":
		return typescript.GetLanguage(), TypeScript, true
	case ".tsx":
		return tsx.GetLanguage(), TSX, true
	case ".js", ".mjs", ".cjs", ".jsx":
		return javascript.GetLanguage(), JavaScript, true
	default:
		return nil, "", false
	}
}

// Extensions lists the file extensions the engine parses, in module
// resolution probe order.
var Extensions = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"}

// Parse parses content with the grammar for path. Each call uses its own
// parser instance, so Parse is safe for concurrent use.
func Parse(ctx context.Context, p string, content []byte) (*sitter.Tree, string, error) {
	grammar, name, ok := ForPath(p)
	if !ok {
		return nil, "", fmt.Errorf("unsupported file type: %s", p)
	}
	parser := sitter.NewParser()
	parser.SetLanguage(grammar)
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, name, fmt.Errorf("parse failed for %s: %w", p, err)
	}
	return tree, name, nil
}
