package entity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymbolID_Deterministic(t *testing.T) {
	a := SymbolID("src/a.ts", "foo", "function foo(x: number): string")
	b := SymbolID("src/a.ts", "foo", "function foo(x: number): string")
	if a != b {
		t.Fatalf("expected identical IDs, got %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "sym:src/a.ts#foo@") {
		t.Fatalf("unexpected ID shape: %q", a)
	}
	// 8-hex suffix
	suffix := a[strings.LastIndex(a, "@")+1:]
	assert.Len(t, suffix, 8)
}

func TestSymbolID_WhitespaceInsensitiveSignature(t *testing.T) {
	a := SymbolID("src/a.ts", "foo", "function foo(x: number):  string")
	b := SymbolID("src/a.ts", "foo", "function foo(x: number): string")
	assert.Equal(t, a, b, "signature canonicalization should collapse whitespace")
}

func TestSymbolID_SignatureChangesHash(t *testing.T) {
	a := SymbolID("src/a.ts", "foo", "function foo(x: number): string")
	b := SymbolID("src/a.ts", "foo", "function foo(x: string): string")
	assert.NotEqual(t, a, b)
}

func TestFileAndDirectoryIDs(t *testing.T) {
	assert.Equal(t, "file:src/a.ts", FileID("./src/a.ts"))
	assert.Equal(t, "dir:src/util", DirectoryID("src\\util"))
}

func TestNewFile(t *testing.T) {
	content := []byte("const x = 1;\nconst y = 2;\n")
	f := NewFile("src/a.ts", content, "typescript")

	assert.Equal(t, "file:src/a.ts", f.ID)
	assert.Equal(t, len(content), f.Size)
	assert.Equal(t, 3, f.Lines)
	assert.False(t, f.IsTest)

	same := NewFile("src/a.ts", content, "typescript")
	assert.Equal(t, f.Hash, same.Hash)
}

func TestNewDirectory_Depth(t *testing.T) {
	assert.Equal(t, 1, NewDirectory("src").Depth)
	assert.Equal(t, 3, NewDirectory("src/util/deep").Depth)
	assert.Equal(t, 0, NewDirectory(".").Depth)
}

func TestIsTestPath(t *testing.T) {
	assert.True(t, IsTestPath("src/a.test.ts"))
	assert.True(t, IsTestPath("src/__tests__/a.ts"))
	assert.False(t, IsTestPath("src/a.ts"))
}

func TestSymbolPath(t *testing.T) {
	assert.Equal(t, "src/a.ts:foo", SymbolPath("src/a.ts", "foo"))
}
