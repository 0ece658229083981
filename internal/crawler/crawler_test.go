package crawler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestCrawler_Scan(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/app.ts", "export const a = 1;")
	writeFile(t, root, "src/view.tsx", "export const v = 1;")
	writeFile(t, root, "lib/util.mjs", "export const u = 1;")
	writeFile(t, root, "src/types.d.ts", "declare const t: number;")
	writeFile(t, root, "README.md", "# hi")
	writeFile(t, root, "node_modules/dep/index.js", "module.exports = {};")
	writeFile(t, root, "dist/app.js", "var a = 1;")

	files, err := New(root).Files()
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"src/app.ts", "src/view.tsx", "lib/util.mjs"}, files)
}

func TestCrawler_ExtraIgnores(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/app.ts", "export const a = 1;")
	writeFile(t, root, "generated/out.ts", "export const g = 1;")

	files, err := New(root, "generated").Files()
	require.NoError(t, err)
	assert.Equal(t, []string{"src/app.ts"}, files)
}
