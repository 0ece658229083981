package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codegraph/internal/entity"
)

const sampleDiff = `diff --git a/src/a.ts b/src/a.ts
index 1111111..2222222 100644
--- a/src/a.ts
+++ b/src/a.ts
@@ -3,0 +4,2 @@ export function alpha() {
+  const x = 1;
+  return x;
@@ -10 +12 @@ export function beta() {
-  return 2;
+  return 3;
diff --git a/src/b.ts b/src/b.ts
index 3333333..4444444 100644
--- a/src/b.ts
+++ b/src/b.ts
@@ -1,2 +0,0 @@
-export function gone() {
-}
`

func TestParseDiff(t *testing.T) {
	changes, err := parseDiff([]byte(sampleDiff))
	require.NoError(t, err)
	require.Len(t, changes, 2)

	a := changes[0]
	assert.Equal(t, "src/a.ts", a.Path)
	assert.Equal(t, []int{4, 5, 12}, a.ChangedLines)

	// Pure deletion: the file appears but no new-side lines exist.
	b := changes[1]
	assert.Equal(t, "src/b.ts", b.Path)
	assert.Empty(t, b.ChangedLines)
}

func TestChangedFile_LineRanges(t *testing.T) {
	cf := ChangedFile{Path: "src/a.ts", ChangedLines: []int{4, 5, 12}}
	assert.Equal(t, []entity.Range{
		{StartLine: 4, EndLine: 5},
		{StartLine: 12, EndLine: 12},
	}, cf.LineRanges())

	assert.Nil(t, ChangedFile{Path: "src/b.ts"}.LineRanges())
}
