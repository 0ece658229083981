package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codegraph/internal/entity"
	"codegraph/internal/extractor"
	"codegraph/internal/graph"
	"codegraph/internal/relation"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testParse(file, symName string) *extractor.ParseResult {
	f := entity.NewFile(file, []byte("export function "+symName+"() {}"), "typescript")
	sym := entity.Symbol{
		ID:   "sym:" + file + "#" + symName + "@00000000",
		Path: file + ":" + symName,
		File: file,
		Name: symName,
		Kind: entity.SymbolFunction,
	}
	rel := &relation.Relationship{
		FromEntityID: f.ID,
		ToEntityID:   sym.ID,
		Type:         relation.Defines,
		Confidence:   1,
		Location:     relation.Location{Path: file, Line: 1},
	}
	relation.Canonicalize(rel)
	return &extractor.ParseResult{
		Entities:      []entity.Entity{f, sym},
		Relationships: []*relation.Relationship{rel},
	}
}

func TestSQLiteStore_UpsertParseAndLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertParse(ctx, "src/a.ts", testParse("src/a.ts", "alpha")))
	require.NoError(t, store.UpsertParse(ctx, "src/b.ts", testParse("src/b.ts", "beta")))

	loaded, err := store.LoadGraph(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded.Entities, 4)
	assert.Len(t, loaded.Edges, 2)

	syms, err := store.FindSymbolsByFile(ctx, "src/a.ts")
	require.NoError(t, err)
	require.Len(t, syms, 1)
	assert.Equal(t, "alpha", syms[0].Name)
	assert.Equal(t, entity.SymbolFunction, syms[0].Kind)
}

func TestSQLiteStore_UpsertReplacesFileRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertParse(ctx, "src/a.ts", testParse("src/a.ts", "alpha")))
	require.NoError(t, store.UpsertParse(ctx, "src/a.ts", testParse("src/a.ts", "renamed")))

	syms, err := store.FindSymbolsByFile(ctx, "src/a.ts")
	require.NoError(t, err)
	require.Len(t, syms, 1)
	assert.Equal(t, "renamed", syms[0].Name)
}

func TestSQLiteStore_DeleteFile(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertParse(ctx, "src/a.ts", testParse("src/a.ts", "alpha")))
	require.NoError(t, store.UpsertParse(ctx, "src/b.ts", testParse("src/b.ts", "beta")))
	require.NoError(t, store.DeleteFile(ctx, "src/a.ts"))

	loaded, err := store.LoadGraph(ctx)
	require.NoError(t, err)

	syms, err := store.FindSymbolsByFile(ctx, "src/a.ts")
	require.NoError(t, err)
	assert.Empty(t, syms)

	// b.ts rows survive.
	_, hasBeta := loaded.Entities["sym:src/b.ts#beta@00000000"]
	assert.True(t, hasBeta)
}

func TestSQLiteStore_DeleteFilePurgesUnlocatedStructuralEdges(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Structural edges carry no site location; their row tag must come
	// from the endpoint IDs so a file deletion still removes them.
	res := testParse("src/a.ts", "alpha")
	res.Relationships[0].Location = relation.Location{}

	g := graph.New()
	g.Add(res)
	require.NoError(t, store.SaveGraph(ctx, g))
	require.NoError(t, store.DeleteFile(ctx, "src/a.ts"))

	loaded, err := store.LoadGraph(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded.Edges, "deleting a file must not leave dangling structural edges")
	assert.Empty(t, loaded.Entities)
}

func TestSQLiteStore_SaveGraphIsSnapshot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	g1 := graph.New()
	g1.Add(testParse("src/a.ts", "alpha"))
	require.NoError(t, store.SaveGraph(ctx, g1))

	g2 := graph.New()
	g2.Add(testParse("src/b.ts", "beta"))
	require.NoError(t, store.SaveGraph(ctx, g2))

	loaded, err := store.LoadGraph(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded.Entities, 2)
	_, hasAlpha := loaded.Entities["sym:src/a.ts#alpha@00000000"]
	assert.False(t, hasAlpha)
}
