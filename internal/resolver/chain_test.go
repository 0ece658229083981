package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codegraph/internal/entity"
	"codegraph/internal/index"
	"codegraph/internal/relation"
)

func indexed(t *testing.T, file, name string) (*index.Project, entity.Symbol) {
	t.Helper()
	sym := entity.Symbol{
		ID:   entity.SymbolID(file, name, name),
		Path: entity.SymbolPath(file, name),
		File: file,
		Name: name,
		Kind: entity.SymbolClass,
	}
	idx := index.NewProject()
	idx.Reindex(file, []entity.Symbol{sym})
	return idx, sym
}

func TestChain_ConcretizesFileSymbolPlaceholder(t *testing.T) {
	idx, sym := indexed(t, "src/b.ts", "bar")

	rel := &relation.Relationship{
		FromEntityID: "sym:src/a.ts#foo@00000000",
		ToEntityID:   "file:src/b.ts:bar",
		Type:         relation.Calls,
	}
	keyBefore := relation.CanonicalTargetKey(rel)

	results := NewDefaultChain(idx).Run([]*relation.Relationship{rel})

	assert.True(t, rel.Resolved)
	assert.Equal(t, sym.ID, rel.ToEntityID)
	assert.Equal(t, keyBefore, relation.CanonicalTargetKey(rel),
		"concretization must not change the canonical target key")
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].Stats.Resolved)
}

func TestChain_UniqueNamePlaceholder(t *testing.T) {
	idx, sym := indexed(t, "src/animal.ts", "Animal")

	rel := &relation.Relationship{
		FromEntityID: "sym:src/dog.ts#Dog@00000000",
		ToEntityID:   "class:Animal",
		Type:         relation.Extends,
	}

	NewDefaultChain(idx).Run([]*relation.Relationship{rel})

	assert.True(t, rel.Resolved)
	assert.Equal(t, sym.ID, rel.ToEntityID)
}

func TestChain_AmbiguousNameStaysPlaceholder(t *testing.T) {
	idx := index.NewProject()
	for _, file := range []string{"src/a.ts", "src/b.ts"} {
		idx.Reindex(file, []entity.Symbol{{
			ID:   entity.SymbolID(file, "Animal", "Animal"),
			Path: entity.SymbolPath(file, "Animal"),
			File: file,
			Name: "Animal",
			Kind: entity.SymbolClass,
		}})
	}

	rel := &relation.Relationship{
		FromEntityID: "sym:src/dog.ts#Dog@00000000",
		ToEntityID:   "class:Animal",
		Type:         relation.Extends,
	}

	results := NewDefaultChain(idx).Run([]*relation.Relationship{rel})

	assert.False(t, rel.Resolved)
	assert.Equal(t, "class:Animal", rel.ToEntityID)
	assert.Equal(t, 1, results[1].Stats.Skipped)
}

func TestChain_UnknownPlaceholderUntouched(t *testing.T) {
	idx := index.NewProject()
	rel := &relation.Relationship{
		FromEntityID: "sym:src/a.ts#foo@00000000",
		ToEntityID:   "class:Nowhere",
		Type:         relation.Extends,
	}

	results := NewDefaultChain(idx).Run([]*relation.Relationship{rel})

	assert.False(t, rel.Resolved)
	assert.Equal(t, 1, results[1].UnresolvedAfter)
}
