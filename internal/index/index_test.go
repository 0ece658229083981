package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codegraph/internal/entity"
)

func sym(file, name string) entity.Symbol {
	return entity.Symbol{
		ID:   entity.SymbolID(file, name, name+"()"),
		Path: entity.SymbolPath(file, name),
		File: entity.NormalizePath(file),
		Name: name,
		Kind: entity.SymbolFunction,
	}
}

func TestReindex_ReplacesFileEntries(t *testing.T) {
	p := NewProject()
	p.Reindex("src/a.ts", []entity.Symbol{sym("src/a.ts", "foo"), sym("src/a.ts", "bar")})
	p.Reindex("src/b.ts", []entity.Symbol{sym("src/b.ts", "baz")})

	_, ok := p.LookupPath("src/a.ts", "foo")
	assert.True(t, ok)

	// Reparse of a.ts drops bar, keeps foo.
	p.Reindex("src/a.ts", []entity.Symbol{sym("src/a.ts", "foo")})

	_, ok = p.LookupPath("src/a.ts", "bar")
	assert.False(t, ok, "stale entry should be removed on reindex")
	_, ok = p.LookupPath("src/a.ts", "foo")
	assert.True(t, ok)
	_, ok = p.LookupPath("src/b.ts", "baz")
	assert.True(t, ok, "other files untouched")
}

func TestInvalidate_PurgesNameIndex(t *testing.T) {
	p := NewProject()
	p.Reindex("src/a.ts", []entity.Symbol{sym("src/a.ts", "foo")})
	p.Invalidate("src/a.ts")

	assert.Empty(t, p.LookupName("foo"))
	symbols, names := p.Stats()
	assert.Zero(t, symbols)
	assert.Zero(t, names)
}

func TestDisambiguate_PrefersSameDirectory(t *testing.T) {
	p := NewProject()
	p.Reindex("src/a/util.ts", []entity.Symbol{sym("src/a/util.ts", "helper")})
	p.Reindex("src/b/util.ts", []entity.Symbol{sym("src/b/util.ts", "helper")})

	got, ambiguous, ok := p.Disambiguate("helper", "src/b/main.ts")
	require.True(t, ok)
	assert.False(t, ambiguous)
	assert.Equal(t, "src/b/util.ts", got.File)
}

func TestDisambiguate_FlagsAmbiguity(t *testing.T) {
	p := NewProject()
	p.Reindex("src/a/util.ts", []entity.Symbol{sym("src/a/util.ts", "helper")})
	p.Reindex("src/b/util.ts", []entity.Symbol{sym("src/b/util.ts", "helper")})

	_, ambiguous, ok := p.Disambiguate("helper", "lib/other.ts")
	require.True(t, ok)
	assert.True(t, ambiguous, "no directory match should stay ambiguous")
}

func TestUnique(t *testing.T) {
	p := NewProject()
	p.Reindex("src/a.ts", []entity.Symbol{sym("src/a.ts", "onlyOne")})

	got, ok := p.Unique("onlyOne")
	require.True(t, ok)
	assert.Equal(t, "src/a.ts:onlyOne", got.Path)

	p.Reindex("src/b.ts", []entity.Symbol{sym("src/b.ts", "onlyOne")})
	_, ok = p.Unique("onlyOne")
	assert.False(t, ok)
}
