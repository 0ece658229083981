package graph

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codegraph/internal/engine"
	"codegraph/internal/entity"
	"codegraph/internal/extractor"
	"codegraph/internal/relation"
)

type memFS map[string]string

func (m memFS) ReadFile(rel string) ([]byte, error) {
	if content, ok := m[rel]; ok {
		return []byte(content), nil
	}
	return nil, fmt.Errorf("open %s: no such file", rel)
}

func (m memFS) Exists(rel string) bool {
	_, ok := m[rel]
	return ok
}

func buildFixtureGraph(t *testing.T) (*Graph, *engine.Engine) {
	t.Helper()
	fs := memFS{
		"src/a.ts": `
import { helper } from './b';

export function caller(): number {
  return helper(1);
}
`,
		"src/b.ts": `export function helper(n: number): number { return n + 1; }`,
	}
	eng := engine.New(extractor.DefaultConfig(), fs)

	results := make(map[string]*extractor.ParseResult)
	// a.ts parses before b.ts is indexed, so its call edge starts as a
	// file-symbol placeholder that Link later concretizes.
	for _, p := range []string{"src/a.ts", "src/b.ts"} {
		res, err := eng.ParseFile(context.Background(), p)
		require.NoError(t, err)
		results[p] = res
	}
	return Build(results, eng.Index()), eng
}

func TestBuild_LinkConcretizesPlaceholders(t *testing.T) {
	g, eng := buildFixtureGraph(t)

	helper, ok := eng.Index().LookupPath("src/b.ts", "helper")
	require.True(t, ok)

	var call *relation.Relationship
	for _, rel := range g.Edges {
		if rel.Type == relation.Calls && rel.AccessPath == "helper" {
			call = rel
		}
	}
	require.NotNil(t, call)
	assert.Equal(t, helper.ID, call.ToEntityID)
	assert.True(t, call.Resolved)
}

func TestGraph_DependencyQueries(t *testing.T) {
	g, eng := buildFixtureGraph(t)

	caller, ok := eng.Index().LookupPath("src/a.ts", "caller")
	require.True(t, ok)
	helper, ok := eng.Index().LookupPath("src/b.ts", "helper")
	require.True(t, ok)

	var depIDs []string
	for _, e := range g.Dependencies(caller.ID) {
		depIDs = append(depIDs, e.EntityID())
	}
	assert.Contains(t, depIDs, helper.ID)

	var dependentIDs []string
	for _, e := range g.Dependents(helper.ID) {
		dependentIDs = append(dependentIDs, e.EntityID())
	}
	assert.Contains(t, dependentIDs, caller.ID)
}

func TestGraph_Stats(t *testing.T) {
	g, _ := buildFixtureGraph(t)

	s := g.Stats()
	assert.Equal(t, 2, s.Files)
	assert.Equal(t, 1, s.Directories)
	assert.GreaterOrEqual(t, s.Symbols, 2)
	assert.Greater(t, s.ByType[relation.Calls], 0)
}

func TestGraph_AddReplacesEdgeByID(t *testing.T) {
	g := New()
	sym := entity.Symbol{ID: "sym:a.ts#x@00000000", Path: "a.ts:x", File: "a.ts", Name: "x"}
	g.Entities[sym.ID] = sym

	mk := func(conf float64) *relation.Relationship {
		rel := &relation.Relationship{
			FromEntityID: sym.ID,
			ToEntityID:   "external:lodash",
			Type:         relation.DependsOn,
			Confidence:   conf,
		}
		relation.Canonicalize(rel)
		return rel
	}
	g.addEdge(mk(0.4))
	g.addEdge(mk(0.8))

	require.Len(t, g.Edges, 1)
	assert.Equal(t, 0.8, g.Edges[0].Confidence)
}

func TestSnapshot_ValidatesAgainstSchema(t *testing.T) {
	g, _ := buildFixtureGraph(t)

	snap := g.ToSnapshot()
	require.NoError(t, snap.Validate())

	raw, err := snap.MarshalIndent()
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), `"schema_version"`))
}

func TestSnapshot_Deterministic(t *testing.T) {
	g, _ := buildFixtureGraph(t)

	a := g.ToSnapshot()
	b := g.ToSnapshot()
	a.GeneratedAt = b.GeneratedAt

	rawA, err := a.MarshalIndent()
	require.NoError(t, err)
	rawB, err := b.MarshalIndent()
	require.NoError(t, err)
	assert.Equal(t, string(rawA), string(rawB))
}
