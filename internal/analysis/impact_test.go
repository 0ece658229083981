package analysis

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codegraph/internal/engine"
	"codegraph/internal/entity"
	"codegraph/internal/extractor"
	"codegraph/internal/git"
	"codegraph/internal/graph"
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

func TestAnalyzeImpact(t *testing.T) {
	fs := memFS{
		"src/util.ts": `export function helper(n: number): number {
  return n + 1;
}

export function unrelated(): number {
  return 0;
}
`,
		"src/app.ts": `import { helper } from './util';

export function run(): number {
  return helper(1);
}
`,
	}
	eng := engine.New(extractor.DefaultConfig(), fs)
	results := make(map[string]*extractor.ParseResult)
	for _, p := range []string{"src/util.ts", "src/app.ts"} {
		res, err := eng.ParseFile(context.Background(), p)
		require.NoError(t, err)
		results[p] = res
	}
	g := graph.Build(results, eng.Index())

	// Lines 1-3 cover helper's body only.
	report := NewAnalyzer(g).AnalyzeImpact([]git.ChangedFile{
		{Path: "src/util.ts", ChangedLines: []int{2}},
	})

	directNames := symbolNames(report.DirectlyAffected)
	assert.Contains(t, directNames, "helper")
	assert.NotContains(t, directNames, "unrelated")

	// run calls helper, so it is indirectly affected.
	assert.Contains(t, symbolNames(report.IndirectlyAffected), "run")
}

func TestAnalyzeImpact_NoLineInfoMarksWholeFile(t *testing.T) {
	fs := memFS{
		"src/util.ts": `export function helper(): number { return 1; }
export function other(): number { return 2; }
`,
	}
	eng := engine.New(extractor.DefaultConfig(), fs)
	res, err := eng.ParseFile(context.Background(), "src/util.ts")
	require.NoError(t, err)
	g := graph.Build(map[string]*extractor.ParseResult{"src/util.ts": res}, eng.Index())

	report := NewAnalyzer(g).AnalyzeImpact([]git.ChangedFile{{Path: "src/util.ts"}})
	names := symbolNames(report.DirectlyAffected)
	assert.Contains(t, names, "helper")
	assert.Contains(t, names, "other")
}

func symbolNames(syms []entity.Symbol) []string {
	var names []string
	for _, s := range syms {
		names = append(names, s.Name)
	}
	return names
}
