package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeEvidence_RanksByTrustThenLine(t *testing.T) {
	a := []Evidence{
		{Source: "heuristic", Location: Location{Path: "a.ts", Line: 2}},
		{Source: "ast", Location: Location{Path: "a.ts", Line: 9}},
	}
	b := []Evidence{
		{Source: "type-checker", Location: Location{Path: "a.ts", Line: 30}},
		{Source: "ast", Location: Location{Path: "a.ts", Line: 4}},
	}

	merged := MergeEvidence(a, b)

	assert.Equal(t, "type-checker", merged[0].Source)
	assert.Equal(t, "ast", merged[1].Source)
	assert.Equal(t, 4, merged[1].Location.Line)
	assert.Equal(t, "ast", merged[2].Source)
	assert.Equal(t, "heuristic", merged[3].Source)
}

func TestMergeEvidence_DedupesAndCaps(t *testing.T) {
	var a []Evidence
	for i := 0; i < 30; i++ {
		a = append(a, Evidence{Source: "ast", Location: Location{Path: "a.ts", Line: i}})
	}
	dupe := []Evidence{{Source: "ast", Location: Location{Path: "a.ts", Line: 5}}}

	merged := MergeEvidence(a, dupe)
	assert.Len(t, merged, 20)

	count := 0
	for _, ev := range merged {
		if ev.Location.Line == 5 {
			count++
		}
	}
	assert.Equal(t, 1, count, "duplicate evidence should merge")
}

func TestMerge_AggregatesOccurrencesAndKeepsEarliestLine(t *testing.T) {
	first := &Relationship{
		FromEntityID:    "sym:a.ts#f@00000000",
		ToEntityID:      "file:b.ts:g",
		Type:            Calls,
		OccurrencesScan: 1,
		Confidence:      0.5,
		Location:        Location{Path: "a.ts", Line: 12, Column: 4},
	}
	second := &Relationship{
		FromEntityID:    "sym:a.ts#f@00000000",
		ToEntityID:      "file:b.ts:g",
		Type:            Calls,
		OccurrencesScan: 1,
		Confidence:      0.8,
		Resolution:      ResolutionChecker,
		Scope:           ScopeLocal,
		Location:        Location{Path: "a.ts", Line: 3, Column: 2},
	}

	Merge(first, second)

	assert.Equal(t, 2, first.OccurrencesScan)
	assert.Equal(t, 3, first.Location.Line, "earliest line wins")
	assert.Equal(t, 0.8, first.Confidence, "best confidence wins")
	assert.Equal(t, ResolutionChecker, first.Resolution)
	assert.Equal(t, ScopeLocal, first.Scope, "scope travels with the winning observation")
}

func TestMerge_LosingObservationKeepsResolutionAndScope(t *testing.T) {
	first := &Relationship{
		FromEntityID: "sym:a.ts#f@00000000",
		ToEntityID:   "file:b.ts:g",
		Type:         Calls,
		Confidence:   0.9,
		Resolution:   ResolutionDirect,
		Scope:        ScopeLocal,
		Location:     Location{Path: "a.ts", Line: 2},
	}
	second := &Relationship{
		FromEntityID: "sym:a.ts#f@00000000",
		ToEntityID:   "file:b.ts:g",
		Type:         Calls,
		Confidence:   0.4,
		Resolution:   ResolutionHeuristic,
		Scope:        ScopeUnknown,
		Location:     Location{Path: "a.ts", Line: 8},
	}

	Merge(first, second)

	assert.Equal(t, 0.9, first.Confidence)
	assert.Equal(t, ResolutionDirect, first.Resolution)
	assert.Equal(t, ScopeLocal, first.Scope)
}
