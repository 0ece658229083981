package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalTargetKey_RawClassification(t *testing.T) {
	cases := []struct {
		target string
		want   string
	}{
		{"sym:src/a.ts#foo@12ab34cd", "ENT:sym:src/a.ts#foo@12ab34cd"},
		{"file:src/b.ts", "ENT:file:src/b.ts"},
		{"file:src/b.ts:bar", "FS:src/b.ts:bar"},
		{"external:lodash", "EXT:lodash"},
		{"class:Animal", "KIND:class:Animal"},
		{"interface:Shape", "KIND:interface:Shape"},
		{"import:./util:helper", "IMP:./util:helper"},
		{"something-else", "RAW:something-else"},
	}
	for _, c := range cases {
		rel := &Relationship{ToEntityID: c.target}
		assert.Equal(t, c.want, CanonicalTargetKey(rel), "target %q", c.target)
	}
}

func TestCanonicalTargetKey_StructuredRefWins(t *testing.T) {
	rel := &Relationship{
		ToEntityID: "external:bar",
		ToRef:      &TargetRef{Kind: RefFileSymbol, File: "src/b.ts", Symbol: "bar"},
	}
	assert.Equal(t, "FS:src/b.ts:bar", CanonicalTargetKey(rel))
}

func TestCanonicalID_StableAcrossResolutionQuality(t *testing.T) {
	heuristic := &Relationship{
		FromEntityID: "sym:src/a.ts#foo@deadbeef",
		ToEntityID:   "file:src/b.ts:bar",
		Type:         Calls,
		Resolution:   ResolutionHeuristic,
		Confidence:   0.4,
	}
	checked := &Relationship{
		FromEntityID: "sym:src/a.ts#foo@deadbeef",
		ToEntityID:   "file:src/b.ts:bar",
		Type:         Calls,
		Resolution:   ResolutionChecker,
		Confidence:   0.9,
	}
	a := CanonicalID(heuristic.FromEntityID, heuristic)
	b := CanonicalID(checked.FromEntityID, checked)
	assert.Equal(t, a, b, "resolution quality must not change edge identity")
}

func TestCanonicalize_BackfillsKindAndSiteHash(t *testing.T) {
	rel := &Relationship{
		FromEntityID: "sym:src/a.ts#foo@deadbeef",
		ToEntityID:   "file:src/b.ts:bar",
		Type:         Calls,
		Location:     Location{Path: "src/a.ts", Line: 3, Column: 10},
		AccessPath:   "util.bar",
	}
	Canonicalize(rel)

	assert.Equal(t, "call", rel.Kind)
	assert.NotEmpty(t, rel.ID)
	assert.Len(t, rel.SiteHash, 16)
	assert.Equal(t, rel.SiteHash[:8], rel.SiteID)

	again := &Relationship{
		FromEntityID: rel.FromEntityID,
		ToEntityID:   rel.ToEntityID,
		Type:         rel.Type,
		Location:     rel.Location,
		AccessPath:   rel.AccessPath,
	}
	Canonicalize(again)
	assert.Equal(t, rel.ID, again.ID)
	assert.Equal(t, rel.SiteHash, again.SiteHash)
}

func TestSiteHash_IndependentOfTarget(t *testing.T) {
	a := SiteHash("src/a.ts", 3, 10, "util.bar")
	b := SiteHash("src/a.ts", 3, 10, "util.bar")
	c := SiteHash("src/a.ts", 4, 10, "util.bar")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestDataFlowID_GroupsByVariable(t *testing.T) {
	a := DataFlowID("src/a.ts", "src/a.ts:foo", "counter")
	b := DataFlowID("src/a.ts", "src/a.ts:foo", "counter")
	c := DataFlowID("src/a.ts", "src/a.ts:foo", "other")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
