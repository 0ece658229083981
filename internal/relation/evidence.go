package relation

import "sort"

const (
	maxEvidence = 20
	maxSites    = 20
)

// sourceTrust orders evidence sources from most to least trustworthy.
func sourceTrust(source string) int {
	switch source {
	case "type-checker":
		return 0
	case "ast":
		return 1
	default:
		return 2
	}
}

// MergeEvidence combines two evidence lists, ranks by source trust then by
// earliest line, deduplicates by (source, path, line, column), and caps the
// result at 20 entries.
func MergeEvidence(a, b []Evidence) []Evidence {
	merged := make([]Evidence, 0, len(a)+len(b))
	seen := make(map[evidenceKey]bool, len(a)+len(b))
	for _, ev := range append(append([]Evidence{}, a...), b...) {
		key := evidenceKey{ev.Source, ev.Location.Path, ev.Location.Line, ev.Location.Column}
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, ev)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		ti, tj := sourceTrust(merged[i].Source), sourceTrust(merged[j].Source)
		if ti != tj {
			return ti < tj
		}
		return merged[i].Location.Line < merged[j].Location.Line
	})

	if len(merged) > maxEvidence {
		merged = merged[:maxEvidence]
	}
	return merged
}

type evidenceKey struct {
	source string
	path   string
	line   int
	column int
}

// MergeSites combines site location lists, keeping earliest lines first,
// deduplicated and capped at 20.
func MergeSites(a, b []Location) []Location {
	merged := make([]Location, 0, len(a)+len(b))
	seen := make(map[Location]bool, len(a)+len(b))
	for _, loc := range append(append([]Location{}, a...), b...) {
		if seen[loc] {
			continue
		}
		seen[loc] = true
		merged = append(merged, loc)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Line != merged[j].Line {
			return merged[i].Line < merged[j].Line
		}
		return merged[i].Column < merged[j].Column
	})
	if len(merged) > maxSites {
		merged = merged[:maxSites]
	}
	return merged
}

// Merge folds a later observation of the same logical edge into rel,
// combining evidence, sites, and occurrence counts, and keeping the
// earliest location as the primary one.
func Merge(rel, other *Relationship) {
	rel.Evidence = MergeEvidence(rel.Evidence, other.Evidence)
	rel.Sites = MergeSites(rel.Sites, append(other.Sites, other.Location))
	rel.OccurrencesScan += maxInt(other.OccurrencesScan, 1)
	if other.Confidence > rel.Confidence {
		rel.Confidence = other.Confidence
		rel.Resolution = other.Resolution
		rel.Scope = other.Scope
	}
	if other.Location.Line < rel.Location.Line && other.Location.Path == rel.Location.Path {
		rel.Location = other.Location
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
