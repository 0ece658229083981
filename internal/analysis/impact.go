package analysis

import (
	"codegraph/internal/entity"
	"codegraph/internal/git"
	"codegraph/internal/graph"
)

// ImpactReport lists the symbols affected by a set of changes.
type ImpactReport struct {
	DirectlyAffected   []entity.Symbol
	IndirectlyAffected []entity.Symbol
}

// Analyzer performs impact analysis over the code graph.
type Analyzer struct {
	g *graph.Graph
}

func NewAnalyzer(g *graph.Graph) *Analyzer {
	return &Analyzer{g: g}
}

// AnalyzeImpact maps changed files and lines to the symbols they touch,
// then follows reverse edges one hop to the symbols that depend on them.
// A changed file with no line information marks all of its symbols
// affected.
func (a *Analyzer) AnalyzeImpact(changes []git.ChangedFile) *ImpactReport {
	report := &ImpactReport{
		DirectlyAffected:   []entity.Symbol{},
		IndirectlyAffected: []entity.Symbol{},
	}
	direct := make(map[string]bool)
	indirect := make(map[string]bool)

	byFile := make(map[string][]int)
	for _, change := range changes {
		byFile[change.Path] = change.ChangedLines
	}

	for _, e := range a.g.Entities {
		sym, ok := e.(entity.Symbol)
		if !ok {
			continue
		}
		lines, changed := byFile[sym.File]
		if !changed || !linesTouch(sym, lines) || direct[sym.ID] {
			continue
		}
		direct[sym.ID] = true
		report.DirectlyAffected = append(report.DirectlyAffected, sym)
	}

	for _, sym := range report.DirectlyAffected {
		for _, dep := range a.g.Dependents(sym.ID) {
			depSym, ok := dep.(entity.Symbol)
			if !ok || direct[depSym.ID] || indirect[depSym.ID] {
				continue
			}
			indirect[depSym.ID] = true
			report.IndirectlyAffected = append(report.IndirectlyAffected, depSym)
		}
	}
	return report
}

func linesTouch(sym entity.Symbol, lines []int) bool {
	if len(lines) == 0 {
		return true
	}
	for _, line := range lines {
		if line >= sym.Range.StartLine && line <= sym.Range.EndLine {
			return true
		}
	}
	return false
}
