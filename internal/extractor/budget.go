package extractor

// Budget caps expensive semantic lookups per file parse. It is threaded
// explicitly through sub-extractors and never shared across files, so a
// parse stays thread-safe under file-level parallelism.
type Budget struct {
	remaining int
	used      int
}

func NewBudget(n int) *Budget {
	return &Budget{remaining: n}
}

// TrySpend consumes one lookup if any remain.
func (b *Budget) TrySpend() bool {
	if b.remaining <= 0 {
		return false
	}
	b.remaining--
	b.used++
	return true
}

func (b *Budget) Exhausted() bool { return b.remaining <= 0 }
func (b *Budget) Used() int       { return b.used }

// shouldUseTypeChecker gates semantic resolution: it spends budget only
// when the candidate is imported, ambiguous, or the name is long enough
// to be worth a lookup. Once the budget is gone, every caller falls back
// to syntactic heuristics.
func (st *fileState) shouldUseTypeChecker(name string, imported, ambiguous bool) bool {
	if st.budget.Exhausted() {
		return false
	}
	if !imported && !ambiguous && len(name) < st.ex.cfg.MinNameLength+1 {
		return false
	}
	return st.budget.TrySpend()
}
