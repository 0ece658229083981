package index

import (
	"path"
	"sync"

	"codegraph/internal/entity"
)

// Project is the project-wide symbol index: (file, name) -> symbol and
// name -> candidate symbols. It is shared across file parses; writes go
// through Reindex/Invalidate under a single-writer lock so that concurrent
// file parses cannot interleave index mutation.
type Project struct {
	mu     sync.RWMutex
	byPath map[string]entity.Symbol   // symbol path "<fileRel>:<name>"
	byName map[string][]entity.Symbol // simple name
}

func NewProject() *Project {
	return &Project{
		byPath: make(map[string]entity.Symbol),
		byName: make(map[string][]entity.Symbol),
	}
}

// Reindex removes every entry belonging to file and re-inserts the given
// symbol set atomically.
func (p *Project) Reindex(file string, symbols []entity.Symbol) {
	file = entity.NormalizePath(file)
	p.mu.Lock()
	defer p.mu.Unlock()

	p.removeFileLocked(file)
	for _, sym := range symbols {
		p.byPath[sym.Path] = sym
		p.byName[sym.Name] = append(p.byName[sym.Name], sym)
	}
}

// Invalidate drops every entry belonging to file.
func (p *Project) Invalidate(file string) {
	file = entity.NormalizePath(file)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removeFileLocked(file)
}

func (p *Project) removeFileLocked(file string) {
	for key, sym := range p.byPath {
		if sym.File == file {
			delete(p.byPath, key)
		}
	}
	for name, candidates := range p.byName {
		kept := candidates[:0]
		for _, sym := range candidates {
			if sym.File != file {
				kept = append(kept, sym)
			}
		}
		if len(kept) == 0 {
			delete(p.byName, name)
		} else {
			p.byName[name] = kept
		}
	}
}

// LookupPath finds the symbol declared in file under name.
func (p *Project) LookupPath(file, name string) (entity.Symbol, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	sym, ok := p.byPath[entity.SymbolPath(file, name)]
	return sym, ok
}

// LookupName returns all candidates declared under name anywhere in the
// project.
func (p *Project) LookupName(name string) []entity.Symbol {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]entity.Symbol, len(p.byName[name]))
	copy(out, p.byName[name])
	return out
}

// Disambiguate resolves name from the perspective of fromFile. A single
// candidate wins outright; with several, a candidate in the same directory
// as fromFile wins; otherwise the lookup stays ambiguous.
func (p *Project) Disambiguate(name, fromFile string) (entity.Symbol, bool, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	candidates := p.byName[name]
	switch len(candidates) {
	case 0:
		return entity.Symbol{}, false, false
	case 1:
		return candidates[0], false, true
	}

	dir := path.Dir(entity.NormalizePath(fromFile))
	for _, sym := range candidates {
		if path.Dir(sym.File) == dir {
			return sym, false, true
		}
	}
	return candidates[0], true, true
}

// Unique returns the single project-wide symbol under name, if exactly one
// exists. Placeholder concretization uses this.
func (p *Project) Unique(name string) (entity.Symbol, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if candidates := p.byName[name]; len(candidates) == 1 {
		return candidates[0], true
	}
	return entity.Symbol{}, false
}

// Stats reports index sizes.
func (p *Project) Stats() (symbols, names int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.byPath), len(p.byName)
}
