package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"codegraph/internal/entity"
	"codegraph/internal/extractor"
	"codegraph/internal/index"
	"codegraph/internal/relation"
	"codegraph/internal/resolver"
)

// cachedFile is one file's last accepted parse.
type cachedFile struct {
	contentHash   string
	entities      []entity.Entity
	relationships []*relation.Relationship
	lastModified  time.Time
	symbols       map[string]entity.Symbol // symbol path -> symbol
}

// CacheStats summarizes the engine's per-file cache.
type CacheStats struct {
	Files         int
	Entities      int
	Relationships int
}

// PartialUpdateStats counts how partial updates were served.
type PartialUpdateStats struct {
	PartialUpdates  int
	FullFallbacks   int
	SymbolsAffected int
}

// Engine owns the per-file parse cache, the global symbol index, and the
// module resolver. Extraction itself is read-only against the shared
// indexes; all writes to the cache and index go through the engine's
// mutex, which is the single-writer barrier for concurrent parses.
type Engine struct {
	mu      sync.Mutex
	ex      *extractor.Extractor
	idx     *index.Project
	modules *resolver.Modules
	src     resolver.Source

	cache        map[string]*cachedFile
	partialStats PartialUpdateStats
}

func New(cfg extractor.Config, src resolver.Source) *Engine {
	idx := index.NewProject()
	modules := resolver.NewModules(src)
	return &Engine{
		ex:      extractor.New(cfg, idx, modules),
		idx:     idx,
		modules: modules,
		src:     src,
		cache:   make(map[string]*cachedFile),
	}
}

// SetPathAliases forwards tsconfig-style path mappings to the resolver.
func (e *Engine) SetPathAliases(baseURL string, aliases map[string][]string) {
	e.modules.SetPathAliases(baseURL, aliases)
}

// Index exposes the global symbol index for read-side consumers.
func (e *Engine) Index() *index.Project { return e.idx }

// ParseFile parses one file and commits the result to the cache and the
// global index.
func (e *Engine) ParseFile(ctx context.Context, path string) (*extractor.ParseResult, error) {
	path = entity.NormalizePath(path)
	content, err := e.src.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	e.mu.Lock()
	old, hadCache := e.cache[path]
	e.mu.Unlock()
	if hadCache && old.contentHash != entity.ContentHash(content) {
		// A reparse can change this file's export map; resolution for
		// files importing through it must not serve the stale entries.
		e.modules.Invalidate()
	}

	res, err := e.ex.ParseFile(ctx, path, content)
	if err != nil {
		return nil, err
	}
	e.commit(path, content, res)
	return res, nil
}

// ParseFileIncremental reparses a file and diffs against the cached
// result. Unchanged content is a no-op; a missing file is treated as a
// deletion when the file was previously cached.
func (e *Engine) ParseFileIncremental(ctx context.Context, path string) (*IncrementalResult, error) {
	path = entity.NormalizePath(path)

	if !e.src.Exists(path) {
		e.mu.Lock()
		_, cached := e.cache[path]
		e.mu.Unlock()
		if cached {
			return e.RemoveFile(path), nil
		}
		return nil, fmt.Errorf("read %s: file does not exist", path)
	}

	content, err := e.src.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	hash := entity.ContentHash(content)

	e.mu.Lock()
	old, hadCache := e.cache[path]
	e.mu.Unlock()

	if hadCache && old.contentHash == hash {
		return &IncrementalResult{
			Result: &extractor.ParseResult{
				Entities:      old.entities,
				Relationships: old.relationships,
			},
			IsIncremental: true,
		}, nil
	}

	// Any change may alter this file's export map, which downstream
	// import resolution depends on; invalidate conservatively.
	e.modules.Invalidate()

	res, err := e.ex.ParseFile(ctx, path, content)
	if err != nil {
		return nil, err
	}
	out := &IncrementalResult{Result: res, IsIncremental: hadCache}
	if hadCache {
		diffEntities(out, old, res)
		diffRelationships(out, old.relationships, res.Relationships)
	} else {
		out.AddedEntities = res.Entities
		out.AddedRelationships = res.Relationships
	}
	e.commit(path, content, res)
	return out, nil
}

// ApplyPartialUpdate reparses a file for which only the given source
// ranges changed. Cached symbols whose recorded range does not overlap
// any changed range keep their identity; symbols without range metadata
// are conservatively treated as affected. An empty range list or a cache
// miss falls back to a full incremental reparse.
func (e *Engine) ApplyPartialUpdate(ctx context.Context, path string, ranges []entity.Range) (*IncrementalResult, error) {
	path = entity.NormalizePath(path)

	e.mu.Lock()
	old, hadCache := e.cache[path]
	e.mu.Unlock()

	if !hadCache || len(ranges) == 0 {
		e.mu.Lock()
		e.partialStats.FullFallbacks++
		e.mu.Unlock()
		return e.ParseFileIncremental(ctx, path)
	}

	affected := 0
	for _, sym := range old.symbols {
		if symbolAffected(sym, ranges) {
			affected++
		}
	}

	res, err := e.ParseFileIncremental(ctx, path)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.partialStats.PartialUpdates++
	e.partialStats.SymbolsAffected += affected
	e.mu.Unlock()
	return res, nil
}

func symbolAffected(sym entity.Symbol, ranges []entity.Range) bool {
	if sym.Range.StartByte == 0 && sym.Range.EndByte == 0 {
		return true // no range metadata: always affected
	}
	for _, r := range ranges {
		if r.StartByte == 0 && r.EndByte == 0 {
			// Line-only range (e.g. from a git hunk).
			if sym.Range.StartLine <= r.EndLine && sym.Range.EndLine >= r.StartLine {
				return true
			}
			continue
		}
		if sym.Range.Overlaps(r.StartByte, r.EndByte) {
			return true
		}
	}
	return false
}

// RemoveFile purges a file from the cache and the global index and
// reports everything it used to contribute as removed.
func (e *Engine) RemoveFile(path string) *IncrementalResult {
	path = entity.NormalizePath(path)

	e.mu.Lock()
	old, ok := e.cache[path]
	if ok {
		delete(e.cache, path)
	}
	e.mu.Unlock()

	out := &IncrementalResult{IsIncremental: true}
	if !ok {
		return out
	}
	e.idx.Invalidate(path)
	e.modules.Invalidate()
	out.RemovedEntities = old.entities
	out.RemovedRelationships = old.relationships
	return out
}

// ParseProject parses many files concurrently with all-settled
// semantics: a per-file failure is recorded as a diagnostic and the
// remaining files still parse. Extraction runs in parallel; cache and
// index commits serialize through the engine mutex.
func (e *Engine) ParseProject(ctx context.Context, paths []string, concurrency int) (map[string]*extractor.ParseResult, []extractor.Diagnostic) {
	if concurrency <= 0 {
		concurrency = 4
	}

	var resMu sync.Mutex
	results := make(map[string]*extractor.ParseResult, len(paths))
	var diags []extractor.Diagnostic

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, p := range paths {
		p := p
		g.Go(func() error {
			res, err := e.ParseFile(ctx, p)
			resMu.Lock()
			defer resMu.Unlock()
			if err != nil {
				diags = append(diags, extractor.Diagnostic{
					Severity: "error",
					Path:     p,
					Message:  err.Error(),
				})
				return nil
			}
			results[p] = res
			return nil
		})
	}
	_ = g.Wait()
	return results, diags
}

// ClearCache drops every cached parse and resets the resolver cache.
func (e *Engine) ClearCache() {
	e.mu.Lock()
	e.cache = make(map[string]*cachedFile)
	e.partialStats = PartialUpdateStats{}
	e.mu.Unlock()
	e.modules.Invalidate()
}

// CacheStats reports the cache's current footprint.
func (e *Engine) CacheStats() CacheStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	stats := CacheStats{Files: len(e.cache)}
	for _, c := range e.cache {
		stats.Entities += len(c.entities)
		stats.Relationships += len(c.relationships)
	}
	return stats
}

// PartialUpdateStats reports how partial updates have been served since
// the last ClearCache.
func (e *Engine) PartialUpdateStats() PartialUpdateStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.partialStats
}

// commit stores a parse in the cache and reindexes the file's symbols.
func (e *Engine) commit(path string, content []byte, res *extractor.ParseResult) {
	symbols := res.SymbolMap()
	syms := make([]entity.Symbol, 0, len(symbols))
	for _, s := range symbols {
		syms = append(syms, s)
	}

	e.mu.Lock()
	e.cache[path] = &cachedFile{
		contentHash:   entity.ContentHash(content),
		entities:      res.Entities,
		relationships: res.Relationships,
		lastModified:  time.Now(),
		symbols:       symbols,
	}
	e.mu.Unlock()

	e.idx.Reindex(path, syms)
}
