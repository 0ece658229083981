package resolver

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"codegraph/internal/entity"
	"codegraph/internal/lang"
)

// Source is the project-wide file set the resolver reads from.
type Source interface {
	ReadFile(rel string) ([]byte, error)
	Exists(rel string) bool
}

// DirSource is a Source rooted at a directory on disk.
type DirSource struct {
	Root string
}

func (d DirSource) ReadFile(rel string) ([]byte, error) {
	return os.ReadFile(filepath.Join(d.Root, filepath.FromSlash(rel)))
}

func (d DirSource) Exists(rel string) bool {
	info, err := os.Stat(filepath.Join(d.Root, filepath.FromSlash(rel)))
	return err == nil && !info.IsDir()
}

// ExportEntry is one resolved export: the file that declares the symbol,
// its declared name there, and how many re-export hops were traversed.
type ExportEntry struct {
	File  string
	Name  string
	Depth int
}

// maxReexportDepth bounds transitive "export * from" chains.
const maxReexportDepth = 4

// Modules resolves module specifiers and maintains the per-module export
// map cache. Reparsing any project file invalidates the cache
// conservatively, since re-export chains can cross arbitrary files.
type Modules struct {
	src     Source
	baseURL string
	aliases map[string][]string

	mu    sync.Mutex
	cache map[string]map[string]ExportEntry
}

func NewModules(src Source) *Modules {
	return &Modules{
		src:   src,
		cache: make(map[string]map[string]ExportEntry),
	}
}

// SetPathAliases configures tsconfig-style baseUrl/paths remapping.
func (m *Modules) SetPathAliases(baseURL string, aliases map[string][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baseURL = strings.Trim(baseURL, "/")
	m.aliases = aliases
	m.cache = make(map[string]map[string]ExportEntry)
}

// ResolveSpecifier maps a module specifier as written in fromFile to a
// project-relative file path. ok is false for bare specifiers that do not
// match an alias (external packages).
func (m *Modules) ResolveSpecifier(spec, fromFile string) (string, bool) {
	if spec == "" {
		return "", false
	}
	if strings.HasPrefix(spec, ".") {
		candidate := path.Join(path.Dir(entity.NormalizePath(fromFile)), spec)
		return m.probe(candidate)
	}

	m.mu.Lock()
	baseURL, aliases := m.baseURL, m.aliases
	m.mu.Unlock()

	for pattern, targets := range aliases {
		prefix, wildcard := strings.CutSuffix(pattern, "*")
		if wildcard && strings.HasPrefix(spec, prefix) {
			rest := strings.TrimPrefix(spec, prefix)
			for _, target := range targets {
				candidate := strings.Replace(target, "*", rest, 1)
				if baseURL != "" {
					candidate = path.Join(baseURL, candidate)
				}
				if resolved, ok := m.probe(candidate); ok {
					return resolved, true
				}
			}
		} else if !wildcard && spec == pattern {
			for _, target := range targets {
				candidate := target
				if baseURL != "" {
					candidate = path.Join(baseURL, target)
				}
				if resolved, ok := m.probe(candidate); ok {
					return resolved, true
				}
			}
		}
	}

	if baseURL != "" {
		if resolved, ok := m.probe(path.Join(baseURL, spec)); ok {
			return resolved, true
		}
	}
	return "", false
}

// probe tries the candidate path as-is, with each known extension, and as
// a directory index module.
func (m *Modules) probe(candidate string) (string, bool) {
	candidate = entity.NormalizePath(candidate)
	if _, _, ok := lang.ForPath(candidate); ok && m.src.Exists(candidate) {
		return candidate, true
	}
	for _, ext := range lang.Extensions {
		if p := candidate + ext; m.src.Exists(p) {
			return p, true
		}
	}
	for _, ext := range lang.Extensions {
		if p := path.Join(candidate, "index"+ext); m.src.Exists(p) {
			return p, true
		}
	}
	return "", false
}

// ResolveImportedMember resolves an imported member through the module's
// export map, following re-exports. Returns nil when the specifier is
// external or the member is not exported.
func (m *Modules) ResolveImportedMember(spec, member, fromFile string) *ExportEntry {
	file, ok := m.ResolveSpecifier(spec, fromFile)
	if !ok {
		return nil
	}
	exports, err := m.ExportMap(file)
	if err != nil {
		return nil
	}
	if entry, ok := exports[member]; ok {
		out := entry
		return &out
	}
	return nil
}

// ExportMap returns the exported-name map for a module, building and
// caching it on first use.
func (m *Modules) ExportMap(fileRel string) (map[string]ExportEntry, error) {
	fileRel = entity.NormalizePath(fileRel)

	m.mu.Lock()
	if cached, ok := m.cache[fileRel]; ok {
		m.mu.Unlock()
		return cached, nil
	}
	m.mu.Unlock()

	seen := map[string]bool{}
	built, err := m.buildExportMap(fileRel, 0, seen)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.cache[fileRel] = built
	m.mu.Unlock()
	return built, nil
}

// Invalidate drops all cached export maps. Invalidation is conservative:
// any reparse may change a re-export chain that other modules' maps
// depend on.
func (m *Modules) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = make(map[string]map[string]ExportEntry)
}

// CacheSize reports the number of cached export maps.
func (m *Modules) CacheSize() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cache)
}
