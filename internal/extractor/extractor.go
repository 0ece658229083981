package extractor

import (
	"context"
	"fmt"
	"path"

	sitter "github.com/smacker/go-tree-sitter"

	"codegraph/internal/entity"
	"codegraph/internal/index"
	"codegraph/internal/lang"
	"codegraph/internal/relation"
	"codegraph/internal/resolver"
	"codegraph/internal/scoring"
)

// Config carries the per-parse knobs.
type Config struct {
	TypeCheckerBudget int
	MinConfidence     float64
	MinNameLength     int
	MaxFileSize       int
	Calibration       scoring.Calibration
}

// DefaultConfig mirrors config.Defaults for library use. The confidence
// gate sits just above the external base score, so bare external
// references are dropped unless something boosts them.
func DefaultConfig() Config {
	return Config{
		TypeCheckerBudget: 120,
		MinConfidence:     scoring.ExternalBase() + 0.05,
		MinNameLength:     3,
		MaxFileSize:       2 * 1024 * 1024,
	}
}

// Diagnostic is a non-fatal problem encountered during a parse.
type Diagnostic struct {
	Severity string `json:"severity"` // warning, error
	Path     string `json:"path"`
	Line     int    `json:"line,omitempty"`
	Message  string `json:"message"`
}

// ParseResult is the engine's output for one file.
type ParseResult struct {
	Entities      []entity.Entity
	Relationships []*relation.Relationship
	Errors        []Diagnostic
}

// SymbolMap exposes the per-file symbol set keyed by symbol path.
func (r *ParseResult) SymbolMap() map[string]entity.Symbol {
	out := make(map[string]entity.Symbol)
	for _, e := range r.Entities {
		if sym, ok := e.(entity.Symbol); ok {
			out[sym.Path] = sym
		}
	}
	return out
}

// Extractor turns one file's syntax tree into entities and relationships.
// It reads the global index and the module resolver but never writes to
// them; index updates are the caller's single-writer barrier.
type Extractor struct {
	cfg     Config
	idx     *index.Project
	modules *resolver.Modules
}

func New(cfg Config, idx *index.Project, modules *resolver.Modules) *Extractor {
	if cfg.TypeCheckerBudget <= 0 {
		cfg.TypeCheckerBudget = DefaultConfig().TypeCheckerBudget
	}
	if cfg.MinNameLength <= 0 {
		cfg.MinNameLength = DefaultConfig().MinNameLength
	}
	return &Extractor{cfg: cfg, idx: idx, modules: modules}
}

// ParseFile extracts entities and relationships from one file. A syntax
// failure for the whole file yields a single error diagnostic and empty
// sets, not an error; the error return is reserved for unsupported input.
func (e *Extractor) ParseFile(ctx context.Context, relPath string, content []byte) (*ParseResult, error) {
	relPath = entity.NormalizePath(relPath)

	if e.cfg.MaxFileSize > 0 && len(content) > e.cfg.MaxFileSize {
		return &ParseResult{Errors: []Diagnostic{{
			Severity: "error",
			Path:     relPath,
			Message:  fmt.Sprintf("file exceeds max size (%d bytes)", len(content)),
		}}}, nil
	}

	tree, langName, err := lang.Parse(ctx, relPath, content)
	if err != nil {
		if _, _, supported := lang.ForPath(relPath); !supported {
			return nil, err
		}
		return &ParseResult{Errors: []Diagnostic{{
			Severity: "error",
			Path:     relPath,
			Message:  err.Error(),
		}}}, nil
	}
	defer tree.Close()

	st := &fileState{
		ex:       e,
		path:     relPath,
		content:  content,
		lang:     langName,
		root:     tree.RootNode(),
		local:    make(map[string]entity.Symbol),
		varTypes: make(map[string]string),
		rels:     make(map[string]*relation.Relationship),
		handled:  make(map[uint32]bool),
		budget:   NewBudget(e.cfg.TypeCheckerBudget),
	}

	file := entity.NewFile(relPath, content, langName)
	st.fileID = file.ID

	// 1. Import/require maps.
	st.imports = buildImportMap(st)
	file.Dependencies = st.imports.Specifiers()

	// 2-3. File, directory, and symbol entities with structural edges.
	dir := entity.NewDirectory(path.Dir(relPath))
	st.entities = append(st.entities, file, dir)
	st.addStructural(dir.ID, file.ID, relation.Contains)

	st.extractSymbols()

	// 4. Per-symbol relationship extraction.
	for i := range st.symbols {
		st.extractSymbolRelationships(&st.symbols[i])
	}

	// 5. File-wide reference pass.
	st.extractReferences()

	// 6. IMPORTS edges through the export maps.
	st.extractImports()

	return st.finish(), nil
}

// fileState is the working set for one file parse.
type fileState struct {
	ex      *Extractor
	path    string
	content []byte
	lang    string
	root    *sitter.Node
	fileID  string

	imports  *ImportMap
	local    map[string]entity.Symbol // simple name -> symbol (this file)
	varTypes map[string]string        // variable name -> annotated type name
	symbols  []symbolNode
	entities []entity.Entity
	rels     map[string]*relation.Relationship // logical key -> aggregated edge
	diags    []Diagnostic
	handled  map[uint32]bool // node start offsets consumed by a sub-extractor
	budget   *Budget
}

// symbolNode pairs a built Symbol with its defining syntax node.
type symbolNode struct {
	sym  entity.Symbol
	node *sitter.Node
	body *sitter.Node // nil for non-function symbols
}

func (st *fileState) warnf(line int, format string, args ...any) {
	st.diags = append(st.diags, Diagnostic{
		Severity: "warning",
		Path:     st.path,
		Line:     line,
		Message:  fmt.Sprintf(format, args...),
	})
}

// addStructural records a containment-style edge with full confidence.
// Structural edges have no call site, but they still carry the parsed
// file's path so per-file persistence can attribute and purge them.
func (st *fileState) addStructural(from, to string, typ relation.Type) {
	rel := &relation.Relationship{
		FromEntityID: from,
		ToEntityID:   to,
		Type:         typ,
		Resolution:   relation.ResolutionDirect,
		Scope:        relation.ScopeLocal,
		Confidence:   1.0,
		Resolved:     true,
		Location:     relation.Location{Path: st.path},
		ToRef:        &relation.TargetRef{Kind: relation.RefEntity},
	}
	st.add(rel)
}

// add aggregates an edge by its logical key, merging evidence and
// occurrence counts for repeated observations.
func (st *fileState) add(rel *relation.Relationship) {
	if rel.OccurrencesScan == 0 {
		rel.OccurrencesScan = 1
	}
	key := relation.LogicalKey(rel)
	if existing, ok := st.rels[key]; ok {
		relation.Merge(existing, rel)
		return
	}
	st.rels[key] = rel
}

// score computes the gated confidence for an inferred edge target.
func (st *fileState) score(f scoring.Features) float64 {
	return scoring.Score(f, st.ex.cfg.Calibration)
}

// finish gates low-confidence inferred edges, canonicalizes IDs, and
// assembles the result.
func (st *fileState) finish() *ParseResult {
	if st.budget.Exhausted() {
		st.warnf(0, "semantic lookup budget exhausted after %d lookups", st.budget.Used())
	}

	entities := st.entities
	for _, sn := range st.symbols {
		entities = append(entities, sn.sym)
	}
	result := &ParseResult{Entities: entities, Errors: st.diags}
	for _, rel := range st.rels {
		if st.dropLowConfidence(rel) {
			continue
		}
		relation.Canonicalize(rel)
		result.Relationships = append(result.Relationships, rel)
	}
	return result
}

// dropLowConfidence applies the primary noise control: inferred edge
// types below the configured threshold are discarded.
func (st *fileState) dropLowConfidence(rel *relation.Relationship) bool {
	min := st.ex.cfg.MinConfidence
	if min <= 0 {
		return false
	}
	switch rel.Type {
	case relation.References, relation.DependsOn:
		return rel.Confidence < min
	case relation.Reads, relation.Writes:
		return !rel.Resolved && rel.Confidence < min
	default:
		return false
	}
}
