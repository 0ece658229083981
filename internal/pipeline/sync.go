package pipeline

import (
	"context"
	"fmt"
	"time"

	"codegraph/internal/analysis"
	"codegraph/internal/config"
	"codegraph/internal/crawler"
	"codegraph/internal/engine"
	"codegraph/internal/extractor"
	"codegraph/internal/git"
	"codegraph/internal/graph"
	"codegraph/internal/lang"
	"codegraph/internal/resolver"
	"codegraph/internal/storage"
)

// Sync drives the staged scan/update flows behind the CLI.
type Sync struct {
	DBPath      string
	ProjectRoot string
	Concurrency int

	cfg *config.Config
}

func NewSync(dbPath, root string) *Sync {
	return &Sync{
		DBPath:      dbPath,
		ProjectRoot: root,
		Concurrency: 4,
	}
}

func (s *Sync) loadConfig() *config.Config {
	if s.cfg == nil {
		cfg, err := config.LoadConfig("codegraph.yaml")
		if err != nil {
			cfg = config.Defaults()
		}
		s.cfg = cfg
	}
	return s.cfg
}

func (s *Sync) extractorConfig() extractor.Config {
	cfg := s.loadConfig()
	return extractor.Config{
		TypeCheckerBudget: cfg.Engine.TypeCheckerBudget,
		MinConfidence:     cfg.Engine.MinConfidence,
		MinNameLength:     cfg.Engine.MinNameLength,
		MaxFileSize:       cfg.Engine.MaxFileSize,
		Calibration:       cfg.Engine.Calibration,
	}
}

func (s *Sync) newEngine() *engine.Engine {
	cfg := s.loadConfig()
	eng := engine.New(s.extractorConfig(), resolver.DirSource{Root: s.ProjectRoot})
	if cfg.Paths.BaseURL != "" || len(cfg.Paths.Aliases) > 0 {
		eng.SetPathAliases(cfg.Paths.BaseURL, cfg.Paths.Aliases)
	}
	return eng
}

// FullScan crawls the project, parses everything, links the graph, and
// replaces the stored snapshot.
func (s *Sync) FullScan(ctx context.Context) error {
	cfg := s.loadConfig()

	files, err := crawler.New(s.ProjectRoot, cfg.Project.Ignore...).Files()
	if err != nil {
		return fmt.Errorf("failed to crawl %s: %w", s.ProjectRoot, err)
	}
	fmt.Printf("📂 Found %d source files under %s\n", len(files), s.ProjectRoot)

	eng := s.newEngine()
	start := time.Now()
	results, diags := eng.ParseProject(ctx, files, s.Concurrency)
	for _, d := range diags {
		fmt.Printf("⚠️  %s: %s\n", d.Path, d.Message)
	}

	// Second pass over files parsed before their dependencies were
	// indexed: the graph link stage concretizes those placeholders.
	g := graph.Build(results, eng.Index())
	stats := g.Stats()
	fmt.Printf("✅ Graph built in %v: %d files, %d symbols, %d edges (%d unresolved).\n",
		time.Since(start).Round(time.Millisecond), stats.Files, stats.Symbols, stats.Edges, stats.Unresolved)

	store, err := storage.NewSQLiteStore(s.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	fmt.Println("💾 Saving graph snapshot...")
	if err := store.SaveGraph(ctx, g); err != nil {
		return fmt.Errorf("failed to save graph: %w", err)
	}
	fmt.Printf("🎉 Scan complete! Database: %s\n", s.DBPath)
	return nil
}

// Update applies git-detected changes incrementally: changed files are
// reparsed through the engine's partial-update path, deleted files are
// purged, and the store is patched per file instead of resaved whole.
func (s *Sync) Update(ctx context.Context, baseRef string) error {
	changes, err := git.ChangedFiles(baseRef)
	if err != nil {
		return fmt.Errorf("failed to get git changes: %w", err)
	}
	changes = parseableChanges(changes)
	if len(changes) == 0 {
		fmt.Println("✅ No changes detected.")
		return nil
	}
	fmt.Printf("📝 Detected %d changed source files.\n", len(changes))

	store, err := storage.NewSQLiteStore(s.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	eng := s.newEngine()
	src := resolver.DirSource{Root: s.ProjectRoot}
	updated, removed := 0, 0
	for _, change := range changes {
		if !src.Exists(change.Path) {
			if err := store.DeleteFile(ctx, change.Path); err != nil {
				return fmt.Errorf("failed to delete %s: %w", change.Path, err)
			}
			removed++
			continue
		}
		res, err := eng.ApplyPartialUpdate(ctx, change.Path, change.LineRanges())
		if err != nil {
			fmt.Printf("⚠️  Failed to parse %s: %v\n", change.Path, err)
			continue
		}
		if err := store.UpsertParse(ctx, change.Path, res.Result); err != nil {
			return fmt.Errorf("failed to save %s: %w", change.Path, err)
		}
		updated++
	}
	fmt.Printf("📊 Graph update: %d files reparsed, %d files removed.\n", updated, removed)

	s.impactStage(ctx, store, changes)
	return nil
}

// impactStage reports which stored symbols the changes touch.
func (s *Sync) impactStage(ctx context.Context, store *storage.SQLiteStore, changes []git.ChangedFile) {
	g, err := store.LoadGraph(ctx)
	if err != nil {
		fmt.Printf("⚠️  Impact analysis skipped: %v\n", err)
		return
	}
	report := analysis.NewAnalyzer(g).AnalyzeImpact(changes)
	fmt.Printf("🔍 Impact: %d symbols directly affected, %d dependents.\n",
		len(report.DirectlyAffected), len(report.IndirectlyAffected))
	for i, sym := range report.IndirectlyAffected {
		if i == 10 {
			fmt.Printf("   ... and %d more\n", len(report.IndirectlyAffected)-10)
			break
		}
		fmt.Printf("   <- %s (%s)\n", sym.Path, sym.Kind)
	}
}

// Stats prints the stored graph's shape.
func (s *Sync) Stats(ctx context.Context) error {
	store, err := storage.NewSQLiteStore(s.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	g, err := store.LoadGraph(ctx)
	if err != nil {
		return fmt.Errorf("failed to load graph: %w", err)
	}
	stats := g.Stats()
	fmt.Printf("Files:       %d\n", stats.Files)
	fmt.Printf("Directories: %d\n", stats.Directories)
	fmt.Printf("Symbols:     %d\n", stats.Symbols)
	fmt.Printf("Edges:       %d (%d unresolved)\n", stats.Edges, stats.Unresolved)
	for typ, n := range stats.ByType {
		fmt.Printf("  %-14s %d\n", typ, n)
	}
	return nil
}

func parseableChanges(changes []git.ChangedFile) []git.ChangedFile {
	var out []git.ChangedFile
	for _, c := range changes {
		if _, _, ok := lang.ForPath(c.Path); ok {
			out = append(out, c)
		}
	}
	return out
}
