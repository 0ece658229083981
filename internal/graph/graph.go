package graph

import (
	"codegraph/internal/entity"
	"codegraph/internal/extractor"
	"codegraph/internal/index"
	"codegraph/internal/relation"
	"codegraph/internal/resolver"
)

// Graph is the project-wide code graph: entities keyed by ID plus the
// canonicalized relationship set, with adjacency indexes for dependency
// queries.
type Graph struct {
	Entities map[string]entity.Entity
	Edges    []*relation.Relationship

	outgoing map[string][]int // entity ID -> indexes into Edges
	incoming map[string][]int
}

func New() *Graph {
	return &Graph{
		Entities: make(map[string]entity.Entity),
		outgoing: make(map[string][]int),
		incoming: make(map[string][]int),
	}
}

// Add merges one file's parse result into the graph. Edges dedupe by
// canonical relationship ID; a later edge for the same ID replaces the
// earlier one (it carries the freshest metadata).
func (g *Graph) Add(res *extractor.ParseResult) {
	if res == nil {
		return
	}
	for _, e := range res.Entities {
		g.Entities[e.EntityID()] = e
	}
	for _, rel := range res.Relationships {
		g.addEdge(rel)
	}
}

func (g *Graph) addEdge(rel *relation.Relationship) {
	for _, i := range g.outgoing[rel.FromEntityID] {
		if g.Edges[i].ID == rel.ID {
			g.Edges[i] = rel
			return
		}
	}
	g.Edges = append(g.Edges, rel)
	i := len(g.Edges) - 1
	g.outgoing[rel.FromEntityID] = append(g.outgoing[rel.FromEntityID], i)
	g.incoming[rel.ToEntityID] = append(g.incoming[rel.ToEntityID], i)
}

// Link runs the resolver chain over the whole edge set, upgrading
// placeholder targets to concrete entity IDs where the index now has an
// answer, then rebuilds the incoming adjacency (target IDs may change).
func (g *Graph) Link(idx *index.Project) []resolver.StageResult {
	stages := resolver.NewDefaultChain(idx).Run(g.Edges)

	g.incoming = make(map[string][]int)
	for i, rel := range g.Edges {
		g.incoming[rel.ToEntityID] = append(g.incoming[rel.ToEntityID], i)
	}
	return stages
}

// Build assembles and links a graph from per-file parse results.
func Build(results map[string]*extractor.ParseResult, idx *index.Project) *Graph {
	g := New()
	for _, res := range results {
		g.Add(res)
	}
	g.Link(idx)
	return g
}

// Dependencies returns the entities the given entity points at.
func (g *Graph) Dependencies(id string) []entity.Entity {
	return g.neighbors(g.outgoing[id], func(rel *relation.Relationship) string {
		return rel.ToEntityID
	})
}

// Dependents returns the entities pointing at the given entity.
func (g *Graph) Dependents(id string) []entity.Entity {
	return g.neighbors(g.incoming[id], func(rel *relation.Relationship) string {
		return rel.FromEntityID
	})
}

// EdgesFrom returns the outgoing relationships of an entity.
func (g *Graph) EdgesFrom(id string) []*relation.Relationship {
	out := make([]*relation.Relationship, 0, len(g.outgoing[id]))
	for _, i := range g.outgoing[id] {
		out = append(out, g.Edges[i])
	}
	return out
}

// EdgesTo returns the incoming relationships of an entity.
func (g *Graph) EdgesTo(id string) []*relation.Relationship {
	out := make([]*relation.Relationship, 0, len(g.incoming[id]))
	for _, i := range g.incoming[id] {
		out = append(out, g.Edges[i])
	}
	return out
}

func (g *Graph) neighbors(indexes []int, pick func(*relation.Relationship) string) []entity.Entity {
	var out []entity.Entity
	seen := make(map[string]bool)
	for _, i := range indexes {
		id := pick(g.Edges[i])
		if seen[id] {
			continue
		}
		seen[id] = true
		if e, ok := g.Entities[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Stats summarizes the graph.
type Stats struct {
	Files        int
	Directories  int
	Symbols      int
	Edges        int
	Unresolved   int
	ByType       map[relation.Type]int
	ByResolution map[relation.Resolution]int
}

func (g *Graph) Stats() Stats {
	s := Stats{
		Edges:        len(g.Edges),
		ByType:       make(map[relation.Type]int),
		ByResolution: make(map[relation.Resolution]int),
	}
	for _, e := range g.Entities {
		switch e.EntityKind() {
		case entity.KindFile:
			s.Files++
		case entity.KindDirectory:
			s.Directories++
		case entity.KindSymbol:
			s.Symbols++
		}
	}
	for _, rel := range g.Edges {
		s.ByType[rel.Type]++
		if rel.Resolution != "" {
			s.ByResolution[rel.Resolution]++
		}
		if _, concrete := g.Entities[rel.ToEntityID]; !concrete {
			s.Unresolved++
		}
	}
	return s
}
