package storage

import (
	"context"

	"codegraph/internal/extractor"
	"codegraph/internal/graph"
)

// Store persists the code graph. The engine never calls into it; the
// caller decides when parse results are written.
type Store interface {
	// SaveGraph replaces the stored graph with a full snapshot.
	SaveGraph(ctx context.Context, g *graph.Graph) error

	// UpsertParse replaces one file's entities and relationships with a
	// fresh parse result.
	UpsertParse(ctx context.Context, fileRel string, res *extractor.ParseResult) error

	// DeleteFile removes everything a file contributed.
	DeleteFile(ctx context.Context, fileRel string) error

	// LoadGraph reconstructs the stored graph.
	LoadGraph(ctx context.Context) (*graph.Graph, error)

	Close() error
}
