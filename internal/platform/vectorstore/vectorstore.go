// Package vectorstore defines the contract the RAG pipeline consumes from a
// similarity-search backend. Implementations live in sibling packages and are
// selected once at bootstrap; the rest of the code depends only on Store.
package vectorstore

import "context"

// Metadata keys every ingested chunk carries for traceability.
const (
	MetaNotebookID = "notebook_id"
	MetaSourceID   = "source_id"
	MetaChunkIndex = "chunk_index"
	MetaSourceName = "source_name"
	MetaSourceType = "source_type"
)

// Document is one chunk of text to upsert, plus its traceability metadata.
// ID may be empty; the backend assigns one and the core treats it as opaque.
type Document struct {
	ID       string
	Text     string
	Metadata map[string]any
}

// SearchResult is one similarity match. Backends report relevance as either
// a certainty (higher is better, 0..1) or a native distance (lower is
// better); either may be absent.
type SearchResult struct {
	ID        string
	Text      string
	Metadata  map[string]any
	Distance  *float64
	Certainty *float64
}

// Relevance returns the certainty when the backend reported one, otherwise
// converts the distance assuming a cosine metric (certainty = 1 - d/2).
// Always in [0, 1].
func (r SearchResult) Relevance() float64 {
	if r.Certainty != nil {
		return clamp01(*r.Certainty)
	}
	if r.Distance != nil {
		return CertaintyFromCosineDistance(*r.Distance)
	}
	return 0
}

// CertaintyFromCosineDistance maps a cosine distance in [0, 2] onto a
// certainty in [0, 1].
func CertaintyFromCosineDistance(distance float64) float64 {
	return clamp01(1 - distance/2)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Store is the pluggable similarity-search backend. Filters are simple
// equality maps (e.g. {"notebook_id": "<uuid>"}); the core never builds
// range or full-text filters.
type Store interface {
	// EnsureCollection creates the collection if it does not exist yet.
	// Idempotent.
	EnsureCollection(ctx context.Context, collection string, properties map[string]string) error
	CollectionExists(ctx context.Context, collection string) (bool, error)
	// UpsertDocuments writes documents and returns their assigned ids in
	// input order.
	UpsertDocuments(ctx context.Context, collection string, docs []Document) ([]string, error)
	QuerySimilarity(ctx context.Context, collection string, queryText string, limit int, filters map[string]any) ([]SearchResult, error)
	// DeleteDocuments removes every document matching the filters and
	// returns how many were removed.
	DeleteDocuments(ctx context.Context, collection string, filters map[string]any) (int, error)
	DocumentCount(ctx context.Context, collection string, filters map[string]any) (int, error)
}
