package app

import (
	"context"
	"time"

	"github.com/inkwell-ai/inkwell-backend/internal/observability"
	"github.com/inkwell-ai/inkwell-backend/internal/platform/vectorstore"
)

type instrumentedVectorStore struct {
	provider string
	inner    vectorstore.Store
	metrics  *observability.Metrics
}

func instrumentVectorStore(provider string, inner vectorstore.Store) vectorstore.Store {
	if inner == nil {
		return nil
	}
	return &instrumentedVectorStore{
		provider: provider,
		inner:    inner,
		metrics:  observability.Current(),
	}
}

func (s *instrumentedVectorStore) EnsureCollection(ctx context.Context, collection string, properties map[string]string) error {
	start := time.Now()
	err := s.inner.EnsureCollection(ctx, collection, properties)
	s.observe("ensure_collection", err, time.Since(start))
	return err
}

func (s *instrumentedVectorStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	start := time.Now()
	out, err := s.inner.CollectionExists(ctx, collection)
	s.observe("collection_exists", err, time.Since(start))
	return out, err
}

func (s *instrumentedVectorStore) UpsertDocuments(ctx context.Context, collection string, docs []vectorstore.Document) ([]string, error) {
	start := time.Now()
	out, err := s.inner.UpsertDocuments(ctx, collection, docs)
	s.observe("upsert", err, time.Since(start))
	return out, err
}

func (s *instrumentedVectorStore) QuerySimilarity(ctx context.Context, collection string, queryText string, limit int, filters map[string]any) ([]vectorstore.SearchResult, error) {
	start := time.Now()
	out, err := s.inner.QuerySimilarity(ctx, collection, queryText, limit, filters)
	s.observe("query", err, time.Since(start))
	return out, err
}

func (s *instrumentedVectorStore) DeleteDocuments(ctx context.Context, collection string, filters map[string]any) (int, error) {
	start := time.Now()
	out, err := s.inner.DeleteDocuments(ctx, collection, filters)
	s.observe("delete", err, time.Since(start))
	return out, err
}

func (s *instrumentedVectorStore) DocumentCount(ctx context.Context, collection string, filters map[string]any) (int, error) {
	start := time.Now()
	out, err := s.inner.DocumentCount(ctx, collection, filters)
	s.observe("count", err, time.Since(start))
	return out, err
}

func (s *instrumentedVectorStore) observe(operation string, err error, dur time.Duration) {
	if s == nil || s.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.ObserveVectorStoreOperation(s.provider, operation, status, dur)
}
