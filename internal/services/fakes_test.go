package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkwell-ai/inkwell-backend/internal/pkg/apperr"
	"github.com/inkwell-ai/inkwell-backend/internal/platform/llm"
	"github.com/inkwell-ai/inkwell-backend/internal/platform/vectorstore"
	"github.com/inkwell-ai/inkwell-backend/internal/types"
)

type fakeNotebookRepo struct {
	notebooks map[uuid.UUID]*types.Notebook
}

func newFakeNotebookRepo(notebooks ...*types.Notebook) *fakeNotebookRepo {
	m := make(map[uuid.UUID]*types.Notebook, len(notebooks))
	for _, n := range notebooks {
		m[n.ID] = n
	}
	return &fakeNotebookRepo{notebooks: m}
}

func (r *fakeNotebookRepo) Create(_ context.Context, _ *gorm.DB, notebook *types.Notebook) (*types.Notebook, error) {
	r.notebooks[notebook.ID] = notebook
	return notebook, nil
}

func (r *fakeNotebookRepo) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*types.Notebook, error) {
	notebook, ok := r.notebooks[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return notebook, nil
}

func (r *fakeNotebookRepo) List(_ context.Context, _ *gorm.DB) ([]*types.Notebook, error) {
	out := make([]*types.Notebook, 0, len(r.notebooks))
	for _, n := range r.notebooks {
		out = append(out, n)
	}
	return out, nil
}

func (r *fakeNotebookRepo) Delete(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	if _, ok := r.notebooks[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(r.notebooks, id)
	return nil
}

type fakeSourceRepo struct {
	sources []*types.Source
	listErr error
}

func (r *fakeSourceRepo) Create(_ context.Context, _ *gorm.DB, source *types.Source) (*types.Source, error) {
	r.sources = append(r.sources, source)
	return source, nil
}

func (r *fakeSourceRepo) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*types.Source, error) {
	for _, s := range r.sources {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (r *fakeSourceRepo) GetByNotebookID(_ context.Context, _ *gorm.DB, notebookID uuid.UUID) ([]*types.Source, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*types.Source
	for _, s := range r.sources {
		if s.NotebookID == notebookID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSourceRepo) Delete(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	for i, s := range r.sources {
		if s.ID == id {
			r.sources = append(r.sources[:i], r.sources[i+1:]...)
			return nil
		}
	}
	return apperr.ErrNotFound
}

// fakeStore is an in-memory vectorstore.Store that records upserts so tests
// can inspect chunk metadata, and answers queries from a canned result list.
type fakeStore struct {
	collections  map[string]bool
	docs         []vectorstore.Document
	queryResults []vectorstore.SearchResult

	ensureErr error
	upsertErr error
	deleteErr error
	queryErr  error

	ensureCalls int
	deleteCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{collections: map[string]bool{}}
}

func (s *fakeStore) EnsureCollection(_ context.Context, collection string, _ map[string]string) error {
	s.ensureCalls++
	if s.ensureErr != nil {
		return s.ensureErr
	}
	s.collections[collection] = true
	return nil
}

func (s *fakeStore) CollectionExists(_ context.Context, collection string) (bool, error) {
	return s.collections[collection], nil
}

func (s *fakeStore) UpsertDocuments(_ context.Context, collection string, docs []vectorstore.Document) ([]string, error) {
	if s.upsertErr != nil {
		return nil, s.upsertErr
	}
	ids := make([]string, len(docs))
	for i, doc := range docs {
		if doc.ID == "" {
			doc.ID = fmt.Sprintf("doc-%d", len(s.docs))
		}
		ids[i] = doc.ID
		s.docs = append(s.docs, doc)
	}
	return ids, nil
}

func (s *fakeStore) QuerySimilarity(_ context.Context, _ string, _ string, limit int, _ map[string]any) ([]vectorstore.SearchResult, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	if limit > len(s.queryResults) {
		limit = len(s.queryResults)
	}
	return s.queryResults[:limit], nil
}

func (s *fakeStore) DeleteDocuments(_ context.Context, _ string, filters map[string]any) (int, error) {
	s.deleteCalls++
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	notebookID, _ := filters[vectorstore.MetaNotebookID].(string)
	kept := s.docs[:0]
	deleted := 0
	for _, doc := range s.docs {
		if doc.Metadata[vectorstore.MetaNotebookID] == notebookID {
			deleted++
			continue
		}
		kept = append(kept, doc)
	}
	s.docs = kept
	return deleted, nil
}

func (s *fakeStore) DocumentCount(_ context.Context, _ string, _ map[string]any) (int, error) {
	return len(s.docs), nil
}

type fakeLLM struct {
	response    string
	generateErr error
	lastPrompt  string
	lastParams  *llm.Params
}

func (c *fakeLLM) Generate(_ context.Context, prompt string, params *llm.Params) (string, error) {
	c.lastPrompt = prompt
	c.lastParams = params
	if c.generateErr != nil {
		return "", c.generateErr
	}
	return c.response, nil
}

func (c *fakeLLM) GenerateStream(ctx context.Context, prompt string, params *llm.Params, onDelta func(string)) (string, error) {
	text, err := c.Generate(ctx, prompt, params)
	if err != nil {
		return "", err
	}
	if onDelta != nil {
		onDelta(text)
	}
	return text, nil
}

func (c *fakeLLM) CountTokens(_ context.Context, text string) (int, error) {
	return llm.EstimateTokens(text), nil
}

func (c *fakeLLM) ModelInfo(_ context.Context) (llm.ModelInfo, error) {
	return llm.ModelInfo{Name: "fake", Provider: "fake", MaxTokens: 8192}, nil
}
