package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/inkwell-ai/inkwell-backend/internal/logger"
	"github.com/inkwell-ai/inkwell-backend/internal/pkg/apperr"
	"github.com/inkwell-ai/inkwell-backend/internal/platform/vectorstore"
	"github.com/inkwell-ai/inkwell-backend/internal/types"
)

const ingestSentence = "The quick brown fox jumps over the lazy dog near the river bank. "

func newIngestionFixture(notebooks ...*types.Notebook) (*fakeNotebookRepo, *fakeSourceRepo, *fakeStore, VectorIngestionService) {
	notebookRepo := newFakeNotebookRepo(notebooks...)
	sourceRepo := &fakeSourceRepo{}
	store := newFakeStore()
	svc := NewVectorIngestionService(logger.NewNop(), notebookRepo, sourceRepo, store)
	return notebookRepo, sourceRepo, store, svc
}

func TestIngestNotebookZeroSourcesCreatesCollection(t *testing.T) {
	notebook := &types.Notebook{ID: uuid.New(), Name: "empty"}
	_, _, store, svc := newIngestionFixture(notebook)

	count, err := svc.IngestNotebook(context.Background(), IngestionRequest{
		NotebookID:     notebook.ID,
		CollectionName: "chunks",
		ChunkSize:      1000,
		Overlap:        200,
	})
	if err != nil {
		t.Fatalf("IngestNotebook: %v", err)
	}
	if count != 0 {
		t.Fatalf("chunks ingested: want=0 got=%d", count)
	}
	if !store.collections["chunks"] {
		t.Fatalf("collection should have been created")
	}
}

func TestIngestNotebookChunkMetadataAndCount(t *testing.T) {
	notebook := &types.Notebook{ID: uuid.New(), Name: "physics"}
	_, sourceRepo, store, svc := newIngestionFixture(notebook)

	source := &types.Source{
		ID:            uuid.New(),
		NotebookID:    notebook.ID,
		Name:          "notes.txt",
		Type:          "text",
		ExtractedText: strings.Repeat(ingestSentence, 39),
	}
	sourceRepo.sources = append(sourceRepo.sources, source)

	count, err := svc.IngestNotebook(context.Background(), IngestionRequest{
		NotebookID:     notebook.ID,
		CollectionName: "chunks",
		ChunkSize:      1000,
		Overlap:        200,
	})
	if err != nil {
		t.Fatalf("IngestNotebook: %v", err)
	}
	if count != 3 {
		t.Fatalf("chunks ingested: want=3 got=%d", count)
	}
	if len(store.docs) != 3 {
		t.Fatalf("stored docs: want=3 got=%d", len(store.docs))
	}
	for i, doc := range store.docs {
		if got := doc.Metadata[vectorstore.MetaNotebookID]; got != notebook.ID.String() {
			t.Fatalf("doc %d notebook_id: want=%s got=%v", i, notebook.ID, got)
		}
		if got := doc.Metadata[vectorstore.MetaSourceID]; got != source.ID.String() {
			t.Fatalf("doc %d source_id: want=%s got=%v", i, source.ID, got)
		}
		if got := doc.Metadata[vectorstore.MetaChunkIndex]; got != i {
			t.Fatalf("doc %d chunk_index: want=%d got=%v", i, i, got)
		}
		if got := doc.Metadata[vectorstore.MetaSourceName]; got != "notes.txt" {
			t.Fatalf("doc %d source_name: want=notes.txt got=%v", i, got)
		}
	}
}

func TestIngestNotebookSkipsEmptyAndUnsegmentableSources(t *testing.T) {
	notebook := &types.Notebook{ID: uuid.New(), Name: "mixed"}
	_, sourceRepo, store, svc := newIngestionFixture(notebook)

	sourceRepo.sources = append(sourceRepo.sources,
		&types.Source{ID: uuid.New(), NotebookID: notebook.ID, Name: "empty.txt", Type: "text"},
		&types.Source{ID: uuid.New(), NotebookID: notebook.ID, Name: "blank.txt", Type: "text", ExtractedText: "   \n\t  "},
		&types.Source{ID: uuid.New(), NotebookID: notebook.ID, Name: "good.txt", Type: "text", ExtractedText: "A short note that fits one chunk."},
	)

	count, err := svc.IngestNotebook(context.Background(), IngestionRequest{
		NotebookID:     notebook.ID,
		CollectionName: "chunks",
		ChunkSize:      1000,
		Overlap:        200,
	})
	if err != nil {
		t.Fatalf("IngestNotebook: %v", err)
	}
	if count != 1 {
		t.Fatalf("chunks ingested: want=1 got=%d", count)
	}
	if len(store.docs) != 1 || store.docs[0].Metadata[vectorstore.MetaSourceName] != "good.txt" {
		t.Fatalf("only the segmentable source should be stored, got %+v", store.docs)
	}
}

func TestIngestNotebookForceReingestDeletesFirst(t *testing.T) {
	notebook := &types.Notebook{ID: uuid.New(), Name: "refresh"}
	_, sourceRepo, store, svc := newIngestionFixture(notebook)

	// Stale vectors from an earlier run.
	store.docs = []vectorstore.Document{
		{ID: "old-0", Text: "stale", Metadata: map[string]any{vectorstore.MetaNotebookID: notebook.ID.String()}},
		{ID: "old-1", Text: "stale", Metadata: map[string]any{vectorstore.MetaNotebookID: notebook.ID.String()}},
	}
	sourceRepo.sources = append(sourceRepo.sources, &types.Source{
		ID:            uuid.New(),
		NotebookID:    notebook.ID,
		Name:          "fresh.txt",
		Type:          "text",
		ExtractedText: "Fresh content replacing the stale vectors.",
	})

	count, err := svc.IngestNotebook(context.Background(), IngestionRequest{
		NotebookID:     notebook.ID,
		CollectionName: "chunks",
		ChunkSize:      1000,
		Overlap:        200,
		ForceReingest:  true,
	})
	if err != nil {
		t.Fatalf("IngestNotebook: %v", err)
	}
	if store.deleteCalls != 1 {
		t.Fatalf("delete calls: want=1 got=%d", store.deleteCalls)
	}
	if count != 1 {
		t.Fatalf("chunks ingested: want=1 got=%d", count)
	}
	if len(store.docs) != 1 {
		t.Fatalf("post-ingestion docs: want=1 got=%d", len(store.docs))
	}
}

func TestIngestNotebookWithoutForceKeepsExistingVectors(t *testing.T) {
	notebook := &types.Notebook{ID: uuid.New(), Name: "append"}
	_, _, store, svc := newIngestionFixture(notebook)

	store.docs = []vectorstore.Document{
		{ID: "old-0", Text: "existing", Metadata: map[string]any{vectorstore.MetaNotebookID: notebook.ID.String()}},
	}

	if _, err := svc.IngestNotebook(context.Background(), IngestionRequest{
		NotebookID:     notebook.ID,
		CollectionName: "chunks",
		ChunkSize:      1000,
		Overlap:        200,
	}); err != nil {
		t.Fatalf("IngestNotebook: %v", err)
	}
	if store.deleteCalls != 0 {
		t.Fatalf("delete calls: want=0 got=%d", store.deleteCalls)
	}
	if len(store.docs) != 1 {
		t.Fatalf("existing docs should be untouched, got %d", len(store.docs))
	}
}

func TestIngestNotebookNotFound(t *testing.T) {
	_, _, _, svc := newIngestionFixture()

	_, err := svc.IngestNotebook(context.Background(), IngestionRequest{
		NotebookID:     uuid.New(),
		CollectionName: "chunks",
		ChunkSize:      1000,
		Overlap:        200,
	})
	if !apperr.IsNotFound(err) {
		t.Fatalf("want not-found error, got %v", err)
	}
}

func TestIngestNotebookValidation(t *testing.T) {
	notebook := &types.Notebook{ID: uuid.New(), Name: "valid"}
	_, _, _, svc := newIngestionFixture(notebook)

	cases := []struct {
		name  string
		req   IngestionRequest
		field string
	}{
		{"missing notebook id", IngestionRequest{CollectionName: "c", ChunkSize: 100}, "notebook_id"},
		{"missing collection", IngestionRequest{NotebookID: notebook.ID, ChunkSize: 100}, "collection_name"},
		{"zero chunk size", IngestionRequest{NotebookID: notebook.ID, CollectionName: "c"}, "chunk_size"},
		{"negative overlap", IngestionRequest{NotebookID: notebook.ID, CollectionName: "c", ChunkSize: 100, Overlap: -1}, "overlap"},
		{"overlap equals chunk size", IngestionRequest{NotebookID: notebook.ID, CollectionName: "c", ChunkSize: 100, Overlap: 100}, "overlap"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.IngestNotebook(context.Background(), tc.req)
			if !apperr.IsValidation(err) {
				t.Fatalf("want validation error, got %v", err)
			}
			var vErr *apperr.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("want *ValidationError, got %T", err)
			}
			found := false
			for _, f := range vErr.Fields {
				if f.Field == tc.field {
					found = true
				}
			}
			if !found {
				t.Fatalf("want field %q in %+v", tc.field, vErr.Fields)
			}
		})
	}
}

func TestIngestNotebookUpsertFailureAborts(t *testing.T) {
	notebook := &types.Notebook{ID: uuid.New(), Name: "failing"}
	_, sourceRepo, store, svc := newIngestionFixture(notebook)

	sourceRepo.sources = append(sourceRepo.sources, &types.Source{
		ID:            uuid.New(),
		NotebookID:    notebook.ID,
		Name:          "doc.txt",
		Type:          "text",
		ExtractedText: "Some content to ingest.",
	})
	store.upsertErr = errors.New("connection refused")

	_, err := svc.IngestNotebook(context.Background(), IngestionRequest{
		NotebookID:     notebook.ID,
		CollectionName: "chunks",
		ChunkSize:      1000,
		Overlap:        200,
	})
	if err == nil {
		t.Fatalf("want error on upsert failure")
	}
	var bErr *apperr.BackendError
	if !errors.As(err, &bErr) || bErr.Op != "upsert" {
		t.Fatalf("want backend upsert error, got %v", err)
	}
}

func TestIngestNotebookEnsureCollectionFailureAborts(t *testing.T) {
	notebook := &types.Notebook{ID: uuid.New(), Name: "failing"}
	_, _, store, svc := newIngestionFixture(notebook)
	store.ensureErr = errors.New("schema service down")

	_, err := svc.IngestNotebook(context.Background(), IngestionRequest{
		NotebookID:     notebook.ID,
		CollectionName: "chunks",
		ChunkSize:      1000,
		Overlap:        200,
	})
	if err == nil {
		t.Fatalf("want error on ensure-collection failure")
	}
}

func TestDeleteNotebookVectors(t *testing.T) {
	notebook := &types.Notebook{ID: uuid.New(), Name: "cleanup"}
	other := uuid.New()
	_, _, store, svc := newIngestionFixture(notebook)

	store.docs = []vectorstore.Document{
		{ID: "a", Metadata: map[string]any{vectorstore.MetaNotebookID: notebook.ID.String()}},
		{ID: "b", Metadata: map[string]any{vectorstore.MetaNotebookID: notebook.ID.String()}},
		{ID: "c", Metadata: map[string]any{vectorstore.MetaNotebookID: other.String()}},
	}

	deleted, err := svc.DeleteNotebookVectors(context.Background(), notebook.ID, "chunks")
	if err != nil {
		t.Fatalf("DeleteNotebookVectors: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("deleted: want=2 got=%d", deleted)
	}
	if len(store.docs) != 1 || store.docs[0].ID != "c" {
		t.Fatalf("other notebook's vectors must survive, got %+v", store.docs)
	}
}
