package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/inkwell-ai/inkwell-backend/internal/logger"
	"github.com/inkwell-ai/inkwell-backend/internal/pkg/apperr"
	"github.com/inkwell-ai/inkwell-backend/internal/platform/vectorstore"
	"github.com/inkwell-ai/inkwell-backend/internal/repos"
	"github.com/inkwell-ai/inkwell-backend/internal/segmenter"
)

// IngestionRequest describes one ingestion run over a notebook's sources.
type IngestionRequest struct {
	NotebookID     uuid.UUID `json:"notebook_id"`
	CollectionName string    `json:"collection_name"`
	ChunkSize      int       `json:"chunk_size"`
	Overlap        int       `json:"overlap"`
	ForceReingest  bool      `json:"force_reingest"`
}

type VectorIngestionService interface {
	// IngestNotebook segments every source of the notebook and upserts the
	// chunks into the vector store. Returns the total chunks upserted.
	IngestNotebook(ctx context.Context, req IngestionRequest) (int, error)
	DeleteNotebookVectors(ctx context.Context, notebookID uuid.UUID, collectionName string) (int, error)
}

type vectorIngestionService struct {
	log          *logger.Logger
	notebookRepo repos.NotebookRepo
	sourceRepo   repos.SourceRepo
	store        vectorstore.Store
}

func NewVectorIngestionService(
	baseLog *logger.Logger,
	notebookRepo repos.NotebookRepo,
	sourceRepo repos.SourceRepo,
	store vectorstore.Store,
) VectorIngestionService {
	serviceLog := baseLog.With("service", "VectorIngestionService")
	return &vectorIngestionService{
		log:          serviceLog,
		notebookRepo: notebookRepo,
		sourceRepo:   sourceRepo,
		store:        store,
	}
}

func (s *vectorIngestionService) IngestNotebook(ctx context.Context, req IngestionRequest) (int, error) {
	if err := validateIngestionRequest(req); err != nil {
		return 0, err
	}

	notebook, err := s.notebookRepo.GetByID(ctx, nil, req.NotebookID)
	if err != nil {
		return 0, fmt.Errorf("resolve notebook %s: %w", req.NotebookID, err)
	}

	if err := s.store.EnsureCollection(ctx, req.CollectionName, nil); err != nil {
		return 0, apperr.Backend("vectorstore", "ensure_collection", err)
	}

	if req.ForceReingest {
		deleted, err := s.DeleteNotebookVectors(ctx, req.NotebookID, req.CollectionName)
		if err != nil {
			return 0, err
		}
		s.log.Info("Deleted existing vectors before re-ingestion",
			"notebook_id", req.NotebookID, "deleted", deleted)
	}

	sources, err := s.sourceRepo.GetByNotebookID(ctx, nil, req.NotebookID)
	if err != nil {
		return 0, fmt.Errorf("list sources for notebook %s: %w", req.NotebookID, err)
	}

	total := 0
	for _, source := range sources {
		if source.ExtractedText == "" {
			s.log.Debug("Skipping source with no extracted text", "source_id", source.ID)
			continue
		}

		chunks, err := segmenter.Segment(source.ExtractedText, req.ChunkSize, req.Overlap)
		if err != nil {
			// One malformed source must not block the rest of the notebook.
			s.log.Warn("Segmentation failed, skipping source",
				"source_id", source.ID, "source_name", source.Name, "error", err)
			continue
		}

		docs := make([]vectorstore.Document, 0, len(chunks))
		for i, chunk := range chunks {
			docs = append(docs, vectorstore.Document{
				Text: chunk,
				Metadata: map[string]any{
					vectorstore.MetaNotebookID: req.NotebookID.String(),
					vectorstore.MetaSourceID:   source.ID.String(),
					vectorstore.MetaChunkIndex: i,
					vectorstore.MetaSourceName: source.Name,
					vectorstore.MetaSourceType: source.Type,
				},
			})
		}

		// A half-written notebook is worse than a clearly failed one, so an
		// upsert failure aborts the whole run.
		ids, err := s.store.UpsertDocuments(ctx, req.CollectionName, docs)
		if err != nil {
			return 0, apperr.Backend("vectorstore", "upsert", fmt.Errorf("source %s: %w", source.ID, err))
		}
		total += len(ids)
	}

	s.log.Info("Notebook ingestion complete",
		"notebook_id", req.NotebookID,
		"notebook_name", notebook.Name,
		"sources", len(sources),
		"chunks_ingested", total,
	)
	return total, nil
}

func (s *vectorIngestionService) DeleteNotebookVectors(ctx context.Context, notebookID uuid.UUID, collectionName string) (int, error) {
	deleted, err := s.store.DeleteDocuments(ctx, collectionName, map[string]any{
		vectorstore.MetaNotebookID: notebookID.String(),
	})
	if err != nil {
		return 0, apperr.Backend("vectorstore", "delete", err)
	}
	return deleted, nil
}

func validateIngestionRequest(req IngestionRequest) error {
	var fields []apperr.FieldError
	if req.NotebookID == uuid.Nil {
		fields = append(fields, apperr.Field("notebook_id", "required", "notebook_id is required"))
	}
	if req.CollectionName == "" {
		fields = append(fields, apperr.Field("collection_name", "required", "collection_name is required"))
	}
	if req.ChunkSize <= 0 {
		fields = append(fields, apperr.Field("chunk_size", "out_of_range", "chunk_size must be positive"))
	}
	if req.Overlap < 0 {
		fields = append(fields, apperr.Field("overlap", "out_of_range", "overlap must not be negative"))
	}
	if req.ChunkSize > 0 && req.Overlap >= req.ChunkSize {
		fields = append(fields, apperr.Field("overlap", "out_of_range", "overlap must be smaller than chunk_size"))
	}
	if len(fields) > 0 {
		return apperr.Validation(fields...)
	}
	return nil
}
