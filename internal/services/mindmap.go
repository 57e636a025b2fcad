package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-ai/inkwell-backend/internal/logger"
	"github.com/inkwell-ai/inkwell-backend/internal/platform/llm"
	"github.com/inkwell-ai/inkwell-backend/internal/platform/vectorstore"
	"github.com/inkwell-ai/inkwell-backend/internal/repos"
)

// mindMapFullCoverage is higher than the QA factor: an outline spanning a
// whole topic needs broader corroboration before confidence saturates.
const mindMapFullCoverage = 5

type MindMapService interface {
	// Outline retrieves notebook-scoped context for the topic and generates
	// a hierarchical markdown outline grounded in it.
	Outline(ctx context.Context, notebookID uuid.UUID, topic string, maxResults int, params *llm.Params) (*GenerationResponse, error)
}

type mindMapService struct {
	retrievalCore
}

func NewMindMapService(
	baseLog *logger.Logger,
	notebookRepo repos.NotebookRepo,
	store vectorstore.Store,
	llmClient llm.Client,
	collectionName string,
) MindMapService {
	serviceLog := baseLog.With("service", "MindMapService")
	return &mindMapService{
		retrievalCore: retrievalCore{
			log:            serviceLog,
			notebookRepo:   notebookRepo,
			store:          store,
			llm:            llmClient,
			collectionName: collectionName,
		},
	}
}

func (s *mindMapService) Outline(ctx context.Context, notebookID uuid.UUID, topic string, maxResults int, params *llm.Params) (*GenerationResponse, error) {
	started := time.Now()

	results, err := s.retrieve(ctx, notebookID, topic, maxResults)
	if err != nil {
		return nil, err
	}

	prompt := buildOutlinePrompt(topic, results)
	if params == nil {
		// A bit more temperature than QA; structure benefits from variation.
		params = &llm.Params{
			Temperature: llm.Float64(0.5),
			MaxTokens:   llm.Int(2048),
		}
	}

	outline, err := s.generate(ctx, prompt, params)
	if err != nil {
		return nil, fmt.Errorf("failed to generate outline: %w", err)
	}

	citations := citationsFromResults(results)
	resp := buildResponse(topic, outline, citations, mindMapFullCoverage, started)
	s.log.Info("Mind map outline generated",
		"notebook_id", notebookID,
		"sources", len(citations),
		"confidence", resp.ConfidenceScore,
		"elapsed_ms", resp.ProcessingTimeMs,
	)
	return resp, nil
}

func buildOutlinePrompt(topic string, results []vectorstore.SearchResult) string {
	return fmt.Sprintf(`Build a hierarchical mind-map outline for the topic below using only the numbered context excerpts.
Use markdown headings: "#" for the central topic, "##" for main branches, "###" for sub-branches, and "-" bullets for leaves.
Cover every excerpt that is relevant; omit anything the context does not support.

Context:
%s

Topic: %s

Outline:`, contextBlock(results), topic)
}
