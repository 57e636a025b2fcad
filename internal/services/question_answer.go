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

// qaFullCoverage is the number of corroborating chunks at which the
// confidence source-count factor saturates for question answering.
const qaFullCoverage = 3

type QuestionAnswerService interface {
	// Answer retrieves notebook-scoped context for the question, generates a
	// grounded answer citing chunks as [n], and scores confidence.
	Answer(ctx context.Context, notebookID uuid.UUID, question string, maxResults int, params *llm.Params) (*GenerationResponse, error)
}

type questionAnswerService struct {
	retrievalCore
}

func NewQuestionAnswerService(
	baseLog *logger.Logger,
	notebookRepo repos.NotebookRepo,
	store vectorstore.Store,
	llmClient llm.Client,
	collectionName string,
) QuestionAnswerService {
	serviceLog := baseLog.With("service", "QuestionAnswerService")
	return &questionAnswerService{
		retrievalCore: retrievalCore{
			log:            serviceLog,
			notebookRepo:   notebookRepo,
			store:          store,
			llm:            llmClient,
			collectionName: collectionName,
		},
	}
}

func (s *questionAnswerService) Answer(ctx context.Context, notebookID uuid.UUID, question string, maxResults int, params *llm.Params) (*GenerationResponse, error) {
	started := time.Now()

	results, err := s.retrieve(ctx, notebookID, question, maxResults)
	if err != nil {
		return nil, err
	}

	prompt := buildQuestionPrompt(question, results)
	if params == nil {
		// Low temperature keeps answers close to the retrieved text.
		params = &llm.Params{
			Temperature: llm.Float64(0.2),
			MaxTokens:   llm.Int(1024),
		}
	}

	answer, err := s.generate(ctx, prompt, params)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	citations := citationsFromResults(results)
	resp := buildResponse(question, answer, citations, qaFullCoverage, started)
	s.log.Info("Question answered",
		"notebook_id", notebookID,
		"sources", len(citations),
		"confidence", resp.ConfidenceScore,
		"elapsed_ms", resp.ProcessingTimeMs,
	)
	return resp, nil
}

func buildQuestionPrompt(question string, results []vectorstore.SearchResult) string {
	return fmt.Sprintf(`You are answering a question using only the numbered context excerpts below.
If the context does not contain the answer, say so instead of guessing.
Cite the excerpts you used as [1], [2], and so on.

Context:
%s

Question: %s

Answer:`, contextBlock(results), question)
}
