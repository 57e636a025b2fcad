package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-ai/inkwell-backend/internal/logger"
	"github.com/inkwell-ai/inkwell-backend/internal/pkg/apperr"
	"github.com/inkwell-ai/inkwell-backend/internal/platform/llm"
	"github.com/inkwell-ai/inkwell-backend/internal/platform/vectorstore"
	"github.com/inkwell-ai/inkwell-backend/internal/repos"
)

// SourceCitation identifies where a retrieved chunk came from. Fields default
// to zero values when the backend metadata is incomplete.
type SourceCitation struct {
	SourceID   string  `json:"source_id"`
	ChunkIndex int     `json:"chunk_index"`
	Relevance  float64 `json:"relevance"`
	SourceName string  `json:"source_name"`
	SourceType string  `json:"source_type"`
}

type GenerationResponse struct {
	QueryText        string           `json:"query_text"`
	GeneratedText    string           `json:"generated_text"`
	Sources          []SourceCitation `json:"sources"`
	ConfidenceScore  float64          `json:"confidence_score"`
	ProcessingTimeMs int64            `json:"processing_time_ms"`
}

// retrievalCore is the shared shape of the question-answering and mind-map
// orchestrators: resolve notebook, query the vector store scoped by notebook,
// build a grounded prompt, generate, score confidence.
type retrievalCore struct {
	log            *logger.Logger
	notebookRepo   repos.NotebookRepo
	store          vectorstore.Store
	llm            llm.Client
	collectionName string
}

// retrieve runs the notebook-scoped similarity query. Zero results is a
// defined failure: generating from no context would be ungrounded.
func (c *retrievalCore) retrieve(ctx context.Context, notebookID uuid.UUID, queryText string, maxResults int) ([]vectorstore.SearchResult, error) {
	if strings.TrimSpace(queryText) == "" {
		return nil, apperr.Validation(apperr.Field("query_text", "required", "query text is required"))
	}
	if maxResults <= 0 {
		maxResults = 5
	}

	if _, err := c.notebookRepo.GetByID(ctx, nil, notebookID); err != nil {
		return nil, fmt.Errorf("resolve notebook %s: %w", notebookID, err)
	}

	results, err := c.store.QuerySimilarity(ctx, c.collectionName, queryText, maxResults, map[string]any{
		vectorstore.MetaNotebookID: notebookID.String(),
	})
	if err != nil {
		return nil, apperr.Backend("vectorstore", "query", err)
	}
	if len(results) == 0 {
		return nil, apperr.ErrNoRelevantContent
	}
	return results, nil
}

func (c *retrievalCore) generate(ctx context.Context, prompt string, params *llm.Params) (string, error) {
	text, err := c.llm.Generate(ctx, prompt, params)
	if err != nil {
		return "", apperr.Backend("llm", "generate", err)
	}
	return text, nil
}

// citationsFromResults maps retrieved chunks into typed citations, pulling
// traceability fields out of metadata with zero-value defaults when absent.
func citationsFromResults(results []vectorstore.SearchResult) []SourceCitation {
	citations := make([]SourceCitation, 0, len(results))
	for _, r := range results {
		citations = append(citations, SourceCitation{
			SourceID:   metaString(r.Metadata, vectorstore.MetaSourceID),
			ChunkIndex: metaInt(r.Metadata, vectorstore.MetaChunkIndex),
			Relevance:  r.Relevance(),
			SourceName: metaString(r.Metadata, vectorstore.MetaSourceName),
			SourceType: metaString(r.Metadata, vectorstore.MetaSourceType),
		})
	}
	return citations
}

// contextBlock renders retrieved chunks as a numbered list the prompt and the
// model's [n] citations both refer to.
func contextBlock(results []vectorstore.SearchResult) string {
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "[%d] %s\n\n", i+1, strings.TrimSpace(r.Text))
	}
	return strings.TrimRight(b.String(), "\n")
}

// confidenceScore combines average relevance with a source-count factor:
// agreement across independent chunks is itself evidence, so more sources
// raise confidence even at unchanged individual relevance.
// fullCoverageCount is the source count at which the factor saturates.
func confidenceScore(relevances []float64, fullCoverageCount int) float64 {
	if len(relevances) == 0 {
		return 0
	}
	var sum float64
	for _, r := range relevances {
		sum += r
	}
	avg := sum / float64(len(relevances))

	factor := float64(len(relevances)) / float64(fullCoverageCount)
	if factor > 1 {
		factor = 1
	}

	score := avg * factor
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func buildResponse(queryText, generatedText string, citations []SourceCitation, fullCoverageCount int, started time.Time) *GenerationResponse {
	relevances := make([]float64, 0, len(citations))
	for _, c := range citations {
		relevances = append(relevances, c.Relevance)
	}
	return &GenerationResponse{
		QueryText:        queryText,
		GeneratedText:    generatedText,
		Sources:          citations,
		ConfidenceScore:  confidenceScore(relevances, fullCoverageCount),
		ProcessingTimeMs: time.Since(started).Milliseconds(),
	}
}

func metaString(metadata map[string]any, key string) string {
	if v, ok := metadata[key].(string); ok {
		return v
	}
	return ""
}

func metaInt(metadata map[string]any, key string) int {
	switch v := metadata[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
