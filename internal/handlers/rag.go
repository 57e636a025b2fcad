package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/inkwell-ai/inkwell-backend/internal/logger"
	"github.com/inkwell-ai/inkwell-backend/internal/observability"
	"github.com/inkwell-ai/inkwell-backend/internal/platform/llm"
	"github.com/inkwell-ai/inkwell-backend/internal/platform/vectorstore"
	"github.com/inkwell-ai/inkwell-backend/internal/services"
)

type RAGHandler struct {
	log              *logger.Logger
	ingestionService services.VectorIngestionService
	qaService        services.QuestionAnswerService
	mindMapService   services.MindMapService
	store            vectorstore.Store
	collectionName   string
	defaultChunkSize int
	defaultOverlap   int
}

func NewRAGHandler(
	log *logger.Logger,
	ingestionService services.VectorIngestionService,
	qaService services.QuestionAnswerService,
	mindMapService services.MindMapService,
	store vectorstore.Store,
	collectionName string,
	defaultChunkSize int,
	defaultOverlap int,
) *RAGHandler {
	return &RAGHandler{
		log:              log.With("handler", "RAGHandler"),
		ingestionService: ingestionService,
		qaService:        qaService,
		mindMapService:   mindMapService,
		store:            store,
		collectionName:   collectionName,
		defaultChunkSize: defaultChunkSize,
		defaultOverlap:   defaultOverlap,
	}
}

// Pointers distinguish "absent, use the default" from an explicit zero.
type ingestRequest struct {
	ChunkSize     *int `json:"chunk_size"`
	Overlap       *int `json:"overlap"`
	ForceReingest bool `json:"force_reingest"`
}

// POST /api/notebooks/:id/ingest
func (h *RAGHandler) IngestNotebook(c *gin.Context) {
	notebookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	chunkSize := h.defaultChunkSize
	if req.ChunkSize != nil {
		chunkSize = *req.ChunkSize
	}
	overlap := h.defaultOverlap
	if req.Overlap != nil {
		overlap = *req.Overlap
	}

	count, err := h.ingestionService.IngestNotebook(c.Request.Context(), services.IngestionRequest{
		NotebookID:     notebookID,
		CollectionName: h.collectionName,
		ChunkSize:      chunkSize,
		Overlap:        overlap,
		ForceReingest:  req.ForceReingest,
	})
	if err != nil {
		observability.Current().ObserveIngestion("error", 0)
		RespondAppError(c, err)
		return
	}
	observability.Current().ObserveIngestion("success", count)
	RespondOK(c, gin.H{"notebook_id": notebookID, "chunks_ingested": count})
}

// DELETE /api/notebooks/:id/vectors
func (h *RAGHandler) DeleteNotebookVectors(c *gin.Context) {
	notebookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	deleted, err := h.ingestionService.DeleteNotebookVectors(c.Request.Context(), notebookID, h.collectionName)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"notebook_id": notebookID, "deleted": deleted})
}

// GET /api/notebooks/:id/vectors/count
func (h *RAGHandler) CountNotebookVectors(c *gin.Context) {
	notebookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	count, err := h.store.DocumentCount(c.Request.Context(), h.collectionName, map[string]any{
		vectorstore.MetaNotebookID: notebookID.String(),
	})
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"notebook_id": notebookID, "count": count})
}

type generateRequest struct {
	Query       string   `json:"query" binding:"required"`
	MaxResults  int      `json:"max_results"`
	Temperature *float64 `json:"temperature"`
	MaxTokens   *int     `json:"max_tokens"`
}

func (r generateRequest) params() *llm.Params {
	if r.Temperature == nil && r.MaxTokens == nil {
		return nil
	}
	return &llm.Params{Temperature: r.Temperature, MaxTokens: r.MaxTokens}
}

// POST /api/notebooks/:id/ask
func (h *RAGHandler) Ask(c *gin.Context) {
	notebookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	resp, err := h.qaService.Answer(c.Request.Context(), notebookID, req.Query, req.MaxResults, req.params())
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, resp)
}

// POST /api/notebooks/:id/mindmap
func (h *RAGHandler) MindMap(c *gin.Context) {
	notebookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	resp, err := h.mindMapService.Outline(c.Request.Context(), notebookID, req.Query, req.MaxResults, req.params())
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, resp)
}
