package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/inkwell-ai/inkwell-backend/internal/logger"
	"github.com/inkwell-ai/inkwell-backend/internal/repos"
	"github.com/inkwell-ai/inkwell-backend/internal/types"
)

type NotebookHandler struct {
	log          *logger.Logger
	notebookRepo repos.NotebookRepo
	sourceRepo   repos.SourceRepo
}

func NewNotebookHandler(log *logger.Logger, notebookRepo repos.NotebookRepo, sourceRepo repos.SourceRepo) *NotebookHandler {
	return &NotebookHandler{
		log:          log.With("handler", "NotebookHandler"),
		notebookRepo: notebookRepo,
		sourceRepo:   sourceRepo,
	}
}

type createNotebookRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// POST /api/notebooks
func (h *NotebookHandler) CreateNotebook(c *gin.Context) {
	var req createNotebookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	notebook, err := h.notebookRepo.Create(c.Request.Context(), nil, &types.Notebook{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, notebook)
}

// GET /api/notebooks
func (h *NotebookHandler) ListNotebooks(c *gin.Context) {
	notebooks, err := h.notebookRepo.List(c.Request.Context(), nil)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, notebooks)
}

// GET /api/notebooks/:id
func (h *NotebookHandler) GetNotebook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	notebook, err := h.notebookRepo.GetByID(c.Request.Context(), nil, id)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, notebook)
}

// DELETE /api/notebooks/:id
func (h *NotebookHandler) DeleteNotebook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := h.notebookRepo.Delete(c.Request.Context(), nil, id); err != nil {
		RespondAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type createSourceRequest struct {
	Name          string `json:"name" binding:"required"`
	Type          string `json:"type"`
	ExtractedText string `json:"extracted_text"`
}

// POST /api/notebooks/:id/sources
func (h *NotebookHandler) CreateSource(c *gin.Context) {
	notebookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req createSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if _, err := h.notebookRepo.GetByID(c.Request.Context(), nil, notebookID); err != nil {
		RespondAppError(c, err)
		return
	}
	sourceType := req.Type
	if sourceType == "" {
		sourceType = "text"
	}
	source, err := h.sourceRepo.Create(c.Request.Context(), nil, &types.Source{
		ID:            uuid.New(),
		NotebookID:    notebookID,
		Name:          req.Name,
		Type:          sourceType,
		ExtractedText: req.ExtractedText,
	})
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, source)
}

// GET /api/notebooks/:id/sources
func (h *NotebookHandler) ListSources(c *gin.Context) {
	notebookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if _, err := h.notebookRepo.GetByID(c.Request.Context(), nil, notebookID); err != nil {
		RespondAppError(c, err)
		return
	}
	sources, err := h.sourceRepo.GetByNotebookID(c.Request.Context(), nil, notebookID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, sources)
}

// DELETE /api/sources/:id
func (h *NotebookHandler) DeleteSource(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := h.sourceRepo.Delete(c.Request.Context(), nil, id); err != nil {
		RespondAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
