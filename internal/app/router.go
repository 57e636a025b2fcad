package app

import (
	"github.com/gin-gonic/gin"

	"github.com/inkwell-ai/inkwell-backend/internal/server"
)

func wireRouter(handlerset Handlers) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		NotebookHandler: handlerset.Notebook,
		RAGHandler:      handlerset.RAG,
	})
}
