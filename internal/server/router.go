package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/inkwell-ai/inkwell-backend/internal/handlers"
	"github.com/inkwell-ai/inkwell-backend/internal/utils"
)

type RouterConfig struct {
	NotebookHandler *handlers.NotebookHandler
	RAGHandler      *handlers.RAGHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(RequestObservability())

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)
	router.GET("/metrics", handlers.Metrics)

	api := router.Group("/api")
	{
		// Notebooks and sources
		api.POST("/notebooks", cfg.NotebookHandler.CreateNotebook)
		api.GET("/notebooks", cfg.NotebookHandler.ListNotebooks)
		api.GET("/notebooks/:id", cfg.NotebookHandler.GetNotebook)
		api.DELETE("/notebooks/:id", cfg.NotebookHandler.DeleteNotebook)
		api.POST("/notebooks/:id/sources", cfg.NotebookHandler.CreateSource)
		api.GET("/notebooks/:id/sources", cfg.NotebookHandler.ListSources)
		api.DELETE("/sources/:id", cfg.NotebookHandler.DeleteSource)

		// RAG pipeline
		api.POST("/notebooks/:id/ingest", cfg.RAGHandler.IngestNotebook)
		api.DELETE("/notebooks/:id/vectors", cfg.RAGHandler.DeleteNotebookVectors)
		api.GET("/notebooks/:id/vectors/count", cfg.RAGHandler.CountNotebookVectors)
		api.POST("/notebooks/:id/ask", cfg.RAGHandler.Ask)
		api.POST("/notebooks/:id/mindmap", cfg.RAGHandler.MindMap)
	}

	return router
}

func allowedOrigins() []string {
	raw := utils.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://localhost:5173", nil)
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
