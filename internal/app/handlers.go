package app

import (
	"github.com/inkwell-ai/inkwell-backend/internal/handlers"
	"github.com/inkwell-ai/inkwell-backend/internal/logger"
	"github.com/inkwell-ai/inkwell-backend/internal/platform/vectorstore"
)

type Handlers struct {
	Notebook *handlers.NotebookHandler
	RAG      *handlers.RAGHandler
}

func wireHandlers(log *logger.Logger, cfg Config, reposet Repos, serviceset Services, store vectorstore.Store) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Notebook: handlers.NewNotebookHandler(log, reposet.Notebook, reposet.Source),
		RAG: handlers.NewRAGHandler(
			log,
			serviceset.VectorIngestion,
			serviceset.QuestionAnswer,
			serviceset.MindMap,
			store,
			cfg.CollectionName,
			cfg.DefaultChunkSize,
			cfg.DefaultOverlap,
		),
	}
}
