package app

import (
	"github.com/inkwell-ai/inkwell-backend/internal/logger"
	"github.com/inkwell-ai/inkwell-backend/internal/platform/llm"
	"github.com/inkwell-ai/inkwell-backend/internal/platform/vectorstore"
	"github.com/inkwell-ai/inkwell-backend/internal/services"
)

type Services struct {
	VectorIngestion services.VectorIngestionService
	QuestionAnswer  services.QuestionAnswerService
	MindMap         services.MindMapService
}

func wireServices(
	log *logger.Logger,
	cfg Config,
	reposet Repos,
	store vectorstore.Store,
	llmClient llm.Client,
) Services {
	log.Info("Wiring services...")
	return Services{
		VectorIngestion: services.NewVectorIngestionService(log, reposet.Notebook, reposet.Source, store),
		QuestionAnswer:  services.NewQuestionAnswerService(log, reposet.Notebook, store, llmClient, cfg.CollectionName),
		MindMap:         services.NewMindMapService(log, reposet.Notebook, store, llmClient, cfg.CollectionName),
	}
}
