package app

import (
	"gorm.io/gorm"

	"github.com/inkwell-ai/inkwell-backend/internal/logger"
	"github.com/inkwell-ai/inkwell-backend/internal/repos"
)

type Repos struct {
	Notebook repos.NotebookRepo
	Source   repos.SourceRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Notebook: repos.NewNotebookRepo(db, log),
		Source:   repos.NewSourceRepo(db, log),
	}
}
