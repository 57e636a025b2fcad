package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkwell-ai/inkwell-backend/internal/logger"
	"github.com/inkwell-ai/inkwell-backend/internal/pkg/apperr"
	"github.com/inkwell-ai/inkwell-backend/internal/types"
)

type NotebookRepo interface {
	Create(ctx context.Context, tx *gorm.DB, notebook *types.Notebook) (*types.Notebook, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Notebook, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Notebook, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type notebookRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNotebookRepo(db *gorm.DB, baseLog *logger.Logger) NotebookRepo {
	repoLog := baseLog.With("repo", "NotebookRepo")
	return &notebookRepo{db: db, log: repoLog}
}

func (r *notebookRepo) Create(ctx context.Context, tx *gorm.DB, notebook *types.Notebook) (*types.Notebook, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(notebook).Error; err != nil {
		return nil, err
	}
	return notebook, nil
}

func (r *notebookRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Notebook, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var notebook types.Notebook
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&notebook).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &notebook, nil
}

func (r *notebookRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Notebook, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Notebook
	if err := transaction.WithContext(ctx).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *notebookRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	result := transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Notebook{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
