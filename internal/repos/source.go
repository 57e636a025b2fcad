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

type SourceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, source *types.Source) (*types.Source, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Source, error)
	GetByNotebookID(ctx context.Context, tx *gorm.DB, notebookID uuid.UUID) ([]*types.Source, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type sourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSourceRepo(db *gorm.DB, baseLog *logger.Logger) SourceRepo {
	repoLog := baseLog.With("repo", "SourceRepo")
	return &sourceRepo{db: db, log: repoLog}
}

func (r *sourceRepo) Create(ctx context.Context, tx *gorm.DB, source *types.Source) (*types.Source, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(source).Error; err != nil {
		return nil, err
	}
	return source, nil
}

func (r *sourceRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Source, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var source types.Source
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&source).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &source, nil
}

func (r *sourceRepo) GetByNotebookID(ctx context.Context, tx *gorm.DB, notebookID uuid.UUID) ([]*types.Source, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Source
	if err := transaction.WithContext(ctx).
		Where("notebook_id = ?", notebookID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sourceRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	result := transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Source{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
