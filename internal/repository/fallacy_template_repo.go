package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ctroy978/umadex-sub002/internal/models"
)

// FallacyTemplateRepository defines data operations for the fallacy catalog.
type FallacyTemplateRepository interface {
	ListActive(ctx context.Context, maxDifficulty int) ([]models.FallacyTemplate, error)
	GetByType(ctx context.Context, fallacyType string) (models.FallacyTemplate, error)
	UpsertBatch(ctx context.Context, templates []models.FallacyTemplate) (int64, error)
}

type fallacyTemplateRepository struct {
	db *gorm.DB
}

// NewFallacyTemplateRepository instantiates the repository.
func NewFallacyTemplateRepository(db *gorm.DB) FallacyTemplateRepository {
	return &fallacyTemplateRepository{db: db}
}

func (r *fallacyTemplateRepository) ListActive(ctx context.Context, maxDifficulty int) ([]models.FallacyTemplate, error) {
	query := r.db.WithContext(ctx).Where("active = ?", true)
	if maxDifficulty > 0 {
		query = query.Where("difficulty <= ?", maxDifficulty)
	}

	var templates []models.FallacyTemplate
	if err := query.Order("fallacy_type ASC").Find(&templates).Error; err != nil {
		return nil, err
	}

	return templates, nil
}

func (r *fallacyTemplateRepository) GetByType(ctx context.Context, fallacyType string) (models.FallacyTemplate, error) {
	var template models.FallacyTemplate
	if err := r.db.WithContext(ctx).Where("fallacy_type = ?", fallacyType).First(&template).Error; err != nil {
		return models.FallacyTemplate{}, err
	}

	return template, nil
}

func (r *fallacyTemplateRepository) UpsertBatch(ctx context.Context, templates []models.FallacyTemplate) (int64, error) {
	if len(templates) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "fallacy_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "description", "difficulty", "topic_keywords", "active"}),
	}).Create(&templates)

	return result.RowsAffected, result.Error
}
