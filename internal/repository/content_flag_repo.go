package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ctroy978/umadex-sub002/internal/models"
)

// ContentFlagFilter narrows flag queue queries.
type ContentFlagFilter struct {
	Status    *models.FlagStatus
	StudentID *uint
	Page      int
	PageSize  int
}

// ContentFlagRepository defines data operations for moderation flags.
type ContentFlagRepository interface {
	Create(ctx context.Context, flag *models.ContentFlag) error
	GetByID(ctx context.Context, id uint) (models.ContentFlag, error)
	List(ctx context.Context, filter ContentFlagFilter) ([]models.ContentFlag, int64, error)
	Update(ctx context.Context, flag *models.ContentFlag) error
	PendingForPost(ctx context.Context, postID uint) (bool, error)
}

type contentFlagRepository struct {
	db *gorm.DB
}

// NewContentFlagRepository instantiates the repository.
func NewContentFlagRepository(db *gorm.DB) ContentFlagRepository {
	return &contentFlagRepository{db: db}
}

func (r *contentFlagRepository) Create(ctx context.Context, flag *models.ContentFlag) error {
	return r.db.WithContext(ctx).Create(flag).Error
}

func (r *contentFlagRepository) GetByID(ctx context.Context, id uint) (models.ContentFlag, error) {
	var flag models.ContentFlag
	if err := r.db.WithContext(ctx).First(&flag, id).Error; err != nil {
		return models.ContentFlag{}, err
	}

	return flag, nil
}

func (r *contentFlagRepository) List(ctx context.Context, filter ContentFlagFilter) ([]models.ContentFlag, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ContentFlag{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var flags []models.ContentFlag
	if err := query.Order("created_at DESC").Find(&flags).Error; err != nil {
		return nil, 0, err
	}

	return flags, total, nil
}

func (r *contentFlagRepository) Update(ctx context.Context, flag *models.ContentFlag) error {
	return r.db.WithContext(ctx).Save(flag).Error
}

func (r *contentFlagRepository) PendingForPost(ctx context.Context, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ContentFlag{}).
		Where("post_id = ?", postID).
		Where("status = ?", models.FlagStatusPending).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}
