package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ctroy978/umadex-sub002/internal/models"
)

// OverrideCodeRepository defines data operations for deadline override codes
// and permanent teacher bypass phrases.
type OverrideCodeRepository interface {
	Create(ctx context.Context, code *models.OverrideCode) error
	GetByCode(ctx context.Context, code string) (models.OverrideCode, error)
	// Redeem marks the code used if and only if it is still unredeemed; the
	// single-use guarantee lives in this conditional update.
	Redeem(ctx context.Context, id uint, at time.Time) error
	GetBypassByTeacher(ctx context.Context, teacherID uint) (models.TeacherBypass, error)
	SaveBypass(ctx context.Context, bypass *models.TeacherBypass) error
}

type overrideCodeRepository struct {
	db *gorm.DB
}

// NewOverrideCodeRepository instantiates the repository.
func NewOverrideCodeRepository(db *gorm.DB) OverrideCodeRepository {
	return &overrideCodeRepository{db: db}
}

func (r *overrideCodeRepository) Create(ctx context.Context, code *models.OverrideCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *overrideCodeRepository) GetByCode(ctx context.Context, code string) (models.OverrideCode, error) {
	var record models.OverrideCode
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&record).Error; err != nil {
		return models.OverrideCode{}, err
	}

	return record, nil
}

func (r *overrideCodeRepository) Redeem(ctx context.Context, id uint, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.OverrideCode{}).
		Where("id = ?", id).
		Where("redeemed_at IS NULL").
		Update("redeemed_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *overrideCodeRepository) GetBypassByTeacher(ctx context.Context, teacherID uint) (models.TeacherBypass, error) {
	var bypass models.TeacherBypass
	if err := r.db.WithContext(ctx).Where("teacher_id = ?", teacherID).First(&bypass).Error; err != nil {
		return models.TeacherBypass{}, err
	}

	return bypass, nil
}

func (r *overrideCodeRepository) SaveBypass(ctx context.Context, bypass *models.TeacherBypass) error {
	return r.db.WithContext(ctx).Save(bypass).Error
}
