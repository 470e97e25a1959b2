package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ctroy978/umadex-sub002/internal/models"
)

// RoundFeedbackRepository defines data operations for coaching feedback notes.
type RoundFeedbackRepository interface {
	Create(ctx context.Context, feedback *models.DebateRoundFeedback) error
	GetByDebate(ctx context.Context, studentDebateID uint, debateNumber int) (models.DebateRoundFeedback, error)
	ListBySession(ctx context.Context, studentDebateID uint) ([]models.DebateRoundFeedback, error)
}

type roundFeedbackRepository struct {
	db *gorm.DB
}

// NewRoundFeedbackRepository instantiates the repository.
func NewRoundFeedbackRepository(db *gorm.DB) RoundFeedbackRepository {
	return &roundFeedbackRepository{db: db}
}

func (r *roundFeedbackRepository) Create(ctx context.Context, feedback *models.DebateRoundFeedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

func (r *roundFeedbackRepository) GetByDebate(ctx context.Context, studentDebateID uint, debateNumber int) (models.DebateRoundFeedback, error) {
	var feedback models.DebateRoundFeedback
	if err := r.db.WithContext(ctx).
		Where("student_debate_id = ?", studentDebateID).
		Where("debate_number = ?", debateNumber).
		First(&feedback).Error; err != nil {
		return models.DebateRoundFeedback{}, err
	}

	return feedback, nil
}

func (r *roundFeedbackRepository) ListBySession(ctx context.Context, studentDebateID uint) ([]models.DebateRoundFeedback, error) {
	var feedbacks []models.DebateRoundFeedback
	if err := r.db.WithContext(ctx).
		Where("student_debate_id = ?", studentDebateID).
		Order("debate_number ASC").
		Find(&feedbacks).Error; err != nil {
		return nil, err
	}

	return feedbacks, nil
}
