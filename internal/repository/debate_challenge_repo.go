package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ctroy978/umadex-sub002/internal/models"
)

// DebateChallengeRepository defines data operations for fallacy challenges.
type DebateChallengeRepository interface {
	Create(ctx context.Context, challenge *models.DebateChallenge) error
	ListBySession(ctx context.Context, studentDebateID uint) ([]models.DebateChallenge, error)
	HasCorrectForPost(ctx context.Context, postID, studentID uint) (bool, error)
	SumPointsForDebate(ctx context.Context, studentDebateID uint, debateNumber int) (float64, error)
	SumPointsForRound(ctx context.Context, studentDebateID uint, debateNumber, roundNumber int) (float64, error)
}

type debateChallengeRepository struct {
	db *gorm.DB
}

// NewDebateChallengeRepository instantiates the repository.
func NewDebateChallengeRepository(db *gorm.DB) DebateChallengeRepository {
	return &debateChallengeRepository{db: db}
}

func (r *debateChallengeRepository) Create(ctx context.Context, challenge *models.DebateChallenge) error {
	return r.db.WithContext(ctx).Create(challenge).Error
}

func (r *debateChallengeRepository) ListBySession(ctx context.Context, studentDebateID uint) ([]models.DebateChallenge, error) {
	var challenges []models.DebateChallenge
	if err := r.db.WithContext(ctx).
		Where("student_debate_id = ?", studentDebateID).
		Order("created_at ASC").
		Find(&challenges).Error; err != nil {
		return nil, err
	}

	return challenges, nil
}

func (r *debateChallengeRepository) HasCorrectForPost(ctx context.Context, postID, studentID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.DebateChallenge{}).
		Where("post_id = ?", postID).
		Where("student_id = ?", studentID).
		Where("verdict IN ?", []models.ChallengeVerdict{models.VerdictCorrectFallacy, models.VerdictCorrectAppeal}).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *debateChallengeRepository) SumPointsForDebate(ctx context.Context, studentDebateID uint, debateNumber int) (float64, error) {
	var total float64
	if err := r.db.WithContext(ctx).
		Model(&models.DebateChallenge{}).
		Where("student_debate_id = ?", studentDebateID).
		Where("debate_number = ?", debateNumber).
		Select("COALESCE(SUM(points_awarded), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}

	return total, nil
}

func (r *debateChallengeRepository) SumPointsForRound(ctx context.Context, studentDebateID uint, debateNumber, roundNumber int) (float64, error) {
	var total float64
	if err := r.db.WithContext(ctx).
		Model(&models.DebateChallenge{}).
		Where("student_debate_id = ?", studentDebateID).
		Where("debate_number = ?", debateNumber).
		Where("round_number = ?", roundNumber).
		Select("COALESCE(SUM(points_awarded), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}

	return total, nil
}
