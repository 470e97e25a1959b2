package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ctroy978/umadex-sub002/internal/models"
)

// DebatePostRepository defines data operations for the append-only post log.
type DebatePostRepository interface {
	Create(ctx context.Context, post *models.DebatePost) error
	GetByID(ctx context.Context, id uint) (models.DebatePost, error)
	ListBySession(ctx context.Context, studentDebateID uint) ([]models.DebatePost, error)
	ListByDebate(ctx context.Context, studentDebateID uint, debateNumber int) ([]models.DebatePost, error)
	LastInRound(ctx context.Context, studentDebateID uint, debateNumber, roundNumber int) (models.DebatePost, error)
	Update(ctx context.Context, post *models.DebatePost) error
}

type debatePostRepository struct {
	db *gorm.DB
}

// NewDebatePostRepository instantiates the repository.
func NewDebatePostRepository(db *gorm.DB) DebatePostRepository {
	return &debatePostRepository{db: db}
}

func (r *debatePostRepository) Create(ctx context.Context, post *models.DebatePost) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *debatePostRepository) GetByID(ctx context.Context, id uint) (models.DebatePost, error) {
	var post models.DebatePost
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return models.DebatePost{}, err
	}

	return post, nil
}

func (r *debatePostRepository) ListBySession(ctx context.Context, studentDebateID uint) ([]models.DebatePost, error) {
	var posts []models.DebatePost
	if err := r.db.WithContext(ctx).
		Where("student_debate_id = ?", studentDebateID).
		Order("debate_number ASC, round_number ASC, statement_number ASC").
		Find(&posts).Error; err != nil {
		return nil, err
	}

	return posts, nil
}

func (r *debatePostRepository) ListByDebate(ctx context.Context, studentDebateID uint, debateNumber int) ([]models.DebatePost, error) {
	var posts []models.DebatePost
	if err := r.db.WithContext(ctx).
		Where("student_debate_id = ?", studentDebateID).
		Where("debate_number = ?", debateNumber).
		Order("round_number ASC, statement_number ASC").
		Find(&posts).Error; err != nil {
		return nil, err
	}

	return posts, nil
}

func (r *debatePostRepository) LastInRound(ctx context.Context, studentDebateID uint, debateNumber, roundNumber int) (models.DebatePost, error) {
	var post models.DebatePost
	if err := r.db.WithContext(ctx).
		Where("student_debate_id = ?", studentDebateID).
		Where("debate_number = ?", debateNumber).
		Where("round_number = ?", roundNumber).
		Order("statement_number DESC").
		First(&post).Error; err != nil {
		return models.DebatePost{}, err
	}

	return post, nil
}

func (r *debatePostRepository) Update(ctx context.Context, post *models.DebatePost) error {
	return r.db.WithContext(ctx).Save(post).Error
}
