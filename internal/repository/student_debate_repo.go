package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ctroy978/umadex-sub002/internal/models"
)

// ErrStaleSession indicates the optimistic version check failed: another
// writer mutated the session since it was loaded.
var ErrStaleSession = errors.New("student debate was modified concurrently")

// StudentDebateRepository defines data operations for debate sessions.
type StudentDebateRepository interface {
	GetByID(ctx context.Context, id uint) (models.StudentDebate, error)
	GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) (models.StudentDebate, error)
	Create(ctx context.Context, session *models.StudentDebate) error
	// UpdateVersioned persists the session only when its lock version is
	// unchanged, then bumps it. Turn transitions are not commutative, so two
	// simultaneous submissions must not both succeed.
	UpdateVersioned(ctx context.Context, session *models.StudentDebate) error
	// Update persists fields that do not race with turn transitions.
	Update(ctx context.Context, session *models.StudentDebate) error
}

type studentDebateRepository struct {
	db *gorm.DB
}

// NewStudentDebateRepository instantiates the repository.
func NewStudentDebateRepository(db *gorm.DB) StudentDebateRepository {
	return &studentDebateRepository{db: db}
}

func (r *studentDebateRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.StudentDebate{}).Preload("Assignment")
}

func (r *studentDebateRepository) GetByID(ctx context.Context, id uint) (models.StudentDebate, error) {
	var session models.StudentDebate
	if err := r.baseQuery(ctx).First(&session, id).Error; err != nil {
		return models.StudentDebate{}, err
	}

	return session, nil
}

func (r *studentDebateRepository) GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) (models.StudentDebate, error) {
	var session models.StudentDebate
	if err := r.baseQuery(ctx).
		Where("assignment_id = ?", assignmentID).
		Where("student_id = ?", studentID).
		First(&session).Error; err != nil {
		return models.StudentDebate{}, err
	}

	return session, nil
}

func (r *studentDebateRepository) Create(ctx context.Context, session *models.StudentDebate) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *studentDebateRepository) UpdateVersioned(ctx context.Context, session *models.StudentDebate) error {
	previous := session.LockVersion
	session.LockVersion = previous + 1

	result := r.db.WithContext(ctx).
		Model(&models.StudentDebate{}).
		Where("id = ?", session.ID).
		Where("lock_version = ?", previous).
		Select("*").
		Omit("id", "created_at", "assignment_id", "student_id", "Assignment").
		Updates(session)
	if result.Error != nil {
		session.LockVersion = previous
		return result.Error
	}
	if result.RowsAffected == 0 {
		session.LockVersion = previous
		return ErrStaleSession
	}
	return nil
}

func (r *studentDebateRepository) Update(ctx context.Context, session *models.StudentDebate) error {
	return r.db.WithContext(ctx).Save(session).Error
}
