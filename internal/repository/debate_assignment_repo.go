package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/ctroy978/umadex-sub002/internal/models"
)

// DebateAssignmentFilter describes pagination & search options for listing.
type DebateAssignmentFilter struct {
	TeacherID *uint
	Search    string
	Page      int
	PageSize  int
}

// DebateAssignmentRepository defines persistence operations for assignments.
type DebateAssignmentRepository interface {
	List(ctx context.Context, filter DebateAssignmentFilter) ([]models.DebateAssignment, int64, error)
	GetByID(ctx context.Context, id uint) (models.DebateAssignment, error)
	Create(ctx context.Context, assignment *models.DebateAssignment) error
	Update(ctx context.Context, assignment *models.DebateAssignment) error
	Delete(ctx context.Context, id uint) error
	HasSessions(ctx context.Context, id uint) (bool, error)
}

type debateAssignmentRepository struct {
	db *gorm.DB
}

// NewDebateAssignmentRepository instantiates a GORM-backed repository.
func NewDebateAssignmentRepository(db *gorm.DB) DebateAssignmentRepository {
	return &debateAssignmentRepository{db: db}
}

func (r *debateAssignmentRepository) List(ctx context.Context, filter DebateAssignmentFilter) ([]models.DebateAssignment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.DebateAssignment{})

	if filter.TeacherID != nil {
		query = query.Where("teacher_id = ?", *filter.TeacherID)
	}

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		query = query.Where("LOWER(topic) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
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

	var assignments []models.DebateAssignment
	if err := query.Order("created_at DESC").Find(&assignments).Error; err != nil {
		return nil, 0, err
	}

	return assignments, total, nil
}

func (r *debateAssignmentRepository) GetByID(ctx context.Context, id uint) (models.DebateAssignment, error) {
	var assignment models.DebateAssignment
	if err := r.db.WithContext(ctx).First(&assignment, id).Error; err != nil {
		return models.DebateAssignment{}, err
	}

	return assignment, nil
}

func (r *debateAssignmentRepository) Create(ctx context.Context, assignment *models.DebateAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *debateAssignmentRepository) Update(ctx context.Context, assignment *models.DebateAssignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

func (r *debateAssignmentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.DebateAssignment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *debateAssignmentRepository) HasSessions(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.StudentDebate{}).Where("assignment_id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
