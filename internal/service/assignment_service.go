package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ctroy978/umadex-sub002/internal/dto"
	"github.com/ctroy978/umadex-sub002/internal/models"
	"github.com/ctroy978/umadex-sub002/internal/repository"
)

// AssignmentService is the teacher-facing CRUD surface for debate
// assignments. An assignment is immutable once any student has started it.
type AssignmentService interface {
	List(ctx context.Context, teacherID uint, search string, page, pageSize int) ([]dto.AssignmentResponse, int64, error)
	Get(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	Create(ctx context.Context, teacherID uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Update(ctx context.Context, id, teacherID uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, id, teacherID uint) error
}

type assignmentService struct {
	assignments repository.DebateAssignmentRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewAssignmentService constructs the assignment CRUD service.
func NewAssignmentService(assignments repository.DebateAssignmentRepository, validate *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		validator:   validate,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
	}
}

func (s *assignmentService) List(ctx context.Context, teacherID uint, search string, page, pageSize int) ([]dto.AssignmentResponse, int64, error) {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	assignments, total, err := s.assignments.List(ctx, repository.DebateAssignmentFilter{
		TeacherID: &teacherID,
		Search:    search,
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list assignments: %w", err)
	}

	return dto.NewAssignmentResponseSlice(assignments), total, nil
}

func (s *assignmentService) Get(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Create(ctx context.Context, teacherID uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment := models.DebateAssignment{
		TeacherID:        teacherID,
		Topic:            payload.Topic,
		Description:      payload.Description,
		GradeLevel:       payload.GradeLevel,
		RoundsPerDebate:  payload.RoundsPerDebate,
		DebateCount:      3,
		TimeLimitHours:   payload.TimeLimitHours,
		FallacyFrequency: models.FallacyFrequency(payload.FallacyFrequency),
	}

	assignment.StatementsPerRound = payload.StatementsPerRound
	if assignment.StatementsPerRound == 0 {
		assignment.StatementsPerRound = 5
	}
	// The student must open and close every round.
	if assignment.StatementsPerRound%2 == 0 {
		return dto.AssignmentResponse{}, errors.New("statements_per_round must be odd")
	}

	assignment.WordCountMin = payload.WordCountMin
	if assignment.WordCountMin == 0 {
		assignment.WordCountMin = 75
	}
	assignment.WordCountMax = payload.WordCountMax
	if assignment.WordCountMax == 0 {
		assignment.WordCountMax = 300
	}
	if assignment.WordCountMin >= assignment.WordCountMax {
		return dto.AssignmentResponse{}, errors.New("word_count_min must be below word_count_max")
	}

	assignment.AIPersonalitiesEnabled = payload.AIPersonalitiesEnabled == nil || *payload.AIPersonalitiesEnabled
	assignment.ModerationEnabled = payload.ModerationEnabled == nil || *payload.ModerationEnabled
	assignment.AutoFlagThreshold = payload.AutoFlagThreshold
	if assignment.AutoFlagThreshold == 0 {
		assignment.AutoFlagThreshold = 0.7
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, fmt.Errorf("create assignment: %w", err)
	}

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Uint("teacher_id", teacherID).
		Str("topic", assignment.Topic).
		Msg("debate assignment created")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Update(ctx context.Context, id, teacherID uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.loadOwned(ctx, id, teacherID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	started, err := s.assignments.HasSessions(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	if started {
		return dto.AssignmentResponse{}, ErrAssignmentLocked
	}

	if payload.Topic != nil {
		assignment.Topic = *payload.Topic
	}
	if payload.Description != nil {
		assignment.Description = *payload.Description
	}
	if payload.GradeLevel != nil {
		assignment.GradeLevel = *payload.GradeLevel
	}
	if payload.RoundsPerDebate != nil {
		assignment.RoundsPerDebate = *payload.RoundsPerDebate
	}
	if payload.TimeLimitHours != nil {
		assignment.TimeLimitHours = *payload.TimeLimitHours
	}
	if payload.FallacyFrequency != nil {
		assignment.FallacyFrequency = models.FallacyFrequency(*payload.FallacyFrequency)
	}
	if payload.ModerationEnabled != nil {
		assignment.ModerationEnabled = *payload.ModerationEnabled
	}
	if payload.AutoFlagThreshold != nil {
		assignment.AutoFlagThreshold = *payload.AutoFlagThreshold
	}

	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, fmt.Errorf("update assignment: %w", err)
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("debate assignment updated")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Delete(ctx context.Context, id, teacherID uint) error {
	if _, err := s.loadOwned(ctx, id, teacherID); err != nil {
		return err
	}

	started, err := s.assignments.HasSessions(ctx, id)
	if err != nil {
		return err
	}
	if started {
		return ErrAssignmentLocked
	}

	if err := s.assignments.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	s.logger.Info().Uint("assignment_id", id).Msg("debate assignment deleted")
	return nil
}

func (s *assignmentService) loadOwned(ctx context.Context, id, teacherID uint) (models.DebateAssignment, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.DebateAssignment{}, ErrAssignmentNotFound
		}
		return models.DebateAssignment{}, err
	}
	if assignment.TeacherID != teacherID {
		return models.DebateAssignment{}, ErrAssignmentNotFound
	}
	return assignment, nil
}
