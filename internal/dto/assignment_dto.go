package dto

import (
	"time"

	"github.com/ctroy978/umadex-sub002/internal/models"
)

// AssignmentCreateRequest describes the payload for creating a debate
// assignment. Defaults mirror the engine's observed classroom settings.
type AssignmentCreateRequest struct {
	Topic                  string  `json:"topic" validate:"required,min=10,max=255"`
	Description            string  `json:"description" validate:"omitempty,max=2000"`
	GradeLevel             string  `json:"grade_level" validate:"omitempty,max=32"`
	RoundsPerDebate        int     `json:"rounds_per_debate" validate:"required,gte=2,lte=4"`
	TimeLimitHours         int     `json:"time_limit_hours" validate:"required,gte=1,lte=168"`
	FallacyFrequency       string  `json:"fallacy_frequency" validate:"required,oneof=disabled every_1_2 every_2_3 every_3_4"`
	AIPersonalitiesEnabled *bool   `json:"ai_personalities_enabled"`
	ModerationEnabled      *bool   `json:"moderation_enabled"`
	AutoFlagThreshold      float64 `json:"auto_flag_threshold" validate:"omitempty,gt=0,lte=1"`
	WordCountMin           int     `json:"word_count_min" validate:"omitempty,gte=25,lte=500"`
	WordCountMax           int     `json:"word_count_max" validate:"omitempty,gte=50,lte=1000"`
	StatementsPerRound     int     `json:"statements_per_round" validate:"omitempty,gte=3,lte=9"`
}

// AssignmentUpdateRequest carries partial edits; rejected once any student
// has started the assignment.
type AssignmentUpdateRequest struct {
	Topic             *string  `json:"topic" validate:"omitempty,min=10,max=255"`
	Description       *string  `json:"description" validate:"omitempty,max=2000"`
	GradeLevel        *string  `json:"grade_level" validate:"omitempty,max=32"`
	RoundsPerDebate   *int     `json:"rounds_per_debate" validate:"omitempty,gte=2,lte=4"`
	TimeLimitHours    *int     `json:"time_limit_hours" validate:"omitempty,gte=1,lte=168"`
	FallacyFrequency  *string  `json:"fallacy_frequency" validate:"omitempty,oneof=disabled every_1_2 every_2_3 every_3_4"`
	ModerationEnabled *bool    `json:"moderation_enabled"`
	AutoFlagThreshold *float64 `json:"auto_flag_threshold" validate:"omitempty,gt=0,lte=1"`
}

// AssignmentResponse is returned to API clients.
type AssignmentResponse struct {
	ID                     uint      `json:"id"`
	TeacherID              uint      `json:"teacher_id"`
	Topic                  string    `json:"topic"`
	Description            string    `json:"description"`
	GradeLevel             string    `json:"grade_level"`
	RoundsPerDebate        int       `json:"rounds_per_debate"`
	DebateCount            int       `json:"debate_count"`
	StatementsPerRound     int       `json:"statements_per_round"`
	TimeLimitHours         int       `json:"time_limit_hours"`
	WordCountMin           int       `json:"word_count_min"`
	WordCountMax           int       `json:"word_count_max"`
	FallacyFrequency       string    `json:"fallacy_frequency"`
	AIPersonalitiesEnabled bool      `json:"ai_personalities_enabled"`
	ModerationEnabled      bool      `json:"moderation_enabled"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// NewAssignmentResponse maps a model onto the response shape.
func NewAssignmentResponse(a models.DebateAssignment) AssignmentResponse {
	return AssignmentResponse{
		ID:                     a.ID,
		TeacherID:              a.TeacherID,
		Topic:                  a.Topic,
		Description:            a.Description,
		GradeLevel:             a.GradeLevel,
		RoundsPerDebate:        a.RoundsPerDebate,
		DebateCount:            a.DebateCount,
		StatementsPerRound:     a.StatementsPerRound,
		TimeLimitHours:         a.TimeLimitHours,
		WordCountMin:           a.WordCountMin,
		WordCountMax:           a.WordCountMax,
		FallacyFrequency:       string(a.FallacyFrequency),
		AIPersonalitiesEnabled: a.AIPersonalitiesEnabled,
		ModerationEnabled:      a.ModerationEnabled,
		CreatedAt:              a.CreatedAt,
		UpdatedAt:              a.UpdatedAt,
	}
}

// NewAssignmentResponseSlice maps a model slice onto responses.
func NewAssignmentResponseSlice(assignments []models.DebateAssignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		responses = append(responses, NewAssignmentResponse(a))
	}
	return responses
}
