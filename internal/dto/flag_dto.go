package dto

import (
	"encoding/json"
	"time"

	"github.com/ctroy978/umadex-sub002/internal/models"
)

// FlagFilter narrows the teacher's flag queue.
type FlagFilter struct {
	Status    *string `query:"status" validate:"omitempty,oneof=pending approved rejected escalated"`
	StudentID *uint   `query:"student_id"`
	Page      int     `query:"page"`
	PageSize  int     `query:"page_size"`
}

// FlagResolveRequest records the teacher's review decision.
type FlagResolveRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected escalated"`
}

// FlagResponse serializes a raised moderation flag for the review queue.
type FlagResponse struct {
	ID              uint                   `json:"id"`
	StudentDebateID uint                   `json:"student_debate_id"`
	PostID          *uint                  `json:"post_id"`
	StudentID       uint                   `json:"student_id"`
	FlagType        string                 `json:"flag_type"`
	Confidence      float64                `json:"confidence"`
	Reason          string                 `json:"reason"`
	Content         string                 `json:"content"`
	Status          string                 `json:"status"`
	Analysis        map[string]interface{} `json:"analysis,omitempty"`
	ResolvedBy      *uint                  `json:"resolved_by"`
	ResolvedAt      *time.Time             `json:"resolved_at"`
	CreatedAt       time.Time              `json:"created_at"`
}

// NewFlagResponse maps a flag onto the response shape.
func NewFlagResponse(f models.ContentFlag) FlagResponse {
	response := FlagResponse{
		ID:              f.ID,
		StudentDebateID: f.StudentDebateID,
		PostID:          f.PostID,
		StudentID:       f.StudentID,
		FlagType:        string(f.FlagType),
		Confidence:      f.Confidence,
		Reason:          f.Reason,
		Content:         f.Content,
		Status:          string(f.Status),
		ResolvedBy:      f.ResolvedBy,
		ResolvedAt:      f.ResolvedAt,
		CreatedAt:       f.CreatedAt,
	}

	if len(f.Analysis) > 0 {
		var analysis map[string]interface{}
		if err := json.Unmarshal(f.Analysis, &analysis); err == nil {
			response.Analysis = analysis
		}
	}

	return response
}

// NewFlagResponseSlice maps a flag slice onto responses.
func NewFlagResponseSlice(flags []models.ContentFlag) []FlagResponse {
	responses := make([]FlagResponse, 0, len(flags))
	for _, f := range flags {
		responses = append(responses, NewFlagResponse(f))
	}
	return responses
}
