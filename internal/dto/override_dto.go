package dto

import (
	"time"

	"github.com/ctroy978/umadex-sub002/internal/models"
)

// OverrideCodeCreateRequest mints a single-use deadline override code for one
// student on one assignment.
type OverrideCodeCreateRequest struct {
	StudentID    uint `json:"student_id" validate:"required,gt=0"`
	AssignmentID uint `json:"assignment_id" validate:"required,gt=0"`
	// TTLMinutes bounds how long the code stays redeemable.
	TTLMinutes int `json:"ttl_minutes" validate:"omitempty,gte=5,lte=10080"`
}

// BypassPhraseRequest sets a teacher's permanent deadline bypass phrase.
type BypassPhraseRequest struct {
	Phrase string `json:"phrase" validate:"required,min=8,max=128"`
}

// OverrideCodeResponse returns the minted code to the teacher.
type OverrideCodeResponse struct {
	Code         string    `json:"code"`
	StudentID    uint      `json:"student_id"`
	AssignmentID uint      `json:"assignment_id"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// NewOverrideCodeResponse maps a code onto the response shape.
func NewOverrideCodeResponse(c models.OverrideCode) OverrideCodeResponse {
	return OverrideCodeResponse{
		Code:         c.Code,
		StudentID:    c.StudentID,
		AssignmentID: c.AssignmentID,
		ExpiresAt:    c.ExpiresAt,
	}
}
