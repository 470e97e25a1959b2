package dto

import (
	"time"

	"github.com/ctroy978/umadex-sub002/internal/models"
)

// ChallengeRequest accuses an opponent statement of a named fallacy or
// rhetorical appeal.
type ChallengeRequest struct {
	ClaimedType string `json:"claimed_type" validate:"required,min=3,max=64"`
	Explanation string `json:"explanation" validate:"omitempty,max=1000"`
}

// ChallengeResponse is the adjudicated outcome.
type ChallengeResponse struct {
	ID            uint      `json:"id"`
	PostID        uint      `json:"post_id"`
	ClaimedType   string    `json:"claimed_type"`
	Verdict       string    `json:"verdict"`
	IsCorrect     bool      `json:"is_correct"`
	PointsAwarded float64   `json:"points_awarded"`
	Feedback      string    `json:"feedback"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewChallengeResponse maps a challenge onto the response shape.
func NewChallengeResponse(c models.DebateChallenge) ChallengeResponse {
	return ChallengeResponse{
		ID:            c.ID,
		PostID:        c.PostID,
		ClaimedType:   c.ClaimedType,
		Verdict:       string(c.Verdict),
		IsCorrect:     c.IsCorrect(),
		PointsAwarded: c.PointsAwarded,
		Feedback:      c.Feedback,
		CreatedAt:     c.CreatedAt,
	}
}
