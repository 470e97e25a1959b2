package models

import "time"

// ChallengeVerdict classifies the outcome of a fallacy challenge.
type ChallengeVerdict string

const (
	VerdictCorrectFallacy ChallengeVerdict = "correct_fallacy"
	VerdictCorrectAppeal  ChallengeVerdict = "correct_appeal"
	VerdictIncorrect      ChallengeVerdict = "incorrect"
)

// DebateChallenge records a student's accusation that a specific AI statement
// contains a named fallacy or rhetorical appeal, and the adjudicated outcome.
type DebateChallenge struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	StudentDebateID uint             `gorm:"not null;index" json:"student_debate_id"`
	PostID          uint             `gorm:"not null;index" json:"post_id"`
	StudentID       uint             `gorm:"not null;index" json:"student_id"`
	DebateNumber    int              `gorm:"not null" json:"debate_number"`
	RoundNumber     int              `gorm:"not null" json:"round_number"`
	ClaimedType     string           `gorm:"size:64;not null" json:"claimed_type"`
	Explanation     string           `gorm:"type:text" json:"explanation"`
	Verdict         ChallengeVerdict `gorm:"size:16;not null" json:"verdict"`
	PointsAwarded   float64          `gorm:"not null;default:0" json:"points_awarded"`
	Feedback        string           `gorm:"type:text" json:"feedback"`
	CreatedAt       time.Time        `json:"created_at"`

	Post DebatePost `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsCorrect reports whether the challenge earned any credit.
func (c DebateChallenge) IsCorrect() bool {
	return c.Verdict == VerdictCorrectFallacy || c.Verdict == VerdictCorrectAppeal
}
