package models

import (
	"time"

	"gorm.io/datatypes"
)

// DebateRoundFeedback is the coaching note generated once all rounds of a
// debate complete. One row per (student_debate, debate_number).
type DebateRoundFeedback struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	StudentDebateID  uint           `gorm:"not null;uniqueIndex:idx_feedback_debate" json:"student_debate_id"`
	DebateNumber     int            `gorm:"not null;uniqueIndex:idx_feedback_debate" json:"debate_number"`
	CoachingFeedback string         `gorm:"type:text" json:"coaching_feedback"`
	Strengths        datatypes.JSON `gorm:"type:json" json:"strengths"`
	ImprovementAreas datatypes.JSON `gorm:"type:json" json:"improvement_areas"`
	Suggestions      datatypes.JSON `gorm:"type:json" json:"suggestions"`
	CreatedAt        time.Time      `json:"created_at"`
}
