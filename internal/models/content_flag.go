package models

import (
	"time"

	"gorm.io/datatypes"
)

// FlagType is one of the four moderation categories.
type FlagType string

const (
	FlagProfanity     FlagType = "profanity"
	FlagInappropriate FlagType = "inappropriate"
	FlagOffTopic      FlagType = "off_topic"
	FlagSpam          FlagType = "spam"
)

// FlagStatus tracks teacher review of a raised flag.
type FlagStatus string

const (
	FlagStatusPending   FlagStatus = "pending"
	FlagStatusApproved  FlagStatus = "approved"
	FlagStatusRejected  FlagStatus = "rejected"
	FlagStatusEscalated FlagStatus = "escalated"
)

// ContentFlag is raised by the moderation gate for content that trips any
// category. The surfaced type/confidence is the highest-confidence check; the
// full analysis is kept as JSON for audit.
type ContentFlag struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	StudentDebateID uint           `gorm:"not null;index" json:"student_debate_id"`
	PostID          *uint          `gorm:"index" json:"post_id"`
	StudentID       uint           `gorm:"not null;index" json:"student_id"`
	FlagType        FlagType       `gorm:"size:16;not null" json:"flag_type"`
	Confidence      float64        `gorm:"not null" json:"confidence"`
	Reason          string         `gorm:"size:255" json:"reason"`
	Content         string         `gorm:"type:text" json:"content"`
	Status          FlagStatus     `gorm:"size:16;not null;default:pending" json:"status"`
	Analysis        datatypes.JSON `gorm:"type:json" json:"analysis"`
	ResolvedBy      *uint          `json:"resolved_by"`
	ResolvedAt      *time.Time     `json:"resolved_at"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// IsResolved reports whether a teacher has reviewed the flag.
func (f ContentFlag) IsResolved() bool {
	return f.Status != FlagStatusPending
}
