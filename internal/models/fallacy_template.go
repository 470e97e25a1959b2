package models

import (
	"time"

	"gorm.io/datatypes"
)

// FallacyTemplate describes one named fallacy the opponent can be instructed
// to produce. The scheduler filters the active set by difficulty and, loosely,
// by topic keyword relevance.
type FallacyTemplate struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	FallacyType   string         `gorm:"size:64;not null;uniqueIndex" json:"fallacy_type"`
	DisplayName   string         `gorm:"size:128;not null" json:"display_name"`
	Description   string         `gorm:"type:text" json:"description"`
	Difficulty    int            `gorm:"not null;default:1" json:"difficulty"`
	TopicKeywords datatypes.JSON `gorm:"type:json" json:"topic_keywords"`
	Active        bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt     time.Time      `json:"created_at"`
}
