package models

import (
	"time"

	"gorm.io/gorm"
)

// FallacyFrequency controls how often the AI opponent is instructed to embed a
// logical fallacy, expressed as "one fallacy every N..M AI turns".
type FallacyFrequency string

const (
	FallacyFrequencyDisabled  FallacyFrequency = "disabled"
	FallacyFrequencyEvery1To2 FallacyFrequency = "every_1_2"
	FallacyFrequencyEvery2To3 FallacyFrequency = "every_2_3"
	FallacyFrequencyEvery3To4 FallacyFrequency = "every_3_4"
)

// Interval maps the frequency onto its inclusive [lo, hi] AI-turn range.
// ok is false when injection is disabled.
func (f FallacyFrequency) Interval() (lo, hi int, ok bool) {
	switch f {
	case FallacyFrequencyEvery1To2:
		return 1, 2, true
	case FallacyFrequencyEvery2To3:
		return 2, 3, true
	case FallacyFrequencyEvery3To4:
		return 3, 4, true
	default:
		return 0, 0, false
	}
}

// Valid reports whether the frequency is one of the known values.
func (f FallacyFrequency) Valid() bool {
	switch f {
	case FallacyFrequencyDisabled, FallacyFrequencyEvery1To2, FallacyFrequencyEvery2To3, FallacyFrequencyEvery3To4:
		return true
	}
	return false
}

// DebateAssignment is the teacher-authored configuration for a three-debate
// practice exercise. It becomes immutable once any student has started.
type DebateAssignment struct {
	ID                     uint             `gorm:"primaryKey" json:"id"`
	TeacherID              uint             `gorm:"not null;index" json:"teacher_id"`
	Topic                  string           `gorm:"size:255;not null" json:"topic"`
	Description            string           `gorm:"type:text" json:"description"`
	GradeLevel             string           `gorm:"size:32" json:"grade_level"`
	RoundsPerDebate        int              `gorm:"not null;default:3" json:"rounds_per_debate"`
	DebateCount            int              `gorm:"not null;default:3" json:"debate_count"`
	StatementsPerRound     int              `gorm:"not null;default:5" json:"statements_per_round"`
	TimeLimitHours         int              `gorm:"not null;default:8" json:"time_limit_hours"`
	WordCountMin           int              `gorm:"not null;default:75" json:"word_count_min"`
	WordCountMax           int              `gorm:"not null;default:300" json:"word_count_max"`
	FallacyFrequency       FallacyFrequency `gorm:"size:16;not null;default:every_2_3" json:"fallacy_frequency"`
	AIPersonalitiesEnabled bool             `gorm:"not null;default:true" json:"ai_personalities_enabled"`
	ModerationEnabled      bool             `gorm:"not null;default:true" json:"moderation_enabled"`
	AutoFlagThreshold      float64          `gorm:"not null;default:0.7" json:"auto_flag_threshold"`
	CreatedAt              time.Time        `json:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at"`
	DeletedAt              gorm.DeletedAt   `gorm:"index" json:"-"`
}

// DebateDeadline derives the wall-clock deadline for a debate started at the
// given instant.
func (a DebateAssignment) DebateDeadline(startedAt time.Time) time.Time {
	return startedAt.Add(time.Duration(a.TimeLimitHours) * time.Hour)
}

// StudentClosesRound requires an odd statement count so the student both opens
// and closes every round.
func (a DebateAssignment) StudentClosesRound() bool {
	return a.StatementsPerRound%2 == 1
}
