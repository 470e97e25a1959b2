package models

import "time"

// DebateStatus tracks the forward-only progression of a student session.
type DebateStatus string

const (
	DebateStatusNotStarted DebateStatus = "not_started"
	DebateStatusDebate1    DebateStatus = "debate_1"
	DebateStatusDebate2    DebateStatus = "debate_2"
	DebateStatusDebate3    DebateStatus = "debate_3"
	DebateStatusCompleted  DebateStatus = "completed"
)

// Rank orders statuses so forward-only transitions can be asserted.
func (s DebateStatus) Rank() int {
	switch s {
	case DebateStatusNotStarted:
		return 0
	case DebateStatusDebate1:
		return 1
	case DebateStatusDebate2:
		return 2
	case DebateStatusDebate3:
		return 3
	case DebateStatusCompleted:
		return 4
	default:
		return -1
	}
}

// statusForDebate maps a debate number onto its session status.
func StatusForDebate(debate int) DebateStatus {
	switch debate {
	case 1:
		return DebateStatusDebate1
	case 2:
		return DebateStatusDebate2
	case 3:
		return DebateStatusDebate3
	default:
		return DebateStatusCompleted
	}
}

// DebatePosition is the side a participant argues.
type DebatePosition string

const (
	PositionPro DebatePosition = "pro"
	PositionCon DebatePosition = "con"
)

// Opposite returns the other side of the argument.
func (p DebatePosition) Opposite() DebatePosition {
	if p == PositionPro {
		return PositionCon
	}
	return PositionPro
}

// StudentDebate is one student's session against a DebateAssignment. Counters
// only ever move forward; per-debate percentages are written once when that
// debate closes.
type StudentDebate struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	AssignmentID uint `gorm:"not null;uniqueIndex:idx_student_assignment" json:"assignment_id"`
	StudentID    uint `gorm:"not null;uniqueIndex:idx_student_assignment" json:"student_id"`

	Status           DebateStatus `gorm:"size:16;not null;default:not_started" json:"status"`
	CurrentDebate    int          `gorm:"not null;default:1" json:"current_debate"`
	CurrentRound     int          `gorm:"not null;default:1" json:"current_round"`
	CurrentStatement int          `gorm:"not null;default:1" json:"current_statement"`

	Debate1Position DebatePosition `gorm:"size:8" json:"debate_1_position"`
	Debate2Position DebatePosition `gorm:"size:8" json:"debate_2_position"`
	Debate3Position DebatePosition `gorm:"size:8" json:"debate_3_position"`

	FallacyCounter         int  `gorm:"not null;default:0" json:"-"`
	FallacyScheduledDebate *int `json:"-"`
	FallacyScheduledRound  *int `json:"-"`

	CurrentDebateStartedAt *time.Time `json:"current_debate_started_at"`
	CurrentDebateDeadline  *time.Time `json:"current_debate_deadline"`

	Debate1Percentage *float64 `json:"debate_1_percentage"`
	Debate2Percentage *float64 `json:"debate_2_percentage"`
	Debate3Percentage *float64 `json:"debate_3_percentage"`
	FinalPercentage   *float64 `json:"final_percentage"`

	// LockVersion serializes concurrent submissions via optimistic check.
	LockVersion int `gorm:"not null;default:0" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Assignment DebateAssignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// PositionFor returns the position the student argues in the given debate.
func (d StudentDebate) PositionFor(debate int) DebatePosition {
	switch debate {
	case 1:
		return d.Debate1Position
	case 2:
		return d.Debate2Position
	default:
		return d.Debate3Position
	}
}

// DebatePercentage returns the frozen percentage for a closed debate, or nil.
func (d StudentDebate) DebatePercentage(debate int) *float64 {
	switch debate {
	case 1:
		return d.Debate1Percentage
	case 2:
		return d.Debate2Percentage
	case 3:
		return d.Debate3Percentage
	default:
		return nil
	}
}

// IsCompleted reports whether the session reached its terminal state.
func (d StudentDebate) IsCompleted() bool {
	return d.Status == DebateStatusCompleted
}

// DeadlinePassed reports whether the active debate's deadline has elapsed.
func (d StudentDebate) DeadlinePassed(reference time.Time) bool {
	return d.CurrentDebateDeadline != nil && reference.After(*d.CurrentDebateDeadline)
}
