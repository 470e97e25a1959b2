package models

import "time"

// OverrideCode is a single-use, time-limited code a teacher issues so one
// student can submit past a debate deadline.
type OverrideCode struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Code         string     `gorm:"size:64;not null;uniqueIndex" json:"code"`
	TeacherID    uint       `gorm:"not null;index" json:"teacher_id"`
	StudentID    uint       `gorm:"not null;index" json:"student_id"`
	AssignmentID uint       `gorm:"not null;index" json:"assignment_id"`
	ExpiresAt    time.Time  `gorm:"not null" json:"expires_at"`
	RedeemedAt   *time.Time `json:"redeemed_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Usable reports whether the code can still be redeemed.
func (o OverrideCode) Usable(reference time.Time) bool {
	return o.RedeemedAt == nil && reference.Before(o.ExpiresAt)
}

// TeacherBypass stores a teacher's permanent bypass phrase (hashed). Unlike
// override codes it is not consumed on use.
type TeacherBypass struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TeacherID  uint      `gorm:"not null;uniqueIndex" json:"teacher_id"`
	PhraseHash string    `gorm:"size:128;not null" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
