package service

import "errors"

// RejectionError is a synchronous, client-correctable rejection. Code is a
// machine-readable reason the client can branch on, e.g. to offer the
// override-code flow after a schedule violation.
type RejectionError struct {
	Code    string
	Message string
}

func (e *RejectionError) Error() string { return e.Message }

// Rejection reason codes surfaced to API clients.
const (
	ReasonWrongTurn         = "wrong_turn"
	ReasonWordCount         = "word_count"
	ReasonScheduleViolation = "schedule_violation"
	ReasonCompleted         = "completed"
	ReasonModerationHold    = "moderation_hold"
)

var (
	// ErrWrongTurn indicates the statement number or author does not match
	// the expected next slot.
	ErrWrongTurn = &RejectionError{Code: ReasonWrongTurn, Message: "statement does not match the expected turn"}
	// ErrWordCount indicates a student statement outside the configured range.
	ErrWordCount = &RejectionError{Code: ReasonWordCount, Message: "statement word count is out of range"}
	// ErrDeadlinePassed indicates a submission after the debate deadline
	// without a valid bypass.
	ErrDeadlinePassed = &RejectionError{Code: ReasonScheduleViolation, Message: "debate deadline has passed"}
	// ErrDebateCompleted indicates the session reached its terminal state.
	ErrDebateCompleted = &RejectionError{Code: ReasonCompleted, Message: "debate session is already completed"}
	// ErrModerationHold indicates content was flagged above the review
	// threshold and is held for teacher review or revision.
	ErrModerationHold = &RejectionError{Code: ReasonModerationHold, Message: "content flagged for review; revise and resubmit"}
)

var (
	// ErrSessionNotFound indicates a student debate session could not be located.
	ErrSessionNotFound = errors.New("debate session not found")
	// ErrAssignmentNotFound indicates the debate assignment could not be located.
	ErrAssignmentNotFound = errors.New("debate assignment not found")
	// ErrPostNotFound indicates a debate post could not be located.
	ErrPostNotFound = errors.New("debate post not found")
	// ErrFlagNotFound indicates a content flag could not be located.
	ErrFlagNotFound = errors.New("content flag not found")
	// ErrConcurrentSubmission indicates another mutation won the optimistic
	// version check for the same session.
	ErrConcurrentSubmission = errors.New("session was modified concurrently, retry")
	// ErrAssignmentLocked indicates the assignment already has active sessions
	// and can no longer be edited.
	ErrAssignmentLocked = errors.New("assignment is immutable once students have started")
	// ErrPostAlreadyScored indicates rubric sub-scores were already recorded.
	ErrPostAlreadyScored = errors.New("post is immutable once scored")
	// ErrNotAIPost indicates a challenge against a student statement.
	ErrNotAIPost = errors.New("only opponent statements can be challenged")
	// ErrNotStudentPost indicates rubric scoring of an opponent statement.
	ErrNotStudentPost = errors.New("only student statements carry rubric scores")
	// ErrAlreadyChallenged indicates the post already has a successful
	// challenge by this student.
	ErrAlreadyChallenged = errors.New("post has already been successfully challenged")
	// ErrInvalidOverride indicates the bypass phrase or override code failed
	// verification.
	ErrInvalidOverride = errors.New("override code is invalid, expired, or already used")
	// ErrTooManyAttempts indicates the bypass attempt rate limit was hit.
	ErrTooManyAttempts = errors.New("too many override attempts, try again later")
	// ErrGenerationUnavailable indicates the opponent generator failed after
	// a retry; the turn was not advanced.
	ErrGenerationUnavailable = errors.New("opponent statement generation is unavailable, retry")
	// ErrNoFallacyTemplates indicates the active template set is empty.
	ErrNoFallacyTemplates = errors.New("no active fallacy templates available")
)
