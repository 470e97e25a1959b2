package service

import (
	"strings"
	"time"

	"github.com/ctroy978/umadex-sub002/internal/models"
)

// IncomingStatement is a candidate next statement presented to the sequencer.
type IncomingStatement struct {
	StatementNumber int
	PostType        models.PostType
	WordCount       int
	// Position is the side the student picks when entering debate three.
	Position models.DebatePosition
	// BypassDeadline is set when a verified override code or teacher bypass
	// phrase accompanied the submission.
	BypassDeadline bool
}

// TurnResult reports what the accepted statement closed.
type TurnResult struct {
	RoundClosed  bool
	DebateClosed bool
	SessionDone  bool
	// ClosedDebate is the debate number that just closed, when DebateClosed.
	ClosedDebate int
}

// TurnSequencer enforces the canonical alternating turn order: statement
// numbers increase by exactly one, odd slots belong to the student, and an
// odd statements-per-round count means the student opens and closes each
// round. It mutates only the session counters; persistence is the caller's.
type TurnSequencer struct{}

// NewTurnSequencer constructs the sequencer.
func NewTurnSequencer() TurnSequencer {
	return TurnSequencer{}
}

// Advance validates the incoming statement against the session state and, on
// acceptance, moves the counters forward. Round and debate closure are
// reported to the caller, which owns rollups and feedback generation. No
// transition skips a round or a debate, and nothing leaves completed.
func (TurnSequencer) Advance(assignment models.DebateAssignment, session *models.StudentDebate, in IncomingStatement, now time.Time) (TurnResult, error) {
	if session.IsCompleted() {
		return TurnResult{}, ErrDebateCompleted
	}

	if in.StatementNumber != session.CurrentStatement {
		return TurnResult{}, ErrWrongTurn
	}
	if models.ExpectedPostType(in.StatementNumber) != in.PostType {
		return TurnResult{}, ErrWrongTurn
	}

	if in.PostType == models.PostTypeStudent {
		if in.WordCount < assignment.WordCountMin || in.WordCount > assignment.WordCountMax {
			return TurnResult{}, ErrWordCount
		}
		// Deadlines are advisory and enforced only here, at submission time.
		if session.DeadlinePassed(now) && !in.BypassDeadline {
			return TurnResult{}, ErrDeadlinePassed
		}

		// Debate three is the student's free choice; the pick arrives with
		// their opening statement and defaults to the debate-one side.
		if session.CurrentDebate == 3 && in.StatementNumber == 1 && session.CurrentRound == 1 && session.Debate3Position == "" {
			if in.Position == models.PositionPro || in.Position == models.PositionCon {
				session.Debate3Position = in.Position
			} else {
				session.Debate3Position = session.Debate1Position
			}
		}
	}

	result := TurnResult{}

	if in.StatementNumber < assignment.StatementsPerRound {
		session.CurrentStatement++
		return result, nil
	}

	// Final statement of the round.
	result.RoundClosed = true
	session.CurrentStatement = 1
	session.CurrentRound++

	if session.CurrentRound <= assignment.RoundsPerDebate {
		return result, nil
	}

	result.DebateClosed = true
	result.ClosedDebate = session.CurrentDebate
	session.CurrentRound = 1

	if session.CurrentDebate >= assignment.DebateCount {
		session.Status = models.DebateStatusCompleted
		session.CurrentDebateDeadline = nil
		result.SessionDone = true
		return result, nil
	}

	session.CurrentDebate++
	session.Status = models.StatusForDebate(session.CurrentDebate)
	startedAt := now
	deadline := assignment.DebateDeadline(startedAt)
	session.CurrentDebateStartedAt = &startedAt
	session.CurrentDebateDeadline = &deadline

	if session.CurrentDebate == 2 {
		// Debate two argues the opposite side of debate one.
		session.Debate2Position = session.Debate1Position.Opposite()
	}

	return result, nil
}

// CountWords tallies whitespace-separated tokens in a statement.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
