package ai

import "context"

// OpponentInput describes the statement the AI opponent should produce next.
type OpponentInput struct {
	Topic         string
	DebateNumber  int
	RoundNumber   int
	Position      string
	Personality   string
	GradeLevel    string
	InjectFallacy bool
	// FallacyType names the fallacy to embed when InjectFallacy is set.
	FallacyType        string
	FallacyDescription string
	// PriorStatements carries the round transcript so the opponent can rebut.
	PriorStatements []string
}

// OpponentResult is the generated opponent statement.
type OpponentResult struct {
	Text        string `json:"text"`
	IsFallacy   bool   `json:"is_fallacy"`
	FallacyType string `json:"fallacy_type,omitempty"`
}

// OpponentGenerator produces the AI side of a debate round.
type OpponentGenerator interface {
	Generate(ctx context.Context, input OpponentInput) (OpponentResult, error)
}

// CoachInput gathers a completed debate for coaching feedback.
type CoachInput struct {
	Topic        string
	DebateNumber int
	Position     string
	GradeLevel   string
	Transcript   []TranscriptEntry
}

// TranscriptEntry is one statement in a debate transcript.
type TranscriptEntry struct {
	Speaker string
	Text    string
}

// CoachResult is the structured coaching note for one completed debate.
type CoachResult struct {
	CoachingFeedback string   `json:"coaching_feedback"`
	Strengths        []string `json:"strengths"`
	ImprovementAreas []string `json:"improvement_areas"`
	Suggestions      []string `json:"suggestions"`
}

// CoachGenerator produces end-of-debate coaching feedback.
type CoachGenerator interface {
	Coach(ctx context.Context, input CoachInput) (CoachResult, error)
}
