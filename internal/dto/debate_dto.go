package dto

import (
	"encoding/json"
	"time"

	"github.com/ctroy978/umadex-sub002/internal/models"
)

// StartSessionRequest begins (or resumes) a student's debate session.
type StartSessionRequest struct {
	AssignmentID uint `json:"assignment_id" validate:"required,gt=0"`
}

// SubmitStatementRequest carries the student's next statement.
type SubmitStatementRequest struct {
	Content string `json:"content" validate:"required,min=1"`
	// Position is honored only on the opening statement of debate three.
	Position string `json:"position" validate:"omitempty,oneof=pro con"`
	// OverrideCode unlocks a submission after the debate deadline.
	OverrideCode string `json:"override_code" validate:"omitempty,max=64"`
}

// ContentCheckRequest is the student-facing pre-submission quick check. It
// never persists a flag.
type ContentCheckRequest struct {
	Content string `json:"content" validate:"required,min=1"`
}

// ContentCheckResponse reports whether the draft would be flagged.
type ContentCheckResponse struct {
	WouldFlag      bool    `json:"would_flag"`
	FlagType       string  `json:"flag_type,omitempty"`
	Reason         string  `json:"reason,omitempty"`
	Confidence     float64 `json:"confidence,omitempty"`
	RequiresReview bool    `json:"requires_review"`
	WordCount      int     `json:"word_count"`
}

// DebatePostResponse serializes one statement. Fallacy metadata is withheld
// from students until the session completes.
type DebatePostResponse struct {
	ID                  uint      `json:"id"`
	DebateNumber        int       `json:"debate_number"`
	RoundNumber         int       `json:"round_number"`
	StatementNumber     int       `json:"statement_number"`
	PostType            string    `json:"post_type"`
	Content             string    `json:"content"`
	WordCount           int       `json:"word_count"`
	AIPersonality       string    `json:"ai_personality,omitempty"`
	ClarityScore        *int      `json:"clarity_score,omitempty"`
	EvidenceScore       *int      `json:"evidence_score,omitempty"`
	LogicScore          *int      `json:"logic_score,omitempty"`
	PersuasivenessScore *int      `json:"persuasiveness_score,omitempty"`
	RebuttalScore       *int      `json:"rebuttal_score,omitempty"`
	BasePercentage      *float64  `json:"base_percentage,omitempty"`
	BonusPoints         *float64  `json:"bonus_points,omitempty"`
	FinalPercentage     *float64  `json:"final_percentage,omitempty"`
	ModerationStatus    string    `json:"moderation_status"`
	CreatedAt           time.Time `json:"created_at"`
}

// NewDebatePostResponse maps a post onto the response shape.
func NewDebatePostResponse(p models.DebatePost) DebatePostResponse {
	return DebatePostResponse{
		ID:                  p.ID,
		DebateNumber:        p.DebateNumber,
		RoundNumber:         p.RoundNumber,
		StatementNumber:     p.StatementNumber,
		PostType:            string(p.PostType),
		Content:             p.Content,
		WordCount:           p.WordCount,
		AIPersonality:       p.AIPersonality,
		ClarityScore:        p.ClarityScore,
		EvidenceScore:       p.EvidenceScore,
		LogicScore:          p.LogicScore,
		PersuasivenessScore: p.PersuasivenessScore,
		RebuttalScore:       p.RebuttalScore,
		BasePercentage:      p.BasePercentage,
		BonusPoints:         p.BonusPoints,
		FinalPercentage:     p.FinalPercentage,
		ModerationStatus:    string(p.ModerationStatus),
		CreatedAt:           p.CreatedAt,
	}
}

// NewDebatePostResponseSlice maps a post slice onto responses.
func NewDebatePostResponseSlice(posts []models.DebatePost) []DebatePostResponse {
	responses := make([]DebatePostResponse, 0, len(posts))
	for _, p := range posts {
		responses = append(responses, NewDebatePostResponse(p))
	}
	return responses
}

// SessionResponse is the full state of a student's debate session.
type SessionResponse struct {
	ID               uint       `json:"id"`
	AssignmentID     uint       `json:"assignment_id"`
	StudentID        uint       `json:"student_id"`
	Topic            string     `json:"topic"`
	Status           string     `json:"status"`
	CurrentDebate    int        `json:"current_debate"`
	CurrentRound     int        `json:"current_round"`
	CurrentStatement int        `json:"current_statement"`
	CurrentPosition  string     `json:"current_position"`
	Deadline         *time.Time `json:"deadline"`

	Debate1Percentage *float64 `json:"debate_1_percentage"`
	Debate2Percentage *float64 `json:"debate_2_percentage"`
	Debate3Percentage *float64 `json:"debate_3_percentage"`
	FinalPercentage   *float64 `json:"final_percentage"`

	Posts    []DebatePostResponse    `json:"posts"`
	Feedback []RoundFeedbackResponse `json:"feedback"`
}

// RoundFeedbackResponse serializes a coaching note.
type RoundFeedbackResponse struct {
	DebateNumber     int      `json:"debate_number"`
	CoachingFeedback string   `json:"coaching_feedback"`
	Strengths        []string `json:"strengths"`
	ImprovementAreas []string `json:"improvement_areas"`
	Suggestions      []string `json:"suggestions"`
}

// NewRoundFeedbackResponse maps a coaching note onto the response shape.
func NewRoundFeedbackResponse(f models.DebateRoundFeedback) RoundFeedbackResponse {
	return RoundFeedbackResponse{
		DebateNumber:     f.DebateNumber,
		CoachingFeedback: f.CoachingFeedback,
		Strengths:        decodeStringList(f.Strengths),
		ImprovementAreas: decodeStringList(f.ImprovementAreas),
		Suggestions:      decodeStringList(f.Suggestions),
	}
}

func decodeStringList(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// NewSessionResponse maps a session, its posts, and its coaching notes onto
// the full response shape. Expects Assignment to be preloaded.
func NewSessionResponse(session models.StudentDebate, posts []models.DebatePost, feedback []models.DebateRoundFeedback) SessionResponse {
	notes := make([]RoundFeedbackResponse, 0, len(feedback))
	for _, f := range feedback {
		notes = append(notes, NewRoundFeedbackResponse(f))
	}

	return SessionResponse{
		ID:                session.ID,
		AssignmentID:      session.AssignmentID,
		StudentID:         session.StudentID,
		Topic:             session.Assignment.Topic,
		Status:            string(session.Status),
		CurrentDebate:     session.CurrentDebate,
		CurrentRound:      session.CurrentRound,
		CurrentStatement:  session.CurrentStatement,
		CurrentPosition:   string(session.PositionFor(session.CurrentDebate)),
		Deadline:          session.CurrentDebateDeadline,
		Debate1Percentage: session.Debate1Percentage,
		Debate2Percentage: session.Debate2Percentage,
		Debate3Percentage: session.Debate3Percentage,
		FinalPercentage:   session.FinalPercentage,
		Posts:             NewDebatePostResponseSlice(posts),
		Feedback:          notes,
	}
}

// SubmitStatementResponse reports the accepted statement, the opponent's
// reply, and any state the submission closed.
type SubmitStatementResponse struct {
	StudentPost  DebatePostResponse  `json:"student_post"`
	OpponentPost *DebatePostResponse `json:"opponent_post,omitempty"`
	RoundClosed  bool                `json:"round_closed"`
	DebateClosed bool                `json:"debate_closed"`
	SessionDone  bool                `json:"session_done"`
	Session      SessionResponse     `json:"session"`
}
