package models

import "time"

// PostType distinguishes student statements from AI opponent statements.
type PostType string

const (
	PostTypeStudent PostType = "student"
	PostTypeAI      PostType = "ai"
)

// ExpectedPostType returns the author implied by a statement number: the
// student takes the odd slots, the opponent the even ones.
func ExpectedPostType(statementNumber int) PostType {
	if statementNumber%2 == 1 {
		return PostTypeStudent
	}
	return PostTypeAI
}

// ModerationStatus reflects the moderation outcome recorded on a post.
type ModerationStatus string

const (
	ModerationStatusClean ModerationStatus = "clean"
	ModerationStatusHeld  ModerationStatus = "held"
)

// DebatePost is one statement in the append-only debate log. Student posts
// carry rubric sub-scores once a teacher grades them; AI posts carry the
// injection metadata. A post is immutable once scored.
type DebatePost struct {
	ID              uint     `gorm:"primaryKey" json:"id"`
	StudentDebateID uint     `gorm:"not null;index" json:"student_debate_id"`
	DebateNumber    int      `gorm:"not null" json:"debate_number"`
	RoundNumber     int      `gorm:"not null" json:"round_number"`
	StatementNumber int      `gorm:"not null" json:"statement_number"`
	PostType        PostType `gorm:"size:8;not null" json:"post_type"`
	Content         string   `gorm:"type:text;not null" json:"content"`
	WordCount       int      `gorm:"not null" json:"word_count"`

	ModerationStatus ModerationStatus `gorm:"size:8;not null;default:clean" json:"moderation_status"`

	// Rubric sub-scores, each 1-5, nil until graded.
	ClarityScore        *int `json:"clarity_score"`
	EvidenceScore       *int `json:"evidence_score"`
	LogicScore          *int `json:"logic_score"`
	PersuasivenessScore *int `json:"persuasiveness_score"`
	RebuttalScore       *int `json:"rebuttal_score"`

	BasePercentage  *float64 `json:"base_percentage"`
	BonusPoints     *float64 `json:"bonus_points"`
	FinalPercentage *float64 `json:"final_percentage"`

	AIPersonality string `gorm:"size:64" json:"ai_personality,omitempty"`
	IsFallacy     bool   `gorm:"not null;default:false" json:"-"`
	FallacyType   string `gorm:"size:64" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	StudentDebate StudentDebate `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsScored reports whether all five rubric sub-scores are present.
func (p DebatePost) IsScored() bool {
	return p.ClarityScore != nil && p.EvidenceScore != nil && p.LogicScore != nil &&
		p.PersuasivenessScore != nil && p.RebuttalScore != nil
}

// SubScores returns the rubric values in a fixed order. Only meaningful when
// IsScored is true.
func (p DebatePost) SubScores() []int {
	scores := make([]int, 0, 5)
	for _, s := range []*int{p.ClarityScore, p.EvidenceScore, p.LogicScore, p.PersuasivenessScore, p.RebuttalScore} {
		if s != nil {
			scores = append(scores, *s)
		}
	}
	return scores
}
