package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ctroy978/umadex-sub002/internal/dto"
	"github.com/ctroy978/umadex-sub002/internal/models"
	"github.com/ctroy978/umadex-sub002/internal/repository"
)

const (
	// maxPercentage caps every debate percentage and the final grade.
	maxPercentage = 105.0

	improvementBonus = 3.0
	consistencyBonus = 2.0
	// consistencySpan is the maximum spread across the three debate
	// percentages that still earns the consistency bonus.
	consistencySpan = 15.0
)

// ScoringService converts rubric sub-scores into percentages and recomputes
// debate-level and assignment-level rollups. Rollups are recompute-and-
// overwrite from the full post set, never incremental.
type ScoringService interface {
	ScorePost(ctx context.Context, postID uint, payload dto.ScorePostRequest) (dto.DebatePostResponse, error)
	RollupDebate(ctx context.Context, session *models.StudentDebate, debateNumber int) (float64, error)
	RollupFinal(ctx context.Context, session *models.StudentDebate) (float64, error)
}

type scoringService struct {
	posts      repository.DebatePostRepository
	challenges repository.DebateChallengeRepository
	sessions   repository.StudentDebateRepository
	validator  *validator.Validate
	logger     zerolog.Logger
	now        func() time.Time
}

// NewScoringService constructs the scoring engine.
func NewScoringService(posts repository.DebatePostRepository, challenges repository.DebateChallengeRepository, sessions repository.StudentDebateRepository, validate *validator.Validate, logger zerolog.Logger) ScoringService {
	return &scoringService{
		posts:      posts,
		challenges: challenges,
		sessions:   sessions,
		validator:  validate,
		logger:     logger.With().Str("component", "scoring_service").Logger(),
		now:        time.Now,
	}
}

// basePercentage converts five 1-5 rubric sub-scores into a percentage.
func basePercentage(scores []int) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	mean := float64(sum) / float64(len(scores))
	return mean / 5.0 * 100.0
}

// debatePercentage folds the challenge bonus into the debate average, capped.
func debatePercentage(average, totalBonus float64) float64 {
	return math.Min(average+totalBonus, maxPercentage)
}

// finalGrade aggregates three closed debates. Improvement applies when debate
// three strictly beats the mean of the first two; consistency applies when
// the three percentages span at most consistencySpan points.
func finalGrade(d1, d2, d3 float64) (grade, improvement, consistency float64) {
	if d3 > (d1+d2)/2.0 {
		improvement = improvementBonus
	}
	lo := math.Min(d1, math.Min(d2, d3))
	hi := math.Max(d1, math.Max(d2, d3))
	if hi-lo <= consistencySpan {
		consistency = consistencyBonus
	}
	mean := (d1 + d2 + d3) / 3.0
	grade = math.Min(mean+improvement+consistency, maxPercentage)
	return grade, improvement, consistency
}

// ScorePost records the five rubric sub-scores on a student post and derives
// its percentages. A post is immutable once scored.
func (s *scoringService) ScorePost(ctx context.Context, postID uint, payload dto.ScorePostRequest) (dto.DebatePostResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.DebatePostResponse{}, err
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DebatePostResponse{}, ErrPostNotFound
		}
		return dto.DebatePostResponse{}, err
	}

	if post.PostType != models.PostTypeStudent {
		return dto.DebatePostResponse{}, ErrNotStudentPost
	}
	if post.IsScored() {
		return dto.DebatePostResponse{}, ErrPostAlreadyScored
	}
	if post.ModerationStatus == models.ModerationStatusHeld {
		return dto.DebatePostResponse{}, ErrModerationHold
	}

	post.ClarityScore = &payload.Clarity
	post.EvidenceScore = &payload.Evidence
	post.LogicScore = &payload.Logic
	post.PersuasivenessScore = &payload.Persuasiveness
	post.RebuttalScore = &payload.Rebuttal

	base := basePercentage(post.SubScores())
	post.BasePercentage = &base

	// Challenge bonuses earned in this post's round are echoed on the post
	// for display. They are counted toward the grade once, at debate level.
	bonus, err := s.challenges.SumPointsForRound(ctx, post.StudentDebateID, post.DebateNumber, post.RoundNumber)
	if err != nil {
		return dto.DebatePostResponse{}, err
	}
	post.BonusPoints = &bonus
	final := math.Min(base+bonus, maxPercentage)
	post.FinalPercentage = &final

	if err := s.posts.Update(ctx, &post); err != nil {
		return dto.DebatePostResponse{}, err
	}

	s.logger.Info().Uint("post_id", post.ID).Float64("base", base).Msg("post scored")

	// Sub-scores typically land after the debate has closed; recompute the
	// affected rollups so the grade reflects them.
	if err := s.refreshRollups(ctx, post); err != nil {
		s.logger.Error().Err(err).Uint("post_id", post.ID).Msg("rollup refresh failed after scoring")
	}

	return dto.NewDebatePostResponse(post), nil
}

func (s *scoringService) refreshRollups(ctx context.Context, post models.DebatePost) error {
	session, err := s.sessions.GetByID(ctx, post.StudentDebateID)
	if err != nil {
		return err
	}

	closed := session.IsCompleted() || session.CurrentDebate > post.DebateNumber
	if !closed {
		return nil
	}

	if _, err := s.RollupDebate(ctx, &session, post.DebateNumber); err != nil {
		return err
	}
	if session.IsCompleted() {
		if _, err := s.RollupFinal(ctx, &session); err != nil {
			return err
		}
	}
	return s.sessions.Update(ctx, &session)
}

// RollupDebate recomputes a debate's percentage from all of its student posts
// and challenge bonuses. Safe to call repeatedly; the result overwrites any
// prior value for the same debate.
func (s *scoringService) RollupDebate(ctx context.Context, session *models.StudentDebate, debateNumber int) (float64, error) {
	posts, err := s.posts.ListByDebate(ctx, session.ID, debateNumber)
	if err != nil {
		return 0, err
	}

	var sum float64
	var scored int
	for _, post := range posts {
		if post.PostType != models.PostTypeStudent || post.BasePercentage == nil {
			continue
		}
		sum += *post.BasePercentage
		scored++
	}

	average := 0.0
	if scored > 0 {
		average = sum / float64(scored)
	}

	totalBonus, err := s.challenges.SumPointsForDebate(ctx, session.ID, debateNumber)
	if err != nil {
		return 0, err
	}

	result := debatePercentage(average, totalBonus)

	switch debateNumber {
	case 1:
		session.Debate1Percentage = &result
	case 2:
		session.Debate2Percentage = &result
	case 3:
		session.Debate3Percentage = &result
	}

	s.logger.Info().
		Uint("session_id", session.ID).
		Int("debate", debateNumber).
		Float64("average", average).
		Float64("bonus", totalBonus).
		Float64("final", result).
		Msg("debate rollup computed")

	return result, nil
}

// RollupFinal computes the assignment-level grade once all three debates are
// closed. A missing debate score yields a zero grade.
func (s *scoringService) RollupFinal(ctx context.Context, session *models.StudentDebate) (float64, error) {
	if session.Debate1Percentage == nil || session.Debate2Percentage == nil || session.Debate3Percentage == nil {
		zero := 0.0
		session.FinalPercentage = &zero
		s.logger.Warn().Uint("session_id", session.ID).Msg("final rollup invoked with incomplete debate scores")
		return 0, nil
	}

	grade, improvement, consistency := finalGrade(*session.Debate1Percentage, *session.Debate2Percentage, *session.Debate3Percentage)
	session.FinalPercentage = &grade

	s.logger.Info().
		Uint("session_id", session.ID).
		Float64("grade", grade).
		Float64("improvement_bonus", improvement).
		Float64("consistency_bonus", consistency).
		Msg("final grade computed")

	return grade, nil
}
