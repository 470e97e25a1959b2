package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ctroy978/umadex-sub002/internal/dto"
	"github.com/ctroy978/umadex-sub002/internal/models"
	"github.com/ctroy978/umadex-sub002/internal/repository"
)

const (
	challengeFallacyBonus = 3.0
	challengeAppealBonus  = 1.0
)

// rhetoricalAppeals are the persuasion techniques the opponent may use
// legitimately. Naming one on a non-fallacy post earns partial credit.
var rhetoricalAppeals = map[string]string{
	"appeal_to_emotion":   "the statement leans on emotional weight rather than a reasoning error",
	"appeal_to_authority": "the statement cites an authority as legitimate support, not as a substitute for argument",
	"appeal_to_logic":     "the statement builds a structured logical case",
	"ethos":               "the statement establishes the speaker's credibility",
	"pathos":              "the statement appeals to the audience's emotions",
	"logos":               "the statement argues from evidence and logic",
}

// ChallengeService adjudicates a student's claim that an opponent statement
// contains a named fallacy or rhetorical appeal and awards bonus credit.
type ChallengeService interface {
	Challenge(ctx context.Context, sessionID, postID, studentID uint, payload dto.ChallengeRequest) (dto.ChallengeResponse, error)
	ListBySession(ctx context.Context, sessionID uint) ([]dto.ChallengeResponse, error)
}

type challengeService struct {
	posts      repository.DebatePostRepository
	challenges repository.DebateChallengeRepository
	sessions   repository.StudentDebateRepository
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewChallengeService constructs the challenge adjudicator.
func NewChallengeService(
	posts repository.DebatePostRepository,
	challenges repository.DebateChallengeRepository,
	sessions repository.StudentDebateRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) ChallengeService {
	return &challengeService{
		posts:      posts,
		challenges: challenges,
		sessions:   sessions,
		validator:  validate,
		logger:     logger.With().Str("component", "challenge_service").Logger(),
	}
}

func (s *challengeService) Challenge(ctx context.Context, sessionID, postID, studentID uint, payload dto.ChallengeRequest) (dto.ChallengeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ChallengeResponse{}, err
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ChallengeResponse{}, ErrSessionNotFound
		}
		return dto.ChallengeResponse{}, fmt.Errorf("load session: %w", err)
	}
	if session.IsCompleted() {
		return dto.ChallengeResponse{}, ErrDebateCompleted
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ChallengeResponse{}, ErrPostNotFound
		}
		return dto.ChallengeResponse{}, fmt.Errorf("load post: %w", err)
	}
	if post.StudentDebateID != session.ID {
		return dto.ChallengeResponse{}, ErrPostNotFound
	}
	if post.PostType != models.PostTypeAI {
		return dto.ChallengeResponse{}, ErrNotAIPost
	}

	challenged, err := s.challenges.HasCorrectForPost(ctx, post.ID, studentID)
	if err != nil {
		return dto.ChallengeResponse{}, fmt.Errorf("check prior challenges: %w", err)
	}
	if challenged {
		return dto.ChallengeResponse{}, ErrAlreadyChallenged
	}

	verdict, points, feedback := adjudicate(post, payload.ClaimedType)

	challenge := models.DebateChallenge{
		StudentDebateID: session.ID,
		PostID:          post.ID,
		StudentID:       studentID,
		DebateNumber:    post.DebateNumber,
		RoundNumber:     post.RoundNumber,
		ClaimedType:     normalizeClaimType(payload.ClaimedType),
		Explanation:     payload.Explanation,
		Verdict:         verdict,
		PointsAwarded:   points,
		Feedback:        feedback,
	}
	if err := s.challenges.Create(ctx, &challenge); err != nil {
		return dto.ChallengeResponse{}, fmt.Errorf("persist challenge: %w", err)
	}

	s.logger.Info().
		Uint("session_id", session.ID).
		Uint("post_id", post.ID).
		Str("claimed_type", challenge.ClaimedType).
		Str("verdict", string(verdict)).
		Float64("points", points).
		Msg("challenge adjudicated")

	return dto.NewChallengeResponse(challenge), nil
}

func (s *challengeService) ListBySession(ctx context.Context, sessionID uint) ([]dto.ChallengeResponse, error) {
	challenges, err := s.challenges.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}

	out := make([]dto.ChallengeResponse, 0, len(challenges))
	for _, c := range challenges {
		out = append(out, dto.NewChallengeResponse(c))
	}
	return out, nil
}

// adjudicate applies the verdict rules: a claimed type matching a genuinely
// injected fallacy earns the full bonus, a recognized rhetorical appeal on a
// clean post earns partial credit, anything else earns nothing.
func adjudicate(post models.DebatePost, claimedType string) (models.ChallengeVerdict, float64, string) {
	claimed := normalizeClaimType(claimedType)

	if post.IsFallacy {
		if claimed == normalizeClaimType(post.FallacyType) {
			return models.VerdictCorrectFallacy, challengeFallacyBonus,
				fmt.Sprintf("Correct. The statement does commit the %s fallacy.", humanizeClaimType(claimed))
		}
		return models.VerdictIncorrect, 0, fmt.Sprintf(
			"Not quite. The statement contains a different reasoning flaw than %s. Look again at how the conclusion is supported.",
			humanizeClaimType(claimed))
	}

	if reason, ok := rhetoricalAppeals[claimed]; ok {
		return models.VerdictCorrectAppeal, challengeAppealBonus,
			fmt.Sprintf("Good eye. This is not a fallacy, but %s, which is a fair persuasion technique.", reason)
	}

	return models.VerdictIncorrect, 0, fmt.Sprintf(
		"The statement does not commit %s. Its reasoning holds up; claiming a fallacy requires showing where the logic actually breaks.",
		humanizeClaimType(claimed))
}

func normalizeClaimType(claimedType string) string {
	claimed := strings.ToLower(strings.TrimSpace(claimedType))
	return strings.ReplaceAll(claimed, " ", "_")
}

func humanizeClaimType(claimed string) string {
	return strings.ReplaceAll(claimed, "_", " ")
}
