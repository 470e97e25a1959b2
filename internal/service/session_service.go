package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ctroy978/umadex-sub002/internal/dto"
	"github.com/ctroy978/umadex-sub002/internal/models"
	"github.com/ctroy978/umadex-sub002/internal/observability"
	"github.com/ctroy978/umadex-sub002/internal/repository"
	"github.com/ctroy978/umadex-sub002/pkg/ai"
)

// aiPersonalities are the opponent voices drawn per debate when the
// assignment enables them.
var aiPersonalities = []string{"analytical", "passionate", "skeptical", "scholarly", "pragmatic"}

// SessionConfig carries the orchestrator tunables sourced from config.
type SessionConfig struct {
	GenerationTimeout    time.Duration
	CacheTTL             time.Duration
	MaxFallacyDifficulty int
}

// SessionService is the orchestrator: on each student action it consults the
// turn sequencer for legality, the moderation gate for safety, the fallacy
// scheduler for what the opponent should say next, and the scoring engine on
// closures, then persists the result.
type SessionService interface {
	Start(ctx context.Context, studentID uint, payload dto.StartSessionRequest) (dto.SessionResponse, error)
	GetSession(ctx context.Context, sessionID, studentID uint) (dto.SessionResponse, error)
	SubmitStatement(ctx context.Context, sessionID, studentID uint, payload dto.SubmitStatementRequest) (dto.SubmitStatementResponse, error)
	CheckContent(ctx context.Context, sessionID, studentID uint, payload dto.ContentCheckRequest) (dto.ContentCheckResponse, error)
}

type sessionService struct {
	sessions    repository.StudentDebateRepository
	assignments repository.DebateAssignmentRepository
	posts       repository.DebatePostRepository
	flags       repository.ContentFlagRepository
	feedback    repository.RoundFeedbackRepository

	sequencer  TurnSequencer
	scheduler  *FallacyScheduler
	moderation ModerationService
	scoring    ScoringService
	overrides  OverrideService
	opponent   ai.OpponentGenerator
	coach      ai.CoachGenerator
	events     EventPublisher

	cache     *redis.Client
	cfg       SessionConfig
	sanitizer *bluemonday.Policy
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewSessionService constructs the orchestrator.
func NewSessionService(
	sessions repository.StudentDebateRepository,
	assignments repository.DebateAssignmentRepository,
	posts repository.DebatePostRepository,
	flags repository.ContentFlagRepository,
	feedback repository.RoundFeedbackRepository,
	scheduler *FallacyScheduler,
	moderation ModerationService,
	scoring ScoringService,
	overrides OverrideService,
	opponent ai.OpponentGenerator,
	coach ai.CoachGenerator,
	events EventPublisher,
	cache *redis.Client,
	cfg SessionConfig,
	validate *validator.Validate,
	logger zerolog.Logger,
) SessionService {
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = 30 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Second
	}
	if cfg.MaxFallacyDifficulty <= 0 {
		cfg.MaxFallacyDifficulty = 3
	}

	return &sessionService{
		sessions:    sessions,
		assignments: assignments,
		posts:       posts,
		flags:       flags,
		feedback:    feedback,
		sequencer:   NewTurnSequencer(),
		scheduler:   scheduler,
		moderation:  moderation,
		scoring:     scoring,
		overrides:   overrides,
		opponent:    opponent,
		coach:       coach,
		events:      events,
		cache:       cache,
		cfg:         cfg,
		sanitizer:   bluemonday.StrictPolicy(),
		validator:   validate,
		logger:      logger.With().Str("component", "session_service").Logger(),
		tracer:      otel.Tracer("github.com/ctroy978/umadex-sub002/internal/service/session"),
		now:         time.Now,
	}
}

func (s *sessionService) Start(ctx context.Context, studentID uint, payload dto.StartSessionRequest) (dto.SessionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SessionResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, payload.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SessionResponse{}, ErrAssignmentNotFound
		}
		return dto.SessionResponse{}, fmt.Errorf("load assignment: %w", err)
	}

	// Starting is idempotent: an existing session is resumed, not recreated.
	existing, err := s.sessions.GetByAssignmentAndStudent(ctx, assignment.ID, studentID)
	if err == nil {
		return s.buildResponse(ctx, existing)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.SessionResponse{}, fmt.Errorf("load session: %w", err)
	}

	startedAt := s.now()
	deadline := assignment.DebateDeadline(startedAt)

	session := models.StudentDebate{
		AssignmentID:           assignment.ID,
		StudentID:              studentID,
		Status:                 models.DebateStatusDebate1,
		CurrentDebate:          1,
		CurrentRound:           1,
		CurrentStatement:       1,
		Debate1Position:        startingPosition(assignment.ID, studentID),
		CurrentDebateStartedAt: &startedAt,
		CurrentDebateDeadline:  &deadline,
	}

	if err := s.sessions.Create(ctx, &session); err != nil {
		return dto.SessionResponse{}, fmt.Errorf("create session: %w", err)
	}

	// The fallacy slot draw needs the persisted ID for its seed.
	s.scheduler.EnterDebate(&session, assignment.FallacyFrequency, assignment.RoundsPerDebate)
	if err := s.sessions.Update(ctx, &session); err != nil {
		return dto.SessionResponse{}, fmt.Errorf("persist schedule: %w", err)
	}
	session.Assignment = assignment

	s.logger.Info().
		Uint("session_id", session.ID).
		Uint("student_id", studentID).
		Uint("assignment_id", assignment.ID).
		Str("position", string(session.Debate1Position)).
		Msg("debate session started")

	return s.buildResponse(ctx, session)
}

// startingPosition assigns the debate-one side, alternating across the roster
// so a class splits roughly evenly.
func startingPosition(assignmentID, studentID uint) models.DebatePosition {
	if (assignmentID+studentID)%2 == 0 {
		return models.PositionPro
	}
	return models.PositionCon
}

func (s *sessionService) GetSession(ctx context.Context, sessionID, studentID uint) (dto.SessionResponse, error) {
	cacheKey := sessionCacheKey(sessionID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.SessionResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil && response.StudentID == studentID {
				s.logger.Debug().Uint("session_id", sessionID).Msg("session cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read session cache")
		}
	}

	session, err := s.loadOwnedSession(ctx, sessionID, studentID)
	if err != nil {
		return dto.SessionResponse{}, err
	}

	response, err := s.buildResponse(ctx, session)
	if err != nil {
		return dto.SessionResponse{}, err
	}

	if s.cache != nil {
		if payload, marshalErr := json.Marshal(response); marshalErr == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cfg.CacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store session cache")
			}
		}
	}

	return response, nil
}

func (s *sessionService) CheckContent(ctx context.Context, sessionID, studentID uint, payload dto.ContentCheckRequest) (dto.ContentCheckResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ContentCheckResponse{}, err
	}

	session, err := s.loadOwnedSession(ctx, sessionID, studentID)
	if err != nil {
		return dto.ContentCheckResponse{}, err
	}

	clean := s.sanitizer.Sanitize(payload.Content)
	result := s.moderation.Analyze(clean, session.Assignment.Topic, session.Assignment.AutoFlagThreshold)

	response := dto.ContentCheckResponse{
		WouldFlag:      result.ShouldFlag,
		RequiresReview: result.RequiresReview,
		WordCount:      CountWords(clean),
	}
	if result.Top != nil {
		response.FlagType = string(result.Top.Type)
		response.Reason = result.Top.Reason
		response.Confidence = result.Top.Confidence
	}

	return response, nil
}

func (s *sessionService) SubmitStatement(ctx context.Context, sessionID, studentID uint, payload dto.SubmitStatementRequest) (dto.SubmitStatementResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmitStatementResponse{}, err
	}

	session, err := s.loadOwnedSession(ctx, sessionID, studentID)
	if err != nil {
		return dto.SubmitStatementResponse{}, err
	}
	assignment := session.Assignment

	spanCtx, span := s.tracer.Start(ctx, "debate.submit_statement", trace.WithAttributes(
		attribute.Int("debate.session_id", int(session.ID)),
		attribute.Int("debate.number", session.CurrentDebate),
		attribute.Int("debate.round", session.CurrentRound),
		attribute.Int("debate.statement", session.CurrentStatement),
	))
	defer span.End()

	content := s.sanitizer.Sanitize(payload.Content)
	wordCount := CountWords(content)

	var grant OverrideGrant
	if payload.OverrideCode != "" {
		grant, err = s.overrides.Verify(spanCtx, studentID, session.AssignmentID, payload.OverrideCode)
		if err != nil {
			observability.OverrideAttempts().WithLabelValues("rejected").Inc()
			span.RecordError(err)
			return dto.SubmitStatementResponse{}, err
		}
		observability.OverrideAttempts().WithLabelValues("accepted").Inc()
	}

	now := s.now()

	// Moderation runs before any state moves. Above the review threshold the
	// turn is rejected and the flag goes to the teacher queue; a lower-
	// confidence finding lets the statement through but holds it from scoring
	// until a teacher resolves the flag.
	held := false
	var analysis ModerationResult
	if assignment.ModerationEnabled {
		analysis = s.moderation.Analyze(content, assignment.Topic, assignment.AutoFlagThreshold)
		if analysis.ShouldFlag && analysis.RequiresReview {
			if err := s.raiseFlag(spanCtx, &session, nil, content, analysis); err != nil {
				span.RecordError(err)
				return dto.SubmitStatementResponse{}, err
			}
			return dto.SubmitStatementResponse{}, ErrModerationHold
		}
		held = analysis.ShouldFlag
	}

	incoming := IncomingStatement{
		StatementNumber: session.CurrentStatement,
		PostType:        models.PostTypeStudent,
		WordCount:       wordCount,
		Position:        models.DebatePosition(payload.Position),
		BypassDeadline:  grant.Granted,
	}
	studentDebate := session.CurrentDebate
	studentRound := session.CurrentRound
	studentStatement := session.CurrentStatement

	result, err := s.sequencer.Advance(assignment, &session, incoming, now)
	if err != nil {
		span.RecordError(err)
		return dto.SubmitStatementResponse{}, err
	}

	studentPost := models.DebatePost{
		StudentDebateID:  session.ID,
		DebateNumber:     studentDebate,
		RoundNumber:      studentRound,
		StatementNumber:  studentStatement,
		PostType:         models.PostTypeStudent,
		Content:          content,
		WordCount:        wordCount,
		ModerationStatus: models.ModerationStatusClean,
	}
	if held {
		studentPost.ModerationStatus = models.ModerationStatusHeld
	}

	// The opponent replies within the same submission unless the student just
	// closed the round. Generation completes before anything is committed, so
	// a timeout leaves no partial state.
	var aiPost *models.DebatePost
	if !result.RoundClosed {
		generated, err := s.generateOpponentTurn(spanCtx, &session, assignment, studentPost)
		if err != nil {
			span.RecordError(err)
			return dto.SubmitStatementResponse{}, err
		}

		aiIncoming := IncomingStatement{
			StatementNumber: session.CurrentStatement,
			PostType:        models.PostTypeAI,
		}
		aiResult, err := s.sequencer.Advance(assignment, &session, aiIncoming, now)
		if err != nil {
			span.RecordError(err)
			return dto.SubmitStatementResponse{}, err
		}
		result.RoundClosed = result.RoundClosed || aiResult.RoundClosed
		result.DebateClosed = result.DebateClosed || aiResult.DebateClosed
		result.SessionDone = result.SessionDone || aiResult.SessionDone
		if aiResult.DebateClosed {
			result.ClosedDebate = aiResult.ClosedDebate
		}
		aiPost = generated
	}

	// Entering a new debate draws its fallacy slot before the session commits.
	if result.DebateClosed && !result.SessionDone {
		s.scheduler.EnterDebate(&session, assignment.FallacyFrequency, assignment.RoundsPerDebate)
	}

	// The code burns only once every check has passed, so a rejected
	// submission leaves it usable for the corrected retry.
	if err := s.overrides.Redeem(spanCtx, grant); err != nil {
		span.RecordError(err)
		return dto.SubmitStatementResponse{}, err
	}

	// The versioned write claims the turn; a concurrent submission loses here
	// before any post exists.
	if err := s.sessions.UpdateVersioned(spanCtx, &session); err != nil {
		if errors.Is(err, repository.ErrStaleSession) {
			return dto.SubmitStatementResponse{}, ErrConcurrentSubmission
		}
		span.RecordError(err)
		return dto.SubmitStatementResponse{}, fmt.Errorf("commit turn: %w", err)
	}

	if grant.CodeID != 0 {
		s.events.Publish(spanCtx, DebateEvent{
			Type:      EventOverrideRedeemed,
			SessionID: session.ID,
			StudentID: studentID,
			Metadata: map[string]interface{}{
				"assignment_id": session.AssignmentID,
				"code_id":       grant.CodeID,
			},
		})
	}

	if err := s.posts.Create(spanCtx, &studentPost); err != nil {
		span.RecordError(err)
		return dto.SubmitStatementResponse{}, fmt.Errorf("persist statement: %w", err)
	}
	observability.StatementsTotal().WithLabelValues(string(models.PostTypeStudent)).Inc()

	if held {
		if err := s.raiseFlag(spanCtx, &session, &studentPost.ID, content, analysis); err != nil {
			s.logger.Error().Err(err).Uint("post_id", studentPost.ID).Msg("failed to record moderation flag for held statement")
		}
	}

	if aiPost != nil {
		if err := s.posts.Create(spanCtx, aiPost); err != nil {
			span.RecordError(err)
			return dto.SubmitStatementResponse{}, fmt.Errorf("persist opponent statement: %w", err)
		}
		observability.StatementsTotal().WithLabelValues(string(models.PostTypeAI)).Inc()
		if aiPost.IsFallacy {
			observability.FallaciesInjected().Inc()
		}
	}

	if result.DebateClosed {
		s.closeDebate(spanCtx, &session, result.ClosedDebate)
	}
	if result.SessionDone {
		s.completeSession(spanCtx, &session)
	}

	s.invalidateCache(spanCtx, session.ID)

	session.Assignment = assignment
	sessionResponse, err := s.buildResponse(spanCtx, session)
	if err != nil {
		return dto.SubmitStatementResponse{}, err
	}

	response := dto.SubmitStatementResponse{
		StudentPost:  dto.NewDebatePostResponse(studentPost),
		RoundClosed:  result.RoundClosed,
		DebateClosed: result.DebateClosed,
		SessionDone:  result.SessionDone,
		Session:      sessionResponse,
	}
	if aiPost != nil {
		opponent := dto.NewDebatePostResponse(*aiPost)
		response.OpponentPost = &opponent
	}

	return response, nil
}

// generateOpponentTurn runs the scheduler decision and the generator call for
// the AI statement that follows the student's. The generator gets one retry
// within the configured timeout per attempt.
func (s *sessionService) generateOpponentTurn(ctx context.Context, session *models.StudentDebate, assignment models.DebateAssignment, studentPost models.DebatePost) (*models.DebatePost, error) {
	statementNumber := session.CurrentStatement
	inject := s.scheduler.ShouldInject(session, session.CurrentDebate, session.CurrentRound, statementNumber)

	input := ai.OpponentInput{
		Topic:        assignment.Topic,
		DebateNumber: session.CurrentDebate,
		RoundNumber:  session.CurrentRound,
		Position:     string(session.PositionFor(session.CurrentDebate).Opposite()),
		GradeLevel:   assignment.GradeLevel,
	}
	if assignment.AIPersonalitiesEnabled {
		input.Personality = personalityFor(session.ID, session.CurrentDebate)
	}
	if inject {
		template, err := s.scheduler.PickFallacy(ctx, session.ID, session.CurrentDebate, assignment.Topic, s.cfg.MaxFallacyDifficulty)
		if err != nil {
			return nil, err
		}
		input.InjectFallacy = true
		input.FallacyType = template.FallacyType
		input.FallacyDescription = template.Description
	}

	transcript, err := s.roundTranscript(ctx, session, studentPost)
	if err != nil {
		return nil, err
	}
	input.PriorStatements = transcript

	result, err := s.generateWithRetry(ctx, input)
	if err != nil {
		s.logger.Error().Err(err).Uint("session_id", session.ID).Msg("opponent generation failed after retry")
		return nil, ErrGenerationUnavailable
	}

	return &models.DebatePost{
		StudentDebateID:  session.ID,
		DebateNumber:     session.CurrentDebate,
		RoundNumber:      session.CurrentRound,
		StatementNumber:  statementNumber,
		PostType:         models.PostTypeAI,
		Content:          result.Text,
		WordCount:        CountWords(result.Text),
		ModerationStatus: models.ModerationStatusClean,
		AIPersonality:    input.Personality,
		IsFallacy:        result.IsFallacy,
		FallacyType:      result.FallacyType,
	}, nil
}

func (s *sessionService) generateWithRetry(ctx context.Context, input ai.OpponentInput) (ai.OpponentResult, error) {
	attempt := func() (ai.OpponentResult, error) {
		genCtx, cancel := context.WithTimeout(ctx, s.cfg.GenerationTimeout)
		defer cancel()
		return s.opponent.Generate(genCtx, input)
	}

	result, err := attempt()
	if err == nil {
		return result, nil
	}
	s.logger.Warn().Err(err).Msg("opponent generation failed, retrying once")
	return attempt()
}

// personalityFor draws a stable opponent voice per (session, debate).
func personalityFor(sessionID uint, debateNumber int) string {
	seed := debateSeed(sessionID, debateNumber)
	if seed < 0 {
		seed = -seed
	}
	return aiPersonalities[seed%int64(len(aiPersonalities))]
}

// roundTranscript collects the current round's statements, including the
// student post being processed, oldest first.
func (s *sessionService) roundTranscript(ctx context.Context, session *models.StudentDebate, pending models.DebatePost) ([]string, error) {
	posts, err := s.posts.ListByDebate(ctx, session.ID, session.CurrentDebate)
	if err != nil {
		return nil, err
	}

	var transcript []string
	for _, post := range posts {
		if post.RoundNumber == session.CurrentRound {
			transcript = append(transcript, post.Content)
		}
	}
	transcript = append(transcript, pending.Content)
	return transcript, nil
}

// raiseFlag persists a moderation flag and notifies the teacher queue.
func (s *sessionService) raiseFlag(ctx context.Context, session *models.StudentDebate, postID *uint, content string, analysis ModerationResult) error {
	flag := models.ContentFlag{
		StudentDebateID: session.ID,
		PostID:          postID,
		StudentID:       session.StudentID,
		Status:          models.FlagStatusPending,
		Content:         content,
	}
	if analysis.Top != nil {
		flag.FlagType = analysis.Top.Type
		flag.Confidence = analysis.Top.Confidence
		flag.Reason = analysis.Top.Reason
	}
	if raw, err := json.Marshal(analysis); err == nil {
		flag.Analysis = datatypes.JSON(raw)
	}

	if err := s.flags.Create(ctx, &flag); err != nil {
		return fmt.Errorf("persist content flag: %w", err)
	}

	observability.FlagsRaised().WithLabelValues(string(flag.FlagType)).Inc()
	s.events.Publish(ctx, DebateEvent{
		Type:      EventFlagRaised,
		SessionID: session.ID,
		StudentID: session.StudentID,
		Metadata: map[string]interface{}{
			"flag_id":    flag.ID,
			"flag_type":  string(flag.FlagType),
			"confidence": flag.Confidence,
		},
	})

	s.logger.Warn().
		Uint("session_id", session.ID).
		Str("flag_type", string(flag.FlagType)).
		Float64("confidence", flag.Confidence).
		Msg("content flag raised")

	return nil
}

// closeDebate runs the rollup and coaching for a debate that just ended.
// Coaching failure is non-fatal; the debate still closes.
func (s *sessionService) closeDebate(ctx context.Context, session *models.StudentDebate, debateNumber int) {
	if _, err := s.scoring.RollupDebate(ctx, session, debateNumber); err != nil {
		s.logger.Error().Err(err).Int("debate", debateNumber).Msg("debate rollup failed")
	} else if err := s.sessions.Update(ctx, session); err != nil {
		s.logger.Error().Err(err).Int("debate", debateNumber).Msg("failed to persist debate rollup")
	}

	if err := s.generateCoaching(ctx, session, debateNumber); err != nil {
		s.logger.Warn().Err(err).Int("debate", debateNumber).Msg("coaching feedback unavailable, will backfill")
	}

	s.events.Publish(ctx, DebateEvent{
		Type:      EventDebateCompleted,
		SessionID: session.ID,
		StudentID: session.StudentID,
		Metadata: map[string]interface{}{
			"debate_number": debateNumber,
		},
	})
}

func (s *sessionService) completeSession(ctx context.Context, session *models.StudentDebate) {
	if _, err := s.scoring.RollupFinal(ctx, session); err != nil {
		s.logger.Error().Err(err).Uint("session_id", session.ID).Msg("final rollup failed")
		return
	}
	if err := s.sessions.Update(ctx, session); err != nil {
		s.logger.Error().Err(err).Uint("session_id", session.ID).Msg("failed to persist final grade")
		return
	}

	observability.SessionsCompleted().Inc()
	s.events.Publish(ctx, DebateEvent{
		Type:      EventSessionCompleted,
		SessionID: session.ID,
		StudentID: session.StudentID,
	})

	s.logger.Info().
		Uint("session_id", session.ID).
		Msg("debate session completed")
}

func (s *sessionService) generateCoaching(ctx context.Context, session *models.StudentDebate, debateNumber int) error {
	// One coaching note per debate; regeneration is not attempted.
	if _, err := s.feedback.GetByDebate(ctx, session.ID, debateNumber); err == nil {
		return nil
	}

	posts, err := s.posts.ListByDebate(ctx, session.ID, debateNumber)
	if err != nil {
		return err
	}

	transcript := make([]ai.TranscriptEntry, 0, len(posts))
	for _, post := range posts {
		transcript = append(transcript, ai.TranscriptEntry{
			Speaker: string(post.PostType),
			Text:    post.Content,
		})
	}

	coachCtx, cancel := context.WithTimeout(ctx, s.cfg.GenerationTimeout)
	defer cancel()

	result, err := s.coach.Coach(coachCtx, ai.CoachInput{
		Topic:        session.Assignment.Topic,
		DebateNumber: debateNumber,
		Position:     string(session.PositionFor(debateNumber)),
		GradeLevel:   session.Assignment.GradeLevel,
		Transcript:   transcript,
	})
	if err != nil {
		return err
	}

	note := models.DebateRoundFeedback{
		StudentDebateID:  session.ID,
		DebateNumber:     debateNumber,
		CoachingFeedback: result.CoachingFeedback,
		Strengths:        mustJSON(result.Strengths),
		ImprovementAreas: mustJSON(result.ImprovementAreas),
		Suggestions:      mustJSON(result.Suggestions),
	}
	return s.feedback.Create(ctx, &note)
}

func mustJSON(values []string) datatypes.JSON {
	raw, err := json.Marshal(values)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(raw)
}

func (s *sessionService) loadOwnedSession(ctx context.Context, sessionID, studentID uint) (models.StudentDebate, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.StudentDebate{}, ErrSessionNotFound
		}
		return models.StudentDebate{}, fmt.Errorf("load session: %w", err)
	}
	if session.StudentID != studentID {
		return models.StudentDebate{}, ErrSessionNotFound
	}
	return session, nil
}

func (s *sessionService) buildResponse(ctx context.Context, session models.StudentDebate) (dto.SessionResponse, error) {
	posts, err := s.posts.ListBySession(ctx, session.ID)
	if err != nil {
		return dto.SessionResponse{}, fmt.Errorf("list posts: %w", err)
	}
	notes, err := s.feedback.ListBySession(ctx, session.ID)
	if err != nil {
		return dto.SessionResponse{}, fmt.Errorf("list feedback: %w", err)
	}
	return dto.NewSessionResponse(session, posts, notes), nil
}

func (s *sessionService) invalidateCache(ctx context.Context, sessionID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, sessionCacheKey(sessionID)).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate session cache")
	}
}

func sessionCacheKey(sessionID uint) string {
	return fmt.Sprintf("debate:session:%d", sessionID)
}
