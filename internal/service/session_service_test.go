package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ctroy978/umadex-sub002/internal/dto"
	"github.com/ctroy978/umadex-sub002/internal/models"
	"github.com/ctroy978/umadex-sub002/internal/repository"
	"github.com/ctroy978/umadex-sub002/pkg/ai"
)

type fakeFlagRepo struct {
	flags []models.ContentFlag
}

func (r *fakeFlagRepo) Create(ctx context.Context, flag *models.ContentFlag) error {
	flag.ID = uint(len(r.flags) + 1)
	r.flags = append(r.flags, *flag)
	return nil
}

func (r *fakeFlagRepo) GetByID(ctx context.Context, id uint) (models.ContentFlag, error) {
	for _, f := range r.flags {
		if f.ID == id {
			return f, nil
		}
	}
	return models.ContentFlag{}, gorm.ErrRecordNotFound
}

func (r *fakeFlagRepo) List(ctx context.Context, filter repository.ContentFlagFilter) ([]models.ContentFlag, int64, error) {
	return r.flags, int64(len(r.flags)), nil
}

func (r *fakeFlagRepo) Update(ctx context.Context, flag *models.ContentFlag) error {
	for i, f := range r.flags {
		if f.ID == flag.ID {
			r.flags[i] = *flag
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeFlagRepo) PendingForPost(ctx context.Context, postID uint) (bool, error) {
	for _, f := range r.flags {
		if f.PostID != nil && *f.PostID == postID && f.Status == models.FlagStatusPending {
			return true, nil
		}
	}
	return false, nil
}

type fakeFeedbackRepo struct {
	notes []models.DebateRoundFeedback
}

func (r *fakeFeedbackRepo) Create(ctx context.Context, feedback *models.DebateRoundFeedback) error {
	feedback.ID = uint(len(r.notes) + 1)
	r.notes = append(r.notes, *feedback)
	return nil
}

func (r *fakeFeedbackRepo) GetByDebate(ctx context.Context, studentDebateID uint, debateNumber int) (models.DebateRoundFeedback, error) {
	for _, n := range r.notes {
		if n.StudentDebateID == studentDebateID && n.DebateNumber == debateNumber {
			return n, nil
		}
	}
	return models.DebateRoundFeedback{}, gorm.ErrRecordNotFound
}

func (r *fakeFeedbackRepo) ListBySession(ctx context.Context, studentDebateID uint) ([]models.DebateRoundFeedback, error) {
	var out []models.DebateRoundFeedback
	for _, n := range r.notes {
		if n.StudentDebateID == studentDebateID {
			out = append(out, n)
		}
	}
	return out, nil
}

type stubGenerator struct {
	fail      bool
	calls     int
	lastInput ai.OpponentInput
}

func (g *stubGenerator) Generate(ctx context.Context, input ai.OpponentInput) (ai.OpponentResult, error) {
	g.calls++
	g.lastInput = input
	if g.fail {
		return ai.OpponentResult{}, errors.New("generation backend down")
	}
	return ai.OpponentResult{
		Text:        "Requiring school uniforms restricts the self expression students need while growing up.",
		IsFallacy:   input.InjectFallacy,
		FallacyType: input.FallacyType,
	}, nil
}

func (g *stubGenerator) Coach(ctx context.Context, input ai.CoachInput) (ai.CoachResult, error) {
	if g.fail {
		return ai.CoachResult{}, errors.New("generation backend down")
	}
	return ai.CoachResult{
		CoachingFeedback: "Strong openings, keep citing evidence.",
		Strengths:        []string{"clear structure"},
		ImprovementAreas: []string{"rebuttal depth"},
		Suggestions:      []string{"quote the opponent directly"},
	}, nil
}

type recordingPublisher struct {
	events []DebateEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event DebateEvent) {
	p.events = append(p.events, event)
}

func (p *recordingPublisher) typesSeen() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type sessionFixture struct {
	svc       SessionService
	sessions  *fakeSessionRepo
	posts     *fakePostRepo
	flags     *fakeFlagRepo
	feedback  *fakeFeedbackRepo
	events    *recordingPublisher
	generator *stubGenerator
	codes     *fakeOverrideRepo
	overrides OverrideService
}

func sessionTestAssignment() models.DebateAssignment {
	return models.DebateAssignment{
		ID:                 5,
		TeacherID:          2,
		Topic:              uniformTopic,
		RoundsPerDebate:    3,
		DebateCount:        3,
		StatementsPerRound: 5,
		TimeLimitHours:     8,
		WordCountMin:       10,
		WordCountMax:       300,
		FallacyFrequency:   models.FallacyFrequencyDisabled,
		ModerationEnabled:  true,
	}
}

func newSessionFixture(t *testing.T, reviewThreshold float64, sessions ...models.StudentDebate) *sessionFixture {
	t.Helper()
	return newSessionFixtureFor(t, sessionTestAssignment(), reviewThreshold, sessions...)
}

func newSessionFixtureFor(t *testing.T, assignment models.DebateAssignment, reviewThreshold float64, sessions ...models.StudentDebate) *sessionFixture {
	t.Helper()

	f := &sessionFixture{
		sessions:  newFakeSessionRepo(sessions...),
		posts:     newFakePostRepo(),
		flags:     &fakeFlagRepo{},
		feedback:  &fakeFeedbackRepo{},
		events:    &recordingPublisher{},
		generator: &stubGenerator{},
		codes:     newFakeOverrideRepo(),
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	assignments := newFakeAssignmentRepo(assignment)
	challenges := &fakeChallengeRepo{}
	scheduler := NewFallacyScheduler(&stubTemplateRepo{}, testLogger())
	scoring := NewScoringService(f.posts, challenges, f.sessions, validate, testLogger())
	f.overrides = newTestOverrideService(f.codes, assignments, nil)

	f.svc = NewSessionService(
		f.sessions, assignments, f.posts, f.flags, f.feedback,
		scheduler, NewModerationService(reviewThreshold, testLogger()), scoring, f.overrides,
		f.generator, f.generator, f.events, nil,
		SessionConfig{GenerationTimeout: time.Second},
		validate, testLogger(),
	)
	return f
}

func midSession(statement int) models.StudentDebate {
	deadline := time.Now().Add(8 * time.Hour)
	return models.StudentDebate{
		ID:                    1,
		AssignmentID:          5,
		StudentID:             21,
		Status:                models.DebateStatusDebate1,
		CurrentDebate:         1,
		CurrentRound:          1,
		CurrentStatement:      statement,
		Debate1Position:       models.PositionPro,
		CurrentDebateDeadline: &deadline,
		Assignment:            sessionTestAssignment(),
	}
}

const onTopicStatement = "School uniforms should be required because uniforms reduce visible income differences between students and build a shared school identity."

func TestSessionStartIsIdempotent(t *testing.T) {
	f := newSessionFixture(t, 0.7)

	first, err := f.svc.Start(context.Background(), 21, dto.StartSessionRequest{AssignmentID: 5})
	require.NoError(t, err)
	require.Equal(t, "debate_1", first.Status)
	require.Equal(t, 1, first.CurrentDebate)
	require.Equal(t, uniformTopic, first.Topic)
	require.NotNil(t, first.Deadline)

	second, err := f.svc.Start(context.Background(), 21, dto.StartSessionRequest{AssignmentID: 5})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID, "starting again resumes the existing session")
	require.Len(t, f.sessions.sessions, 1)
}

func TestSessionStartUnknownAssignment(t *testing.T) {
	f := newSessionFixture(t, 0.7)

	_, err := f.svc.Start(context.Background(), 21, dto.StartSessionRequest{AssignmentID: 404})
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestSubmitStatementGeneratesOpponentReply(t *testing.T) {
	f := newSessionFixture(t, 0.7, midSession(1))

	result, err := f.svc.SubmitStatement(context.Background(), 1, 21, dto.SubmitStatementRequest{
		Content: onTopicStatement,
	})
	require.NoError(t, err)
	require.Equal(t, "student", result.StudentPost.PostType)
	require.Equal(t, 1, result.StudentPost.StatementNumber)
	require.NotNil(t, result.OpponentPost)
	require.Equal(t, "ai", result.OpponentPost.PostType)
	require.Equal(t, 2, result.OpponentPost.StatementNumber)
	require.False(t, result.RoundClosed)
	require.Equal(t, 3, result.Session.CurrentStatement)
	require.Len(t, f.posts.posts, 2)

	// The opponent argues the other side of the student's position.
	require.Equal(t, string(models.PositionCon), f.generator.lastInput.Position)
}

func TestSubmitStatementClosingRoundSkipsOpponent(t *testing.T) {
	f := newSessionFixture(t, 0.7, midSession(5))

	result, err := f.svc.SubmitStatement(context.Background(), 1, 21, dto.SubmitStatementRequest{
		Content: onTopicStatement,
	})
	require.NoError(t, err)
	require.True(t, result.RoundClosed)
	require.Nil(t, result.OpponentPost)
	require.Equal(t, 2, result.Session.CurrentRound)
	require.Equal(t, 1, result.Session.CurrentStatement)
	require.Zero(t, f.generator.calls)
}

func TestSubmitStatementWordCountRejected(t *testing.T) {
	f := newSessionFixture(t, 0.7, midSession(1))

	_, err := f.svc.SubmitStatement(context.Background(), 1, 21, dto.SubmitStatementRequest{
		Content: "uniforms are required",
	})
	require.ErrorIs(t, err, ErrWordCount)
	require.Empty(t, f.posts.posts)
	require.Equal(t, 1, f.sessions.sessions[1].CurrentStatement, "a rejected turn does not advance")
}

func TestSubmitStatementModerationRejection(t *testing.T) {
	f := newSessionFixture(t, 0.7, midSession(1))

	_, err := f.svc.SubmitStatement(context.Background(), 1, 21, dto.SubmitStatementRequest{
		Content: "School uniforms should be required and you are an idiot for arguing uniforms hurt anyone at school.",
	})
	require.ErrorIs(t, err, ErrModerationHold)
	require.Empty(t, f.posts.posts, "a rejected statement is never persisted as a post")
	require.Len(t, f.flags.flags, 1)
	require.Nil(t, f.flags.flags[0].PostID)
	require.Equal(t, models.FlagStatusPending, f.flags.flags[0].Status)
	require.Equal(t, []string{EventFlagRaised}, f.events.typesSeen())
}

func TestSubmitStatementLowConfidenceHeldButAccepted(t *testing.T) {
	f := newSessionFixture(t, 0.9, midSession(1))

	result, err := f.svc.SubmitStatement(context.Background(), 1, 21, dto.SubmitStatementRequest{
		Content: "School uniforms should be required, the damn cost argument ignores how uniforms lower clothing spending for students overall.",
	})
	require.NoError(t, err)
	require.Equal(t, string(models.ModerationStatusHeld), result.StudentPost.ModerationStatus)
	require.Len(t, f.flags.flags, 1)
	require.NotNil(t, f.flags.flags[0].PostID)
	require.Equal(t, result.StudentPost.ID, *f.flags.flags[0].PostID)
}

func TestSubmitStatementRejectionKeepsOverrideCode(t *testing.T) {
	session := midSession(1)
	past := time.Now().Add(-2 * time.Hour)
	session.CurrentDebateDeadline = &past
	f := newSessionFixture(t, 0.7, session)

	minted, err := f.overrides.MintCode(context.Background(), 2, dto.OverrideCodeCreateRequest{
		StudentID: 21, AssignmentID: 5,
	})
	require.NoError(t, err)

	// Too short even with a valid code: the submission is rejected and the
	// code survives for the retry.
	_, err = f.svc.SubmitStatement(context.Background(), 1, 21, dto.SubmitStatementRequest{
		Content:      "uniforms are required",
		OverrideCode: minted.Code,
	})
	require.ErrorIs(t, err, ErrWordCount)

	record, err := f.codes.GetByCode(context.Background(), minted.Code)
	require.NoError(t, err)
	require.Nil(t, record.RedeemedAt, "a rejected submission must not consume the code")

	// The corrected resubmission is the one that burns it.
	result, err := f.svc.SubmitStatement(context.Background(), 1, 21, dto.SubmitStatementRequest{
		Content:      onTopicStatement,
		OverrideCode: minted.Code,
	})
	require.NoError(t, err)
	require.Equal(t, "student", result.StudentPost.PostType)

	record, err = f.codes.GetByCode(context.Background(), minted.Code)
	require.NoError(t, err)
	require.NotNil(t, record.RedeemedAt)
	require.Contains(t, f.events.typesSeen(), EventOverrideRedeemed)
}

func TestSubmitStatementUsesAssignmentFlagThreshold(t *testing.T) {
	// The attack finding scores 0.80: past the 0.7 service default, but not
	// past this assignment's tuned threshold, so the statement is held for
	// review instead of rejected outright.
	attack := "School uniforms should be required and you are an idiot for arguing uniforms hurt anyone at school."

	lenient := sessionTestAssignment()
	lenient.AutoFlagThreshold = 0.95
	session := midSession(1)
	session.Assignment = lenient
	f := newSessionFixtureFor(t, lenient, 0.7, session)

	result, err := f.svc.SubmitStatement(context.Background(), 1, 21, dto.SubmitStatementRequest{
		Content: attack,
	})
	require.NoError(t, err)
	require.Equal(t, string(models.ModerationStatusHeld), result.StudentPost.ModerationStatus)
	require.Len(t, f.flags.flags, 1)

	// A stricter assignment rejects content the service default would hold.
	mild := "School uniforms should be required, the damn cost argument ignores how uniforms lower clothing spending for students overall."

	strict := sessionTestAssignment()
	strict.AutoFlagThreshold = 0.6
	session = midSession(1)
	session.Assignment = strict
	f = newSessionFixtureFor(t, strict, 0.9, session)

	_, err = f.svc.SubmitStatement(context.Background(), 1, 21, dto.SubmitStatementRequest{
		Content: mild,
	})
	require.ErrorIs(t, err, ErrModerationHold)
	require.Empty(t, f.posts.posts)
}

func TestSubmitStatementConcurrentConflict(t *testing.T) {
	f := newSessionFixture(t, 0.7, midSession(1))
	f.sessions.staleOnce = true

	_, err := f.svc.SubmitStatement(context.Background(), 1, 21, dto.SubmitStatementRequest{
		Content: onTopicStatement,
	})
	require.ErrorIs(t, err, ErrConcurrentSubmission)
	require.Empty(t, f.posts.posts, "the losing submission must not write any post")
}

func TestSubmitStatementGeneratorOutage(t *testing.T) {
	f := newSessionFixture(t, 0.7, midSession(1))
	f.generator.fail = true

	_, err := f.svc.SubmitStatement(context.Background(), 1, 21, dto.SubmitStatementRequest{
		Content: onTopicStatement,
	})
	require.ErrorIs(t, err, ErrGenerationUnavailable)
	require.Equal(t, 2, f.generator.calls, "generation is retried once")
	require.Empty(t, f.posts.posts)
	require.Equal(t, 1, f.sessions.sessions[1].CurrentStatement, "the turn stays with the student")
}

func TestSubmitStatementClosesDebate(t *testing.T) {
	session := midSession(5)
	session.CurrentRound = 3
	f := newSessionFixture(t, 0.7, session)

	result, err := f.svc.SubmitStatement(context.Background(), 1, 21, dto.SubmitStatementRequest{
		Content: onTopicStatement,
	})
	require.NoError(t, err)
	require.True(t, result.DebateClosed)
	require.False(t, result.SessionDone)
	require.Equal(t, 2, result.Session.CurrentDebate)
	require.Equal(t, string(models.PositionCon), result.Session.CurrentPosition, "debate two argues the opposite side")
	require.NotNil(t, result.Session.Debate1Percentage)
	require.Len(t, f.feedback.notes, 1, "closing a debate produces a coaching note")
	require.Contains(t, f.events.typesSeen(), EventDebateCompleted)
}

func TestSubmitStatementCompletesSession(t *testing.T) {
	session := midSession(5)
	session.Status = models.DebateStatusDebate3
	session.CurrentDebate = 3
	session.CurrentRound = 3
	session.Debate2Position = models.PositionCon
	session.Debate3Position = models.PositionPro
	d1, d2 := 80.0, 85.0
	session.Debate1Percentage = &d1
	session.Debate2Percentage = &d2
	f := newSessionFixture(t, 0.7, session)

	result, err := f.svc.SubmitStatement(context.Background(), 1, 21, dto.SubmitStatementRequest{
		Content: onTopicStatement,
	})
	require.NoError(t, err)
	require.True(t, result.SessionDone)
	require.Equal(t, string(models.DebateStatusCompleted), result.Session.Status)
	require.NotNil(t, result.Session.Debate3Percentage)
	require.NotNil(t, result.Session.FinalPercentage)
	require.Contains(t, f.events.typesSeen(), EventSessionCompleted)
}

func TestGetSessionEnforcesOwnership(t *testing.T) {
	f := newSessionFixture(t, 0.7, midSession(1))

	_, err := f.svc.GetSession(context.Background(), 1, 99)
	require.ErrorIs(t, err, ErrSessionNotFound)

	response, err := f.svc.GetSession(context.Background(), 1, 21)
	require.NoError(t, err)
	require.Equal(t, uint(1), response.ID)
}

func TestCheckContentNeverPersists(t *testing.T) {
	f := newSessionFixture(t, 0.7, midSession(1))

	result, err := f.svc.CheckContent(context.Background(), 1, 21, dto.ContentCheckRequest{
		Content: "School uniforms are damn useful and should be required, the counterargument is bullshit.",
	})
	require.NoError(t, err)
	require.True(t, result.WouldFlag)
	require.True(t, result.RequiresReview)
	require.Equal(t, string(models.FlagProfanity), result.FlagType)
	require.Empty(t, f.flags.flags, "the quick check raises no flag")
}
