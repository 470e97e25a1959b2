package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ctroy978/umadex-sub002/internal/config"
	"github.com/ctroy978/umadex-sub002/internal/dto"
	"github.com/ctroy978/umadex-sub002/internal/handler"
	"github.com/ctroy978/umadex-sub002/internal/middleware"
	"github.com/ctroy978/umadex-sub002/internal/models"
	"github.com/ctroy978/umadex-sub002/internal/repository"
	"github.com/ctroy978/umadex-sub002/internal/router"
	"github.com/ctroy978/umadex-sub002/internal/service"
	"github.com/ctroy978/umadex-sub002/pkg/ai"
)

type e2eOpponent struct{}

func (e2eOpponent) Generate(_ context.Context, input ai.OpponentInput) (ai.OpponentResult, error) {
	return ai.OpponentResult{
		Text: fmt.Sprintf("Arguing %s in debate %d round %d, the evidence points the other way once the full picture is considered.",
			input.Position, input.DebateNumber, input.RoundNumber),
		IsFallacy:   input.InjectFallacy,
		FallacyType: input.FallacyType,
	}, nil
}

func (e2eOpponent) Coach(_ context.Context, input ai.CoachInput) (ai.CoachResult, error) {
	return ai.CoachResult{
		CoachingFeedback: fmt.Sprintf("Debate %d review.", input.DebateNumber),
		Strengths:        []string{"stayed on topic"},
		ImprovementAreas: []string{"stronger rebuttals"},
		Suggestions:      []string{"quote the opponent directly"},
	}, nil
}

func setupDebateStack(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.DebateAssignment{}, &models.StudentDebate{}, &models.DebatePost{},
		&models.DebateChallenge{}, &models.ContentFlag{}, &models.DebateRoundFeedback{},
		&models.FallacyTemplate{}, &models.OverrideCode{}, &models.TeacherBypass{},
	))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	assignmentRepo := repository.NewDebateAssignmentRepository(db)
	sessionRepo := repository.NewStudentDebateRepository(db)
	postRepo := repository.NewDebatePostRepository(db)
	challengeRepo := repository.NewDebateChallengeRepository(db)
	flagRepo := repository.NewContentFlagRepository(db)
	feedbackRepo := repository.NewRoundFeedbackRepository(db)
	templateRepo := repository.NewFallacyTemplateRepository(db)
	overrideRepo := repository.NewOverrideCodeRepository(db)

	scheduler := service.NewFallacyScheduler(templateRepo, logger)
	moderation := service.NewModerationService(0.7, logger)
	scoring := service.NewScoringService(postRepo, challengeRepo, sessionRepo, validate, logger)
	overrides := service.NewOverrideService(overrideRepo, assignmentRepo, nil, validate, logger)
	events := service.NewEventPublisher(nil, "", logger)
	opponent := e2eOpponent{}

	sessions := service.NewSessionService(
		sessionRepo, assignmentRepo, postRepo, flagRepo, feedbackRepo,
		scheduler, moderation, scoring, overrides,
		opponent, opponent, events, nil,
		service.SessionConfig{}, validate, logger,
	)
	challenges := service.NewChallengeService(postRepo, challengeRepo, sessionRepo, validate, logger)
	assignments := service.NewAssignmentService(assignmentRepo, validate, logger)
	flags := service.NewFlagReviewService(flagRepo, postRepo, validate, logger)

	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger})

	router.Register(app, config.Config{AppName: "Test", StatementRateLimit: 100}, router.Dependencies{
		DebateHandler:  handler.NewDebateHandler(sessions, challenges, logger),
		TeacherHandler: handler.NewTeacherHandler(assignments, scoring, flags, overrides, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(1))
			c.Locals("user_role", "teacher")
			return c.Next()
		},
	})

	return app
}

func postJSON(t *testing.T, app *fiber.App, target string, payload interface{}) *http.Response {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

// TestFullDebateRun drives a complete three-debate session end to end over
// HTTP: every student statement, every opponent reply, rubric scoring, the
// per-debate rollups, and the final grade.
func TestFullDebateRun(t *testing.T) {
	app := setupDebateStack(t)

	moderationOff := false
	resp := postJSON(t, app, "/api/v2/debate/teacher/assignments", dto.AssignmentCreateRequest{
		Topic:              "Homework should be abolished in primary schools",
		RoundsPerDebate:    2,
		TimeLimitHours:     24,
		FallacyFrequency:   "disabled",
		ModerationEnabled:  &moderationOff,
		WordCountMin:       25,
		WordCountMax:       300,
		StatementsPerRound: 3,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		Data dto.AssignmentResponse `json:"data"`
	}
	decodeBody(t, resp, &created)

	resp = postJSON(t, app, "/api/v2/debate/sessions", dto.StartSessionRequest{AssignmentID: created.Data.ID})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var started struct {
		Data dto.SessionResponse `json:"data"`
	}
	decodeBody(t, resp, &started)
	sessionID := started.Data.ID

	filler := strings.Repeat("the argument keeps its shape because every claim leans on checkable evidence ", 3)

	statementTarget := fmt.Sprintf("/api/v2/debate/sessions/%d/statements", sessionID)
	var lastSubmit dto.SubmitStatementResponse
	submission := 0

	// Two student statements per round, two rounds per debate, three debates.
	for debate := 1; debate <= 3; debate++ {
		for round := 1; round <= 2; round++ {
			for _, slot := range []int{1, 3} {
				submission++
				content := fmt.Sprintf("Submission %d for debate %d round %d slot %d: %s", submission, debate, round, slot, filler)
				resp = postJSON(t, app, statementTarget, dto.SubmitStatementRequest{Content: content})
				require.Equal(t, fiber.StatusCreated, resp.StatusCode, "submission %d", submission)

				var submit struct {
					Data dto.SubmitStatementResponse `json:"data"`
				}
				decodeBody(t, resp, &submit)
				lastSubmit = submit.Data

				scoreTarget := fmt.Sprintf("/api/v2/debate/teacher/posts/%d/score", submit.Data.StudentPost.ID)
				scoreResp := postJSON(t, app, scoreTarget, dto.ScorePostRequest{
					Clarity: 4, Evidence: 4, Logic: 4, Persuasiveness: 4, Rebuttal: 4,
				})
				require.Equal(t, fiber.StatusOK, scoreResp.StatusCode)
				require.NoError(t, scoreResp.Body.Close())

				if slot == 1 {
					require.NotNil(t, submit.Data.OpponentPost)
				} else {
					require.Nil(t, submit.Data.OpponentPost)
					require.True(t, submit.Data.RoundClosed)
				}
			}
		}
	}

	require.Equal(t, 12, submission)
	require.True(t, lastSubmit.DebateClosed)
	require.True(t, lastSubmit.SessionDone)

	req := httptest.NewRequest("GET", fmt.Sprintf("/api/v2/debate/sessions/%d", sessionID), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var final struct {
		Data dto.SessionResponse `json:"data"`
	}
	decodeBody(t, resp, &final)

	require.Equal(t, "completed", final.Data.Status)
	require.Nil(t, final.Data.Deadline)
	require.Len(t, final.Data.Posts, 18, "three posts per round, six rounds")
	require.Len(t, final.Data.Feedback, 3, "one coaching note per debate")

	require.NotNil(t, final.Data.Debate1Percentage)
	require.NotNil(t, final.Data.Debate2Percentage)
	require.NotNil(t, final.Data.Debate3Percentage)
	require.InDelta(t, 80.0, *final.Data.Debate1Percentage, 0.001)
	require.InDelta(t, 80.0, *final.Data.Debate2Percentage, 0.001)
	require.InDelta(t, 80.0, *final.Data.Debate3Percentage, 0.001)

	// Flat 80s earn the consistency bonus and nothing else.
	require.NotNil(t, final.Data.FinalPercentage)
	require.InDelta(t, 82.0, *final.Data.FinalPercentage, 0.001)

	// The completed session refuses further statements.
	resp = postJSON(t, app, statementTarget, dto.SubmitStatementRequest{Content: "Submission after completion " + filler})
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}
