package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/ctroy978/umadex-sub002/internal/dto"
	"github.com/ctroy978/umadex-sub002/internal/handler"
)

type stubSessionService struct {
	session dto.SessionResponse
}

func (s stubSessionService) Start(context.Context, uint, dto.StartSessionRequest) (dto.SessionResponse, error) {
	return s.session, nil
}

func (s stubSessionService) GetSession(context.Context, uint, uint) (dto.SessionResponse, error) {
	return s.session, nil
}

func (s stubSessionService) SubmitStatement(context.Context, uint, uint, dto.SubmitStatementRequest) (dto.SubmitStatementResponse, error) {
	return dto.SubmitStatementResponse{Session: s.session}, nil
}

func (s stubSessionService) CheckContent(context.Context, uint, uint, dto.ContentCheckRequest) (dto.ContentCheckResponse, error) {
	return dto.ContentCheckResponse{}, nil
}

type stubChallengeService struct{}

func (stubChallengeService) Challenge(context.Context, uint, uint, uint, dto.ChallengeRequest) (dto.ChallengeResponse, error) {
	return dto.ChallengeResponse{}, nil
}

func (stubChallengeService) ListBySession(context.Context, uint) ([]dto.ChallengeResponse, error) {
	return nil, nil
}

func TestSessionResponseContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "session_response.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	now := time.Now().UTC()
	deadline := now.Add(8 * time.Hour)
	score4 := 4
	base := 80.0
	bonus := 1.0
	final := 81.0

	session := dto.SessionResponse{
		ID:                7,
		AssignmentID:      5,
		StudentID:         21,
		Topic:             "School uniforms should be required",
		Status:            "debate_1",
		CurrentDebate:     1,
		CurrentRound:      2,
		CurrentStatement:  1,
		CurrentPosition:   "pro",
		Deadline:          &deadline,
		Debate1Percentage: nil,
		Posts: []dto.DebatePostResponse{
			{
				ID:                  1,
				DebateNumber:        1,
				RoundNumber:         1,
				StatementNumber:     1,
				PostType:            "student",
				Content:             "Uniforms level the playing field for students of every background.",
				WordCount:           10,
				ClarityScore:        &score4,
				EvidenceScore:       &score4,
				LogicScore:          &score4,
				PersuasivenessScore: &score4,
				RebuttalScore:       &score4,
				BasePercentage:      &base,
				BonusPoints:         &bonus,
				FinalPercentage:     &final,
				ModerationStatus:    "clean",
				CreatedAt:           now,
			},
			{
				ID:               2,
				DebateNumber:     1,
				RoundNumber:      1,
				StatementNumber:  2,
				PostType:         "ai",
				Content:          "Mandating identical clothing does nothing to address the deeper inequities.",
				WordCount:        11,
				AIPersonality:    "analytical",
				ModerationStatus: "clean",
				CreatedAt:        now,
			},
		},
		Feedback: []dto.RoundFeedbackResponse{
			{
				DebateNumber:     1,
				CoachingFeedback: "Strong opening debate.",
				Strengths:        []string{"clear thesis"},
				ImprovementAreas: []string{"cite sources"},
				Suggestions:      []string{"anticipate the rebuttal"},
			},
		},
	}

	debateHandler := handler.NewDebateHandler(stubSessionService{session: session}, stubChallengeService{}, zerolog.Nop())

	app := fiber.New()
	group := app.Group("/api/v2/debate", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(21))
		c.Locals("user_role", "student")
		return c.Next()
	})
	debateHandler.Register(group)

	req := httptest.NewRequest(http.MethodGet, "/api/v2/debate/sessions/7", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}
