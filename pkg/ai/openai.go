package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	generationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "umadex",
		Subsystem: "ai",
		Name:      "generation_duration_seconds",
		Help:      "Duration of AI generation requests",
	}, []string{"model", "kind"})

	generationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "umadex",
		Subsystem: "ai",
		Name:      "generation_failures_total",
		Help:      "Number of AI generation failures",
	}, []string{"model", "kind"})
)

// OpenAIConfig defines configuration options for the OpenAI generators.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIGenerator implements OpponentGenerator and CoachGenerator against the
// OpenAI chat completion API.
type OpenAIGenerator struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIGenerator builds a new generator using the provided configuration.
func NewOpenAIGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 768
	}

	tracer := otel.Tracer("github.com/ctroy978/umadex-sub002/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIGenerator{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Generate asks the model for the opponent's next statement and parses the
// structured response.
func (g *OpenAIGenerator) Generate(parent context.Context, input OpponentInput) (OpponentResult, error) {
	ctx, span := g.tracer.Start(parent, "openai.opponent", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
		attribute.Int("debate", input.DebateNumber),
		attribute.Int("round", input.RoundNumber),
		attribute.Bool("inject_fallacy", input.InjectFallacy),
	))
	defer span.End()

	content, err := g.complete(ctx, "opponent", opponentSystemPrompt(), buildOpponentPrompt(input))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return OpponentResult{}, err
	}

	var result OpponentResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		generationFailures.WithLabelValues(g.cfg.Model, "opponent").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return OpponentResult{}, fmt.Errorf("parse opponent json: %w", err)
	}

	if result.Text == "" {
		err := fmt.Errorf("empty opponent statement returned")
		generationFailures.WithLabelValues(g.cfg.Model, "opponent").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return OpponentResult{}, err
	}

	// The instruction, not the model's self-report, decides injection state.
	result.IsFallacy = input.InjectFallacy
	if input.InjectFallacy {
		result.FallacyType = input.FallacyType
	} else {
		result.FallacyType = ""
	}

	return result, nil
}

// Coach asks the model for end-of-debate coaching feedback.
func (g *OpenAIGenerator) Coach(parent context.Context, input CoachInput) (CoachResult, error) {
	ctx, span := g.tracer.Start(parent, "openai.coach", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
		attribute.Int("debate", input.DebateNumber),
	))
	defer span.End()

	content, err := g.complete(ctx, "coach", coachSystemPrompt(), buildCoachPrompt(input))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return CoachResult{}, err
	}

	var result CoachResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		generationFailures.WithLabelValues(g.cfg.Model, "coach").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return CoachResult{}, fmt.Errorf("parse coach json: %w", err)
	}

	return result, nil
}

func (g *OpenAIGenerator) complete(ctx context.Context, kind, system, user string) (string, error) {
	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := g.client.CreateChatCompletion(ctx, request)
	generationDuration.WithLabelValues(g.cfg.Model, kind).Observe(time.Since(start).Seconds())
	if err != nil {
		generationFailures.WithLabelValues(g.cfg.Model, kind).Inc()
		return "", fmt.Errorf("openai %s: %w", kind, err)
	}

	if len(resp.Choices) == 0 {
		generationFailures.WithLabelValues(g.cfg.Model, kind).Inc()
		return "", fmt.Errorf("no choices returned from openai")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func opponentSystemPrompt() string {
	return "You are a scripted debate opponent for a classroom exercise. Argue the assigned position at the student's grade " +
		"level, in 100-250 words, rebutting the prior statements. Respond with a JSON object containing text. When asked to " +
		"embed a named logical fallacy, weave exactly that fallacy into the argument without naming it."
}

func buildOpponentPrompt(input OpponentInput) string {
	builder := strings.Builder{}
	builder.WriteString("# Topic\n")
	builder.WriteString(input.Topic)
	builder.WriteString(fmt.Sprintf("\n\n## Debate %d, Round %d\n", input.DebateNumber, input.RoundNumber))
	builder.WriteString("## Your Position\n")
	builder.WriteString(input.Position)
	if input.Personality != "" {
		builder.WriteString("\n\n## Personality\n")
		builder.WriteString(input.Personality)
	}
	if input.GradeLevel != "" {
		builder.WriteString("\n\n## Grade Level\n")
		builder.WriteString(input.GradeLevel)
	}
	if len(input.PriorStatements) > 0 {
		builder.WriteString("\n\n## Statements So Far\n")
		for i, s := range input.PriorStatements {
			builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, s))
		}
	}
	if input.InjectFallacy {
		builder.WriteString("\n\n## Fallacy Instruction\nEmbed the following logical fallacy: ")
		builder.WriteString(input.FallacyType)
		if input.FallacyDescription != "" {
			builder.WriteString(" (")
			builder.WriteString(input.FallacyDescription)
			builder.WriteString(")")
		}
	}
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func coachSystemPrompt() string {
	return "You are a debate coach reviewing a student's completed debate. Respond with a JSON object containing " +
		"coaching_feedback (a short paragraph), strengths, improvement_areas, and suggestions (each an array of strings). " +
		"Be specific and encouraging, at the student's grade level."
}

func buildCoachPrompt(input CoachInput) string {
	builder := strings.Builder{}
	builder.WriteString("# Topic\n")
	builder.WriteString(input.Topic)
	builder.WriteString(fmt.Sprintf("\n\n## Debate %d\n## Student Position\n", input.DebateNumber))
	builder.WriteString(input.Position)
	if input.GradeLevel != "" {
		builder.WriteString("\n\n## Grade Level\n")
		builder.WriteString(input.GradeLevel)
	}
	builder.WriteString("\n\n## Transcript\n")
	for _, entry := range input.Transcript {
		builder.WriteString(entry.Speaker)
		builder.WriteString(": ")
		builder.WriteString(entry.Text)
		builder.WriteString("\n")
	}
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}
