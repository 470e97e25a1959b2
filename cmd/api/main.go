package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ctroy978/umadex-sub002/internal/config"
	"github.com/ctroy978/umadex-sub002/internal/database"
	"github.com/ctroy978/umadex-sub002/internal/handler"
	"github.com/ctroy978/umadex-sub002/internal/middleware"
	"github.com/ctroy978/umadex-sub002/internal/repository"
	"github.com/ctroy978/umadex-sub002/internal/router"
	"github.com/ctroy978/umadex-sub002/internal/service"
	"github.com/ctroy978/umadex-sub002/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	generator, err := ai.NewOpenAIGenerator(ai.OpenAIConfig{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.OpenAIModel,
		Logger: logger,
	})
	if err != nil {
		log.Fatalf("failed to create ai generator: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	assignmentRepo := repository.NewDebateAssignmentRepository(db)
	sessionRepo := repository.NewStudentDebateRepository(db)
	postRepo := repository.NewDebatePostRepository(db)
	challengeRepo := repository.NewDebateChallengeRepository(db)
	flagRepo := repository.NewContentFlagRepository(db)
	feedbackRepo := repository.NewRoundFeedbackRepository(db)
	templateRepo := repository.NewFallacyTemplateRepository(db)
	overrideRepo := repository.NewOverrideCodeRepository(db)

	if err := service.SeedFallacyTemplates(context.Background(), templateRepo, logger); err != nil {
		log.Fatalf("failed to seed fallacy templates: %v", err)
	}

	scheduler := service.NewFallacyScheduler(templateRepo, logger)
	moderation := service.NewModerationService(cfg.ReviewThreshold, logger)
	scoring := service.NewScoringService(postRepo, challengeRepo, sessionRepo, validate, logger)
	overrides := service.NewOverrideService(overrideRepo, assignmentRepo, redisClient, validate, logger)
	events := service.NewEventPublisher(natsConn, cfg.NATSSubject, logger)
	challenges := service.NewChallengeService(postRepo, challengeRepo, sessionRepo, validate, logger)
	assignments := service.NewAssignmentService(assignmentRepo, validate, logger)
	flagReview := service.NewFlagReviewService(flagRepo, postRepo, validate, logger)
	sessions := service.NewSessionService(
		sessionRepo, assignmentRepo, postRepo, flagRepo, feedbackRepo,
		scheduler, moderation, scoring, overrides,
		generator, generator, events, redisClient,
		service.SessionConfig{
			GenerationTimeout:    cfg.GenerationTimeout,
			CacheTTL:             cfg.SessionCacheTTL,
			MaxFallacyDifficulty: cfg.MaxFallacyDifficulty,
		},
		validate, logger,
	)

	debateHandler := handler.NewDebateHandler(sessions, challenges, logger)
	teacherHandler := handler.NewTeacherHandler(assignments, scoring, flagReview, overrides, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		DebateHandler:  debateHandler,
		TeacherHandler: teacherHandler,
		JWTMiddleware:  middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
