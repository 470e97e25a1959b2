package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ctroy978/umadex-sub002/internal/config"
	"github.com/ctroy978/umadex-sub002/internal/handler"
	"github.com/ctroy978/umadex-sub002/internal/middleware"
	"github.com/ctroy978/umadex-sub002/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	DebateHandler  *handler.DebateHandler
	TeacherHandler *handler.TeacherHandler
	JWTMiddleware  fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Teacher surface: assignments, scoring, flags, overrides. Registered
	// before the student group so the more specific prefix wins.
	if deps.TeacherHandler != nil {
		teacher := app.Group("/api/v2/debate/teacher", jwtMiddleware, middleware.RequireTeacher())
		deps.TeacherHandler.Register(teacher)
	}

	// Student debate sessions
	if deps.DebateHandler != nil {
		debate := app.Group("/api/v2/debate", jwtMiddleware, middleware.RequireDebater())
		debate.Use("/sessions/:id/statements", middleware.RateLimit("debate-statements", cfg.StatementRateLimit, time.Minute))
		deps.DebateHandler.Register(debate)
	}
}
