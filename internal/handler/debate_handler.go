package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ctroy978/umadex-sub002/internal/dto"
	"github.com/ctroy978/umadex-sub002/internal/service"
	"github.com/ctroy978/umadex-sub002/internal/utils"
)

// DebateHandler wires the student-facing debate session routes.
type DebateHandler struct {
	sessions   service.SessionService
	challenges service.ChallengeService
	logger     zerolog.Logger
}

// NewDebateHandler constructs the handler.
func NewDebateHandler(sessions service.SessionService, challenges service.ChallengeService, logger zerolog.Logger) *DebateHandler {
	return &DebateHandler{
		sessions:   sessions,
		challenges: challenges,
		logger:     logger.With().Str("component", "debate_handler").Logger(),
	}
}

// Register attaches the session endpoints to the router group.
func (h *DebateHandler) Register(router fiber.Router) {
	router.Post("/sessions", h.start)
	router.Get("/sessions/:id", h.get)
	router.Post("/sessions/:id/statements", h.submit)
	router.Post("/sessions/:id/content-check", h.contentCheck)
	router.Get("/sessions/:id/challenges", h.listChallenges)
	router.Post("/sessions/:id/posts/:postId/challenge", h.challenge)
}

func (h *DebateHandler) start(c *fiber.Ctx) error {
	var payload dto.StartSessionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.sessions.Start(c.UserContext(), userIDFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "session started", session)
}

func (h *DebateHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	session, err := h.sessions.GetSession(c.UserContext(), id, userIDFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "session retrieved", session)
}

func (h *DebateHandler) submit(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubmitStatementRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.sessions.SubmitStatement(c.UserContext(), id, userIDFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "statement accepted", result)
}

func (h *DebateHandler) contentCheck(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ContentCheckRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.sessions.CheckContent(c.UserContext(), id, userIDFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "content checked", result)
}

func (h *DebateHandler) challenge(c *fiber.Ctx) error {
	sessionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	postID, err := parseUintParam(c, "postId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ChallengeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.challenges.Challenge(c.UserContext(), sessionID, postID, userIDFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "challenge adjudicated", result)
}

func (h *DebateHandler) listChallenges(c *fiber.Ctx) error {
	sessionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	// Ownership check rides on the session lookup.
	if _, err := h.sessions.GetSession(c.UserContext(), sessionID, userIDFromContext(c)); err != nil {
		return sendServiceError(c, h.logger, err)
	}

	challenges, err := h.challenges.ListBySession(c.UserContext(), sessionID)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "challenges retrieved", challenges)
}
