package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ctroy978/umadex-sub002/internal/dto"
	"github.com/ctroy978/umadex-sub002/internal/service"
	"github.com/ctroy978/umadex-sub002/internal/utils"
)

// TeacherHandler wires the teacher-facing routes: assignment CRUD, rubric
// scoring, the flag review queue, and deadline overrides.
type TeacherHandler struct {
	assignments service.AssignmentService
	scoring     service.ScoringService
	flags       service.FlagReviewService
	overrides   service.OverrideService
	logger      zerolog.Logger
}

// NewTeacherHandler constructs the handler.
func NewTeacherHandler(
	assignments service.AssignmentService,
	scoring service.ScoringService,
	flags service.FlagReviewService,
	overrides service.OverrideService,
	logger zerolog.Logger,
) *TeacherHandler {
	return &TeacherHandler{
		assignments: assignments,
		scoring:     scoring,
		flags:       flags,
		overrides:   overrides,
		logger:      logger.With().Str("component", "teacher_handler").Logger(),
	}
}

// Register attaches the teacher endpoints to the router group.
func (h *TeacherHandler) Register(router fiber.Router) {
	assignments := router.Group("/assignments")
	assignments.Get("", h.listAssignments)
	assignments.Get("/:id", h.getAssignment)
	assignments.Post("", h.createAssignment)
	assignments.Patch("/:id", h.updateAssignment)
	assignments.Delete("/:id", h.deleteAssignment)

	router.Post("/posts/:id/score", h.scorePost)

	router.Get("/flags", h.listFlags)
	router.Patch("/flags/:id", h.resolveFlag)

	router.Post("/override-codes", h.mintOverrideCode)
	router.Put("/bypass-phrase", h.setBypassPhrase)
}

func (h *TeacherHandler) listAssignments(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}

	assignments, total, err := h.assignments.List(c.UserContext(), userIDFromContext(c), c.Query("search"), page, pageSize)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assignments retrieved", fiber.Map{
		"assignments": assignments,
		"total":       total,
	})
}

func (h *TeacherHandler) getAssignment(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assignment, err := h.assignments.Get(c.UserContext(), id)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assignment retrieved", assignment)
}

func (h *TeacherHandler) createAssignment(c *fiber.Ctx) error {
	var payload dto.AssignmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assignment, err := h.assignments.Create(c.UserContext(), userIDFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assignment created", assignment)
}

func (h *TeacherHandler) updateAssignment(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.AssignmentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assignment, err := h.assignments.Update(c.UserContext(), id, userIDFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assignment updated", assignment)
}

func (h *TeacherHandler) deleteAssignment(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.assignments.Delete(c.UserContext(), id, userIDFromContext(c)); err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assignment deleted", fiber.Map{"id": id})
}

func (h *TeacherHandler) scorePost(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ScorePostRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	post, err := h.scoring.ScorePost(c.UserContext(), id, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "post scored", post)
}

func (h *TeacherHandler) listFlags(c *fiber.Ctx) error {
	var filter dto.FlagFilter
	if err := c.QueryParser(&filter); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	flags, total, err := h.flags.List(c.UserContext(), filter)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "flags retrieved", fiber.Map{
		"flags": flags,
		"total": total,
	})
}

func (h *TeacherHandler) resolveFlag(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.FlagResolveRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	flag, err := h.flags.Resolve(c.UserContext(), id, userIDFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "flag resolved", flag)
}

func (h *TeacherHandler) mintOverrideCode(c *fiber.Ctx) error {
	var payload dto.OverrideCodeCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	code, err := h.overrides.MintCode(c.UserContext(), userIDFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "override code minted", code)
}

func (h *TeacherHandler) setBypassPhrase(c *fiber.Ctx) error {
	var payload dto.BypassPhraseRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.overrides.SetBypassPhrase(c.UserContext(), userIDFromContext(c), payload.Phrase); err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "bypass phrase updated", nil)
}
