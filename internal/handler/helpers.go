package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/ctroy978/umadex-sub002/internal/middleware"
	"github.com/ctroy978/umadex-sub002/internal/service"
	"github.com/ctroy978/umadex-sub002/internal/utils"
)

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := c.Params(name)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals(middleware.LocalsUserID); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

// sendServiceError maps service-layer errors onto the API's status codes and
// reason-coded payloads.
func sendServiceError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var rejection *service.RejectionError
	var validationErrors validator.ValidationErrors

	switch {
	case errors.As(err, &rejection):
		return utils.SendErrorWithData(c, fiber.StatusUnprocessableEntity, rejection.Message, fiber.Map{"reason": rejection.Code})
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrFlagNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConcurrentSubmission),
		errors.Is(err, service.ErrAlreadyChallenged),
		errors.Is(err, service.ErrPostAlreadyScored),
		errors.Is(err, service.ErrAssignmentLocked):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrNotAIPost),
		errors.Is(err, service.ErrNotStudentPost):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrInvalidOverride):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrTooManyAttempts):
		return utils.SendError(c, fiber.StatusTooManyRequests, err.Error())
	case errors.Is(err, service.ErrGenerationUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, err.Error())
	default:
		requestLogger(logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
