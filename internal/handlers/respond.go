package handlers

import (
	"errors"

	"gentrack/internal/apperrors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// respondError maps controller failures onto HTTP statuses. Precondition
// refusals carry the machine-readable code alongside the message so clients
// can branch without parsing prose.
func respondError(c *fiber.Ctx, err error) error {
	if pe, ok := apperrors.AsPrecondition(err); ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": pe.Message,
			"code":  pe.Code,
		})
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
}

// parseIDParam reads the :id route parameter as a UUID.
func parseIDParam(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, apperrors.Validation("invalid id")
	}
	return id, nil
}
