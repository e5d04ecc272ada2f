package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/aviation-inventory/internal/application/dto"
	"github.com/jhoicas/aviation-inventory/internal/domain"
)

// writeError traduce los errores de dominio a status y código de la API.
func writeError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrPartNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrDuplicate):
		status, code = fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrConflict):
		status, code = fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrSessionBusy):
		status, code = fiber.StatusConflict, "SESSION_BUSY"
	case errors.Is(err, domain.ErrInvalidTransition):
		status, code = fiber.StatusConflict, "INVALID_TRANSITION"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
