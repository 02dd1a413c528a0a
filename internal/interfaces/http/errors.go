package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/flota-api/internal/application/dto"
	"github.com/jhoicas/flota-api/internal/domain"
)

// errorClass fila de la tabla error de dominio → respuesta HTTP.
type errorClass struct {
	target error
	status int
	code   string
}

// El orden importa: ErrTenantMismatch se evalúa antes que ErrForbidden.
var errorTable = []errorClass{
	{domain.ErrInvalidCredentials, fiber.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrTenantMismatch, fiber.StatusForbidden, "TENANT_MISMATCH"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrValidation, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrDependency, fiber.StatusServiceUnavailable, "DEPENDENCY_UNAVAILABLE"},
}

// classify devuelve status y código para err. Los errores no clasificados son 500.
func classify(err error) (int, string, bool) {
	for _, ec := range errorTable {
		if errors.Is(err, ec.target) {
			return ec.status, ec.code, true
		}
	}
	return fiber.StatusInternalServerError, "INTERNAL", false
}

// ErrorHandler manejador central de Fiber: los handlers devuelven el error del caso de uso
// y aquí se traduce. Los 500 se registran y responden con un mensaje genérico.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: fiberCode(fe.Code), Message: fe.Message})
		}

		status, code, known := classify(err)
		msg := err.Error()
		if !known {
			log.Error().Err(err).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("request_id", requestID(c)).
				Msg("error interno")
			msg = "error interno del servidor"
		}
		return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
	}
}

func fiberCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "BODY_TOO_LARGE"
	case fiber.StatusTooManyRequests:
		return "RATE_LIMITED"
	case fiber.StatusBadRequest:
		return "INVALID_BODY"
	}
	return "HTTP_ERROR"
}
