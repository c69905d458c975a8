package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/nfse-emissor/internal/application/dto"
	"github.com/jhoicas/nfse-emissor/internal/domain"
)

// writeError traduce la taxonomía de errores del dominio a respuestas HTTP.
func writeError(c *fiber.Ctx, err error) error {
	var (
		cfgErr       *domain.ConfigurationError
		transportErr *domain.TransportError
	)
	switch {
	case errors.As(err, &cfgErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code: "CONFIGURATION", Message: err.Error(), Fields: cfgErr.Fields,
		})
	case errors.Is(err, domain.ErrCertificate):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "CERTIFICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrSignature):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "SIGNATURE", Message: err.Error()})
	case errors.Is(err, domain.ErrEnvelope):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "ENVELOPE", Message: err.Error()})
	case errors.As(err, &transportErr):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Code: "TRANSPORT", Message: err.Error(), Status: transportErr.Status,
		})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
