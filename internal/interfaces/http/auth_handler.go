package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/nfse-emissor/internal/application/auth"
	"github.com/jhoicas/nfse-emissor/internal/application/dto"
	"github.com/jhoicas/nfse-emissor/internal/domain"
)

// TokenIssuer emisión de tokens para clientes de la API.
type TokenIssuer interface {
	Token(ctx context.Context, in dto.TokenRequest) (*dto.TokenResponse, error)
}

// AuthHandler maneja la obtención de tokens (público).
type AuthHandler struct {
	uc TokenIssuer
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc TokenIssuer) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Token godoc
// @Summary      Obtener token de acceso
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.TokenRequest  true  "client_id, client_secret"
// @Success      200   {object}  dto.TokenResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/auth/token [post]
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var in dto.TokenRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Token(c.UserContext(), in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
		case errors.Is(err, auth.ErrClientRevoked):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "cliente revocado"})
		}
		return writeError(c, err)
	}
	return c.JSON(out)
}
