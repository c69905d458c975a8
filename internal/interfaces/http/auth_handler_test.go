package http_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/nfse-emissor/internal/application/auth"
	"github.com/jhoicas/nfse-emissor/internal/application/dto"
	"github.com/jhoicas/nfse-emissor/internal/domain"
	apphttp "github.com/jhoicas/nfse-emissor/internal/interfaces/http"
)

type fakeIssuer struct{ err error }

func (f fakeIssuer) Token(_ context.Context, in dto.TokenRequest) (*dto.TokenResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.TokenResponse{Token: "tok-" + in.ClientID, TokenType: "Bearer", ExpiresIn: 3600}, nil
}

func buildTokenApp(issuer apphttp.TokenIssuer) *fiber.App {
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Auth:      issuer,
		Emission:  &fakeEmission{},
		JWTSecret: testJWTSecret,
		JWTIssuer: testIssuer,
	})
	return app
}

func TestToken_RutaPublica(t *testing.T) {
	resp := do(t, buildTokenApp(fakeIssuer{}), http.MethodPost, "/api/auth/token", `{"client_id":"erp","client_secret":"s"}`, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode, "no requiere Bearer Token")
	out := decode[dto.TokenResponse](t, resp)
	assert.Equal(t, "tok-erp", out.Token)
}

func TestToken_Errores(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"credenciales", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"revocado", auth.ErrClientRevoked, http.StatusForbidden},
		{"campos vacíos", domain.ErrInvalidInput, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := do(t, buildTokenApp(fakeIssuer{err: tc.err}), http.MethodPost, "/api/auth/token", `{}`, "")
			defer resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
