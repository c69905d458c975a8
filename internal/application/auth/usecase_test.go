package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/nfse-emissor/internal/application/auth"
	"github.com/jhoicas/nfse-emissor/internal/application/dto"
	"github.com/jhoicas/nfse-emissor/internal/domain"
	"github.com/jhoicas/nfse-emissor/internal/domain/entity"
	"github.com/jhoicas/nfse-emissor/pkg/jwt"
)

const (
	testSecret = "test-secret-key-for-unit-tests"
	testIssuer = "nfse-emissor-test"
)

// hashMin usa el costo mínimo para no ralentizar los tests.
func hashMin(t *testing.T, secret string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newUseCase(t *testing.T, clients ...*entity.APIClient) *auth.AuthUseCase {
	t.Helper()
	store := auth.StaticClients{}
	for _, c := range clients {
		store[c.ID] = c
	}
	return auth.NewAuthUseCase(store, auth.JWTConfig{Secret: testSecret, ExpMinutes: 30, Issuer: testIssuer})
}

func TestToken_CredencialesValidas(t *testing.T) {
	uc := newUseCase(t, &entity.APIClient{
		ID: "erp", SecretHash: hashMin(t, "s3cr3t-largo"), TaxID: "11222333000181", Status: entity.ClientActive,
	})

	out, err := uc.Token(context.Background(), dto.TokenRequest{ClientID: "erp", ClientSecret: "s3cr3t-largo"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", out.TokenType)
	assert.Equal(t, 1800, out.ExpiresIn)
	assert.Equal(t, "11222333000181", out.TaxID)

	claims, err := jwt.Parse(testSecret, testIssuer, out.Token)
	require.NoError(t, err)
	assert.Equal(t, "erp", claims.ClientID)
	assert.Equal(t, "11222333000181", claims.TaxID)
}

func TestToken_SecretoIncorrecto(t *testing.T) {
	uc := newUseCase(t, &entity.APIClient{ID: "erp", SecretHash: hashMin(t, "correcto"), Status: entity.ClientActive})

	_, err := uc.Token(context.Background(), dto.TokenRequest{ClientID: "erp", ClientSecret: "otro"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestToken_ClienteInexistente(t *testing.T) {
	_, err := newUseCase(t).Token(context.Background(), dto.TokenRequest{ClientID: "nadie", ClientSecret: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "no se revela si el cliente existe")
}

func TestToken_ClienteRevocado(t *testing.T) {
	uc := newUseCase(t, &entity.APIClient{ID: "erp", SecretHash: hashMin(t, "s"), Status: entity.ClientRevoked})

	_, err := uc.Token(context.Background(), dto.TokenRequest{ClientID: "erp", ClientSecret: "s"})
	assert.ErrorIs(t, err, auth.ErrClientRevoked)
}

func TestToken_CamposVacios(t *testing.T) {
	_, err := newUseCase(t).Token(context.Background(), dto.TokenRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHashSecret(t *testing.T) {
	h, err := auth.HashSecret("s3cr3t")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(h), []byte("s3cr3t")))
}

func TestParseStaticClients(t *testing.T) {
	h := hashMin(t, "s")
	clients, err := auth.ParseStaticClients(" erp:" + h + ":11.222.333/0001-81 , pdv:" + h + ",")
	require.NoError(t, err)
	require.Len(t, clients, 2)

	erp, err := clients.GetByID(context.Background(), "erp")
	require.NoError(t, err)
	assert.Equal(t, "11222333000181", erp.TaxID)
	assert.True(t, erp.Active())

	pdv, err := clients.GetByID(context.Background(), "pdv")
	require.NoError(t, err)
	assert.Empty(t, pdv.TaxID, "sin restricción de prestador")

	_, err = clients.GetByID(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestParseStaticClients_Invalidos(t *testing.T) {
	for _, raw := range []string{"solo-id", ":hash", "a:b:c:d", "a:h,a:h"} {
		_, err := auth.ParseStaticClients(raw)
		var cfgErr *domain.ConfigurationError
		assert.ErrorAs(t, err, &cfgErr, raw)
	}
}
