package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/nfse-emissor/internal/application/dto"
	"github.com/jhoicas/nfse-emissor/internal/domain"
	"github.com/jhoicas/nfse-emissor/internal/domain/entity"
	"github.com/jhoicas/nfse-emissor/pkg/jwt"
)

// ErrClientRevoked cliente existente pero sin permiso para obtener tokens.
var ErrClientRevoked = errors.New("auth: cliente revocado")

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// ClientStore lectura de clientes de la API (PostgreSQL o lista estática de la configuración).
type ClientStore interface {
	GetByID(ctx context.Context, id string) (*entity.APIClient, error)
}

// AuthUseCase emite tokens JWT a clientes de la API.
type AuthUseCase struct {
	clients ClientStore
	jwtCfg  JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(clients ClientStore, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{clients: clients, jwtCfg: jwtCfg}
}

// Token verifica client_id/client_secret con bcrypt y genera el JWT con el tax_id del cliente.
// Credenciales inválidas devuelven domain.ErrUnauthorized sin distinguir la causa.
func (uc *AuthUseCase) Token(ctx context.Context, in dto.TokenRequest) (*dto.TokenResponse, error) {
	if in.ClientID == "" || in.ClientSecret == "" {
		return nil, fmt.Errorf("client_id y client_secret son requeridos: %w", domain.ErrInvalidInput)
	}
	client, err := uc.clients.GetByID(ctx, in.ClientID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(client.SecretHash), []byte(in.ClientSecret)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !client.Active() {
		return nil, ErrClientRevoked
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, client.ID, client.TaxID, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: uc.jwtCfg.ExpMinutes * 60,
		TaxID:     client.TaxID,
	}, nil
}

// HashSecret genera el hash bcrypt de un client_secret para registrarlo.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
