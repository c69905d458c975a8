package repository

import (
	"context"

	"github.com/jhoicas/nfse-emissor/internal/domain/entity"
)

// APIClientRepository puerto de persistencia de los clientes de la API.
// GetByID devuelve domain.ErrNotFound si el cliente no existe.
type APIClientRepository interface {
	Create(ctx context.Context, c *entity.APIClient) error
	GetByID(ctx context.Context, id string) (*entity.APIClient, error)
}
