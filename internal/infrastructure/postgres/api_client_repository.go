package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/nfse-emissor/internal/domain"
	"github.com/jhoicas/nfse-emissor/internal/domain/entity"
	"github.com/jhoicas/nfse-emissor/internal/domain/repository"
)

var _ repository.APIClientRepository = (*APIClientRepo)(nil)

// SchemaAPIClients DDL de la tabla de clientes de la API.
const SchemaAPIClients = `
CREATE TABLE IF NOT EXISTS nfse_api_clients (
	id          TEXT PRIMARY KEY,
	secret_hash TEXT NOT NULL,
	name        TEXT NOT NULL,
	tax_id      TEXT,
	status      TEXT NOT NULL DEFAULT 'active',
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
)`

// APIClientRepo implementación del puerto APIClientRepository sobre PostgreSQL.
type APIClientRepo struct {
	q Querier
}

// NewAPIClientRepository construye el adaptador de persistencia para clientes.
func NewAPIClientRepository(q Querier) *APIClientRepo {
	return &APIClientRepo{q: q}
}

// Create persiste un nuevo cliente.
func (r *APIClientRepo) Create(ctx context.Context, c *entity.APIClient) error {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	if c.Status == "" {
		c.Status = entity.ClientActive
	}
	query := `
		INSERT INTO nfse_api_clients (id, secret_hash, name, tax_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.SecretHash, c.Name, nullIfEmpty(c.TaxID), c.Status, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("postgres: cliente %s ya existe: %w", c.ID, domain.ErrInvalidInput)
		}
		return fmt.Errorf("postgres: insert api client: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente; devuelve domain.ErrNotFound si no existe.
func (r *APIClientRepo) GetByID(ctx context.Context, id string) (*entity.APIClient, error) {
	query := `
		SELECT id, secret_hash, name, tax_id, status, created_at, updated_at
		FROM nfse_api_clients WHERE id = $1`
	var c entity.APIClient
	var taxID *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.SecretHash, &c.Name, &taxID, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("postgres: cliente %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("postgres: get api client: %w", err)
	}
	c.TaxID = derefString(taxID)
	return &c, nil
}
