package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/nfse-emissor/internal/domain"
	"github.com/jhoicas/nfse-emissor/internal/domain/entity"
	"github.com/jhoicas/nfse-emissor/pkg/nfse"
)

// StaticClients clientes declarados en la configuración (API_CLIENTS), para despliegues sin base de datos.
type StaticClients map[string]*entity.APIClient

// ParseStaticClients lee "id:bcrypt_hash[:cnpj_cpf]" separados por coma.
func ParseStaticClients(raw string) (StaticClients, error) {
	out := StaticClients{}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
			return nil, domain.NewConfigurationError("API_CLIENTS")
		}
		c := &entity.APIClient{ID: parts[0], SecretHash: parts[1], Name: parts[0], Status: entity.ClientActive}
		if len(parts) == 3 {
			c.TaxID = nfse.OnlyDigits(parts[2])
		}
		if _, dup := out[c.ID]; dup {
			return nil, fmt.Errorf("cliente %q duplicado: %w", c.ID, domain.NewConfigurationError("API_CLIENTS"))
		}
		out[c.ID] = c
	}
	return out, nil
}

// GetByID devuelve una copia del cliente.
func (s StaticClients) GetByID(_ context.Context, id string) (*entity.APIClient, error) {
	c, ok := s[id]
	if !ok {
		return nil, fmt.Errorf("cliente %s: %w", id, domain.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}
