package entity

import "time"

// Estados de un cliente de la API.
const (
	ClientActive  = "active"
	ClientRevoked = "revoked"
)

// APIClient sistema integrador (ERP, PDV) autorizado a emitir en nombre de un prestador.
type APIClient struct {
	ID         string
	SecretHash string // bcrypt, nunca el secreto en claro
	Name       string
	TaxID      string // CNPJ/CPF autorizado; vacío = cualquiera
	Status     string // active, revoked
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Active informa si el cliente puede obtener tokens.
func (c *APIClient) Active() bool { return c.Status == ClientActive }
