package dto

// TokenRequest credenciales de cliente (client credentials).
type TokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// TokenResponse token JWT para las rutas /api/nfse.
type TokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"` // segundos
	TaxID     string `json:"tax_id,omitempty"`
}
