package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestSwaggerRegistrado(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		Paths map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	for _, p := range []string{
		"/api/auth/token",
		"/api/nfse/dps",
		"/api/nfse/dps/preview",
		"/api/nfse/submissions/{id}",
		"/api/nfse/submissions/{id}/pdf",
		"/api/nfse/{chave}",
		"/api/nfse/{chave}/cancelamento",
	} {
		assert.Contains(t, doc.Paths, p)
	}
}
