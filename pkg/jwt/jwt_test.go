package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "secreto-de-prueba"

func TestGenerateParse(t *testing.T) {
	tok, err := Generate(secret, "erp-1", "11222333000181", "nfse-emissor", 5)
	require.NoError(t, err)

	claims, err := Parse(secret, "nfse-emissor", tok)
	require.NoError(t, err)
	assert.Equal(t, "erp-1", claims.ClientID)
	assert.Equal(t, "11222333000181", claims.TaxID)
	assert.Equal(t, "erp-1", claims.Subject)
}

func TestParse_Rechazos(t *testing.T) {
	tok, err := Generate(secret, "erp-1", "", "nfse-emissor", 5)
	require.NoError(t, err)

	_, err = Parse("otro", "", tok)
	assert.ErrorIs(t, err, ErrInvalidToken, "firma incorrecta")

	_, err = Parse(secret, "otro-emisor", tok)
	assert.ErrorIs(t, err, ErrInvalidToken, "emisor distinto")

	expired, err := Generate(secret, "erp-1", "", "", -1)
	require.NoError(t, err)
	_, err = Parse(secret, "", expired)
	assert.ErrorIs(t, err, ErrInvalidToken, "expirado")

	_, err = Generate("", "erp-1", "", "", 5)
	assert.Error(t, err)
}
