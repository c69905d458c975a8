package nfse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/nfse-emissor/internal/domain"
	"github.com/jhoicas/nfse-emissor/internal/infrastructure/nfse"
	"github.com/jhoicas/nfse-emissor/internal/infrastructure/nfse/signer"
	"github.com/jhoicas/nfse-emissor/internal/infrastructure/nfse/signer/signertest"
	pkgnfse "github.com/jhoicas/nfse-emissor/pkg/nfse"
)

func TestParseSummary_DPSFirmada(t *testing.T) {
	decl, err := baseBuilder().Client(client()).Notes("Pedido 77").Build()
	require.NoError(t, err)
	raw, err := nfse.NewXMLBuilderService(pkgnfse.DefaultTaxDefaults()).BuildBytes(decl)
	require.NoError(t, err)

	cred := signertest.NewCredential(t, signertest.DefaultCN)
	signed, err := signer.NewDigitalSignatureService().Sign(raw, nfse.ElementInfDPS, cred.Key, cred.Cert)
	require.NoError(t, err)

	s, err := nfse.ParseSummary(signed)
	require.NoError(t, err)

	assert.Equal(t, "DPS421690920000000000010000900000000000000001", s.DocumentID)
	assert.Equal(t, "2", s.Environment)
	assert.Equal(t, "900", s.Series)
	assert.Equal(t, "00000000000100", s.ProviderTaxID)
	assert.Empty(t, s.ProviderName, "el prestador emisor no lleva xNome")
	assert.Equal(t, "12345678909", s.ClientTaxID)
	assert.Equal(t, "Tomador da Silva", s.ClientName)
	assert.Equal(t, "010101", s.TaxCode)
	assert.Equal(t, "1000.00", s.ServiceValue.StringFixed(2))
	assert.Equal(t, "6.00", s.SimplesPercent.StringFixed(2))
	assert.Equal(t, "Pedido 77", s.Notes)
	assert.Equal(t, 2024, s.EmittedAt.Year())
	assert.NotEmpty(t, s.SignatureDigest)
	assert.Empty(t, s.AccessKey, "la DPS aún no tiene chave de acesso")
}

func TestParseSummary_SinInfDPS(t *testing.T) {
	_, err := nfse.ParseSummary([]byte(`<NFSe/>`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = nfse.ParseSummary([]byte(`no es xml <`))
	assert.Error(t, err)
}
