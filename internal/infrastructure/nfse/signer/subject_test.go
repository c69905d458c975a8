package signer_test

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/nfse-emissor/internal/domain"
	"github.com/jhoicas/nfse-emissor/internal/domain/entity"
	"github.com/jhoicas/nfse-emissor/internal/infrastructure/nfse/signer"
)

func TestAuthorFromCertificate(t *testing.T) {
	cases := []struct {
		name   string
		cn     string
		serial string
		kind   entity.FiscalIDKind
		digits string
	}{
		{name: "e-CNPJ", cn: "EMPRESA TESTE LTDA:11222333000181", kind: entity.FiscalIDCNPJ, digits: "11222333000181"},
		{name: "e-CPF", cn: "FULANO DE TAL:12345678909", kind: entity.FiscalIDCPF, digits: "12345678909"},
		{name: "CNPJ tiene prioridad sobre CPF", cn: "X 12345678909 Y 11222333000181", kind: entity.FiscalIDCNPJ, digits: "11222333000181"},
		{name: "respaldo en SerialNumber", cn: "SEM DOCUMENTO", serial: "11222333000181", kind: entity.FiscalIDCNPJ, digits: "11222333000181"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cert := &x509.Certificate{Subject: pkix.Name{CommonName: tc.cn, SerialNumber: tc.serial}}
			id, err := signer.AuthorFromCertificate(cert)
			require.NoError(t, err)
			assert.Equal(t, tc.kind, id.Kind())
			assert.Equal(t, tc.digits, id.Digits())
		})
	}
}

func TestAuthorFromCertificate_SinDocumento(t *testing.T) {
	_, err := signer.AuthorFromCertificate(&x509.Certificate{Subject: pkix.Name{CommonName: "EMPRESA 123"}})
	assert.ErrorIs(t, err, domain.ErrCertificate)

	_, err = signer.AuthorFromCertificate(nil)
	assert.ErrorIs(t, err, domain.ErrCertificate)
}
