// Package signertest genera certificados A1 desechables para tests: llave RSA, certificado
// autofirmado con CN al estilo ICP-Brasil y el contenedor PKCS#12 correspondiente.
package signertest

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"software.sslmate.com/src/go-pkcs12"
)

// DefaultCN CN de un e-CNPJ de prueba (razón social + ":" + CNPJ).
const DefaultCN = "EMPRESA TESTE LTDA:11222333000181"

// Credential llave y certificado generados.
type Credential struct {
	Key  *rsa.PrivateKey
	Cert *x509.Certificate
}

// NewCredential crea una llave RSA de 2048 bits y un certificado autofirmado con el CN dado.
func NewCredential(t testing.TB, cn string) Credential {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err, "generar llave RSA")

	template := x509.Certificate{
		SerialNumber:          big.NewInt(time.Now().UnixNano()),
		Subject:               pkix.Name{CommonName: cn, Country: []string{"BR"}, Organization: []string{"ICP-Brasil"}},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	require.NoError(t, err, "crear certificado")
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err, "parsear certificado")
	return Credential{Key: key, Cert: cert}
}

// P12 codifica la credencial en un contenedor PKCS#12 moderno (AES-256/PBKDF2).
func (c Credential) P12(t testing.TB, password string) []byte {
	t.Helper()
	data, err := pkcs12.Modern.Encode(c.Key, c.Cert, nil, password)
	require.NoError(t, err, "codificar PKCS#12")
	return data
}

// LegacyP12 codifica la credencial con cifrados heredados (RC2-40 / 3DES).
func (c Credential) LegacyP12(t testing.TB, password string) []byte {
	t.Helper()
	data, err := pkcs12.LegacyRC2.Encode(c.Key, c.Cert, nil, password)
	require.NoError(t, err, "codificar PKCS#12 heredado")
	return data
}

// TLSCertificate par para clientes mTLS de prueba.
func (c Credential) TLSCertificate() tls.Certificate {
	return tls.Certificate{Certificate: [][]byte{c.Cert.Raw}, PrivateKey: c.Key, Leaf: c.Cert}
}
