package signer

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/nfse-emissor/internal/infrastructure/nfse/signer/signertest"
)

// pemBundle arma el PEM que produce openssl pkcs12 -nodes: llave sin cifrar + certificado.
func pemBundle(t *testing.T) []byte {
	t.Helper()
	cred := signertest.NewCredential(t, signertest.DefaultCN)
	var buf bytes.Buffer
	require.NoError(t, pem.Encode(&buf, &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(cred.Key)}))
	require.NoError(t, pem.Encode(&buf, &pem.Block{Type: "CERTIFICATE", Bytes: cred.Cert.Raw}))
	return buf.Bytes()
}

func assertZeroed(t *testing.T, data []byte) {
	t.Helper()
	assert.Equal(t, make([]byte, len(data)), data, "el buffer con la llave debe quedar en cero")
}

func TestDecodePEM_BorraBufferAlTerminar(t *testing.T) {
	data := pemBundle(t)

	km, err := decodePEM(data)
	require.NoError(t, err)
	require.NotNil(t, km.PrivateKey)
	assert.Equal(t, signertest.DefaultCN, km.Certificate.Subject.CommonName, "el certificado sobrevive al borrado del PEM")
	assertZeroed(t, data)
}

func TestDecodePEM_BorraBufferEnError(t *testing.T) {
	cred := signertest.NewCredential(t, signertest.DefaultCN)
	// llave sin certificado: fromPEM falla después de leer la llave
	data := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(cred.Key)})

	_, err := decodePEM(data)
	require.Error(t, err)
	assertZeroed(t, data)
}
