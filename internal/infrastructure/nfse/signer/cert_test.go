package signer_test

import (
	"context"
	"crypto/rsa"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/nfse-emissor/internal/domain"
	"github.com/jhoicas/nfse-emissor/internal/infrastructure/nfse/signer"
	"github.com/jhoicas/nfse-emissor/internal/infrastructure/nfse/signer/signertest"
)

const testPassword = "senha-de-teste"

// failingStrategy simula una estrategia que nunca logra decodificar.
type failingStrategy struct{ calls *int }

func (failingStrategy) Name() string { return "falla" }

func (f failingStrategy) Decode(context.Context, []byte, string) (*signer.KeyMaterial, error) {
	*f.calls++
	return nil, errors.New("formato no soportado")
}

func TestLoad_ContenedorModerno(t *testing.T) {
	cred := signertest.NewCredential(t, signertest.DefaultCN)
	loader := signer.NewCertificateLoader(signer.WithTempDir(t.TempDir()))

	km, err := loader.Load(context.Background(), cred.P12(t, testPassword), testPassword)
	require.NoError(t, err)
	defer km.Close()

	assert.Equal(t, "pkcs12", km.Strategy, "el decodificador moderno debe resolver un contenedor AES")
	assert.True(t, cred.Cert.Equal(km.Certificate), "el certificado hoja debe ser el del contenedor")
	assert.Empty(t, km.CACerts)
}

func TestLoad_EstrategiaPEM(t *testing.T) {
	cred := signertest.NewCredential(t, signertest.DefaultCN)
	loader := signer.NewCertificateLoader(signer.WithStrategies(signer.PEMStrategy{}))

	km, err := loader.Load(context.Background(), cred.LegacyP12(t, testPassword), testPassword)
	require.NoError(t, err)
	defer km.Close()

	assert.Equal(t, "pem", km.Strategy)
	assert.True(t, cred.Cert.Equal(km.Certificate))
	_, isRSA := km.PrivateKey.(*rsa.PrivateKey)
	assert.True(t, isRSA, "la llave debe parsearse desde el bloque PEM")
}

func TestLoad_CascadaContinuaTrasFallo(t *testing.T) {
	cred := signertest.NewCredential(t, signertest.DefaultCN)
	calls := 0
	loader := signer.NewCertificateLoader(signer.WithStrategies(failingStrategy{calls: &calls}, signer.ModernStrategy{}))

	km, err := loader.Load(context.Background(), cred.P12(t, testPassword), testPassword)
	require.NoError(t, err)
	defer km.Close()

	assert.Equal(t, 1, calls)
	assert.Equal(t, "pkcs12", km.Strategy)
}

func TestLoad_ContrasenaIncorrecta(t *testing.T) {
	cred := signertest.NewCredential(t, signertest.DefaultCN)
	tmp := t.TempDir()
	loader := signer.NewCertificateLoader(signer.WithTempDir(tmp))

	km, err := loader.Load(context.Background(), cred.P12(t, testPassword), "otra-senha")
	require.Error(t, err)
	assert.Nil(t, km)
	assert.ErrorIs(t, err, domain.ErrCertificate)

	var certErr *domain.CertificateError
	require.ErrorAs(t, err, &certErr)
	assert.Equal(t, "decode", certErr.Op)

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries, "no deben quedar archivos temporales tras el fallo")
}

func TestLoad_ContenedorVacio(t *testing.T) {
	_, err := signer.NewCertificateLoader().Load(context.Background(), nil, testPassword)
	assert.ErrorIs(t, err, domain.ErrCertificate)
}

func TestLoadFile_ArchivoInexistente(t *testing.T) {
	_, err := signer.NewCertificateLoader().LoadFile(context.Background(), filepath.Join(t.TempDir(), "no-existe.pfx"), testPassword)
	var certErr *domain.CertificateError
	require.ErrorAs(t, err, &certErr)
	assert.Equal(t, "read", certErr.Op)
}

func TestLoadFile_DesdeDisco(t *testing.T) {
	cred := signertest.NewCredential(t, signertest.DefaultCN)
	path := filepath.Join(t.TempDir(), "a1.pfx")
	require.NoError(t, os.WriteFile(path, cred.P12(t, testPassword), 0o600))

	km, err := signer.NewCertificateLoader().LoadFile(context.Background(), path, testPassword)
	require.NoError(t, err)
	defer km.Close()
	assert.Equal(t, signertest.DefaultCN, km.Certificate.Subject.CommonName)
}

func TestOpenSSLStrategy_LimpiaTemporales(t *testing.T) {
	tmp := t.TempDir()
	s := signer.OpenSSLStrategy{Binary: filepath.Join(tmp, "openssl-inexistente"), TempDir: tmp}

	_, err := s.Decode(context.Background(), []byte("no es un p12"), testPassword)
	require.Error(t, err)

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries, "el directorio temporal debe eliminarse aun cuando openssl no existe")
}

func TestKeyMaterial_CloseBorraLlave(t *testing.T) {
	cred := signertest.NewCredential(t, signertest.DefaultCN)
	km, err := signer.NewCertificateLoader().Load(context.Background(), cred.P12(t, testPassword), testPassword)
	require.NoError(t, err)

	rk, ok := km.PrivateKey.(*rsa.PrivateKey)
	require.True(t, ok)
	km.Close()

	assert.Nil(t, km.PrivateKey)
	assert.Equal(t, 0, rk.D.Sign(), "el exponente privado debe quedar en cero")
	assert.NotPanics(t, func() { km.Close() }, "Close debe ser idempotente")
}

func TestKeyMaterial_TLSCertificate(t *testing.T) {
	cred := signertest.NewCredential(t, signertest.DefaultCN)
	km, err := signer.NewCertificateLoader().Load(context.Background(), cred.P12(t, testPassword), testPassword)
	require.NoError(t, err)
	defer km.Close()

	tc := km.TLSCertificate()
	require.Len(t, tc.Certificate, 1)
	assert.Equal(t, cred.Cert.Raw, tc.Certificate[0])
	assert.Same(t, km.Certificate, tc.Leaf)
}
