// Carga del certificado A1 (PKCS#12) con estrategias en cascada: decodificador moderno,
// conversión a PEM y, como último recurso, el binario openssl con -legacy.

package signer

import (
	"bytes"
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	xpkcs12 "golang.org/x/crypto/pkcs12"
	"software.sslmate.com/src/go-pkcs12"

	"github.com/jhoicas/nfse-emissor/internal/domain"
)

// KeyMaterial llave privada y certificado hoja de un contenedor PKCS#12.
// Debe cerrarse al terminar la operación que lo usó.
type KeyMaterial struct {
	PrivateKey  crypto.Signer
	Certificate *x509.Certificate
	CACerts     []*x509.Certificate
	Strategy    string // estrategia que logró decodificar el contenedor
}

// TLSCertificate arma el par para mTLS con el ADN (hoja + intermedias).
func (k *KeyMaterial) TLSCertificate() tls.Certificate {
	chain := [][]byte{k.Certificate.Raw}
	for _, ca := range k.CACerts {
		chain = append(chain, ca.Raw)
	}
	return tls.Certificate{
		Certificate: chain,
		PrivateKey:  k.PrivateKey,
		Leaf:        k.Certificate,
	}
}

// Close borra los componentes privados de la llave RSA y suelta las referencias.
func (k *KeyMaterial) Close() {
	if k == nil {
		return
	}
	if rk, ok := k.PrivateKey.(*rsa.PrivateKey); ok && rk.D != nil {
		rk.D.SetInt64(0)
		for _, p := range rk.Primes {
			p.SetInt64(0)
		}
		rk.Precomputed = rsa.PrecomputedValues{}
	}
	k.PrivateKey = nil
}

// Strategy decodifica un contenedor PKCS#12.
type Strategy interface {
	Name() string
	Decode(ctx context.Context, data []byte, password string) (*KeyMaterial, error)
}

// ── Estrategia 1: decodificador moderno (AES/PBES2 y 3DES) ──

// ModernStrategy usa software.sslmate.com/src/go-pkcs12.
type ModernStrategy struct{}

// Name "pkcs12".
func (ModernStrategy) Name() string { return "pkcs12" }

// Decode acepta contenedores AES/PBES2 y 3DES.
func (ModernStrategy) Decode(_ context.Context, data []byte, password string) (*KeyMaterial, error) {
	key, cert, cas, err := pkcs12.DecodeChain(data, password)
	if err != nil {
		return nil, err
	}
	signer, ok := key.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("llave privada de tipo %T no soportada", key)
	}
	return &KeyMaterial{PrivateKey: signer, Certificate: cert, CACerts: cas}, nil
}

// ── Estrategia 2: conversión a bloques PEM ──

// PEMStrategy usa golang.org/x/crypto/pkcs12.ToPEM y separa llave y certificados por tipo de bloque.
type PEMStrategy struct{}

// Name "pem".
func (PEMStrategy) Name() string { return "pem" }

// Decode convierte el contenedor a PEM en memoria; los bloques y el buffer se borran al salir.
func (PEMStrategy) Decode(_ context.Context, data []byte, password string) (*KeyMaterial, error) {
	blocks, err := xpkcs12.ToPEM(data, password)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, b := range blocks {
			clear(b.Bytes)
		}
	}()
	var buf bytes.Buffer
	defer func() { clear(buf.Bytes()) }()
	for _, b := range blocks {
		if err := pem.Encode(&buf, b); err != nil {
			return nil, err
		}
	}
	return decodePEM(buf.Bytes())
}

// ── Estrategia 3: openssl pkcs12 -legacy ──

// passEnv variable por la que se pasa la contraseña a openssl (nunca en argv).
const passEnv = "NFSE_P12_PASSIN"

// OpenSSLStrategy invoca el binario openssl para contenedores con cifrados heredados (RC2-40).
// Los archivos temporales se crean en TempDir y se eliminan en todos los caminos.
type OpenSSLStrategy struct {
	Binary  string
	TempDir string
}

// Name "openssl".
func (OpenSSLStrategy) Name() string { return "openssl" }

// Decode convierte el contenedor con openssl pkcs12 -nodes y lee el PEM resultante.
func (s OpenSSLStrategy) Decode(ctx context.Context, data []byte, password string) (*KeyMaterial, error) {
	bin := s.Binary
	if bin == "" {
		bin = "openssl"
	}
	dir, err := os.MkdirTemp(s.TempDir, "nfse-p12-*")
	if err != nil {
		return nil, fmt.Errorf("crear directorio temporal: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "cert.p12")
	out := filepath.Join(dir, "cert.pem")
	if err := os.WriteFile(in, data, 0o600); err != nil {
		return nil, fmt.Errorf("escribir p12 temporal: %w", err)
	}

	run := func(extra ...string) ([]byte, error) {
		args := append([]string{"pkcs12", "-in", in, "-out", out, "-nodes", "-passin", "env:" + passEnv}, extra...)
		cmd := exec.CommandContext(ctx, bin, args...)
		cmd.Env = append(os.Environ(), passEnv+"="+password)
		return cmd.CombinedOutput()
	}
	output, err := run("-legacy")
	if err != nil && strings.Contains(string(output), "legacy") {
		// OpenSSL 1.1 no conoce -legacy y ya trae RC2 habilitado
		output, err = run()
	}
	if err != nil {
		return nil, fmt.Errorf("openssl pkcs12: %w: %s", err, strings.TrimSpace(string(output)))
	}
	pemData, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("leer PEM temporal: %w", err)
	}
	return decodePEM(pemData)
}

// decodePEM interpreta data con fromPEM y la pone en cero al salir, haya error o no.
// data lleva la llave privada sin cifrar.
func decodePEM(data []byte) (*KeyMaterial, error) {
	defer clear(data)
	return fromPEM(data)
}

// fromPEM separa la llave privada y los certificados; la hoja es el certificado cuya llave pública
// coincide con la privada.
func fromPEM(data []byte) (*KeyMaterial, error) {
	var (
		key   crypto.Signer
		certs []*x509.Certificate
	)
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		switch {
		case block.Type == "CERTIFICATE":
			c, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("parsear certificado: %w", err)
			}
			certs = append(certs, c)
		case strings.HasSuffix(block.Type, "PRIVATE KEY"):
			k, err := parsePrivateKey(block.Bytes)
			clear(block.Bytes)
			if err != nil {
				return nil, err
			}
			key = k
		}
	}
	if key == nil {
		return nil, errors.New("el contenedor no incluye llave privada")
	}
	if len(certs) == 0 {
		return nil, errors.New("el contenedor no incluye certificado")
	}
	leaf := 0
	for i, c := range certs {
		if publicKeyMatches(key, c) {
			leaf = i
			break
		}
	}
	km := &KeyMaterial{PrivateKey: key, Certificate: certs[leaf]}
	for i, c := range certs {
		if i != leaf {
			km.CACerts = append(km.CACerts, c)
		}
	}
	return km, nil
}

func parsePrivateKey(der []byte) (crypto.Signer, error) {
	if k, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return k, nil
	}
	if k, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		if s, ok := k.(crypto.Signer); ok {
			return s, nil
		}
		return nil, fmt.Errorf("llave privada de tipo %T no soportada", k)
	}
	if k, err := x509.ParseECPrivateKey(der); err == nil {
		return k, nil
	}
	return nil, errors.New("formato de llave privada desconocido")
}

func publicKeyMatches(key crypto.Signer, cert *x509.Certificate) bool {
	pub, ok := key.Public().(interface{ Equal(crypto.PublicKey) bool })
	return ok && pub.Equal(cert.PublicKey)
}

// ── Loader ──

// CertificateLoader prueba las estrategias en orden y devuelve la primera que produce llave + certificado.
type CertificateLoader struct {
	strategies []Strategy
	log        zerolog.Logger
}

// LoaderOption configura el CertificateLoader.
type LoaderOption func(*loaderOptions)

type loaderOptions struct {
	tempDir    string
	opensslBin string
	strategies []Strategy
	log        zerolog.Logger
}

// WithTempDir fija el directorio de los archivos temporales de la estrategia openssl.
func WithTempDir(dir string) LoaderOption { return func(o *loaderOptions) { o.tempDir = dir } }

// WithOpenSSLBinary fija la ruta del binario openssl.
func WithOpenSSLBinary(bin string) LoaderOption { return func(o *loaderOptions) { o.opensslBin = bin } }

// WithStrategies reemplaza la cascada por defecto.
func WithStrategies(s ...Strategy) LoaderOption { return func(o *loaderOptions) { o.strategies = s } }

// WithLogger registra en debug qué estrategia decodificó el contenedor.
func WithLogger(l zerolog.Logger) LoaderOption { return func(o *loaderOptions) { o.log = l } }

// NewCertificateLoader crea el loader con la cascada pkcs12 → pem → openssl.
func NewCertificateLoader(opts ...LoaderOption) *CertificateLoader {
	o := loaderOptions{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if len(o.strategies) == 0 {
		o.strategies = []Strategy{
			ModernStrategy{},
			PEMStrategy{},
			OpenSSLStrategy{Binary: o.opensslBin, TempDir: o.tempDir},
		}
	}
	return &CertificateLoader{strategies: o.strategies, log: o.log}
}

// LoadFile lee el contenedor desde disco y lo decodifica.
func (l *CertificateLoader) LoadFile(ctx context.Context, path, password string) (*KeyMaterial, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.CertificateError{Op: "read", Err: err}
	}
	return l.Load(ctx, data, password)
}

// Load decodifica el contenedor. Si ninguna estrategia lo logra devuelve *domain.CertificateError
// con el motivo de cada una.
func (l *CertificateLoader) Load(ctx context.Context, data []byte, password string) (*KeyMaterial, error) {
	if len(data) == 0 {
		return nil, &domain.CertificateError{Op: "decode", Err: errors.New("contenedor PKCS#12 vacío")}
	}
	var errs []error
	for _, s := range l.strategies {
		if err := ctx.Err(); err != nil {
			return nil, &domain.CertificateError{Op: "decode", Err: err}
		}
		km, err := s.Decode(ctx, data, password)
		if err == nil {
			err = validate(km)
		}
		if err != nil {
			l.log.Debug().Str("strategy", s.Name()).Err(err).Msg("estrategia PKCS#12 descartada")
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		km.Strategy = s.Name()
		l.log.Debug().
			Str("strategy", s.Name()).
			Str("subject", km.Certificate.Subject.CommonName).
			Time("not_after", km.Certificate.NotAfter).
			Msg("certificado cargado")
		return km, nil
	}
	return nil, &domain.CertificateError{Op: "decode", Err: errors.Join(errs...)}
}

func validate(km *KeyMaterial) error {
	if km == nil || km.PrivateKey == nil {
		return errors.New("el contenedor no incluye llave privada")
	}
	if km.Certificate == nil {
		return errors.New("el contenedor no incluye certificado")
	}
	if !publicKeyMatches(km.PrivateKey, km.Certificate) {
		return errors.New("la llave privada no corresponde al certificado")
	}
	switch km.PrivateKey.(type) {
	case *rsa.PrivateKey, *ecdsa.PrivateKey:
		return nil
	}
	return fmt.Errorf("llave privada de tipo %T no soportada", km.PrivateKey)
}
