package emission

import (
	"context"
	"fmt"

	"github.com/jhoicas/nfse-emissor/internal/domain"
	"github.com/jhoicas/nfse-emissor/internal/infrastructure/nfse/signer"
)

var _ CertificateSource = (*FileCertificateSource)(nil)

// FileCertificateSource relee el contenedor PKCS#12 del disco en cada operación,
// de modo que la llave nunca queda en memoria entre solicitudes.
type FileCertificateSource struct {
	loader   *signer.CertificateLoader
	path     string
	password string
}

// NewFileCertificateSource construye la fuente; path vacío produce CertificateError en Load.
func NewFileCertificateSource(loader *signer.CertificateLoader, path, password string) *FileCertificateSource {
	return &FileCertificateSource{loader: loader, path: path, password: password}
}

func (s *FileCertificateSource) Load(ctx context.Context) (*signer.KeyMaterial, error) {
	if s.path == "" {
		return nil, &domain.CertificateError{Op: "config", Err: fmt.Errorf("NFSE_CERT_PATH no configurado")}
	}
	return s.loader.LoadFile(ctx, s.path, s.password)
}
