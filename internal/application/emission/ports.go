package emission

import (
	"context"
	"crypto/tls"

	"github.com/jhoicas/nfse-emissor/internal/domain/entity"
	infranfse "github.com/jhoicas/nfse-emissor/internal/infrastructure/nfse"
	"github.com/jhoicas/nfse-emissor/internal/infrastructure/nfse/signer"
)

// CertificateSource entrega un KeyMaterial nuevo en cada llamada; el llamador lo cierra.
type CertificateSource interface {
	Load(ctx context.Context) (*signer.KeyMaterial, error)
}

// Gateway crea un Submitter autenticado con el certificado del emisor (mTLS con el ADN).
type Gateway interface {
	WithCertificate(cert tls.Certificate) infranfse.Submitter
}

// SummaryPDFGenerator representación gráfica del documento firmado.
type SummaryPDFGenerator interface {
	GenerateSummaryPDF(ctx context.Context, summary *entity.DocumentSummary) ([]byte, error)
}
