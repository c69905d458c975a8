package signer

import (
	"crypto/x509"
	"errors"

	"github.com/jhoicas/nfse-emissor/internal/domain"
	"github.com/jhoicas/nfse-emissor/internal/domain/entity"
)

// AuthorFromCertificate obtiene la inscripción del titular de un certificado ICP-Brasil.
// El CN de un e-CNPJ/e-CPF termina en ":<dígitos>"; se toma la primera secuencia de 14 dígitos
// (CNPJ) y, si no la hay, la primera de 11 (CPF). El SerialNumber del subject es el respaldo.
func AuthorFromCertificate(cert *x509.Certificate) (entity.FiscalID, error) {
	if cert == nil {
		return entity.FiscalID{}, &domain.CertificateError{Op: "subject", Err: errors.New("certificado ausente")}
	}
	for _, src := range []string{cert.Subject.CommonName, cert.Subject.SerialNumber} {
		if id, ok := fiscalIDFromText(src); ok {
			return id, nil
		}
	}
	return entity.FiscalID{}, &domain.CertificateError{Op: "subject", Err: errors.New("el CN no contiene CNPJ ni CPF")}
}

func fiscalIDFromText(s string) (entity.FiscalID, bool) {
	runs := digitRuns(s)
	for _, r := range runs {
		if len(r) == 14 {
			return entity.CNPJ(r), true
		}
	}
	for _, r := range runs {
		if len(r) == 11 {
			return entity.CPF(r), true
		}
	}
	return entity.FiscalID{}, false
}

// digitRuns devuelve las secuencias maximales de dígitos ASCII.
func digitRuns(s string) []string {
	var runs []string
	start := -1
	for i := 0; i <= len(s); i++ {
		isDigit := i < len(s) && s[i] >= '0' && s[i] <= '9'
		switch {
		case isDigit && start < 0:
			start = i
		case !isDigit && start >= 0:
			runs = append(runs, s[start:i])
			start = -1
		}
	}
	return runs
}
