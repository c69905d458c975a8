package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound      = errors.New("recurso no encontrado")
	ErrInvalidInput  = errors.New("entrada inválida")
	ErrUnauthorized  = errors.New("no autorizado")
	ErrConfiguration = errors.New("campos obligatorios ausentes o inválidos")
	ErrCertificate   = errors.New("certificado inválido o ilegible")
	ErrSignature     = errors.New("firma del documento fallida")
	ErrEnvelope      = errors.New("empaquetado del documento fallido")
	ErrTransport     = errors.New("envío al ADN fallido")
)

// ConfigurationError indica que los datos de negocio no permiten construir el documento.
// Fields lista los campos faltantes o inválidos en el orden en que se detectaron.
type ConfigurationError struct {
	Fields []string
	Err    error
}

// NewConfigurationError crea el error con la lista de campos afectados.
func NewConfigurationError(fields ...string) *ConfigurationError {
	return &ConfigurationError{Fields: fields}
}

func (e *ConfigurationError) Error() string {
	msg := "nfse: " + ErrConfiguration.Error()
	if len(e.Fields) > 0 {
		msg += ": " + strings.Join(e.Fields, ", ")
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }
func (e *ConfigurationError) Unwrap() error        { return e.Err }

// CertificateError indica un contenedor PKCS#12 ilegible, contraseña incorrecta o sin llave/certificado.
type CertificateError struct {
	Op  string
	Err error
}

func (e *CertificateError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("signer: %s: %s", e.Op, ErrCertificate)
	}
	return fmt.Sprintf("signer: %s: %v", e.Op, e.Err)
}

func (e *CertificateError) Is(target error) bool { return target == ErrCertificate }
func (e *CertificateError) Unwrap() error        { return e.Err }

// SignatureError indica que falta el elemento firmable o que la primitiva de firma falló.
type SignatureError struct {
	Op  string
	Err error
}

func (e *SignatureError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("signer: %s: %s", e.Op, ErrSignature)
	}
	return fmt.Sprintf("signer: %s: %v", e.Op, e.Err)
}

func (e *SignatureError) Is(target error) bool { return target == ErrSignature }
func (e *SignatureError) Unwrap() error        { return e.Err }

// EnvelopeError indica fallo de compresión/descompresión o de codificación Base64.
type EnvelopeError struct {
	Op  string
	Err error
}

func (e *EnvelopeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("envelope: %s: %s", e.Op, ErrEnvelope)
	}
	return fmt.Sprintf("envelope: %s: %v", e.Op, e.Err)
}

func (e *EnvelopeError) Is(target error) bool { return target == ErrEnvelope }
func (e *EnvelopeError) Unwrap() error        { return e.Err }

// TransportError conserva el status HTTP y el cuerpo devueltos por el ADN.
// Status 0 indica que no hubo respuesta (fallo de red); la causa queda en Err.
type TransportError struct {
	Status int
	Body   []byte
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status == 0 && e.Err != nil {
		return fmt.Sprintf("adn: %v", e.Err)
	}
	body := string(e.Body)
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	return fmt.Sprintf("adn: status %d: %s", e.Status, body)
}

func (e *TransportError) Is(target error) bool { return target == ErrTransport }
func (e *TransportError) Unwrap() error        { return e.Err }
