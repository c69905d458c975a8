package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubmissionKind tipo de documento enviado al ADN.
type SubmissionKind string

const (
	SubmissionDPS    SubmissionKind = "dps"
	SubmissionCancel SubmissionKind = "cancel"
)

// Estados del envío.
const (
	SubmissionSigned   = "SIGNED"
	SubmissionSent     = "SENT"
	SubmissionAccepted = "ACCEPTED"
	SubmissionRejected = "REJECTED"
	SubmissionError    = "ERROR"
)

// Submission registro de auditoría de un documento firmado y su resultado en el ADN.
type Submission struct {
	ID           string
	Kind         SubmissionKind
	DocumentID   string // Id de la DPS o del pedido de evento
	AccessKey    string // chaveAcesso devuelta por el ADN
	Environment  string
	Status       string
	ServiceValue decimal.Decimal
	SignedXML    string
	NFSeXML      string
	Errors       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
