package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentSummary datos leídos de una DPS firmada para su representación gráfica.
type DocumentSummary struct {
	DocumentID      string
	AccessKey       string
	Environment     string
	EmittedAt       time.Time
	CompetenceDate  time.Time
	Series          string
	Number          string
	ProviderTaxID   string
	ProviderName    string
	ClientTaxID     string
	ClientName      string
	TaxCode         string
	Description     string
	ServiceValue    decimal.Decimal
	SimplesPercent  decimal.Decimal
	MunicipalTax    decimal.Decimal
	Notes           string
	SignatureDigest string
}
