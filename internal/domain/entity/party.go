package entity

import "github.com/jhoicas/nfse-emissor/pkg/nfse"

// FiscalIDKind distingue CNPJ (persona jurídica) de CPF (persona física).
type FiscalIDKind int

const (
	FiscalIDNone FiscalIDKind = iota
	FiscalIDCNPJ
	FiscalIDCPF
)

// FiscalID inscripción federal: exactamente uno de CNPJ (14 dígitos) o CPF (11 dígitos).
type FiscalID struct {
	kind   FiscalIDKind
	digits string
}

// CNPJ crea un FiscalID de persona jurídica; se descartan puntos, barras y guiones.
func CNPJ(s string) FiscalID { return FiscalID{kind: FiscalIDCNPJ, digits: nfse.OnlyDigits(s)} }

// CPF crea un FiscalID de persona física; se descartan puntos y guiones.
func CPF(s string) FiscalID { return FiscalID{kind: FiscalIDCPF, digits: nfse.OnlyDigits(s)} }

func (f FiscalID) Kind() FiscalIDKind { return f.kind }
func (f FiscalID) Digits() string     { return f.digits }
func (f FiscalID) IsZero() bool       { return f.kind == FiscalIDNone || f.digits == "" }

// Tag devuelve el nombre del elemento XML ("CNPJ" o "CPF").
func (f FiscalID) Tag() string {
	switch f.kind {
	case FiscalIDCNPJ:
		return "CNPJ"
	case FiscalIDCPF:
		return "CPF"
	}
	return ""
}

// WellFormed verifica que la cantidad de dígitos corresponda al tipo.
func (f FiscalID) WellFormed() bool {
	switch f.kind {
	case FiscalIDCNPJ:
		return len(f.digits) == 14
	case FiscalIDCPF:
		return len(f.digits) == 11
	}
	return false
}

// Address dirección nacional. MunicipalityCode (IBGE, 7 dígitos) y PostalCode (CEP, 8 dígitos)
// se serializan dentro de endNac; el resto como hermanos.
type Address struct {
	Street           string
	Number           string
	Complement       string
	District         string
	MunicipalityCode string
	PostalCode       string
}

// TaxRegime situación tributaria del prestador (regTrib).
type TaxRegime struct {
	SimplesOption        string // opSimpNac
	SimplesApportionment string // regApTribSN (solo ME/EPP optante)
	SpecialRegime        string // regEspTrib
}

// Party prestador, tomador o intermediario.
// TradeName solo se emite para tomador/intermediario; TaxRegime solo para el prestador.
type Party struct {
	TaxID                 FiscalID
	MunicipalRegistration string
	Name                  string
	TradeName             string
	Address               *Address
	Phone                 string
	Email                 string
	TaxRegime             *TaxRegime
}

func (p Party) clone() Party {
	c := p
	if p.Address != nil {
		a := *p.Address
		c.Address = &a
	}
	if p.TaxRegime != nil {
		r := *p.TaxRegime
		c.TaxRegime = &r
	}
	return c
}
