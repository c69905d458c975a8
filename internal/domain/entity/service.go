package entity

import "github.com/shopspring/decimal"

// Service datos del servicio prestado (serv).
type Service struct {
	RenderingMunicipality string // cLocPrestacao (opcional)
	TaxCode               string // cTribNac; se emiten solo los dígitos
	Description           string // xDescServ
	ComplementaryInfo     string // infoCompl/xInfComp (opcional)
}

// Values valores y tributación de la DPS (valores).
//
// El bloque totTrib es excluyente: si SimplesTaxPercent > 0 se emite solo pTotTribSN; en caso
// contrario se emiten vTotTribFed, vTotTribEst y vTotTribMun (este último, si es nil, toma el ISS calculado).
type Values struct {
	ServiceValue          decimal.Decimal
	UnconditionalDiscount decimal.Decimal
	ConditionalDiscount   decimal.Decimal
	ISSRate               decimal.Decimal // pAliq, en porcentaje

	// Vacíos = se usan los nfse.TaxDefaults del builder.
	ISSQNTreatment string
	Withholding    string
	PISCOFINSCST   string

	SimplesTaxPercent decimal.Decimal // pTotTribSN
	FederalTaxTotal   decimal.Decimal
	StateTaxTotal     decimal.Decimal
	MunicipalTaxTotal *decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// ISSBase base de cálculo del ISSQN: valor del servicio menos el descuento incondicionado.
func (v Values) ISSBase() decimal.Decimal {
	base := v.ServiceValue.Sub(v.UnconditionalDiscount)
	if base.IsNegative() {
		return decimal.Zero
	}
	return base
}

// ISSValue ISSQN calculado = base * pAliq / 100, redondeado a 2 decimales.
func (v Values) ISSValue() decimal.Decimal {
	if !v.ISSRate.IsPositive() {
		return decimal.Zero
	}
	return v.ISSBase().Mul(v.ISSRate).Div(hundred).Round(2)
}

// MunicipalTotal vTotTribMun efectivo.
func (v Values) MunicipalTotal() decimal.Decimal {
	if v.MunicipalTaxTotal != nil {
		return *v.MunicipalTaxTotal
	}
	return v.ISSValue()
}

// UsesSimplesPercent informa si el bloque totTrib se emite como porcentaje del Simples Nacional.
func (v Values) UsesSimplesPercent() bool {
	return v.SimplesTaxPercent.IsPositive()
}

func (v Values) clone() Values {
	c := v
	if v.MunicipalTaxTotal != nil {
		m := *v.MunicipalTaxTotal
		c.MunicipalTaxTotal = &m
	}
	return c
}
