package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/nfse-emissor/internal/domain"
	"github.com/jhoicas/nfse-emissor/internal/domain/entity"
)

// AddressRequest dirección nacional (endNac).
type AddressRequest struct {
	Street           string `json:"street"`
	Number           string `json:"number"`
	Complement       string `json:"complement,omitempty"`
	District         string `json:"district"`
	MunicipalityCode string `json:"municipality_code"` // IBGE, 7 dígitos
	PostalCode       string `json:"postal_code"`       // CEP, 8 dígitos
}

// TaxRegimeRequest situación tributaria del prestador (regTrib).
type TaxRegimeRequest struct {
	SimplesOption        string `json:"simples_option"`                  // opSimpNac
	SimplesApportionment string `json:"simples_apportionment,omitempty"` // regApTribSN
	SpecialRegime        string `json:"special_regime,omitempty"`        // regEspTrib
}

// PartyRequest prestador, tomador o intermediario. Informar CNPJ o CPF.
type PartyRequest struct {
	CNPJ                  string            `json:"cnpj,omitempty"`
	CPF                   string            `json:"cpf,omitempty"`
	MunicipalRegistration string            `json:"municipal_registration,omitempty"`
	Name                  string            `json:"name,omitempty"`
	TradeName             string            `json:"trade_name,omitempty"`
	Phone                 string            `json:"phone,omitempty"`
	Email                 string            `json:"email,omitempty"`
	Address               *AddressRequest   `json:"address,omitempty"`
	TaxRegime             *TaxRegimeRequest `json:"tax_regime,omitempty"`
}

// ServiceRequest servicio prestado.
type ServiceRequest struct {
	RenderingMunicipality string `json:"rendering_municipality,omitempty"`
	TaxCode               string `json:"tax_code"` // cTribNac
	Description           string `json:"description"`
	ComplementaryInfo     string `json:"complementary_info,omitempty"`
}

// ValuesRequest valores y tributos.
type ValuesRequest struct {
	ServiceValue          decimal.Decimal  `json:"service_value"`
	UnconditionalDiscount decimal.Decimal  `json:"unconditional_discount"`
	ConditionalDiscount   decimal.Decimal  `json:"conditional_discount"`
	ISSRate               decimal.Decimal  `json:"iss_rate"`
	ISSQNTreatment        string           `json:"issqn_treatment,omitempty"`
	Withholding           string           `json:"withholding,omitempty"`
	PISCOFINSCST          string           `json:"piscofins_cst,omitempty"`
	SimplesTaxPercent     decimal.Decimal  `json:"simples_tax_percent"`
	FederalTaxTotal       decimal.Decimal  `json:"federal_tax_total"`
	StateTaxTotal         decimal.Decimal  `json:"state_tax_total"`
	MunicipalTaxTotal     *decimal.Decimal `json:"municipal_tax_total,omitempty"`
}

// EmitDPSRequest body para POST /api/nfse/dps y /api/nfse/dps/preview.
type EmitDPSRequest struct {
	Environment      string         `json:"environment,omitempty"` // vacío = ambiente configurado
	EmittedAt        *time.Time     `json:"emitted_at,omitempty"`  // vacío = ahora
	Series           string         `json:"series"`
	Number           string         `json:"number"`
	CompetenceDate   string         `json:"competence_date"` // AAAA-MM-DD
	EmitterType      string         `json:"emitter_type,omitempty"`
	MunicipalityCode string         `json:"municipality_code"`
	Provider         PartyRequest   `json:"provider"`
	Client           *PartyRequest  `json:"client,omitempty"`
	Intermediary     *PartyRequest  `json:"intermediary,omitempty"`
	Service          ServiceRequest `json:"service"`
	Values           ValuesRequest  `json:"values"`
	Notes            string         `json:"notes,omitempty"`
}

// DeclarationDefaults valores del servidor que completan la solicitud.
type DeclarationDefaults struct {
	Environment string
	AppVersion  string
	Now         time.Time
}

// ToDeclaration arma la Declaration con el DeclarationBuilder. Devuelve *domain.ConfigurationError
// con todos los campos faltantes.
func (r EmitDPSRequest) ToDeclaration(def DeclarationDefaults) (*entity.Declaration, error) {
	b := entity.NewDeclarationBuilder().
		Environment(pick(r.Environment, def.Environment)).
		AppVersion(def.AppVersion).
		Series(r.Series).
		Number(r.Number).
		Municipality(r.MunicipalityCode).
		Provider(r.Provider.toParty()).
		Service(entity.Service{
			RenderingMunicipality: r.Service.RenderingMunicipality,
			TaxCode:               r.Service.TaxCode,
			Description:           r.Service.Description,
			ComplementaryInfo:     r.Service.ComplementaryInfo,
		}).
		Values(r.Values.toValues()).
		Notes(r.Notes)

	if r.EmitterType != "" {
		b.EmitterType(r.EmitterType)
	}
	emitted := def.Now
	if r.EmittedAt != nil {
		emitted = *r.EmittedAt
	}
	b.EmittedAt(emitted)

	if r.CompetenceDate != "" {
		d, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(r.CompetenceDate), emitted.Location())
		if err != nil {
			return nil, domain.NewConfigurationError("dCompet")
		}
		b.CompetenceDate(d)
	}
	if r.Client != nil {
		b.Client(r.Client.toParty())
	}
	if r.Intermediary != nil {
		b.Intermediary(r.Intermediary.toParty())
	}
	return b.Build()
}

func (p PartyRequest) toParty() entity.Party {
	out := entity.Party{
		MunicipalRegistration: p.MunicipalRegistration,
		Name:                  p.Name,
		TradeName:             p.TradeName,
		Phone:                 p.Phone,
		Email:                 p.Email,
	}
	switch {
	case p.CNPJ != "":
		out.TaxID = entity.CNPJ(p.CNPJ)
	case p.CPF != "":
		out.TaxID = entity.CPF(p.CPF)
	}
	if p.Address != nil {
		out.Address = &entity.Address{
			Street:           p.Address.Street,
			Number:           p.Address.Number,
			Complement:       p.Address.Complement,
			District:         p.Address.District,
			MunicipalityCode: p.Address.MunicipalityCode,
			PostalCode:       p.Address.PostalCode,
		}
	}
	if p.TaxRegime != nil {
		out.TaxRegime = &entity.TaxRegime{
			SimplesOption:        p.TaxRegime.SimplesOption,
			SimplesApportionment: p.TaxRegime.SimplesApportionment,
			SpecialRegime:        p.TaxRegime.SpecialRegime,
		}
	}
	return out
}

func (v ValuesRequest) toValues() entity.Values {
	return entity.Values{
		ServiceValue:          v.ServiceValue,
		UnconditionalDiscount: v.UnconditionalDiscount,
		ConditionalDiscount:   v.ConditionalDiscount,
		ISSRate:               v.ISSRate,
		ISSQNTreatment:        v.ISSQNTreatment,
		Withholding:           v.Withholding,
		PISCOFINSCST:          v.PISCOFINSCST,
		SimplesTaxPercent:     v.SimplesTaxPercent,
		FederalTaxTotal:       v.FederalTaxTotal,
		StateTaxTotal:         v.StateTaxTotal,
		MunicipalTaxTotal:     v.MunicipalTaxTotal,
	}
}

// CancelRequest body para POST /api/nfse/:chave/cancelamento.
type CancelRequest struct {
	ReasonCode string `json:"reason_code"` // cMotivo
	ReasonText string `json:"reason_text"` // xMotivo
	AuthorCNPJ string `json:"author_cnpj,omitempty"`
	AuthorCPF  string `json:"author_cpf,omitempty"`
}

// Author autor informado; vacío = se toma del certificado.
func (r CancelRequest) Author() entity.FiscalID {
	switch {
	case r.AuthorCNPJ != "":
		return entity.CNPJ(r.AuthorCNPJ)
	case r.AuthorCPF != "":
		return entity.CPF(r.AuthorCPF)
	}
	return entity.FiscalID{}
}

// SubmitResponse resultado de emisión o cancelación.
type SubmitResponse struct {
	SubmissionID string   `json:"submission_id,omitempty"`
	DocumentID   string   `json:"document_id"`
	AccessKey    string   `json:"access_key,omitempty"`
	Status       string   `json:"status"`
	Accepted     bool     `json:"accepted"`
	Alerts       []string `json:"alerts,omitempty"`
	Errors       string   `json:"errors,omitempty"`
	NFSeXML      string   `json:"nfse_xml,omitempty"`
}

// PreviewResponse DPS firmada y su payload listo para el ADN.
type PreviewResponse struct {
	DocumentID string `json:"document_id"`
	Digest     string `json:"digest"`
	Payload    string `json:"dps_xml_gzip_b64"`
	SignedXML  string `json:"signed_xml"`
}

// QueryResponse consulta de una NFS-e en el ADN.
type QueryResponse struct {
	AccessKey string   `json:"access_key"`
	Found     bool     `json:"found"`
	Alerts    []string `json:"alerts,omitempty"`
	Errors    string   `json:"errors,omitempty"`
	NFSeXML   string   `json:"nfse_xml,omitempty"`
}

// SubmissionResponse registro de un envío.
type SubmissionResponse struct {
	ID           string          `json:"id"`
	Kind         string          `json:"kind"`
	DocumentID   string          `json:"document_id"`
	AccessKey    string          `json:"access_key,omitempty"`
	Environment  string          `json:"environment"`
	Status       string          `json:"status"`
	ServiceValue decimal.Decimal `json:"service_value"`
	Errors       string          `json:"errors,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewSubmissionResponse mapea la entidad (sin los XML).
func NewSubmissionResponse(s *entity.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:           s.ID,
		Kind:         string(s.Kind),
		DocumentID:   s.DocumentID,
		AccessKey:    s.AccessKey,
		Environment:  s.Environment,
		Status:       s.Status,
		ServiceValue: s.ServiceValue,
		Errors:       s.Errors,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func pick(v, def string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return def
}
