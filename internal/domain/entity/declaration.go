package entity

import (
	"strings"
	"time"

	"github.com/jhoicas/nfse-emissor/internal/domain"
	"github.com/jhoicas/nfse-emissor/pkg/nfse"
)

// Declaration DPS (Declaração de Prestação de Serviço). Inmutable: solo se obtiene mediante
// DeclarationBuilder.Build y expone sus datos por copia.
type Declaration struct {
	environment  string
	emittedAt    time.Time
	appVersion   string
	series       string
	number       string
	competence   time.Time
	emitterType  string
	municipality string

	provider     Party
	client       *Party
	intermediary *Party
	service      Service
	values       Values
	notes        string
}

func (d *Declaration) Environment() string       { return d.environment }
func (d *Declaration) EmittedAt() time.Time      { return d.emittedAt }
func (d *Declaration) AppVersion() string        { return d.appVersion }
func (d *Declaration) Series() string            { return d.series }
func (d *Declaration) Number() string            { return d.number }
func (d *Declaration) CompetenceDate() time.Time { return d.competence }
func (d *Declaration) EmitterType() string       { return d.emitterType }
func (d *Declaration) Municipality() string      { return d.municipality }
func (d *Declaration) Provider() Party           { return d.provider.clone() }
func (d *Declaration) Service() Service          { return d.service }
func (d *Declaration) Values() Values            { return d.values.clone() }
func (d *Declaration) Notes() string             { return d.notes }

// Client devuelve el tomador (ok=false si la DPS no lo incluye).
func (d *Declaration) Client() (Party, bool) {
	if d.client == nil {
		return Party{}, false
	}
	return d.client.clone(), true
}

// Intermediary devuelve el intermediario (ok=false si la DPS no lo incluye).
func (d *Declaration) Intermediary() (Party, bool) {
	if d.intermediary == nil {
		return Party{}, false
	}
	return d.intermediary.clone(), true
}

// ProviderIsEmitter informa si el prestador es el emisor (tpEmit=1). En ese caso el esquema
// prohíbe xNome y end en el bloque prest.
func (d *Declaration) ProviderIsEmitter() bool {
	return d.emitterType == nfse.EmitterProvider
}

// Identifier calcula el Id de 45 posiciones a partir del municipio emisor, la inscripción
// del prestador, la serie y el número.
func (d *Declaration) Identifier() (string, error) {
	return nfse.DPSIdentifier(d.municipality, d.provider.TaxID.Digits(), d.series, d.number)
}

// DeclarationBuilder acumula los campos de la DPS. Build valida los obligatorios y solo
// entonces produce la Declaration; un builder puede reutilizarse para construir otra.
type DeclarationBuilder struct {
	d Declaration
}

// NewDeclarationBuilder crea el builder con el ambiente de producción restringida y emisor prestador.
func NewDeclarationBuilder() *DeclarationBuilder {
	return &DeclarationBuilder{d: Declaration{
		environment: nfse.EnvironmentRestricted,
		emitterType: nfse.EmitterProvider,
	}}
}

func (b *DeclarationBuilder) Environment(code string) *DeclarationBuilder {
	b.d.environment = strings.TrimSpace(code)
	return b
}

func (b *DeclarationBuilder) EmittedAt(t time.Time) *DeclarationBuilder {
	b.d.emittedAt = t
	return b
}

func (b *DeclarationBuilder) AppVersion(v string) *DeclarationBuilder {
	b.d.appVersion = strings.TrimSpace(v)
	return b
}

func (b *DeclarationBuilder) Series(s string) *DeclarationBuilder {
	b.d.series = strings.TrimSpace(s)
	return b
}

func (b *DeclarationBuilder) Number(n string) *DeclarationBuilder {
	b.d.number = strings.TrimSpace(n)
	return b
}

func (b *DeclarationBuilder) CompetenceDate(t time.Time) *DeclarationBuilder {
	b.d.competence = t
	return b
}

func (b *DeclarationBuilder) EmitterType(code string) *DeclarationBuilder {
	b.d.emitterType = strings.TrimSpace(code)
	return b
}

func (b *DeclarationBuilder) Municipality(code string) *DeclarationBuilder {
	b.d.municipality = strings.TrimSpace(code)
	return b
}

func (b *DeclarationBuilder) Provider(p Party) *DeclarationBuilder {
	b.d.provider = p.clone()
	return b
}

func (b *DeclarationBuilder) Client(p Party) *DeclarationBuilder {
	c := p.clone()
	b.d.client = &c
	return b
}

func (b *DeclarationBuilder) Intermediary(p Party) *DeclarationBuilder {
	c := p.clone()
	b.d.intermediary = &c
	return b
}

func (b *DeclarationBuilder) Service(s Service) *DeclarationBuilder {
	b.d.service = s
	return b
}

func (b *DeclarationBuilder) Values(v Values) *DeclarationBuilder {
	b.d.values = v.clone()
	return b
}

func (b *DeclarationBuilder) Notes(n string) *DeclarationBuilder {
	b.d.notes = strings.TrimSpace(n)
	return b
}

// Build valida los campos obligatorios y devuelve una copia independiente del builder.
// Todos los campos ausentes se informan juntos en un *domain.ConfigurationError.
func (b *DeclarationBuilder) Build() (*Declaration, error) {
	var missing []string
	d := b.d

	if !nfse.ValidEnvironment(d.environment) {
		missing = append(missing, "tpAmb")
	}
	if d.emittedAt.IsZero() {
		missing = append(missing, "dhEmi")
	}
	if d.appVersion == "" {
		missing = append(missing, "verAplic")
	}
	if d.series == "" {
		missing = append(missing, "serie")
	}
	if d.number == "" {
		missing = append(missing, "nDPS")
	}
	if d.competence.IsZero() {
		missing = append(missing, "dCompet")
	}
	if !nfse.ValidEmitterType(d.emitterType) {
		missing = append(missing, "tpEmit")
	}
	if d.municipality == "" {
		missing = append(missing, "cLocEmi")
	}
	if !d.provider.TaxID.WellFormed() {
		missing = append(missing, "prest.CNPJ/CPF")
	}
	if d.client != nil && !d.client.TaxID.WellFormed() {
		missing = append(missing, "toma.CNPJ/CPF")
	}
	if d.intermediary != nil && !d.intermediary.TaxID.WellFormed() {
		missing = append(missing, "interm.CNPJ/CPF")
	}
	if nfse.OnlyDigits(d.service.TaxCode) == "" {
		missing = append(missing, "cTribNac")
	}
	if strings.TrimSpace(d.service.Description) == "" {
		missing = append(missing, "xDescServ")
	}
	if d.values.ServiceValue.IsNegative() {
		missing = append(missing, "vServ")
	}
	if len(missing) > 0 {
		return nil, domain.NewConfigurationError(missing...)
	}

	d.provider = d.provider.clone()
	if d.client != nil {
		c := d.client.clone()
		d.client = &c
	}
	if d.intermediary != nil {
		i := d.intermediary.clone()
		d.intermediary = &i
	}
	d.values = d.values.clone()
	return &d, nil
}
