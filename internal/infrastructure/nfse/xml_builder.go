// Package nfse implementa la generación del XML de la DPS (leiaute nacional NFS-e v1.00),
// el pedido de evento de cancelación, el empaquetado gzip+Base64 y el cliente del ADN.
package nfse

import (
	"errors"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/nfse-emissor/internal/domain"
	"github.com/jhoicas/nfse-emissor/internal/domain/entity"
	pkgnfse "github.com/jhoicas/nfse-emissor/pkg/nfse"
)

// Elementos firmables y formatos de fecha del leiaute.
const (
	ElementDPS     = "DPS"
	ElementInfDPS  = "infDPS"
	layoutDateTime = "2006-01-02T15:04:05-07:00"
	layoutDate     = "2006-01-02"
	xmlDeclaration = `version="1.0" encoding="UTF-8"`
)

type partyRole int

const (
	roleProvider partyRole = iota
	roleClient
	roleIntermediary
)

// XMLBuilderService construye el árbol XML de la DPS (sin firma).
type XMLBuilderService struct {
	defaults pkgnfse.TaxDefaults
}

// NewXMLBuilderService crea el servicio. Los campos vacíos de defaults toman
// pkgnfse.DefaultTaxDefaults().
func NewXMLBuilderService(defaults pkgnfse.TaxDefaults) *XMLBuilderService {
	base := pkgnfse.DefaultTaxDefaults()
	if defaults.ISSQNTreatment == "" {
		defaults.ISSQNTreatment = base.ISSQNTreatment
	}
	if defaults.Withholding == "" {
		defaults.Withholding = base.Withholding
	}
	if defaults.PISCOFINSCST == "" {
		defaults.PISCOFINSCST = base.PISCOFINSCST
	}
	return &XMLBuilderService{defaults: defaults}
}

// Defaults devuelve los valores de tributación efectivos del builder.
func (s *XMLBuilderService) Defaults() pkgnfse.TaxDefaults { return s.defaults }

// Build genera el documento <DPS><infDPS Id="...">...</infDPS></DPS> en el orden estricto del leiaute.
func (s *XMLBuilderService) Build(decl *entity.Declaration) (*etree.Document, error) {
	if decl == nil {
		return nil, domain.NewConfigurationError("DPS")
	}
	if err := validateHeader(decl); err != nil {
		return nil, err
	}
	id, err := decl.Identifier()
	if err != nil {
		return nil, configurationFromField(err)
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", xmlDeclaration)
	root := doc.CreateElement(ElementDPS)
	root.CreateAttr("xmlns", pkgnfse.Namespace)
	root.CreateAttr("versao", pkgnfse.SchemaVersion)

	inf := root.CreateElement(ElementInfDPS)
	inf.CreateAttr("Id", id)

	// ---- Cabecera: el orden de estos 8 elementos es fijo
	addText(inf, "tpAmb", decl.Environment())
	addText(inf, "dhEmi", decl.EmittedAt().Format(layoutDateTime))
	addText(inf, "verAplic", decl.AppVersion())
	addText(inf, "serie", decl.Series())
	addText(inf, "nDPS", decl.Number())
	addText(inf, "dCompet", decl.CompetenceDate().Format(layoutDate))
	addText(inf, "tpEmit", decl.EmitterType())
	addText(inf, "cLocEmi", decl.Municipality())

	// ---- Partes
	s.writeParty(inf, "prest", decl.Provider(), roleProvider, decl.ProviderIsEmitter())
	if client, ok := decl.Client(); ok {
		s.writeParty(inf, "toma", client, roleClient, false)
	}
	if interm, ok := decl.Intermediary(); ok {
		s.writeParty(inf, "interm", interm, roleIntermediary, false)
	}

	// ---- Servicio y valores
	s.writeService(inf, decl.Service())
	s.writeValues(inf, decl.Values())

	if notes := decl.Notes(); notes != "" {
		addText(inf, "xOutInf", notes)
	}
	return doc, nil
}

// BuildBytes serializa el documento de Build sin indentación (la firma depende de los bytes exactos).
func (s *XMLBuilderService) BuildBytes(decl *entity.Declaration) ([]byte, error) {
	doc, err := s.Build(decl)
	if err != nil {
		return nil, err
	}
	return doc.WriteToBytes()
}

// validateHeader protege contra Declaration{} construidas fuera del DeclarationBuilder.
func validateHeader(decl *entity.Declaration) error {
	var missing []string
	if !pkgnfse.ValidEnvironment(decl.Environment()) {
		missing = append(missing, "tpAmb")
	}
	if decl.EmittedAt().IsZero() {
		missing = append(missing, "dhEmi")
	}
	if decl.AppVersion() == "" {
		missing = append(missing, "verAplic")
	}
	if decl.Series() == "" {
		missing = append(missing, "serie")
	}
	if decl.Number() == "" {
		missing = append(missing, "nDPS")
	}
	if decl.CompetenceDate().IsZero() {
		missing = append(missing, "dCompet")
	}
	if !pkgnfse.ValidEmitterType(decl.EmitterType()) {
		missing = append(missing, "tpEmit")
	}
	if decl.Municipality() == "" {
		missing = append(missing, "cLocEmi")
	}
	if len(missing) > 0 {
		return domain.NewConfigurationError(missing...)
	}
	return nil
}

func configurationFromField(err error) error {
	var fe *pkgnfse.FieldError
	if errors.As(err, &fe) {
		return &domain.ConfigurationError{Fields: []string{fe.Field}, Err: err}
	}
	return &domain.ConfigurationError{Err: err}
}

// writeParty escribe prest/toma/interm. Orden: CNPJ|CPF, IM, xNome, xFant, end, fone, email, regTrib.
// suppress elimina xNome y end (prestador emisor), aunque vengan informados.
func (s *XMLBuilderService) writeParty(parent *etree.Element, tag string, p entity.Party, role partyRole, suppress bool) {
	el := parent.CreateElement(tag)
	addText(el, p.TaxID.Tag(), p.TaxID.Digits())
	if im := strings.TrimSpace(p.MunicipalRegistration); im != "" {
		addText(el, "IM", im)
	}
	if name := strings.TrimSpace(p.Name); name != "" && !suppress {
		addText(el, "xNome", name)
	}
	if fant := strings.TrimSpace(p.TradeName); fant != "" && role != roleProvider {
		addText(el, "xFant", fant)
	}
	if p.Address != nil && !suppress {
		writeAddress(el, p.Address)
	}
	if phone := pkgnfse.OnlyDigits(p.Phone); phone != "" {
		addText(el, "fone", phone)
	}
	if email := strings.TrimSpace(p.Email); email != "" {
		addText(el, "email", email)
	}
	if role == roleProvider {
		writeTaxRegime(el, p.TaxRegime)
	}
}

// writeAddress: cMun y CEP van dentro de endNac; xLgr, nro, xCpl y xBairro son hermanos de endNac.
func writeAddress(parent *etree.Element, a *entity.Address) {
	end := parent.CreateElement("end")
	endNac := end.CreateElement("endNac")
	addText(endNac, "cMun", strings.TrimSpace(a.MunicipalityCode))
	addText(endNac, "CEP", pkgnfse.OnlyDigits(a.PostalCode))
	addText(end, "xLgr", a.Street)
	addText(end, "nro", a.Number)
	if cpl := strings.TrimSpace(a.Complement); cpl != "" {
		addText(end, "xCpl", cpl)
	}
	addText(end, "xBairro", a.District)
}

// writeTaxRegime: sin régimen informado se asume no optante sin régimen especial.
func writeTaxRegime(parent *etree.Element, r *entity.TaxRegime) {
	reg := entity.TaxRegime{SimplesOption: pkgnfse.SimplesNotOptant, SpecialRegime: pkgnfse.SpecialRegimeNone}
	if r != nil {
		if r.SimplesOption != "" {
			reg.SimplesOption = r.SimplesOption
		}
		if r.SpecialRegime != "" {
			reg.SpecialRegime = r.SpecialRegime
		}
		reg.SimplesApportionment = r.SimplesApportionment
	}
	el := parent.CreateElement("regTrib")
	addText(el, "opSimpNac", reg.SimplesOption)
	// regApTribSN solo aplica a ME/EPP optante
	if reg.SimplesOption == pkgnfse.SimplesMEEPP && reg.SimplesApportionment != "" {
		addText(el, "regApTribSN", reg.SimplesApportionment)
	}
	addText(el, "regEspTrib", reg.SpecialRegime)
}

func (s *XMLBuilderService) writeService(parent *etree.Element, svc entity.Service) {
	serv := parent.CreateElement("serv")
	if mun := strings.TrimSpace(svc.RenderingMunicipality); mun != "" {
		loc := serv.CreateElement("locPrest")
		addText(loc, "cLocPrestacao", mun)
	}
	cServ := serv.CreateElement("cServ")
	addText(cServ, "cTribNac", pkgnfse.OnlyDigits(svc.TaxCode))
	addText(cServ, "xDescServ", svc.Description)
	if info := strings.TrimSpace(svc.ComplementaryInfo); info != "" {
		compl := serv.CreateElement("infoCompl")
		addText(compl, "xInfComp", info)
	}
}

// writeValues escribe valores. totTrib es excluyente: pTotTribSN o vTotTrib, nunca ambos.
func (s *XMLBuilderService) writeValues(parent *etree.Element, v entity.Values) {
	val := parent.CreateElement("valores")
	vsp := val.CreateElement("vServPrest")
	addText(vsp, "vServ", money(v.ServiceValue))

	if v.UnconditionalDiscount.IsPositive() || v.ConditionalDiscount.IsPositive() {
		desc := val.CreateElement("vDescCondIncond")
		if v.UnconditionalDiscount.IsPositive() {
			addText(desc, "vDescIncond", money(v.UnconditionalDiscount))
		}
		if v.ConditionalDiscount.IsPositive() {
			addText(desc, "vDescCond", money(v.ConditionalDiscount))
		}
	}

	trib := val.CreateElement("trib")
	tribMun := trib.CreateElement("tribMun")
	addText(tribMun, "tribISSQN", pick(v.ISSQNTreatment, s.defaults.ISSQNTreatment))
	if v.ISSRate.IsPositive() {
		addText(tribMun, "pAliq", money(v.ISSRate))
	}
	addText(tribMun, "tpRetISSQN", pick(v.Withholding, s.defaults.Withholding))

	tribFed := trib.CreateElement("tribFed")
	pisCofins := tribFed.CreateElement("piscofins")
	addText(pisCofins, "CST", pick(v.PISCOFINSCST, s.defaults.PISCOFINSCST))

	totTrib := trib.CreateElement("totTrib")
	if v.UsesSimplesPercent() {
		addText(totTrib, "pTotTribSN", money(v.SimplesTaxPercent))
		return
	}
	vTot := totTrib.CreateElement("vTotTrib")
	addText(vTot, "vTotTribFed", money(v.FederalTaxTotal))
	addText(vTot, "vTotTribEst", money(v.StateTaxTotal))
	addText(vTot, "vTotTribMun", money(v.MunicipalTotal()))
}

// addText crea <tag>value</tag>. El texto se normaliza a NFC para que dos entradas
// visualmente iguales produzcan los mismos bytes canónicos.
func addText(parent *etree.Element, tag, value string) *etree.Element {
	el := parent.CreateElement(tag)
	el.SetText(norm.NFC.String(strings.TrimSpace(value)))
	return el
}

// money formatea con exactamente 2 decimales y punto como separador, sin depender del locale.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func pick(value, def string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return def
}

func formatEventTime(t time.Time) string {
	return t.Format(layoutDateTime)
}
