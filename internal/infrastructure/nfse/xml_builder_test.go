package nfse_test

import (
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/nfse-emissor/internal/domain"
	"github.com/jhoicas/nfse-emissor/internal/domain/entity"
	"github.com/jhoicas/nfse-emissor/internal/infrastructure/nfse"
	pkgnfse "github.com/jhoicas/nfse-emissor/pkg/nfse"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixtures
// ──────────────────────────────────────────────────────────────────────────────

var brt = time.FixedZone("BRT", -3*60*60)

func provider() entity.Party {
	return entity.Party{
		TaxID:                 entity.CNPJ("00.000.000/0001-00"),
		MunicipalRegistration: "12345",
		Name:                  "Prestador Teste Ltda",
		Address: &entity.Address{
			Street: "Rua das Flores", Number: "100", District: "Centro",
			MunicipalityCode: "4216909", PostalCode: "88000-000",
		},
		Email:     "contato@prestador.com.br",
		TaxRegime: &entity.TaxRegime{SimplesOption: pkgnfse.SimplesMEEPP, SimplesApportionment: pkgnfse.SimplesApportionmentAll, SpecialRegime: pkgnfse.SpecialRegimeNone},
	}
}

func client() entity.Party {
	return entity.Party{
		TaxID:     entity.CPF("123.456.789-09"),
		Name:      "Tomador da Silva",
		TradeName: "Silva Consultoria",
		Address: &entity.Address{
			Street: "Av. Brasil", Number: "2000", Complement: "Sala 3", District: "Jardim",
			MunicipalityCode: "4205407", PostalCode: "88010-000",
		},
		Phone: "(48) 3222-0000",
	}
}

func baseBuilder() *entity.DeclarationBuilder {
	return entity.NewDeclarationBuilder().
		Environment(pkgnfse.EnvironmentRestricted).
		EmittedAt(time.Date(2024, 5, 10, 9, 30, 0, 0, brt)).
		AppVersion("emissor 1.0").
		Series("900").
		Number("1").
		CompetenceDate(time.Date(2024, 5, 10, 0, 0, 0, 0, brt)).
		Municipality("4216909").
		Provider(provider()).
		Service(entity.Service{TaxCode: "01.01.01", Description: "Desenvolvimento de software"}).
		Values(entity.Values{
			ServiceValue:      decimal.NewFromInt(1000),
			SimplesTaxPercent: decimal.NewFromInt(6),
		})
}

func build(t *testing.T, b *entity.DeclarationBuilder) *etree.Document {
	t.Helper()
	decl, err := b.Build()
	require.NoError(t, err)
	doc, err := nfse.NewXMLBuilderService(pkgnfse.DefaultTaxDefaults()).Build(decl)
	require.NoError(t, err)
	return doc
}

func childTags(el *etree.Element) []string {
	var tags []string
	for _, c := range el.ChildElements() {
		tags = append(tags, c.Tag)
	}
	return tags
}

// ──────────────────────────────────────────────────────────────────────────────
// Estructura
// ──────────────────────────────────────────────────────────────────────────────

func TestBuild_RaizEIdentificador(t *testing.T) {
	doc := build(t, baseBuilder())

	root := doc.Root()
	assert.Equal(t, "DPS", root.Tag)
	assert.Equal(t, pkgnfse.Namespace, root.SelectAttrValue("xmlns", ""))
	assert.Equal(t, "1.00", root.SelectAttrValue("versao", ""))

	inf := root.SelectElement("infDPS")
	require.NotNil(t, inf)
	assert.Equal(t, "DPS421690920000000000010000900000000000000001", inf.SelectAttrValue("Id", ""))
	assert.Len(t, inf.SelectAttrValue("Id", ""), 45)
}

func TestBuild_OrdenDeCabecera(t *testing.T) {
	doc := build(t, baseBuilder().Client(client()).Notes("observación"))
	inf := doc.FindElement("//infDPS")

	assert.Equal(t, []string{
		"tpAmb", "dhEmi", "verAplic", "serie", "nDPS", "dCompet", "tpEmit", "cLocEmi",
		"prest", "toma", "serv", "valores", "xOutInf",
	}, childTags(inf))
	assert.Equal(t, "2024-05-10T09:30:00-03:00", inf.SelectElement("dhEmi").Text())
	assert.Equal(t, "2024-05-10", inf.SelectElement("dCompet").Text())
}

func TestBuild_PrestadorEmisorSuprimeNombreYDireccion(t *testing.T) {
	doc := build(t, baseBuilder())
	prest := doc.FindElement("//prest")

	assert.Equal(t, []string{"CNPJ", "IM", "email", "regTrib"}, childTags(prest),
		"xNome y end deben omitirse aunque vengan informados cuando tpEmit=1")
	assert.Equal(t, "00000000000100", prest.SelectElement("CNPJ").Text())
	assert.Equal(t, []string{"opSimpNac", "regApTribSN", "regEspTrib"}, childTags(prest.SelectElement("regTrib")))
}

func TestBuild_PrestadorNoEmisorIncluyeNombreYDireccion(t *testing.T) {
	doc := build(t, baseBuilder().EmitterType(pkgnfse.EmitterClient).Client(client()))
	prest := doc.FindElement("//prest")

	assert.Equal(t, []string{"CNPJ", "IM", "xNome", "end", "email", "regTrib"}, childTags(prest))
}

func TestBuild_Tomador(t *testing.T) {
	doc := build(t, baseBuilder().Client(client()))
	toma := doc.FindElement("//toma")

	assert.Equal(t, []string{"CPF", "xNome", "xFant", "end", "fone"}, childTags(toma))
	assert.Equal(t, "12345678909", toma.SelectElement("CPF").Text())
	assert.Equal(t, "4832220000", toma.SelectElement("fone").Text())

	end := toma.SelectElement("end")
	assert.Equal(t, []string{"endNac", "xLgr", "nro", "xCpl", "xBairro"}, childTags(end))
	assert.Equal(t, []string{"cMun", "CEP"}, childTags(end.SelectElement("endNac")))
	assert.Equal(t, "88010000", end.FindElement("./endNac/CEP").Text())
	assert.Nil(t, toma.SelectElement("regTrib"), "regTrib es exclusivo del prestador")
}

func TestBuild_Intermediario(t *testing.T) {
	interm := entity.Party{TaxID: entity.CNPJ("11222333000181"), Name: "Intermediadora SA"}
	doc := build(t, baseBuilder().Client(client()).Intermediary(interm))

	assert.Equal(t, []string{"tpAmb", "dhEmi", "verAplic", "serie", "nDPS", "dCompet", "tpEmit", "cLocEmi",
		"prest", "toma", "interm", "serv", "valores"}, childTags(doc.FindElement("//infDPS")))
	assert.Equal(t, []string{"CNPJ", "xNome"}, childTags(doc.FindElement("//interm")))
}

func TestBuild_Servicio(t *testing.T) {
	doc := build(t, baseBuilder().Service(entity.Service{
		RenderingMunicipality: "4216909",
		TaxCode:               "01.07.01",
		Description:           "Suporte técnico",
		ComplementaryInfo:     "Contrato 12/2024",
	}))
	serv := doc.FindElement("//serv")

	assert.Equal(t, []string{"locPrest", "cServ", "infoCompl"}, childTags(serv))
	assert.Equal(t, "010701", serv.FindElement("./cServ/cTribNac").Text(), "cTribNac solo dígitos")
	assert.Equal(t, "4216909", serv.FindElement("./locPrest/cLocPrestacao").Text())
	assert.Equal(t, "Contrato 12/2024", serv.FindElement("./infoCompl/xInfComp").Text())
}

// ──────────────────────────────────────────────────────────────────────────────
// Valores
// ──────────────────────────────────────────────────────────────────────────────

func TestBuild_ValoresSimplesNacional(t *testing.T) {
	doc := build(t, baseBuilder())
	val := doc.FindElement("//valores")

	assert.Equal(t, "1000.00", val.FindElement("./vServPrest/vServ").Text())
	assert.Equal(t, "6.00", val.FindElement("./trib/totTrib/pTotTribSN").Text())
	assert.Nil(t, val.FindElement("./trib/totTrib/vTotTrib"), "pTotTribSN y vTotTrib son excluyentes")
	assert.Nil(t, val.FindElement("./vDescCondIncond"), "sin descuentos no se emite el bloque")

	assert.Equal(t, []string{"tribISSQN", "tpRetISSQN"}, childTags(val.FindElement("./trib/tribMun")))
	assert.Equal(t, "1", val.FindElement("./trib/tribMun/tribISSQN").Text())
	assert.Equal(t, "1", val.FindElement("./trib/tribMun/tpRetISSQN").Text())
	assert.Equal(t, "00", val.FindElement("./trib/tribFed/piscofins/CST").Text())
}

func TestBuild_ValoresTotalesAproximados(t *testing.T) {
	doc := build(t, baseBuilder().Values(entity.Values{
		ServiceValue:          decimal.RequireFromString("1500.5"),
		UnconditionalDiscount: decimal.RequireFromString("100"),
		ISSRate:               decimal.RequireFromString("2.5"),
		FederalTaxTotal:       decimal.RequireFromString("45.3"),
		StateTaxTotal:         decimal.Zero,
	}))
	val := doc.FindElement("//valores")

	assert.Equal(t, "1500.50", val.FindElement("./vServPrest/vServ").Text())
	assert.Equal(t, []string{"vDescIncond"}, childTags(val.FindElement("./vDescCondIncond")))
	assert.Equal(t, "100.00", val.FindElement("./vDescCondIncond/vDescIncond").Text())
	assert.Equal(t, "2.50", val.FindElement("./trib/tribMun/pAliq").Text())

	assert.Nil(t, val.FindElement("./trib/totTrib/pTotTribSN"))
	assert.Equal(t, []string{"vTotTribFed", "vTotTribEst", "vTotTribMun"}, childTags(val.FindElement("./trib/totTrib/vTotTrib")))
	assert.Equal(t, "45.30", val.FindElement("./trib/totTrib/vTotTrib/vTotTribFed").Text())
	assert.Equal(t, "0.00", val.FindElement("./trib/totTrib/vTotTrib/vTotTribEst").Text())
	// (1500.50 - 100.00) * 2.5 / 100 = 35.0125
	assert.Equal(t, "35.01", val.FindElement("./trib/totTrib/vTotTrib/vTotTribMun").Text())
}

func TestBuild_DefaultsTributariosConfigurables(t *testing.T) {
	decl, err := baseBuilder().Build()
	require.NoError(t, err)

	svc := nfse.NewXMLBuilderService(pkgnfse.TaxDefaults{ISSQNTreatment: pkgnfse.ISSQNExport, PISCOFINSCST: "08"})
	doc, err := svc.Build(decl)
	require.NoError(t, err)

	assert.Equal(t, "3", doc.FindElement("//tribISSQN").Text())
	assert.Equal(t, "1", doc.FindElement("//tpRetISSQN").Text(), "los campos no informados toman el valor por defecto")
	assert.Equal(t, "08", doc.FindElement("//CST").Text())
}

func TestBuild_TextoNormalizadoNFC(t *testing.T) {
	// "e" + acento combinante (NFD) debe emitirse como "é" precompuesto
	doc := build(t, baseBuilder().Service(entity.Service{TaxCode: "010101", Description: "Cafe\u0301 e servic\u0327os"}))
	assert.Equal(t, "Caf\u00e9 e servi\u00e7os", doc.FindElement("//xDescServ").Text())
}

func TestBuildBytes_SinIndentacion(t *testing.T) {
	decl, err := baseBuilder().Build()
	require.NoError(t, err)
	out, err := nfse.NewXMLBuilderService(pkgnfse.TaxDefaults{}).BuildBytes(decl)
	require.NoError(t, err)

	assert.Contains(t, string(out), `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.NotContains(t, string(out), "\n<infDPS", "la firma depende de bytes sin espacios entre elementos")
	assert.Contains(t, string(out), `<DPS xmlns="http://www.sped.fazenda.gov.br/nfse" versao="1.00"><infDPS Id=`)
}

// ──────────────────────────────────────────────────────────────────────────────
// Errores
// ──────────────────────────────────────────────────────────────────────────────

func TestBuild_DeclaracionNula(t *testing.T) {
	_, err := nfse.NewXMLBuilderService(pkgnfse.TaxDefaults{}).Build(nil)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestBuild_DeclaracionVacia(t *testing.T) {
	_, err := nfse.NewXMLBuilderService(pkgnfse.TaxDefaults{}).Build(&entity.Declaration{})

	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Fields, "dhEmi")
	assert.Contains(t, cfgErr.Fields, "cLocEmi")
}

func TestBuild_NumeroExcedeAncho(t *testing.T) {
	decl, err := baseBuilder().Number("1234567890123456").Build()
	require.NoError(t, err)

	_, err = nfse.NewXMLBuilderService(pkgnfse.TaxDefaults{}).Build(decl)
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{"nDPS"}, cfgErr.Fields)
}
