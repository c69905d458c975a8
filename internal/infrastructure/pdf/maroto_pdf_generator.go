// Package pdf genera el resumen gráfico (estilo DANFSe) de una DPS firmada.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: DPS serie/número + ambiente │ Emisión / Competencia │
//	│  PRESTADOR: CNPJ/CPF + nombre                               │
//	│  TOMADOR: CNPJ/CPF + nombre                                 │
//	│  SERVICIO: cTribNac + descripción                           │
//	│  VALORES: vServ / tributos                                  │
//	│  FOOTER: Id DPS + chave de acesso + QR + DigestValue        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jhoicas/nfse-emissor/internal/domain/entity"
	pkgnfse "github.com/jhoicas/nfse-emissor/pkg/nfse"
)

// QRBaseURL consulta pública de la NFS-e por chave de acesso.
const QRBaseURL = "https://www.nfse.gov.br/ConsultaPublica/?tpc=1&chave="

var (
	colorPrimary = &props.Color{Red: 0, Green: 92, Blue: 59}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 30, Blue: 30}
)

var brl = message.NewPrinter(language.BrazilianPortuguese)

// MarotoPDFGenerator implementa emission.SummaryPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateSummaryPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateSummaryPDF(_ context.Context, s *entity.DocumentSummary) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("pdf: resumen vacío")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("DPS "+s.DocumentID, true).
		WithAuthor(nonEmpty(s.ProviderName, s.ProviderTaxID), true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(s))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partyRow("PRESTADOR DO SERVIÇO", s.ProviderTaxID, s.ProviderName))
	if s.ClientTaxID != "" {
		m.AddRows(partyRow("TOMADOR DO SERVIÇO", s.ClientTaxID, s.ClientName))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(serviceRows(s)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(valuesRow(s))
	m.AddRows(line.NewRow(3))
	m.AddRows(footerRows(s)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(s *entity.DocumentSummary) core.Row {
	env := "PRODUÇÃO"
	if s.Environment != pkgnfse.EnvironmentProduction {
		env = "PRODUÇÃO RESTRITA - SEM VALOR FISCAL"
	}
	envColor := colorGray
	if s.Environment != pkgnfse.EnvironmentProduction {
		envColor = colorAlert
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New("DECLARAÇÃO DE PRESTAÇÃO DE SERVIÇO", props.Text{
				Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1,
			}),
			text.New(env, props.Text{Style: fontstyle.Bold, Size: 8, Top: 9, Color: envColor}),
		),
		col.New(5).Add(
			text.New(fmt.Sprintf("Série %s  Nº %s", s.Series, s.Number), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 1,
			}),
			text.New("Emissão: "+formatDateTime(s), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
			text.New("Competência: "+formatDate(s), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

func partyRow(title, taxID, name string) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(name, "-"), props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(taxIDLabel(taxID)+": "+FormatTaxID(taxID), props.Text{Size: 8, Top: 11, Color: colorGray}),
		),
	)
}

func serviceRows(s *entity.DocumentSummary) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("SERVIÇO PRESTADO  -  cTribNac "+s.TaxCode, props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
		row.New(12).Add(col.New(12).Add(
			text.New(s.Description, props.Text{Size: 8, Top: 1}),
		)),
	}
	if s.Notes != "" {
		rows = append(rows, row.New(8).Add(col.New(12).Add(
			text.New("Informações complementares: "+s.Notes, props.Text{Size: 7, Top: 1, Color: colorGray}),
		)))
	}
	return rows
}

func valuesRow(s *entity.DocumentSummary) core.Row {
	label := func(v string) core.Component {
		return text.New(v, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(v string) core.Component {
		return text.New(v, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	taxLabel, taxValue := "Tributos municipais:", FormatBRL(s.MunicipalTax)
	if s.SimplesPercent.IsPositive() {
		taxLabel, taxValue = "Tributos Simples Nacional:", FormatPercent(s.SimplesPercent)
	}
	return row.New(12).Add(
		col.New(6),
		col.New(3).Add(label("Valor do serviço:"), label(taxLabel)),
		col.New(3).Add(value(FormatBRL(s.ServiceValue)), value(taxValue)),
	)
}

func footerRows(s *entity.DocumentSummary) []core.Row {
	rows := []core.Row{
		row.New(5).Add(col.New(12).Add(
			text.New("Id: "+s.DocumentID, props.Text{Size: 7, Top: 1, Color: colorGray}),
		)),
	}
	if s.SignatureDigest != "" {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New("DigestValue: "+s.SignatureDigest, props.Text{Size: 6.5, Top: 1, Color: colorGray}),
		)))
	}
	if s.AccessKey == "" {
		return append(rows, row.New(10).Add(col.New(12).Add(
			text.New("Documento ainda não autorizado pelo ADN", props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Center, Color: colorAlert, Top: 2,
			}),
		)))
	}
	return append(rows, row.New(40).Add(
		col.New(4).Add(code.NewQr(QRBaseURL+s.AccessKey, props.Rect{Percent: 95, Center: true})),
		col.New(8).Add(
			text.New("Chave de acesso", props.Text{Style: fontstyle.Bold, Size: 8, Top: 4, Left: 3}),
			text.New(groupDigits(s.AccessKey, 4), props.Text{Size: 8, Top: 10, Left: 3}),
			text.New("Consulte a autenticidade no portal nacional da NFS-e.", props.Text{
				Size: 7, Top: 18, Left: 3, Color: colorGray,
			}),
		),
	))
}

// FormatBRL formatea un monto en reales con separadores pt-BR ("R$ 1.234,50").
func FormatBRL(d decimal.Decimal) string {
	return brl.Sprintf("R$ %v", number.Decimal(d.InexactFloat64(), number.Scale(2)))
}

// FormatPercent "6,00%".
func FormatPercent(d decimal.Decimal) string {
	return brl.Sprintf("%v%%", number.Decimal(d.InexactFloat64(), number.Scale(2)))
}

// FormatTaxID aplica la máscara de CNPJ (14 dígitos) o CPF (11 dígitos).
func FormatTaxID(digits string) string {
	switch len(digits) {
	case 14:
		return digits[0:2] + "." + digits[2:5] + "." + digits[5:8] + "/" + digits[8:12] + "-" + digits[12:]
	case 11:
		return digits[0:3] + "." + digits[3:6] + "." + digits[6:9] + "-" + digits[9:]
	}
	return nonEmpty(digits, "-")
}

func taxIDLabel(digits string) string {
	if len(digits) == 11 {
		return "CPF"
	}
	return "CNPJ"
}

func formatDateTime(s *entity.DocumentSummary) string {
	if s.EmittedAt.IsZero() {
		return "-"
	}
	return s.EmittedAt.Format("02/01/2006 15:04:05")
}

func formatDate(s *entity.DocumentSummary) string {
	if s.CompetenceDate.IsZero() {
		return "-"
	}
	return s.CompetenceDate.Format("02/01/2006")
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// groupDigits separa s en bloques de n caracteres para facilitar la lectura.
func groupDigits(s string, n int) string {
	out := make([]byte, 0, len(s)+len(s)/n)
	for i := 0; i < len(s); i++ {
		if i > 0 && i%n == 0 {
			out = append(out, ' ')
		}
		out = append(out, s[i])
	}
	return string(out)
}
