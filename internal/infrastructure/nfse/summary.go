package nfse

import (
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/nfse-emissor/internal/domain"
	"github.com/jhoicas/nfse-emissor/internal/domain/entity"
)

// ParseSummary lee una DPS firmada (o una NFS-e que la contenga) y extrae los datos de la
// representación gráfica.
func ParseSummary(xmlBytes []byte) (*entity.DocumentSummary, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlBytes); err != nil {
		return nil, fmt.Errorf("nfse: parsear XML: %w", err)
	}
	inf := doc.FindElement("//" + ElementInfDPS)
	if inf == nil {
		return nil, fmt.Errorf("nfse: %w: el XML no contiene infDPS", domain.ErrInvalidInput)
	}

	s := &entity.DocumentSummary{
		DocumentID:  inf.SelectAttrValue("Id", ""),
		Environment: text(inf, "tpAmb"),
		Series:      text(inf, "serie"),
		Number:      text(inf, "nDPS"),
		TaxCode:     text(inf, "serv/cServ/cTribNac"),
		Description: text(inf, "serv/cServ/xDescServ"),
		Notes:       text(inf, "xOutInf"),
	}
	s.EmittedAt, _ = time.Parse(layoutDateTime, text(inf, "dhEmi"))
	s.CompetenceDate, _ = time.Parse(layoutDate, text(inf, "dCompet"))

	s.ProviderTaxID = firstText(inf, "prest/CNPJ", "prest/CPF")
	s.ProviderName = text(inf, "prest/xNome")
	s.ClientTaxID = firstText(inf, "toma/CNPJ", "toma/CPF")
	s.ClientName = text(inf, "toma/xNome")

	s.ServiceValue = amount(inf, "valores/vServPrest/vServ")
	s.SimplesPercent = amount(inf, "valores/trib/totTrib/pTotTribSN")
	s.MunicipalTax = amount(inf, "valores/trib/totTrib/vTotTrib/vTotTribMun")

	// chaveAcesso solo existe cuando el XML es la NFS-e autorizada
	if infNFSe := doc.FindElement("//infNFSe"); infNFSe != nil {
		s.AccessKey = strings.TrimPrefix(infNFSe.SelectAttrValue("Id", ""), "NFS")
	}
	if dv := doc.FindElement("//Signature/SignedInfo/Reference/DigestValue"); dv != nil {
		s.SignatureDigest = strings.TrimSpace(dv.Text())
	}
	return s, nil
}

func text(el *etree.Element, path string) string {
	if c := el.FindElement("./" + path); c != nil {
		return strings.TrimSpace(c.Text())
	}
	return ""
}

func firstText(el *etree.Element, paths ...string) string {
	for _, p := range paths {
		if v := text(el, p); v != "" {
			return v
		}
	}
	return ""
}

func amount(el *etree.Element, path string) decimal.Decimal {
	d, err := decimal.NewFromString(text(el, path))
	if err != nil {
		return decimal.Zero
	}
	return d
}
