package nfse

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/jhoicas/nfse-emissor/internal/domain"
	"github.com/jhoicas/nfse-emissor/internal/domain/entity"
	pkgnfse "github.com/jhoicas/nfse-emissor/pkg/nfse"
)

// Elementos del pedido de registro de evento.
const (
	ElementPedRegEvento = "pedRegEvento"
	ElementInfPedReg    = "infPedReg"
)

// EventBuilderService construye el pedido de registro del evento de cancelación (e101101).
type EventBuilderService struct{}

// NewEventBuilderService crea el builder; no guarda estado entre pedidos.
func NewEventBuilderService() *EventBuilderService { return &EventBuilderService{} }

// Build genera <pedRegEvento><infPedReg Id="PRE...">...</infPedReg></pedRegEvento>.
// El autor debe venir informado; el orquestador lo toma del certificado cuando el llamador no lo envía.
func (s *EventBuilderService) Build(ev entity.CancelEvent) (*etree.Document, error) {
	var missing []string
	if !pkgnfse.ValidEnvironment(ev.Environment) {
		missing = append(missing, "tpAmb")
	}
	if strings.TrimSpace(ev.AppVersion) == "" {
		missing = append(missing, "verAplic")
	}
	if ev.EmittedAt.IsZero() {
		missing = append(missing, "dhEvento")
	}
	if !ev.Author.WellFormed() {
		missing = append(missing, "CNPJAutor/CPFAutor")
	}
	key := pkgnfse.OnlyDigits(ev.AccessKey)
	if len(key) != pkgnfse.AccessKeyLength {
		missing = append(missing, "chNFSe")
	}
	if strings.TrimSpace(ev.ReasonCode) == "" {
		missing = append(missing, "cMotivo")
	}
	if strings.TrimSpace(ev.ReasonText) == "" {
		missing = append(missing, "xMotivo")
	}
	if len(missing) > 0 {
		return nil, domain.NewConfigurationError(missing...)
	}

	id, err := pkgnfse.EventIdentifier(key, ev.EmittedAt)
	if err != nil {
		return nil, configurationFromField(err)
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", xmlDeclaration)
	root := doc.CreateElement(ElementPedRegEvento)
	root.CreateAttr("xmlns", pkgnfse.Namespace)
	root.CreateAttr("versao", pkgnfse.SchemaVersion)

	inf := root.CreateElement(ElementInfPedReg)
	inf.CreateAttr("Id", id)
	addText(inf, "tpAmb", ev.Environment)
	addText(inf, "verAplic", ev.AppVersion)
	addText(inf, "dhEvento", formatEventTime(ev.EmittedAt))
	addText(inf, ev.Author.Tag()+"Autor", ev.Author.Digits())
	addText(inf, "chNFSe", key)

	e := inf.CreateElement("e" + pkgnfse.EventCancellationCode)
	addText(e, "xDesc", pkgnfse.EventCancellationDesc)
	addText(e, "cMotivo", ev.ReasonCode)
	addText(e, "xMotivo", ev.ReasonText)
	return doc, nil
}

// BuildBytes serializa el pedido sin indentación.
func (s *EventBuilderService) BuildBytes(ev entity.CancelEvent) ([]byte, error) {
	doc, err := s.Build(ev)
	if err != nil {
		return nil, err
	}
	return doc.WriteToBytes()
}
