// Package emission orquesta el ciclo de la NFS-e nacional:
//
//	Declaration → XML DPS → firma XMLDSig → gzip+Base64 → POST /nfse → registro
//
// Cada operación carga su propio KeyMaterial y lo cierra al terminar; el servicio no guarda
// estado mutable y puede atender solicitudes concurrentes.
package emission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/jhoicas/nfse-emissor/internal/domain"
	"github.com/jhoicas/nfse-emissor/internal/domain/entity"
	"github.com/jhoicas/nfse-emissor/internal/domain/repository"
	infranfse "github.com/jhoicas/nfse-emissor/internal/infrastructure/nfse"
	"github.com/jhoicas/nfse-emissor/internal/infrastructure/nfse/signer"
	pkgnfse "github.com/jhoicas/nfse-emissor/pkg/nfse"
)

// Config datos fijos del emisor.
type Config struct {
	Environment string // tpAmb de los eventos
	AppVersion  string // verAplic de los eventos
}

// Service orquestador de emisión, cancelación y consulta.
type Service struct {
	cfg     Config
	builder *infranfse.XMLBuilderService
	events  *infranfse.EventBuilderService
	signer  pkgnfse.Signer
	codec   *infranfse.EnvelopeCodec
	certs   CertificateSource
	gateway Gateway
	repo    repository.SubmissionRepository // nil = sin registro
	pdf     SummaryPDFGenerator
	clock   clockwork.Clock
	log     zerolog.Logger
}

// Option configura dependencias opcionales del servicio.
type Option func(*Service)

func WithRepository(r repository.SubmissionRepository) Option { return func(s *Service) { s.repo = r } }
func WithPDFGenerator(g SummaryPDFGenerator) Option           { return func(s *Service) { s.pdf = g } }
func WithClock(c clockwork.Clock) Option                      { return func(s *Service) { s.clock = c } }
func WithLogger(l zerolog.Logger) Option                      { return func(s *Service) { s.log = l } }

// NewService construye el orquestador con sus dependencias obligatorias.
func NewService(
	cfg Config,
	builder *infranfse.XMLBuilderService,
	events *infranfse.EventBuilderService,
	sig pkgnfse.Signer,
	codec *infranfse.EnvelopeCodec,
	certs CertificateSource,
	gateway Gateway,
	opts ...Option,
) *Service {
	s := &Service{
		cfg:     cfg,
		builder: builder,
		events:  events,
		signer:  sig,
		codec:   codec,
		certs:   certs,
		gateway: gateway,
		clock:   clockwork.NewRealClock(),
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Result resultado de una emisión o cancelación.
type Result struct {
	SubmissionID string
	DocumentID   string
	AccessKey    string
	Status       string
	Accepted     bool
	Alerts       []string
	Errors       string
	SignedXML    []byte
	NFSeXML      []byte
}

// Preview DPS firmada y empaquetada, sin envío.
type Preview struct {
	DocumentID string
	SignedXML  []byte
	Payload    string // dpsXmlGZipB64
	Digest     string
}

// CancelRequest datos del pedido de cancelación. Author vacío = se toma del certificado.
type CancelRequest struct {
	AccessKey  string
	ReasonCode string
	ReasonText string
	Author     entity.FiscalID
}

// Preview construye, firma y empaqueta la DPS sin enviarla al ADN.
func (s *Service) Preview(ctx context.Context, decl *entity.Declaration) (*Preview, error) {
	km, err := s.certs.Load(ctx)
	if err != nil {
		return nil, err
	}
	defer km.Close()

	id, signed, err := s.signDPS(decl, km)
	if err != nil {
		return nil, err
	}
	payload, err := s.codec.Encode(signed)
	if err != nil {
		return nil, err
	}
	sum, err := infranfse.ParseSummary(signed)
	if err != nil {
		return nil, err
	}
	return &Preview{DocumentID: id, SignedXML: signed, Payload: payload, Digest: sum.SignatureDigest}, nil
}

// Emit construye, firma, empaqueta y envía la DPS. Un rechazo de negocio del ADN no es error:
// se devuelve con Accepted=false y el detalle en Errors.
func (s *Service) Emit(ctx context.Context, decl *entity.Declaration) (*Result, error) {
	km, err := s.certs.Load(ctx)
	if err != nil {
		return nil, err
	}
	defer km.Close()

	id, signed, err := s.signDPS(decl, km)
	if err != nil {
		return nil, err
	}
	log := s.log.With().Str("dps", id).Logger()
	log.Info().Str("strategy", km.Strategy).Msg("DPS firmada")

	sub := &entity.Submission{
		Kind:         entity.SubmissionDPS,
		DocumentID:   id,
		Environment:  decl.Environment(),
		Status:       entity.SubmissionSigned,
		ServiceValue: decl.Values().ServiceValue,
		SignedXML:    string(signed),
	}
	if err := s.record(ctx, sub); err != nil {
		return nil, err
	}

	res, sendErr := s.gateway.WithCertificate(km.TLSCertificate()).SubmitDPS(ctx, signed)
	return s.finish(ctx, log, sub, signed, res, sendErr)
}

// Cancel registra el evento e101101 sobre una NFS-e ya autorizada.
func (s *Service) Cancel(ctx context.Context, req CancelRequest) (*Result, error) {
	km, err := s.certs.Load(ctx)
	if err != nil {
		return nil, err
	}
	defer km.Close()

	author := req.Author
	if author.IsZero() {
		if author, err = signer.AuthorFromCertificate(km.Certificate); err != nil {
			return nil, err
		}
	}
	doc, err := s.events.Build(entity.CancelEvent{
		Environment: s.cfg.Environment,
		AppVersion:  s.cfg.AppVersion,
		EmittedAt:   s.clock.Now(),
		AccessKey:   req.AccessKey,
		ReasonCode:  req.ReasonCode,
		ReasonText:  req.ReasonText,
		Author:      author,
	})
	if err != nil {
		return nil, err
	}
	id := doc.FindElement("//" + infranfse.ElementInfPedReg).SelectAttrValue(signer.IDAttribute, "")
	raw, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("nfse: serializar evento: %w", err)
	}
	signed, err := s.signer.Sign(raw, infranfse.ElementInfPedReg, km.PrivateKey, km.Certificate)
	if err != nil {
		return nil, err
	}
	log := s.log.With().Str("evento", id).Str("chave", req.AccessKey).Logger()
	log.Info().Msg("pedido de cancelación firmado")

	sub := &entity.Submission{
		Kind:        entity.SubmissionCancel,
		DocumentID:  id,
		AccessKey:   pkgnfse.OnlyDigits(req.AccessKey),
		Environment: s.cfg.Environment,
		Status:      entity.SubmissionSigned,
		SignedXML:   string(signed),
	}
	if err := s.record(ctx, sub); err != nil {
		return nil, err
	}

	res, sendErr := s.gateway.WithCertificate(km.TLSCertificate()).SubmitEvent(ctx, sub.AccessKey, signed)
	return s.finish(ctx, log, sub, signed, res, sendErr)
}

// Query consulta una NFS-e en el ADN por su chave de acesso.
func (s *Service) Query(ctx context.Context, accessKey string) (*infranfse.SubmitResult, error) {
	key := pkgnfse.OnlyDigits(accessKey)
	if len(key) != pkgnfse.AccessKeyLength {
		return nil, domain.NewConfigurationError("chNFSe")
	}
	km, err := s.certs.Load(ctx)
	if err != nil {
		return nil, err
	}
	defer km.Close()
	return s.gateway.WithCertificate(km.TLSCertificate()).GetNFSe(ctx, key)
}

// Submission devuelve el registro de un envío.
func (s *Service) Submission(ctx context.Context, id string) (*entity.Submission, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("emission: registro deshabilitado: %w", domain.ErrNotFound)
	}
	return s.repo.GetByID(ctx, id)
}

// SummaryPDF genera la representación gráfica de una DPS registrada.
func (s *Service) SummaryPDF(ctx context.Context, id string) ([]byte, string, error) {
	if s.pdf == nil {
		return nil, "", fmt.Errorf("emission: generador de PDF no configurado: %w", domain.ErrNotFound)
	}
	sub, err := s.Submission(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if sub.Kind != entity.SubmissionDPS {
		return nil, "", fmt.Errorf("emission: el envío %s no es una DPS: %w", id, domain.ErrInvalidInput)
	}
	summary, err := infranfse.ParseSummary([]byte(sub.SignedXML))
	if err != nil {
		return nil, "", err
	}
	if summary.AccessKey == "" {
		summary.AccessKey = sub.AccessKey
	}
	pdf, err := s.pdf.GenerateSummaryPDF(ctx, summary)
	if err != nil {
		return nil, "", fmt.Errorf("emission: generar PDF: %w", err)
	}
	return pdf, fmt.Sprintf("dps_%s.pdf", sub.DocumentID), nil
}

func (s *Service) signDPS(decl *entity.Declaration, km *signer.KeyMaterial) (string, []byte, error) {
	if decl == nil {
		return "", nil, domain.NewConfigurationError("DPS")
	}
	raw, err := s.builder.BuildBytes(decl)
	if err != nil {
		return "", nil, err
	}
	id, err := decl.Identifier()
	if err != nil {
		return "", nil, err
	}
	signed, err := s.signer.Sign(raw, infranfse.ElementInfDPS, km.PrivateKey, km.Certificate)
	if err != nil {
		return "", nil, err
	}
	return id, signed, nil
}

func (s *Service) record(ctx context.Context, sub *entity.Submission) error {
	if s.repo == nil {
		return nil
	}
	now := s.clock.Now()
	sub.CreatedAt, sub.UpdatedAt = now, now
	if err := s.repo.Create(ctx, sub); err != nil {
		return fmt.Errorf("emission: registrar envío: %w", err)
	}
	return nil
}

// finish vuelca la respuesta del ADN en el registro. Un fallo de persistencia en este punto
// solo se loguea: el documento ya fue entregado y el resultado se devuelve igual.
func (s *Service) finish(ctx context.Context, log zerolog.Logger, sub *entity.Submission, signed []byte,
	res *infranfse.SubmitResult, sendErr error) (*Result, error) {
	out := &Result{SubmissionID: sub.ID, DocumentID: sub.DocumentID, SignedXML: signed}

	switch {
	case sendErr != nil:
		sub.Status = entity.SubmissionError
		sub.Errors = sendErr.Error()
		var te *domain.TransportError
		if errors.As(sendErr, &te) {
			log.Error().Int("status", te.Status).Err(sendErr).Msg("envío al ADN fallido")
		} else {
			log.Error().Err(sendErr).Msg("envío al ADN fallido")
		}
	case res.Accepted:
		sub.Status = entity.SubmissionAccepted
		if res.AccessKey != "" {
			sub.AccessKey = res.AccessKey
		}
		sub.NFSeXML = string(res.NFSeXML)
		log.Info().Str("chave", sub.AccessKey).Int("alertas", len(res.Alerts)).Msg("aceptado por el ADN")
	default:
		sub.Status = entity.SubmissionRejected
		sub.Errors = res.Errors
		log.Warn().Str("erros", res.Errors).Msg("rechazado por el ADN")
	}

	if s.repo != nil {
		sub.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, sub); err != nil {
			log.Error().Err(err).Str("submission", sub.ID).Msg("no se pudo actualizar el registro")
		}
	}
	if sendErr != nil {
		return nil, sendErr
	}

	out.Status = sub.Status
	out.AccessKey = sub.AccessKey
	out.Accepted = res.Accepted
	out.Alerts = res.Alerts
	out.Errors = res.Errors
	out.NFSeXML = res.NFSeXML
	return out, nil
}

// Now expuesto para los handlers que fechan la DPS con el mismo reloj del servicio.
func (s *Service) Now() time.Time { return s.clock.Now() }
