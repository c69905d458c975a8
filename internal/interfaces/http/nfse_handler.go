package http

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/nfse-emissor/internal/application/dto"
	"github.com/jhoicas/nfse-emissor/internal/application/emission"
	"github.com/jhoicas/nfse-emissor/internal/domain"
	"github.com/jhoicas/nfse-emissor/internal/domain/entity"
	infranfse "github.com/jhoicas/nfse-emissor/internal/infrastructure/nfse"
	pkgnfse "github.com/jhoicas/nfse-emissor/pkg/nfse"
)

// EmissionService operaciones del orquestador usadas por el handler.
type EmissionService interface {
	Emit(ctx context.Context, decl *entity.Declaration) (*emission.Result, error)
	Preview(ctx context.Context, decl *entity.Declaration) (*emission.Preview, error)
	Cancel(ctx context.Context, req emission.CancelRequest) (*emission.Result, error)
	Query(ctx context.Context, accessKey string) (*infranfse.SubmitResult, error)
	Submission(ctx context.Context, id string) (*entity.Submission, error)
	SummaryPDF(ctx context.Context, id string) ([]byte, string, error)
	Now() time.Time
}

// NFSeHandler maneja las peticiones HTTP de la NFS-e (protegido).
type NFSeHandler struct {
	svc         EmissionService
	environment string
	appVersion  string
}

// NewNFSeHandler construye el handler. environment y appVersion completan las DPS recibidas.
func NewNFSeHandler(svc EmissionService, environment, appVersion string) *NFSeHandler {
	return &NFSeHandler{svc: svc, environment: environment, appVersion: appVersion}
}

// Emit godoc
// @Summary      Emitir DPS
// @Description  Construye, firma y envía la DPS al ADN. Un rechazo del ADN devuelve 200 con accepted=false.
// @Tags         nfse
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.EmitDPSRequest  true  "Datos de la DPS"
// @Success      201   {object}  dto.SubmitResponse
// @Success      200   {object}  dto.SubmitResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/nfse/dps [post]
func (h *NFSeHandler) Emit(c *fiber.Ctx) error {
	decl, err := h.declaration(c)
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.svc.Emit(c.UserContext(), decl)
	if err != nil {
		return writeError(c, err)
	}
	status := fiber.StatusCreated
	if !res.Accepted {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(submitResponse(res))
}

// Preview godoc
// @Summary      Previsualizar DPS firmada
// @Tags         nfse
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.EmitDPSRequest  true  "Datos de la DPS"
// @Success      200   {object}  dto.PreviewResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/nfse/dps/preview [post]
func (h *NFSeHandler) Preview(c *fiber.Ctx) error {
	decl, err := h.declaration(c)
	if err != nil {
		return writeError(c, err)
	}
	p, err := h.svc.Preview(c.UserContext(), decl)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.PreviewResponse{
		DocumentID: p.DocumentID,
		Digest:     p.Digest,
		Payload:    p.Payload,
		SignedXML:  string(p.SignedXML),
	})
}

// Cancel godoc
// @Summary      Cancelar NFS-e
// @Tags         nfse
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        chave  path      string             true  "Chave de acesso (50 dígitos)"
// @Param        body   body      dto.CancelRequest  true  "Motivo"
// @Success      201    {object}  dto.SubmitResponse
// @Failure      422    {object}  dto.ErrorResponse
// @Router       /api/nfse/{chave}/cancelamento [post]
func (h *NFSeHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	author := in.Author()
	if taxID := GetTaxID(c); taxID != "" && !author.IsZero() && author.Digits() != taxID {
		return writeError(c, fmt.Errorf("el token no autoriza al autor %s: %w", author.Digits(), domain.ErrUnauthorized))
	}
	res, err := h.svc.Cancel(c.UserContext(), emission.CancelRequest{
		AccessKey:  c.Params("chave"),
		ReasonCode: in.ReasonCode,
		ReasonText: in.ReasonText,
		Author:     author,
	})
	if err != nil {
		return writeError(c, err)
	}
	status := fiber.StatusCreated
	if !res.Accepted {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(submitResponse(res))
}

// Query godoc
// @Summary      Consultar NFS-e en el ADN
// @Tags         nfse
// @Produce      json
// @Security     BearerAuth
// @Param        chave  path      string  true  "Chave de acesso (50 dígitos)"
// @Success      200    {object}  dto.QueryResponse
// @Failure      502    {object}  dto.ErrorResponse
// @Router       /api/nfse/{chave} [get]
func (h *NFSeHandler) Query(c *fiber.Ctx) error {
	res, err := h.svc.Query(c.UserContext(), c.Params("chave"))
	if err != nil {
		return writeError(c, err)
	}
	out := dto.QueryResponse{
		AccessKey: pkgnfse.OnlyDigits(c.Params("chave")),
		Found:     res.Accepted,
		Alerts:    res.Alerts,
		Errors:    res.Errors,
		NFSeXML:   string(res.NFSeXML),
	}
	if !res.Accepted {
		return c.Status(fiber.StatusNotFound).JSON(out)
	}
	return c.JSON(out)
}

// GetSubmission godoc
// @Summary      Obtener registro de envío
// @Tags         nfse
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "ID del envío"
// @Success      200  {object}  dto.SubmissionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/nfse/submissions/{id} [get]
func (h *NFSeHandler) GetSubmission(c *fiber.Ctx) error {
	sub, err := h.svc.Submission(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewSubmissionResponse(sub))
}

// SummaryPDF godoc
// @Summary      Descargar resumen PDF de la DPS
// @Tags         nfse
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del envío"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/nfse/submissions/{id}/pdf [get]
func (h *NFSeHandler) SummaryPDF(c *fiber.Ctx) error {
	pdf, filename, err := h.svc.SummaryPDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(pdf)
}

// declaration parsea el body y verifica que el prestador sea el autorizado por el token.
func (h *NFSeHandler) declaration(c *fiber.Ctx) (*entity.Declaration, error) {
	var in dto.EmitDPSRequest
	if err := c.BodyParser(&in); err != nil {
		return nil, fmt.Errorf("cuerpo inválido: %v: %w", err, domain.ErrInvalidInput)
	}
	decl, err := in.ToDeclaration(dto.DeclarationDefaults{
		Environment: h.environment,
		AppVersion:  h.appVersion,
		Now:         h.svc.Now(),
	})
	if err != nil {
		return nil, err
	}
	if taxID := GetTaxID(c); taxID != "" && decl.Provider().TaxID.Digits() != taxID {
		return nil, fmt.Errorf("el token no autoriza al prestador %s: %w", decl.Provider().TaxID.Digits(), domain.ErrUnauthorized)
	}
	return decl, nil
}

func submitResponse(r *emission.Result) dto.SubmitResponse {
	return dto.SubmitResponse{
		SubmissionID: r.SubmissionID,
		DocumentID:   r.DocumentID,
		AccessKey:    r.AccessKey,
		Status:       r.Status,
		Accepted:     r.Accepted,
		Alerts:       r.Alerts,
		Errors:       r.Errors,
		NFSeXML:      string(r.NFSeXML),
	}
}
