package nfse

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/jhoicas/nfse-emissor/internal/domain"
	pkgnfse "github.com/jhoicas/nfse-emissor/pkg/nfse"
)

// ── Constantes de entorno ──────────────────────────────────────────────────────

const (
	BaseURLProduction = "https://sefin.nfse.gov.br/SefinNacional"
	BaseURLRestricted = "https://sefin.producaorestrita.nfse.gov.br/SefinNacional"

	contentTypeJSON  = "application/json"
	maxResponseBytes = 4 << 20
	defaultTimeout   = 60 * time.Second
	defaultRetries   = 3
)

// BaseURLFor devuelve la URL de la Sefin Nacional para tpAmb (1 producción, 2 producción restringida).
func BaseURLFor(environment string) string {
	if environment == pkgnfse.EnvironmentProduction {
		return BaseURLProduction
	}
	return BaseURLRestricted
}

// ── Puerto (interfaz) ──────────────────────────────────────────────────────────

// SubmitResult resultado de la entrega al ADN.
type SubmitResult struct {
	Status    int    // status HTTP de la respuesta
	Accepted  bool   // true si el ADN registró el documento
	AccessKey string // chaveAcesso (50 dígitos)
	DPSID     string
	NFSeXML   []byte // NFS-e autorizada, ya descomprimida
	Alerts    []string
	Errors    string // mensajes de rechazo (puede ser vacío)
}

// Submitter puerto de salida hacia el ADN. La implementación concreta usa JSON sobre HTTPS con mTLS;
// para tests se puede inyectar un mock.
type Submitter interface {
	SubmitDPS(ctx context.Context, signedXML []byte) (*SubmitResult, error)
	SubmitEvent(ctx context.Context, accessKey string, signedXML []byte) (*SubmitResult, error)
	GetNFSe(ctx context.Context, accessKey string) (*SubmitResult, error)
}

// ── Implementación HTTP ────────────────────────────────────────────────────────

// ADNClient cliente de la API de la Sefin Nacional. Reintenta los 429 respetando Retry-After.
type ADNClient struct {
	baseURL    string
	timeout    time.Duration
	maxRetries int
	httpClient *http.Client
	codec      *EnvelopeCodec
	clock      clockwork.Clock
	log        zerolog.Logger
}

// ClientOption configura el ADNClient.
type ClientOption func(*ADNClient)

func WithBaseURL(url string) ClientOption        { return func(c *ADNClient) { c.baseURL = strings.TrimRight(url, "/") } }
func WithTimeout(d time.Duration) ClientOption   { return func(c *ADNClient) { c.timeout = d } }
func WithMaxRetries(n int) ClientOption          { return func(c *ADNClient) { c.maxRetries = n } }
func WithClock(clk clockwork.Clock) ClientOption { return func(c *ADNClient) { c.clock = clk } }

// WithHTTPClient reemplaza el cliente HTTP (tests con httptest). WithCertificate conserva su configuración TLS.
func WithHTTPClient(hc *http.Client) ClientOption { return func(c *ADNClient) { c.httpClient = hc } }

func WithClientLogger(l zerolog.Logger) ClientOption { return func(c *ADNClient) { c.log = l } }

// NewADNClient crea el cliente para el ambiente indicado. Sin certificado no hay mTLS; usar
// WithCertificate para obtener un cliente autenticado por llamada.
func NewADNClient(environment string, codec *EnvelopeCodec, opts ...ClientOption) *ADNClient {
	c := &ADNClient{
		baseURL:    BaseURLFor(environment),
		timeout:    defaultTimeout,
		maxRetries: defaultRetries,
		codec:      codec,
		clock:      clockwork.NewRealClock(),
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.codec == nil {
		c.codec = NewEnvelopeCodec()
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c
}

// WithCertificate devuelve una copia del cliente que se autentica con cert (mTLS).
func (c *ADNClient) WithCertificate(cert tls.Certificate) Submitter {
	cp := *c
	if tr, ok := c.httpClient.Transport.(*http.Transport); ok || c.httpClient.Transport == nil {
		var base *http.Transport
		if ok {
			base = tr.Clone()
		} else {
			base = http.DefaultTransport.(*http.Transport).Clone()
		}
		tlsCfg := base.TLSClientConfig
		if tlsCfg == nil {
			tlsCfg = &tls.Config{MinVersion: tls.VersionTLS12}
		} else {
			tlsCfg = tlsCfg.Clone()
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
		base.TLSClientConfig = tlsCfg
		cp.httpClient = &http.Client{Timeout: c.httpClient.Timeout, Transport: base}
	}
	return &cp
}

// SubmitDPS envía la DPS firmada (POST /nfse).
func (c *ADNClient) SubmitDPS(ctx context.Context, signedXML []byte) (*SubmitResult, error) {
	body, err := c.codec.DPSRequestBody(signedXML)
	if err != nil {
		return nil, err
	}
	raw, status, err := c.Send(ctx, http.MethodPost, "/nfse", contentTypeJSON, body)
	return c.result(raw, status, err)
}

// SubmitEvent envía el pedido de registro de evento (POST /nfse/{chave}/eventos).
func (c *ADNClient) SubmitEvent(ctx context.Context, accessKey string, signedXML []byte) (*SubmitResult, error) {
	body, err := c.codec.EventRequestBody(signedXML)
	if err != nil {
		return nil, err
	}
	raw, status, err := c.Send(ctx, http.MethodPost, "/nfse/"+accessKey+"/eventos", contentTypeJSON, body)
	return c.result(raw, status, err)
}

// GetNFSe consulta la NFS-e por su chave de acceso (GET /nfse/{chave}).
func (c *ADNClient) GetNFSe(ctx context.Context, accessKey string) (*SubmitResult, error) {
	raw, status, err := c.Send(ctx, http.MethodGet, "/nfse/"+accessKey, "", nil)
	return c.result(raw, status, err)
}

// Send ejecuta la llamada y devuelve el cuerpo de una respuesta 2xx. Un 429 se reintenta hasta
// maxRetries veces; cualquier otro status fuera de 2xx produce *domain.TransportError.
func (c *ADNClient) Send(ctx context.Context, method, path, contentType string, body []byte) ([]byte, int, error) {
	url := c.baseURL + path
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
		if err != nil {
			return nil, 0, &domain.TransportError{Err: fmt.Errorf("crear request: %w", err)}
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		req.Header.Set("Accept", contentTypeJSON)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, 0, &domain.TransportError{Err: fmt.Errorf("timeout o cancelación: %w", ctx.Err())}
			}
			return nil, 0, &domain.TransportError{Err: fmt.Errorf("llamada HTTP fallida: %w", err)}
		}
		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		resp.Body.Close()
		if err != nil {
			return nil, resp.StatusCode, &domain.TransportError{Status: resp.StatusCode, Err: fmt.Errorf("leer respuesta: %w", err)}
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < c.maxRetries {
			wait := retryAfter(resp.Header.Get("Retry-After"), attempt, c.clock.Now())
			c.log.Warn().Str("path", path).Int("attempt", attempt+1).Dur("wait", wait).Msg("ADN limitó la tasa de envíos, reintentando")
			select {
			case <-ctx.Done():
				return nil, resp.StatusCode, &domain.TransportError{Status: resp.StatusCode, Body: raw, Err: ctx.Err()}
			case <-c.clock.After(wait):
			}
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return raw, resp.StatusCode, &domain.TransportError{Status: resp.StatusCode, Body: raw}
		}
		c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("respuesta ADN")
		return raw, resp.StatusCode, nil
	}
}

// result convierte la respuesta en SubmitResult. Un 400/422 con lista de erros es un rechazo de
// negocio y no un error de transporte.
func (c *ADNClient) result(raw []byte, status int, err error) (*SubmitResult, error) {
	if err != nil {
		var te *domain.TransportError
		if !errors.As(err, &te) || (status != http.StatusBadRequest && status != http.StatusUnprocessableEntity) {
			return nil, err
		}
		resp, perr := c.codec.ParseResponse(raw)
		if perr != nil || len(resp.Errors) == 0 {
			return nil, err
		}
		return &SubmitResult{
			Status:    status,
			Accepted:  false,
			DPSID:     resp.DPSID,
			AccessKey: resp.AccessKey,
			Alerts:    messages(resp.Alerts),
			Errors:    resp.ErrorSummary(),
		}, nil
	}

	resp, err := c.codec.ParseResponse(raw)
	if err != nil {
		return nil, err
	}
	out := &SubmitResult{
		Status:    status,
		Accepted:  len(resp.Errors) == 0,
		AccessKey: resp.AccessKey,
		DPSID:     resp.DPSID,
		Alerts:    messages(resp.Alerts),
		Errors:    resp.ErrorSummary(),
	}
	if resp.NFSeXMLGZipB64 != "" {
		xml, err := c.codec.NFSeXML(resp)
		if err != nil {
			return nil, err
		}
		out.NFSeXML = xml
	}
	return out, nil
}

// retryAfter interpreta Retry-After (segundos o fecha HTTP). Sin cabecera: 1s, 2s, 4s...
func retryAfter(header string, attempt int, now time.Time) time.Duration {
	header = strings.TrimSpace(header)
	if secs, err := strconv.Atoi(header); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
		return 0
	}
	return time.Second << attempt
}

func messages(ms []Message) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.String())
	}
	return out
}

var _ Submitter = (*ADNClient)(nil)
