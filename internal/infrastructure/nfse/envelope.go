package nfse

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/jhoicas/nfse-emissor/internal/domain"
)

// maxDecompressed límite del XML descomprimido (una NFS-e ocupa pocos KB).
const maxDecompressed = 16 << 20

// DPSRequest cuerpo JSON de POST /nfse.
type DPSRequest struct {
	DPSXMLGZipB64 string `json:"dpsXmlGZipB64"`
}

// EventRequest cuerpo JSON de POST /nfse/{chave}/eventos.
type EventRequest struct {
	PedidoRegistroEventoXMLGZipB64 string `json:"pedidoRegistroEventoXmlGZipB64"`
}

// Message alerta o error devuelto por el ADN.
type Message struct {
	Code        string `json:"codigo"`
	Description string `json:"descricao"`
	Complement  string `json:"complemento,omitempty"`
}

func (m Message) String() string {
	s := m.Code + ": " + m.Description
	if m.Complement != "" {
		s += " (" + m.Complement + ")"
	}
	return s
}

// ADNResponse respuesta de la Sefin Nacional a la DPS o al evento.
type ADNResponse struct {
	AccessKey       string    `json:"chaveAcesso,omitempty"`
	DPSID           string    `json:"idDps,omitempty"`
	NFSeXMLGZipB64  string    `json:"nfseXmlGZipB64,omitempty"`
	EventXMLGZipB64 string    `json:"eventoXmlGZipB64,omitempty"`
	Alerts          []Message `json:"alertas,omitempty"`
	Errors          []Message `json:"erros,omitempty"`
}

// ErrorSummary une los mensajes de error en una sola línea.
func (r *ADNResponse) ErrorSummary() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, "; ")
}

// EnvelopeCodec comprime en gzip y codifica en Base64 los XML firmados para el transporte JSON.
type EnvelopeCodec struct {
	level int
}

// NewEnvelopeCodec crea el codec con el nivel de compresión por defecto.
func NewEnvelopeCodec() *EnvelopeCodec {
	return &EnvelopeCodec{level: gzip.DefaultCompression}
}

// Encode gzip + Base64 estándar (con padding) de los bytes exactos del XML firmado.
func (c *EnvelopeCodec) Encode(xmlBytes []byte) (string, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, c.level)
	if err != nil {
		return "", &domain.EnvelopeError{Op: "compress", Err: err}
	}
	if _, err := zw.Write(xmlBytes); err != nil {
		zw.Close()
		return "", &domain.EnvelopeError{Op: "compress", Err: err}
	}
	if err := zw.Close(); err != nil {
		return "", &domain.EnvelopeError{Op: "compress", Err: err}
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode inverso de Encode: Decode(Encode(x)) == x byte a byte.
func (c *EnvelopeCodec) Decode(payload string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, &domain.EnvelopeError{Op: "base64", Err: err}
	}
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, &domain.EnvelopeError{Op: "decompress", Err: err}
	}
	defer zr.Close()
	out, err := io.ReadAll(io.LimitReader(zr, maxDecompressed+1))
	if err != nil {
		return nil, &domain.EnvelopeError{Op: "decompress", Err: err}
	}
	if len(out) > maxDecompressed {
		return nil, &domain.EnvelopeError{Op: "decompress", Err: fmt.Errorf("contenido mayor a %d bytes", maxDecompressed)}
	}
	return out, nil
}

// DPSRequestBody arma el JSON {"dpsXmlGZipB64": ...}.
func (c *EnvelopeCodec) DPSRequestBody(signedXML []byte) ([]byte, error) {
	payload, err := c.Encode(signedXML)
	if err != nil {
		return nil, err
	}
	return json.Marshal(DPSRequest{DPSXMLGZipB64: payload})
}

// EventRequestBody arma el JSON {"pedidoRegistroEventoXmlGZipB64": ...}.
func (c *EnvelopeCodec) EventRequestBody(signedXML []byte) ([]byte, error) {
	payload, err := c.Encode(signedXML)
	if err != nil {
		return nil, err
	}
	return json.Marshal(EventRequest{PedidoRegistroEventoXMLGZipB64: payload})
}

// ParseResponse decodifica el JSON de respuesta del ADN.
func (c *EnvelopeCodec) ParseResponse(body []byte) (*ADNResponse, error) {
	var resp ADNResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &domain.EnvelopeError{Op: "json", Err: err}
	}
	return &resp, nil
}

// NFSeXML descomprime el XML de la NFS-e autorizada, si vino en la respuesta.
func (c *EnvelopeCodec) NFSeXML(resp *ADNResponse) ([]byte, error) {
	if resp == nil || resp.NFSeXMLGZipB64 == "" {
		return nil, &domain.EnvelopeError{Op: "decompress", Err: errors.New("respuesta sin nfseXmlGZipB64")}
	}
	return c.Decode(resp.NFSeXMLGZipB64)
}
