// Package nfse: identificadores de la DPS y de los eventos según el leiaute nacional de la NFS-e.
// Todos los componentes numéricos se completan con ceros a la izquierda; nunca se truncan.

package nfse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Longitudes fijas de los identificadores.
const (
	DPSIDLength       = 45
	EventIDLength     = 59
	AccessKeyLength   = 50
	municipalityWidth = 7
	taxIDWidth        = 14
	seriesWidth       = 5
	numberWidth       = 15
	eventTailWidth    = 6

	PrefixDPS   = "DPS"
	PrefixEvent = "PRE"
)

// Tipo de inscripción federal embutido en el Id de la DPS.
const (
	TaxIDTypeCPF  = "1"
	TaxIDTypeCNPJ = "2"
)

// ErrInvalidField se devuelve (envuelto en FieldError) cuando un componente no cabe o no es numérico.
var ErrInvalidField = errors.New("campo inválido")

// FieldError identifica el componente que no pudo formatearse.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("nfse: %s: %s", e.Field, e.Reason)
}

func (e *FieldError) Is(target error) bool { return target == ErrInvalidField }

// DPSIdentifierParts componentes decodificados de un Id de DPS.
type DPSIdentifierParts struct {
	Municipality string // 7 dígitos
	TaxIDType    string // "1" CPF, "2" CNPJ
	TaxID        string // 14 dígitos (CPF con ceros a la izquierda)
	Series       string // 5 dígitos
	Number       string // 15 dígitos
}

// DPSIdentifier arma el Id de la DPS:
//
//	"DPS" + cMun(7) + tipoInsc(1) + inscFederal(14) + serie(5) + nDPS(15)
//
// taxID debe tener 11 (CPF) o 14 (CNPJ) dígitos; el tipo se deduce de la longitud.
func DPSIdentifier(municipality, taxID, series, number string) (string, error) {
	digits := OnlyDigits(taxID)
	var taxType string
	switch len(digits) {
	case 11:
		taxType = TaxIDTypeCPF
	case 14:
		taxType = TaxIDTypeCNPJ
	default:
		return "", &FieldError{Field: "inscricaoFederal", Reason: fmt.Sprintf("se esperaban 11 o 14 dígitos, se recibieron %d", len(digits))}
	}

	var sb strings.Builder
	sb.Grow(DPSIDLength)
	sb.WriteString(PrefixDPS)
	for _, part := range []struct {
		field, value string
		width        int
	}{
		{"cLocEmi", municipality, municipalityWidth},
		{"tipoInscricao", taxType, 1},
		{"inscricaoFederal", digits, taxIDWidth},
		{"serie", series, seriesWidth},
		{"nDPS", number, numberWidth},
	} {
		padded, err := PadDigits(part.field, part.value, part.width)
		if err != nil {
			return "", err
		}
		sb.WriteString(padded)
	}
	return sb.String(), nil
}

// ParseDPSIdentifier decodifica un Id de DPS en sus componentes.
func ParseDPSIdentifier(id string) (DPSIdentifierParts, error) {
	if len(id) != DPSIDLength {
		return DPSIdentifierParts{}, &FieldError{Field: "Id", Reason: fmt.Sprintf("longitud %d, se esperaban %d", len(id), DPSIDLength)}
	}
	if !strings.HasPrefix(id, PrefixDPS) {
		return DPSIdentifierParts{}, &FieldError{Field: "Id", Reason: "prefijo distinto de " + PrefixDPS}
	}
	body := id[len(PrefixDPS):]
	if !isDigits(body) {
		return DPSIdentifierParts{}, &FieldError{Field: "Id", Reason: "contiene caracteres no numéricos"}
	}
	p := DPSIdentifierParts{}
	off := 0
	next := func(w int) string {
		s := body[off : off+w]
		off += w
		return s
	}
	p.Municipality = next(municipalityWidth)
	p.TaxIDType = next(1)
	p.TaxID = next(taxIDWidth)
	p.Series = next(seriesWidth)
	p.Number = next(numberWidth)
	if p.TaxIDType != TaxIDTypeCPF && p.TaxIDType != TaxIDTypeCNPJ {
		return DPSIdentifierParts{}, &FieldError{Field: "tipoInscricao", Reason: "debe ser 1 o 2"}
	}
	return p, nil
}

// EventIdentifier arma el Id del pedido de registro de evento:
//
//	"PRE" + chaveAcesso(50) + sufijo(6)
//
// El sufijo es el instante en segundos módulo 10^6, de modo que cada intento genera un Id nuevo.
func EventIdentifier(accessKey string, at time.Time) (string, error) {
	if len(accessKey) != AccessKeyLength || !isDigits(accessKey) {
		return "", &FieldError{Field: "chNFSe", Reason: fmt.Sprintf("la chave de acesso debe tener %d dígitos", AccessKeyLength)}
	}
	tail, err := PadDigits("sufixo", strconv.FormatInt(at.Unix()%1_000_000, 10), eventTailWidth)
	if err != nil {
		return "", err
	}
	return PrefixEvent + accessKey + tail, nil
}

// PadDigits completa value con ceros a la izquierda hasta width.
// Falla si value no es numérico o si, sin ceros a la izquierda, es más largo que width.
func PadDigits(field, value string, width int) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" || !isDigits(v) {
		return "", &FieldError{Field: field, Reason: fmt.Sprintf("valor no numérico %q", value)}
	}
	trimmed := strings.TrimLeft(v, "0")
	if len(trimmed) > width {
		return "", &FieldError{Field: field, Reason: fmt.Sprintf("%q excede %d dígitos", value, width)}
	}
	return strings.Repeat("0", width-len(trimmed)) + trimmed, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
