// Package nfse: interfaz para la firma XML-DSig de la DPS y de los pedidos de evento.

package nfse

import (
	"crypto"
	"crypto/x509"
)

// Signer firma un XML e inyecta el nodo Signature como hermano del elemento designado.
type Signer interface {
	// Sign toma el XML sin firma, el nombre del elemento que lleva el atributo Id (infDPS o
	// infPedReg), la llave privada y su certificado, y devuelve el XML firmado.
	Sign(xmlBytes []byte, element string, key crypto.Signer, cert *x509.Certificate) ([]byte, error)
}
