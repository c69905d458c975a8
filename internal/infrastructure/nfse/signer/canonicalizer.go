package signer

import (
	"github.com/beevik/etree"
	dsig "github.com/russellhaering/goxmldsig"
)

// Canonicalizer serializa un elemento en Exclusive XML Canonicalization 1.0, con o sin comentarios.
// El elemento se trata como sub-árbol separado del documento: los namespaces declarados en sus
// ancestros se copian al sub-árbol antes de canonicalizar, y el documento original no se modifica.
type Canonicalizer struct {
	inner     dsig.Canonicalizer
	algorithm string
}

// NewExclusiveCanonicalizer exc-c14n sin comentarios (digest de la Reference).
func NewExclusiveCanonicalizer() *Canonicalizer {
	return &Canonicalizer{
		inner:     dsig.MakeC14N10ExclusiveCanonicalizerWithPrefixList(""),
		algorithm: AlgExcC14N,
	}
}

// NewExclusiveWithCommentsCanonicalizer exc-c14n con comentarios (SignedInfo).
func NewExclusiveWithCommentsCanonicalizer() *Canonicalizer {
	return &Canonicalizer{
		inner:     dsig.MakeC14N10ExclusiveWithCommentsCanonicalizerWithPrefixList(""),
		algorithm: AlgExcC14NWithComments,
	}
}

// Algorithm URI del algoritmo.
func (c *Canonicalizer) Algorithm() string { return c.algorithm }

// Canonicalize devuelve los bytes canónicos de el. Misma entrada, mismos bytes.
func (c *Canonicalizer) Canonicalize(el *etree.Element) ([]byte, error) {
	return c.inner.Canonicalize(Detach(el))
}

// Detach copia el y le agrega las declaraciones de namespace heredadas de sus ancestros que
// el sub-árbol no redeclara. Gana la declaración del ancestro más cercano.
func Detach(el *etree.Element) *etree.Element {
	cp := el.Copy()
	declared := make(map[string]bool)
	for _, a := range cp.Attr {
		if isNamespaceDecl(a) {
			declared[a.FullKey()] = true
		}
	}
	for p := el.Parent(); p != nil; p = p.Parent() {
		for _, a := range p.Attr {
			if !isNamespaceDecl(a) || declared[a.FullKey()] {
				continue
			}
			declared[a.FullKey()] = true
			cp.Attr = append(cp.Attr, etree.Attr{Space: a.Space, Key: a.Key, Value: a.Value})
		}
	}
	return cp
}

func isNamespaceDecl(a etree.Attr) bool {
	return (a.Space == "" && a.Key == "xmlns") || a.Space == "xmlns"
}

// removeEnveloped aplica la transformación enveloped-signature: quita los Signature XMLDSig
// contenidos en el sub-árbol.
func removeEnveloped(el *etree.Element) *etree.Element {
	for _, child := range el.ChildElements() {
		if child.Tag == "Signature" && (child.NamespaceURI() == NamespaceDS || child.SelectAttrValue("xmlns", "") == NamespaceDS) {
			el.RemoveChild(child)
			continue
		}
		removeEnveloped(child)
	}
	return el
}
