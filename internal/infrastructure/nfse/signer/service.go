// Servicio de firma XMLDSig envolvente para la DPS y los pedidos de evento de la NFS-e nacional.
// La <Signature> se agrega como último hijo del padre del elemento firmado (infDPS → DPS).

package signer

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/jhoicas/nfse-emissor/internal/domain"
	"github.com/jhoicas/nfse-emissor/pkg/nfse"
)

// DigitalSignatureService firma con RSA-SHA256. Digest sobre exc-c14n sin comentarios del
// elemento; SignedInfo y Transform de la Reference declaran exc-c14n con comentarios.
// La DPS no lleva comentarios, así que ambas formas canónicas del elemento coinciden.
type DigitalSignatureService struct {
	digestCanon     *Canonicalizer
	signedInfoCanon *Canonicalizer
}

// NewDigitalSignatureService crea el servicio.
func NewDigitalSignatureService() *DigitalSignatureService {
	return &DigitalSignatureService{
		digestCanon:     NewExclusiveCanonicalizer(),
		signedInfoCanon: NewExclusiveWithCommentsCanonicalizer(),
	}
}

// Sign implementa pkg/nfse.Signer.
func (s *DigitalSignatureService) Sign(xmlBytes []byte, element string, key crypto.Signer, cert *x509.Certificate) ([]byte, error) {
	if len(xmlBytes) == 0 {
		return nil, &domain.SignatureError{Op: "parse", Err: errors.New("XML vacío")}
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlBytes); err != nil {
		return nil, &domain.SignatureError{Op: "parse", Err: err}
	}
	target, err := locate(doc, element)
	if err != nil {
		return nil, err
	}
	parent := target.Parent()
	if parent == nil || parent.Tag == "" {
		return nil, &domain.SignatureError{Op: "locate", Err: fmt.Errorf("<%s> no tiene elemento padre", element)}
	}
	sig, err := s.SignElement(target, key, cert)
	if err != nil {
		return nil, err
	}
	parent.AddChild(sig)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, &domain.SignatureError{Op: "serialize", Err: err}
	}
	return out, nil
}

// SignElement construye el nodo <Signature> para target sin insertarlo en el documento.
func (s *DigitalSignatureService) SignElement(target *etree.Element, key crypto.Signer, cert *x509.Certificate) (*etree.Element, error) {
	if key == nil || cert == nil {
		return nil, &domain.SignatureError{Op: "key", Err: errors.New("llave privada o certificado ausente")}
	}
	if _, ok := key.Public().(*rsa.PublicKey); !ok {
		return nil, &domain.SignatureError{Op: "key", Err: fmt.Errorf("se requiere llave RSA, se recibió %T", key.Public())}
	}
	id := target.SelectAttrValue(IDAttribute, "")
	if id == "" {
		return nil, &domain.SignatureError{Op: "locate", Err: fmt.Errorf("<%s> sin atributo Id", target.Tag)}
	}

	// 1) Digest del elemento (Reference URI="#Id")
	digest, err := s.Digest(target)
	if err != nil {
		return nil, err
	}

	// 2) SignedInfo
	sig := etree.NewElement("Signature")
	sig.CreateAttr("xmlns", NamespaceDS)
	signedInfo := sig.CreateElement("SignedInfo")
	signedInfo.CreateElement("CanonicalizationMethod").CreateAttr("Algorithm", AlgExcC14NWithComments)
	signedInfo.CreateElement("SignatureMethod").CreateAttr("Algorithm", AlgRSASHA256)
	ref := signedInfo.CreateElement("Reference")
	ref.CreateAttr("URI", "#"+id)
	transforms := ref.CreateElement("Transforms")
	transforms.CreateElement("Transform").CreateAttr("Algorithm", TransformEnveloped)
	transforms.CreateElement("Transform").CreateAttr("Algorithm", AlgExcC14NWithComments)
	ref.CreateElement("DigestMethod").CreateAttr("Algorithm", AlgSHA256)
	ref.CreateElement("DigestValue").SetText(digest)

	// 3) SignatureValue sobre SignedInfo canónico
	canonicalSignedInfo, err := s.signedInfoCanon.Canonicalize(signedInfo)
	if err != nil {
		return nil, &domain.SignatureError{Op: "canonicalize", Err: err}
	}
	hash := sha256.Sum256(canonicalSignedInfo)
	value, err := key.Sign(rand.Reader, hash[:], crypto.SHA256)
	if err != nil {
		return nil, &domain.SignatureError{Op: "sign", Err: err}
	}
	sig.CreateElement("SignatureValue").SetText(base64.StdEncoding.EncodeToString(value))

	// 4) KeyInfo
	x509Data := sig.CreateElement("KeyInfo").CreateElement("X509Data")
	x509Data.CreateElement("X509Certificate").SetText(base64.StdEncoding.EncodeToString(cert.Raw))
	return sig, nil
}

// Digest devuelve el SHA-256 en Base64 de la forma canónica (sin comentarios) de el.
func (s *DigitalSignatureService) Digest(el *etree.Element) (string, error) {
	canonical, err := s.digestCanon.Canonicalize(removeEnveloped(Detach(el)))
	if err != nil {
		return "", &domain.SignatureError{Op: "canonicalize", Err: err}
	}
	sum := sha256.Sum256(canonical)
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}

// Verify comprueba la firma de element: recalcula el digest, valida SignatureValue con la llave
// pública del X509Certificate embebido y devuelve ese certificado.
func (s *DigitalSignatureService) Verify(xmlBytes []byte, element string) (*x509.Certificate, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlBytes); err != nil {
		return nil, &domain.SignatureError{Op: "parse", Err: err}
	}
	target, err := locate(doc, element)
	if err != nil {
		return nil, err
	}
	id := target.SelectAttrValue(IDAttribute, "")
	sig := findSignature(target.Parent(), id)
	if sig == nil {
		return nil, &domain.SignatureError{Op: "verify", Err: fmt.Errorf("no hay Signature para #%s", id)}
	}

	signedInfo := sig.FindElement("./SignedInfo")
	digestEl := sig.FindElement("./SignedInfo/Reference/DigestValue")
	valueEl := sig.FindElement("./SignatureValue")
	if signedInfo == nil || digestEl == nil || valueEl == nil {
		return nil, &domain.SignatureError{Op: "verify", Err: errors.New("Signature incompleta")}
	}
	want := strings.TrimSpace(digestEl.Text())
	got, err := s.Digest(target)
	if err != nil {
		return nil, err
	}
	if got != want {
		return nil, &domain.SignatureError{Op: "verify", Err: errors.New("DigestValue no coincide")}
	}

	certEl := sig.FindElement("./KeyInfo/X509Data/X509Certificate")
	if certEl == nil {
		return nil, &domain.SignatureError{Op: "verify", Err: errors.New("KeyInfo sin X509Certificate")}
	}
	der, err := base64.StdEncoding.DecodeString(compact(certEl.Text()))
	if err != nil {
		return nil, &domain.SignatureError{Op: "verify", Err: err}
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, &domain.SignatureError{Op: "verify", Err: err}
	}
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, &domain.SignatureError{Op: "verify", Err: errors.New("certificado sin llave RSA")}
	}

	sigValue, err := base64.StdEncoding.DecodeString(compact(valueEl.Text()))
	if err != nil {
		return nil, &domain.SignatureError{Op: "verify", Err: err}
	}
	canonicalSignedInfo, err := s.signedInfoCanon.Canonicalize(signedInfo)
	if err != nil {
		return nil, &domain.SignatureError{Op: "canonicalize", Err: err}
	}
	hash := sha256.Sum256(canonicalSignedInfo)
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, hash[:], sigValue); err != nil {
		return nil, &domain.SignatureError{Op: "verify", Err: err}
	}
	return cert, nil
}

func locate(doc *etree.Document, element string) (*etree.Element, error) {
	target := doc.FindElement("//" + element)
	if target == nil {
		return nil, &domain.SignatureError{Op: "locate", Err: fmt.Errorf("elemento <%s> no encontrado", element)}
	}
	if target.SelectAttrValue(IDAttribute, "") == "" {
		return nil, &domain.SignatureError{Op: "locate", Err: fmt.Errorf("<%s> sin atributo Id", element)}
	}
	return target, nil
}

func findSignature(parent *etree.Element, id string) *etree.Element {
	if parent == nil {
		return nil
	}
	for _, child := range parent.ChildElements() {
		if child.Tag != "Signature" {
			continue
		}
		ref := child.FindElement("./SignedInfo/Reference")
		if ref != nil && ref.SelectAttrValue("URI", "") == "#"+id {
			return child
		}
	}
	return nil
}

func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}

var _ nfse.Signer = (*DigitalSignatureService)(nil)
