// Constantes de la firma XMLDSig envolvente (leiaute NFS-e nacional).

package signer

// Namespace y algoritmos XMLDSig. La firma se emite sin prefijo (xmlns por defecto).
const (
	NamespaceDS            = "http://www.w3.org/2000/09/xmldsig#"
	AlgExcC14N             = "http://www.w3.org/2001/10/xml-exc-c14n#"
	AlgExcC14NWithComments = "http://www.w3.org/2001/10/xml-exc-c14n#WithComments"
	AlgRSASHA256           = "http://www.w3.org/2001/04/xmldsig-more#rsa-sha256"
	AlgSHA256              = "http://www.w3.org/2001/04/xmlenc#sha256"
	TransformEnveloped     = "http://www.w3.org/2000/09/xmldsig#enveloped-signature"
)

// Atributo que identifica el elemento firmado (Reference URI="#<Id>").
const IDAttribute = "Id"
