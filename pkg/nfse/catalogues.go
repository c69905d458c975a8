// Package nfse contiene catálogos, identificadores y puertos del leiaute nacional de la
// NFS-e (DPS versión 1.00, Sefin Nacional / ADN).
package nfse

// Namespace del leiaute y versión del esquema.
const (
	Namespace     = "http://www.sped.fazenda.gov.br/nfse"
	SchemaVersion = "1.00"
)

// tpAmb - Identificación del ambiente.
const (
	EnvironmentProduction = "1"
	EnvironmentRestricted = "2" // producción restringida (pruebas)
)

// tpEmit - Emisor de la DPS.
const (
	EmitterProvider     = "1" // prestador
	EmitterClient       = "2" // tomador
	EmitterIntermediary = "3" // intermediario
)

// opSimpNac - Situación frente al Simples Nacional.
const (
	SimplesNotOptant = "1" // no optante
	SimplesMEI       = "2" // MEI
	SimplesMEEPP     = "3" // ME/EPP
)

// regApTribSN - Régimen de apuración de tributos del Simples Nacional.
const (
	SimplesApportionmentAll     = "1" // federales y municipal por el SN
	SimplesApportionmentFederal = "2" // federales por el SN, ISSQN por la NFS-e
	SimplesApportionmentNone    = "3" // federales y municipal por la NFS-e
)

// regEspTrib - Régimen especial de tributación.
const (
	SpecialRegimeNone = "0"
)

// tribISSQN - Tributación del ISSQN.
const (
	ISSQNTaxable      = "1" // operación tributable
	ISSQNImmune       = "2"
	ISSQNExport       = "3"
	ISSQNNonIncidence = "4"
)

// tpRetISSQN - Retención del ISSQN.
const (
	ISSQNNotWithheld        = "1"
	ISSQNWithheldByClient   = "2"
	ISSQNWithheldByIntermed = "3"
)

// CST PIS/COFINS por defecto ("00" - ninguno).
const PISCOFINSNone = "00"

// Evento de cancelación (e101101).
const (
	EventCancellationCode = "101101"
	EventCancellationDesc = "Cancelamento de NFS-e"
)

// cMotivo del evento de cancelación.
const (
	CancelReasonIssueError  = "1" // error en la emisión
	CancelReasonNotRendered = "2" // servicio no prestado
	CancelReasonOther       = "9"
)

// TaxDefaults valores por defecto de la tributación aplicados por el builder cuando el
// registro de valores no los trae. Se pasan explícitamente al builder para que sean auditables.
type TaxDefaults struct {
	ISSQNTreatment string // tribISSQN
	Withholding    string // tpRetISSQN
	PISCOFINSCST   string // tribFed/piscofins/CST
}

// DefaultTaxDefaults tributable, sin retención y CST "00".
func DefaultTaxDefaults() TaxDefaults {
	return TaxDefaults{
		ISSQNTreatment: ISSQNTaxable,
		Withholding:    ISSQNNotWithheld,
		PISCOFINSCST:   PISCOFINSNone,
	}
}

// ValidEnvironment informa si el código tpAmb es reconocido.
func ValidEnvironment(code string) bool {
	return code == EnvironmentProduction || code == EnvironmentRestricted
}

// ValidEmitterType informa si el código tpEmit es reconocido.
func ValidEmitterType(code string) bool {
	switch code {
	case EmitterProvider, EmitterClient, EmitterIntermediary:
		return true
	}
	return false
}
