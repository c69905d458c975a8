package entity

import "time"

// CancelEvent pedido de registro del evento de cancelación (e101101) de una NFS-e.
// Author queda vacío para tomarlo del certificado de firma.
type CancelEvent struct {
	Environment string
	AppVersion  string
	EmittedAt   time.Time
	AccessKey   string // chNFSe, 50 dígitos
	ReasonCode  string // cMotivo
	ReasonText  string // xMotivo
	Author      FiscalID
}
