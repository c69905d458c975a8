package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`          // campos de la DPS faltantes o inválidos
	Status  int      `json:"upstream_status,omitempty"` // status HTTP devuelto por el ADN
}
