package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WarningResponse advertencia no fatal junto a una respuesta exitosa.
type WarningResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
