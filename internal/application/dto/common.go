package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MessageResponse respuesta con un mensaje para mostrar (ej. resultado de una venta).
type MessageResponse struct {
	Message string `json:"message"`
}
