package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound        = errors.New("recurso no encontrado")
	ErrValidation      = errors.New("datos inválidos")
	ErrTransport       = errors.New("no se pudo contactar al servidor")
	ErrRemoteRejection = errors.New("el servidor rechazó la operación")
	ErrDuplicate       = errors.New("recurso duplicado")
	ErrUnauthorized    = errors.New("no autorizado")
	ErrForbidden       = errors.New("acceso denegado")
	ErrNotConfirmed    = errors.New("la operación requiere confirmación")
	ErrSaveInFlight    = errors.New("ya hay un guardado en curso")
	ErrNoChange        = errors.New("no hay cambios para guardar")
)

// ValidationError error de validación local (antes de enviar cualquier petición).
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// Is permite errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid construye un ValidationError.
func Invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// RemoteError rechazo del almacén remoto (constraint, excepción de un procedimiento, etc.).
type RemoteError struct {
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Is permite errors.Is(err, ErrRemoteRejection).
func (e *RemoteError) Is(target error) bool { return target == ErrRemoteRejection }

// UserMessage convierte cualquier error en el texto que se muestra al usuario.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Message
	}
	switch {
	case errors.Is(err, ErrTransport):
		return ErrTransport.Error()
	case errors.Is(err, ErrUnauthorized):
		return "sesión inválida o expirada"
	}
	return err.Error()
}
