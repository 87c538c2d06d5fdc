package supabase

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jhoicas/heladeria/internal/domain"
)

// apiError unión de los formatos de error de PostgREST y GoTrue.
type apiError struct {
	Code             any    `json:"code"`
	Message          string `json:"message"`
	Details          string `json:"details"`
	Hint             string `json:"hint"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	ErrorCode        string `json:"error_code"`
}

func (e apiError) code() string {
	switch c := e.Code.(type) {
	case string:
		if c != "" {
			return c
		}
	case float64:
		// GoTrue repite el status HTTP en code; el código útil está en error_code
	}
	if e.ErrorCode != "" {
		return e.ErrorCode
	}
	return e.Error
}

func (e apiError) message() string {
	for _, m := range []string{e.Message, e.ErrorDescription, e.Msg, e.Error} {
		if m != "" {
			return m
		}
	}
	return ""
}

// decodeError traduce una respuesta no 2xx a la taxonomía de dominio.
func decodeError(status int, raw []byte) error {
	var body apiError
	_ = json.Unmarshal(raw, &body)
	code, msg := body.code(), body.message()
	if msg == "" {
		msg = http.StatusText(status)
	}
	remote := &domain.RemoteError{Code: code, Message: msg}

	switch {
	case code == "PGRST116":
		return fmt.Errorf("%w: %s", domain.ErrNotFound, msg)
	case status == http.StatusUnauthorized:
		return fmt.Errorf("%w: %w: %s", domain.ErrTransport, domain.ErrUnauthorized, msg)
	case status >= 500:
		return fmt.Errorf("%w: %s (HTTP %d)", domain.ErrTransport, msg, status)
	case code == "23505" || status == http.StatusConflict:
		return fmt.Errorf("%w: %w", domain.ErrDuplicate, remote)
	}
	return remote
}
