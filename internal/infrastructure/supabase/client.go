// Package supabase implementa los puertos del backend sobre la API HTTP del backend alojado:
// auth (GoTrue) bajo /auth/v1 y datos (PostgREST) bajo /rest/v1.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jhoicas/heladeria/internal/domain"
	"github.com/jhoicas/heladeria/pkg/config"
	"github.com/jhoicas/heladeria/pkg/logger"
)

// Client cliente HTTP compartido por Auth y Data.
type Client struct {
	baseURL    string
	anonKey    string
	jwtSecret  string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient construye el cliente. Timeout 0 deja el valor por defecto (15 s).
func NewClient(cfg config.SupabaseConfig, log *logger.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		anonKey:    cfg.AnonKey,
		jwtSecret:  cfg.JWTSecret,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.Component("supabase"),
	}, nil
}

// request petición a la API. Token vacío usa la anon key como bearer.
type request struct {
	method  string
	path    string
	query   url.Values
	headers map[string]string
	token   string
	body    any
}

// do envía req y decodifica la respuesta JSON en out (si no es nil).
func (c *Client) do(ctx context.Context, req request, out any) error {
	var body io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("supabase: serializar request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return fmt.Errorf("supabase: crear request: %w", err)
	}
	token := req.token
	if token == "" {
		token = c.anonKey
	}
	httpReq.Header.Set("apikey", c.anonKey)
	httpReq.Header.Set("Authorization", "Bearer "+token)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Debug().Err(err).Str("method", req.method).Str("path", req.path).Msg("petición fallida")
		return fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: leer respuesta: %v", domain.ErrTransport, err)
	}
	c.log.Trace().Str("method", req.method).Str("path", req.path).Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).Msg("supabase")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: respuesta no es JSON válido: %v", domain.ErrTransport, err)
	}
	return nil
}
