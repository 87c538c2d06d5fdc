package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/jhoicas/heladeria/internal/application/ports"
	"github.com/jhoicas/heladeria/internal/domain/entity"
)

var _ ports.DataGateway = (*Data)(nil)

const (
	headerAccept    = "Accept"
	headerPrefer    = "Prefer"
	singleObject    = "application/vnd.pgrst.object+json"
	returnRepresent = "return=representation"
)

// TokenSource entrega el access token con el que se firman las peticiones de datos.
type TokenSource interface {
	AccessToken() string
}

// Data DataGateway sobre PostgREST. Las peticiones llevan el token de la sesión vigente,
// de modo que las políticas de fila del backend se aplican al usuario conectado.
type Data struct {
	c      *Client
	tokens TokenSource
}

// NewData construye el gateway. tokens nil firma siempre con la anon key.
func NewData(c *Client, tokens TokenSource) *Data {
	return &Data{c: c, tokens: tokens}
}

func (d *Data) token() string {
	if d.tokens == nil {
		return ""
	}
	return d.tokens.AccessToken()
}

func (d *Data) QueryRecord(ctx context.Context, table string, filter ports.Filter) (entity.Record, error) {
	q := url.Values{"select": {"*"}}
	for _, k := range sortedKeys(filter) {
		q.Set(k, eq(filter[k]))
	}
	var rec entity.Record
	err := d.c.do(ctx, request{
		method:  http.MethodGet,
		path:    restPath(table),
		query:   q,
		token:   d.token(),
		headers: map[string]string{headerAccept: singleObject},
	}, &rec)
	return rec, err
}

func (d *Data) InsertRecord(ctx context.Context, table string, fields entity.Record) (entity.Record, error) {
	var rec entity.Record
	err := d.c.do(ctx, request{
		method:  http.MethodPost,
		path:    restPath(table),
		query:   url.Values{"select": {"*"}},
		token:   d.token(),
		body:    fields,
		headers: map[string]string{headerAccept: singleObject, headerPrefer: returnRepresent},
	}, &rec)
	return rec, err
}

func (d *Data) UpdateRecord(ctx context.Context, table string, id any, fields entity.Record) (entity.Record, error) {
	var rec entity.Record
	err := d.c.do(ctx, request{
		method:  http.MethodPatch,
		path:    restPath(table),
		query:   url.Values{"select": {"*"}, entity.FieldID: {eq(id)}},
		token:   d.token(),
		body:    fields,
		headers: map[string]string{headerAccept: singleObject, headerPrefer: returnRepresent},
	}, &rec)
	return rec, err
}

func (d *Data) DeleteRecord(ctx context.Context, table string, id any) error {
	return d.c.do(ctx, request{
		method: http.MethodDelete,
		path:   restPath(table),
		query:  url.Values{entity.FieldID: {eq(id)}},
		token:  d.token(),
	}, nil)
}

func (d *Data) QueryCollection(ctx context.Context, source string, columns ...string) ([]entity.Record, error) {
	sel := "*"
	if len(columns) > 0 {
		sel = strings.Join(columns, ",")
	}
	var recs []entity.Record
	err := d.c.do(ctx, request{
		method: http.MethodGet,
		path:   restPath(source),
		query:  url.Values{"select": {sel}},
		token:  d.token(),
	}, &recs)
	return recs, err
}

func (d *Data) InvokeProcedure(ctx context.Context, name string, params map[string]any) (any, error) {
	if params == nil {
		params = map[string]any{}
	}
	var out any
	err := d.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/rest/v1/rpc/" + url.PathEscape(name),
		token:  d.token(),
		body:   params,
	}, &out)
	return out, err
}

func restPath(table string) string {
	return "/rest/v1/" + url.PathEscape(table)
}

// eq filtro de igualdad en la sintaxis de PostgREST.
func eq(v any) string {
	return "eq." + fmt.Sprint(v)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
