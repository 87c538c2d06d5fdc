package ports

import (
	"context"

	"github.com/jhoicas/heladeria/internal/domain/entity"
)

// SessionEventKind tipo de cambio de sesión notificado por el servicio de auth.
type SessionEventKind string

const (
	SessionInitial   SessionEventKind = "initial"
	SessionSignedIn  SessionEventKind = "signed_in"
	SessionSignedOut SessionEventKind = "signed_out"
	SessionRefreshed SessionEventKind = "token_refreshed"
)

// SessionEvent notificación de cambio de sesión. Session es nil tras un cierre de sesión.
type SessionEvent struct {
	Kind    SessionEventKind
	Session *entity.Session
}

// AuthGateway canal de sesión del backend alojado.
// La aplicación observa la sesión; solo la modifica mediante SignIn/SignOut explícitos.
type AuthGateway interface {
	// CurrentSession devuelve la sesión vigente sin bloquear (nil si no hay).
	CurrentSession() *entity.Session
	// SubscribeSessionChanges registra handler para cada cambio; la función devuelta cancela la suscripción.
	SubscribeSessionChanges(handler func(SessionEvent)) (unsubscribe func())
	SignIn(ctx context.Context, email, password string) (*entity.Session, error)
	// SignUp registra una identidad nueva y devuelve su id. No cambia la sesión actual.
	SignUp(ctx context.Context, email, password string) (userID string, err error)
	SignOut(ctx context.Context) error
}

// Filter condición de igualdad por columnas para QueryRecord.
type Filter map[string]any

// DataGateway canal de peticiones del backend alojado. Tablas, vistas y procedimientos
// se identifican por su nombre en el esquema remoto.
type DataGateway interface {
	// QueryRecord devuelve la única fila que cumple filter, o domain.ErrNotFound.
	QueryRecord(ctx context.Context, table string, filter Filter) (entity.Record, error)
	// InsertRecord inserta y devuelve la fila persistida (con id asignado por el almacén).
	InsertRecord(ctx context.Context, table string, fields entity.Record) (entity.Record, error)
	// UpdateRecord actualiza la fila id y la devuelve; domain.ErrNotFound si no existe.
	UpdateRecord(ctx context.Context, table string, id any, fields entity.Record) (entity.Record, error)
	DeleteRecord(ctx context.Context, table string, id any) error
	// QueryCollection devuelve todas las filas de una tabla o vista (columns vacío = todas).
	QueryCollection(ctx context.Context, source string, columns ...string) ([]entity.Record, error)
	// InvokeProcedure llama a un procedimiento remoto y devuelve su resultado decodificado.
	InvokeProcedure(ctx context.Context, name string, params map[string]any) (any, error)
}
