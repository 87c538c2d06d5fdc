package listing

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/heladeria/internal/domain"
	"github.com/jhoicas/heladeria/internal/domain/entity"
)

// DefaultNotificationTTL duración de las notificaciones de venta.
const DefaultNotificationTTL = 3 * time.Second

// NotificationKind tipo de notificación.
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
)

// Notification aviso transitorio.
type Notification struct {
	Kind      NotificationKind
	Message   string
	ExpiresAt time.Time
}

// ProductStore operaciones de productos que usa el controlador.
type ProductStore interface {
	List(ctx context.Context) ([]entity.Product, error)
	Sell(ctx context.Context, productID int64) (string, error)
}

// ProductController lista de solo lectura con acción de venta.
type ProductController struct {
	*List[int64, entity.Product]
	store ProductStore
	ttl   time.Duration
	now   func() time.Time

	noteMu sync.Mutex
	note   *Notification
}

// NewProductController construye el controlador; ttl <= 0 usa DefaultNotificationTTL.
func NewProductController(store ProductStore, ttl time.Duration) *ProductController {
	if ttl <= 0 {
		ttl = DefaultNotificationTTL
	}
	return &ProductController{
		List:  NewList[int64, entity.Product](store.List),
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
}

// SetClock reemplaza el reloj usado para la expiración de notificaciones.
func (c *ProductController) SetClock(now func() time.Time) {
	c.noteMu.Lock()
	defer c.noteMu.Unlock()
	c.now = now
}

// TTL duración de las notificaciones.
func (c *ProductController) TTL() time.Duration { return c.ttl }

// Sell invoca la venta. Con éxito notifica el mensaje devuelto y recarga la lista completa;
// con error notifica el error y no recarga.
func (c *ProductController) Sell(ctx context.Context, productID int64) error {
	msg, err := c.store.Sell(ctx, productID)
	if err != nil {
		c.notify(NotifyError, domain.UserMessage(err))
		return err
	}
	c.notify(NotifySuccess, msg)
	if err := c.Load(ctx); err != nil {
		return err
	}
	return nil
}

// Notification aviso vigente; false si no hay o ya expiró.
func (c *ProductController) Notification() (Notification, bool) {
	c.noteMu.Lock()
	defer c.noteMu.Unlock()
	if c.note == nil {
		return Notification{}, false
	}
	if !c.now().Before(c.note.ExpiresAt) {
		c.note = nil
		return Notification{}, false
	}
	return *c.note, true
}

// Remaining tiempo que le queda al aviso vigente según el reloj del controlador.
func (c *ProductController) Remaining() (time.Duration, bool) {
	c.noteMu.Lock()
	defer c.noteMu.Unlock()
	if c.note == nil {
		return 0, false
	}
	left := c.note.ExpiresAt.Sub(c.now())
	if left <= 0 {
		return 0, false
	}
	return left, true
}

func (c *ProductController) notify(kind NotificationKind, msg string) {
	c.noteMu.Lock()
	defer c.noteMu.Unlock()
	c.note = &Notification{Kind: kind, Message: msg, ExpiresAt: c.now().Add(c.ttl)}
}
