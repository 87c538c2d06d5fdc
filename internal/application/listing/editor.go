package listing

import (
	"context"
	"fmt"

	"github.com/jhoicas/heladeria/internal/domain"
)

// FormMode dimensión de edición.
type FormMode int

const (
	NoForm FormMode = iota
	AddForm
	EditForm
)

// FormState formulario abierto. ID solo aplica con EditForm.
type FormState[K comparable] struct {
	Mode FormMode
	ID   K
}

// Store almacén de una entidad editable. D es el borrador que captura el formulario.
type Store[K comparable, T Keyed[K], D any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, draft D) (T, error)
	Update(ctx context.Context, draft D) (T, error)
	Delete(ctx context.Context, id K) error
}

// Editor lista con alta, edición y baja. A lo sumo un formulario abierto a la vez.
type Editor[K comparable, T Keyed[K], D any] struct {
	*List[K, T]
	store    Store[K, T, D]
	validate func(D) error

	form      FormState[K]
	formErr   error
	pending   *K
	actionErr error
}

// NewEditor construye el editor. validate se ejecuta antes de enviar cualquier petición.
func NewEditor[K comparable, T Keyed[K], D any](store Store[K, T, D], validate func(D) error) *Editor[K, T, D] {
	if validate == nil {
		validate = func(D) error { return nil }
	}
	return &Editor[K, T, D]{
		List:     NewList[K, T](store.List),
		store:    store,
		validate: validate,
	}
}

// Form formulario abierto.
func (e *Editor[K, T, D]) Form() FormState[K] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.form
}

// FormErr error del último envío del formulario.
func (e *Editor[K, T, D]) FormErr() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.formErr
}

// ActionErr error de la última baja.
func (e *Editor[K, T, D]) ActionErr() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.actionErr
}

// OpenAdd abre el formulario de alta y cierra el de edición.
func (e *Editor[K, T, D]) OpenAdd() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.form = FormState[K]{Mode: AddForm}
	e.formErr = nil
}

// OpenEdit abre la edición de id y cierra el alta.
func (e *Editor[K, T, D]) OpenEdit(id K) (T, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	item, ok := e.items.Get(id)
	if !ok {
		return item, fmt.Errorf("%w: %v", domain.ErrNotFound, id)
	}
	e.form = FormState[K]{Mode: EditForm, ID: id}
	e.formErr = nil
	return item, nil
}

// CloseForm cancela el formulario abierto.
func (e *Editor[K, T, D]) CloseForm() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.form = FormState[K]{}
	e.formErr = nil
}

// Create valida y envía el alta. Con éxito agrega la entidad devuelta sin recargar y
// cierra el formulario; con error lo deja abierto y la colección intacta.
func (e *Editor[K, T, D]) Create(ctx context.Context, draft D) (T, error) {
	var zero T
	if err := e.validate(draft); err != nil {
		e.setFormErr(err)
		return zero, err
	}
	item, err := e.store.Create(ctx, draft)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.formErr = err
		return zero, err
	}
	e.items.Append(item)
	if e.form.Mode == AddForm {
		e.form = FormState[K]{}
	}
	e.formErr = nil
	return item, nil
}

// Update valida y envía la edición. Con éxito sustituye la entrada por clave.
func (e *Editor[K, T, D]) Update(ctx context.Context, draft D) (T, error) {
	var zero T
	if err := e.validate(draft); err != nil {
		e.setFormErr(err)
		return zero, err
	}
	item, err := e.store.Update(ctx, draft)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.formErr = err
		return zero, err
	}
	e.items.ReplaceByID(item)
	if e.form.Mode == EditForm && e.form.ID == item.Key() {
		e.form = FormState[K]{}
	}
	e.formErr = nil
	return item, nil
}

// RequestDelete marca id para borrar; no se envía nada hasta ConfirmDelete.
func (e *Editor[K, T, D]) RequestDelete(id K) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = &id
	e.actionErr = nil
}

// PendingDelete clave esperando confirmación.
func (e *Editor[K, T, D]) PendingDelete() (K, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending == nil {
		var zero K
		return zero, false
	}
	return *e.pending, true
}

// CancelDelete descarta la baja pendiente.
func (e *Editor[K, T, D]) CancelDelete() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = nil
}

// ConfirmDelete envía la baja pendiente. La entrada se quita solo si el almacén confirma.
func (e *Editor[K, T, D]) ConfirmDelete(ctx context.Context) error {
	e.mu.Lock()
	if e.pending == nil {
		e.mu.Unlock()
		return domain.ErrNotConfirmed
	}
	id := *e.pending
	e.pending = nil
	e.mu.Unlock()

	err := e.store.Delete(ctx, id)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.actionErr = err
		return err
	}
	e.items.RemoveByID(id)
	e.actionErr = nil
	return nil
}

func (e *Editor[K, T, D]) setFormErr(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.formErr = err
}
