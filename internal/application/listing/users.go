package listing

import (
	"context"

	"github.com/jhoicas/heladeria/internal/application/usecase"
	"github.com/jhoicas/heladeria/internal/domain"
	"github.com/jhoicas/heladeria/internal/domain/entity"
)

// UserStore operaciones de usuarios que usa el controlador.
type UserStore interface {
	List(ctx context.Context) ([]entity.User, error)
	UpdateRole(ctx context.Context, id string, role entity.Role) (entity.User, error)
	CreateUser(ctx context.Context, in usecase.CreateUserInput) (entity.User, error)
}

// UserController lista de usuarios con cambio de rol en dos pasos (preparar y guardar)
// y alta de usuarios.
type UserController struct {
	*List[string, entity.User]
	store UserStore

	staged map[string]entity.Role
	saving map[string]bool

	creating  bool
	createErr error
	createMsg string
}

// NewUserController construye el controlador.
func NewUserController(store UserStore) *UserController {
	return &UserController{
		List:   NewList[string, entity.User](store.List),
		store:  store,
		staged: map[string]entity.Role{},
		saving: map[string]bool{},
	}
}

// StageRole prepara role para id. Elegir de nuevo el rol guardado descarta la preparación.
func (c *UserController) StageRole(id string, role entity.Role) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.items.Get(id)
	if ok && u.Role == role {
		delete(c.staged, id)
		return
	}
	c.staged[id] = role
}

// StagedRole rol visible en el selector: el preparado o, si no hay, el guardado.
func (c *UserController) StagedRole(id string) entity.Role {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.staged[id]; ok {
		return r
	}
	u, _ := c.items.Get(id)
	return u.Role
}

// Staged indica si hay un rol preparado para id.
func (c *UserController) Staged(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.staged[id]
	return ok
}

// Saving indica si hay un guardado en curso para id.
func (c *UserController) Saving(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saving[id]
}

// CanSave habilita "Guardar": hay cambio preparado y ningún guardado en curso para id.
func (c *UserController) CanSave(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canSaveLocked(id)
}

func (c *UserController) canSaveLocked(id string) bool {
	r, ok := c.staged[id]
	if !ok || c.saving[id] {
		return false
	}
	u, found := c.items.Get(id)
	return !found || u.Role != r
}

// SaveRole envía el rol preparado. Con éxito lo confirma en la copia local y limpia la
// preparación; con error ambos valores quedan como estaban.
func (c *UserController) SaveRole(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.saving[id] {
		c.mu.Unlock()
		return domain.ErrSaveInFlight
	}
	if !c.canSaveLocked(id) {
		c.mu.Unlock()
		return domain.ErrNoChange
	}
	role := c.staged[id]
	c.saving[id] = true
	c.mu.Unlock()

	updated, err := c.store.UpdateRole(ctx, id, role)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.saving, id)
	if err != nil {
		return err
	}
	if cur, ok := c.items.Get(id); ok {
		cur.Role = updated.Role
		if updated.Name != "" {
			cur.Name = updated.Name
		}
		c.items.ReplaceByID(cur)
	}
	delete(c.staged, id)
	return nil
}

// CreateUser registra la cuenta y su perfil, y agrega el perfil a la lista.
func (c *UserController) CreateUser(ctx context.Context, in usecase.CreateUserInput) (entity.User, error) {
	c.mu.Lock()
	if c.creating {
		c.mu.Unlock()
		return entity.User{}, domain.ErrSaveInFlight
	}
	c.createErr, c.createMsg = nil, ""
	if err := in.Validate(); err != nil {
		c.createErr = err
		c.mu.Unlock()
		return entity.User{}, err
	}
	c.creating = true
	c.mu.Unlock()

	u, err := c.store.CreateUser(ctx, in)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.creating = false
	if err != nil {
		c.createErr = err
		return entity.User{}, err
	}
	c.items.Append(u)
	c.createMsg = "Usuario creado correctamente."
	return u, nil
}

// CreateStatus resultado del último alta: mensaje de éxito o error.
func (c *UserController) CreateStatus() (creating bool, msg string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creating, c.createMsg, c.createErr
}
