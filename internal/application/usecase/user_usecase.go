package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/heladeria/internal/application/ports"
	"github.com/jhoicas/heladeria/internal/domain"
	"github.com/jhoicas/heladeria/internal/domain/entity"
)

// Resolution resultado de resolver el rol de una identidad.
// ProvisionErr no es nil cuando el perfil por defecto se adoptó pero su alta falló.
type Resolution struct {
	User         entity.User
	Provisioned  bool
	ProvisionErr error
}

// UserUseCase aplica reglas de negocio para perfiles de usuario.
type UserUseCase struct {
	gw   ports.DataGateway
	auth ports.AuthGateway // solo para CreateUser; puede ser nil
}

// NewUserUseCase construye el caso de uso. auth puede ser nil si no se van a crear usuarios.
func NewUserUseCase(gw ports.DataGateway, auth ports.AuthGateway) *UserUseCase {
	return &UserUseCase{gw: gw, auth: auth}
}

// List devuelve todos los perfiles.
func (uc *UserUseCase) List(ctx context.Context) ([]entity.User, error) {
	recs, err := uc.gw.QueryCollection(ctx, entity.UsersTable)
	if err != nil {
		return nil, err
	}
	list := make([]entity.User, 0, len(recs))
	for _, rec := range recs {
		u, err := entity.UserFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("decodificar usuario: %w", err)
		}
		list = append(list, u)
	}
	return list, nil
}

// GetByID obtiene un perfil; domain.ErrNotFound si no existe.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (entity.User, error) {
	rec, err := uc.gw.QueryRecord(ctx, entity.UsersTable, ports.Filter{entity.FieldID: id})
	if err != nil {
		return entity.User{}, err
	}
	return entity.UserFromRecord(rec)
}

// ResolveRole busca el perfil de la identidad; si no existe o la búsqueda falla, da de alta
// uno con rol cliente y lo adopta. Un fallo del alta no impide adoptar el rol: se informa
// en Resolution.ProvisionErr.
func (uc *UserUseCase) ResolveRole(ctx context.Context, userID, displayName string) Resolution {
	u, err := uc.GetByID(ctx, userID)
	if err == nil {
		return Resolution{User: u}
	}
	def := entity.User{ID: userID, Name: displayName, Role: entity.RoleCustomer}
	_, insErr := uc.gw.InsertRecord(ctx, entity.UsersTable, def.Record())
	if insErr != nil {
		insErr = fmt.Errorf("alta de perfil por defecto: %w", insErr)
	}
	return Resolution{User: def, Provisioned: true, ProvisionErr: insErr}
}

// UpdateRole cambia el rol del perfil id y devuelve el perfil actualizado.
func (uc *UserUseCase) UpdateRole(ctx context.Context, id string, role entity.Role) (entity.User, error) {
	if !role.Valid() {
		return entity.User{}, domain.Invalid(entity.FieldRol, "rol no válido")
	}
	rec, err := uc.gw.UpdateRecord(ctx, entity.UsersTable, id, entity.Record{entity.FieldRol: string(role)})
	if err != nil {
		return entity.User{}, err
	}
	return entity.UserFromRecord(rec)
}

// CreateUserInput datos del formulario de alta de usuario.
type CreateUserInput struct {
	Email    string
	Name     string
	Role     entity.Role
	Password string
}

// NewCreateUserInput borrador vacío con el rol por defecto.
func NewCreateUserInput() CreateUserInput {
	return CreateUserInput{Role: entity.RoleCustomer}
}

// Validate comprueba los campos obligatorios.
func (in CreateUserInput) Validate() error {
	if _, err := mail.ParseAddress(strings.TrimSpace(in.Email)); err != nil {
		return domain.Invalid("email", "no es un email válido")
	}
	if strings.TrimSpace(in.Name) == "" {
		return domain.Invalid(entity.FieldNombre, "es obligatorio")
	}
	if in.Password == "" {
		return domain.Invalid("password", "es obligatoria")
	}
	if !in.Role.Valid() {
		return domain.Invalid(entity.FieldRol, "rol no válido")
	}
	return nil
}

// CreateUser registra la identidad en el servicio de auth y luego inserta su perfil.
func (uc *UserUseCase) CreateUser(ctx context.Context, in CreateUserInput) (entity.User, error) {
	if err := in.Validate(); err != nil {
		return entity.User{}, err
	}
	if uc.auth == nil {
		return entity.User{}, errors.New("usuarios: servicio de auth no configurado")
	}
	userID, err := uc.auth.SignUp(ctx, strings.TrimSpace(in.Email), in.Password)
	if err != nil {
		return entity.User{}, err
	}
	if _, err := uuid.Parse(userID); err != nil {
		return entity.User{}, fmt.Errorf("%w: id de usuario inválido %q", domain.ErrRemoteRejection, userID)
	}
	u := entity.User{ID: userID, Name: strings.TrimSpace(in.Name), Role: in.Role}
	rec, err := uc.gw.InsertRecord(ctx, entity.UsersTable, u.Record())
	if err != nil {
		return entity.User{}, err
	}
	return entity.UserFromRecord(rec)
}
