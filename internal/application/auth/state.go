package auth

import (
	"github.com/jhoicas/heladeria/internal/domain/entity"
)

// RoleStatus fase de la resolución del rol.
type RoleStatus int

const (
	// RoleNone sin sesión: no hay rol.
	RoleNone RoleStatus = iota
	// RoleResolving hay sesión y la búsqueda/alta del perfil está en curso.
	RoleResolving
	// RoleResolved el rol ya es conocido.
	RoleResolved
)

func (s RoleStatus) String() string {
	switch s {
	case RoleResolving:
		return "resolving"
	case RoleResolved:
		return "resolved"
	default:
		return "none"
	}
}

// RoleState rol derivado de la sesión. Role solo tiene sentido cuando Status es RoleResolved.
type RoleState struct {
	Status RoleStatus
	Role   entity.Role
}

// Resolved construye un RoleState ya resuelto.
func Resolved(role entity.Role) RoleState {
	return RoleState{Status: RoleResolved, Role: role}
}

// Resolving estado "cargando permisos".
func Resolving() RoleState {
	return RoleState{Status: RoleResolving}
}

// NoRole estado sin rol.
func NoRole() RoleState {
	return RoleState{Status: RoleNone}
}

// State sesión observada y rol derivado.
// ProvisionErr guarda el fallo del alta automática del perfil (el rol cliente se adopta igual).
type State struct {
	Session      *entity.Session
	Role         RoleState
	ProvisionErr error
}

// SessionPresent indica si hay sesión.
func (s State) SessionPresent() bool { return s.Session != nil }

// Email de la sesión, vacío si no hay.
func (s State) Email() string {
	if s.Session == nil {
		return ""
	}
	return s.Session.Email
}
