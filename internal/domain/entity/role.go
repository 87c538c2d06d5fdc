package entity

import "strings"

// Role nivel de acceso de un usuario autenticado. El almacén guarda el valor como texto libre,
// por eso cualquier valor desconocido se convierte en RoleUnrecognized.
type Role string

// Roles válidos (valores tal cual se guardan en users.rol).
const (
	RoleAdmin        Role = "admin"
	RoleEmployee     Role = "empleado"
	RoleCustomer     Role = "cliente"
	RoleUnrecognized Role = "desconocido"
)

// AssignableRoles roles que un administrador puede asignar, en el orden en que se muestran.
var AssignableRoles = []Role{RoleAdmin, RoleEmployee, RoleCustomer}

// ParseRole convierte el texto del almacén en un Role.
func ParseRole(s string) Role {
	switch Role(strings.TrimSpace(strings.ToLower(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleEmployee:
		return RoleEmployee
	case RoleCustomer:
		return RoleCustomer
	default:
		return RoleUnrecognized
	}
}

// Valid indica si el rol es uno de los asignables.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee || r == RoleCustomer
}

// Label nombre para mostrar.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrador"
	case RoleEmployee:
		return "Empleado"
	case RoleCustomer:
		return "Cliente"
	default:
		return "Desconocido"
	}
}

// Next devuelve el siguiente rol asignable (ciclo), usado por los selectores de la interfaz.
func (r Role) Next() Role {
	for i, ar := range AssignableRoles {
		if ar == r {
			return AssignableRoles[(i+1)%len(AssignableRoles)]
		}
	}
	return AssignableRoles[0]
}

// Prev devuelve el rol asignable anterior (ciclo).
func (r Role) Prev() Role {
	for i, ar := range AssignableRoles {
		if ar == r {
			return AssignableRoles[(i+len(AssignableRoles)-1)%len(AssignableRoles)]
		}
	}
	return AssignableRoles[len(AssignableRoles)-1]
}
