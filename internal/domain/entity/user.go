package entity

// Campos de la tabla users.
const (
	UsersTable = "users"

	FieldID     = "id"
	FieldNombre = "nombre"
	FieldRol    = "rol"
)

// User perfil de un usuario de la heladería. ID es la misma identidad del servicio de auth.
type User struct {
	ID   string
	Name string
	Role Role
}

// IsAdmin indica si el perfil tiene rol de administrador.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Key identidad del usuario en colecciones.
func (u User) Key() string { return u.ID }

// UserFromRecord decodifica una fila de users.
func UserFromRecord(rec Record) (User, error) {
	id, err := rec.String(FieldID)
	if err != nil {
		return User{}, err
	}
	name, _ := rec.String(FieldNombre)
	rol, _ := rec.String(FieldRol)
	return User{ID: id, Name: name, Role: ParseRole(rol)}, nil
}

// Record devuelve la fila completa para insertar el perfil.
func (u User) Record() Record {
	return Record{FieldID: u.ID, FieldNombre: u.Name, FieldRol: string(u.Role)}
}
