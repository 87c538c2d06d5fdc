package dto

import "github.com/jhoicas/heladeria/internal/domain/entity"

// CreateUserRequest alta de usuario por un administrador (cuenta + perfil).
type CreateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"nombre"`
	Role     string `json:"rol"`
	Password string `json:"password"`
}

// UpdateRoleRequest cambio de rol.
type UpdateRoleRequest struct {
	Role string `json:"rol"`
}

// UserResponse perfil de usuario.
type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"nombre"`
	Role      string `json:"rol"`
	RoleLabel string `json:"rol_label"`
	IsAdmin   bool   `json:"es_admin"`
}

// NewUserResponse convierte la entidad.
func NewUserResponse(u entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Role:      string(u.Role),
		RoleLabel: u.Role.Label(),
		IsAdmin:   u.IsAdmin(),
	}
}

// SessionResponse sesión del llamador y pantallas habilitadas.
type SessionResponse struct {
	Authenticated bool     `json:"authenticated"`
	UserID        string   `json:"user_id,omitempty"`
	Email         string   `json:"email,omitempty"`
	Role          string   `json:"rol,omitempty"`
	Screens       []string `json:"screens"`
}

// ScreensResponse pantallas habilitadas.
type ScreensResponse struct {
	Screens []string `json:"screens"`
}
