// Package views decide qué pantallas se montan según la sesión y el rol.
package views

import (
	"slices"

	"github.com/jhoicas/heladeria/internal/application/auth"
	"github.com/jhoicas/heladeria/internal/domain/entity"
)

// Screen identificador de pantalla.
type Screen string

const (
	ScreenProducts      Screen = "products"
	ScreenLogin         Screen = "login"
	ScreenLoading       Screen = "loading"
	ScreenIngredients   Screen = "ingredients"
	ScreenUsers         Screen = "users"
	ScreenCreateUser    Screen = "create_user"
	ScreenProfitability Screen = "profitability"
)

// Title nombre visible de la pantalla.
func (s Screen) Title() string {
	switch s {
	case ScreenProducts:
		return "Productos"
	case ScreenLogin:
		return "Iniciar sesión"
	case ScreenLoading:
		return "Cargando permisos"
	case ScreenIngredients:
		return "Ingredientes"
	case ScreenUsers:
		return "Usuarios"
	case ScreenCreateUser:
		return "Crear usuario"
	case ScreenProfitability:
		return "Rentabilidad"
	default:
		return string(s)
	}
}

// Select devuelve, en orden, las pantallas a montar. Sin estado: se reevalúa en cada cambio.
func Select(sessionPresent bool, role auth.RoleState) []Screen {
	if !sessionPresent {
		return []Screen{ScreenProducts, ScreenLogin}
	}
	switch role.Status {
	case auth.RoleResolving:
		return []Screen{ScreenLoading}
	case auth.RoleResolved:
		switch role.Role {
		case entity.RoleAdmin:
			return []Screen{ScreenIngredients, ScreenProducts, ScreenUsers, ScreenCreateUser, ScreenProfitability}
		case entity.RoleEmployee:
			return []Screen{ScreenIngredients, ScreenProducts}
		}
	}
	// cliente, sin rol o rol no reconocido
	return []Screen{ScreenProducts}
}

// ForState aplica Select sobre el estado del resolver.
func ForState(st auth.State) []Screen {
	return Select(st.SessionPresent(), st.Role)
}

// Allows indica si s está entre las pantallas seleccionadas.
func Allows(screens []Screen, s Screen) bool {
	return slices.Contains(screens, s)
}
