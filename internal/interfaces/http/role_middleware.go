package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/heladeria/internal/application/auth"
	"github.com/jhoicas/heladeria/internal/application/dto"
	"github.com/jhoicas/heladeria/internal/application/usecase"
	"github.com/jhoicas/heladeria/internal/application/views"
	"github.com/jhoicas/heladeria/pkg/logger"
)

// roleResolver contrato mínimo para resolver el rol del llamador.
// Lo implementa *usecase.UserUseCase; la interfaz evita acoplar el middleware a la persistencia.
type roleResolver interface {
	ResolveRole(ctx context.Context, userID, displayName string) usecase.Resolution
}

// RoleMiddleware resuelve (o da de alta con rol cliente) el perfil del llamador autenticado.
// Debe usarse DESPUÉS de AuthMiddleware u OptionalAuth; sin user_id no hace nada.
// El fallo del alta automática no bloquea la petición: se registra y se usa rol cliente.
func RoleMiddleware(resolver roleResolver, log *logger.Logger) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID == "" {
			return c.Next()
		}
		res := resolver.ResolveRole(c.UserContext(), userID, GetEmail(c))
		if res.ProvisionErr != nil {
			log.Warn().Err(res.ProvisionErr).Str("user_id", userID).Msg("no se pudo crear el perfil por defecto")
		}
		c.Locals(LocalRole, res.User.Role)
		return c.Next()
	}
}

// roleState estado de rol de la petición: toda petición con rol ya está resuelta.
func roleState(c *fiber.Ctx) auth.RoleState {
	if GetUserID(c) == "" {
		return auth.NoRole()
	}
	return auth.Resolved(GetRole(c))
}

// Screens pantallas habilitadas para la petición, con la misma tabla que el cliente de terminal.
func Screens(c *fiber.Ctx) []views.Screen {
	return views.Select(GetUserID(c) != "", roleState(c))
}

// RequireSession exige un llamador autenticado (401 si no lo hay). Las acciones que
// escriben en la base con el pool del servidor no pueden quedar abiertas a visitantes.
func RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetUserID(c) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "inicie sesión para realizar esta acción",
			})
		}
		return c.Next()
	}
}

// RequireScreen deja pasar solo si la pantalla está habilitada para el llamador.
//   - 401 Unauthorized → sin sesión y la pantalla la requiere.
//   - 403 Forbidden    → con sesión pero el rol no la habilita.
func RequireScreen(screen views.Screen) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if views.Allows(Screens(c), screen) {
			return c.Next()
		}
		if GetUserID(c) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "inicie sesión para acceder a " + screen.Title(),
			})
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Code:    "FORBIDDEN",
			Message: "su rol no tiene acceso a " + screen.Title(),
		})
	}
}
