package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/heladeria/internal/application/dto"
	"github.com/jhoicas/heladeria/internal/application/views"
)

// SessionHandler expone la sesión del llamador y sus pantallas.
type SessionHandler struct{}

// NewSessionHandler construye el handler.
func NewSessionHandler() *SessionHandler { return &SessionHandler{} }

// Session godoc
// @Summary      Sesión del llamador
// @Tags         session
// @Produce      json
// @Success      200  {object}  dto.SessionResponse
// @Router       /api/session [get]
func (h *SessionHandler) Session(c *fiber.Ctx) error {
	out := dto.SessionResponse{Screens: screenNames(Screens(c))}
	if id := GetUserID(c); id != "" {
		out.Authenticated = true
		out.UserID = id
		out.Email = GetEmail(c)
		out.Role = string(GetRole(c))
	}
	return c.JSON(out)
}

// Screens godoc
// @Summary      Pantallas habilitadas
// @Tags         session
// @Produce      json
// @Success      200  {object}  dto.ScreensResponse
// @Router       /api/screens [get]
func (h *SessionHandler) Screens(c *fiber.Ctx) error {
	return c.JSON(dto.ScreensResponse{Screens: screenNames(Screens(c))})
}

func screenNames(screens []views.Screen) []string {
	out := make([]string, len(screens))
	for i, s := range screens {
		out[i] = string(s)
	}
	return out
}
