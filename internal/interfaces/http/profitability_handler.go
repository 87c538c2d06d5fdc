package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/heladeria/internal/application/dto"
	"github.com/jhoicas/heladeria/internal/application/usecase"
)

// ProfitabilityHandler panel de rentabilidad (solo admin).
type ProfitabilityHandler struct {
	uc *usecase.ProfitabilityUseCase
}

// NewProfitabilityHandler construye el handler.
func NewProfitabilityHandler(uc *usecase.ProfitabilityUseCase) *ProfitabilityHandler {
	return &ProfitabilityHandler{uc: uc}
}

// Report godoc
// @Summary      Panel de rentabilidad
// @Tags         profitability
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ProfitabilityResponse
// @Router       /api/profitability [get]
func (h *ProfitabilityHandler) Report(c *fiber.Ctx) error {
	r, err := h.uc.Report(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewProfitabilityResponse(r))
}

// PDF godoc
// @Summary      Reporte de rentabilidad en PDF
// @Tags         profitability
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Router       /api/profitability/pdf [get]
func (h *ProfitabilityHandler) PDF(c *fiber.Ctx) error {
	b, err := h.uc.PDF(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="rentabilidad.pdf"`)
	return c.Send(b)
}
