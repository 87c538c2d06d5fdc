package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/heladeria/internal/application/dto"
	"github.com/jhoicas/heladeria/internal/application/usecase"
)

// ProductHandler catálogo público y venta.
type ProductHandler struct {
	uc *usecase.ProductUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// List godoc
// @Summary      Listar productos con rentabilidad y calorías
// @Tags         products
// @Produce      json
// @Success      200  {array}   dto.ProductResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.NewProductResponse(p))
	}
	return c.JSON(out)
}

// Sell godoc
// @Summary      Vender un producto
// @Description  Invoca el procedimiento de venta y devuelve su mensaje.
// @Tags         products
// @Produce      json
// @Security     Bearer
// @Param        id   path  int  true  "ID del producto"
// @Success      200  {object}  dto.MessageResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/sell [post]
func (h *ProductHandler) Sell(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "INVALID_ID", "id debe ser numérico")
	}
	msg, err := h.uc.Sell(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: msg})
}
