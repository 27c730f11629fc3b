package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/mes-dispatch/internal/application/inventory"
)

// ProductHandler consulta la lista de materiales de un producto.
type ProductHandler struct {
	bom *inventory.BomResolver
}

// NewProductHandler construye el handler.
func NewProductHandler(bom *inventory.BomResolver) *ProductHandler {
	return &ProductHandler{bom: bom}
}

// BOM godoc
// @Summary      Lista de materiales del producto
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "Código del producto"
// @Success      200   {object}  dto.BOMResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /products/{code}/bom [get]
func (h *ProductHandler) BOM(c *fiber.Ctx) error {
	out, err := h.bom.BOM(c.UserContext(), c.Params("code"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
