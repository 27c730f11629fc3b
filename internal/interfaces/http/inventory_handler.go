package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/mes-dispatch/internal/application/dto"
	"github.com/jhoicas/mes-dispatch/internal/application/inventory"
	"github.com/jhoicas/mes-dispatch/internal/domain/entity"
)

// InventoryHandler maneja movimientos de material, libro y reposición.
type InventoryHandler struct {
	ledger        *inventory.MaterialLedger
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.MaterialLedger, replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, replenishment: replenishment}
}

// Inbound godoc
// @Summary      Entrada de material
// @Tags         materials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockMovementRequest  true  "materialCode, quantity, location?, workerId?, note?"
// @Success      201   {object}  dto.MaterialTransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /material/in [post]
func (h *InventoryHandler) Inbound(c *fiber.Ctx) error {
	return h.move(c, entity.TransactionInbound)
}

// Outbound godoc
// @Summary      Salida de material
// @Tags         materials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockMovementRequest  true  "materialCode, quantity, location?, workerId?, note?"
// @Success      201   {object}  dto.MaterialTransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /material/out [post]
func (h *InventoryHandler) Outbound(c *fiber.Ctx) error {
	return h.move(c, entity.TransactionOutbound)
}

func (h *InventoryHandler) move(c *fiber.Ctx, txType string) error {
	var in dto.StockMovementRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.ledger.MoveStockFromRequest(c.UserContext(), txType, GetWorkerID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetMaterial godoc
// @Summary      Material con stock actual
// @Tags         materials
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "Código del material"
// @Success      200   {object}  dto.MaterialResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /materials/{code} [get]
func (h *InventoryHandler) GetMaterial(c *fiber.Ctx) error {
	out, err := h.ledger.GetMaterial(c.UserContext(), c.Params("code"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Transactions godoc
// @Summary      Libro de movimientos de un material
// @Tags         materials
// @Security     Bearer
// @Produce      json
// @Param        code    path   string  true   "Código del material"
// @Param        limit   query  int     false  "Límite (default 20)"
// @Param        offset  query  int     false  "Offset"
// @Success      200  {object}  dto.MaterialTransactionListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /materials/{code}/transactions [get]
func (h *InventoryHandler) Transactions(c *fiber.Ctx) error {
	page, err := bindPage(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.ledger.Transactions(c.UserContext(), c.Params("code"), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Conciliar stock contra el libro
// @Tags         materials
// @Security     Bearer
// @Produce      json
// @Param        code  path  string  true  "Código del material"
// @Success      200   {object}  dto.ReconcileResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /materials/{code}/reconcile [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	out, err := h.ledger.Reconcile(c.UserContext(), c.Params("code"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Materiales cuyo consumo pendiente (órdenes abiertas × BOM) supera el stock actual.
// @Tags         materials
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /materials/replenishment [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}
