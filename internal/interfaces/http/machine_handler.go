package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/mes-dispatch/internal/application/dispatch"
	"github.com/jhoicas/mes-dispatch/internal/application/dto"
	"github.com/jhoicas/mes-dispatch/internal/application/production"
	"github.com/jhoicas/mes-dispatch/internal/application/workorder"
)

// MachineHandler endpoints que consumen los equipos de planta (sin token).
type MachineHandler struct {
	queue    *dispatch.Queue
	recorder *production.Recorder
}

// NewMachineHandler construye el handler.
func NewMachineHandler(queue *dispatch.Queue, recorder *production.Recorder) *MachineHandler {
	return &MachineHandler{queue: queue, recorder: recorder}
}

// Poll godoc
// @Summary      Pedir trabajo
// @Description  Devuelve la orden RUNNING de la máquina o reclama la ISSUED más antigua. 204 si no hay trabajo.
// @Tags         machine
// @Produce      json
// @Param        machineId  query  string  true  "ID de la máquina"
// @Success      200  {object}  dto.WorkOrderResponse
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /machine/poll [get]
func (h *MachineHandler) Poll(c *fiber.Ctx) error {
	wo, found, err := h.queue.Poll(c.UserContext(), c.Query("machineId"))
	if err != nil {
		return writeError(c, err)
	}
	if !found {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(workorder.ToWorkOrderResponse(wo))
}

// Report godoc
// @Summary      Reportar una unidad producida
// @Tags         machine
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReportRequest  true  "orderId, machineId, result, defectCode?, serialNo"
// @Success      200   {object}  dto.ReportResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /machine/report [post]
func (h *MachineHandler) Report(c *fiber.Ctx) error {
	var in dto.ReportRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.recorder.ReportUnit(c.UserContext(), production.FromRequest(in))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
