package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/mes-dispatch/internal/application/dispatch"
	"github.com/jhoicas/mes-dispatch/internal/application/inventory"
	"github.com/jhoicas/mes-dispatch/internal/application/production"
	"github.com/jhoicas/mes-dispatch/internal/application/workorder"
)

// Roles que admiten las rutas de operario cuando hay JWT.
const (
	RoleSupervisor = "supervisor"
	RoleOperator   = "operator"
	RoleWarehouse  = "warehouse"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	WorkOrders    *workorder.UseCase
	Queue         *dispatch.Queue
	Recorder      *production.Recorder
	Ledger        *inventory.MaterialLedger
	BOM           *inventory.BomResolver
	Replenishment *inventory.ReplenishmentUseCase
	// JWTSecret vacío deja las rutas de operario abiertas.
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Equipos de planta (sin token)
	machineHandler := NewMachineHandler(deps.Queue, deps.Recorder)
	machine := app.Group("/machine")
	machine.Get("/poll", machineHandler.Poll)
	machine.Post("/report", machineHandler.Report)

	// Rutas de operario
	var (
		supervisor = []fiber.Handler{}
		warehouse  = []fiber.Handler{}
		anyRole    = []fiber.Handler{}
	)
	if deps.JWTSecret != "" {
		auth := AuthMiddleware(deps.JWTSecret)
		supervisor = []fiber.Handler{auth, RequireRole(RoleSupervisor)}
		warehouse = []fiber.Handler{auth, RequireRole(RoleSupervisor, RoleWarehouse)}
		anyRole = []fiber.Handler{auth, RequireRole(RoleSupervisor, RoleWarehouse, RoleOperator)}
	}

	// Work orders
	woHandler := NewWorkOrderHandler(deps.WorkOrders)
	workOrders := app.Group("/work-orders")
	workOrders.Post("/", with(supervisor, woHandler.Create)...)
	workOrders.Get("/", with(anyRole, woHandler.List)...)
	workOrders.Get("/:id", with(anyRole, woHandler.GetByID)...)
	workOrders.Put("/:id", with(supervisor, woHandler.Update)...)
	workOrders.Delete("/:id", with(supervisor, woHandler.Delete)...)
	workOrders.Post("/:id/release", with(supervisor, woHandler.Release)...)
	workOrders.Post("/:id/cancel", with(supervisor, woHandler.Cancel)...)
	workOrders.Get("/:id/logs", with(anyRole, woHandler.Logs)...)
	workOrders.Get("/:id/traveler", with(anyRole, woHandler.Traveler)...)

	// Materials
	invHandler := NewInventoryHandler(deps.Ledger, deps.Replenishment)
	app.Post("/material/in", with(warehouse, invHandler.Inbound)...)
	app.Post("/material/out", with(warehouse, invHandler.Outbound)...)
	materials := app.Group("/materials")
	materials.Get("/replenishment", with(anyRole, invHandler.GetReplenishmentList)...)
	materials.Get("/:code", with(anyRole, invHandler.GetMaterial)...)
	materials.Get("/:code/transactions", with(anyRole, invHandler.Transactions)...)
	materials.Get("/:code/reconcile", with(warehouse, invHandler.Reconcile)...)

	// Products
	productHandler := NewProductHandler(deps.BOM)
	app.Get("/products/:code/bom", with(anyRole, productHandler.BOM)...)
}

func with(middleware []fiber.Handler, h fiber.Handler) []fiber.Handler {
	return append(append([]fiber.Handler{}, middleware...), h)
}
