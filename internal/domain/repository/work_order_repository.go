package repository

import (
	"context"

	"github.com/jhoicas/mes-dispatch/internal/domain/entity"
)

// WorkOrderFilter filtros de listado de órdenes.
type WorkOrderFilter struct {
	Status entity.WorkOrderStatus // vacío = todas
	Limit  int
	Offset int
}

// WorkOrderRepository define el puerto de persistencia para órdenes de trabajo.
// Los métodos *ForUpdate bloquean la fila hasta el fin de la transacción.
type WorkOrderRepository interface {
	Create(ctx context.Context, wo *entity.WorkOrder) error
	GetByID(ctx context.Context, id string) (*entity.WorkOrder, error)
	GetForUpdate(ctx context.Context, id string) (*entity.WorkOrder, error)
	Update(ctx context.Context, wo *entity.WorkOrder) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f WorkOrderFilter) ([]*entity.WorkOrder, error)

	// LockMachine serializa los despachos de una misma máquina dentro de la transacción.
	LockMachine(ctx context.Context, machineID string) error
	// GetRunningByMachine devuelve la orden RUNNING de la máquina o nil.
	GetRunningByMachine(ctx context.Context, machineID string) (*entity.WorkOrder, error)
	// ClaimOldestIssued bloquea y devuelve la orden ISSUED de menor Seq que no esté
	// bloqueada por otra transacción, o nil si no hay trabajo.
	ClaimOldestIssued(ctx context.Context) (*entity.WorkOrder, error)
}
