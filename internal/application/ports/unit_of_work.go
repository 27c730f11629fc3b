package ports

import (
	"context"

	"github.com/jhoicas/mes-dispatch/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	WorkOrders   repository.WorkOrderRepository
	Materials    repository.MaterialRepository
	Transactions repository.MaterialTransactionRepository
	BOM          repository.BOMRepository
	Logs         repository.ProductionLogRepository
}

// TxRunner ejecuta fn dentro de una unidad de trabajo: Commit si fn retorna nil,
// Rollback en cualquier otro caso (ninguna escritura de fn sobrevive a un error).
// Cada operación externa del núcleo (poll, report, moveStock) corre en su propia unidad.
type TxRunner interface {
	Run(ctx context.Context, fn func(r TxRepos) error) error
}
