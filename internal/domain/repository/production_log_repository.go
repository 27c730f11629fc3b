package repository

import (
	"context"

	"github.com/jhoicas/mes-dispatch/internal/domain/entity"
)

// ProductionLogRepository puerto para los hechos de producción (solo inserción).
type ProductionLogRepository interface {
	Create(ctx context.Context, log *entity.ProductionLog) error
	ListByWorkOrder(ctx context.Context, workOrderID string) ([]*entity.ProductionLog, error)
}
