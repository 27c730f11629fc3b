package repository

import (
	"context"

	"github.com/jhoicas/mes-dispatch/internal/domain/entity"
)

// MaterialTransactionRepository puerto del libro de movimientos (solo inserción).
type MaterialTransactionRepository interface {
	Create(ctx context.Context, t *entity.MaterialTransaction) error
	ListByMaterial(ctx context.Context, materialCode string, limit, offset int) ([]*entity.MaterialTransaction, error)
	// AllByMaterial devuelve el historial completo en orden cronológico (para conciliación).
	AllByMaterial(ctx context.Context, materialCode string) ([]*entity.MaterialTransaction, error)
}
