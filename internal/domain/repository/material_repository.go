package repository

import (
	"context"

	"github.com/jhoicas/mes-dispatch/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// MaterialRepository puerto para el catálogo de materiales y su stock.
// UpdateStock solo debe llamarse desde el libro de movimientos.
type MaterialRepository interface {
	GetByCode(ctx context.Context, code string) (*entity.Material, error)
	GetForUpdate(ctx context.Context, code string) (*entity.Material, error)
	UpdateStock(ctx context.Context, code string, stock decimal.Decimal) error
}
