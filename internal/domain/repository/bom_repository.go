package repository

import (
	"context"

	"github.com/jhoicas/mes-dispatch/internal/domain/entity"
)

// BOMRepository lectura de la lista de materiales. Un producto sin BOM devuelve slice vacío.
type BOMRepository interface {
	ListByProduct(ctx context.Context, productCode string) ([]*entity.BOMLine, error)
}
