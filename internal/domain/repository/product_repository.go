package repository

import (
	"context"

	"github.com/jhoicas/mes-dispatch/internal/domain/entity"
)

// ProductRepository lectura del catálogo de productos.
type ProductRepository interface {
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
}
