package repository

import (
	"context"

	"github.com/jhoicas/mes-dispatch/internal/domain/entity"
)

// EquipmentRepository lectura del catálogo de máquinas.
type EquipmentRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Equipment, error)
}
