package workorder

import (
	"context"

	"github.com/jhoicas/mes-dispatch/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// TravelerLine requerimiento de un material en la hoja de ruta de la orden.
type TravelerLine struct {
	MaterialCode string
	MaterialName string
	Unit         string
	QtyPerUnit   decimal.Decimal
	TotalQty     decimal.Decimal // QtyPerUnit * TargetQty
}

// TravelerPDFGenerator genera la hoja de ruta (traveler) que acompaña la orden en planta.
type TravelerPDFGenerator interface {
	GenerateTraveler(ctx context.Context, wo *entity.WorkOrder, product *entity.Product, lines []TravelerLine) ([]byte, error)
}
