package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/mes-dispatch/internal/domain/entity"
	"github.com/jhoicas/mes-dispatch/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReplenishmentList(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	s.AddProduct(entity.Product{Code: "P1"})
	s.AddMaterial(entity.Material{Code: "M1", Name: "Lámina"}, decimal.NewFromInt(10))
	s.AddMaterial(entity.Material{Code: "M2", Name: "Tornillo"}, decimal.NewFromInt(100))
	s.AddBOMLine(entity.BOMLine{ProductCode: "P1", MaterialCode: "M1", QtyPerUnit: decimal.NewFromInt(3)})
	s.AddBOMLine(entity.BOMLine{ProductCode: "P1", MaterialCode: "M2", QtyPerUnit: decimal.NewFromInt(1)})

	now := time.Now()
	orders := []*entity.WorkOrder{
		{ID: "a", ProductCode: "P1", TargetQty: 4, Status: entity.WorkOrderWait, CreatedAt: now},
		{ID: "b", ProductCode: "P1", TargetQty: 3, CurrentQty: 1, Status: entity.WorkOrderRunning, AssignedMachine: "M-01", CreatedAt: now},
		{ID: "c", ProductCode: "P1", TargetQty: 50, Status: entity.WorkOrderCancelled, CreatedAt: now},
	}
	for _, wo := range orders {
		require.NoError(t, s.WorkOrders().Create(ctx, wo))
	}

	list, err := NewReplenishmentUseCase(s.WorkOrders(), s.Materials(), s.BOM()).GenerateReplenishmentList(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	// pendiente = 4 + 2 unidades → 18 de M1 contra 10 en stock
	assert.Equal(t, "M1", list[0].MaterialCode)
	assert.True(t, list[0].OpenDemand.Equal(decimal.NewFromInt(18)))
	assert.True(t, list[0].SuggestedQty.Equal(decimal.NewFromInt(8)))
	assert.Equal(t, 2, list[0].AffectedOrders)
	assert.Equal(t, 1, list[0].Priority)
}
