package inventory

import (
	"context"
	"testing"

	"github.com/jhoicas/mes-dispatch/internal/domain"
	"github.com/jhoicas/mes-dispatch/internal/domain/entity"
	"github.com/jhoicas/mes-dispatch/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequirementsFor(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	s.AddProduct(entity.Product{Code: "P1"})
	s.AddProduct(entity.Product{Code: "P2"})
	s.AddBOMLine(entity.BOMLine{ProductCode: "P1", MaterialCode: "M2", QtyPerUnit: decimal.RequireFromString("0.5")})
	s.AddBOMLine(entity.BOMLine{ProductCode: "P1", MaterialCode: "M1", QtyPerUnit: decimal.NewFromInt(3)})
	b := NewBomResolver(s.Products(), s.BOM())

	reqs, err := b.RequirementsFor(ctx, "P1")
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, "M1", reqs[0].MaterialCode)
	assert.True(t, reqs[0].QtyPerUnit.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, "M2", reqs[1].MaterialCode)

	empty, err := b.RequirementsFor(ctx, "P2")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = b.RequirementsFor(ctx, "P9")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBOM_Response(t *testing.T) {
	s := memory.NewStore()
	s.AddProduct(entity.Product{Code: "P1"})
	s.AddBOMLine(entity.BOMLine{ProductCode: "P1", MaterialCode: "M1", QtyPerUnit: decimal.NewFromInt(3)})

	out, err := NewBomResolver(s.Products(), s.BOM()).BOM(context.Background(), "P1")
	require.NoError(t, err)
	assert.Equal(t, "P1", out.ProductCode)
	require.Len(t, out.Requirements, 1)
	assert.Equal(t, "M1", out.Requirements[0].MaterialCode)
}
