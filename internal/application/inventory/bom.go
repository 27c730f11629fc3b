package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/mes-dispatch/internal/application/dto"
	"github.com/jhoicas/mes-dispatch/internal/domain"
	"github.com/jhoicas/mes-dispatch/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Requirement material y cantidad necesaria para producir una unidad.
type Requirement struct {
	MaterialCode string
	QtyPerUnit   decimal.Decimal
}

// BomResolver consulta de solo lectura de la lista de materiales.
type BomResolver struct {
	products repository.ProductRepository
	bom      repository.BOMRepository
}

// NewBomResolver construye el resolvedor.
func NewBomResolver(products repository.ProductRepository, bom repository.BOMRepository) *BomResolver {
	return &BomResolver{products: products, bom: bom}
}

// RequirementsFor devuelve los requerimientos por unidad del producto, ordenados por código
// de material. Un producto sin BOM devuelve lista vacía (el backflush no consume nada).
func (b *BomResolver) RequirementsFor(ctx context.Context, productCode string) ([]Requirement, error) {
	p, err := b.products.GetByCode(ctx, productCode)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFoundf("producto %s", productCode)
	}
	return Requirements(ctx, b.bom, productCode)
}

// Requirements resuelve la BOM con el repositorio dado (puede estar atado a una tx).
// Líneas repetidas del mismo material se acumulan; el orden por código fija el orden de bloqueo.
func Requirements(ctx context.Context, bom repository.BOMRepository, productCode string) ([]Requirement, error) {
	lines, err := bom.ListByProduct(ctx, productCode)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]decimal.Decimal, len(lines))
	for _, l := range lines {
		if !l.QtyPerUnit.GreaterThan(decimal.Zero) {
			continue
		}
		byCode[l.MaterialCode] = byCode[l.MaterialCode].Add(l.QtyPerUnit)
	}
	reqs := make([]Requirement, 0, len(byCode))
	for code, qty := range byCode {
		reqs = append(reqs, Requirement{MaterialCode: code, QtyPerUnit: qty})
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].MaterialCode < reqs[j].MaterialCode })
	return reqs, nil
}

// BOM devuelve la lista de materiales en formato de respuesta.
func (b *BomResolver) BOM(ctx context.Context, productCode string) (*dto.BOMResponse, error) {
	reqs, err := b.RequirementsFor(ctx, productCode)
	if err != nil {
		return nil, err
	}
	out := &dto.BOMResponse{
		ProductCode:  productCode,
		Requirements: make([]dto.BOMRequirementResponse, 0, len(reqs)),
	}
	for _, r := range reqs {
		out.Requirements = append(out.Requirements, dto.BOMRequirementResponse{
			MaterialCode: r.MaterialCode,
			QtyPerUnit:   r.QtyPerUnit,
		})
	}
	return out, nil
}
