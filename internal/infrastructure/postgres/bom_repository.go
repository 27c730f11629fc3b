package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/mes-dispatch/internal/domain/entity"
	"github.com/jhoicas/mes-dispatch/internal/domain/repository"
)

var _ repository.BOMRepository = (*BOMRepo)(nil)

// BOMRepo lectura de bom_lines.
type BOMRepo struct {
	q Querier
}

// NewBOMRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBOMRepository(q Querier) *BOMRepo {
	return &BOMRepo{q: q}
}

// ListByProduct líneas del producto ordenadas por material; slice vacío si no tiene BOM.
func (r *BOMRepo) ListByProduct(ctx context.Context, productCode string) ([]*entity.BOMLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT product_code, material_code, qty_per_unit
		FROM bom_lines WHERE product_code = $1
		ORDER BY material_code`, productCode)
	if err != nil {
		return nil, fmt.Errorf("list bom: %w", err)
	}
	defer rows.Close()

	list := []*entity.BOMLine{}
	for rows.Next() {
		var l entity.BOMLine
		if err := rows.Scan(&l.ProductCode, &l.MaterialCode, &l.QtyPerUnit); err != nil {
			return nil, fmt.Errorf("scan bom line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
