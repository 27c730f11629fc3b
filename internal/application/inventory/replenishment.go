package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/mes-dispatch/internal/application/dto"
	"github.com/jhoicas/mes-dispatch/internal/domain/entity"
	"github.com/jhoicas/mes-dispatch/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// openOrdersPage tamaño de página al recorrer las órdenes abiertas.
const openOrdersPage = 200

// ReplenishmentUseCase compara la demanda pendiente de las órdenes abiertas contra el stock
// y sugiere cuánto reponer de cada material antes de que el backflush falle.
type ReplenishmentUseCase struct {
	workOrders repository.WorkOrderRepository
	materials  repository.MaterialRepository
	bom        repository.BOMRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(
	workOrders repository.WorkOrderRepository,
	materials repository.MaterialRepository,
	bom repository.BOMRepository,
) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{
		workOrders: workOrders,
		materials:  materials,
		bom:        bom,
	}
}

type demand struct {
	qty    decimal.Decimal
	orders int
}

// GenerateReplenishmentList devuelve los materiales con déficit ordenados por déficit descendente.
// Solo cuenta unidades pendientes (target - current) de órdenes WAIT, ISSUED y RUNNING.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	byMaterial := make(map[string]*demand)
	bomCache := make(map[string][]Requirement)

	for _, status := range []entity.WorkOrderStatus{entity.WorkOrderWait, entity.WorkOrderIssued, entity.WorkOrderRunning} {
		for offset := 0; ; offset += openOrdersPage {
			orders, err := uc.workOrders.List(ctx, repository.WorkOrderFilter{Status: status, Limit: openOrdersPage, Offset: offset})
			if err != nil {
				return nil, err
			}
			for _, wo := range orders {
				pending := wo.TargetQty - wo.CurrentQty
				if pending <= 0 {
					continue
				}
				reqs, ok := bomCache[wo.ProductCode]
				if !ok {
					reqs, err = Requirements(ctx, uc.bom, wo.ProductCode)
					if err != nil {
						return nil, err
					}
					bomCache[wo.ProductCode] = reqs
				}
				for _, r := range reqs {
					d := byMaterial[r.MaterialCode]
					if d == nil {
						d = &demand{}
						byMaterial[r.MaterialCode] = d
					}
					d.qty = d.qty.Add(r.QtyPerUnit.Mul(decimal.NewFromInt(int64(pending))))
					d.orders++
				}
			}
			if len(orders) < openOrdersPage {
				break
			}
		}
	}

	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(byMaterial))
	for code, d := range byMaterial {
		m, err := uc.materials.GetByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		stock := decimal.Zero
		name, unit := "", ""
		if m != nil {
			stock, name, unit = m.CurrentStock, m.Name, m.Unit
		}
		if d.qty.LessThanOrEqual(stock) {
			continue
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			MaterialCode:   code,
			MaterialName:   name,
			Unit:           unit,
			CurrentStock:   stock,
			OpenDemand:     d.qty,
			SuggestedQty:   d.qty.Sub(stock),
			AffectedOrders: d.orders,
		})
	}

	// Mayor déficit primero; empate por código para un orden estable.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if !a.SuggestedQty.Equal(b.SuggestedQty) {
			return a.SuggestedQty.GreaterThan(b.SuggestedQty)
		}
		return a.MaterialCode < b.MaterialCode
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
