package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/mes-dispatch/internal/domain"
	"github.com/jhoicas/mes-dispatch/internal/domain/entity"
	"github.com/jhoicas/mes-dispatch/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.WorkOrderRepository           = (*workOrderRepo)(nil)
	_ repository.MaterialRepository            = (*materialRepo)(nil)
	_ repository.MaterialTransactionRepository = (*transactionRepo)(nil)
	_ repository.BOMRepository                 = (*bomRepo)(nil)
	_ repository.ProductionLogRepository       = (*productionLogRepo)(nil)
	_ repository.ProductRepository             = (*productRepo)(nil)
	_ repository.EquipmentRepository           = (*equipmentRepo)(nil)
)

// ── Órdenes ───────────────────────────────────────────────────────────────────

type workOrderRepo struct{ base }

func (r *workOrderRepo) Create(_ context.Context, wo *entity.WorkOrder) error {
	return r.with(func(st *state) error {
		if _, ok := st.workOrders[wo.ID]; ok {
			return fmt.Errorf("%w: orden %s", domain.ErrDuplicate, wo.ID)
		}
		st.seq++
		wo.Seq = st.seq
		st.workOrders[wo.ID] = *wo
		return nil
	})
}

func (r *workOrderRepo) GetByID(_ context.Context, id string) (*entity.WorkOrder, error) {
	var out *entity.WorkOrder
	err := r.with(func(st *state) error {
		if wo, ok := st.workOrders[id]; ok {
			out = &wo
		}
		return nil
	})
	return out, err
}

// GetForUpdate dentro de Run el mutex ya serializa a los escritores.
func (r *workOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.WorkOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *workOrderRepo) Update(_ context.Context, wo *entity.WorkOrder) error {
	return r.with(func(st *state) error {
		if _, ok := st.workOrders[wo.ID]; !ok {
			return domain.NotFoundf("orden %s", wo.ID)
		}
		if wo.Status == entity.WorkOrderRunning {
			for id, other := range st.workOrders {
				if id != wo.ID && other.Status == entity.WorkOrderRunning && other.AssignedMachine == wo.AssignedMachine {
					return fmt.Errorf("%w: máquina %s ya ejecuta la orden %s", domain.ErrConflict, wo.AssignedMachine, id)
				}
			}
		}
		st.workOrders[wo.ID] = *wo
		return nil
	})
}

func (r *workOrderRepo) Delete(_ context.Context, id string) error {
	return r.with(func(st *state) error {
		if _, ok := st.workOrders[id]; !ok {
			return domain.NotFoundf("orden %s", id)
		}
		delete(st.workOrders, id)
		return nil
	})
}

func (r *workOrderRepo) List(_ context.Context, f repository.WorkOrderFilter) ([]*entity.WorkOrder, error) {
	var out []*entity.WorkOrder
	err := r.with(func(st *state) error {
		all := make([]entity.WorkOrder, 0, len(st.workOrders))
		for _, wo := range st.workOrders {
			if f.Status != "" && wo.Status != f.Status {
				continue
			}
			all = append(all, wo)
		}
		sort.Slice(all, func(i, j int) bool { return all[i].Seq < all[j].Seq })
		for _, wo := range page(all, f.Limit, f.Offset) {
			out = append(out, &wo)
		}
		return nil
	})
	return out, err
}

// LockMachine no-op: Run ya tiene el mutex del almacén.
func (r *workOrderRepo) LockMachine(context.Context, string) error { return nil }

func (r *workOrderRepo) GetRunningByMachine(_ context.Context, machineID string) (*entity.WorkOrder, error) {
	var out *entity.WorkOrder
	err := r.with(func(st *state) error {
		for _, wo := range st.workOrders {
			if wo.Status == entity.WorkOrderRunning && wo.AssignedMachine == machineID {
				out = &wo
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *workOrderRepo) ClaimOldestIssued(context.Context) (*entity.WorkOrder, error) {
	var out *entity.WorkOrder
	err := r.with(func(st *state) error {
		for _, wo := range st.workOrders {
			if wo.Status != entity.WorkOrderIssued {
				continue
			}
			if out == nil || wo.Seq < out.Seq {
				out = &wo
			}
		}
		return nil
	})
	return out, err
}

// ── Materiales ────────────────────────────────────────────────────────────────

type materialRepo struct{ base }

func (r *materialRepo) GetByCode(_ context.Context, code string) (*entity.Material, error) {
	var out *entity.Material
	err := r.with(func(st *state) error {
		if m, ok := st.materials[code]; ok {
			out = &m
		}
		return nil
	})
	return out, err
}

func (r *materialRepo) GetForUpdate(ctx context.Context, code string) (*entity.Material, error) {
	return r.GetByCode(ctx, code)
}

func (r *materialRepo) UpdateStock(_ context.Context, code string, stock decimal.Decimal) error {
	return r.with(func(st *state) error {
		m, ok := st.materials[code]
		if !ok {
			return domain.NotFoundf("material %s", code)
		}
		if stock.IsNegative() {
			return fmt.Errorf("update stock %s: negative stock %s", code, stock.String())
		}
		m.CurrentStock = stock
		m.UpdatedAt = r.store.now()
		st.materials[code] = m
		return nil
	})
}

// ── Libro de movimientos ──────────────────────────────────────────────────────

type transactionRepo struct{ base }

func (r *transactionRepo) Create(_ context.Context, t *entity.MaterialTransaction) error {
	return r.with(func(st *state) error {
		st.txs = append(st.txs, *t)
		return nil
	})
}

func (r *transactionRepo) ListByMaterial(_ context.Context, code string, limit, offset int) ([]*entity.MaterialTransaction, error) {
	var out []*entity.MaterialTransaction
	err := r.with(func(st *state) error {
		var matched []entity.MaterialTransaction
		for i := len(st.txs) - 1; i >= 0; i-- {
			if st.txs[i].MaterialCode == code {
				matched = append(matched, st.txs[i])
			}
		}
		for _, t := range page(matched, limit, offset) {
			out = append(out, &t)
		}
		return nil
	})
	return out, err
}

func (r *transactionRepo) AllByMaterial(_ context.Context, code string) ([]*entity.MaterialTransaction, error) {
	var out []*entity.MaterialTransaction
	err := r.with(func(st *state) error {
		for _, t := range st.txs {
			if t.MaterialCode == code {
				out = append(out, &t)
			}
		}
		return nil
	})
	return out, err
}

// ── BOM ───────────────────────────────────────────────────────────────────────

type bomRepo struct{ base }

func (r *bomRepo) ListByProduct(_ context.Context, productCode string) ([]*entity.BOMLine, error) {
	out := []*entity.BOMLine{}
	err := r.with(func(st *state) error {
		for _, l := range st.bom[productCode] {
			out = append(out, &l)
		}
		return nil
	})
	return out, err
}

// ── Hechos de producción ──────────────────────────────────────────────────────

type productionLogRepo struct{ base }

func (r *productionLogRepo) Create(_ context.Context, l *entity.ProductionLog) error {
	return r.with(func(st *state) error {
		st.logs = append(st.logs, *l)
		return nil
	})
}

func (r *productionLogRepo) ListByWorkOrder(_ context.Context, workOrderID string) ([]*entity.ProductionLog, error) {
	var out []*entity.ProductionLog
	err := r.with(func(st *state) error {
		for _, l := range st.logs {
			if l.WorkOrderID == workOrderID {
				out = append(out, &l)
			}
		}
		return nil
	})
	return out, err
}

// ── Catálogos ─────────────────────────────────────────────────────────────────

type productRepo struct{ base }

func (r *productRepo) GetByCode(_ context.Context, code string) (*entity.Product, error) {
	var out *entity.Product
	err := r.with(func(st *state) error {
		if p, ok := st.products[code]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

type equipmentRepo struct{ base }

func (r *equipmentRepo) GetByID(_ context.Context, id string) (*entity.Equipment, error) {
	var out *entity.Equipment
	err := r.with(func(st *state) error {
		if e, ok := st.equipment[id]; ok {
			out = &e
		}
		return nil
	})
	return out, err
}

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
