package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/mes-dispatch/internal/domain/entity"
	"github.com/jhoicas/mes-dispatch/internal/domain/repository"
)

var _ repository.ProductionLogRepository = (*ProductionLogRepo)(nil)

// ProductionLogRepo hechos de producción (solo inserción).
type ProductionLogRepo struct {
	q Querier
}

// NewProductionLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductionLogRepository(q Querier) *ProductionLogRepo {
	return &ProductionLogRepo{q: q}
}

// Create inserta el hecho.
func (r *ProductionLogRepo) Create(ctx context.Context, l *entity.ProductionLog) error {
	query := `
		INSERT INTO production_logs (id, work_order_id, equipment_id, serial_no, lot_no, result, defect_code, produced_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.WorkOrderID, l.EquipmentID, l.SerialNo, l.LotNo, l.Result, l.DefectCode, l.ProducedAt, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create production log: %w", err)
	}
	return nil
}

// ListByWorkOrder hechos de la orden en orden de creación.
func (r *ProductionLogRepo) ListByWorkOrder(ctx context.Context, workOrderID string) ([]*entity.ProductionLog, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, work_order_id, equipment_id, serial_no, lot_no, result, defect_code, produced_at, created_at
		FROM production_logs WHERE work_order_id = $1
		ORDER BY seq`, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("list production logs: %w", err)
	}
	defer rows.Close()

	var list []*entity.ProductionLog
	for rows.Next() {
		var l entity.ProductionLog
		if err := rows.Scan(&l.ID, &l.WorkOrderID, &l.EquipmentID, &l.SerialNo, &l.LotNo, &l.Result, &l.DefectCode, &l.ProducedAt, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan production log: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
