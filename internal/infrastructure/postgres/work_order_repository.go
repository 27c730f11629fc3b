package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/mes-dispatch/internal/domain"
	"github.com/jhoicas/mes-dispatch/internal/domain/entity"
	"github.com/jhoicas/mes-dispatch/internal/domain/repository"
)

var _ repository.WorkOrderRepository = (*WorkOrderRepo)(nil)

const workOrderColumns = `
	id, seq, product_code, target_qty, current_qty, defect_qty, status,
	assigned_machine, target_line, created_at, updated_at, released_at, started_at, completed_at`

// WorkOrderRepo implementación de WorkOrderRepository sobre PostgreSQL (usable con pool o tx).
type WorkOrderRepo struct {
	q Querier
}

// NewWorkOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewWorkOrderRepository(q Querier) *WorkOrderRepo {
	return &WorkOrderRepo{q: q}
}

func scanWorkOrder(row pgx.Row) (*entity.WorkOrder, error) {
	var (
		wo       entity.WorkOrder
		status   string
		assigned *string
	)
	err := row.Scan(
		&wo.ID, &wo.Seq, &wo.ProductCode, &wo.TargetQty, &wo.CurrentQty, &wo.DefectQty, &status,
		&assigned, &wo.TargetLine, &wo.CreatedAt, &wo.UpdatedAt, &wo.ReleasedAt, &wo.StartedAt, &wo.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	wo.Status = entity.WorkOrderStatus(status)
	if assigned != nil {
		wo.AssignedMachine = *assigned
	}
	return &wo, nil
}

func (r *WorkOrderRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.WorkOrder, error) {
	wo, err := scanWorkOrder(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return wo, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Create inserta la orden; Seq lo asigna la secuencia de la tabla.
func (r *WorkOrderRepo) Create(ctx context.Context, wo *entity.WorkOrder) error {
	query := `
		INSERT INTO work_orders (id, product_code, target_qty, current_qty, defect_qty, status,
			assigned_machine, target_line, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		wo.ID, wo.ProductCode, wo.TargetQty, wo.CurrentQty, wo.DefectQty, string(wo.Status),
		nullIfEmpty(wo.AssignedMachine), wo.TargetLine, wo.CreatedAt, wo.UpdatedAt,
	).Scan(&wo.Seq)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: orden %s", domain.ErrDuplicate, wo.ID)
		}
		return fmt.Errorf("create work order: %w", err)
	}
	return nil
}

// GetByID obtiene una orden por ID; nil si no existe.
func (r *WorkOrderRepo) GetByID(ctx context.Context, id string) (*entity.WorkOrder, error) {
	return r.getOne(ctx, "get work order", `SELECT`+workOrderColumns+` FROM work_orders WHERE id = $1`, id)
}

// GetForUpdate obtiene la orden y bloquea la fila (SELECT FOR UPDATE).
func (r *WorkOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.WorkOrder, error) {
	return r.getOne(ctx, "get work order for update", `SELECT`+workOrderColumns+` FROM work_orders WHERE id = $1 FOR UPDATE`, id)
}

// Update persiste estado, avance y asignación.
func (r *WorkOrderRepo) Update(ctx context.Context, wo *entity.WorkOrder) error {
	query := `
		UPDATE work_orders SET
			product_code = $2, target_qty = $3, current_qty = $4, defect_qty = $5, status = $6,
			assigned_machine = $7, target_line = $8, updated_at = $9,
			released_at = $10, started_at = $11, completed_at = $12
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		wo.ID, wo.ProductCode, wo.TargetQty, wo.CurrentQty, wo.DefectQty, string(wo.Status),
		nullIfEmpty(wo.AssignedMachine), wo.TargetLine, wo.UpdatedAt,
		wo.ReleasedAt, wo.StartedAt, wo.CompletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) && violatedConstraint(err) == constraintRunningMachine {
			return fmt.Errorf("%w: máquina %s ya ejecuta otra orden", domain.ErrConflict, wo.AssignedMachine)
		}
		return fmt.Errorf("update work order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundf("orden %s", wo.ID)
	}
	return nil
}

// Delete elimina una orden.
func (r *WorkOrderRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM work_orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete work order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundf("orden %s", id)
	}
	return nil
}

// List lista órdenes por seq; Limit <= 0 devuelve todas.
func (r *WorkOrderRepo) List(ctx context.Context, f repository.WorkOrderFilter) ([]*entity.WorkOrder, error) {
	var limit any
	if f.Limit > 0 {
		limit = f.Limit
	}
	query := `SELECT` + workOrderColumns + `
		FROM work_orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY seq
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, string(f.Status), limit, max(f.Offset, 0))
	if err != nil {
		return nil, fmt.Errorf("list work orders: %w", err)
	}
	defer rows.Close()

	var list []*entity.WorkOrder
	for rows.Next() {
		wo, err := scanWorkOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan work order: %w", err)
		}
		list = append(list, wo)
	}
	return list, rows.Err()
}

// LockMachine toma un advisory lock de transacción por máquina: dos polls de la misma
// máquina se serializan y el segundo ve la orden RUNNING del primero.
func (r *WorkOrderRepo) LockMachine(ctx context.Context, machineID string) error {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, "machine:"+machineID); err != nil {
		return fmt.Errorf("lock machine: %w", err)
	}
	return nil
}

// GetRunningByMachine devuelve la orden RUNNING de la máquina o nil.
func (r *WorkOrderRepo) GetRunningByMachine(ctx context.Context, machineID string) (*entity.WorkOrder, error) {
	return r.getOne(ctx, "get running work order",
		`SELECT`+workOrderColumns+` FROM work_orders WHERE status = 'RUNNING' AND assigned_machine = $1 FOR UPDATE`, machineID)
}

// ClaimOldestIssued bloquea la orden ISSUED de menor seq que nadie más tenga bloqueada.
// SKIP LOCKED: dos máquinas concurrentes nunca reciben la misma orden.
func (r *WorkOrderRepo) ClaimOldestIssued(ctx context.Context) (*entity.WorkOrder, error) {
	return r.getOne(ctx, "claim work order",
		`SELECT`+workOrderColumns+` FROM work_orders WHERE status = 'ISSUED' ORDER BY seq LIMIT 1 FOR UPDATE SKIP LOCKED`)
}
