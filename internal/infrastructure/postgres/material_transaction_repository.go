package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/mes-dispatch/internal/domain/entity"
	"github.com/jhoicas/mes-dispatch/internal/domain/repository"
)

var _ repository.MaterialTransactionRepository = (*MaterialTransactionRepo)(nil)

// MaterialTransactionRepo libro de movimientos. La tabla rechaza UPDATE y DELETE por trigger.
type MaterialTransactionRepo struct {
	q Querier
}

// NewMaterialTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMaterialTransactionRepository(q Querier) *MaterialTransactionRepo {
	return &MaterialTransactionRepo{q: q}
}

// Create agrega una fila al libro.
func (r *MaterialTransactionRepo) Create(ctx context.Context, t *entity.MaterialTransaction) error {
	query := `
		INSERT INTO material_transactions (id, material_code, type, quantity, location, worker_id, reference, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.MaterialCode, t.Type, t.Quantity, t.Location, t.WorkerID, t.Reference, t.Note, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create material transaction: %w", err)
	}
	return nil
}

const transactionColumns = `id, material_code, type, quantity, location, worker_id, reference, note, created_at`

func (r *MaterialTransactionRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.MaterialTransaction, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var list []*entity.MaterialTransaction
	for rows.Next() {
		var t entity.MaterialTransaction
		if err := rows.Scan(&t.ID, &t.MaterialCode, &t.Type, &t.Quantity, &t.Location, &t.WorkerID, &t.Reference, &t.Note, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan material transaction: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

// ListByMaterial historial paginado, más recientes primero.
func (r *MaterialTransactionRepo) ListByMaterial(ctx context.Context, materialCode string, limit, offset int) ([]*entity.MaterialTransaction, error) {
	var lim any
	if limit > 0 {
		lim = limit
	}
	query := `SELECT ` + transactionColumns + `
		FROM material_transactions WHERE material_code = $1
		ORDER BY seq DESC
		LIMIT $2 OFFSET $3`
	return r.list(ctx, "list material transactions", query, materialCode, lim, max(offset, 0))
}

// AllByMaterial historial completo en orden cronológico.
func (r *MaterialTransactionRepo) AllByMaterial(ctx context.Context, materialCode string) ([]*entity.MaterialTransaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM material_transactions WHERE material_code = $1
		ORDER BY seq`
	return r.list(ctx, "all material transactions", query, materialCode)
}
