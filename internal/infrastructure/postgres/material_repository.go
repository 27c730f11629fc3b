package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/mes-dispatch/internal/domain"
	"github.com/jhoicas/mes-dispatch/internal/domain/entity"
	"github.com/jhoicas/mes-dispatch/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

// MaterialRepo implementación de MaterialRepository sobre PostgreSQL (usable con pool o tx).
type MaterialRepo struct {
	q Querier
}

// NewMaterialRepository construye el adaptador de materiales. Pasar pool o tx (Querier).
func NewMaterialRepository(q Querier) *MaterialRepo {
	return &MaterialRepo{q: q}
}

func (r *MaterialRepo) get(ctx context.Context, op, query, code string) (*entity.Material, error) {
	var m entity.Material
	err := r.q.QueryRow(ctx, query, code).Scan(
		&m.Code, &m.Name, &m.Category, &m.Unit, &m.CurrentStock, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &m, nil
}

// GetByCode obtiene un material; nil si no existe.
func (r *MaterialRepo) GetByCode(ctx context.Context, code string) (*entity.Material, error) {
	query := `
		SELECT code, name, category, unit, current_stock, updated_at
		FROM materials WHERE code = $1`
	return r.get(ctx, "get material", query, code)
}

// GetForUpdate obtiene el material y bloquea la fila para update (SELECT FOR UPDATE).
func (r *MaterialRepo) GetForUpdate(ctx context.Context, code string) (*entity.Material, error) {
	query := `
		SELECT code, name, category, unit, current_stock, updated_at
		FROM materials WHERE code = $1
		FOR UPDATE`
	return r.get(ctx, "get material for update", query, code)
}

// UpdateStock fija el stock en caché. El CHECK (current_stock >= 0) es la última barrera.
func (r *MaterialRepo) UpdateStock(ctx context.Context, code string, stock decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `UPDATE materials SET current_stock = $2, updated_at = now() WHERE code = $1`, code, stock)
	if err != nil {
		if isCheckViolation(err) && violatedConstraint(err) == constraintStockNonNeg {
			return fmt.Errorf("%w: material %s quedaría en %s", domain.ErrInsufficientStock, code, stock.String())
		}
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundf("material %s", code)
	}
	return nil
}
