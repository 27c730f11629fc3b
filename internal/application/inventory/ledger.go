package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/mes-dispatch/internal/application/dto"
	"github.com/jhoicas/mes-dispatch/internal/application/ports"
	"github.com/jhoicas/mes-dispatch/internal/domain"
	"github.com/jhoicas/mes-dispatch/internal/domain/entity"
	"github.com/jhoicas/mes-dispatch/internal/domain/inventory"
	"github.com/jhoicas/mes-dispatch/internal/domain/repository"
	"github.com/jhoicas/mes-dispatch/pkg/logger"
	"github.com/shopspring/decimal"
)

// MaterialLedger es el único punto por el que cambia el stock de un material:
// bloquea la fila (SELECT FOR UPDATE), valida, actualiza el stock y agrega exactamente
// una fila al libro de movimientos, todo en la misma transacción.
type MaterialLedger struct {
	txRunner     ports.TxRunner
	materials    repository.MaterialRepository
	transactions repository.MaterialTransactionRepository
	log          *logger.Logger
}

// NewMaterialLedger construye el libro de materiales.
func NewMaterialLedger(
	txRunner ports.TxRunner,
	materials repository.MaterialRepository,
	transactions repository.MaterialTransactionRepository,
	log *logger.Logger,
) *MaterialLedger {
	return &MaterialLedger{
		txRunner:     txRunner,
		materials:    materials,
		transactions: transactions,
		log:          log.Component("inventory"),
	}
}

// MoveStockInput entrada de un movimiento de stock (manual o por backflush).
type MoveStockInput struct {
	MaterialCode string
	Type         string // INBOUND | OUTBOUND
	Quantity     decimal.Decimal
	Location     string
	WorkerID     string
	Reference    string
	Note         string
}

func validateMove(in MoveStockInput) error {
	if strings.TrimSpace(in.MaterialCode) == "" {
		return domain.InvalidInputf("materialCode es requerido")
	}
	if in.Type != entity.TransactionInbound && in.Type != entity.TransactionOutbound {
		return domain.InvalidInputf("tipo de movimiento %q", in.Type)
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return domain.InvalidInputf("quantity debe ser mayor que cero")
	}
	return nil
}

// MoveStock registra una entrada o salida manual en su propia transacción.
func (l *MaterialLedger) MoveStock(ctx context.Context, in MoveStockInput) (*dto.MaterialTransactionResponse, error) {
	if err := validateMove(in); err != nil {
		return nil, err
	}
	now := time.Now()
	var out *entity.MaterialTransaction
	err := l.txRunner.Run(ctx, func(r ports.TxRepos) error {
		t, err := l.MoveStockInTx(ctx, r, in, now)
		if err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		l.log.Warn().Err(err).
			Str("material_code", in.MaterialCode).
			Str("type", in.Type).
			Str("quantity", in.Quantity.String()).
			Msg("movimiento de stock rechazado")
		return nil, err
	}
	l.log.Info().
		Str("material_code", out.MaterialCode).
		Str("type", out.Type).
		Str("quantity", out.Quantity.String()).
		Str("worker_id", out.WorkerID).
		Msg("movimiento de stock registrado")
	return toTransactionResponse(out), nil
}

// MoveStockInTx aplica el movimiento con los repositorios del caller (misma transacción).
// Si retorna error (ej: *domain.ShortageError) el caller debe hacer rollback.
func (l *MaterialLedger) MoveStockInTx(ctx context.Context, r ports.TxRepos, in MoveStockInput, now time.Time) (*entity.MaterialTransaction, error) {
	if err := validateMove(in); err != nil {
		return nil, err
	}
	material, err := r.Materials.GetForUpdate(ctx, in.MaterialCode)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, domain.NotFoundf("material %s", in.MaterialCode)
	}
	newStock, ok := inventory.Apply(material.CurrentStock, in.Type, in.Quantity)
	if !ok {
		return nil, &domain.ShortageError{
			MaterialCode: material.Code,
			Required:     in.Quantity,
			Available:    material.CurrentStock,
		}
	}
	if err := r.Materials.UpdateStock(ctx, material.Code, newStock); err != nil {
		return nil, err
	}
	t := &entity.MaterialTransaction{
		ID:           uuid.New().String(),
		MaterialCode: material.Code,
		Type:         in.Type,
		Quantity:     in.Quantity,
		Location:     in.Location,
		WorkerID:     in.WorkerID,
		Reference:    in.Reference,
		Note:         in.Note,
		CreatedAt:    now,
	}
	if err := r.Transactions.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// GetMaterial obtiene un material con su stock actual.
func (l *MaterialLedger) GetMaterial(ctx context.Context, code string) (*dto.MaterialResponse, error) {
	m, err := l.materials.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.NotFoundf("material %s", code)
	}
	return &dto.MaterialResponse{
		Code:         m.Code,
		Name:         m.Name,
		Category:     m.Category,
		Unit:         m.Unit,
		CurrentStock: m.CurrentStock,
		UpdatedAt:    m.UpdatedAt,
	}, nil
}

// Transactions lista el libro de un material, más recientes primero.
func (l *MaterialLedger) Transactions(ctx context.Context, code string, limit, offset int) (*dto.MaterialTransactionListResponse, error) {
	if _, err := l.GetMaterial(ctx, code); err != nil {
		return nil, err
	}
	list, err := l.transactions.ListByMaterial(ctx, code, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MaterialTransactionResponse, 0, len(list))
	for _, t := range list {
		items = append(items, *toTransactionResponse(t))
	}
	return &dto.MaterialTransactionListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Reconcile recalcula el saldo desde el libro y lo compara con el stock en caché.
// Lee ambos dentro de una transacción para no mezclar estados.
func (l *MaterialLedger) Reconcile(ctx context.Context, code string) (*dto.ReconcileResponse, error) {
	var out *dto.ReconcileResponse
	err := l.txRunner.Run(ctx, func(r ports.TxRepos) error {
		m, err := r.Materials.GetForUpdate(ctx, code)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.NotFoundf("material %s", code)
		}
		txs, err := r.Transactions.AllByMaterial(ctx, code)
		if err != nil {
			return err
		}
		balance := inventory.LedgerBalance(txs)
		out = &dto.ReconcileResponse{
			MaterialCode:  m.Code,
			CurrentStock:  m.CurrentStock,
			LedgerBalance: balance,
			Entries:       len(txs),
			Consistent:    balance.Equal(m.CurrentStock),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !out.Consistent {
		l.log.Error().
			Str("material_code", out.MaterialCode).
			Str("current_stock", out.CurrentStock.String()).
			Str("ledger_balance", out.LedgerBalance.String()).
			Msg("stock y libro de movimientos no coinciden")
	}
	return out, nil
}

func toTransactionResponse(t *entity.MaterialTransaction) *dto.MaterialTransactionResponse {
	return &dto.MaterialTransactionResponse{
		ID:           t.ID,
		MaterialCode: t.MaterialCode,
		Type:         t.Type,
		Quantity:     t.Quantity,
		Location:     t.Location,
		WorkerID:     t.WorkerID,
		Reference:    t.Reference,
		Note:         t.Note,
		CreatedAt:    t.CreatedAt,
	}
}
