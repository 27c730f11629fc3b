package inventory

import (
	"context"

	"github.com/jhoicas/mes-dispatch/internal/application/dto"
)

// MoveStockFromRequest adapta el request HTTP al caso de uso MoveStock(ctx, MoveStockInput).
// txType es INBOUND para /material/in y OUTBOUND para /material/out; workerID viene del token si existe.
func (l *MaterialLedger) MoveStockFromRequest(ctx context.Context, txType, workerID string, in dto.StockMovementRequest) (*dto.MaterialTransactionResponse, error) {
	if workerID == "" {
		workerID = in.WorkerID
	}
	input := MoveStockInput{
		MaterialCode: in.MaterialCode,
		Type:         txType,
		Quantity:     in.Quantity,
		Location:     in.Location,
		WorkerID:     workerID,
		Note:         in.Note,
	}
	return l.MoveStock(ctx, input)
}
