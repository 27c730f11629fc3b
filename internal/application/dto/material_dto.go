package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockMovementRequest body para POST /material/in y POST /material/out.
type StockMovementRequest struct {
	MaterialCode string          `json:"materialCode" validate:"required,max=64"`
	Quantity     decimal.Decimal `json:"quantity"`
	Location     string          `json:"location,omitempty" validate:"max=64"`
	WorkerID     string          `json:"workerId,omitempty" validate:"max=64"`
	Note         string          `json:"note,omitempty" validate:"max=255"`
}

// MaterialResponse material con su stock actual.
type MaterialResponse struct {
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Unit         string          `json:"unit"`
	CurrentStock decimal.Decimal `json:"currentStock"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// MaterialTransactionResponse fila del libro de movimientos.
type MaterialTransactionResponse struct {
	ID           string          `json:"id"`
	MaterialCode string          `json:"materialCode"`
	Type         string          `json:"type"`
	Quantity     decimal.Decimal `json:"quantity"`
	Location     string          `json:"location,omitempty"`
	WorkerID     string          `json:"workerId,omitempty"`
	Reference    string          `json:"reference,omitempty"`
	Note         string          `json:"note,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// MaterialTransactionListResponse lista paginada del libro.
type MaterialTransactionListResponse struct {
	Items []MaterialTransactionResponse `json:"items"`
	Page  PageResponse                  `json:"page"`
}

// ReconcileResponse comparación entre el stock en caché y el saldo del libro.
type ReconcileResponse struct {
	MaterialCode  string          `json:"materialCode"`
	CurrentStock  decimal.Decimal `json:"currentStock"`
	LedgerBalance decimal.Decimal `json:"ledgerBalance"`
	Entries       int             `json:"entries"`
	Consistent    bool            `json:"consistent"`
}

// BOMRequirementResponse requerimiento de un material por unidad de producto.
type BOMRequirementResponse struct {
	MaterialCode string          `json:"materialCode"`
	QtyPerUnit   decimal.Decimal `json:"qtyPerUnit"`
}

// BOMResponse lista de materiales de un producto.
type BOMResponse struct {
	ProductCode  string                   `json:"productCode"`
	Requirements []BOMRequirementResponse `json:"requirements"`
}
