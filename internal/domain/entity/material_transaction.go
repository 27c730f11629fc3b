package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock.
const (
	TransactionInbound  = "INBOUND"
	TransactionOutbound = "OUTBOUND"
)

// MaterialTransaction fila del libro de movimientos. Solo se inserta; nunca se actualiza ni se borra.
type MaterialTransaction struct {
	ID           string
	MaterialCode string
	Type         string
	Quantity     decimal.Decimal // siempre positivo; el signo lo da Type
	Location     string          // bodega o equipo destino/origen (opcional)
	WorkerID     string          // operario (opcional)
	Reference    string          // p.ej. ID de la orden en un backflush
	Note         string
	CreatedAt    time.Time
}

// Signed devuelve la cantidad con signo (+IN, -OUT).
func (t *MaterialTransaction) Signed() decimal.Decimal {
	if t.Type == TransactionOutbound {
		return t.Quantity.Neg()
	}
	return t.Quantity
}
