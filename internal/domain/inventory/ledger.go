package inventory

import (
	"github.com/jhoicas/mes-dispatch/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// LedgerBalance recalcula el stock a partir del libro de movimientos (servicio de dominio).
// Stock = Σ INBOUND - Σ OUTBOUND
func LedgerBalance(txs []*entity.MaterialTransaction) decimal.Decimal {
	balance := decimal.Zero
	for _, t := range txs {
		balance = balance.Add(t.Signed())
	}
	return balance
}

// Apply devuelve el stock resultante de aplicar un movimiento, o false si dejaría stock negativo.
func Apply(stock decimal.Decimal, txType string, qty decimal.Decimal) (decimal.Decimal, bool) {
	switch txType {
	case entity.TransactionInbound:
		return stock.Add(qty), true
	case entity.TransactionOutbound:
		if stock.LessThan(qty) {
			return stock, false
		}
		return stock.Sub(qty), true
	}
	return stock, false
}

// Consumption cantidad de material que consumen n unidades.
func Consumption(qtyPerUnit decimal.Decimal, units int) decimal.Decimal {
	return qtyPerUnit.Mul(decimal.NewFromInt(int64(units)))
}
