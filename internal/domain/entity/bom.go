package entity

import "github.com/shopspring/decimal"

// BOMLine relación (producto, material, cantidad por unidad) de la lista de materiales.
type BOMLine struct {
	ProductCode  string
	MaterialCode string
	QtyPerUnit   decimal.Decimal
}
