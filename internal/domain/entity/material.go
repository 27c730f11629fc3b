package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material materia prima con su stock actual.
// CurrentStock es un caché del libro de movimientos: suma(IN) - suma(OUT). Nunca negativo.
type Material struct {
	Code         string
	Name         string
	Category     string
	Unit         string
	CurrentStock decimal.Decimal
	UpdatedAt    time.Time
}
