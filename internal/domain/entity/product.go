package entity

import "time"

// Product producto terminado del catálogo (solo lectura para el núcleo de producción).
type Product struct {
	Code        string // código único
	Name        string
	UnitMeasure string
	CreatedAt   time.Time
}
