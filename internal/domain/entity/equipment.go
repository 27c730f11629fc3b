package entity

import "time"

// Equipment máquina o estación de la planta que consulta la cola de despacho.
type Equipment struct {
	ID        string
	Name      string
	Line      string
	Active    bool
	CreatedAt time.Time
}
