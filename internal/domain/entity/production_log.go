package entity

import (
	"strings"
	"time"
)

// Resultados de una unidad reportada.
const (
	ResultOK = "OK" // pasa
	ResultNG = "NG" // defectuosa
)

// NormalizeResult acepta OK/PASS y NG/FAIL sin distinguir mayúsculas.
func NormalizeResult(s string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OK", "PASS":
		return ResultOK, true
	case "NG", "FAIL":
		return ResultNG, true
	}
	return "", false
}

// ProductionLog hecho inmutable: una fila por unidad reportada.
type ProductionLog struct {
	ID          string
	WorkOrderID string
	EquipmentID string
	SerialNo    string
	LotNo       string
	Result      string
	DefectCode  string
	ProducedAt  time.Time
	CreatedAt   time.Time
}

// Passed informa si la unidad salió conforme.
func (l *ProductionLog) Passed() bool {
	return l.Result == ResultOK
}
